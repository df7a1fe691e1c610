package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, TOKENAUTH_TOKEN_TTL
// maps to token.ttl
const EnvPrefix = "TOKENAUTH"

const (
	KeyEncodingRaw    = "raw"
	KeyEncodingBase64 = "base64"

	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// TokenConfig holds the codec settings
type TokenConfig struct {
	SigningKey         string        `yaml:"signing_key" mapstructure:"signing_key"`
	SigningKeyEncoding string        `yaml:"signing_key_encoding" mapstructure:"signing_key_encoding"`
	TTL                time.Duration `yaml:"ttl" mapstructure:"ttl"`
	Leeway             time.Duration `yaml:"leeway" mapstructure:"leeway"`
	Issuer             string        `yaml:"issuer" mapstructure:"issuer"`
}

// DatabaseConfig selects the user directory backend
type DatabaseConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
	DSN    string `yaml:"dsn" mapstructure:"dsn"`
	// Hashid derives user IDs from their email
	Hashid bool `yaml:"hashid" mapstructure:"hashid"`
}

type HTTPConfig struct {
	Bind string `yaml:"bind" mapstructure:"bind"`
}

type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Config is the service configuration. It satisfies auth.Config.
type Config struct {
	Token    TokenConfig    `yaml:"token" mapstructure:"token"`
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
	HTTP     HTTPConfig     `yaml:"http" mapstructure:"http"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// ApplyDefaults fills zero values
func (c *Config) ApplyDefaults() {
	if c.Token.SigningKeyEncoding == "" {
		c.Token.SigningKeyEncoding = KeyEncodingBase64
	}
	if c.Token.TTL <= 0 {
		c.Token.TTL = 24 * time.Hour
	}
	if c.Token.Leeway < 0 {
		c.Token.Leeway = 0
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverSQLite
	}
	if c.Database.DSN == "" {
		c.Database.DSN = "file::memory:?cache=shared"
	}
	if c.HTTP.Bind == "" {
		c.HTTP.Bind = ":8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

// Validate checks the configuration, including the signing key length
func (c *Config) Validate() error {
	if c.Token.SigningKey == "" {
		return fmt.Errorf("token.signing_key is required")
	}
	switch c.Token.SigningKeyEncoding {
	case KeyEncodingRaw, KeyEncodingBase64:
	default:
		return fmt.Errorf("token.signing_key_encoding must be one of [raw, base64] (got: %s)", c.Token.SigningKeyEncoding)
	}
	key, err := c.GetSigningKey()
	if err != nil {
		return err
	}
	if len(key) < 32 {
		return fmt.Errorf("token.signing_key must decode to at least 32 bytes (got: %d)", len(key))
	}
	switch c.Database.Driver {
	case DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("database.driver must be one of [sqlite, memory] (got: %s)", c.Database.Driver)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be one of [json, console] (got: %s)", c.Log.Format)
	}
	return nil
}

// GetSigningKey decodes the configured key
func (c *Config) GetSigningKey() ([]byte, error) {
	if c.Token.SigningKeyEncoding == KeyEncodingRaw {
		return []byte(c.Token.SigningKey), nil
	}
	key, err := base64.StdEncoding.DecodeString(c.Token.SigningKey)
	if err != nil {
		return nil, fmt.Errorf("token.signing_key is not valid base64: %w", err)
	}
	return key, nil
}

func (c *Config) GetTokenTTL() time.Duration {
	return c.Token.TTL
}

func (c *Config) GetLeeway() time.Duration {
	return c.Token.Leeway
}

func (c *Config) GetIssuer() string {
	return c.Token.Issuer
}

// LoaderConfig holds optional file overrides
type LoaderConfig struct {
	ConfigFile string
	EnvFile    string
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// Load reads the YAML config file (if any), then the .env file (if any),
// then TOKENAUTH_ environment variables. Later sources win.
func Load(opts ...LoaderOption) (*Config, error) {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}

	v := viper.New()
	setDefaults(v)

	if lc.ConfigFile != "" {
		v.SetConfigFile(lc.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", lc.ConfigFile, err)
		}
	}

	envFile := lc.EnvFile
	if envFile == "" && fileExists(".env") {
		envFile = ".env"
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load .env file %s: %w", envFile, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// viper only resolves env vars for keys it knows about
func setDefaults(v *viper.Viper) {
	v.SetDefault("token.signing_key", "")
	v.SetDefault("token.signing_key_encoding", KeyEncodingBase64)
	v.SetDefault("token.ttl", "24h")
	v.SetDefault("token.leeway", "0s")
	v.SetDefault("token.issuer", "")
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.dsn", "file::memory:?cache=shared")
	v.SetDefault("database.hashid", false)
	v.SetDefault("http.bind", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

package token

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestParseClaims(t *testing.T) {
	claims, err := ParseClaims([]string{"role=ADMIN", "tenant = acme", "note=a=b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"role":   "ADMIN",
		"tenant": " acme",
		"note":   "a=b",
	}, claims)

	_, err = ParseClaims([]string{"novalue"})
	assert.Error(t, err)

	_, err = ParseClaims([]string{"=x"})
	assert.Error(t, err)
}

func TestIssueAndInspect(t *testing.T) {
	t.Setenv("TOKENAUTH_TOKEN_SIGNING_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("TOKENAUTH_TOKEN_SIGNING_KEY_ENCODING", "raw")
	t.Setenv("TOKENAUTH_LOG_LEVEL", "error")

	run := func(args ...string) (string, error) {
		var out bytes.Buffer
		app := &cli.App{
			Name:     "tokenauth",
			Writer:   &out,
			Commands: []*cli.Command{Cmd()},
		}
		err := app.Run(append([]string{"tokenauth", "token"}, args...))
		return out.String(), err
	}

	raw, err := run("issue", "--subject", "alice@example.com", "--claim", "role=ADMIN")
	require.NoError(t, err)
	raw = strings.TrimSpace(raw)
	assert.Len(t, strings.Split(raw, "."), 3)

	printed, err := run("inspect", raw)
	require.NoError(t, err)

	var claims map[string]any
	require.NoError(t, json.Unmarshal([]byte(printed), &claims))
	assert.Equal(t, "alice@example.com", claims["sub"])
	assert.Equal(t, "ADMIN", claims["role"])

	_, err = run("inspect", raw+"x")
	assert.Error(t, err)

	_, err = run("issue", "--subject", "alice@example.com", "--claim", "sub=root")
	assert.Error(t, err)
}

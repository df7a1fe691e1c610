package activitymap_test

import (
	"testing"
	"time"

	auth "github.com/goliatone/go-bearer"
	"github.com/goliatone/go-bearer/activitymap"
)

func TestNormalizeDefaults(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 1, 10, 9, 30, 0, 0, time.UTC)
	event := auth.ActivityEvent{
		EventType:  auth.ActivityEventRequestAuthenticated,
		Identifier: "alice@example.com",
		Details: auth.Details{
			RemoteAddress: "10.0.0.7",
			UserAgent:     "curl/8",
		},
		Metadata: map[string]any{
			"ticket": "SEC-204",
		},
		OccurredAt: ts,
	}

	out := activitymap.Normalize(event)

	if out.ActorID != "alice@example.com" {
		t.Fatalf("expected actor_id alice@example.com, got %q", out.ActorID)
	}
	if out.Verb != string(auth.ActivityEventRequestAuthenticated) {
		t.Fatalf("expected verb %q, got %q", auth.ActivityEventRequestAuthenticated, out.Verb)
	}
	if out.ObjectType != "principal" {
		t.Fatalf("expected object_type principal, got %q", out.ObjectType)
	}
	if out.ObjectID != "alice@example.com" {
		t.Fatalf("expected object_id alice@example.com, got %q", out.ObjectID)
	}
	if out.Channel != "auth" {
		t.Fatalf("expected channel auth, got %q", out.Channel)
	}
	if !out.OccurredAt.Equal(ts) {
		t.Fatalf("expected occurred_at %v, got %v", ts, out.OccurredAt)
	}

	if out.Metadata["ticket"] != "SEC-204" {
		t.Fatalf("expected metadata ticket SEC-204, got %#v", out.Metadata["ticket"])
	}
	if out.Metadata[activitymap.MetadataKeyRemoteAddress] != "10.0.0.7" {
		t.Fatalf("expected metadata remote_address, got %#v", out.Metadata[activitymap.MetadataKeyRemoteAddress])
	}
	if out.Metadata[activitymap.MetadataKeyUserAgent] != "curl/8" {
		t.Fatalf("expected metadata user_agent, got %#v", out.Metadata[activitymap.MetadataKeyUserAgent])
	}
	if _, ok := out.Metadata[activitymap.MetadataKeyRequestID]; ok {
		t.Fatalf("expected empty request_id to be skipped")
	}

	if len(event.Metadata) != 1 {
		t.Fatalf("expected source metadata to remain unchanged, got %+v", event.Metadata)
	}
}

func TestNormalizeOptionOverrides(t *testing.T) {
	t.Parallel()

	event := auth.ActivityEvent{
		EventType:  auth.ActivityEventLoginFailure,
		Identifier: "bob@example.com",
		Details:    auth.Details{RemoteAddress: "10.0.0.8"},
		Metadata: map[string]any{
			activitymap.MetadataKeyRemoteAddress: "proxy-forwarded",
		},
	}

	out := activitymap.Normalize(
		event,
		activitymap.WithDefaultChannel("security"),
		activitymap.WithDefaultObjectType("account"),
	)

	if out.Channel != "security" {
		t.Fatalf("expected channel security, got %q", out.Channel)
	}
	if out.ObjectType != "account" {
		t.Fatalf("expected object_type account, got %q", out.ObjectType)
	}
	if out.Metadata[activitymap.MetadataKeyRemoteAddress] != "proxy-forwarded" {
		t.Fatalf("expected existing remote_address preserved, got %#v", out.Metadata[activitymap.MetadataKeyRemoteAddress])
	}
	if out.OccurredAt.IsZero() {
		t.Fatalf("expected occurred_at to be set when input is zero")
	}
}

func TestNormalizeActorFallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		event  auth.ActivityEvent
		opts   []activitymap.Option
		expect string
	}{
		{
			name:   "uses identifier when present",
			event:  auth.ActivityEvent{Identifier: "carol@example.com"},
			expect: "carol@example.com",
		},
		{
			name:   "uses default fallback for anonymous events",
			event:  auth.ActivityEvent{EventType: auth.ActivityEventRequestTokenRejected},
			expect: "anonymous",
		},
		{
			name:   "uses configured fallback",
			event:  auth.ActivityEvent{},
			opts:   []activitymap.Option{activitymap.WithActorFallback("edge")},
			expect: "edge",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			out := activitymap.Normalize(tc.event, tc.opts...)
			if out.ActorID != tc.expect {
				t.Fatalf("expected actor_id %q, got %q", tc.expect, out.ActorID)
			}
			if tc.event.Identifier == "" && out.ObjectID != "" {
				t.Fatalf("expected empty object_id for anonymous event, got %q", out.ObjectID)
			}
		})
	}
}

package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlackNotifierSend(t *testing.T) {
	var payload map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n, err := NewSlackNotifier(SlackConfig{
		WebhookURL: server.URL,
		Channel:    "#releases",
		Username:   "release-bot",
	})
	require.NoError(t, err)

	err = n.Send(context.Background(), Event{
		Kind:  EventRelease,
		Title: "Released v1.2.0",
		Body:  "12 commits from 3 contributors",
		Link:  "https://example.com/changelog",
	})
	require.NoError(t, err)

	assert.Equal(t, "#releases", payload["channel"])
	assert.Equal(t, "release-bot", payload["username"])
	text, _ := payload["text"].(string)
	assert.Contains(t, text, "Released v1.2.0")
	assert.Contains(t, text, "https://example.com/changelog")
}

func TestSlackNotifierRequiresURL(t *testing.T) {
	t.Setenv("SLACK_WEBHOOK_URL", "")
	_, err := NewSlackNotifier(SlackConfig{})
	assert.Error(t, err)
}

func TestDiscordNotifierSend(t *testing.T) {
	var payload map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	n, err := NewDiscordNotifier(DiscordConfig{WebhookURL: server.URL})
	require.NoError(t, err)

	err = n.Send(context.Background(), Event{Kind: EventChangelog, Title: "Changelog", Body: "body"})
	require.NoError(t, err)

	content, _ := payload["content"].(string)
	assert.Contains(t, content, "Changelog")
	assert.Equal(t, "redgit", payload["username"])
}

func TestDiscordNotifierTruncatesOnRuneBoundary(t *testing.T) {
	var payload map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	n, err := NewDiscordNotifier(DiscordConfig{WebhookURL: server.URL})
	require.NoError(t, err)

	// Multi-byte body long enough to force truncation. A byte-indexed
	// cut would split a rune and ship invalid UTF-8.
	err = n.Send(context.Background(), Event{
		Kind:  EventChangelog,
		Title: "Changelog",
		Body:  strings.Repeat("é", 2500),
	})
	require.NoError(t, err)

	content, _ := payload["content"].(string)
	assert.True(t, utf8.ValidString(content))
	assert.LessOrEqual(t, len([]rune(content)), 2000)
	assert.True(t, strings.HasSuffix(content, "..."))
}

func TestNotifierFailsOnHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad payload", http.StatusBadRequest)
	}))
	defer server.Close()

	n, err := NewSlackNotifier(SlackConfig{WebhookURL: server.URL})
	require.NoError(t, err)

	err = n.Send(context.Background(), Event{Kind: EventRelease, Title: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestAcceptsKind(t *testing.T) {
	assert.True(t, acceptsKind(nil, EventRelease))
	assert.True(t, acceptsKind([]string{"release"}, EventRelease))
	assert.False(t, acceptsKind([]string{"changelog"}, EventRelease))
}

// stubNotifier records sends for registry tests.
type stubNotifier struct {
	name  string
	kinds []string
	err   error
	sends int32
}

func (s *stubNotifier) Name() string                 { return s.name }
func (s *stubNotifier) Accepts(kind EventKind) bool  { return acceptsKind(s.kinds, kind) }
func (s *stubNotifier) Send(context.Context, Event) error {
	atomic.AddInt32(&s.sends, 1)
	return s.err
}

func TestRegistryDispatch(t *testing.T) {
	ok := &stubNotifier{name: "ok"}
	failing := &stubNotifier{name: "failing", err: errors.New("webhook down")}
	filtered := &stubNotifier{name: "filtered", kinds: []string{"error"}}

	reg := NewRegistry([]Notifier{ok, failing, filtered}, nil)
	results := reg.Dispatch(context.Background(), Event{Kind: EventRelease, Title: "v1.0.0"})

	// Failures are reported, not escalated; filtered notifiers are skipped.
	require.Len(t, results, 2)
	assert.Equal(t, int32(1), atomic.LoadInt32(&ok.sends))
	assert.Equal(t, int32(1), atomic.LoadInt32(&failing.sends))
	assert.Equal(t, int32(0), atomic.LoadInt32(&filtered.sends))

	failures := 0
	for _, r := range results {
		if r.Err != nil {
			failures++
			assert.Equal(t, "failing", r.Notifier)
		}
	}
	assert.Equal(t, 1, failures)
}

func TestRegistryDispatchEmpty(t *testing.T) {
	reg := NewRegistry(nil, nil)
	assert.Empty(t, reg.Dispatch(context.Background(), Event{Kind: EventRelease}))
}

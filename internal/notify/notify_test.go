package notify_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/forgeworks/relay/internal/notify"
	"github.com/forgeworks/relay/internal/secrets"
	"github.com/forgeworks/relay/internal/trigger"
)

const webhookRef = "NOTIFY_WEBHOOK_URL"

func newDispatcher(t *testing.T, handler http.HandlerFunc) (*notify.Dispatcher, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := secrets.NewMemoryProvider()
	store.Store(webhookRef, []byte(server.URL))
	t.Cleanup(func() { store.Close() })

	d := notify.NewDispatcher(
		"widget CI",
		"main",
		webhookRef,
		"https://ci.example.com/org/repo/actions/runs/42",
		store,
		zap.NewNop(),
	)
	return d, server
}

func TestDispatchSendsExactPayload(t *testing.T) {
	var got map[string]any
	var calls int
	d, _ := newDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
	})

	sent := d.Dispatch(context.Background(), trigger.Event{Kind: trigger.KindPush, Branch: "main"}, "test")
	assert.True(t, sent)
	assert.Equal(t, 1, calls)

	attachments, ok := got["attachments"].([]any)
	require.True(t, ok)
	require.Len(t, attachments, 1)

	att := attachments[0].(map[string]any)
	assert.Equal(t, "widget CI", att["pretext"])
	assert.Equal(t, "Tests failed!", att["text"])
	assert.Equal(t, "#D00000", att["color"])

	fields := att["fields"].([]any)
	require.Len(t, fields, 1)
	f := fields[0].(map[string]any)
	assert.Equal(t, "Action URL", f["title"])
	assert.Equal(t, "https://ci.example.com/org/repo/actions/runs/42", f["value"])
}

func TestDispatchMessagePerPipeline(t *testing.T) {
	tests := map[string]string{
		"format":  "Formatting check failed!",
		"lint":    "Static analysis failed!",
		"audit":   "Audits failed!",
		"test":    "Tests failed!",
		"publish": "Publish failed!",
	}

	for failed, want := range tests {
		t.Run(failed, func(t *testing.T) {
			var got map[string]any
			d, _ := newDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
				body, _ := io.ReadAll(r.Body)
				require.NoError(t, json.Unmarshal(body, &got))
			})

			d.Dispatch(context.Background(), trigger.Event{Kind: trigger.KindPush, Branch: "main"}, failed)

			att := got["attachments"].([]any)[0].(map[string]any)
			assert.Equal(t, want, att["text"])
		})
	}
}

func TestDispatchGatedOffProtectedBranch(t *testing.T) {
	var calls int
	d, _ := newDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
	})

	sent := d.Dispatch(context.Background(), trigger.Event{Kind: trigger.KindPush, Branch: "feature/x"}, "test")
	assert.False(t, sent)
	assert.Zero(t, calls)
}

func TestDispatchNeverFiresForPullRequests(t *testing.T) {
	var calls int
	d, _ := newDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
	})

	// Pull request refs are never the protected branch ref.
	sent := d.Dispatch(context.Background(), trigger.Event{Kind: trigger.KindPullRequest, Branch: "pull/17/merge"}, "lint")
	assert.False(t, sent)
	assert.Zero(t, calls)
}

func TestDispatchSwallowsDeliveryFailure(t *testing.T) {
	// The endpoint rejects the alert; dispatch still reports the attempt
	// and does not retry.
	var calls int
	d, _ := newDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	})

	sent := d.Dispatch(context.Background(), trigger.Event{Kind: trigger.KindPush, Branch: "main"}, "test")
	assert.True(t, sent)
	assert.Equal(t, 1, calls, "no retry after delivery failure")
}

func TestDispatchMissingWebhookSecret(t *testing.T) {
	store := secrets.NewMemoryProvider()
	d := notify.NewDispatcher("ci", "main", "MISSING", "https://example.com", store, zap.NewNop())

	// Missing webhook secret is a delivery failure: swallowed, not fatal.
	sent := d.Dispatch(context.Background(), trigger.Event{Kind: trigger.KindPush, Branch: "main"}, "test")
	assert.True(t, sent)
}

func TestDispatchUnknownPipelineGetsGenericText(t *testing.T) {
	var got map[string]any
	d, _ := newDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
	})

	d.Dispatch(context.Background(), trigger.Event{Kind: trigger.KindPush, Branch: "main"}, "docs")

	att := got["attachments"].([]any)[0].(map[string]any)
	assert.Equal(t, "docs failed!", att["text"])
}

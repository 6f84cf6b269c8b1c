// Package notify dispatches failure alerts to the team notification channel.
// Alerts are branch-gated: only failures on the protected branch produce one,
// and each failed run produces at most a single outbound call. Delivery is
// fire-and-forget; a failed delivery is logged and never retried.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/forgeworks/relay/internal/secrets"
	"github.com/forgeworks/relay/internal/trigger"
)

// severityColor is the fixed color of every failure attachment.
const severityColor = "#D00000"

// messages maps a failed pipeline identity to its alert text. Data-driven so
// adding a pipeline never touches dispatch logic.
var messages = map[string]string{
	"format":  "Formatting check failed!",
	"lint":    "Static analysis failed!",
	"audit":   "Audits failed!",
	"test":    "Tests failed!",
	"publish": "Publish failed!",
}

// payload is the exact wire shape the receiving channel expects.
type payload struct {
	Attachments []attachment `json:"attachments"`
}

type attachment struct {
	Pretext string  `json:"pretext"`
	Text    string  `json:"text"`
	Color   string  `json:"color"`
	Fields  []field `json:"fields"`
}

type field struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

// Dispatcher builds and sends failure alerts.
type Dispatcher struct {
	// Pretext names the pipeline in every alert.
	Pretext string

	// ProtectedBranch gates dispatch: only failures on this branch alert.
	ProtectedBranch string

	// WebhookRef names the secret holding the channel webhook URL. The URL
	// is resolved per dispatch and cleared immediately after the call.
	WebhookRef string

	// ActionURL links the alert back to the failed run.
	ActionURL string

	Secrets secrets.Resolver
	Client  *http.Client
	Log     *zap.Logger
}

// NewDispatcher returns a dispatcher with a default HTTP client.
func NewDispatcher(pretext, protectedBranch, webhookRef, actionURL string, resolver secrets.Resolver, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		Pretext:         pretext,
		ProtectedBranch: protectedBranch,
		WebhookRef:      webhookRef,
		ActionURL:       actionURL,
		Secrets:         resolver,
		Client:          &http.Client{Timeout: 10 * time.Second},
		Log:             log,
	}
}

// Dispatch emits an alert for the named failed pipeline if the event is on
// the protected branch. Returns whether an outbound call was attempted.
// Delivery failures are logged and swallowed: the alert path must never fail
// a pipeline that already failed.
func (d *Dispatcher) Dispatch(ctx context.Context, ev trigger.Event, failed string) bool {
	if ev.Branch != d.ProtectedBranch {
		return false
	}

	if err := d.send(ctx, failed); err != nil {
		d.Log.Warn("alert delivery failed",
			zap.String("pipeline", failed),
			zap.Error(err),
		)
	}
	return true
}

func (d *Dispatcher) send(ctx context.Context, failed string) error {
	text, ok := messages[failed]
	if !ok {
		text = fmt.Sprintf("%s failed!", failed)
	}

	body, err := json.Marshal(payload{
		Attachments: []attachment{{
			Pretext: d.Pretext,
			Text:    text,
			Color:   severityColor,
			Fields: []field{{
				Title: "Action URL",
				Value: d.ActionURL,
			}},
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to encode alert payload: %w", err)
	}

	webhook, err := d.Secrets.Resolve(ctx, d.WebhookRef)
	if err != nil {
		return fmt.Errorf("failed to resolve webhook URL: %w", err)
	}
	url := webhook.String()
	webhook.Clear()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build alert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver alert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("alert endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

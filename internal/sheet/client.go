// Package sheet pushes completed results to the external spreadsheet
// webhook. The push is best-effort by contract: failures are logged and
// dropped, never retried, never surfaced to the student.
package sheet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/quizbd/exam-portal/internal/model"
	"github.com/rs/zerolog"
)

// Client posts result payloads to the webhook with a bounded timeout so a
// slow or unreachable endpoint can never hang the caller.
type Client struct {
	url  string
	http *http.Client
	log  zerolog.Logger
}

// NewClient creates a webhook client. An empty url disables submission.
func NewClient(url string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		url:  url,
		http: &http.Client{Timeout: timeout},
		log:  log.With().Str("component", "sheet_client").Logger(),
	}
}

// Enabled reports whether a webhook URL is configured.
func (c *Client) Enabled() bool { return c.url != "" }

// Submit sends one result payload. The response body is drained and
// discarded; no contract exists beyond "the POST happened".
func (c *Client) Submit(ctx context.Context, payload model.SyncPayload) error {
	if !c.Enabled() {
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post result: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	c.log.Debug().Str("email", payload.Email).Str("exam", payload.ExamTitle).
		Msg("Result synced to sheet")
	return nil
}

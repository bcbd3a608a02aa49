// Package n8n triggers workflow runs through the engine's webhook nodes.
package n8n

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"huntboard/internal/domain"
)

// WebhookDispatcher POSTs dispatch requests to the workflow's webhook URL.
type WebhookDispatcher struct {
	httpClient *http.Client
}

func NewWebhookDispatcher(timeout time.Duration) *WebhookDispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookDispatcher{
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (d *WebhookDispatcher) Dispatch(ctx context.Context, req domain.DispatchRequest) error {
	if req.WebhookURL == "" {
		return fmt.Errorf("workflow %d has no webhook url", req.WorkflowID)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode dispatch request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Dispatch-ID", req.DispatchID.String())

	resp, err := d.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("trigger workflow %d: %w", req.WorkflowID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("trigger workflow %d: HTTP %d: %s", req.WorkflowID, resp.StatusCode, bytes.TrimSpace(snippet))
	}
	return nil
}

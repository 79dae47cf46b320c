package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
)

// LedgerClient issues the credit debit to the external billing collaborator.
// Exactly one debit per verified success; failures and retries cost nothing.
type LedgerClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewLedgerClient(baseURL string) *LedgerClient {
	return &LedgerClient{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

func (c *LedgerClient) Debit(ctx context.Context, attemptID, jobID string) error {
	if c.baseURL == "" {
		log.Printf("Ledger not configured, skipping debit for attempt %s", attemptID)
		return nil
	}

	payload := map[string]interface{}{
		"attempt_id": attemptID,
		"job_id":     jobID,
		"credits":    1,
	}
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode debit request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/debits", bytes.NewBuffer(jsonBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ledger debit failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ledger returned status %d: %s", resp.StatusCode, body)
	}
	return nil
}

// BatchSummary is the user-visible rollup after a batch apply.
type BatchSummary struct {
	Total        int `json:"total"`
	Applied      int `json:"applied"`
	Failed       int `json:"failed"`
	ManualReview int `json:"manual_review"`
}

// NotificationClient pushes batch summaries to the external notification
// collaborator.
type NotificationClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewNotificationClient(baseURL string) *NotificationClient {
	return &NotificationClient{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

func (c *NotificationClient) SendBatchSummary(ctx context.Context, summary BatchSummary) error {
	if c.baseURL == "" {
		log.Printf("Notifications not configured, skipping batch summary")
		return nil
	}

	jsonBody, err := json.Marshal(summary)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/notifications/batch-summary", bytes.NewBuffer(jsonBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notification send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification service returned status %d", resp.StatusCode)
	}
	return nil
}

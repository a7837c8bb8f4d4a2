package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vitalstudio/auth-service/internal/auth/domain"
)

const (
	resendEndpoint = "https://api.resend.com/emails"
	resendTimeout  = 10 * time.Second
)

// ResendNotifier delivers email through the Resend HTTP API.
type ResendNotifier struct {
	apiKey string
	sender string
	client *http.Client

	// endpoint is overridable for tests.
	endpoint string
}

func NewResendNotifier(apiKey, sender string) *ResendNotifier {
	return &ResendNotifier{
		apiKey:   apiKey,
		sender:   sender,
		client:   &http.Client{Timeout: resendTimeout},
		endpoint: resendEndpoint,
	}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

func (n *ResendNotifier) Send(ctx context.Context, recipient domain.Email, subject, body string) error {
	payload, err := json.Marshal(resendRequest{
		From:    n.sender,
		To:      []string{string(recipient)},
		Subject: subject,
		Text:    body,
	})
	if err != nil {
		return fmt.Errorf("encode resend request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build resend request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("send email: resend returned %s", resp.Status)
	}
	return nil
}

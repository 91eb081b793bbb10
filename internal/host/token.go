package host

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/paystream/ledger/internal/models"
)

// TokenClient is the token-transfer collaborator. A refund is only marked
// Processed after Transfer reports success; any error leaves the refund
// retryable.
type TokenClient interface {
	Transfer(ctx context.Context, token, from, to models.Address, amount models.Amount) error
}

// HTTPTokenClient transfers tokens through an external token service.
type HTTPTokenClient struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewHTTPTokenClient creates a client for the token service at baseURL.
func NewHTTPTokenClient(baseURL string, timeout time.Duration, logger *slog.Logger) *HTTPTokenClient {
	return &HTTPTokenClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type transferRequest struct {
	Token  models.Address `json:"token"`
	From   models.Address `json:"from"`
	To     models.Address `json:"to"`
	Amount models.Amount  `json:"amount"`
}

func (c *HTTPTokenClient) Transfer(ctx context.Context, token, from, to models.Address, amount models.Amount) error {
	body, err := json.Marshal(transferRequest{Token: token, From: from, To: to, Amount: amount})
	if err != nil {
		return fmt.Errorf("failed to encode transfer request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transfer", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build transfer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("transfer request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() //nolint:errcheck // nothing useful to do with close error
	}()

	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "token transfer rejected",
			"status", resp.StatusCode,
			"token", token,
			"from", from,
			"to", to,
		)
		return fmt.Errorf("token service returned status %d", resp.StatusCode)
	}

	return nil
}

// NoopTokenClient reports every transfer as successful. Used in development
// mode when no token service is configured.
type NoopTokenClient struct{}

func (NoopTokenClient) Transfer(context.Context, models.Address, models.Address, models.Address, models.Amount) error {
	return nil
}

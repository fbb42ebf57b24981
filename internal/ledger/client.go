// Package ledger talks to the budgeting ledger's REST API: listing accounts
// and submitting transactions. A 401 triggers exactly one token refresh and
// one retry; a second 401 surfaces as ErrReconnectRequired.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shekelsync/shekelsync/internal/logger"
	"github.com/shekelsync/shekelsync/internal/model"
)

// DefaultBatchSize is the number of transactions sent per request.
const DefaultBatchSize = 100

// TokenSource supplies bearer tokens.
type TokenSource interface {
	// Token returns the current access token.
	Token(ctx context.Context) (string, error)
	// Refresh obtains a new access token after the current one was rejected.
	Refresh(ctx context.Context) (string, error)
}

// ClientConfig configures the ledger client.
type ClientConfig struct {
	BaseURL   string
	BudgetID  string
	BatchSize int

	// HTTPClient is an optional custom HTTP client (for testing).
	HTTPClient *http.Client

	// Timeout is the request timeout when HTTPClient is nil.
	Timeout time.Duration
}

// Client is a ledger API client bound to one budget.
type Client struct {
	httpClient *http.Client
	baseURL    string
	budgetID   string
	batchSize  int
	tokens     TokenSource
}

// NewClient creates a client. tokens must not be nil.
func NewClient(cfg ClientConfig, tokens TokenSource) (*Client, error) {
	if cfg.BaseURL == "" || cfg.BudgetID == "" || tokens == nil {
		return nil, ErrNotConfigured
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	batch := cfg.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		budgetID:   cfg.BudgetID,
		batchSize:  batch,
		tokens:     tokens,
	}, nil
}

type accountsResponse struct {
	Data struct {
		Accounts []struct {
			ID             string `json:"id"`
			Name           string `json:"name"`
			Type           string `json:"type"`
			Balance        int64  `json:"balance"`
			ClearedBalance int64  `json:"cleared_balance"`
			Closed         bool   `json:"closed"`
			Deleted        bool   `json:"deleted"`
		} `json:"accounts"`
	} `json:"data"`
}

// Accounts lists the budget's accounts with their balances. Deleted accounts
// are omitted.
func (c *Client) Accounts(ctx context.Context) ([]model.LedgerAccount, error) {
	var resp accountsResponse
	if err := c.do(ctx, http.MethodGet, c.budgetPath("accounts"), nil, &resp); err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}

	var out []model.LedgerAccount
	for _, a := range resp.Data.Accounts {
		if a.Deleted {
			continue
		}
		out = append(out, model.LedgerAccount{
			ID:             a.ID,
			Name:           a.Name,
			Type:           model.AccountType(a.Type),
			Balance:        model.Milliunits(a.Balance),
			ClearedBalance: model.Milliunits(a.ClearedBalance),
			Closed:         a.Closed,
		})
	}
	return out, nil
}

// CreateResult summarizes a submission.
type CreateResult struct {
	TransactionIDs     []string `json:"transaction_ids"`
	DuplicateImportIDs []string `json:"duplicate_import_ids"`
}

type createRequest struct {
	Transactions []Payload `json:"transactions"`
}

type createResponse struct {
	Data CreateResult `json:"data"`
}

// CreateTransactions submits payloads in batches. On error the result holds
// what earlier batches created.
func (c *Client) CreateTransactions(ctx context.Context, payloads []Payload) (CreateResult, error) {
	log := logger.FromContext(ctx)

	var total CreateResult
	for start := 0; start < len(payloads); start += c.batchSize {
		end := min(start+c.batchSize, len(payloads))

		var resp createResponse
		err := c.do(ctx, http.MethodPost, c.budgetPath("transactions"), createRequest{Transactions: payloads[start:end]}, &resp)
		if err != nil {
			return total, fmt.Errorf("creating transactions %d-%d: %w", start+1, end, err)
		}
		total.TransactionIDs = append(total.TransactionIDs, resp.Data.TransactionIDs...)
		total.DuplicateImportIDs = append(total.DuplicateImportIDs, resp.Data.DuplicateImportIDs...)

		log.Debug().
			Int("batch_start", start).
			Int("created", len(resp.Data.TransactionIDs)).
			Int("duplicates", len(resp.Data.DuplicateImportIDs)).
			Msg("ledger batch submitted")
	}
	return total, nil
}

func (c *Client) budgetPath(resource string) string {
	return "/budgets/" + url.PathEscape(c.budgetID) + "/" + resource
}

// do sends the request, refreshing the token and retrying once on a 401.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		payload = b
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return reconnect(err)
	}

	err = c.attempt(ctx, method, path, payload, token, out)
	if !errors.Is(err, errUnauthorized) {
		return err
	}

	log := logger.FromContext(ctx)
	log.Info().Str("path", path).Msg("ledger token rejected, refreshing")
	token, err = c.tokens.Refresh(ctx)
	if err != nil {
		return reconnect(err)
	}

	err = c.attempt(ctx, method, path, payload, token, out)
	if errors.Is(err, errUnauthorized) {
		return ErrReconnectRequired
	}
	return err
}

func (c *Client) attempt(ctx context.Context, method, path string, payload []byte, token string, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return errUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func parseError(resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var er errorResponse
	if err := json.Unmarshal(raw, &er); err == nil && er.Error.Name != "" {
		apiErr.ID = er.Error.ID
		apiErr.Name = er.Error.Name
		apiErr.Detail = er.Error.Detail
	} else {
		apiErr.Detail = strings.TrimSpace(string(raw))
	}
	return apiErr
}

func reconnect(err error) error {
	if errors.Is(err, ErrReconnectRequired) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrReconnectRequired, err)
}

package ledger

import (
	"errors"
	"fmt"
)

// ErrReconnectRequired means the ledger rejected the credentials even after
// one refresh. Callers should clear stored tokens and re-authorize.
var ErrReconnectRequired = errors.New("ledger authorization failed, reconnect required")

// ErrNotConfigured is returned when the base URL or budget is missing.
var ErrNotConfigured = errors.New("ledger client not configured")

// errUnauthorized marks a 401 so the client can refresh and retry.
var errUnauthorized = errors.New("unauthorized")

// APIError is a non-success response from the ledger API.
type APIError struct {
	StatusCode int
	ID         string
	Name       string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("ledger api %d %s: %s", e.StatusCode, e.Name, e.Detail)
	}
	return fmt.Sprintf("ledger api %d", e.StatusCode)
}

type errorResponse struct {
	Error struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Detail string `json:"detail"`
	} `json:"error"`
}

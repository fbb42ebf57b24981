package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/shekelsync/shekelsync/internal/accountmap"
)

// TokenSettingKey is where the OAuth token is kept in the settings store.
const TokenSettingKey = "ledger_token"

// StaticToken is a personal access token. It cannot be refreshed.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) {
	if s == "" {
		return "", ErrReconnectRequired
	}
	return string(s), nil
}

func (StaticToken) Refresh(context.Context) (string, error) {
	return "", ErrReconnectRequired
}

// OAuthTokens keeps an OAuth2 token in a settings store and refreshes it
// through the provider's token endpoint.
type OAuthTokens struct {
	config   *oauth2.Config
	settings accountmap.Settings

	mu sync.Mutex
}

// NewOAuthTokens returns a token source backed by settings.
func NewOAuthTokens(config *oauth2.Config, settings accountmap.Settings) *OAuthTokens {
	return &OAuthTokens{config: config, settings: settings}
}

// AuthCodeURL returns the provider URL the user visits to grant access.
func (o *OAuthTokens) AuthCodeURL(state string) string {
	return o.config.AuthCodeURL(state)
}

// Exchange trades an authorization code for a token and stores it.
func (o *OAuthTokens) Exchange(ctx context.Context, code string) error {
	tok, err := o.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchanging authorization code: %w", err)
	}
	return o.save(ctx, tok)
}

func (o *OAuthTokens) Token(ctx context.Context) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	tok, err := o.load(ctx)
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

func (o *OAuthTokens) Refresh(ctx context.Context) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	tok, err := o.load(ctx)
	if err != nil {
		return "", err
	}
	if tok.RefreshToken == "" {
		return "", ErrReconnectRequired
	}

	// The server rejected the access token; force the refresh grant.
	stale := *tok
	stale.Expiry = time.Now().Add(-time.Minute)
	fresh, err := o.config.TokenSource(ctx, &stale).Token()
	if err != nil {
		return "", fmt.Errorf("%w: refreshing token: %v", ErrReconnectRequired, err)
	}
	if err := o.save(ctx, fresh); err != nil {
		return "", err
	}
	return fresh.AccessToken, nil
}

// Clear forgets the stored token.
func (o *OAuthTokens) Clear(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.settings.DeleteSetting(ctx, TokenSettingKey)
}

func (o *OAuthTokens) load(ctx context.Context) (*oauth2.Token, error) {
	raw, ok, err := o.settings.GetSetting(ctx, TokenSettingKey)
	if err != nil {
		return nil, fmt.Errorf("loading token: %w", err)
	}
	if !ok {
		return nil, ErrReconnectRequired
	}
	var tok oauth2.Token
	if err := json.Unmarshal([]byte(raw), &tok); err != nil {
		return nil, errors.Join(ErrReconnectRequired, fmt.Errorf("decoding stored token: %w", err))
	}
	return &tok, nil
}

func (o *OAuthTokens) save(ctx context.Context, tok *oauth2.Token) error {
	raw, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}
	if err := o.settings.SetSetting(ctx, TokenSettingKey, string(raw)); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	return nil
}

package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/shekelsync/shekelsync/internal/accountmap"
)

func tokenServer(t *testing.T, refreshes *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")
		switch r.Form.Get("grant_type") {
		case "refresh_token":
			*refreshes++
			if r.Form.Get("refresh_token") != "refresh-1" {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error":"invalid_grant"}`))
				return
			}
			w.Write([]byte(`{"access_token":"access-2","token_type":"bearer","refresh_token":"refresh-2","expires_in":7200}`))
		case "authorization_code":
			w.Write([]byte(`{"access_token":"access-1","token_type":"bearer","refresh_token":"refresh-1","expires_in":7200}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
}

func oauthConfig(srv *httptest.Server) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:8080/oauth/callback",
		Endpoint: oauth2.Endpoint{
			AuthURL:   srv.URL + "/oauth/authorize",
			TokenURL:  srv.URL + "/oauth/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

func storeToken(t *testing.T, s accountmap.Settings, tok *oauth2.Token) {
	t.Helper()
	raw, err := json.Marshal(tok)
	require.NoError(t, err)
	require.NoError(t, s.SetSetting(context.Background(), TokenSettingKey, string(raw)))
}

func TestOAuthTokens_NoToken(t *testing.T) {
	refreshes := 0
	srv := tokenServer(t, &refreshes)
	defer srv.Close()

	o := NewOAuthTokens(oauthConfig(srv), accountmap.NewMemoryStore())
	_, err := o.Token(context.Background())
	assert.ErrorIs(t, err, ErrReconnectRequired)
}

func TestOAuthTokens_ExchangeAndToken(t *testing.T) {
	refreshes := 0
	srv := tokenServer(t, &refreshes)
	defer srv.Close()

	ctx := context.Background()
	o := NewOAuthTokens(oauthConfig(srv), accountmap.NewMemoryStore())
	require.NoError(t, o.Exchange(ctx, "code-1"))

	tok, err := o.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "access-1", tok)
	assert.True(t, strings.HasPrefix(o.AuthCodeURL("state"), srv.URL+"/oauth/authorize?"))
}

func TestOAuthTokens_Refresh(t *testing.T) {
	refreshes := 0
	srv := tokenServer(t, &refreshes)
	defer srv.Close()

	ctx := context.Background()
	settings := accountmap.NewMemoryStore()
	// Not expired locally; the ledger rejected it anyway.
	storeToken(t, settings, &oauth2.Token{AccessToken: "access-1", RefreshToken: "refresh-1", Expiry: time.Now().Add(time.Hour)})

	o := NewOAuthTokens(oauthConfig(srv), settings)
	tok, err := o.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, "access-2", tok)
	assert.Equal(t, 1, refreshes)

	// The new token is persisted.
	raw, ok, err := settings.GetSetting(ctx, TokenSettingKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, "refresh-2")
}

func TestOAuthTokens_RefreshRejected(t *testing.T) {
	refreshes := 0
	srv := tokenServer(t, &refreshes)
	defer srv.Close()

	settings := accountmap.NewMemoryStore()
	storeToken(t, settings, &oauth2.Token{AccessToken: "a", RefreshToken: "revoked"})

	_, err := NewOAuthTokens(oauthConfig(srv), settings).Refresh(context.Background())
	assert.ErrorIs(t, err, ErrReconnectRequired)
}

func TestOAuthTokens_NoRefreshToken(t *testing.T) {
	refreshes := 0
	srv := tokenServer(t, &refreshes)
	defer srv.Close()

	settings := accountmap.NewMemoryStore()
	storeToken(t, settings, &oauth2.Token{AccessToken: "a"})

	_, err := NewOAuthTokens(oauthConfig(srv), settings).Refresh(context.Background())
	assert.ErrorIs(t, err, ErrReconnectRequired)
	assert.Zero(t, refreshes)
}

func TestOAuthTokens_Clear(t *testing.T) {
	ctx := context.Background()
	settings := accountmap.NewMemoryStore()
	storeToken(t, settings, &oauth2.Token{AccessToken: "a"})

	o := NewOAuthTokens(&oauth2.Config{}, settings)
	require.NoError(t, o.Clear(ctx))
	_, err := o.Token(ctx)
	assert.ErrorIs(t, err, ErrReconnectRequired)
}

func TestClient_WithOAuthTokens(t *testing.T) {
	refreshes := 0
	tokenSrv := tokenServer(t, &refreshes)
	defer tokenSrv.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"data":{"accounts":[{"id":"a1","name":"Cal","type":"creditCard","balance":-1,"cleared_balance":-1}]}}`))
	}))
	defer api.Close()

	settings := accountmap.NewMemoryStore()
	storeToken(t, settings, &oauth2.Token{AccessToken: "access-1", RefreshToken: "refresh-1", Expiry: time.Now().Add(time.Hour)})

	c := newTestClient(t, api, NewOAuthTokens(oauthConfig(tokenSrv), settings), 0)
	accts, err := c.Accounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accts, 1)
	assert.Equal(t, 1, refreshes)
}

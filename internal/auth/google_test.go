package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// newGoogleTestSetup wires a GoogleAuthenticator against an httptest
// authorization server and a scripted "browser" that completes or dismisses
// the consent page.
func newGoogleTestSetup(t *testing.T, consent func(authURL string)) *GoogleAuthenticator {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/token" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "provider-access",
			"token_type":   "Bearer",
			"id_token":     "provider-id-token",
			"expires_in":   3600,
		})
	}))
	t.Cleanup(ts.Close)

	g := NewGoogleAuthenticator("client-id", "client-secret")
	g.cfg.Endpoint = oauth2.Endpoint{
		AuthURL:  ts.URL + "/auth",
		TokenURL: ts.URL + "/token",
	}
	g.timeout = 5 * time.Second
	g.openBrowser = func(authURL string) error {
		go consent(authURL)
		return nil
	}
	return g
}

// completeConsent simulates the user approving the consent page: it parses
// the auth URL and hits the loopback redirect with a code.
func completeConsent(t *testing.T, params url.Values) {
	t.Helper()
	redirect, err := url.Parse(params.Get("redirect_uri"))
	require.NoError(t, err)
	q := redirect.Query()
	q.Set("state", params.Get("state"))
	q.Set("code", "auth-code")
	redirect.RawQuery = q.Encode()
	resp, err := http.Get(redirect.String())
	require.NoError(t, err)
	resp.Body.Close()
}

func TestGoogleSignInInteractive(t *testing.T) {
	g := newGoogleTestSetup(t, func(authURL string) {
		u, err := url.Parse(authURL)
		require.NoError(t, err)
		completeConsent(t, u.Query())
	})

	idToken, err := g.SignInInteractive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "provider-id-token", idToken)
}

func TestGoogleSignInConsentDenied(t *testing.T) {
	g := newGoogleTestSetup(t, func(authURL string) {
		u, _ := url.Parse(authURL)
		params := u.Query()
		redirect, _ := url.Parse(params.Get("redirect_uri"))
		q := redirect.Query()
		q.Set("state", params.Get("state"))
		q.Set("error", "access_denied")
		redirect.RawQuery = q.Encode()
		resp, err := http.Get(redirect.String())
		if err == nil {
			resp.Body.Close()
		}
	})

	_, err := g.SignInInteractive(context.Background())
	assert.ErrorIs(t, err, ErrUserCancelled)
}

func TestGoogleSignInBrowserLaunchFailure(t *testing.T) {
	g := newGoogleTestSetup(t, func(string) {})
	g.openBrowser = func(string) error { return errors.New("no display") }

	_, err := g.SignInInteractive(context.Background())
	assert.ErrorIs(t, err, ErrUserCancelled)
}

func TestGoogleSignInContextCancelled(t *testing.T) {
	g := newGoogleTestSetup(t, func(string) {
		// Browser opens but the user never completes the flow.
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := g.SignInInteractive(ctx)
	assert.ErrorIs(t, err, ErrUserCancelled)
}

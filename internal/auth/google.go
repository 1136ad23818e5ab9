package auth

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/nishadm/agrosage/internal/browser"
)

// consentTimeout is how long we wait for the user to complete the browser
// consent flow before treating the attempt as abandoned.
const consentTimeout = 3 * time.Minute

// GoogleAuthenticator performs the interactive federated sign-in: it opens
// the system browser on Google's consent page and collects the authorization
// code on a loopback redirect listener. The resulting ID token is a provider
// token only; it must still be exchanged for a backend session.
type GoogleAuthenticator struct {
	cfg         oauth2.Config
	openBrowser func(url string) error
	listenAddr  string
	timeout     time.Duration
}

// NewGoogleAuthenticator creates an authenticator for the given OAuth client.
func NewGoogleAuthenticator(clientID, clientSecret string) *GoogleAuthenticator {
	return &GoogleAuthenticator{
		cfg: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		openBrowser: browser.Open,
		listenAddr:  "127.0.0.1:0",
		timeout:     consentTimeout,
	}
}

type callbackResult struct {
	code     string
	errParam string
}

// SignInInteractive runs the consent flow and returns the provider ID token.
// A dismissed consent page, a failed browser launch, or a cancelled context
// all map to ErrUserCancelled; everything else maps to ErrNetwork.
func (g *GoogleAuthenticator) SignInInteractive(ctx context.Context) (string, error) {
	ln, err := net.Listen("tcp", g.listenAddr)
	if err != nil {
		return "", fmt.Errorf("%w: failed to start redirect listener: %v", ErrNetwork, err)
	}
	defer ln.Close()

	cfg := g.cfg
	cfg.RedirectURL = fmt.Sprintf("http://%s/callback", ln.Addr().String())

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()

	results := make(chan callbackResult, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "Signed in. You can close this tab and return to agrosage.")
		select {
		case results <- callbackResult{code: q.Get("code"), errParam: q.Get("error")}:
		default:
		}
	})
	srv := &http.Server{Handler: mux}
	go srv.Serve(ln)
	defer srv.Close()

	authURL := cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
	)
	if err := g.openBrowser(authURL); err != nil {
		// Same user-facing outcome as a blocked popup in the web app.
		return "", fmt.Errorf("%w: could not open browser: %v", ErrUserCancelled, err)
	}

	var res callbackResult
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %v", ErrUserCancelled, ctx.Err())
	case <-time.After(g.timeout):
		return "", fmt.Errorf("%w: consent flow timed out", ErrUserCancelled)
	case res = <-results:
	}

	if res.errParam == "access_denied" {
		return "", fmt.Errorf("%w: consent denied", ErrUserCancelled)
	}
	if res.errParam != "" {
		return "", fmt.Errorf("%w: provider error: %s", ErrNetwork, res.errParam)
	}
	if res.code == "" {
		return "", fmt.Errorf("%w: redirect carried no authorization code", ErrNetwork)
	}

	token, err := cfg.Exchange(ctx, res.code, oauth2.VerifierOption(verifier))
	if err != nil {
		return "", fmt.Errorf("%w: code exchange failed: %v", ErrNetwork, err)
	}

	idToken, ok := token.Extra("id_token").(string)
	if !ok || idToken == "" {
		return "", fmt.Errorf("%w: token response carried no id_token", ErrNetwork)
	}

	return idToken, nil
}

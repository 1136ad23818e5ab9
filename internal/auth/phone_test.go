package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider is an httptest identity provider for the phone OTP flow.
type fakeProvider struct {
	sessionInfo string
	validCode   string
	sendCalls   int
	verifyCalls int
	sessionDead bool
}

func (f *fakeProvider) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/accounts:sendVerificationCode", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		f.sendCalls++
		body, _ := io.ReadAll(r.Body)
		var req map[string]string
		json.Unmarshal(body, &req)
		if req["recaptchaToken"] == "" {
			w.WriteHeader(400)
			json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{"message": "CAPTCHA_CHECK_FAILED"}})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"sessionInfo": f.sessionInfo})
	})
	mux.HandleFunc("/v1/accounts:signInWithPhoneNumber", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		f.verifyCalls++
		body, _ := io.ReadAll(r.Body)
		var req map[string]string
		json.Unmarshal(body, &req)
		switch {
		case f.sessionDead || req["sessionInfo"] != f.sessionInfo:
			w.WriteHeader(400)
			json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{"message": "SESSION_EXPIRED"}})
		case req["code"] != f.validCode:
			w.WriteHeader(400)
			json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{"message": "INVALID_CODE"}})
		default:
			json.NewEncoder(w).Encode(map[string]string{"idToken": "provider-id-token"})
		}
	})
	return mux
}

func newPhoneTestSetup(t *testing.T) (*fakeProvider, *PhoneAuthenticator) {
	t.Helper()
	provider := &fakeProvider{sessionInfo: "session-abc", validCode: "123456"}
	ts := httptest.NewServer(provider.handler())
	t.Cleanup(ts.Close)
	p := NewPhoneAuthenticator(ts.URL, "test-key", StaticAttestor("attest-token"))
	return provider, p
}

func TestPhoneSignInHappyPath(t *testing.T) {
	provider, p := newPhoneTestSetup(t)

	ch, err := p.RequestCode(context.Background(), "+911234567890")
	require.NoError(t, err)
	require.NotNil(t, ch)
	assert.Equal(t, 1, provider.sendCalls)

	idToken, err := p.VerifyCode(context.Background(), ch, "123456")
	require.NoError(t, err)
	assert.Equal(t, "provider-id-token", idToken)
}

func TestVerifyCodeChallengeIsSingleUse(t *testing.T) {
	provider, p := newPhoneTestSetup(t)

	ch, err := p.RequestCode(context.Background(), "+911234567890")
	require.NoError(t, err)

	_, err = p.VerifyCode(context.Background(), ch, "123456")
	require.NoError(t, err)

	// Replaying the previously accepted code must not produce a second
	// login, and must not reach the provider again.
	verifyCallsBefore := provider.verifyCalls
	_, err = p.VerifyCode(context.Background(), ch, "123456")
	assert.ErrorIs(t, err, ErrInvalidOrExpiredCode)
	assert.Equal(t, verifyCallsBefore, provider.verifyCalls)
}

func TestVerifyCodeWrongCodeCanBeRetried(t *testing.T) {
	_, p := newPhoneTestSetup(t)

	ch, err := p.RequestCode(context.Background(), "+911234567890")
	require.NoError(t, err)

	_, err = p.VerifyCode(context.Background(), ch, "000000")
	assert.ErrorIs(t, err, ErrInvalidOrExpiredCode)

	// A mistyped code does not burn the challenge.
	idToken, err := p.VerifyCode(context.Background(), ch, "123456")
	require.NoError(t, err)
	assert.Equal(t, "provider-id-token", idToken)
}

func TestVerifyCodeExpiredChallenge(t *testing.T) {
	_, p := newPhoneTestSetup(t)

	ch, err := p.RequestCode(context.Background(), "+911234567890")
	require.NoError(t, err)

	// Advance the authenticator clock past the challenge TTL.
	p.now = func() time.Time { return time.Now().Add(challengeTTL + time.Second) }

	_, err = p.VerifyCode(context.Background(), ch, "123456")
	assert.ErrorIs(t, err, ErrInvalidOrExpiredCode)
}

func TestVerifyCodeNilChallenge(t *testing.T) {
	_, p := newPhoneTestSetup(t)
	_, err := p.VerifyCode(context.Background(), nil, "123456")
	assert.ErrorIs(t, err, ErrInvalidOrExpiredCode)
}

func TestVerifyCodeProviderSessionExpired(t *testing.T) {
	provider, p := newPhoneTestSetup(t)

	ch, err := p.RequestCode(context.Background(), "+911234567890")
	require.NoError(t, err)

	provider.sessionDead = true
	_, err = p.VerifyCode(context.Background(), ch, "123456")
	assert.ErrorIs(t, err, ErrInvalidOrExpiredCode)

	// An expired provider session burns the challenge for good.
	provider.sessionDead = false
	_, err = p.VerifyCode(context.Background(), ch, "123456")
	assert.ErrorIs(t, err, ErrInvalidOrExpiredCode)
}

func TestRequestCodeAttestationFailure(t *testing.T) {
	provider := &fakeProvider{sessionInfo: "session-abc", validCode: "123456"}
	ts := httptest.NewServer(provider.handler())
	defer ts.Close()

	p := NewPhoneAuthenticator(ts.URL, "test-key", AttestorFunc(func(context.Context) (string, error) {
		return "", context.DeadlineExceeded
	}))

	_, err := p.RequestCode(context.Background(), "+911234567890")
	assert.ErrorIs(t, err, ErrNetwork)
	assert.Equal(t, 0, provider.sendCalls)
}

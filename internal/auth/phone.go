package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// challengeTTL bounds how long a sent code stays verifiable on our side.
// The provider enforces its own, usually shorter, window.
const challengeTTL = 5 * time.Minute

// Attestor produces a bot-check attestation token that must accompany a
// request to send a verification code. In the web app this is an invisible
// recaptcha bound to a DOM anchor; here it is pluggable.
type Attestor interface {
	Attest(ctx context.Context) (string, error)
}

// AttestorFunc adapts a function to the Attestor interface.
type AttestorFunc func(ctx context.Context) (string, error)

func (f AttestorFunc) Attest(ctx context.Context) (string, error) { return f(ctx) }

// StaticAttestor returns the same attestation token for every request.
// Useful for test keys and development projects with enforcement disabled.
func StaticAttestor(token string) Attestor {
	return AttestorFunc(func(context.Context) (string, error) { return token, nil })
}

// Challenge is the opaque, single-use handle for an in-progress phone
// verification. It is created by RequestCode and consumed by the first
// successful VerifyCode.
type Challenge struct {
	id          string
	sessionInfo string
	phoneNumber string
	issuedAt    time.Time

	mu       sync.Mutex
	consumed bool
}

// ID returns the challenge's identifier, for logging only.
func (c *Challenge) ID() string { return c.id }

// take marks the challenge consumed. It reports false if the challenge was
// already consumed or has expired.
func (c *Challenge) take(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.consumed || now.After(c.issuedAt.Add(challengeTTL)) {
		return false
	}
	c.consumed = true
	return true
}

// release un-consumes a challenge after a failed provider call so the user
// can retype a mistyped code against the same challenge.
func (c *Challenge) release() {
	c.mu.Lock()
	c.consumed = false
	c.mu.Unlock()
}

// PhoneAuthenticator drives the two-phase OTP sign-in against the identity
// provider's REST surface. It never talks to the application backend; the
// ID token it produces still has to be exchanged for a backend session.
type PhoneAuthenticator struct {
	http     *resty.Client
	apiKey   string
	attestor Attestor
	now      func() time.Time
}

// NewPhoneAuthenticator creates an authenticator against the given identity
// provider base URL and API key.
func NewPhoneAuthenticator(baseURL, apiKey string, attestor Attestor) *PhoneAuthenticator {
	return &PhoneAuthenticator{
		http: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Content-Type", "application/json"),
		apiKey:   apiKey,
		attestor: attestor,
		now:      time.Now,
	}
}

type providerError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// RequestCode sends a one-time code to the given phone number and returns
// the opaque challenge for the verification phase. An attestation token is
// fetched for every request, matching the per-open recaptcha of the web app.
func (p *PhoneAuthenticator) RequestCode(ctx context.Context, phoneNumber string) (*Challenge, error) {
	attestToken, err := p.attestor.Attest(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: attestation failed: %v", ErrNetwork, err)
	}

	var result struct {
		SessionInfo string `json:"sessionInfo"`
	}
	var provErr providerError

	resp, err := p.http.R().
		SetContext(ctx).
		SetQueryParam("key", p.apiKey).
		SetBody(map[string]string{
			"phoneNumber":    phoneNumber,
			"recaptchaToken": attestToken,
		}).
		SetResult(&result).
		SetError(&provErr).
		Post("/v1/accounts:sendVerificationCode")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	if resp.IsError() {
		return nil, mapProviderError(provErr.Error.Message, resp.StatusCode())
	}
	if result.SessionInfo == "" {
		return nil, fmt.Errorf("%w: provider returned no session info", ErrNetwork)
	}

	ch := &Challenge{
		id:          uuid.NewString(),
		sessionInfo: result.SessionInfo,
		phoneNumber: phoneNumber,
		issuedAt:    p.now(),
	}
	log.Debug().Str("challenge", ch.id).Msg("verification code sent")
	return ch, nil
}

// VerifyCode redeems a challenge with the code the user received. The
// challenge is single-use: once a code has been accepted, any further
// VerifyCode call on the same challenge returns ErrInvalidOrExpiredCode.
func (p *PhoneAuthenticator) VerifyCode(ctx context.Context, ch *Challenge, code string) (string, error) {
	if ch == nil || !ch.take(p.now()) {
		return "", ErrInvalidOrExpiredCode
	}

	var result struct {
		IDToken string `json:"idToken"`
	}
	var provErr providerError

	resp, err := p.http.R().
		SetContext(ctx).
		SetQueryParam("key", p.apiKey).
		SetBody(map[string]string{
			"sessionInfo": ch.sessionInfo,
			"code":        code,
		}).
		SetResult(&result).
		SetError(&provErr).
		Post("/v1/accounts:signInWithPhoneNumber")
	if err != nil {
		ch.release()
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	if resp.IsError() {
		mapped := mapProviderError(provErr.Error.Message, resp.StatusCode())
		// A wrong code may be retried against the same challenge; an
		// expired session may not.
		if !strings.Contains(provErr.Error.Message, "SESSION_EXPIRED") {
			ch.release()
		}
		return "", mapped
	}
	if result.IDToken == "" {
		ch.release()
		return "", fmt.Errorf("%w: provider returned no id token", ErrNetwork)
	}

	log.Debug().Str("challenge", ch.id).Msg("verification code accepted")
	return result.IDToken, nil
}

// mapProviderError funnels the provider's error strings into the closed
// taxonomy. Unknown messages and server errors fall through to ErrNetwork.
func mapProviderError(message string, status int) error {
	switch {
	case strings.Contains(message, "INVALID_CODE"),
		strings.Contains(message, "SESSION_EXPIRED"),
		strings.Contains(message, "CODE_EXPIRED"):
		return ErrInvalidOrExpiredCode
	case strings.Contains(message, "INVALID_PHONE_NUMBER"),
		strings.Contains(message, "MISSING_PHONE_NUMBER"):
		return fmt.Errorf("%w: %s", ErrInvalidCredentials, message)
	case strings.Contains(message, "CAPTCHA_CHECK_FAILED"):
		return fmt.Errorf("%w: %s", ErrUserCancelled, message)
	default:
		return fmt.Errorf("%w: provider error %q (status %d)", ErrNetwork, message, status)
	}
}

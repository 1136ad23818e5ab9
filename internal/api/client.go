package api

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/nishadm/agrosage/internal/auth"
)

// AuthSource supplies the bearer token for authenticated calls and performs
// the single refresh allowed after a 401. The session layer implements it;
// the client never touches token storage itself.
type AuthSource interface {
	AccessToken() string
	RefreshAccess(ctx context.Context) (string, error)
}

type ClientOpts struct {
	BaseURL string
}

// Client talks to the agrosage backend.
type Client struct {
	httpClient *resty.Client
	auth       AuthSource
}

func NewClient(opts ClientOpts) *Client {
	c := &Client{}
	c.httpClient = resty.New().
		SetDebug(false).
		SetBaseURL(opts.BaseURL).
		SetHeaders(map[string]string{
			"Accept":       "application/json",
			"Content-Type": "application/json",
		})
	return c
}

// SetAuthSource attaches the session layer after construction. Calls made
// without an auth source go out unauthenticated.
func (c *Client) SetAuthSource(s AuthSource) {
	c.auth = s
}

// TokenPairResponse is the backend's access/refresh issue response. Refresh
// is optional on the refresh endpoint; the server may not rotate it.
type TokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

type detailResponse struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

// ObtainToken performs the primary email/password sign-in. The backend is
// the identity provider for passwords, so this returns the session pair
// directly.
func (c *Client) ObtainToken(ctx context.Context, email, password string) (TokenPairResponse, error) {
	var result TokenPairResponse
	var errBody detailResponse

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&result).
		SetError(&errBody).
		Post("/api/token/")
	if err != nil {
		return TokenPairResponse{}, fmt.Errorf("%w: %v", auth.ErrNetwork, err)
	}
	if resp.StatusCode() == 401 || resp.StatusCode() == 400 {
		return TokenPairResponse{}, fmt.Errorf("%w: %s", auth.ErrInvalidCredentials, errBody.Detail)
	}
	if _, err := handleError(resp, nil); err != nil {
		return TokenPairResponse{}, err
	}
	return result, nil
}

// RefreshToken exchanges a refresh token for a new pair. Callers own the
// rejected-refresh policy; this reports failure without interpretation.
func (c *Client) RefreshToken(ctx context.Context, refresh string) (TokenPairResponse, error) {
	var result TokenPairResponse

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]string{"refresh": refresh}).
		SetResult(&result).
		Post("/api/token/refresh/")
	if _, err := handleError(resp, err); err != nil {
		return TokenPairResponse{}, err
	}
	return result, nil
}

// Register creates an email/password account. It does not sign the user in;
// login happens as a separate step after successful creation.
func (c *Client) Register(ctx context.Context, firstName, lastName, email, password string) error {
	var errBody map[string]any

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"first_name": firstName,
			"last_name":  lastName,
			"email":      email,
			"password":   password,
		}).
		SetError(&errBody).
		Post("/api/register/")
	if err != nil {
		return fmt.Errorf("%w: %v", auth.ErrNetwork, err)
	}
	if resp.IsError() {
		// A 409, or a field error on "email", means the address is taken.
		if resp.StatusCode() == 409 {
			return auth.ErrAccountExists
		}
		if _, taken := errBody["email"]; taken && resp.StatusCode() < 500 {
			return auth.ErrAccountExists
		}
		_, err := handleError(resp, nil)
		return err
	}
	return nil
}

// ExchangeFirebase exchanges a federated or phone provider token for the
// application's own session pair. Downstream authorization always uses the
// backend-issued tokens, never the provider's.
func (c *Client) ExchangeFirebase(ctx context.Context, providerToken string) (TokenPairResponse, error) {
	var result TokenPairResponse
	var errBody detailResponse

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]string{"token": providerToken}).
		SetResult(&result).
		SetError(&errBody).
		Post("/api/auth/firebase/")
	if err != nil {
		return TokenPairResponse{}, fmt.Errorf("%w: %v", auth.ErrNetwork, err)
	}
	if resp.StatusCode() == 401 || resp.StatusCode() == 400 {
		msg := errBody.Error
		if msg == "" {
			msg = errBody.Detail
		}
		return TokenPairResponse{}, fmt.Errorf("%w: %s", auth.ErrInvalidCredentials, msg)
	}
	if _, err := handleError(resp, nil); err != nil {
		return TokenPairResponse{}, err
	}
	return result, nil
}

// handleError is a generic error handler for failing responses (>399 status
// code). Without this, failing responses would have nil error. Server-side
// failures map to the network/server catch-all.
func handleError(res *resty.Response, err error) (*resty.Response, error) {
	if err != nil {
		return res, fmt.Errorf("%w: %v", auth.ErrNetwork, err)
	}
	if res.StatusCode() >= 500 {
		return res, fmt.Errorf("%w: %s %s (status: %d)", auth.ErrNetwork,
			res.Request.Method, res.Request.URL, res.StatusCode())
	}
	if res.IsError() {
		return res, fmt.Errorf("request failed: %s %s (status: %d)",
			res.Request.Method, res.Request.URL, res.StatusCode())
	}
	return res, nil
}

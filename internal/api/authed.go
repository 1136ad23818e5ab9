package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/nishadm/agrosage/internal/auth"
)

// doAuthed runs an authenticated request. On a 401 it asks the auth source
// for exactly one refresh and retries once; a 401 from the refresh endpoint
// itself never reaches here (the refresher clears the session instead).
func (c *Client) doAuthed(ctx context.Context, send func(token string) (*resty.Response, error)) (*resty.Response, error) {
	var token string
	if c.auth != nil {
		token = c.auth.AccessToken()
	}

	resp, err := send(token)
	if err != nil {
		return resp, fmt.Errorf("%w: %v", auth.ErrNetwork, err)
	}

	if resp.StatusCode() == http.StatusUnauthorized && c.auth != nil {
		log.Debug().Str("url", resp.Request.URL).Msg("401 response, refreshing session once")
		newToken, refreshErr := c.auth.RefreshAccess(ctx)
		if refreshErr != nil {
			return resp, refreshErr
		}
		resp, err = send(newToken)
		if err != nil {
			return resp, fmt.Errorf("%w: %v", auth.ErrNetwork, err)
		}
	}

	return handleError(resp, nil)
}

func bearer(token string) string {
	return "Bearer " + token
}

package api

import (
	"context"

	"github.com/go-resty/resty/v2"
)

// Profile is the backend's view of the signed-in user.
type Profile struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	PhotoURL    string `json:"photo_url"`
}

// ProfileUpdate carries the editable profile fields for a PATCH. Nil fields
// are left untouched by the backend.
type ProfileUpdate struct {
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	PhotoURL    *string `json:"photo_url,omitempty"`
}

// GetProfile fetches the signed-in user's profile.
func (c *Client) GetProfile(ctx context.Context) (Profile, error) {
	var result Profile
	_, err := c.doAuthed(ctx, func(token string) (*resty.Response, error) {
		return c.httpClient.R().
			SetContext(ctx).
			SetHeader("Authorization", bearer(token)).
			SetResult(&result).
			Get("/api/me/")
	})
	return result, err
}

// UpdateProfile patches the given fields and returns the updated profile.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (Profile, error) {
	var result Profile
	_, err := c.doAuthed(ctx, func(token string) (*resty.Response, error) {
		return c.httpClient.R().
			SetContext(ctx).
			SetHeader("Authorization", bearer(token)).
			SetBody(update).
			SetResult(&result).
			Patch("/api/me/")
	})
	return result, err
}

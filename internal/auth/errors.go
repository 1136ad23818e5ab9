package auth

import "errors"

// Closed error taxonomy for the sign-in and session lifecycle. Raw provider
// and HTTP errors are mapped to these at component boundaries; nothing else
// crosses into the session layer or the UI.
var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrAccountExists        = errors.New("account already exists")
	ErrUserCancelled        = errors.New("sign-in cancelled by user")
	ErrInvalidOrExpiredCode = errors.New("invalid or expired verification code")
	ErrNoRefreshToken       = errors.New("no refresh token")
	ErrRefreshRejected      = errors.New("refresh token rejected")
	ErrMalformedToken       = errors.New("malformed access token")
	ErrNetwork              = errors.New("network or server error")
)

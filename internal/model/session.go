package model

import "time"

// Session is one refresh-token login. RefreshTokenHash is a sha256 of the
// token; the plaintext only ever lives in the client's cookie.
type Session struct {
	ID               string
	UserID           int
	RefreshTokenHash string
	ExpiresAt        time.Time
}

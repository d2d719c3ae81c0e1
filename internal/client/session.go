package client

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the identity carried by a token, read without verifying its signature.
type Session struct {
	UserID    int64
	Username  string
	ExpiresAt time.Time
}

type tokenClaims struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// DecodeToken reads id, username and exp from a JWT payload. The signature is the
// server's concern and is not checked.
func DecodeToken(token string) (Session, error) {
	var claims tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Session{}, err
	}
	s := Session{UserID: claims.ID, Username: claims.Username}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

// Session reports who is signed in. An undecodable, expired or exp-less token counts as
// signed out and is discarded.
func (c *Client) Session() (Session, bool) {
	token := c.Token()
	if token == "" {
		return Session{}, false
	}
	s, err := DecodeToken(token)
	if err != nil || s.ExpiresAt.IsZero() || !s.ExpiresAt.After(c.clock.Now()) {
		c.log.Info("discarding unusable token", "error", err, "expires_at", s.ExpiresAt)
		if err := c.Logout(); err != nil {
			c.log.Warn("clear token failed", "error", err)
		}
		return Session{}, false
	}
	return s, true
}

// Package auth defines the session model shared by the authentication providers and
// the context plumbing that carries a signed-in user's access token to the data store.
package auth

import (
	"context"
	"errors"
	"time"
)

// ErrConfirmationRequired is returned by SignUp when the provider created the account
// but will not issue a session until the e-mail address is confirmed
var ErrConfirmationRequired = errors.New("check your email to confirm your account before signing in")

// Error is an authentication failure whose message is safe to show on the sign-in form
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// User identifies the signed-in account
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is an authenticated session issued by a provider
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         User
}

// NeedsRefresh reports whether the access token expires within margin of now
func (s *Session) NeedsRefresh(now time.Time, margin time.Duration) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return s.ExpiresAt.Sub(now) < margin
}

// Provider is the external authentication collaborator
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, accessToken string) error
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
}

type contextKey struct{}

// WithAccessToken returns a context carrying the user's access token
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, contextKey{}, token)
}

// AccessToken returns the token stored by WithAccessToken, if any
func AccessToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(contextKey{}).(string)
	return token, ok && token != ""
}

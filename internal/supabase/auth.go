package supabase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/username/team-calendar/internal/auth"
)

// Auth is the GoTrue e-mail/password provider. It implements auth.Provider.
type Auth struct {
	client *Client
	now    func() time.Time
}

// NewAuth returns the authentication API of the client's project
func NewAuth(client *Client) *Auth {
	return &Auth{client: client, now: time.Now}
}

// SignIn exchanges credentials for a session
func (a *Auth) SignIn(ctx context.Context, email, password string) (*auth.Session, error) {
	var resp tokenResponse
	if err := a.token(ctx, "password", credentials{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}

	a.client.logger.Info("User signed in", zap.String("email", email))
	return a.session(resp)
}

// SignUp registers a new account. When the project requires e-mail confirmation no
// session is issued and auth.ErrConfirmationRequired is returned.
func (a *Auth) SignUp(ctx context.Context, email, password string) (*auth.Session, error) {
	var resp signupResponse
	err := a.client.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/signup",
		body:   credentials{Email: email, Password: password},
		bearer: a.client.anonKey,
	}, &resp)
	if err != nil {
		return nil, authError("sign up", err)
	}

	if resp.AccessToken == "" {
		a.client.logger.Info("Account created, confirmation pending",
			zap.String("email", email),
			zap.String("user_id", resp.ID))
		return nil, auth.ErrConfirmationRequired
	}

	a.client.logger.Info("Account created", zap.String("email", email))
	return a.session(resp.tokenResponse)
}

// SignOut revokes the session behind accessToken
func (a *Auth) SignOut(ctx context.Context, accessToken string) error {
	err := a.client.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/logout",
		bearer: accessToken,
	}, nil)
	if err != nil {
		return authError("sign out", err)
	}
	return nil
}

// Refresh trades a refresh token for a new session. Refresh tokens are single use.
func (a *Auth) Refresh(ctx context.Context, refreshToken string) (*auth.Session, error) {
	var resp tokenResponse
	if err := a.token(ctx, "refresh_token", refreshRequest{RefreshToken: refreshToken}, &resp); err != nil {
		return nil, err
	}

	a.client.logger.Debug("Session refreshed")
	return a.session(resp)
}

func (a *Auth) token(ctx context.Context, grantType string, body interface{}, resp *tokenResponse) error {
	query := url.Values{}
	query.Set("grant_type", grantType)

	err := a.client.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  query,
		body:   body,
		bearer: a.client.anonKey,
	}, resp)
	if err != nil {
		return authError(grantType+" grant", err)
	}
	return nil
}

func (a *Auth) session(resp tokenResponse) (*auth.Session, error) {
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("auth response carried no access token")
	}

	s := &auth.Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}
	switch {
	case resp.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(resp.ExpiresAt, 0)
	case resp.ExpiresIn > 0:
		s.ExpiresAt = a.now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	if resp.User != nil {
		s.User = auth.User{ID: resp.User.ID, Email: resp.User.Email}
	}
	return s, nil
}

// authError turns a rejected call into a message the sign-in form can show.
// Transport failures stay wrapped.
func authError(op string, err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
		return &auth.Error{Status: apiErr.Status, Message: apiErr.Message}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

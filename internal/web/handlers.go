package web

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/username/team-calendar/internal/auth"
	"github.com/username/team-calendar/internal/calendar"
	"github.com/username/team-calendar/internal/dashboard"
	"github.com/username/team-calendar/internal/store"
)

const (
	modeSignIn = "signin"
	modeSignUp = "signup"

	genericAuthError = "Something went wrong. Please try again."
)

func authMode(s string) string {
	if s == modeSignUp {
		return modeSignUp
	}
	return modeSignIn
}

// handleAuthPage renders the sign-in form, or sends a signed-in user to the dashboard
func (s *Server) handleAuthPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.currentSession(r); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	s.renderAuth(w, r, http.StatusOK, authPage{Mode: authMode(r.URL.Query().Get("mode"))})
}

// handleAuthSubmit signs in or creates an account. Failures re-render the form with
// the provider's message.
func (s *Server) handleAuthSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	page := authPage{
		Mode:  authMode(r.PostFormValue("mode")),
		Email: strings.TrimSpace(r.PostFormValue("email")),
	}
	password := r.PostFormValue("password")

	var (
		session *auth.Session
		err     error
	)
	if page.Mode == modeSignUp {
		session, err = s.provider.SignUp(r.Context(), page.Email, password)
	} else {
		session, err = s.provider.SignIn(r.Context(), page.Email, password)
	}

	if err != nil {
		var authErr *auth.Error
		switch {
		case errors.Is(err, auth.ErrConfirmationRequired):
			page.Mode = modeSignIn
			page.Notice = "Check your email to confirm your account, then sign in."
			s.renderAuth(w, r, http.StatusOK, page)
		case errors.As(err, &authErr):
			page.Error = authErr.Message
			s.renderAuth(w, r, http.StatusUnauthorized, page)
		default:
			s.logger.Error("Authentication request failed",
				zap.String("mode", page.Mode),
				zap.Error(err))
			page.Error = genericAuthError
			s.renderAuth(w, r, http.StatusBadGateway, page)
		}
		return
	}

	if err := s.startSession(w, session); err != nil {
		s.logger.Error("Failed to start session", zap.Error(err))
		page.Error = genericAuthError
		s.renderAuth(w, r, http.StatusInternalServerError, page)
		return
	}

	s.logger.Info("Session started",
		zap.String("email", session.User.Email),
		zap.String("mode", page.Mode))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) renderAuth(w http.ResponseWriter, r *http.Request, status int, page authPage) {
	page.Layout = s.layout(r, nil)
	if err := s.pages.render(w, status, "auth.html", page); err != nil {
		s.logger.Error("Failed to render auth page", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// handleDashboard renders the active tab. The first visit of a session starts the
// background fetch of shared events.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	sess.Board.EnsureLoaded(r.Context())

	view, err := sess.Board.View(s.now())
	if err != nil {
		s.logger.Error("Failed to build calendar view", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	tab := "calendar"
	if r.URL.Query().Get("tab") == "todos" {
		tab = "todos"
	}

	page := dashboardPage{
		Layout:     s.layout(r, sess),
		Tab:        tab,
		View:       view,
		Categories: categories,
		Weekdays:   weekdays,
	}
	page.Layout.Refresh = view.Loading && tab == "calendar"

	if err := s.pages.render(w, http.StatusOK, "dashboard.html", page); err != nil {
		s.logger.Error("Failed to render dashboard", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func backToDashboard(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handlePrev(w http.ResponseWriter, r *http.Request) {
	sessionFrom(r.Context()).Board.Prev()
	backToDashboard(w, r)
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	sessionFrom(r.Context()).Board.Next()
	backToDashboard(w, r)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	if date := r.PostFormValue("date"); date != "" {
		sessionFrom(r.Context()).Board.Toggle(date)
	}
	backToDashboard(w, r)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	sessionFrom(r.Context()).Board.Load(r.Context())
	backToDashboard(w, r)
}

// handleAddEvent submits the draft. Write failures are logged only; the form keeps
// what was typed.
func (s *Server) handleAddEvent(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	draft := dashboard.Draft{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Type:        calendar.EventType(r.PostFormValue("type")),
	}

	err := sess.Board.Submit(r.Context(), draft, sess.Auth().User.ID)
	switch {
	case err == nil:
	case errors.Is(err, dashboard.ErrNoSelection), errors.Is(err, store.ErrEmptyTitle):
		// nothing was sent
	default:
		s.logger.Warn("Event was not added", zap.Error(err))
	}

	backToDashboard(w, r)
}

func (s *Server) handleRemoveEvent(w http.ResponseWriter, r *http.Request) {
	if id := r.PostFormValue("id"); id != "" {
		sessionFrom(r.Context()).Board.MarkPendingDelete(id)
	}
	backToDashboard(w, r)
}

func (s *Server) handleConfirmRemove(w http.ResponseWriter, r *http.Request) {
	if err := sessionFrom(r.Context()).Board.Confirm(r.Context()); err != nil {
		s.logger.Warn("Event was not removed", zap.Error(err))
	}
	backToDashboard(w, r)
}

func (s *Server) handleCancelRemove(w http.ResponseWriter, r *http.Request) {
	sessionFrom(r.Context()).Board.CancelDelete()
	backToDashboard(w, r)
}

// handleSignOut ends the local session even when the provider call fails
func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	a := sess.Auth()

	if err := s.provider.SignOut(r.Context(), a.AccessToken); err != nil {
		s.logger.Warn("Failed to sign out", zap.String("email", a.User.Email), zap.Error(err))
	}
	s.endSession(w, sess)

	s.logger.Info("Session ended", zap.String("email", a.User.Email))
	http.Redirect(w, r, "/auth", http.StatusSeeOther)
}

// handleFallback sends unknown paths to the dashboard or the sign-in page
func (s *Server) handleFallback(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.currentSession(r); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/auth", http.StatusSeeOther)
}

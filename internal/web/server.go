// Package web serves the dashboard: the sign-in page, the calendar and todo tabs, and
// the form posts that drive each session's board.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/csrf"
	"go.uber.org/zap"

	"github.com/username/team-calendar/internal/auth"
	"github.com/username/team-calendar/internal/calendar"
	"github.com/username/team-calendar/internal/dashboard"
)

const (
	sessionCookie = "team_calendar_session"

	// refreshMargin is how close to expiry an access token is renewed
	refreshMargin = time.Minute

	defaultSessionTTL = 12 * time.Hour
)

// Options configures a Server
type Options struct {
	Year         int
	UpcomingDays int
	Holidays     *calendar.HolidayTable

	SessionTTL    time.Duration
	SecureCookies bool

	// CSRFKey enables CSRF protection of every form when set; it must be 32 bytes
	CSRFKey []byte

	Title     string
	Subtitle  string
	BuildDate string
}

// Server is the dashboard HTTP handler
type Server struct {
	opts     Options
	provider auth.Provider
	events   dashboard.EventClient
	sessions *Sessions
	pages    *renderer
	logger   *zap.Logger
	now      func() time.Time
}

// NewServer creates a server. The provider and event client are shared by all sessions.
func NewServer(opts Options, provider auth.Provider, events dashboard.EventClient, logger *zap.Logger) (*Server, error) {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = defaultSessionTTL
	}

	pages, err := newRenderer()
	if err != nil {
		return nil, err
	}

	return &Server{
		opts:     opts,
		provider: provider,
		events:   events,
		sessions: NewSessions(opts.SessionTTL),
		pages:    pages,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Sweep evicts idle sessions
func (s *Server) Sweep(now time.Time) int {
	return s.sessions.Sweep(now)
}

// Handler returns the routed handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /static/", staticHandler())

	mux.HandleFunc("GET /auth", s.handleAuthPage)
	mux.HandleFunc("POST /auth", s.handleAuthSubmit)

	mux.HandleFunc("GET /{$}", s.requireSession(s.handleDashboard))
	mux.HandleFunc("POST /calendar/prev", s.requireSession(s.handlePrev))
	mux.HandleFunc("POST /calendar/next", s.requireSession(s.handleNext))
	mux.HandleFunc("POST /calendar/select", s.requireSession(s.handleSelect))
	mux.HandleFunc("POST /calendar/refresh", s.requireSession(s.handleRefresh))
	mux.HandleFunc("POST /events", s.requireSession(s.handleAddEvent))
	mux.HandleFunc("POST /events/remove", s.requireSession(s.handleRemoveEvent))
	mux.HandleFunc("POST /events/confirm", s.requireSession(s.handleConfirmRemove))
	mux.HandleFunc("POST /events/cancel", s.requireSession(s.handleCancelRemove))
	mux.HandleFunc("POST /signout", s.requireSession(s.handleSignOut))

	mux.HandleFunc("/", s.handleFallback)

	if len(s.opts.CSRFKey) == 0 {
		return mux
	}

	protect := csrf.Protect(s.opts.CSRFKey,
		csrf.Secure(s.opts.SecureCookies),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
	)
	protected := protect(mux)
	if s.opts.SecureCookies {
		return protected
	}

	// Without TLS the origin check must not assume an https referer
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		protected.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}

type sessionKey struct{}

func withSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

func sessionFrom(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionKey{}).(*Session)
	return sess
}

// currentSession returns the live session of the request's cookie, if any
func (s *Server) currentSession(r *http.Request) (*Session, bool) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	return s.sessions.Get(cookie.Value, s.now())
}

// requireSession sends anonymous requests to the sign-in page. For signed-in requests
// it renews a nearly expired access token and puts the token on the context for the
// event store.
func (s *Server) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.currentSession(r)
		if !ok {
			http.Redirect(w, r, "/auth", http.StatusSeeOther)
			return
		}

		a, err := sess.renew(s.now(), refreshMargin, func(refreshToken string) (*auth.Session, error) {
			return s.provider.Refresh(r.Context(), refreshToken)
		})
		if err != nil {
			s.logger.Warn("Session refresh failed, signing out",
				zap.String("email", a.User.Email),
				zap.Error(err))
			s.endSession(w, sess)
			http.Redirect(w, r, "/auth", http.StatusSeeOther)
			return
		}

		ctx := auth.WithAccessToken(r.Context(), a.AccessToken)
		ctx = withSession(ctx, sess)
		next(w, r.WithContext(ctx))
	}
}

func (s *Server) startSession(w http.ResponseWriter, a *auth.Session) error {
	now := s.now()
	board := dashboard.NewBoard(s.events, dashboard.Options{
		Year:         s.opts.Year,
		UpcomingDays: s.opts.UpcomingDays,
		Holidays:     s.opts.Holidays,
	}, now, s.logger.With(zap.String("user", a.User.Email)))

	sess, err := s.sessions.Create(*a, board, now)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.opts.SessionTTL / time.Second),
	})
	return nil
}

func (s *Server) endSession(w http.ResponseWriter, sess *Session) {
	s.sessions.Delete(sess.ID)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func (s *Server) layout(r *http.Request, sess *Session) Layout {
	l := Layout{
		Title:     s.opts.Title,
		Subtitle:  s.opts.Subtitle,
		BuildDate: s.opts.BuildDate,
	}
	if len(s.opts.CSRFKey) > 0 {
		l.CSRFField = csrf.TemplateField(r)
	}
	if sess != nil {
		l.ShowSignOut = true
		l.ShowLegend = true
		l.Email = sess.Auth().User.Email
		if l.Email == "" {
			l.Email = "Unknown user"
		}
	}
	return l
}

package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/username/team-calendar/internal/auth"
	"github.com/username/team-calendar/internal/calendar"
	"github.com/username/team-calendar/internal/store"
)

const testAnonKey = "anon-key"

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL+"/", testAnonKey, 5*time.Second, zap.NewNop())
}

func TestEventsTable_Select(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/events", r.URL.Path)

		q := r.URL.Query()
		assert.Equal(t, "id,date,title,description,type", q.Get("select"))
		assert.Equal(t, []string{"gte.2026-01-01", "lte.2026-12-31"}, q["date"])
		assert.Equal(t, "date.asc", q.Get("order"))

		assert.Equal(t, testAnonKey, r.Header.Get("apikey"))
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[
			{"id":"a","date":"2026-02-10","title":"Visit","description":"Area manager","type":"visitor"},
			{"id":12,"date":"2026-02-11","title":"Truck","description":null,"type":"boh"}
		]`)
	})

	ctx := auth.WithAccessToken(context.Background(), "user-token")
	events, err := NewEventsTable(client).Select(ctx, "2026-01-01", "2026-12-31")
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, calendar.Event{ID: "a", Date: "2026-02-10", Title: "Visit", Description: "Area manager", Type: calendar.EventTypeVisitor}, events[0])
	assert.Equal(t, "12", events[1].ID)
	assert.Empty(t, events[1].Description)
}

func TestEventsTable_SelectWithoutUserUsesAnonKey(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+testAnonKey, r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `[]`)
	})

	events, err := NewEventsTable(client).Select(context.Background(), "2026-01-01", "2026-12-31")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEventsTable_SelectError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"code":"PGRST301","message":"JWT expired","details":null,"hint":null}`)
	})

	_, err := NewEventsTable(client).Select(context.Background(), "2026-01-01", "2026-12-31")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "PGRST301", apiErr.Code)
}

func TestEventsTable_Insert(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
		assert.Equal(t, "application/vnd.pgrst.object+json", r.Header.Get("Accept"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "2026-05-01", body["date"])
		assert.Equal(t, "Staff meeting", body["title"])
		assert.Equal(t, "foh", body["type"])
		assert.Nil(t, body["description"])
		assert.Equal(t, "user-1", body["created_by"])

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"new-id","date":"2026-05-01","title":"Staff meeting","description":null,"type":"foh"}`)
	})

	createdBy := "user-1"
	ev, err := NewEventsTable(client).Insert(context.Background(), store.NewEvent{
		Date:      "2026-05-01",
		Title:     "Staff meeting",
		Type:      calendar.EventTypeFOH,
		CreatedBy: &createdBy,
	})
	require.NoError(t, err)
	assert.Equal(t, "new-id", ev.ID)
	assert.Equal(t, calendar.EventTypeFOH, ev.Type)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls), "insert must not be retried")
}

func TestEventsTable_InsertFailureIsNotRetried(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := NewEventsTable(client).Insert(context.Background(), store.NewEvent{
		Date: "2026-05-01", Title: "x", Type: calendar.EventTypeLSM,
	})
	require.Error(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestEventsTable_Delete(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		switch r.URL.Query().Get("id") {
		case "eq.present":
			_, _ = io.WriteString(w, `[{"id":"present"}]`)
		default:
			_, _ = io.WriteString(w, `[]`)
		}
	})
	table := NewEventsTable(client)

	require.NoError(t, table.Delete(context.Background(), "present"))
	assert.ErrorIs(t, table.Delete(context.Background(), "gone"), store.ErrNotFound)
}

func TestAuth_SignIn(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "Bearer "+testAnonKey, r.Header.Get("Authorization"))

		var body credentials
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.Password != "hunter22" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":"invalid_grant","error_description":"Invalid login credentials"}`)
			return
		}

		_, _ = io.WriteString(w, `{
			"access_token":"at","token_type":"bearer","expires_in":3600,"expires_at":1767225600,
			"refresh_token":"rt","user":{"id":"u1","email":"a@b.co"}
		}`)
	})
	provider := NewAuth(client)

	// a user token in the context must not leak into the token grant
	ctx := auth.WithAccessToken(context.Background(), "stale")

	session, err := provider.SignIn(ctx, "a@b.co", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "at", session.AccessToken)
	assert.Equal(t, "rt", session.RefreshToken)
	assert.Equal(t, auth.User{ID: "u1", Email: "a@b.co"}, session.User)
	assert.Equal(t, time.Unix(1767225600, 0), session.ExpiresAt)

	_, err = provider.SignIn(context.Background(), "a@b.co", "wrong")
	var authErr *auth.Error
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Invalid login credentials", authErr.Message)
}

func TestAuth_SignUpConfirmationPending(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/signup", r.URL.Path)
		_, _ = io.WriteString(w, `{"id":"u2","email":"new@b.co","confirmation_sent_at":"2026-01-01T00:00:00Z"}`)
	})

	_, err := NewAuth(client).SignUp(context.Background(), "new@b.co", "secret1")
	assert.ErrorIs(t, err, auth.ErrConfirmationRequired)
}

func TestAuth_SignUpAutoConfirm(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"access_token":"at","expires_in":3600,"refresh_token":"rt","user":{"id":"u3","email":"c@b.co"}}`)
	})

	provider := NewAuth(client)
	fixed := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	provider.now = func() time.Time { return fixed }

	session, err := provider.SignUp(context.Background(), "c@b.co", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "u3", session.User.ID)
	assert.Equal(t, fixed.Add(time.Hour), session.ExpiresAt)
}

func TestAuth_SignUpRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"code":422,"error_code":"weak_password","msg":"Password should be at least 6 characters."}`)
	})

	_, err := NewAuth(client).SignUp(context.Background(), "c@b.co", "abc")
	var authErr *auth.Error
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusUnprocessableEntity, authErr.Status)
	assert.Equal(t, "Password should be at least 6 characters.", authErr.Message)
}

func TestAuth_SignOutAndRefresh(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/v1/logout":
			assert.Equal(t, "Bearer at", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusNoContent)
		case "/auth/v1/token":
			assert.Equal(t, "refresh_token", r.URL.Query().Get("grant_type"))
			var body refreshRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "rt", body.RefreshToken)
			_, _ = io.WriteString(w, `{"access_token":"at2","expires_in":3600,"refresh_token":"rt2","user":{"id":"u1","email":"a@b.co"}}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	provider := NewAuth(client)

	require.NoError(t, provider.SignOut(context.Background(), "at"))

	session, err := provider.Refresh(context.Background(), "rt")
	require.NoError(t, err)
	assert.Equal(t, "at2", session.AccessToken)
	assert.Equal(t, "rt2", session.RefreshToken)
}

func TestAuth_ServerErrorStaysWrapped(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := NewAuth(client).SignIn(context.Background(), "a@b.co", "x")
	require.Error(t, err)

	var authErr *auth.Error
	assert.False(t, errors.As(err, &authErr))
	var apiErr *APIError
	assert.ErrorAs(t, err, &apiErr)
}

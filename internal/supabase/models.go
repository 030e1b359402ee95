package supabase

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/username/team-calendar/internal/calendar"
)

// FlexibleID handles both string and number IDs.
// The events table may use a uuid primary key (JSON string) or a bigint identity
// column (JSON number); both are kept as strings.
type FlexibleID string

// UnmarshalJSON implements json.Unmarshaler for FlexibleID
func (f *FlexibleID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = FlexibleID(s)
		return nil
	}

	var n int64
	if err := json.Unmarshal(b, &n); err == nil {
		*f = FlexibleID(strconv.FormatInt(n, 10))
		return nil
	}

	return fmt.Errorf("FlexibleID: cannot unmarshal %s", string(b))
}

// String returns string representation
func (f FlexibleID) String() string {
	return string(f)
}

// APIError is a non-2xx response from PostgREST or GoTrue
type APIError struct {
	Status  int
	Code    string
	Message string
	Hint    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("supabase: status %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("supabase: status %d: %s", e.Status, e.Message)
}

// errorBody covers both error shapes.
// PostgREST: {"code":"42P01","message":"...","details":null,"hint":null}
// GoTrue: {"error":"invalid_grant","error_description":"..."} or {"code":400,"error_code":"...","msg":"..."}
type errorBody struct {
	Code             FlexibleID `json:"code"`
	ErrorCode        string     `json:"error_code"`
	Message          string     `json:"message"`
	Msg              string     `json:"msg"`
	Error            string     `json:"error"`
	ErrorDescription string     `json:"error_description"`
	Hint             string     `json:"hint"`
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		apiErr.Message = http.StatusText(status)
		if len(body) > 0 && len(body) < 512 {
			apiErr.Message = string(body)
		}
		return apiErr
	}

	apiErr.Code = eb.ErrorCode
	if apiErr.Code == "" {
		apiErr.Code = eb.Code.String()
	}
	if apiErr.Code == "" {
		apiErr.Code = eb.Error
	}
	apiErr.Hint = eb.Hint

	for _, msg := range []string{eb.ErrorDescription, eb.Msg, eb.Message, eb.Error} {
		if msg != "" {
			apiErr.Message = msg
			break
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}

	return apiErr
}

// eventColumns is the projection used for every read and insert
const eventColumns = "id,date,title,description,type"

// eventRow is one row of the events table as PostgREST returns it
type eventRow struct {
	ID          FlexibleID `json:"id"`
	Date        string     `json:"date"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Type        string     `json:"type"`
}

func (r eventRow) toEvent() calendar.Event {
	ev := calendar.Event{
		ID:    r.ID.String(),
		Date:  r.Date,
		Title: r.Title,
		Type:  calendar.EventType(r.Type),
	}
	if r.Description != nil {
		ev.Description = *r.Description
	}
	return ev
}

// tokenResponse is GoTrue's session payload
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	RefreshToken string `json:"refresh_token"`
	User         *struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// signupResponse is a session when auto-confirm is on, or the bare user when
// e-mail confirmation is pending
type signupResponse struct {
	tokenResponse
	ID    string `json:"id"`
	Email string `json:"email"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadResponse  = errors.New("malformed server response")
)

// APIError is a non-2xx reply whose body could be decoded. Message holds the
// server's reason picked from the body, or "" when the body had none.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

// Is makes 401 and 403 replies match ErrUnauthorized.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized &&
		(e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden)
}

// errorBody is the Django REST framework error envelope. Field errors are
// usually lists but a bare string is accepted too.
type errorBody struct {
	Detail         json.RawMessage `json:"detail"`
	Email          json.RawMessage `json:"email"`
	Password       json.RawMessage `json:"password"`
	NonFieldErrors json.RawMessage `json:"non_field_errors"`
}

// reason picks the message to surface: detail, then the first email error,
// then the first password error, then the first non-field error.
func (b errorBody) reason() string {
	for _, raw := range []json.RawMessage{b.Detail, b.Email, b.Password, b.NonFieldErrors} {
		if msg := firstString(raw); msg != "" {
			return msg
		}
	}
	return ""
}

func firstString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0]
	}
	return ""
}

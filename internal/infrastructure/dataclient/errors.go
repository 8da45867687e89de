package dataclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// PostgREST error code for a single-object request that matched no rows.
const codeNoRows = "PGRST116"

// Error is a failure reported by the data service.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

// Error returns the service's message unchanged; callers show it to users.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("data service returned %d %s", e.Status, http.StatusText(e.Status))
}

// NoRows reports whether the error means no row matched.
func (e *Error) NoRows() bool {
	return e.Code == codeNoRows || e.Status == http.StatusNotFound
}

// IsNoRows reports whether err is a data service "no rows" error.
func IsNoRows(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.NoRows()
}

func parseError(status int, body []byte) error {
	apiErr := &Error{Status: status}

	var payload struct {
		Code             any    `json:"code"`
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		ErrorDescription string `json:"error_description"`
		Details          any    `json:"details"`
		Hint             string `json:"hint"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		return apiErr
	}

	// The auth API reports msg or error_description instead of message.
	apiErr.Message = firstNonEmpty(payload.Message, payload.Msg, payload.ErrorDescription)
	apiErr.Hint = payload.Hint
	if payload.Code != nil {
		apiErr.Code = fmt.Sprint(payload.Code)
	}
	if payload.Details != nil {
		apiErr.Details = fmt.Sprint(payload.Details)
	}

	return apiErr
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

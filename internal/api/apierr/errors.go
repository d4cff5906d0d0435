package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/lineupsheet/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Error codes. Lineup rejections reuse the model reason codes verbatim.
const (
	CodeBadRequest       = string(model.ReasonBadRequest)
	CodeNotFound         = string(model.ReasonNotFound)
	CodeLinkExpired      = string(model.ReasonLinkExpired)
	CodeOutOfRange       = string(model.ReasonOutOfRange)
	CodeAlreadyUsed      = string(model.ReasonAlreadyUsed)
	CodeSlotTaken        = string(model.ReasonSlotTaken)
	CodeNotYourSlot      = string(model.ReasonNotYourSlot)
	CodeRateLimited      = "rate_limited"
	CodeBusy             = "busy"
	CodeInternalError    = "internal_error"
	CodeMethodNotAllowed = "method_not_allowed"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status WriteError would use for err
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Input errors
	case errors.Is(err, model.ErrBadRequest):
		return &httpError{http.StatusBadRequest, APIError{CodeBadRequest, "participant_id, team (A or B), integer index and name are required"}}
	case errors.Is(err, model.ErrOutOfRange):
		return &httpError{http.StatusBadRequest, APIError{CodeOutOfRange, "Slot index is outside the lineup's player count"}}

	// Lifecycle errors
	case errors.Is(err, model.ErrLineupNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeNotFound, "Lineup not found"}}
	case errors.Is(err, model.ErrLinkExpired):
		return &httpError{http.StatusGone, APIError{CodeLinkExpired, "This lineup link has expired"}}

	// Conflict errors
	case errors.Is(err, model.ErrAlreadyUsed):
		return &httpError{http.StatusBadRequest, APIError{CodeAlreadyUsed, "You already hold a slot in this lineup"}}
	case errors.Is(err, model.ErrSlotTaken):
		return &httpError{http.StatusBadRequest, APIError{CodeSlotTaken, "This slot has already been taken"}}
	case errors.Is(err, model.ErrNotYourSlot):
		return &httpError{http.StatusBadRequest, APIError{CodeNotYourSlot, "You can only release your own slot"}}

	// Infrastructure errors
	case errors.Is(err, model.ErrContention):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeBusy, "Lineup is busy, please retry"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeBadRequest, message}}
}

// NewRateLimitedError creates a too many requests error
func NewRateLimitedError() error {
	return &httpError{http.StatusTooManyRequests, APIError{CodeRateLimited, "Too many requests, slow down"}}
}

// NewMethodNotAllowedError rejects a known path called with the wrong method
func NewMethodNotAllowedError() error {
	return &httpError{http.StatusMethodNotAllowed, APIError{CodeMethodNotAllowed, "Method not allowed"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}

package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/committy/internal/model"
	"github.com/mcoot/committy/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInvalidSeedToken    = "INVALID_SEED_TOKEN"
	CodeInvalidHandSize     = "INVALID_HAND_SIZE"
	CodeInsufficientCatalog = "INSUFFICIENT_CATALOG"
	CodeCardNotFound        = "CARD_NOT_FOUND"
	CodeNonexistentCard     = "NONEXISTENT_CARD"
	CodeCardNameRequired    = "CARD_NAME_REQUIRED"
	CodeInappropriateText   = "INAPPROPRIATE_TEXT"
	CodeStatBudget          = "STAT_BUDGET"
	CodeSameBeatsAndLoses   = "SAME_BEATS_AND_LOSES"
	CodeSelfMatch           = "SELF_MATCH"
	CodeWinnerNotInPair     = "WINNER_NOT_IN_PAIR"
	CodePrecedentNotFound   = "PRECEDENT_NOT_FOUND"
	CodeReportNotFound      = "REPORT_NOT_FOUND"
	CodeLedgerUnavailable   = "LEDGER_UNAVAILABLE"
	CodeInternalError       = "INTERNAL_ERROR"
)

// FreshSessionPath is where clients holding a bad token can start over
const FreshSessionPath = "/api/v1/sessions"

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

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var insufficient *model.InsufficientCatalogError
	if errors.As(err, &insufficient) {
		return &httpError{http.StatusConflict, APIError{
			Code:    CodeInsufficientCatalog,
			Message: insufficient.Error(),
			Details: map[string]any{"available": insufficient.Available, "required": insufficient.Required},
		}}
	}

	var nonexistent *model.NonexistentCardError
	if errors.As(err, &nonexistent) {
		missing := make([]int64, len(nonexistent.Missing))
		for i, id := range nonexistent.Missing {
			missing[i] = int64(id)
		}
		return &httpError{http.StatusBadRequest, APIError{
			Code:    CodeNonexistentCard,
			Message: nonexistent.Error(),
			Details: map[string]any{"missing": missing},
		}}
	}

	var inappropriate *model.InappropriateTextError
	if errors.As(err, &inappropriate) {
		return &httpError{http.StatusBadRequest, APIError{
			Code:    CodeInappropriateText,
			Message: inappropriate.Error(),
			Details: map[string]any{"field": inappropriate.Field},
		}}
	}

	var budget *model.StatBudgetError
	if errors.As(err, &budget) {
		return &httpError{http.StatusBadRequest, APIError{
			Code:    CodeStatBudget,
			Message: budget.Error(),
			Details: map[string]any{"stats": [model.StatCount]int(budget.Stats)},
		}}
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrInvalidSeedToken):
		return &httpError{http.StatusBadRequest, APIError{
			Code:    CodeInvalidSeedToken,
			Message: "That session link is not valid. Start a new session instead.",
			Details: map[string]any{"go_to": FreshSessionPath},
		}}
	case errors.Is(err, model.ErrInvalidHandSize):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidHandSize, Message: "Hand size must be at least 1"}}
	case errors.Is(err, model.ErrCardNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodeCardNotFound, Message: "Card not found"}}
	case errors.Is(err, model.ErrCardNameRequired):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeCardNameRequired, Message: "Card name is required"}}
	case errors.Is(err, model.ErrSameBeatsAndLoses):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeSameBeatsAndLoses, Message: "A card cannot beat and lose to the same card"}}
	case errors.Is(err, model.ErrSelfMatch):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeSelfMatch, Message: "A card cannot be matched against itself"}}
	case errors.Is(err, model.ErrWinnerNotInPair):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeWinnerNotInPair, Message: "Winner must be one of the two cards"}}
	case errors.Is(err, model.ErrOutcomeNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodePrecedentNotFound, Message: "No precedent for these cards"}}
	case errors.Is(err, model.ErrReportNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodeReportNotFound, Message: "Report not found"}}
	case errors.Is(err, model.ErrLedger):
		return &httpError{http.StatusServiceUnavailable, APIError{Code: CodeLedgerUnavailable, Message: "Precedents are unavailable, try again shortly"}}

	// Map auth errors
	case errors.Is(err, auth.ErrAdminDisabled), errors.Is(err, auth.ErrInvalidAdminKey):
		return &httpError{http.StatusUnauthorized, APIError{Code: CodeUnauthorized, Message: "Admin key required"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidRequest, Message: message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{Code: CodeUnauthorized, Message: "Admin key required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
}

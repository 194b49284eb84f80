package api

import (
	"encoding/json"
	"net/http"

	"github.com/fadedpez/blackjack/internal/types"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    types.ErrorCode `json:"code"`
	Message string          `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error code onto the HTTP status clients see
func statusFor(code types.ErrorCode) int {
	switch code {
	case types.ErrInvalidBetAmount, types.ErrInvalidArgument:
		return http.StatusBadRequest
	case types.ErrInsufficientFunds:
		return http.StatusPaymentRequired
	case types.ErrUnknownSeat, types.ErrTableNotFound:
		return http.StatusNotFound
	case types.ErrInvalidAction, types.ErrNoActiveHand:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err as {"error":{"code","message"}}. Anything that is not
// a GameError is reported as an internal error without its details.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var gameErr *types.GameError
	if !types.As(err, &gameErr) {
		gameErr = types.WrapError(types.ErrInternalError, "internal error", err)
	}

	status := statusFor(gameErr.Code)
	if status == http.StatusInternalServerError {
		s.logger.With("path", r.URL.Path).LogError(gameErr)
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Code: gameErr.Code, Message: gameErr.Message}})
}

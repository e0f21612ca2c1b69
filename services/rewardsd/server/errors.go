package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"rewardledger/core/epoch"
	"rewardledger/native/blocklist"
	"rewardledger/native/credits"
	"rewardledger/native/rewards"
)

type problem struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errBadRequest marks malformed input detected by the HTTP layer.
var errBadRequest = errors.New("bad request")

// statusFor maps domain errors to HTTP status codes and stable error codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, rewards.ErrUnauthorized),
		errors.Is(err, credits.ErrUnauthorized),
		errors.Is(err, epoch.ErrUnauthorized),
		errors.Is(err, blocklist.ErrUnauthorized):
		return http.StatusForbidden, "unauthorized"
	case errors.Is(err, rewards.ErrBlocked), errors.Is(err, blocklist.ErrBlocked):
		return http.StatusForbidden, "blocked"
	case errors.Is(err, rewards.ErrNoClaimable):
		return http.StatusConflict, "no_claimable"
	case errors.Is(err, rewards.ErrClaimExpired):
		return http.StatusGone, "claim_expired"
	case errors.Is(err, credits.ErrInsufficientBalance):
		return http.StatusConflict, "insufficient_balance"
	case errors.Is(err, credits.ErrInvalidAmount), errors.Is(err, epoch.ErrInvalidEndTime):
		return http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, rewards.ErrNotInitialized):
		return http.StatusServiceUnavailable, "not_initialized"
	case errors.Is(err, rewards.ErrOverflow), errors.Is(err, credits.ErrOverflow):
		return http.StatusInternalServerError, "overflow"
	case errors.Is(err, rewards.ErrInvariant):
		return http.StatusInternalServerError, "invariant"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeProblem(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, problem{Code: code, Message: message})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			slog.String("path", r.URL.Path),
			slog.String("code", code),
			slog.Any("error", err))
		if code == "internal" {
			message = http.StatusText(status)
		}
	}
	writeProblem(w, status, code, message)
}

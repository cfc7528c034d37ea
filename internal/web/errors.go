package web

// errors.go maps export failures to HTTP responses.
//
// The technical error is logged with the request id; the client gets the
// user-facing message and support code from export.MapError as JSON.

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/JonMunkholm/petclinic-export/internal/export"
	"github.com/JonMunkholm/petclinic-export/internal/logging"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status for an export error.
func statusFor(err error) int {
	var cfgErr *export.ConfigurationError
	switch {
	case errors.As(err, &cfgErr):
		return http.StatusBadRequest
	case errors.Is(err, export.ErrTooManyExports):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the mapped JSON error. A request the
// client already abandoned is only logged.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	userMsg := export.MapError(err)
	status := statusFor(err)
	logger := logging.FromContext(r.Context())

	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		logger.Info("client went away", "path", r.URL.Path, "code", userMsg.Code)
		return
	}

	logger.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	)
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "5")
	}
	respondErrorJSON(w, userMsg, status)
}

func respondErrorJSON(w http.ResponseWriter, msg export.UserMessage, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

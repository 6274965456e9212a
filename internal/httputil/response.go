package httputil

import (
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/rs/zerolog/log"

	apperrors "github.com/drawpile/listserver-go/internal/errors"
)

var callbackRegex = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$.]{0,63}$`)

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// WriteJSONP wraps the JSON document in a call to callback when the request
// names a valid one, and falls back to plain JSON otherwise.
func WriteJSONP(w http.ResponseWriter, r *http.Request, status int, data any) {
	callback := r.URL.Query().Get("callback")
	if callback == "" || !callbackRegex.MatchString(callback) {
		WriteJSON(w, status, data)
		return
	}

	body, err := json.Marshal(data)
	if err != nil {
		WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/javascript")
	w.WriteHeader(status)
	w.Write([]byte(callback + "("))
	w.Write(body)
	w.Write([]byte(");"))
}

// WriteError writes an AppError as an HTTP response with appropriate status code
func WriteError(w http.ResponseWriter, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		// Wrap unknown errors as internal errors
		appErr = apperrors.Internal("An unexpected error occurred")
	}

	status := StatusFromCode(appErr.Code)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
		// Causes stay in the log
		appErr = apperrors.Internal("An unexpected error occurred")
	}

	WriteJSON(w, status, appErr)
}

// StatusFromCode maps ErrorCode to HTTP status code
func StatusFromCode(code apperrors.ErrorCode) int {
	switch code {
	// 400 Bad Request
	case apperrors.ErrCodeBadJSON:
		return http.StatusBadRequest

	// 403 Forbidden
	case apperrors.ErrCodeBadKey:
		return http.StatusForbidden

	// 413 Request Entity Too Large
	case apperrors.ErrCodeTooLarge:
		return http.StatusRequestEntityTooLarge

	// 404 Not Found
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound

	// 422 Unprocessable Entity
	case apperrors.ErrCodeBadData,
		apperrors.ErrCodeLocalIP,
		apperrors.ErrCodeDuplicate:
		return http.StatusUnprocessableEntity

	// 429 Too Many Requests
	case apperrors.ErrCodeRateLimit,
		apperrors.ErrCodeThrottled:
		return http.StatusTooManyRequests

	// 500 Internal Server Error
	case apperrors.ErrCodeInternal,
		apperrors.ErrCodeDatabase:
		return http.StatusInternalServerError

	default:
		return http.StatusInternalServerError
	}
}

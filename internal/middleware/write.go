package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// WriteError writes err as the JSON error body for plain net/http handlers,
// mirroring GlobalErrorHandler.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	httpErr := ToHTTPError(err)

	logger := zerolog.Ctx(r.Context())
	if httpErr.Status >= http.StatusInternalServerError {
		logger.Error().Stack().Err(err).Int("status", httpErr.Status).Str("error_code", httpErr.Code).Msg(httpErr.Message)
	} else {
		logger.Debug().Err(err).Int("status", httpErr.Status).Str("error_code", httpErr.Code).Msg(httpErr.Message)
	}

	WriteJSON(w, httpErr.Status, httpErr.Body())
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

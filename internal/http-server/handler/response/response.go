package response

import (
	"encoding/json"
	"net/http"

	"storefront/internal/http-server/handler/dto"

	"github.com/wb-go/wbf/zlog"
)

func JSON(w http.ResponseWriter, logger *zlog.Zerolog, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func Error(w http.ResponseWriter, logger *zlog.Zerolog, status int, message string, err error) {
	resp := dto.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	}

	if err != nil && status >= http.StatusInternalServerError {
		resp.Details = err.Error()
	}

	JSON(w, logger, status, resp)
}

// Decode reads a JSON body into v, rejecting unknown fields.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

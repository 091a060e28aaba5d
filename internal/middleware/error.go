package middleware

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Envelope is the response shape every endpoint uses:
// {success, message?, data?}. Internals never leak to clients.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// respondWithError sends a failure envelope
func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	writeEnvelope(w, statusCode, Envelope{Success: false, Message: message})
}

// RespondWithError sends a failure envelope
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithError(w, statusCode, message)
}

// RespondWithData sends a success envelope carrying a payload
func RespondWithData(w http.ResponseWriter, statusCode int, message string, data any) {
	writeEnvelope(w, statusCode, Envelope{Success: true, Message: message, Data: data})
}

// RespondWithValidationErrors sends a 400 envelope listing field errors
func RespondWithValidationErrors(w http.ResponseWriter, errors []ValidationError) {
	writeEnvelope(w, http.StatusBadRequest, Envelope{
		Success: false,
		Message: "validation failed",
		Data:    map[string]any{"validation_errors": errors},
	})
}

func writeEnvelope(w http.ResponseWriter, statusCode int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(env)
}

// ErrorHandlingMiddleware catches panics and converts them to 500 envelopes
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("Panic recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)

					respondWithError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

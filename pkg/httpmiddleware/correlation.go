package httpmiddleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/lewisedginton/gemini_relay_bot/pkg/logger"
)

// CorrelationIDHeader carries the per-request correlation id.
const CorrelationIDHeader = "X-Correlation-ID"

// CorrelationID assigns every request a fresh correlation id, ignoring any
// client-supplied value, and echoes it on the response.
func CorrelationID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			correlationID := uuid.New().String()

			r.Header.Set(CorrelationIDHeader, correlationID)
			w.Header().Set(CorrelationIDHeader, correlationID)

			ctx := logger.WithCorrelationIDContext(r.Context(), correlationID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

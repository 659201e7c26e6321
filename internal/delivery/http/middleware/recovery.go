package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	h "eventsapi/internal/delivery/http/helpers"
)

// Recovery turns a panicking handler into a 500 response and logs the stack.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.ErrorContext(r.Context(), "panic recovered",
						"panic", rec,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)
					h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "internal server error", "")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// recoveryBody matches the uniform response envelope; written as a literal
// so this package does not depend on the handler package.
const recoveryBody = `{"success":false,"message":"An error occurred while processing the request. Please try again later."}`

// Recover catches panics from downstream handlers, logs the value and stack
// server-side, and answers with the generic 500 envelope. Nothing from the
// panic reaches the caller.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.Error("panic recovered",
						slog.Any("panic", rec),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
						slog.String("stack", string(debug.Stack())),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(recoveryBody))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

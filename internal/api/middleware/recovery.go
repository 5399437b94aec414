package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/pratik-mahalle/mediremind/internal/pkg/errors"
	"github.com/pratik-mahalle/mediremind/internal/pkg/logger"
	"github.com/pratik-mahalle/mediremind/internal/pkg/utils"
)

// Recovery returns a middleware that turns a panic into a 500 response
func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.WithFields(map[string]interface{}{
					"error":      rec,
					"stack":      string(debug.Stack()),
					"method":     r.Method,
					"path":       r.URL.Path,
					"request_id": GetRequestID(r),
				}).Error("Panic recovered")

				utils.WriteError(w, errors.Internal(
					fmt.Sprintf("Internal Server Error: %v", rec),
					fmt.Errorf("panic: %v", rec),
				))
			}()

			next.ServeHTTP(w, r)
		})
	}
}

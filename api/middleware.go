package api

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gorilla/mux"
	"github.com/lthibault/log"
)

func withContentType(ct string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", ct)
			next.ServeHTTP(w, r)
		})
	}
}

// withLogger logs the incoming HTTP request & its duration.
func withLogger(l log.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t0 := time.Now()
			logger := l.With(log.F{
				"method": r.Method,
				"path":   r.URL.EscapedPath(),
			})

			defer func() {
				if v := recover(); v != nil {
					w.WriteHeader(http.StatusInternalServerError)

					logger = logger.WithField("trace", string(debug.Stack()))
					if err, ok := v.(error); ok {
						logger = logger.WithError(err)
					}

					logger.Error("http request panic")
				}
			}()

			next.ServeHTTP(w, r)
			logger.WithField("duration", time.Since(t0).Seconds()).Trace("request handled")
		})
	}
}

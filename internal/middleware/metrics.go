// AngelaMos | 2026
// metrics.go

package middleware

import (
	"net/http"
	"time"
)

type HTTPRecorder interface {
	RecordHTTPRequest(method, route string, status int, d time.Duration)
}

func Metrics(rec HTTPRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := wrap(w)

			next.ServeHTTP(sr, r)

			rec.RecordHTTPRequest(r.Method, routePattern(r), sr.status, time.Since(start))
		})
	}
}

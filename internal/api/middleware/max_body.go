package middleware

import (
	"net/http"

	"github.com/mrcgomez/safetyagent/internal/api"
)

// MaxBodyBytes caps request body size at limit bytes, mainly to bound manual
// uploads before the multipart parser reads them. Oversized requests get a 413
// in the standard error envelope. A limit of zero or less disables the cap.
func MaxBodyBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit <= 0 || r.Body == nil {
				next.ServeHTTP(w, r)
				return
			}

			if r.ContentLength > limit && r.ContentLength != -1 {
				api.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

package middleware

import (
	"crypto/subtle"
	"jsonstore/internal/models"
	utils "jsonstore/internal/utils/http_errors"
	"log/slog"
	"net/http"
)

// Admin only lets requests through that present adminToken in the
// X-Admin-Token header or the token query parameter.
func Admin(log *slog.Logger, adminToken string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			op := pkg + "Admin"

			log := log.With(slog.String("op", op))

			token := r.Header.Get(AdminTokenHeader)
			if token == "" {
				token = r.URL.Query().Get("token")
			}

			if adminToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(adminToken)) != 1 {
				log.Warn("invalid admin token", slog.String("path", r.URL.Path))
				utils.WriteError(w, models.ErrForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

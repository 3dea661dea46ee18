package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"infinite-experiment/gazetteer/internal/auth"
	"infinite-experiment/gazetteer/internal/common"
	"infinite-experiment/gazetteer/internal/constants"
	"infinite-experiment/gazetteer/internal/logging"
)

// AdminAuthMiddleware requires a Bearer token signed with secret. An empty
// secret disables the protected routes entirely.
func AdminAuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			if secret == "" {
				common.RespondError(w, start, errors.New(constants.MsgImportNotEnabled), "", http.StatusServiceUnavailable)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				common.RespondError(w, start, errors.New(constants.MsgUnauthorized), "", http.StatusUnauthorized)
				return
			}

			claims, err := auth.ParseToken(secret, strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				logging.Warn("Rejected admin token", "request_id", auth.GetRequestID(r.Context()), "error", err)
				common.RespondError(w, start, errors.New(constants.MsgUnauthorized), "", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.SetAdminClaims(r.Context(), claims)))
		})
	}
}

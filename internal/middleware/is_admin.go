package middleware

import (
	"errors"
	"net/http"
	"time"

	"infinite-experiment/gazetteer/internal/auth"
	"infinite-experiment/gazetteer/internal/common"
	"infinite-experiment/gazetteer/internal/constants"
)

// IsAdminMiddleware must run after AdminAuthMiddleware.
func IsAdminMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := auth.GetAdminClaims(r.Context())

			if claims == nil || !claims.IsAdmin() {
				common.RespondError(w, time.Now(), errors.New(constants.MsgForbidden), "", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

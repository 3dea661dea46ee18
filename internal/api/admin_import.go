package api

import (
	"errors"
	"net/http"
	"time"

	"infinite-experiment/gazetteer/internal/auth"
	"infinite-experiment/gazetteer/internal/common"
	"infinite-experiment/gazetteer/internal/constants"
	"infinite-experiment/gazetteer/internal/importer"
	"infinite-experiment/gazetteer/internal/logging"
	"infinite-experiment/gazetteer/internal/source"
)

// ImportResponse is returned by the admin import endpoint.
type ImportResponse struct {
	*importer.ImportResult
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	Shared         bool    `json:"shared"`
}

// TriggerImport handles POST /api/v1/admin/import
// Runs the configured source through the importer. Requests arriving while
// a run is in progress wait for it and receive the same result.
func (h *Handlers) TriggerImport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		subject := ""
		if claims := auth.GetAdminClaims(r.Context()); claims != nil {
			subject = claims.Subject
		}
		logging.Info("Admin import requested", "subject", subject, "request_id", auth.GetRequestID(r.Context()))

		result, shared, err := h.deps.Services.Import.Import(r.Context())
		if err != nil {
			var verr *source.ValidationError
			switch {
			case errors.Is(err, source.ErrSourceNotFound):
				common.RespondError(w, initTime, err, "", http.StatusConflict)
			case errors.As(err, &verr):
				common.RespondError(w, initTime, err, "", http.StatusUnprocessableEntity)
			default:
				logging.Error("Admin import failed", "error", err)
				common.RespondError(w, initTime, nil, constants.MsgImportFailed, http.StatusInternalServerError)
			}
			return
		}

		common.RespondSuccess(w, initTime, constants.MsgImportCompleted, ImportResponse{
			ImportResult:   result,
			ElapsedSeconds: result.Elapsed.Seconds(),
			Shared:         shared,
		})
	}
}

package api

import (
	"errors"
	"net/http"
	"time"

	"infinite-experiment/gazetteer/internal/common"
	"infinite-experiment/gazetteer/internal/constants"
	"infinite-experiment/gazetteer/internal/logging"
	"infinite-experiment/gazetteer/internal/services"
)

// respondServiceError maps service errors onto status codes. Unexpected
// errors are logged and reported without detail.
func respondServiceError(w http.ResponseWriter, r *http.Request, initTime time.Time, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		common.RespondError(w, initTime, nil, constants.MsgNotFound, http.StatusNotFound)
	case errors.Is(err, services.ErrPageOutOfRange):
		common.RespondError(w, initTime, nil, constants.MsgInvalidPage, http.StatusNotFound)
	case errors.Is(err, services.ErrInvalidParams):
		common.RespondError(w, initTime, err, "", http.StatusBadRequest)
	default:
		logging.Error("Request failed", "path", r.URL.Path, "error", err)
		common.RespondError(w, initTime, nil, "Internal server error", http.StatusInternalServerError)
	}
}

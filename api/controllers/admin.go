package controllers

import (
	"net/http"

	"github.com/khidmaty/khidmaty-backend/api/responses"
	"github.com/khidmaty/khidmaty-backend/internal/reconcile"
	"github.com/khidmaty/khidmaty-backend/pkg/logger"
)

// OrphanedSignatures reports signature rows whose contract no longer exists.
// Read-only: operators decide what to do with the rows.
func OrphanedSignatures(detector *reconcile.Detector, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := detector.Sweep(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

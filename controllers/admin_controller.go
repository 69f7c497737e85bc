package controllers

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/vukatravels/site/models"
	"github.com/vukatravels/site/services"
	"github.com/vukatravels/site/userctx"
)

// AdminController serves submission downloads and activity to staff
type AdminController struct {
	services *services.Services
	logger   *zap.Logger
}

// NewAdminController creates a new admin controller
func NewAdminController(services *services.Services, logger *zap.Logger) *AdminController {
	return &AdminController{services: services, logger: logger}
}

// SubmissionsCSV handles GET /admin/submissions.csv
func (ac *AdminController) SubmissionsCSV(w http.ResponseWriter, r *http.Request) {
	ac.logger.Info("Submissions downloaded", zap.String("actor", userctx.GetActor(r.Context())), zap.String("format", "csv"))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="submissions.csv"`)
	if err := ac.services.Export.WriteCSV(r.Context(), w); err != nil {
		// headers are already out; the client sees a truncated file
		ac.logger.Error("Failed to stream submissions", zap.Error(err))
	}
}

// SubmissionsXLS handles GET /admin/submissions.xls
func (ac *AdminController) SubmissionsXLS(w http.ResponseWriter, r *http.Request) {
	ac.logger.Info("Submissions downloaded", zap.String("actor", userctx.GetActor(r.Context())), zap.String("format", "xls"))

	path := ac.services.Export.ExportPath()
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := ac.services.Export.Regenerate(r.Context()); err != nil {
			ac.logger.Error("Failed to regenerate export", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Export unavailable"})
			return
		}
	}

	w.Header().Set("Content-Type", "application/vnd.ms-excel")
	w.Header().Set("Content-Disposition", `attachment; filename="submissions.xls"`)
	http.ServeFile(w, r, path)
}

// Audit handles GET /admin/audit?limit=N
func (ac *AdminController) Audit(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	activity, err := ac.services.Activity.Recent(r.Context(), limit)
	if err != nil {
		ac.logger.Error("Failed to load activity", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Activity unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, activity)
}

package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/vukatravels/site/models"
	"github.com/vukatravels/site/services"
)

// RevalidateController handles the CMS publish webhook
type RevalidateController struct {
	services *services.Services
	logger   *zap.Logger
}

// NewRevalidateController creates a new revalidate controller
func NewRevalidateController(services *services.Services, logger *zap.Logger) *RevalidateController {
	return &RevalidateController{services: services, logger: logger}
}

type revalidateRequest struct {
	Slug string `json:"slug"`
}

// Revalidate handles POST /api/revalidate?secret=...
func (rc *RevalidateController) Revalidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	// An empty or malformed body revalidates the whole blog
	var req revalidateRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	paths, err := rc.services.Revalidation.Revalidate(r.Context(), r.URL.Query().Get("secret"), strings.TrimSpace(req.Slug))
	if errors.Is(err, models.ErrInvalidSecret) {
		writeJSON(w, http.StatusUnauthorized, models.RevalidateResponse{OK: false, Message: err.Error()})
		return
	}
	if err != nil {
		rc.logger.Error("Revalidation failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, models.RevalidateResponse{OK: false, Message: "Revalidation failed"})
		return
	}

	writeJSON(w, http.StatusOK, models.RevalidateResponse{OK: true, Revalidated: paths})
}

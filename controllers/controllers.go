package controllers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/vukatravels/site/services"
)

// writeJSON encodes data as the response body with the given status code
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// methodNotAllowed answers any verb other than the allowed one
func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
}

// Controllers holds all controller instances
type Controllers struct {
	Auth       *AuthController
	Submission *SubmissionController
	Revalidate *RevalidateController
	Blog       *BlogController
	Admin      *AdminController
}

// NewControllers creates and initializes all controller instances
func NewControllers(services *services.Services, logger *zap.Logger) *Controllers {
	return &Controllers{
		Auth:       NewAuthController(logger.Named("auth")),
		Submission: NewSubmissionController(services, logger.Named("submit")),
		Revalidate: NewRevalidateController(services, logger.Named("revalidate")),
		Blog:       NewBlogController(services, logger.Named("blog")),
		Admin:      NewAdminController(services, logger.Named("admin")),
	}
}

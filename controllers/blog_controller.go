package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vukatravels/site/models"
	"github.com/vukatravels/site/services"
)

// BlogController serves blog content as JSON
type BlogController struct {
	services *services.Services
	logger   *zap.Logger
}

// NewBlogController creates a new blog controller
func NewBlogController(services *services.Services, logger *zap.Logger) *BlogController {
	return &BlogController{services: services, logger: logger}
}

// Index handles GET /api/blog
func (bc *BlogController) Index(w http.ResponseWriter, r *http.Request) {
	posts, err := bc.services.Blog.ListPosts(r.Context())
	if err != nil {
		bc.logger.Error("Failed to list posts", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, models.ErrorResponse{Error: "Content unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// Show handles GET /api/blog/{slug}
func (bc *BlogController) Show(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	post, err := bc.services.Blog.GetPost(r.Context(), slug)
	if services.IsNotFound(err) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Post not found"})
		return
	}
	if err != nil {
		bc.logger.Error("Failed to load post", zap.String("slug", slug), zap.Error(err))
		writeJSON(w, http.StatusBadGateway, models.ErrorResponse{Error: "Content unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, post)
}

package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/vukatravels/site/middleware"
	"github.com/vukatravels/site/models"
	"github.com/vukatravels/site/services"
)

// SubmissionController handles website form posts
type SubmissionController struct {
	services *services.Services
	logger   *zap.Logger
}

// NewSubmissionController creates a new submission controller
func NewSubmissionController(services *services.Services, logger *zap.Logger) *SubmissionController {
	return &SubmissionController{services: services, logger: logger}
}

// Submit handles POST /api/submit and its legacy alias /api/submit.php
func (sc *SubmissionController) Submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	payload, err := decodePayload(r)
	if err != nil {
		sc.logger.Info("Rejected undecodable payload", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: models.ErrInvalidPayload.Error()})
		return
	}

	meta := models.RequestMeta{IP: middleware.ClientIP(r), UserAgent: r.UserAgent()}
	_, err = sc.services.Submission.Submit(r.Context(), payload, meta)
	if err != nil {
		writeJSON(w, submitStatus(err), models.ErrorResponse{Error: submitMessage(err)})
		return
	}

	writeJSON(w, http.StatusOK, models.SubmitResponse{OK: true})
}

func submitStatus(err error) int {
	if models.IsClientError(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// submitMessage exposes only messages written for clients
func submitMessage(err error) string {
	var storageErr *models.StorageError
	var notifyErr *models.NotificationError
	switch {
	case models.IsClientError(err), errors.As(err, &storageErr), errors.As(err, &notifyErr):
		return err.Error()
	default:
		return "Internal server error"
	}
}

// decodePayload accepts a JSON object or url-encoded form data. A body that
// is not a JSON object is read as a query string.
func decodePayload(r *http.Request) (models.Payload, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		return formPayload(r.PostForm), nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			return nil, err
		}
		return formPayload(r.PostForm), nil
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var payload models.Payload
	if err := dec.Decode(&payload); err == nil && payload != nil {
		return payload, nil
	}

	values, err := url.ParseQuery(string(bytes.TrimSpace(raw)))
	if err != nil {
		return nil, err
	}
	return formPayload(values), nil
}

func formPayload(values url.Values) models.Payload {
	payload := make(models.Payload, len(values))
	for key, v := range values {
		payload[key] = v
	}
	return payload
}

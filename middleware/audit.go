package middleware

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/vukatravels/site/logging"
	"github.com/vukatravels/site/models"
	"github.com/vukatravels/site/repositories"
	"github.com/vukatravels/site/userctx"
)

// AuditLogger middleware records all POST/PUT/DELETE requests
func AuditLogger(auditRepo repositories.AuditRepository, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodDelete {
				entry := &models.AuditLogEntry{
					RequestID: userctx.GetRequestID(r.Context()),
					Actor:     userctx.GetActor(r.Context()),
					Method:    r.Method,
					Path:      r.URL.Path,
					UserAgent: r.UserAgent(),
					IPAddress: ClientIP(r),
				}
				if !isSubmissionPath(r.URL.Path) {
					entry.FormData = captureFormData(r)
				}

				// Log asynchronously to avoid blocking request
				go func() {
					if err := auditRepo.Create(context.Background(), entry); err != nil {
						logger.Warn("Failed to create audit log", zap.String("path", entry.Path), zap.Error(err))
					}
				}()
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP extracts the caller address, checking X-Forwarded-For first
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		ips := strings.Split(forwarded, ",")
		return strings.TrimSpace(ips[0])
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return strings.TrimSpace(realIP)
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// isSubmissionPath reports whether path is a form endpoint. Its bodies are
// kept in the submission log, so the audit row records the request only.
func isSubmissionPath(path string) bool {
	return path == "/api/submit" || path == "/api/submit.php"
}

// captureFormData captures url-encoded form data as a JSON string with email
// addresses masked. JSON bodies are left unread for the handler.
func captureFormData(r *http.Request) string {
	if err := r.ParseForm(); err != nil {
		return ""
	}
	if len(r.PostForm) == 0 {
		return ""
	}

	formMap := make(map[string]interface{})
	for key, values := range r.PostForm {
		if len(values) == 1 {
			formMap[key] = values[0]
		} else {
			formMap[key] = values
		}
	}

	jsonData, err := json.Marshal(formMap)
	if err != nil {
		return ""
	}
	return logging.RedactText(string(jsonData))
}

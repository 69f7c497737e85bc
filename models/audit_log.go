package models

import "time"

// AuditLogEntry records one mutating HTTP request against the site API
type AuditLogEntry struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
	Actor     string    `json:"actor"`
	Method    string    `json:"method"`
	Path      string    `json:"path"`
	FormData  string    `json:"form_data,omitempty"`
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
}

// Activity is the admin view of recent requests and cache invalidations
type Activity struct {
	Audit         []AuditLogEntry      `json:"audit"`
	Revalidations []RevalidationRecord `json:"revalidations"`
}

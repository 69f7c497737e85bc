package models

import (
	"time"
)

// SubmitResponse is returned for an accepted (or silently discarded) submission
type SubmitResponse struct {
	OK bool `json:"ok"`
}

// ErrorResponse is the body of every failed submit request
type ErrorResponse struct {
	Error string `json:"error"`
}

// RevalidateResponse is returned by the revalidation webhook
type RevalidateResponse struct {
	OK          bool     `json:"ok"`
	Message     string   `json:"message,omitempty"`
	Revalidated []string `json:"revalidated,omitempty"`
}

// RevalidationRecord is one processed revalidation webhook call
type RevalidationRecord struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Slug      string    `json:"slug,omitempty"`
	Paths     []string  `json:"paths"`
	Tags      []string  `json:"tags"`
}

// FormatTimestamp formats a time as a UTC YYYY-MM-DD HH:MM:SS string
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

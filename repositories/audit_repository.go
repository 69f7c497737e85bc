package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vukatravels/site/models"
)

// AuditRepository handles audit log persistence
type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditLogEntry) error
	Recent(ctx context.Context, limit int) ([]models.AuditLogEntry, error)
}

type sqliteAuditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *sql.DB) AuditRepository {
	return &sqliteAuditRepository{db: db}
}

// Create inserts a new audit log entry
func (r *sqliteAuditRepository) Create(ctx context.Context, entry *models.AuditLogEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	query := `
		INSERT INTO audit_log (timestamp, request_id, actor, method, path, form_data, user_agent, ip_address)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		entry.Timestamp,
		entry.RequestID,
		entry.Actor,
		entry.Method,
		entry.Path,
		entry.FormData,
		entry.UserAgent,
		entry.IPAddress,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		entry.ID = id
	}
	return nil
}

// Recent returns the newest entries first
func (r *sqliteAuditRepository) Recent(ctx context.Context, limit int) ([]models.AuditLogEntry, error) {
	query := `
		SELECT id, timestamp, request_id, actor, method, path, form_data, user_agent, ip_address
		FROM audit_log
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditLogEntry
	for rows.Next() {
		var e models.AuditLogEntry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.RequestID, &e.Actor, &e.Method, &e.Path, &e.FormData, &e.UserAgent, &e.IPAddress); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit log: %w", err)
	}
	return entries, nil
}

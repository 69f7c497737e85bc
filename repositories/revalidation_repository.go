package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vukatravels/site/models"
)

// RevalidationRepository keeps a history of cache invalidations
type RevalidationRepository interface {
	Record(ctx context.Context, record *models.RevalidationRecord) error
	Recent(ctx context.Context, limit int) ([]models.RevalidationRecord, error)
}

type sqliteRevalidationRepository struct {
	db *sql.DB
}

// NewRevalidationRepository creates a new revalidation history repository
func NewRevalidationRepository(db *sql.DB) RevalidationRepository {
	return &sqliteRevalidationRepository{db: db}
}

// Record stores one processed revalidation
func (r *sqliteRevalidationRepository) Record(ctx context.Context, record *models.RevalidationRecord) error {
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	paths, err := json.Marshal(record.Paths)
	if err != nil {
		return fmt.Errorf("failed to encode paths: %w", err)
	}
	tags, err := json.Marshal(record.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO revalidations (timestamp, slug, paths, tags) VALUES (?, ?, ?, ?)`,
		record.Timestamp, record.Slug, string(paths), string(tags),
	)
	if err != nil {
		return fmt.Errorf("failed to insert revalidation: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		record.ID = id
	}
	return nil
}

// Recent returns the newest revalidations first
func (r *sqliteRevalidationRepository) Recent(ctx context.Context, limit int) ([]models.RevalidationRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, timestamp, slug, paths, tags FROM revalidations ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query revalidations: %w", err)
	}
	defer rows.Close()

	var records []models.RevalidationRecord
	for rows.Next() {
		var (
			rec         models.RevalidationRecord
			paths, tags string
		)
		if err := rows.Scan(&rec.ID, &rec.Timestamp, &rec.Slug, &paths, &tags); err != nil {
			return nil, fmt.Errorf("failed to scan revalidation: %w", err)
		}
		if err := json.Unmarshal([]byte(paths), &rec.Paths); err != nil {
			return nil, fmt.Errorf("failed to decode paths: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &rec.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating revalidations: %w", err)
	}
	return records, nil
}

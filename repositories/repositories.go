package repositories

import (
	"database/sql"
)

// Repositories struct holds all repository interfaces
type Repositories struct {
	Submissions   SubmissionLog
	Export        ExportRepository
	Audit         AuditRepository
	Revalidations RevalidationRepository
}

// NewRepositories creates and initializes all repositories. csvPath is the
// authoritative submission log, xlsPath its regenerated projection.
func NewRepositories(db *sql.DB, csvPath, xlsPath string) *Repositories {
	return &Repositories{
		Submissions:   NewSubmissionLog(csvPath),
		Export:        NewExportRepository(xlsPath),
		Audit:         NewAuditRepository(db),
		Revalidations: NewRevalidationRepository(db),
	}
}

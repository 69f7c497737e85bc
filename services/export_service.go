package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sync"

	"github.com/vukatravels/site/repositories"
)

// ExportService projects the submission log into downloadable formats
type ExportService interface {
	// Regenerate rewrites the spreadsheet export from the full log
	Regenerate(ctx context.Context) error
	// WriteCSV streams the log as CSV
	WriteCSV(ctx context.Context, w io.Writer) error
	// ExportPath is the location of the regenerated spreadsheet
	ExportPath() string
}

type exportService struct {
	submissions repositories.SubmissionLog
	export      repositories.ExportRepository

	// regenMu orders read+write pairs so an older snapshot never lands last
	regenMu sync.Mutex
}

// NewExportService creates a new export service
func NewExportService(submissions repositories.SubmissionLog, export repositories.ExportRepository) ExportService {
	return &exportService{submissions: submissions, export: export}
}

func (s *exportService) Regenerate(ctx context.Context) error {
	s.regenMu.Lock()
	defer s.regenMu.Unlock()

	rows, err := s.submissions.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to read submissions log: %w", err)
	}
	if err := s.export.Write(rows); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

func (s *exportService) WriteCSV(ctx context.Context, w io.Writer) error {
	rows, err := s.submissions.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to read submissions log: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

func (s *exportService) ExportPath() string {
	return s.export.Path()
}

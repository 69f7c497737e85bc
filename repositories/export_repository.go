package repositories

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
)

// ExportRepository writes the spreadsheet-shaped projection of the log
type ExportRepository interface {
	Write(rows [][]string) error
	Path() string
}

// exportTemplate renders an HTML table that spreadsheet applications open as
// a worksheet. The first row is the header.
var exportTemplate = template.Must(template.New("export").Parse(
	`<html><head><meta charset="UTF-8"></head><body><table border="1">` +
		`{{range $i, $row := .}}<tr>{{range $row}}{{if eq $i 0}}<th>{{.}}</th>{{else}}<td>{{.}}</td>{{end}}{{end}}</tr>{{end}}` +
		`</table></body></html>`))

type xlsExportRepository struct {
	path string
}

// NewExportRepository creates an export writer targeting path
func NewExportRepository(path string) ExportRepository {
	return &xlsExportRepository{path: path}
}

func (r *xlsExportRepository) Path() string {
	return r.path
}

// Write replaces the export with a table of rows. The new file is written
// beside the old one and renamed over it, so readers never see a partial
// table.
func (r *xlsExportRepository) Write(rows [][]string) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".submissions-*.xls")
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := exportTemplate.Execute(tmp, rows); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to render export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to set export permissions: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("failed to replace export: %w", err)
	}

	return nil
}

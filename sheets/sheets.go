// Package sheets mirrors stored submissions into a remote spreadsheet
package sheets

import (
	"context"
	"fmt"

	"github.com/vukatravels/site/config"
)

// Sink appends one submission row to a remote spreadsheet
type Sink interface {
	AppendRow(ctx context.Context, header, record []string) error
}

// New returns the configured Sink, or nil when no spreadsheet is set up.
// The Apps Script endpoint wins over service account credentials.
func New(ctx context.Context, cfg config.SheetsConfig) (Sink, error) {
	switch {
	case cfg.AppsScriptURL != "":
		return NewAppsScript(cfg.AppsScriptURL), nil
	case cfg.SheetID != "":
		sink, err := NewGoogleSheetFromFile(ctx, cfg.CredentialsPath, cfg.SheetID, cfg.Range)
		if err != nil {
			return nil, fmt.Errorf("failed to set up spreadsheet: %w", err)
		}
		return sink, nil
	default:
		return nil, nil
	}
}

package sheets

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// GoogleSheet appends rows with a service account through the Sheets API
type GoogleSheet struct {
	svc     *sheets.Service
	sheetID string
	rng     string

	mu            sync.Mutex
	headerChecked bool
}

// NewGoogleSheetFromFile reads a service account key from path
func NewGoogleSheetFromFile(ctx context.Context, path, sheetID, rng string) (*GoogleSheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	jwtCfg, err := google.JWTConfigFromJSON(data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithHTTPClient(jwtCfg.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}

	return NewGoogleSheet(svc, sheetID, rng), nil
}

// NewGoogleSheet wraps an existing Sheets service
func NewGoogleSheet(svc *sheets.Service, sheetID, rng string) *GoogleSheet {
	if rng == "" {
		rng = "Sheet1!A1"
	}
	return &GoogleSheet{svc: svc, sheetID: sheetID, rng: rng}
}

func (g *GoogleSheet) AppendRow(ctx context.Context, header, record []string) error {
	if err := g.ensureHeader(ctx, header); err != nil {
		return err
	}
	return g.append(ctx, record)
}

// ensureHeader writes header when the first row of the sheet is empty. It
// runs until one check succeeds.
func (g *GoogleSheet) ensureHeader(ctx context.Context, header []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.headerChecked {
		return nil
	}

	resp, err := g.svc.Spreadsheets.Values.Get(g.sheetID, headerRange(g.rng)).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to read sheet header: %w", err)
	}
	if len(resp.Values) == 0 {
		if err := g.append(ctx, header); err != nil {
			return err
		}
	}

	g.headerChecked = true
	return nil
}

func (g *GoogleSheet) append(ctx context.Context, cells []string) error {
	row := make([]interface{}, len(cells))
	for i, c := range cells {
		row[i] = c
	}

	_, err := g.svc.Spreadsheets.Values.Append(g.sheetID, g.rng, &sheets.ValueRange{
		Values: [][]interface{}{row},
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to append row: %w", err)
	}
	return nil
}

// headerRange turns "Sheet1!A1" into "Sheet1!1:1"
func headerRange(rng string) string {
	if i := strings.Index(rng, "!"); i >= 0 {
		return rng[:i] + "!1:1"
	}
	return "1:1"
}

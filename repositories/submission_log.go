package repositories

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// SubmissionLog is the append-only record of accepted submissions
type SubmissionLog interface {
	Append(ctx context.Context, header, record []string) error
	ReadAll(ctx context.Context) ([][]string, error)
	Path() string
}

// csvSubmissionLog stores submissions as a quoted CSV file guarded by an
// advisory file lock
type csvSubmissionLog struct {
	path string
}

// NewSubmissionLog creates a CSV submission log at path. The file and its
// directory are created on first write.
func NewSubmissionLog(path string) SubmissionLog {
	return &csvSubmissionLog{path: path}
}

func (l *csvSubmissionLog) Path() string {
	return l.path
}

// Append writes one row, preceded by the header if the log is empty. The
// exclusive lock covers the size check and the write.
func (l *csvSubmissionLog) Append(ctx context.Context, header, record []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open submission log: %w", err)
	}
	defer f.Close()

	if err := lockFile(f, true); err != nil {
		return fmt.Errorf("failed to lock submission log: %w", err)
	}
	defer unlockFile(f)

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat submission log: %w", err)
	}

	var buf bytes.Buffer
	if info.Size() == 0 {
		writeQuotedRow(&buf, header)
	}
	writeQuotedRow(&buf, record)

	if _, err := f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write submission log: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to flush submission log: %w", err)
	}

	return nil
}

// ReadAll parses the whole log, header first. A missing log reads as empty.
func (l *csvSubmissionLog) ReadAll(ctx context.Context) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open submission log: %w", err)
	}
	defer f.Close()

	if err := lockFile(f, false); err != nil {
		return nil, fmt.Errorf("failed to lock submission log: %w", err)
	}
	defer unlockFile(f)

	return parseRows(f)
}

func parseRows(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse submission log: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// writeQuotedRow writes every field double-quoted with embedded quotes
// doubled, so any value survives a round trip through encoding/csv
func writeQuotedRow(buf *bytes.Buffer, fields []string) {
	for i, field := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(field, `"`, `""`))
		buf.WriteByte('"')
	}
	buf.WriteByte('\n')
}

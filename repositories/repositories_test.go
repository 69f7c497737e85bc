package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vukatravels/site/database"
	"github.com/vukatravels/site/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := database.Open(dbPath, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

var testHeader = []string{"submitted_at", "form_type", "email"}

func TestSubmissionLogWritesHeaderOnce(t *testing.T) {
	ctx := context.Background()
	log := NewSubmissionLog(filepath.Join(t.TempDir(), "storage", "submissions.csv"))

	const n = 5
	for i := 0; i < n; i++ {
		err := log.Append(ctx, testHeader, []string{"2026-01-01 00:00:00", "contact", fmt.Sprintf("user%d@example.com", i)})
		require.NoError(t, err)
	}

	data, err := os.ReadFile(log.Path())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	assert.Len(t, lines, n+1)
	assert.Equal(t, `"submitted_at","form_type","email"`, lines[0])
	assert.Equal(t, `"2026-01-01 00:00:00","contact","user0@example.com"`, lines[1])

	rows, err := log.ReadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, n+1)
	assert.Equal(t, testHeader, rows[0])
}

func TestSubmissionLogRoundTripsSpecialCharacters(t *testing.T) {
	ctx := context.Background()
	log := NewSubmissionLog(filepath.Join(t.TempDir(), "submissions.csv"))

	tricky := "Paris, then \"Nice\"\nreturn by train"
	require.NoError(t, log.Append(ctx, testHeader, []string{"2026-01-01 00:00:00", "contact", tricky}))

	rows, err := log.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, tricky, rows[1][2])
}

func TestSubmissionLogReadMissingFile(t *testing.T) {
	log := NewSubmissionLog(filepath.Join(t.TempDir(), "nope.csv"))

	rows, err := log.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSubmissionLogConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "submissions.csv")

	const writers = 20
	const perWriter = 10

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			// each writer opens its own handle, like separate requests
			log := NewSubmissionLog(path)
			for i := 0; i < perWriter; i++ {
				value := strings.Repeat(fmt.Sprintf("w%d-%d,", w, i), 200)
				assert.NoError(t, log.Append(ctx, testHeader, []string{"ts", fmt.Sprintf("writer-%d", w), value}))
			}
		}(w)
	}
	wg.Wait()

	rows, err := NewSubmissionLog(path).ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, writers*perWriter+1)
	assert.Equal(t, testHeader, rows[0])

	seen := make(map[string]bool)
	for _, row := range rows[1:] {
		require.Len(t, row, 3)
		var w, i int
		_, err := fmt.Sscanf(row[2], "w%d-%d,", &w, &i)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("writer-%d", w), row[1])
		assert.Equal(t, strings.Repeat(fmt.Sprintf("w%d-%d,", w, i), 200), row[2])
		seen[row[2]] = true
	}
	assert.Len(t, seen, writers*perWriter)
}

func TestSubmissionLogFailsWhenPathIsDirectory(t *testing.T) {
	dir := t.TempDir()
	log := NewSubmissionLog(dir)

	err := log.Append(context.Background(), testHeader, []string{"a", "b", "c"})
	assert.Error(t, err)
}

func TestExportRepositoryRendersTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "submissions.xls")
	export := NewExportRepository(path)

	rows := [][]string{
		testHeader,
		{"2026-01-01 00:00:00", "contact", "a@example.com"},
		{"2026-01-02 00:00:00", "home_contact", "<script>&\"x\""},
	}
	require.NoError(t, export.Write(rows))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(data)

	assert.True(t, strings.HasPrefix(html, `<html><head><meta charset="UTF-8"></head><body><table border="1">`))
	assert.True(t, strings.HasSuffix(html, `</table></body></html>`))
	assert.Equal(t, 3, strings.Count(html, "<tr>"))
	assert.Equal(t, 3, strings.Count(html, "<th>"))
	assert.Equal(t, 6, strings.Count(html, "<td>"))
	assert.Contains(t, html, "<th>submitted_at</th>")
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;&amp;")

	// Regenerating replaces the file wholesale
	require.NoError(t, export.Write(rows[:1]))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "<tr>"))
	assert.Equal(t, 0, strings.Count(string(data), "<td>"))

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".submissions-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestAuditRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAuditRepository(db)
	ctx := context.Background()

	entry := &models.AuditLogEntry{
		RequestID: "req-1",
		Actor:     "anonymous",
		Method:    "POST",
		Path:      "/api/submit",
		FormData:  `{"formType":"contact"}`,
		UserAgent: "test-agent",
		IPAddress: "203.0.113.7",
	}
	require.NoError(t, repo.Create(ctx, entry))
	assert.NotZero(t, entry.ID)

	require.NoError(t, repo.Create(ctx, &models.AuditLogEntry{Actor: "anonymous", Method: "POST", Path: "/api/revalidate"}))

	entries, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "/api/revalidate", entries[0].Path)
	assert.Equal(t, "203.0.113.7", entries[1].IPAddress)
	assert.Equal(t, "req-1", entries[1].RequestID)
}

func TestRevalidationRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRevalidationRepository(db)
	ctx := context.Background()

	record := &models.RevalidationRecord{
		Slug:  "paris-guide",
		Paths: []string{"/blog", "/blog/paris-guide"},
		Tags:  []string{"post", "post:paris-guide"},
	}
	require.NoError(t, repo.Record(ctx, record))
	assert.NotZero(t, record.ID)

	records, err := repo.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, record.Paths, records[0].Paths)
	assert.Equal(t, record.Tags, records[0].Tags)
	assert.Equal(t, "paris-guide", records[0].Slug)
}

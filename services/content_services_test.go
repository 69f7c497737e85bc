package services

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vukatravels/site/cache"
	"github.com/vukatravels/site/models"
	"github.com/vukatravels/site/repositories"
	"github.com/vukatravels/site/repositories/mocks"
)

// fakeSource counts CMS reads
type fakeSource struct {
	mu    sync.Mutex
	calls int
	posts map[string]*models.Post
}

func (f *fakeSource) ListPosts(ctx context.Context) ([]models.PostSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	var out []models.PostSummary
	for _, p := range f.posts {
		out = append(out, models.PostSummary{ID: p.ID, Title: p.Title, Slug: p.Slug})
	}
	return out, nil
}

func (f *fakeSource) GetPost(ctx context.Context, slug string) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	p, ok := f.posts[slug]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func newFakeSource() *fakeSource {
	return &fakeSource{posts: map[string]*models.Post{
		"paris-guide": {ID: "p1", Title: "Paris guide", Slug: "paris-guide"},
	}}
}

func TestBlogServiceCachesReads(t *testing.T) {
	source := newFakeSource()
	contentCache := cache.NewMemoryCache(time.Minute)
	defer contentCache.Close()
	svc := NewBlogService(source, contentCache, zap.NewNop())
	ctx := context.Background()

	posts, err := svc.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)

	_, err = svc.ListPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls)

	post, err := svc.GetPost(ctx, "paris-guide")
	require.NoError(t, err)
	assert.Equal(t, "Paris guide", post.Title)

	_, err = svc.GetPost(ctx, "paris-guide")
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)

	_, err = svc.GetPost(ctx, "missing")
	assert.True(t, IsNotFound(err))
}

func TestBlogServiceWithoutCMS(t *testing.T) {
	contentCache := cache.NewMemoryCache(time.Minute)
	defer contentCache.Close()
	svc := NewBlogService(nil, contentCache, zap.NewNop())

	posts, err := svc.ListPosts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)

	_, err = svc.GetPost(context.Background(), "anything")
	assert.True(t, IsNotFound(err))
}

func TestRevalidateRejectsBadSecret(t *testing.T) {
	contentCache := cache.NewMemoryCache(time.Minute)
	defer contentCache.Close()
	history := mocks.NewMockRevalidationRepository(t)

	svc := NewRevalidationService("s3cret", contentCache, history, zap.NewNop())
	for _, secret := range []string{"", "wrong", "s3cret ", "S3CRET"} {
		_, err := svc.Revalidate(context.Background(), secret, "")
		assert.ErrorIs(t, err, models.ErrInvalidSecret, "secret %q", secret)
	}

	// with no configured secret nothing is accepted
	svc = NewRevalidationService("", contentCache, history, zap.NewNop())
	_, err := svc.Revalidate(context.Background(), "", "")
	assert.ErrorIs(t, err, models.ErrInvalidSecret)

	history.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestRevalidateInvalidatesBlogContent(t *testing.T) {
	source := newFakeSource()
	source.posts["rome-guide"] = &models.Post{ID: "p2", Title: "Rome guide", Slug: "rome-guide"}

	contentCache := cache.NewMemoryCache(time.Minute)
	defer contentCache.Close()
	history := mocks.NewMockRevalidationRepository(t)
	history.On("Record", mock.Anything, mock.MatchedBy(func(r *models.RevalidationRecord) bool {
		return r.Slug == "paris-guide" &&
			assert.ObjectsAreEqual([]string{"post", "post:paris-guide"}, r.Tags)
	})).Return(nil).Once()
	history.On("Record", mock.Anything, mock.MatchedBy(func(r *models.RevalidationRecord) bool {
		return r.Slug == ""
	})).Return(errors.New("database is locked")).Once()

	blog := NewBlogService(source, contentCache, zap.NewNop())
	svc := NewRevalidationService("s3cret", contentCache, history, zap.NewNop())
	ctx := context.Background()

	_, _ = blog.ListPosts(ctx)
	_, _ = blog.GetPost(ctx, "paris-guide")
	_, _ = blog.GetPost(ctx, "rome-guide")
	require.Equal(t, 3, source.calls)

	paths, err := svc.Revalidate(ctx, "s3cret", "paris-guide")
	require.NoError(t, err)
	assert.Equal(t, []string{"/blog", "/blog/paris-guide"}, paths)

	// the "post" tag covers every cached post
	_, _ = blog.ListPosts(ctx)
	_, _ = blog.GetPost(ctx, "paris-guide")
	_, _ = blog.GetPost(ctx, "rome-guide")
	assert.Equal(t, 6, source.calls)

	// a history failure does not fail the webhook
	paths, err = svc.Revalidate(ctx, "s3cret", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"/blog"}, paths)
}

func TestActivityService(t *testing.T) {
	audit := mocks.NewMockAuditRepository(t)
	revalidations := mocks.NewMockRevalidationRepository(t)

	audit.On("Recent", mock.Anything, 100).Return([]models.AuditLogEntry{{ID: 1, Path: "/api/submit"}}, nil)
	revalidations.On("Recent", mock.Anything, 100).Return(nil, nil)

	svc := NewActivityService(audit, revalidations)
	activity, err := svc.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, activity.Audit, 1)
	assert.NotNil(t, activity.Revalidations)
	assert.Empty(t, activity.Revalidations)
}

func TestActivityServiceAuditFailure(t *testing.T) {
	audit := mocks.NewMockAuditRepository(t)
	revalidations := mocks.NewMockRevalidationRepository(t)
	audit.On("Recent", mock.Anything, 10).Return(nil, errors.New("no such table"))

	_, err := NewActivityService(audit, revalidations).Recent(context.Background(), 10)
	assert.Error(t, err)
}

func TestExportService(t *testing.T) {
	dir := t.TempDir()
	log := repositories.NewSubmissionLog(filepath.Join(dir, "submissions.csv"))
	export := repositories.NewExportRepository(filepath.Join(dir, "submissions.xls"))
	svc := NewExportService(log, export)
	ctx := context.Background()

	require.NoError(t, log.Append(ctx, models.SubmissionHeader, make([]string, len(models.SubmissionHeader))))
	record := make([]string, len(models.SubmissionHeader))
	record[1] = "contact"
	record[6] = "Hello, \"world\""
	require.NoError(t, log.Append(ctx, models.SubmissionHeader, record))

	require.NoError(t, svc.Regenerate(ctx))
	assert.Equal(t, export.Path(), svc.ExportPath())

	data, err := os.ReadFile(svc.ExportPath())
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(data), "<tr>"))

	var buf bytes.Buffer
	require.NoError(t, svc.WriteCSV(ctx, &buf))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "submitted_at,form_type,"))
	assert.Contains(t, lines[2], `"Hello, ""world"""`)
}

func TestExportServiceReadFailure(t *testing.T) {
	log := mocks.NewMockSubmissionLog(t)
	export := mocks.NewMockExportRepository(t)
	log.On("ReadAll", mock.Anything).Return(nil, errors.New("permission denied"))

	err := NewExportService(log, export).Regenerate(context.Background())
	assert.Error(t, err)
	export.AssertNotCalled(t, "Write", mock.Anything)
}

// slowExport records what each Write saw and how many ran at once
type slowExport struct {
	mu       sync.Mutex
	inFlight int
	maxSeen  int
	lastRows int
}

func (e *slowExport) Write(rows [][]string) error {
	e.mu.Lock()
	e.inFlight++
	if e.inFlight > e.maxSeen {
		e.maxSeen = e.inFlight
	}
	e.mu.Unlock()

	time.Sleep(2 * time.Millisecond)

	e.mu.Lock()
	e.inFlight--
	e.lastRows = len(rows)
	e.mu.Unlock()
	return nil
}

func (e *slowExport) Path() string { return "submissions.xls" }

func TestExportServiceRegenerateIsSerialized(t *testing.T) {
	log := repositories.NewSubmissionLog(filepath.Join(t.TempDir(), "submissions.csv"))
	export := &slowExport{}
	svc := NewExportService(log, export)
	ctx := context.Background()

	const submitters = 20
	var wg sync.WaitGroup
	for i := 0; i < submitters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			record := make([]string, len(models.SubmissionHeader))
			record[1] = "contact"
			assert.NoError(t, log.Append(ctx, models.SubmissionHeader, record))
			assert.NoError(t, svc.Regenerate(ctx))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, export.maxSeen)
	// the last regeneration saw every row
	assert.Equal(t, submitters+1, export.lastRows)
}

package services

import (
	"context"
	"crypto/subtle"
	"fmt"

	"go.uber.org/zap"

	"github.com/vukatravels/site/cache"
	"github.com/vukatravels/site/models"
	"github.com/vukatravels/site/repositories"
)

// RevalidationService invalidates cached blog content on CMS publish events
type RevalidationService interface {
	// Revalidate checks secret and drops the blog index, plus the post for
	// slug when given. It returns the invalidated paths.
	Revalidate(ctx context.Context, secret, slug string) ([]string, error)
}

type revalidationService struct {
	secret  string
	cache   cache.ContentCache
	history repositories.RevalidationRepository
	logger  *zap.Logger
}

// NewRevalidationService creates a revalidation service. An empty secret
// rejects every call.
func NewRevalidationService(secret string, contentCache cache.ContentCache, history repositories.RevalidationRepository, logger *zap.Logger) RevalidationService {
	return &revalidationService{
		secret:  secret,
		cache:   contentCache,
		history: history,
		logger:  logger,
	}
}

func (s *revalidationService) Revalidate(ctx context.Context, secret, slug string) ([]string, error) {
	if !s.authorized(secret) {
		s.logger.Warn("Rejected revalidation with invalid secret")
		return nil, models.ErrInvalidSecret
	}

	paths := []string{BlogIndexPath}
	tags := []string{PostTag}
	if slug != "" {
		paths = append(paths, PostPath(slug))
		tags = append(tags, PostSlugTag(slug))
	}

	for _, p := range paths {
		if err := s.cache.InvalidatePath(ctx, p); err != nil {
			return nil, fmt.Errorf("failed to invalidate path %s: %w", p, err)
		}
	}
	for _, t := range tags {
		if err := s.cache.InvalidateTag(ctx, t); err != nil {
			return nil, fmt.Errorf("failed to invalidate tag %s: %w", t, err)
		}
	}

	record := &models.RevalidationRecord{Timestamp: timeNow().UTC(), Slug: slug, Paths: paths, Tags: tags}
	if err := s.history.Record(ctx, record); err != nil {
		s.logger.Warn("Failed to record revalidation", zap.Error(err))
	}

	s.logger.Info("Revalidated content", zap.Strings("paths", paths), zap.Strings("tags", tags))
	return paths, nil
}

func (s *revalidationService) authorized(secret string) bool {
	if s.secret == "" || secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(s.secret)) == 1
}

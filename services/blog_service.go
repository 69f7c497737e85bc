package services

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/vukatravels/site/cache"
	"github.com/vukatravels/site/models"
)

// Cache keys shared by blog reads and revalidation
const (
	BlogIndexPath = "/blog"
	PostTag       = "post"
)

// PostPath is the cache path of a single post
func PostPath(slug string) string {
	return BlogIndexPath + "/" + slug
}

// PostSlugTag tags every cache entry derived from one post
func PostSlugTag(slug string) string {
	return PostTag + ":" + slug
}

// ContentSource reads posts from the CMS
type ContentSource interface {
	ListPosts(ctx context.Context) ([]models.PostSummary, error)
	GetPost(ctx context.Context, slug string) (*models.Post, error)
}

// BlogService serves blog content through the content cache
type BlogService interface {
	ListPosts(ctx context.Context) ([]models.PostSummary, error)
	GetPost(ctx context.Context, slug string) (*models.Post, error)
}

type blogService struct {
	source ContentSource
	cache  cache.ContentCache
	logger *zap.Logger
}

// NewBlogService creates a blog service. A nil source serves an empty blog.
func NewBlogService(source ContentSource, contentCache cache.ContentCache, logger *zap.Logger) BlogService {
	return &blogService{source: source, cache: contentCache, logger: logger}
}

func (s *blogService) ListPosts(ctx context.Context) ([]models.PostSummary, error) {
	posts := []models.PostSummary{}
	if s.source == nil {
		return posts, nil
	}

	if s.cached(ctx, BlogIndexPath, &posts) {
		return posts, nil
	}

	posts, err := s.source.ListPosts(ctx)
	if err != nil {
		return nil, err
	}

	s.store(ctx, BlogIndexPath, posts, PostTag)
	return posts, nil
}

func (s *blogService) GetPost(ctx context.Context, slug string) (*models.Post, error) {
	if s.source == nil || slug == "" {
		return nil, models.ErrNotFound
	}

	path := PostPath(slug)
	var post models.Post
	if s.cached(ctx, path, &post) {
		return &post, nil
	}

	found, err := s.source.GetPost(ctx, slug)
	if err != nil {
		return nil, err
	}

	s.store(ctx, path, found, PostTag, PostSlugTag(slug))
	return found, nil
}

// cached decodes the entry at path into out. Cache faults count as misses.
func (s *blogService) cached(ctx context.Context, path string, out interface{}) bool {
	data, ok, err := s.cache.Get(ctx, path)
	if err != nil {
		s.logger.Warn("Content cache read failed", zap.String("path", path), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.logger.Warn("Discarding undecodable cache entry", zap.String("path", path), zap.Error(err))
		return false
	}
	return true
}

func (s *blogService) store(ctx context.Context, path string, v interface{}, tags ...string) {
	data, err := json.Marshal(v)
	if err == nil {
		err = s.cache.Set(ctx, path, data, tags...)
	}
	if err != nil {
		s.logger.Warn("Content cache write failed", zap.String("path", path), zap.Error(err))
	}
}

// IsNotFound reports whether err means the post does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}

package models

import (
	"encoding/json"
	"time"
)

// PostSummary is a blog post as listed on the index
type PostSummary struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     string     `json:"excerpt,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	AuthorName  string     `json:"authorName,omitempty"`
	Categories  []string   `json:"categories,omitempty"`
}

// Author is the embedded author of a post
type Author struct {
	Name  string          `json:"name"`
	Bio   json.RawMessage `json:"bio,omitempty"`
	Image json.RawMessage `json:"image,omitempty"`
}

// Image is a CMS image reference with alt text
type Image struct {
	Asset json.RawMessage `json:"asset,omitempty"`
	Alt   string          `json:"alt,omitempty"`
}

// Post is a full blog post. Body is portable text and is passed through
// untouched.
type Post struct {
	ID             string          `json:"_id"`
	Title          string          `json:"title"`
	Slug           string          `json:"slug"`
	Excerpt        string          `json:"excerpt,omitempty"`
	SEOTitle       string          `json:"seoTitle,omitempty"`
	SEODescription string          `json:"seoDescription,omitempty"`
	PublishedAt    *time.Time      `json:"publishedAt,omitempty"`
	UpdatedAt      *time.Time      `json:"updatedAt,omitempty"`
	Body           json.RawMessage `json:"body,omitempty"`
	MainImage      *Image          `json:"mainImage,omitempty"`
	Author         *Author         `json:"author,omitempty"`
	Categories     []string        `json:"categories,omitempty"`
}

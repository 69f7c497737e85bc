package cms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vukatravels/site/config"
	"github.com/vukatravels/site/models"
)

func TestNewClientHost(t *testing.T) {
	cfg := config.CMSConfig{ProjectID: "abc123", Dataset: "production", APIVersion: "2025-02-19"}

	c := NewClient(cfg)
	assert.Equal(t, "https://abc123.apicdn.sanity.io/v2025-02-19/data/query/production", c.baseURL)

	cfg.ReadToken = "secret"
	c = NewClient(cfg)
	assert.Equal(t, "https://abc123.api.sanity.io/v2025-02-19/data/query/production", c.baseURL)
}

func TestListPosts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Contains(t, r.URL.Query().Get("query"), `_type == "post"`)
		assert.Equal(t, "published", r.URL.Query().Get("perspective"))
		assert.Empty(t, r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ms":3,"result":[{"_id":"p1","title":"Paris guide","slug":"paris-guide","categories":["Europe"]}]}`))
	}))
	defer srv.Close()

	c := NewClient(config.CMSConfig{ProjectID: "p", Dataset: "d", APIVersion: "1"}, WithBaseURL(srv.URL))

	posts, err := c.ListPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "paris-guide", posts[0].Slug)
	assert.Equal(t, []string{"Europe"}, posts[0].Categories)
}

func TestListPostsNullResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":null}`))
	}))
	defer srv.Close()

	c := NewClient(config.CMSConfig{}, WithBaseURL(srv.URL))
	posts, err := c.ListPosts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestGetPost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		assert.Equal(t, "drafts", r.URL.Query().Get("perspective"))

		var slug string
		assert.NoError(t, json.Unmarshal([]byte(r.URL.Query().Get("$slug")), &slug))
		if slug != "paris-guide" {
			w.Write([]byte(`{"result":null}`))
			return
		}
		w.Write([]byte(`{"result":{"_id":"p1","title":"Paris guide","slug":"paris-guide","body":[{"_type":"block"}],"author":{"name":"Ana"}}}`))
	}))
	defer srv.Close()

	c := NewClient(config.CMSConfig{ReadToken: "token-1"}, WithBaseURL(srv.URL))

	post, err := c.GetPost(context.Background(), "paris-guide")
	require.NoError(t, err)
	assert.Equal(t, "Paris guide", post.Title)
	assert.Equal(t, "Ana", post.Author.Name)
	assert.JSONEq(t, `[{"_type":"block"}]`, string(post.Body))

	_, err = c.GetPost(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestQueryErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bad query"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(config.CMSConfig{}, WithBaseURL(srv.URL))
	_, err := c.ListPosts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

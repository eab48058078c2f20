package search_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepquery/dqf/retry"
	"github.com/deepquery/dqf/search"
)

var testPolicy = retry.Policy{
	MaxRetries:    2,
	InitialDelay:  time.Millisecond,
	BackoffFactor: 1.0,
	MaxDelay:      time.Millisecond,
}

func newTestClient(url string, maxResults int) *search.Client {
	p := testPolicy
	return search.New("tavily-key", &search.Options{
		BaseURL:    url,
		MaxResults: maxResults,
		Policy:     &p,
	})
}

func TestSearch_Success(t *testing.T) {
	var got struct {
		APIKey     string `json:"api_key"`
		Query      string `json:"query"`
		MaxResults int    `json:"max_results"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))

		io.WriteString(w, `{"results":[
			{"title":"Go","url":"https://go.dev","content":"The Go programming language","score":0.97},
			{"title":"Docs","url":"https://go.dev/doc","content":"Documentation","score":0.85}
		]}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 5)
	results, err := c.Search(context.Background(), "golang")

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Go", results[0].Title)
	assert.Equal(t, "https://go.dev", results[0].URL)
	assert.Equal(t, 0.97, results[0].Score)

	assert.Equal(t, "tavily-key", got.APIKey)
	assert.Equal(t, "golang", got.Query)
	assert.Equal(t, 5, got.MaxResults)
}

func TestSearch_EmptyQueryIsFatal(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 5)
	_, err := c.Search(context.Background(), "")

	require.Error(t, err)
	assert.Equal(t, retry.KindValidation, retry.KindOf(err))
	assert.Equal(t, int32(0), hits.Load())
}

func TestSearchOrEmpty_SuppressesPersistentFailure(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 5)
	results := c.SearchOrEmpty(context.Background(), "golang")

	assert.Empty(t, results)
	assert.NotNil(t, results, "suppressed failure yields the empty default, not nil")
	assert.Equal(t, int32(3), hits.Load(), "maxRetries+1 attempts before giving up")
}

func TestSearchOrEmpty_RecoversMidway(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		io.WriteString(w, `{"results":[{"title":"hit","url":"u","content":"c","score":1}]}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 5)
	results := c.SearchOrEmpty(context.Background(), "golang")

	require.Len(t, results, 1)
	assert.Equal(t, "hit", results[0].Title)
}

func TestSearch_RateLimitClassification(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := retry.Policy{MaxRetries: 0, InitialDelay: time.Millisecond, BackoffFactor: 1, MaxDelay: time.Millisecond}
	c := search.New("k", &search.Options{BaseURL: srv.URL, Policy: &p})
	_, err := c.Search(context.Background(), "golang")

	require.Error(t, err)
	assert.Equal(t, retry.KindRateLimit, retry.KindOf(err))
	assert.Equal(t, int32(1), hits.Load())
}

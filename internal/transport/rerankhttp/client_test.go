package rerankhttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(&Config{
		Name:     "test",
		Endpoint: srv.URL,
		APIKey:   "secret",
		Model:    "rerank-test",
		Logger:   zap.NewNop(),
	})
}

func TestRerank(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req struct {
			Model     string   `json:"model"`
			Query     string   `json:"query"`
			Documents []string `json:"documents"`
			TopN      int      `json:"top_n"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "rerank-test", req.Model)
		assert.Equal(t, "way maker", req.Query)
		assert.Equal(t, 2, req.TopN)

		_, _ = w.Write([]byte(`{"results":[
			{"index":2,"relevance_score":0.98},
			{"index":0,"relevance_score":0.41}
		]}`))
	})

	indices, err := client.Rerank(context.Background(), "way maker", []string{"a", "b", "c"}, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0}, indices)
}

func TestRerankSortsUnorderedResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":[
			{"index":0,"relevance_score":0.2},
			{"index":1,"relevance_score":0.9}
		]}`))
	})

	indices, err := client.Rerank(context.Background(), "q", []string{"a", "b"}, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, indices)
}

func TestRerankAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"rate limited"}`, http.StatusTooManyRequests)
	})

	_, err := client.Rerank(context.Background(), "q", []string{"a"}, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestRerankIndexOutOfRange(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":[{"index":5,"relevance_score":0.9}]}`))
	})

	_, err := client.Rerank(context.Background(), "q", []string{"a", "b"}, 2)
	require.Error(t, err)
}

func TestRerankEmptyDocuments(t *testing.T) {
	client := newTestClient(t, func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatal("no request expected for empty document list")
	})

	indices, err := client.Rerank(context.Background(), "q", nil, 5)
	require.NoError(t, err)
	assert.Nil(t, indices)
}

func TestAvailable(t *testing.T) {
	c := New(&Config{Name: "cohere", Endpoint: "https://example.com", APIKey: "k"})
	assert.True(t, c.Available())

	c = New(&Config{Name: "cohere", Endpoint: "https://example.com"})
	assert.False(t, c.Available())

	c = New(&Config{Name: "cohere", APIKey: "k"})
	assert.False(t, c.Available())
}

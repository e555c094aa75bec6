package trello

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskbot/internal/client"
)

func TestTrelloClient_Sync(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/boards/board-1/cards", r.URL.Path)
		assert.Equal(t, "k", r.URL.Query().Get("key"))
		assert.Equal(t, "tok", r.URL.Query().Get("token"))

		_ = json.NewEncoder(w).Encode([]TrelloCard{
			{Id: "c1", Name: "First", Desc: "one", Badges: TrelloBadges{DueComplete: true}},
			{Id: "c2", Name: "Second"},
		})
	}))
	defer srv.Close()

	c := NewTrelloClient("k", "tok", "board-1", WithBaseURL(srv.URL))
	require.NoError(t, c.Sync(context.Background()))

	assert.Equal(t, []client.Card{
		{ID: "c1", Title: "First", Description: "one", Done: true},
		{ID: "c2", Title: "Second"},
	}, c.Tasks())
}

func TestTrelloClient_SyncFailureKeepsPreviousCards(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode([]TrelloCard{{Id: "c1", Name: "Kept"}})
	}))
	defer srv.Close()

	c := NewTrelloClient("k", "tok", "b", WithBaseURL(srv.URL))
	require.NoError(t, c.Sync(context.Background()))

	fail.Store(true)
	err := c.Sync(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "invalid token", apiErr.Message)
	require.Len(t, c.Tasks(), 1)
	assert.Equal(t, "Kept", c.Tasks()[0].Title)
}

func TestTrelloClient_UpdateTask(t *testing.T) {
	type call struct {
		method string
		url    *url.URL
	}
	calls := make(chan call, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls <- call{method: r.Method, url: r.URL}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewTrelloClient("k", "tok", "b", WithBaseURL(srv.URL+"/"))
	err := c.UpdateTask(context.Background(), client.Card{ID: "c9", Title: "New & shiny", Description: "d", Done: true})
	require.NoError(t, err)

	got := <-calls
	assert.Equal(t, http.MethodPut, got.method)
	assert.Equal(t, "/cards/c9", got.url.Path)
	q := got.url.Query()
	assert.Equal(t, "New & shiny", q.Get("name"))
	assert.Equal(t, "d", q.Get("desc"))
	assert.Equal(t, "true", q.Get("dueComplete"))
	assert.Equal(t, "k", q.Get("key"))
}

func TestTrelloClient_UpdateTaskError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "card not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewTrelloClient("k", "tok", "b", WithBaseURL(srv.URL))
	err := c.UpdateTask(context.Background(), client.Card{ID: "missing"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestNewFactory(t *testing.T) {
	factory := NewFactory("k", "tok")

	bc := factory("board-7")

	tc, ok := bc.(*TrelloClient)
	require.True(t, ok)
	assert.Equal(t, "board-7", tc.BoardID())
}

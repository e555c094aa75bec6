package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 0,
			"model":   "gpt-4o",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAIService_GenerateTasksFromText(t *testing.T) {
	srv := chatServer(t, "```json\n[{\"title\":\"Book venue\",\"description\":\"party\",\"due_date\":\"2024-05-10T23:59:59Z\"},{\"title\":\"Send invites\",\"description\":\"\",\"due_date\":null}]\n```")
	ai := NewAIServiceWithBaseURL("test-key", srv.URL+"/v1")

	tasks, err := ai.GenerateTasksFromText(context.Background(), "plan the party")

	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Book venue", tasks[0].Title)
	require.NotNil(t, tasks[0].DueDate)
	assert.True(t, tasks[0].DueDate.Equal(time.Date(2024, time.May, 10, 23, 59, 59, 0, time.UTC)))
	assert.Nil(t, tasks[1].DueDate)
}

func TestAIService_UnparsableResponse(t *testing.T) {
	srv := chatServer(t, "sorry, no JSON today")
	ai := NewAIServiceWithBaseURL("test-key", srv.URL+"/v1")

	_, err := ai.GenerateTasksFromText(context.Background(), "anything")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse AI response")
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, "[]", stripCodeFence("```json\n[]\n```"))
	assert.Equal(t, "[]", stripCodeFence("```\n[]\n```"))
	assert.Equal(t, "[]", stripCodeFence("  []  "))
}

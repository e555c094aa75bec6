package reconcile

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskbot/internal/client"
	"github.com/yukikurage/taskbot/internal/models"
)

var now = time.Date(2024, time.February, 10, 9, 0, 0, 0, time.UTC)

func linkedTask(id, ext, title string) *models.Task {
	t := models.NewTask(id, "ws", now)
	t.Title = title
	if ext != "" {
		t.ExternalID = &ext
	}
	return t
}

func sequence() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("new-%d", n)
	}
}

func TestPull(t *testing.T) {
	local := []*models.Task{
		linkedTask("a", "c1", "old title"),
		linkedTask("b", "", "local only"),
		linkedTask("c", "c-missing", "stale link"),
	}
	local[0].AddAssignees(models.UserRef("1"))
	cards := []client.Card{
		{ID: "c1", Title: "remote title", Description: "remote desc", Done: true},
		{ID: "c2", Title: "brand new", Description: ""},
	}

	out, res := Pull(local, cards, "ws", sequence(), now)

	assert.Equal(t, PullResult{Created: 1, Updated: 1}, res)
	require.Len(t, out, len(local)+1)

	assert.Equal(t, "remote title", out[0].Title)
	assert.Equal(t, "remote desc", out[0].Description)
	assert.True(t, out[0].Done)
	assert.Equal(t, []models.Assignee{{TaskID: "a", Kind: models.AssigneeUser, Ref: "1"}}, out[0].Assignees)

	assert.Equal(t, "local only", out[1].Title)
	assert.Equal(t, "stale link", out[2].Title)

	created := out[3]
	assert.Equal(t, "new-1", created.ID)
	assert.Equal(t, "c2", created.ExternalIDValue())
	assert.Equal(t, "brand new", created.Title)
	assert.Equal(t, "ws", created.WorkspaceID)
	assert.Equal(t, models.Day(now), created.StartDate)

	assert.Equal(t, "old title", local[0].Title, "input is not mutated")
	assert.False(t, local[0].Done)
}

func TestPull_ResultSizeAndFieldEquality(t *testing.T) {
	local := []*models.Task{
		linkedTask("a", "e1", "x"),
		linkedTask("b", "e2", "y"),
		linkedTask("c", "", "z"),
	}
	cards := []client.Card{
		{ID: "e2", Title: "two", Done: true},
		{ID: "e3", Title: "three", Description: "d3"},
		{ID: "e4", Title: "four"},
		{ID: "e1", Title: "one", Description: "d1"},
	}

	out, _ := Pull(local, cards, "ws", sequence(), now)

	assert.Len(t, out, 3+2)
	byExt := map[string]client.Card{}
	for _, c := range cards {
		byExt[c.ID] = c
	}
	for _, task := range out {
		card, ok := byExt[task.ExternalIDValue()]
		if !ok {
			continue
		}
		assert.Equal(t, card, client.Card{
			ID:          task.ExternalIDValue(),
			Title:       task.Title,
			Description: task.Description,
			Done:        task.Done,
		})
	}
}

func TestPull_NoCardsIsIdentity(t *testing.T) {
	local := []*models.Task{linkedTask("a", "e1", "x")}

	out, res := Pull(local, nil, "ws", sequence(), now)

	assert.Equal(t, PullResult{}, res)
	require.Len(t, out, 1)
	assert.Equal(t, local[0], out[0])
	assert.NotSame(t, local[0], out[0])
}

func TestPush(t *testing.T) {
	local := []*models.Task{
		linkedTask("a", "e1", "mine"),
		linkedTask("b", "", "never pushed"),
		linkedTask("c", "e-gone", "card was deleted"),
		linkedTask("d", "e2", "also mine"),
	}
	local[0].Description = "desc"
	local[3].Done = true
	cards := []client.Card{
		{ID: "e2", Title: "remote two"},
		{ID: "e1", Title: "remote one"},
		{ID: "e9", Title: "unlinked card"},
	}
	before := make([]models.Task, len(local))
	for i, task := range local {
		before[i] = *task.Clone()
	}

	updates := Push(local, cards)

	assert.Equal(t, []client.Card{
		{ID: "e1", Title: "mine", Description: "desc"},
		{ID: "e2", Title: "also mine", Done: true},
	}, updates)
	for i, task := range local {
		assert.Equal(t, before[i], *task)
	}
}

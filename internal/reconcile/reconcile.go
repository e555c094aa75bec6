// Package reconcile merges an external board's cards with a workspace's
// tasks. Both directions are pure: they never mutate their inputs.
package reconcile

import (
	"time"

	"github.com/yukikurage/taskbot/internal/client"
	"github.com/yukikurage/taskbot/internal/models"
)

type PullResult struct {
	Created int
	Updated int
}

// Pull returns a copy of local with every card applied: a card whose ID is
// already linked overwrites the linked tasks' title, description and done
// flag, any other card becomes a new task appended at the end. Local tasks
// without a matching card are kept as they are.
func Pull(local []*models.Task, cards []client.Card, workspaceID string, newID func() string, now time.Time) ([]*models.Task, PullResult) {
	out := make([]*models.Task, len(local))
	linked := make(map[string][]int)
	for i, t := range local {
		out[i] = t.Clone()
		if ext := t.ExternalIDValue(); ext != "" {
			linked[ext] = append(linked[ext], i)
		}
	}

	var res PullResult
	for _, card := range cards {
		if idx, ok := linked[card.ID]; ok {
			for _, i := range idx {
				applyCard(out[i], card)
			}
			res.Updated++
			continue
		}

		task := models.NewTask(newID(), workspaceID, now)
		id := card.ID
		task.ExternalID = &id
		applyCard(task, card)
		linked[card.ID] = []int{len(out)}
		out = append(out, task)
		res.Created++
	}
	return out, res
}

// external wins on every shared field
func applyCard(t *models.Task, card client.Card) {
	t.Title = card.Title
	t.Description = card.Description
	t.Done = card.Done
}

// Push returns one updated card per local task linked to a fetched card,
// carrying the local title, description and done flag. Tasks that are not
// linked, or linked to a card that was not fetched, are skipped.
func Push(local []*models.Task, cards []client.Card) []client.Card {
	fetched := make(map[string]struct{}, len(cards))
	for _, c := range cards {
		fetched[c.ID] = struct{}{}
	}

	var updates []client.Card
	for _, t := range local {
		ext := t.ExternalIDValue()
		if ext == "" {
			continue
		}
		if _, ok := fetched[ext]; !ok {
			continue
		}
		updates = append(updates, client.Card{
			ID:          ext,
			Title:       t.Title,
			Description: t.Description,
			Done:        t.Done,
		})
	}
	return updates
}

package services

import (
	"context"
	"fmt"

	"github.com/yukikurage/taskbot/internal/models"
	"github.com/yukikurage/taskbot/internal/reconcile"
)

// SyncLocal pulls the linked board into the local collection. Cards win on
// title, description and done; local tasks without a card are left alone.
func (m *TaskManager) SyncLocal(ctx context.Context, channelID string) (reconcile.PullResult, error) {
	board := m.boardClient()
	if board == nil {
		return reconcile.PullResult{}, ErrNoBoardLinked
	}
	if err := board.Sync(ctx); err != nil {
		return reconcile.PullResult{}, fmt.Errorf("%w: %w", ErrBoardSync, err)
	}
	cards := board.Tasks()

	m.mu.Lock()
	defer m.mu.Unlock()

	var result reconcile.PullResult
	err := m.commit(func(tasks []*models.Task) ([]*models.Task, error) {
		next, r := reconcile.Pull(tasks, cards, m.workspaceID, m.newID, m.now())
		result = r
		return next, nil
	})
	if err != nil {
		return reconcile.PullResult{}, err
	}

	msg := fmt.Sprintf("Pulled %d card(s) from the board: %d created, %d updated.",
		len(cards), result.Created, result.Updated)
	return result, m.post(ctx, channelID, msg)
}

// SyncTrello pushes every linked local task to its card. Local state never
// changes and no card is created or deleted.
func (m *TaskManager) SyncTrello(ctx context.Context, channelID string) (int, error) {
	board := m.boardClient()
	if board == nil {
		return 0, ErrNoBoardLinked
	}
	if err := board.Sync(ctx); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBoardSync, err)
	}

	m.mu.Lock()
	snapshot := cloneTasks(m.tasks)
	m.mu.Unlock()

	pushed := 0
	for _, card := range reconcile.Push(snapshot, board.Tasks()) {
		if err := board.UpdateTask(ctx, card); err != nil {
			return pushed, fmt.Errorf("%w: card %s: %w", ErrBoardSync, card.ID, err)
		}
		pushed++
	}

	return pushed, m.post(ctx, channelID, fmt.Sprintf("Pushed %d task(s) to the board.", pushed))
}

package client

import "context"

// Card is one record of an external board as seen by the task tracker.
type Card struct {
	ID          string
	Title       string
	Description string
	Done        bool
}

// BoardClient mirrors a single external board.
type BoardClient interface {
	// Sync refreshes the in-memory card set from the remote board. On error
	// the previously fetched cards are kept.
	Sync(ctx context.Context) error

	// Tasks returns the cards fetched by the last successful Sync.
	Tasks() []Card

	// UpdateTask pushes title, description and done flag of one card.
	UpdateTask(ctx context.Context, card Card) error
}

// BoardFactory builds a client bound to the given board.
type BoardFactory func(boardID string) BoardClient

package surface

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// MaxQueuedEvents bounds each workspace queue; the oldest events are
// dropped first.
const MaxQueuedEvents = 1000

type EventKind string

const (
	EventSend   EventKind = "send"
	EventDelete EventKind = "delete"
	EventPost   EventKind = "post"
)

// Event is one instruction for the platform bridge.
type Event struct {
	ID        string    `json:"id"`
	Kind      EventKind `json:"kind"`
	ChannelID string    `json:"channel_id"`
	MessageID string    `json:"message_id,omitempty"`
	Prompt    *Prompt   `json:"prompt,omitempty"`
	Content   string    `json:"content,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Outbox queues surface operations per workspace until the bridge drains
// them. Message IDs are ULIDs, so they sort by creation time.
type Outbox struct {
	mu      sync.Mutex
	queues  map[string][]Event
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

func NewOutbox() *Outbox {
	return &Outbox{
		queues:  make(map[string][]Event),
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// For returns the Surface of one workspace.
func (o *Outbox) For(workspaceID string) Surface {
	return &workspaceSurface{outbox: o, workspaceID: workspaceID}
}

// Drain returns and clears the pending events of a workspace.
func (o *Outbox) Drain(workspaceID string) []Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	events := o.queues[workspaceID]
	delete(o.queues, workspaceID)
	if events == nil {
		return []Event{}
	}
	return events
}

// Forget drops everything queued for a workspace.
func (o *Outbox) Forget(workspaceID string) {
	o.mu.Lock()
	delete(o.queues, workspaceID)
	o.mu.Unlock()
}

func (o *Outbox) push(workspaceID string, ev Event) (Event, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	now := o.now()
	id, err := ulid.New(ulid.Timestamp(now), o.entropy)
	if err != nil {
		return Event{}, fmt.Errorf("outbox: new id: %w", err)
	}
	ev.ID = id.String()
	ev.CreatedAt = now

	q := append(o.queues[workspaceID], ev)
	if len(q) > MaxQueuedEvents {
		log.Printf("outbox: workspace %s queue full, dropping %d events", workspaceID, len(q)-MaxQueuedEvents)
		q = q[len(q)-MaxQueuedEvents:]
	}
	o.queues[workspaceID] = q
	return ev, nil
}

type workspaceSurface struct {
	outbox      *Outbox
	workspaceID string
}

func (s *workspaceSurface) Send(ctx context.Context, channelID string, prompt Prompt) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p := prompt
	ev, err := s.outbox.push(s.workspaceID, Event{Kind: EventSend, ChannelID: channelID, Prompt: &p})
	if err != nil {
		return "", err
	}
	return ev.ID, nil
}

func (s *workspaceSurface) Delete(ctx context.Context, channelID, messageID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.outbox.push(s.workspaceID, Event{Kind: EventDelete, ChannelID: channelID, MessageID: messageID})
	return err
}

func (s *workspaceSurface) Post(ctx context.Context, channelID, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.outbox.push(s.workspaceID, Event{Kind: EventPost, ChannelID: channelID, Content: content})
	return err
}

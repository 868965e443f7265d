package board

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// EventKind names the change a board event describes.
type EventKind string

const (
	// EventMoveCards carries the re-flattened arrangement of every column an
	// arrangement operation touched.
	EventMoveCards EventKind = "board_move_cards"

	// EventCombineCards carries the combined card plus its source column's
	// re-flattened arrangement; clients derive the new pile membership.
	EventCombineCards EventKind = "board_combine_cards"

	// EventFlipCard announces a new top-of-pile card.
	EventFlipCard EventKind = "board_flip_card"

	// EventVaporize announces the deletion of an empty card dropped on Trash.
	EventVaporize EventKind = "card_vaporize"

	// EventBoardCreated and EventBoardUpdated announce board metadata changes.
	EventBoardCreated EventKind = "board_created"
	EventBoardUpdated EventKind = "board_updated"

	// EventTimerStart announces a running board timer.
	EventTimerStart EventKind = "board_timer_start"

	// EventCardCreated and EventCardUpdated announce single-card changes.
	EventCardCreated EventKind = "card_created"
	EventCardUpdated EventKind = "card_updated"

	// EventCardVote announces a changed vote tally on a card.
	EventCardVote EventKind = "card_vote"
)

// Event is the envelope broadcast to every subscriber of a board's channel.
// Only the fields relevant to the Kind are populated. The ID is a fresh UUID
// per publish so clients can discard duplicates.
type Event struct {
	ID    string    `json:"id"`
	Kind  EventKind `json:"kind"`
	Board int64     `json:"board"`

	// Columns maps column id -> flattened identifier slots, the shape clients
	// apply directly. Set for move, pile and vaporize events.
	Columns map[int64][][]int64 `json:"columns,omitempty"`

	// Card carries the affected card for combine, create and update events.
	Card *Card `json:"card,omitempty"`

	// SourceMap and SourceColumn accompany combine events.
	SourceMap    [][]int64 `json:"sourceMap,omitempty"`
	SourceColumn int64     `json:"sourceColumnId,omitempty"`

	// CardID identifies the card for flip, vaporize and vote events.
	CardID int64 `json:"cardId,omitempty"`

	// Seconds is the timer length for timer events.
	Seconds int `json:"seconds,omitempty"`

	// Votes is the card's tally for vote events.
	Votes int `json:"votes,omitempty"`
}

// Publish broadcasts an event to every subscriber of its board's channel.
// Assigns the event a fresh id when it has none.
func (c *Client) Publish(ctx context.Context, ev *Event) error {
	if ev.Kind == "" {
		return fmt.Errorf("event kind cannot be empty")
	}
	if ev.Board == 0 {
		return fmt.Errorf("event board cannot be zero")
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	channel := BoardEventsChannel(c.namespace, ev.Board)
	if err := c.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// Subscription is an active Pub/Sub subscription to one board's events.
// Caller must call Close() when done to clean up resources.
type Subscription struct {
	events <-chan *Event
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the channel of board events. It is closed when the
// subscription is closed or the context is cancelled.
func (s *Subscription) Events() <-chan *Event {
	return s.events
}

// Errors returns the channel of subscription errors. Errors are non-fatal;
// the offending message is skipped and the subscription continues.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription. Implements io.Closer. Safe to call multiple
// times.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// Subscribe subscribes to one board's change events. Events are delivered on
// a buffered channel; Redis Pub/Sub is at-most-once, so a subscriber that
// falls far behind may miss events and should re-fetch the board.
func (c *Client) Subscribe(ctx context.Context, boardID int64) (*Subscription, error) {
	channel := BoardEventsChannel(c.namespace, boardID)
	pubsub := c.rdb.Subscribe(ctx, channel)

	eventsChan := make(chan *Event, 10)
	errorsChan := make(chan error, 10)

	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()

		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal board event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- &ev:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancelFunc,
	}, nil
}

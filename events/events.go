package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange    EventType = "balance_change"
	EventTypeBusinessChange   EventType = "business_change"
	EventTypeMuteExpired      EventType = "mute_expired"
	EventTypeQuarantineChange EventType = "quarantine_change"
	EventTypeTriviaAnswer     EventType = "trivia_answer"
	EventTypeTaskCompleted    EventType = "task_completed"
)

// AllEventTypes lists every event type emitted by the services
var AllEventTypes = []EventType{
	EventTypeBalanceChange,
	EventTypeBusinessChange,
	EventTypeMuteExpired,
	EventTypeQuarantineChange,
	EventTypeTriviaAnswer,
	EventTypeTaskCompleted,
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a wallet or bank change that occurred
type BalanceChangeEvent struct {
	UserID    string `json:"user_id"`
	Reason    string `json:"reason"`
	OldWallet int64  `json:"old_wallet"`
	NewWallet int64  `json:"new_wallet"`
	OldBank   int64  `json:"old_bank"`
	NewBank   int64  `json:"new_bank"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// BusinessChangeEvent represents a business lifecycle step
type BusinessChangeEvent struct {
	UserID string `json:"user_id"`
	Action string `json:"action"` // created, collected, upgraded, closed
	Amount int64  `json:"amount"`
	Level  int    `json:"level"`
}

func (e BusinessChangeEvent) Type() EventType {
	return EventTypeBusinessChange
}

// MuteExpiredEvent is emitted when the expiry sweep lifts a mute
type MuteExpiredEvent struct {
	UserID  string `json:"user_id"`
	GuildID string `json:"guild_id"`
}

func (e MuteExpiredEvent) Type() EventType {
	return EventTypeMuteExpired
}

// QuarantineChangeEvent represents a user entering or leaving quarantine
type QuarantineChangeEvent struct {
	GuildID     string `json:"guild_id"`
	UserID      string `json:"user_id"`
	ChannelID   string `json:"channel_id"`
	Quarantined bool   `json:"quarantined"`
}

func (e QuarantineChangeEvent) Type() EventType {
	return EventTypeQuarantineChange
}

// TriviaAnswerEvent represents a correct trivia answer
type TriviaAnswerEvent struct {
	GuildID string `json:"guild_id"`
	UserID  string `json:"user_id"`
	Place   int    `json:"place"`
	Points  int64  `json:"points"`
}

func (e TriviaAnswerEvent) Type() EventType {
	return EventTypeTriviaAnswer
}

// TaskCompletedEvent represents a finished scheduled task run
type TaskCompletedEvent struct {
	TaskName    string `json:"task_name"`
	Affected    int    `json:"affected"`
	TotalAmount int64  `json:"total_amount"`
}

func (e TaskCompletedEvent) Type() EventType {
	return EventTypeTaskCompleted
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking the caller
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds events raised during a state update until it is applied.
// Flushes to the underlying event bus.
type TransactionalBus struct {
	real    *Bus
	pending []Event // stashed until Flush
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits the pending events; called after the update succeeded
func (b *TransactionalBus) Flush(ctx context.Context) {
	if len(b.pending) > 0 {
		log.WithField("pendingEventCount", len(b.pending)).Debug("Flushing pending events")
	}

	// Events are processed independently of the caller's context
	eventCtx := context.Background()
	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard drops pending events; called when the update failed
func (b *TransactionalBus) Discard() {
	b.pending = nil
}

// Pending returns the events waiting to be flushed
func (b *TransactionalBus) Pending() []Event {
	return b.pending
}

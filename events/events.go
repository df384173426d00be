package events

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange   EventType = "balance_change"
	EventTypeLotteryResolved EventType = "lottery_resolved"
	EventTypeLevelPurchased  EventType = "level_purchased"
	EventTypeUserCanceled    EventType = "user_canceled"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that was applied to an
// account, whatever the source (transfer, bet, lottery, penalty).
type BalanceChangeEvent struct {
	UserID     string
	GuildID    string
	Username   string
	NewBalance decimal.Decimal
	Amount     decimal.Decimal
	Initiator  string
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// LotteryResolvedEvent is emitted when a guild's lottery pays out.
type LotteryResolvedEvent struct {
	GuildID  string
	WinnerID string
	Jackpot  decimal.Decimal
}

func (e LotteryResolvedEvent) Type() EventType {
	return EventTypeLotteryResolved
}

// LevelPurchasedEvent is emitted when a user buys the next tier.
type LevelPurchasedEvent struct {
	UserID  string
	GuildID string
	Level   int
}

func (e LevelPurchasedEvent) Type() EventType {
	return EventTypeLevelPurchased
}

// UserCanceledEvent is emitted when a cancel ticket resolves and the
// balance penalty fires.
type UserCanceledEvent struct {
	TicketID string
	TargetID string
	Penalty  decimal.Decimal
}

func (e UserCanceledEvent) Type() EventType {
	return EventTypeUserCanceled
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

	// Handlers run asynchronously to keep the request path unblocked
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

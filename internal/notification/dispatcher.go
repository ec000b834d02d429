// Package notification delivers entry notifications to account holders
// asynchronously. Dispatch runs out of band: it is enqueued only after
// the financial operation committed, and its failure or delay never
// affects the committed state.
package notification

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/corebank/ledger/internal/domain"
)

// Event describes one committed ledger entry to inform the holder about.
type Event struct {
	RecipientEmail string
	Direction      domain.Direction
	AccountNumber  string
	Amount         string
	OccurredAt     time.Time
}

// Sender delivers one event to the holder. Implemented outside the
// core; delivery is at-least-once.
type Sender interface {
	Send(ctx context.Context, event Event) error
}

// AsyncDispatcher queues events and hands them to a Sender from a
// background worker. Enqueue never blocks the caller.
type AsyncDispatcher struct {
	sender Sender
	logger zerolog.Logger
	events chan Event
	done   chan struct{}
}

// NewAsyncDispatcher returns a started dispatcher with the given queue size.
func NewAsyncDispatcher(sender Sender, logger zerolog.Logger, buffer int) *AsyncDispatcher {
	if buffer <= 0 {
		buffer = 256
	}

	d := &AsyncDispatcher{
		sender: sender,
		logger: logger,
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
	}

	go d.run()

	return d
}

// Enqueue queues the event for delivery. When the queue is full the
// event is dropped and logged; a missed notification must never stall
// or fail a committed financial operation.
func (d *AsyncDispatcher) Enqueue(event Event) {
	select {
	case d.events <- event:
	default:
		d.logger.Error().
			Str("account_number", event.AccountNumber).
			Str("direction", string(event.Direction)).
			Msg("notification queue full, event dropped")
	}
}

// Close stops accepting events and waits for the queue to drain.
func (d *AsyncDispatcher) Close() {
	close(d.events)
	<-d.done
}

func (d *AsyncDispatcher) run() {
	defer close(d.done)

	for event := range d.events {
		if err := d.sender.Send(context.Background(), event); err != nil {
			d.logger.Error().Err(err).
				Str("account_number", event.AccountNumber).
				Str("direction", string(event.Direction)).
				Msg("notification delivery failed")
		}
	}
}

// LogSender writes the outbound notification to the log. It stands in
// for the mail relay in environments without one.
type LogSender struct {
	Logger zerolog.Logger
}

// Send logs the event payload.
func (s LogSender) Send(_ context.Context, event Event) error {
	s.Logger.Info().
		Str("recipient", event.RecipientEmail).
		Str("direction", string(event.Direction)).
		Str("account_number", event.AccountNumber).
		Str("amount", event.Amount).
		Time("occurred_at", event.OccurredAt).
		Msg("entry notification")

	return nil
}

package host

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/paystream/ledger/internal/models"
)

// Publisher is the append-only event log. Events are published only after the
// operation that produced them has committed, in commit order.
type Publisher interface {
	Publish(ctx context.Context, event models.Event)
}

// PublishedEvent wraps an event with its log envelope.
type PublishedEvent struct {
	ID    uuid.UUID
	Seq   uint64
	Event models.Event
}

// LogPublisher writes events to the structured log.
type LogPublisher struct {
	logger *slog.Logger

	mu  sync.Mutex
	seq uint64
}

// NewLogPublisher creates a Publisher backed by logger.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event models.Event) {
	p.mu.Lock()
	p.seq++
	seq := p.seq
	p.mu.Unlock()

	p.logger.InfoContext(ctx, "ledger event",
		"event", event.Name(),
		"event_id", uuid.New().String(),
		"seq", seq,
		"payload", event,
	)
}

// MemoryPublisher records events in order for inspection by tests.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []PublishedEvent
}

// NewMemoryPublisher creates an empty MemoryPublisher.
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Publish(_ context.Context, event models.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, PublishedEvent{
		ID:    uuid.New(),
		Seq:   uint64(len(p.events) + 1),
		Event: event,
	})
}

// Events returns a copy of the published events in publish order.
func (p *MemoryPublisher) Events() []PublishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]PublishedEvent, len(p.events))
	copy(out, p.events)
	return out
}

// Last returns the most recently published event, or false when none exist.
func (p *MemoryPublisher) Last() (PublishedEvent, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return PublishedEvent{}, false
	}
	return p.events[len(p.events)-1], true
}

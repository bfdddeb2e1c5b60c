package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrPublish is returned when an event was stored but could not be published
var ErrPublish = errors.New("event stored but not published")

// Event is one entry of the append-only order journal
type Event struct {
	ID            string          `json:"id"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	EventType     string          `json:"event_type"`
	Data          json.RawMessage `json:"data"`
	Timestamp     time.Time       `json:"timestamp"`
	Version       int             `json:"version"`
}

// EventStoreInterface defines the interface for event stores
type EventStoreInterface interface {
	Append(ctx context.Context, aggregateID, aggregateType, eventType string, data any) (*Event, error)
	GetEvents(ctx context.Context, aggregateID string) ([]Event, error)
}

// Publisher forwards stored events to the integration feed
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// EventStore keeps events in memory, used when no database is configured
type EventStore struct {
	mu        sync.RWMutex
	events    map[string][]Event // aggregateID -> events
	publisher Publisher
}

// NewEventStore creates an in-memory store; publisher may be nil
func NewEventStore(publisher Publisher) *EventStore {
	return &EventStore{
		events:    make(map[string][]Event),
		publisher: publisher,
	}
}

// Append stores an event and publishes it
func (es *EventStore) Append(ctx context.Context, aggregateID, aggregateType, eventType string, data any) (*Event, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	es.mu.Lock()
	event := Event{
		ID:            uuid.New().String(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Data:          jsonData,
		Timestamp:     time.Now(),
		Version:       len(es.events[aggregateID]) + 1,
	}
	es.events[aggregateID] = append(es.events[aggregateID], event)
	es.mu.Unlock()

	return publish(ctx, es.publisher, &event)
}

// GetEvents returns all events for an aggregate in version order
func (es *EventStore) GetEvents(ctx context.Context, aggregateID string) ([]Event, error) {
	es.mu.RLock()
	defer es.mu.RUnlock()

	out := make([]Event, len(es.events[aggregateID]))
	copy(out, es.events[aggregateID])
	return out, nil
}

func publish(ctx context.Context, publisher Publisher, event *Event) (*Event, error) {
	if publisher == nil {
		return event, nil
	}
	if err := publisher.Publish(ctx, event.AggregateID, event); err != nil {
		return event, errors.Join(ErrPublish, err)
	}
	return event, nil
}

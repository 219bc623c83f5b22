// Package events publishes content change notifications for downstream consumers
// (search indexers, the public site's cache purger, and so on).
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

const source = "radio-backend"

// Event types
const (
	NewsCreated    = "news.created"
	NewsUpdated    = "news.updated"
	NewsDeleted    = "news.deleted"
	PodcastCreated = "podcast.created"
	PodcastUpdated = "podcast.updated"
	PodcastDeleted = "podcast.deleted"
)

// Event is the message body sent for every content change
type Event struct {
	Type      string      `json:"type"`
	Slug      string      `json:"slug"`
	ID        string      `json:"id,omitempty"`
	Record    interface{} `json:"record,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
}

// Publisher sends events somewhere
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close()
}

// NATSPublisher handles publishing events to NATS
type NATSPublisher struct {
	conn          *nats.Conn
	subjectPrefix string
}

// NewNATSPublisher connects to NATS and returns a publisher
func NewNATSPublisher(url, subjectPrefix string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name(source),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSPublisher{
		conn:          nc,
		subjectPrefix: subjectPrefix,
	}, nil
}

// Close closes the NATS connection
func (np *NATSPublisher) Close() {
	if np.conn != nil {
		np.conn.Close()
	}
}

// Publish sends the event on <prefix>.<type>, e.g. radio.content.news.created
func (np *NATSPublisher) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(stamp(event))
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := np.conn.Publish(Subject(np.subjectPrefix, event.Type), data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}
	return nil
}

// Subject builds the NATS subject for an event type
func Subject(prefix, eventType string) string {
	if prefix == "" {
		return eventType
	}
	return prefix + "." + eventType
}

func stamp(e Event) Event {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	e.Source = source
	e.Version = "1.0"
	return e
}

// Noop discards events. Used when NATS is not configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close()                               {}

// Recorder keeps published events in memory
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, stamp(event))
	return nil
}

func (r *Recorder) Close() {}

// Events returns a copy of everything published so far
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Types returns the published event types in order
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, 0, len(r.events))
	for _, e := range r.events {
		types = append(types, e.Type)
	}
	return types
}

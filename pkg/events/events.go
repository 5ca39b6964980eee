// Package events carries session output from the SSH layer to whoever is
// watching: an in-process subscriber, a websocket bus, or nothing at all.
package events

import (
	"errors"
	"time"
)

type Kind string

const (
	KindStdout Kind = "stdout"
	KindStderr Kind = "stderr"
	KindMeta   Kind = "meta"
)

// StreamEvent is one chunk of session output or a lifecycle notice.
type StreamEvent struct {
	SessionID string    `json:"sessionId"`
	Kind      Kind      `json:"kind"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

func New(sessionID string, kind Kind, text string) StreamEvent {
	return StreamEvent{
		SessionID: sessionID,
		Kind:      kind,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}
}

// Publisher delivers events. Callers log failures and carry on.
type Publisher interface {
	Publish(ev StreamEvent) error
}

type PublisherFunc func(ev StreamEvent) error

func (f PublisherFunc) Publish(ev StreamEvent) error { return f(ev) }

type discard struct{}

func (discard) Publish(StreamEvent) error { return nil }

// Discard drops every event.
var Discard Publisher = discard{}

type multi []Publisher

func (m multi) Publish(ev StreamEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Multi publishes to every non-nil publisher and joins their errors.
func Multi(publishers ...Publisher) Publisher {
	out := make(multi, 0, len(publishers))
	for _, p := range publishers {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

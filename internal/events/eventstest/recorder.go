// Package eventstest provides a publisher double that keeps what it is sent.
package eventstest

import (
	"context"
	"encoding/json"

	"github.com/fekuna/omnipos-stockflow-service/internal/events"
)

// Recorder keeps every published envelope in memory.
type Recorder struct {
	Messages []events.Envelope
}

func (r *Recorder) Publish(_ context.Context, _ string, value []byte) error {
	var env events.Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		return err
	}
	r.Messages = append(r.Messages, env)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Types returns the event types in publish order.
func (r *Recorder) Types() []string {
	out := make([]string, 0, len(r.Messages))
	for _, m := range r.Messages {
		out = append(out, m.EventType)
	}
	return out
}

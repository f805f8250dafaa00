// Package eventlog defines the narrow contract the adjudicator uses
// to emit Funded/Disputed/Concluded events, and an in-memory
// implementation. Event delivery is advisory: the registry, not the
// event log, is authoritative, so the adjudicator never rolls back a
// state change because an event failed to record (spec.md §4.6).
package eventlog

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/perun-network/icp-adjudicator-go/chanenc"
	"github.com/perun-network/icp-adjudicator-go/chantypes"
)

// Kind enumerates the three event types the adjudicator emits.
type Kind int

const (
	// Funded is emitted after a successful deposit credits holdings.
	Funded Kind = iota
	// Disputed is emitted after a successful dispute.
	Disputed
	// Concluded is emitted after a successful conclude.
	Concluded
)

func (k Kind) String() string {
	switch k {
	case Funded:
		return "Funded"
	case Disputed:
		return "Disputed"
	case Concluded:
		return "Concluded"
	default:
		return "Unknown"
	}
}

// Event is a single emitted event. Exactly one of Who/Total (for
// Funded) or State (for Disputed/Concluded) is populated, matching
// the Kind.
type Event struct {
	Kind      Kind
	Channel   chantypes.ChannelId
	Timestamp time.Time

	// Populated for Funded.
	Who   chanenc.L2Account
	Total chantypes.Amount

	// Populated for Disputed and Concluded.
	State chantypes.State
}

// Log is the capability the adjudicator core depends on to record
// events. Implementations may deliver locally or remotely; they must
// not block the caller on slow delivery for longer than they can
// help, and a delivery failure is surfaced as an error but never
// un-does the adjudicator's state change.
type Log interface {
	// RegisterEvent records ev. now is passed explicitly so
	// implementations never need their own clock.
	RegisterEvent(now time.Time, ev Event) error

	// Events returns every event recorded for channel with a
	// Timestamp strictly after since, in timestamp order.
	Events(channel chantypes.ChannelId, since time.Time) ([]Event, error)
}

// InMemory is a Log that appends to an in-memory map keyed by
// channel, the simplest of the two delivery shapes spec.md §4.6
// allows (the other being an inter-service call; see apiserver for a
// remote-facing read path over the same data).
type InMemory struct {
	mu     sync.RWMutex
	events map[chantypes.ChannelId][]Event
}

// NewInMemory returns an empty InMemory event log.
func NewInMemory() *InMemory {
	return &InMemory{events: make(map[chantypes.ChannelId][]Event)}
}

// RegisterEvent implements Log.
func (l *InMemory) RegisterEvent(now time.Time, ev Event) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = now
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events[ev.Channel] = append(l.events[ev.Channel], ev)
	return nil
}

// Events implements Log. since is exclusive: only events strictly
// after it are returned.
func (l *InMemory) Events(channel chantypes.ChannelId, since time.Time) ([]Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	all := l.events[channel]
	out := make([]Event, 0, len(all))
	for _, ev := range all {
		if ev.Timestamp.After(since) {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

// FailingLog is a Log that always fails RegisterEvent, for exercising
// the event-delivery failure path (spec.md §8, event-emission failure
// policy).
type FailingLog struct {
	Err error
}

// RegisterEvent implements Log by always failing.
func (f FailingLog) RegisterEvent(time.Time, Event) error {
	if f.Err != nil {
		return f.Err
	}
	return fmt.Errorf("eventlog: delivery failed")
}

// Events implements Log by always returning no events.
func (f FailingLog) Events(chantypes.ChannelId, time.Time) ([]Event, error) {
	return nil, nil
}

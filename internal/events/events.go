// Package events carries ledger changes to interested sinks after they are
// committed. Payloads use primitive fields only so any sink can serialize them.
package events

import (
	"context"
	"errors"
	"time"
)

// Type names a ledger change
type Type string

const (
	ExpenseCreated     Type = "expense.created"
	ExpenseDeleted     Type = "expense.deleted"
	SettlementRecorded Type = "settlement.recorded"
	SettlementDeleted  Type = "settlement.deleted"
)

// Event describes one committed ledger change. Amounts are minor units of
// Currency.
type Event struct {
	Type         Type             `json:"type"`
	GroupID      string           `json:"group_id"`
	GroupName    string           `json:"group_name"`
	EntityID     string           `json:"entity_id"`
	ActorID      string           `json:"actor_id"`
	ActorName    string           `json:"actor_name"`
	Counterparty string           `json:"counterparty,omitempty"`
	Description  string           `json:"description,omitempty"`
	Currency     string           `json:"currency"`
	Amount       int64            `json:"amount"`
	Shares       map[string]int64 `json:"shares,omitempty"`
	OccurredAt   time.Time        `json:"occurred_at"`
}

// Publisher delivers events to a sink
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Nop discards every event
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Multi fans an event out to several publishers. Every publisher is tried;
// the failures are joined.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder keeps published events in memory. Tests use it to assert on what
// a service emitted.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.Events = append(r.Events, event)
	return nil
}

// Types returns the recorded event types in order.
func (r *Recorder) Types() []Type {
	out := make([]Type, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Type
	}
	return out
}

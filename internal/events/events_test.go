package events

import (
	"context"
	"errors"
	"testing"
)

type failing struct{ err error }

func (f failing) Publish(context.Context, Event) error { return f.err }

func TestMultiPublishesToAll(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	boom := errors.New("boom")
	m := Multi{a, failing{err: boom}, b}

	err := m.Publish(context.Background(), Event{Type: ExpenseCreated, GroupID: "g1"})
	if !errors.Is(err, boom) {
		t.Fatalf("Publish() error = %v, want boom", err)
	}
	if len(a.Events) != 1 || len(b.Events) != 1 {
		t.Fatalf("recorded %d and %d events, want 1 each", len(a.Events), len(b.Events))
	}
	if got := b.Types(); got[0] != ExpenseCreated {
		t.Errorf("Types() = %v", got)
	}
}

func TestNop(t *testing.T) {
	if err := (Nop{}).Publish(context.Background(), Event{}); err != nil {
		t.Fatalf("Nop.Publish() error = %v", err)
	}
	if err := (Multi{}).Publish(context.Background(), Event{}); err != nil {
		t.Fatalf("empty Multi.Publish() error = %v", err)
	}
}

package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/fkhayef/groupledger/internal/events"
)

type fakeWriter struct {
	messages []kafka.Message
	closed   bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestPublishKeysByGroup(t *testing.T) {
	w := &fakeWriter{}
	p := &Publisher{writer: w}

	ev := events.Event{
		Type:       events.ExpenseCreated,
		GroupID:    "g1",
		EntityID:   "e1",
		Amount:     1000,
		Shares:     map[string]int64{"a": 334, "b": 333, "c": 333},
		OccurredAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	if err := p.Publish(context.Background(), ev); err != nil {
		t.Fatalf("Publish() error: %v", err)
	}

	if len(w.messages) != 1 {
		t.Fatalf("wrote %d messages, want 1", len(w.messages))
	}
	msg := w.messages[0]
	if string(msg.Key) != "g1" {
		t.Errorf("key = %q, want g1", msg.Key)
	}
	if string(msg.Headers[0].Value) != string(events.ExpenseCreated) {
		t.Errorf("type header = %q", msg.Headers[0].Value)
	}

	var decoded events.Event
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("message is not JSON: %v", err)
	}
	if decoded.Shares["a"] != 334 || decoded.Amount != 1000 {
		t.Errorf("decoded = %+v", decoded)
	}

	if err := p.Close(); err != nil || !w.closed {
		t.Errorf("Close() = %v, closed = %v", err, w.closed)
	}
}

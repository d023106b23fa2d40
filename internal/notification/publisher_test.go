package notification_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fkhayef/groupledger/internal/events"
	"github.com/fkhayef/groupledger/internal/notification"
	"github.com/fkhayef/groupledger/internal/storage/memory"
)

func expenseEvent(t events.Type) events.Event {
	return events.Event{
		Type:        t,
		GroupID:     "g1",
		GroupName:   "Trip",
		EntityID:    "e1",
		ActorID:     "A",
		ActorName:   "Ann",
		Description: "Dinner",
		Currency:    "USD",
		Amount:      1000,
		Shares:      map[string]int64{"A": 334, "B": 333, "C": 333, "D": 0},
		OccurredAt:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestPublishExpenseCreated(t *testing.T) {
	ctx := context.Background()
	svc := notification.NewService(memory.NewStore())
	p := notification.NewPublisher(svc)

	if err := p.Publish(ctx, expenseEvent(events.ExpenseCreated)); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	for _, tt := range []struct {
		member string
		want   int
	}{
		{member: "A", want: 0},
		{member: "B", want: 1},
		{member: "C", want: 1},
		{member: "D", want: 0},
	} {
		got, err := svc.GetUnreadCount(ctx, tt.member)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("unread for %s = %d, want %d", tt.member, got, tt.want)
		}
	}

	list, _, err := svc.ListByRecipientID(ctx, "B", 1, 20, false)
	if err != nil {
		t.Fatal(err)
	}
	n := list[0]
	if n.Type != notification.TypeExpenseAdded || n.GroupID != "g1" || *n.RelatedEntityID != "e1" {
		t.Errorf("notification = %+v", n)
	}
	if !strings.Contains(n.Message, "3.33 USD") || !strings.Contains(n.Message, "Ann") {
		t.Errorf("message = %q", n.Message)
	}
}

func TestPublishExpenseDeleted(t *testing.T) {
	ctx := context.Background()
	svc := notification.NewService(memory.NewStore())

	if err := notification.NewPublisher(svc).Publish(ctx, expenseEvent(events.ExpenseDeleted)); err != nil {
		t.Fatal(err)
	}

	list, total, _ := svc.ListByRecipientID(ctx, "C", 1, 20, false)
	if total != 1 || list[0].Type != notification.TypeExpenseRemoved || !strings.Contains(list[0].Message, "10.00 USD") {
		t.Errorf("notifications for C = %+v", list)
	}
}

func TestPublishSettlement(t *testing.T) {
	ctx := context.Background()
	svc := notification.NewService(memory.NewStore())
	p := notification.NewPublisher(svc)

	ev := events.Event{
		Type:         events.SettlementRecorded,
		GroupID:      "g1",
		GroupName:    "Trip",
		EntityID:     "s1",
		ActorID:      "A",
		ActorName:    "Ann",
		Counterparty: "B",
		Currency:     "JPY",
		Amount:       500,
	}
	if err := p.Publish(ctx, ev); err != nil {
		t.Fatal(err)
	}
	ev.Type = events.SettlementDeleted
	if err := p.Publish(ctx, ev); err != nil {
		t.Fatal(err)
	}

	list, total, _ := svc.ListByRecipientID(ctx, "B", 1, 20, false)
	if total != 2 {
		t.Fatalf("got %d notifications for B, want 2", total)
	}
	for _, n := range list {
		if !strings.Contains(n.Message, "500 JPY") {
			t.Errorf("message = %q", n.Message)
		}
	}
	if n, _ := svc.GetUnreadCount(ctx, "A"); n != 0 {
		t.Errorf("actor received %d notifications", n)
	}
}

func TestPublishIgnoresUnknownTypes(t *testing.T) {
	svc := notification.NewService(memory.NewStore())
	if err := notification.NewPublisher(svc).Publish(context.Background(), events.Event{Type: "group.renamed"}); err != nil {
		t.Errorf("Publish: %v", err)
	}
}

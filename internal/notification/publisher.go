package notification

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/fkhayef/groupledger/internal/events"
	"github.com/fkhayef/groupledger/internal/money"
	"github.com/fkhayef/groupledger/pkg/amount"
)

// Publisher turns committed ledger events into inbox notifications for the
// members they affect. The actor of an event is never notified.
type Publisher struct {
	service *Service
}

// NewPublisher creates an events.Publisher backed by service
func NewPublisher(service *Service) *Publisher {
	return &Publisher{service: service}
}

// Publish implements events.Publisher
func (p *Publisher) Publish(ctx context.Context, ev events.Event) error {
	switch ev.Type {
	case events.ExpenseCreated:
		return p.expenseCreated(ctx, ev)
	case events.ExpenseDeleted:
		return p.expenseDeleted(ctx, ev)
	case events.SettlementRecorded:
		msg := fmt.Sprintf("%s paid you %s in %s", ev.ActorName, format(ev.Amount, ev.Currency), ev.GroupName)
		return p.notify(ctx, ev.Counterparty, ev, TypeSettlement, EntitySettlement, msg)
	case events.SettlementDeleted:
		msg := fmt.Sprintf("%s removed a %s payment to you in %s", ev.ActorName, format(ev.Amount, ev.Currency), ev.GroupName)
		return p.notify(ctx, ev.Counterparty, ev, TypeSettlementRemoved, EntitySettlement, msg)
	default:
		return nil
	}
}

func (p *Publisher) expenseCreated(ctx context.Context, ev events.Event) error {
	var errs []error
	for _, id := range recipients(ev) {
		msg := fmt.Sprintf("%s added %q in %s: your share is %s",
			ev.ActorName, ev.Description, ev.GroupName, format(ev.Shares[id], ev.Currency))
		if err := p.notify(ctx, id, ev, TypeExpenseAdded, EntityExpense, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Publisher) expenseDeleted(ctx context.Context, ev events.Event) error {
	var errs []error
	for _, id := range recipients(ev) {
		msg := fmt.Sprintf("%s removed %q (%s) in %s",
			ev.ActorName, ev.Description, format(ev.Amount, ev.Currency), ev.GroupName)
		if err := p.notify(ctx, id, ev, TypeExpenseRemoved, EntityExpense, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Publisher) notify(ctx context.Context, recipientID string, ev events.Event, t Type, entityType, msg string) error {
	if recipientID == "" || recipientID == ev.ActorID {
		return nil
	}
	if _, err := p.service.Create(ctx, recipientID, ev.GroupID, t, msg, entityType, ev.EntityID); err != nil {
		return fmt.Errorf("failed to notify %s: %w", recipientID, err)
	}
	return nil
}

// recipients returns the members with a non-zero share, in id order
func recipients(ev events.Event) []string {
	ids := make([]string, 0, len(ev.Shares))
	for id, share := range ev.Shares {
		if share != 0 && id != ev.ActorID {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

func format(minor int64, currency string) string {
	return amount.Format(money.New(minor), currency) + " " + currency
}

var _ events.Publisher = (*Publisher)(nil)

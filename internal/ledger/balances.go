package ledger

import (
	"fmt"

	"github.com/fkhayef/groupledger/internal/expense/split"
	"github.com/fkhayef/groupledger/internal/money"
)

// Allocator derives the per-member shares of an expense. *split.Factory
// implements it.
type Allocator interface {
	Allocate(method split.Method, amount money.Money, weights split.Weights, members []string) (split.Allocation, error)
}

// ComputeBalances folds expenses and settlements into a net balance for every
// member. The payer of an expense is credited the full amount and every
// participant, the payer included, is debited their share. A settlement
// credits the sender and debits the receiver. Records are folded
// independently, so the result does not depend on their order.
func ComputeBalances(alloc Allocator, members []string, expenses []*Expense, settlements []*Settlement) (Balances, error) {
	balances := make(Balances, len(members))
	for _, id := range members {
		balances[id] = money.Zero
	}

	for _, e := range expenses {
		if _, ok := balances[e.PayerID]; !ok {
			return nil, fmt.Errorf("%w: expense %s payer %s", ErrUnknownMember, e.ID, e.PayerID)
		}

		shares, err := alloc.Allocate(e.Method, e.Amount, e.Weights, members)
		if err != nil {
			return nil, fmt.Errorf("failed to allocate expense %s: %w", e.ID, err)
		}
		if !shares.Total().Equal(e.Amount) {
			return nil, fmt.Errorf("%w: expense %s allocated %s of %s", ErrInvalidSplit, e.ID, shares.Total(), e.Amount)
		}

		balances[e.PayerID] = balances[e.PayerID].Add(e.Amount)
		for id, share := range shares {
			if _, ok := balances[id]; !ok {
				return nil, fmt.Errorf("%w: expense %s participant %s", ErrUnknownMember, e.ID, id)
			}
			balances[id] = balances[id].Sub(share)
		}
	}

	for _, s := range settlements {
		if _, ok := balances[s.FromID]; !ok {
			return nil, fmt.Errorf("%w: settlement %s from %s", ErrUnknownMember, s.ID, s.FromID)
		}
		if _, ok := balances[s.ToID]; !ok {
			return nil, fmt.Errorf("%w: settlement %s to %s", ErrUnknownMember, s.ID, s.ToID)
		}
		balances[s.FromID] = balances[s.FromID].Add(s.Amount)
		balances[s.ToID] = balances[s.ToID].Sub(s.Amount)
	}

	return balances, nil
}

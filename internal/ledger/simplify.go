package ledger

import (
	"fmt"
	"slices"
	"strings"

	"github.com/fkhayef/groupledger/internal/money"
)

type party struct {
	id     string
	amount money.Money // always positive
}

// byAmountDesc orders parties by amount, largest first, then by id.
func byAmountDesc(a, b party) int {
	if c := b.amount.Cmp(a.amount); c != 0 {
		return c
	}
	return strings.Compare(a.id, b.id)
}

// Simplify reduces balances to a list of pairwise transfers that zeroes all
// of them. It repeatedly matches the largest creditor with the largest
// debtor, moving the smaller of the two amounts, and re-sorts after every
// transfer. Ties are broken by member id, so equal inputs always give the
// same list. The result never holds a zero transfer and has at most one
// fewer entry than there are non-zero balances.
func Simplify(balances Balances) ([]Transfer, error) {
	if total := balances.Sum(); !total.IsZero() {
		return nil, fmt.Errorf("%w: sum is %s", ErrUnbalanced, total)
	}

	var creditors, debtors []party
	for id, b := range balances {
		switch {
		case b.IsPositive():
			creditors = append(creditors, party{id: id, amount: b})
		case b.IsNegative():
			debtors = append(debtors, party{id: id, amount: b.Neg()})
		}
	}

	transfers := make([]Transfer, 0)
	for len(creditors) > 0 && len(debtors) > 0 {
		slices.SortFunc(creditors, byAmountDesc)
		slices.SortFunc(debtors, byAmountDesc)

		c, d := &creditors[0], &debtors[0]
		t := money.Min(c.amount, d.amount)
		transfers = append(transfers, Transfer{From: d.id, To: c.id, Amount: t})

		c.amount = c.amount.Sub(t)
		d.amount = d.amount.Sub(t)
		if c.amount.IsZero() {
			creditors = creditors[1:]
		}
		if d.amount.IsZero() {
			debtors = debtors[1:]
		}
	}

	return transfers, nil
}

// PositionOf extracts one member's owes / owed-by view from a transfer list.
func PositionOf(memberID string, balances Balances, transfers []Transfer) *Position {
	p := &Position{
		MemberID: memberID,
		Balance:  balances[memberID],
		Owes:     make([]Transfer, 0),
		OwedBy:   make([]Transfer, 0),
	}
	for _, t := range transfers {
		switch memberID {
		case t.From:
			p.Owes = append(p.Owes, t)
		case t.To:
			p.OwedBy = append(p.OwedBy, t)
		}
	}
	return p
}

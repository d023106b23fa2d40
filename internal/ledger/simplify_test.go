package ledger

import (
	"errors"
	"slices"
	"testing"

	"github.com/fkhayef/groupledger/internal/money"
)

func balancesOf(values map[string]int64) Balances {
	b := make(Balances, len(values))
	for id, v := range values {
		b[id] = money.New(v)
	}
	return b
}

func applyTransfers(b Balances, transfers []Transfer) Balances {
	out := b.Clone()
	for _, t := range transfers {
		out[t.From] = out[t.From].Add(t.Amount)
		out[t.To] = out[t.To].Sub(t.Amount)
	}
	return out
}

func TestSimplifyTriangle(t *testing.T) {
	got, err := Simplify(balancesOf(map[string]int64{"A": 500, "B": 300, "C": -800}))
	if err != nil {
		t.Fatalf("Simplify: %v", err)
	}

	want := []Transfer{
		{From: "C", To: "A", Amount: money.New(500)},
		{From: "C", To: "B", Amount: money.New(300)},
	}
	if !slices.Equal(got, want) {
		t.Errorf("Simplify = %v, want %v", got, want)
	}
}

func TestSimplifyProperties(t *testing.T) {
	tests := []struct {
		name     string
		balances map[string]int64
	}{
		{name: "all settled", balances: map[string]int64{"A": 0, "B": 0}},
		{name: "one pair", balances: map[string]int64{"A": 1000, "B": -1000}},
		{name: "one creditor many debtors", balances: map[string]int64{"A": 666, "B": -333, "C": -333}},
		{name: "many creditors one debtor", balances: map[string]int64{"A": 1, "B": 2, "C": 3, "D": -6}},
		{name: "chain", balances: map[string]int64{"A": 700, "B": -200, "C": 150, "D": -650}},
		{name: "ties", balances: map[string]int64{"a": 100, "b": 100, "c": -100, "d": -100}},
		{name: "large", balances: map[string]int64{"A": 1 << 50, "B": -(1 << 49), "C": -(1 << 49)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := balancesOf(tt.balances)
			transfers, err := Simplify(b)
			if err != nil {
				t.Fatalf("Simplify: %v", err)
			}

			for id, v := range applyTransfers(b, transfers) {
				if !v.IsZero() {
					t.Errorf("balance of %s after transfers = %s", id, v)
				}
			}

			nonzero := 0
			for _, v := range b {
				if !v.IsZero() {
					nonzero++
				}
			}
			if nonzero > 0 && len(transfers) > nonzero-1 {
				t.Errorf("got %d transfers for %d non-zero balances", len(transfers), nonzero)
			}
			for _, tr := range transfers {
				if !tr.Amount.IsPositive() {
					t.Errorf("transfer %v is not positive", tr)
				}
				if tr.From == tr.To {
					t.Errorf("transfer %v is a self transfer", tr)
				}
			}
		})
	}
}

func TestSimplifyDeterministic(t *testing.T) {
	values := map[string]int64{"a": 100, "b": 100, "c": -50, "d": -50, "e": -100}
	first, err := Simplify(balancesOf(values))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		got, err := Simplify(balancesOf(values))
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(got, first) {
			t.Fatalf("run %d = %v, want %v", i, got, first)
		}
	}
}

func TestSimplifyEmpty(t *testing.T) {
	got, err := Simplify(Balances{})
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Simplify(empty) = %#v, want empty non-nil slice", got)
	}
}

func TestSimplifyUnbalanced(t *testing.T) {
	_, err := Simplify(balancesOf(map[string]int64{"A": 500, "B": -499}))
	if !errors.Is(err, ErrUnbalanced) {
		t.Errorf("err = %v, want ErrUnbalanced", err)
	}
}

func TestPositionOf(t *testing.T) {
	b := balancesOf(map[string]int64{"A": 500, "B": 300, "C": -800})
	transfers, _ := Simplify(b)

	c := PositionOf("C", b, transfers)
	if c.Balance.Minor() != -800 || len(c.Owes) != 2 || len(c.OwedBy) != 0 {
		t.Errorf("position of C = %+v", c)
	}

	a := PositionOf("A", b, transfers)
	if a.Balance.Minor() != 500 || len(a.Owes) != 0 || len(a.OwedBy) != 1 || a.OwedBy[0].From != "C" {
		t.Errorf("position of A = %+v", a)
	}

	none := PositionOf("Z", b, transfers)
	if !none.Balance.IsZero() || none.Owes == nil || none.OwedBy == nil {
		t.Errorf("position of unknown member = %+v", none)
	}
}

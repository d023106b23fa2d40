package ledger

import (
	"slices"
	"time"

	"github.com/fkhayef/groupledger/internal/expense/split"
	"github.com/fkhayef/groupledger/internal/money"
)

// Expense is a recorded shared cost. It is never edited in place; a
// correction deletes it and records a replacement.
type Expense struct {
	ID          string
	GroupID     string
	Description string
	Amount      money.Money
	PayerID     string
	Date        time.Time
	Method      split.Method
	Weights     split.Weights
	CreatedAt   time.Time
}

// Settlement is a real-world payment from one member to another
type Settlement struct {
	ID        string
	GroupID   string
	FromID    string
	ToID      string
	Amount    money.Money
	Date      time.Time
	Notes     string
	CreatedAt time.Time
}

// NewExpense holds the caller input for AddExpense and ReplaceExpense
type NewExpense struct {
	GroupID     string
	Description string
	PayerID     string
	Amount      money.Money
	Date        time.Time
	Method      split.Method
	Weights     split.Weights
}

// NewSettlement holds the caller input for RecordSettlement
type NewSettlement struct {
	GroupID string
	FromID  string
	ToID    string
	Amount  money.Money
	Date    time.Time
	Notes   string
}

// Member is a weak reference to a person known to the group directory
type Member struct {
	ID          string
	DisplayName string
}

// Roster is the directory's view of a group at one point in time
type Roster struct {
	GroupID  string
	Name     string
	Currency string
	Members  []Member
}

// MemberIDs returns the member ids in ascending order.
func (r *Roster) MemberIDs() []string {
	ids := make([]string, len(r.Members))
	for i, m := range r.Members {
		ids[i] = m.ID
	}
	slices.Sort(ids)
	return ids
}

// Has reports whether id is a member of the group.
func (r *Roster) Has(id string) bool {
	for _, m := range r.Members {
		if m.ID == id {
			return true
		}
	}
	return false
}

// DisplayName returns the member's display name, or the id when unknown.
func (r *Roster) DisplayName(id string) string {
	for _, m := range r.Members {
		if m.ID == id {
			if m.DisplayName != "" {
				return m.DisplayName
			}
			break
		}
	}
	return id
}

// Balances is every member's signed net position. Positive means the group
// owes the member.
type Balances map[string]money.Money

// MemberIDs returns the ids in ascending order.
func (b Balances) MemberIDs() []string {
	ids := make([]string, 0, len(b))
	for id := range b {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Sum adds every balance. It is zero for any accumulator output.
func (b Balances) Sum() money.Money {
	total := money.Zero
	for _, v := range b {
		total = total.Add(v)
	}
	return total
}

func (b Balances) Clone() Balances {
	out := make(Balances, len(b))
	for id, v := range b {
		out[id] = v
	}
	return out
}

// Transfer is one simplified debt: From pays To the Amount.
type Transfer struct {
	From   string
	To     string
	Amount money.Money
}

// Position is one member's view of the simplified debts
type Position struct {
	MemberID string
	Balance  money.Money
	Owes     []Transfer
	OwedBy   []Transfer
}

package ledger

import "context"

// ExpenseStore persists expenses. Getters return nil, nil when the record
// does not exist. Writes must be serialized per group by the implementation
// as well as by the service, and must fail with ErrUnknownMember if the
// payer or a participant is no longer in the group when the write commits.
type ExpenseStore interface {
	ListExpenses(ctx context.Context, groupID string) ([]*Expense, error)
	GetExpense(ctx context.Context, id string) (*Expense, error)
	SaveExpense(ctx context.Context, e *Expense) error
	DeleteExpense(ctx context.Context, id string) error
	// ReplaceExpense deletes oldID and saves e atomically
	ReplaceExpense(ctx context.Context, oldID string, e *Expense) error
	// CountMemberExpenses counts the expenses that reference memberID as
	// payer or participant
	CountMemberExpenses(ctx context.Context, groupID, memberID string) (int, error)
}

// SettlementStore persists settlements under the same rules as ExpenseStore
type SettlementStore interface {
	ListSettlements(ctx context.Context, groupID string) ([]*Settlement, error)
	GetSettlement(ctx context.Context, id string) (*Settlement, error)
	SaveSettlement(ctx context.Context, s *Settlement) error
	DeleteSettlement(ctx context.Context, id string) error
	CountMemberSettlements(ctx context.Context, groupID, memberID string) (int, error)
}

// Directory supplies the member set of a group. Roster returns nil, nil
// when the group does not exist.
type Directory interface {
	Roster(ctx context.Context, groupID string) (*Roster, error)
}

package expense

import (
	"context"

	"github.com/fkhayef/groupledger/internal/ledger"
	"github.com/fkhayef/groupledger/pkg/response"
)

// Service translates expense requests in major units into ledger calls and
// assembles the read views
type Service struct {
	ledger *ledger.Service
}

// NewService creates a new expense service
func NewService(l *ledger.Service) *Service {
	return &Service{ledger: l}
}

// CreateExpense records a new expense in the request's group
func (s *Service) CreateExpense(ctx context.Context, req *CreateExpenseRequest) (*Detail, error) {
	roster, err := s.ledger.Roster(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}
	in, err := req.toNewExpense(roster.GroupID, roster.Currency)
	if err != nil {
		return nil, err
	}

	e, err := s.ledger.AddExpense(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.detail(e, roster)
}

// ReplaceExpense corrects an expense. The replacement gets a new id.
func (s *Service) ReplaceExpense(ctx context.Context, id string, req *UpdateExpenseRequest) (*Detail, error) {
	existing, err := s.ledger.GetExpense(ctx, id)
	if err != nil {
		return nil, err
	}
	roster, err := s.ledger.Roster(ctx, existing.GroupID)
	if err != nil {
		return nil, err
	}
	in, err := req.toNewExpense(roster.GroupID, roster.Currency)
	if err != nil {
		return nil, err
	}

	e, err := s.ledger.ReplaceExpense(ctx, id, in)
	if err != nil {
		return nil, err
	}
	return s.detail(e, roster)
}

// GetExpenseByID retrieves an expense with its shares
func (s *Service) GetExpenseByID(ctx context.Context, id string) (*Detail, error) {
	e, err := s.ledger.GetExpense(ctx, id)
	if err != nil {
		return nil, err
	}
	roster, err := s.ledger.Roster(ctx, e.GroupID)
	if err != nil {
		return nil, err
	}
	return s.detail(e, roster)
}

// ListByGroup returns one page of a group's expenses, newest first
func (s *Service) ListByGroup(ctx context.Context, groupID string, page, perPage int) ([]*Detail, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	roster, err := s.ledger.Roster(ctx, groupID)
	if err != nil {
		return nil, 0, err
	}
	all, err := s.ledger.ListExpenses(ctx, groupID)
	if err != nil {
		return nil, 0, err
	}

	total := len(all)
	start := min(response.Offset(page, perPage), total)
	end := min(start+perPage, total)

	details := make([]*Detail, 0, end-start)
	for _, e := range all[start:end] {
		d, err := s.detail(e, roster)
		if err != nil {
			return nil, 0, err
		}
		details = append(details, d)
	}
	return details, total, nil
}

// DeleteExpense removes an expense
func (s *Service) DeleteExpense(ctx context.Context, id string) error {
	return s.ledger.DeleteExpense(ctx, id)
}

func (s *Service) detail(e *ledger.Expense, roster *ledger.Roster) (*Detail, error) {
	shares, err := s.ledger.Shares(e, roster)
	if err != nil {
		return nil, err
	}
	return &Detail{Expense: e, Shares: shares, Roster: roster}, nil
}

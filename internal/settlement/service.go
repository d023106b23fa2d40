package settlement

import (
	"context"

	"github.com/fkhayef/groupledger/internal/ledger"
	"github.com/fkhayef/groupledger/pkg/response"
)

// Service translates settlement requests into ledger calls
type Service struct {
	ledger *ledger.Service
}

// NewService creates a new settlement service
func NewService(l *ledger.Service) *Service {
	return &Service{ledger: l}
}

// CreateSettlement records a payment between two members of a group
func (s *Service) CreateSettlement(ctx context.Context, req *CreateSettlementRequest) (*Detail, error) {
	roster, err := s.ledger.Roster(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}
	in, err := req.toNewSettlement(roster.Currency)
	if err != nil {
		return nil, err
	}

	st, err := s.ledger.RecordSettlement(ctx, in)
	if err != nil {
		return nil, err
	}
	return &Detail{Settlement: st, Roster: roster}, nil
}

// GetByID retrieves a settlement by its ID
func (s *Service) GetByID(ctx context.Context, id string) (*Detail, error) {
	st, err := s.ledger.GetSettlement(ctx, id)
	if err != nil {
		return nil, err
	}
	roster, err := s.ledger.Roster(ctx, st.GroupID)
	if err != nil {
		return nil, err
	}
	return &Detail{Settlement: st, Roster: roster}, nil
}

// ListByGroup returns one page of a group's settlements, newest first
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
	all, err := s.ledger.ListSettlements(ctx, groupID)
	if err != nil {
		return nil, 0, err
	}

	total := len(all)
	start := min(response.Offset(page, perPage), total)
	end := min(start+perPage, total)

	details := make([]*Detail, 0, end-start)
	for _, st := range all[start:end] {
		details = append(details, &Detail{Settlement: st, Roster: roster})
	}
	return details, total, nil
}

// Delete removes a settlement
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.ledger.DeleteSettlement(ctx, id)
}

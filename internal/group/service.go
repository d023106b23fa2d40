package group

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fkhayef/groupledger/internal/ledger"
	"github.com/fkhayef/groupledger/pkg/amount"
	"github.com/fkhayef/groupledger/pkg/response"
)

// Common errors
var (
	ErrGroupNotFound     = errors.New("group not found")
	ErrMemberNotFound    = errors.New("member not found")
	ErrMemberExists      = errors.New("member already belongs to this group")
	ErrInvalidName       = errors.New("name is required")
	ErrInvalidCurrency   = errors.New("currency must be an ISO-4217 code")
	ErrCurrencyFixed     = errors.New("currency cannot change after the group is created")
	ErrNoMembers         = errors.New("a group needs at least one member")
	ErrMemberHasActivity = ledger.ErrMemberHasActivity
)

// ActivityGuard serializes member removal with the group's ledger writes
type ActivityGuard interface {
	RemoveIfInactive(ctx context.Context, groupID, memberID string, remove func(context.Context) error) error
}

// Service handles group business logic
type Service struct {
	store Store
	guard ActivityGuard
	now   func() time.Time
	newID func() string
}

// NewService creates a new group service
func NewService(store Store) *Service {
	return &Service{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// SetActivityGuard wires the ledger check used by RemoveMember. The ledger
// service depends on this service as its directory, so the guard is set
// after both exist.
func (s *Service) SetActivityGuard(g ActivityGuard) {
	s.guard = g
}

// Create creates a new group with its initial members
func (s *Service) Create(ctx context.Context, req *CreateGroupRequest) (*Group, []*Member, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, nil, ErrInvalidName
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if !amount.ValidCurrency(currency) {
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidCurrency, req.Currency)
	}
	if len(req.Members) == 0 {
		return nil, nil, ErrNoMembers
	}

	now := s.now().UTC()
	g := &Group{
		ID:          s.newID(),
		Name:        name,
		Description: req.Description,
		Currency:    currency,
		CreatedAt:   now,
	}

	seen := make(map[string]bool, len(req.Members))
	members := make([]*Member, 0, len(req.Members))
	for _, m := range req.Members {
		member, err := s.newMember(g.ID, m, now)
		if err != nil {
			return nil, nil, err
		}
		if seen[member.ID] {
			return nil, nil, fmt.Errorf("%w: %s", ErrMemberExists, member.ID)
		}
		seen[member.ID] = true
		members = append(members, member)
	}

	if err := s.store.CreateGroup(ctx, g, members); err != nil {
		return nil, nil, err
	}
	return g, members, nil
}

func (s *Service) newMember(groupID string, req *AddMemberRequest, at time.Time) (*Member, error) {
	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		return nil, fmt.Errorf("%w: member display name", ErrInvalidName)
	}
	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = s.newID()
	}
	return &Member{GroupID: groupID, ID: id, DisplayName: name, JoinedAt: at}, nil
}

// GetByID retrieves a group by its ID
func (s *Service) GetByID(ctx context.Context, id string) (*Group, error) {
	g, err := s.store.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGroupNotFound
	}
	return g, nil
}

// GetByIDWithMembers retrieves a group with all its members
func (s *Service) GetByIDWithMembers(ctx context.Context, id string) (*Group, []*Member, error) {
	g, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	members, err := s.store.ListMembers(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return g, members, nil
}

// List retrieves groups, optionally only those memberID belongs to
func (s *Service) List(ctx context.Context, memberID string, page, perPage int) ([]*Group, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := response.Offset(page, perPage)
	return s.store.ListGroups(ctx, memberID, perPage, offset)
}

// Update modifies an existing group. The currency can be repeated but not changed.
func (s *Service) Update(ctx context.Context, id string, req *UpdateGroupRequest) (*Group, error) {
	g, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Currency != nil && !strings.EqualFold(strings.TrimSpace(*req.Currency), g.Currency) {
		return nil, ErrCurrencyFixed
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrInvalidName
		}
		g.Name = name
	}
	if req.Description != nil {
		g.Description = req.Description
	}

	if err := s.store.UpdateGroup(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// Delete removes a group together with its records
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.store.DeleteGroup(ctx, id)
}

// AddMember adds a person to a group
func (s *Service) AddMember(ctx context.Context, groupID string, req *AddMemberRequest) (*Member, error) {
	if _, err := s.GetByID(ctx, groupID); err != nil {
		return nil, err
	}

	m, err := s.newMember(groupID, req, s.now().UTC())
	if err != nil {
		return nil, err
	}

	existing, err := s.store.GetMember(ctx, groupID, m.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrMemberExists, m.ID)
	}

	if err := s.store.AddMember(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// GetMembers retrieves all members of a group
func (s *Service) GetMembers(ctx context.Context, groupID string) ([]*Member, error) {
	if _, err := s.GetByID(ctx, groupID); err != nil {
		return nil, err
	}
	return s.store.ListMembers(ctx, groupID)
}

// UpdateMember renames a member
func (s *Service) UpdateMember(ctx context.Context, groupID, memberID string, req *UpdateMemberRequest) (*Member, error) {
	m, err := s.store.GetMember(ctx, groupID, memberID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMemberNotFound
	}

	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		return nil, fmt.Errorf("%w: member display name", ErrInvalidName)
	}
	m.DisplayName = name

	if err := s.store.UpdateMember(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// RemoveMember removes a member that no expense or settlement references.
// The last member of a group cannot be removed.
func (s *Service) RemoveMember(ctx context.Context, groupID, memberID string) error {
	m, err := s.store.GetMember(ctx, groupID, memberID)
	if err != nil {
		return err
	}
	if m == nil {
		return ErrMemberNotFound
	}

	remove := func(ctx context.Context) error {
		members, err := s.store.ListMembers(ctx, groupID)
		if err != nil {
			return err
		}
		if len(members) <= 1 {
			return ErrNoMembers
		}
		return s.store.RemoveMember(ctx, groupID, memberID)
	}
	if s.guard == nil {
		return remove(ctx)
	}
	return s.guard.RemoveIfInactive(ctx, groupID, memberID, remove)
}

// Roster implements ledger.Directory
func (s *Service) Roster(ctx context.Context, groupID string) (*ledger.Roster, error) {
	g, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, nil
	}

	members, err := s.store.ListMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}

	r := &ledger.Roster{
		GroupID:  g.ID,
		Name:     g.Name,
		Currency: g.Currency,
		Members:  make([]ledger.Member, len(members)),
	}
	for i, m := range members {
		r.Members[i] = ledger.Member{ID: m.ID, DisplayName: m.DisplayName}
	}
	return r, nil
}

var _ ledger.Directory = (*Service)(nil)

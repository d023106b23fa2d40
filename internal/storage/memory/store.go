// Package memory is an in-process backend for every store interface. It is
// used for local runs and tests; nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/fkhayef/groupledger/internal/group"
	"github.com/fkhayef/groupledger/internal/ledger"
	"github.com/fkhayef/groupledger/internal/notification"
)

// Store keeps all records in maps guarded by one RWMutex. Values are copied
// on the way in and out so callers never share state with the store.
type Store struct {
	mu sync.RWMutex

	groups  map[string]*group.Group
	members map[string][]*group.Member // by group id, in joining order

	expenses    map[string]*ledger.Expense
	settlements map[string]*ledger.Settlement

	notifications map[string]*notification.Notification
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		groups:        make(map[string]*group.Group),
		members:       make(map[string][]*group.Member),
		expenses:      make(map[string]*ledger.Expense),
		settlements:   make(map[string]*ledger.Settlement),
		notifications: make(map[string]*notification.Notification),
	}
}

// Groups

func (s *Store) CreateGroup(ctx context.Context, g *group.Group, members []*group.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.groups[g.ID]; exists {
		return fmt.Errorf("failed to create group: duplicate id %s", g.ID)
	}
	cp := *g
	s.groups[g.ID] = &cp

	list := make([]*group.Member, len(members))
	for i, m := range members {
		mc := *m
		list[i] = &mc
	}
	s.members[g.ID] = list
	return nil
}

func (s *Store) GetGroup(ctx context.Context, id string) (*group.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.groups[id]
	if !ok {
		return nil, nil
	}
	cp := *g
	return &cp, nil
}

func (s *Store) ListGroups(ctx context.Context, memberID string, limit, offset int) ([]*group.Group, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*group.Group, 0, len(s.groups))
	for _, g := range s.groups {
		if memberID != "" && s.findMember(g.ID, memberID) < 0 {
			continue
		}
		cp := *g
		all = append(all, &cp)
	}
	slices.SortFunc(all, func(a, b *group.Group) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	total := len(all)
	if offset >= total {
		return []*group.Group{}, total, nil
	}
	end := min(offset+limit, total)
	return all[offset:end], total, nil
}

func (s *Store) UpdateGroup(ctx context.Context, g *group.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.groups[g.ID]
	if !ok {
		return group.ErrGroupNotFound
	}
	existing.Name = g.Name
	existing.Description = g.Description
	return nil
}

// DeleteGroup removes the group with its members, records and notifications
func (s *Store) DeleteGroup(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[id]; !ok {
		return group.ErrGroupNotFound
	}
	delete(s.groups, id)
	delete(s.members, id)
	maps.DeleteFunc(s.expenses, func(_ string, e *ledger.Expense) bool { return e.GroupID == id })
	maps.DeleteFunc(s.settlements, func(_ string, st *ledger.Settlement) bool { return st.GroupID == id })
	maps.DeleteFunc(s.notifications, func(_ string, n *notification.Notification) bool { return n.GroupID == id })
	return nil
}

// Members

func (s *Store) AddMember(ctx context.Context, m *group.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[m.GroupID]; !ok {
		return group.ErrGroupNotFound
	}
	if s.findMember(m.GroupID, m.ID) >= 0 {
		return fmt.Errorf("%w: %s", group.ErrMemberExists, m.ID)
	}
	cp := *m
	s.members[m.GroupID] = append(s.members[m.GroupID], &cp)
	return nil
}

func (s *Store) GetMember(ctx context.Context, groupID, memberID string) (*group.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.findMember(groupID, memberID)
	if i < 0 {
		return nil, nil
	}
	cp := *s.members[groupID][i]
	return &cp, nil
}

func (s *Store) ListMembers(ctx context.Context, groupID string) ([]*group.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.members[groupID]
	out := make([]*group.Member, len(list))
	for i, m := range list {
		cp := *m
		out[i] = &cp
	}
	return out, nil
}

func (s *Store) UpdateMember(ctx context.Context, m *group.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.findMember(m.GroupID, m.ID)
	if i < 0 {
		return group.ErrMemberNotFound
	}
	s.members[m.GroupID][i].DisplayName = m.DisplayName
	return nil
}

func (s *Store) RemoveMember(ctx context.Context, groupID, memberID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.findMember(groupID, memberID)
	if i < 0 {
		return group.ErrMemberNotFound
	}
	if s.referenced(groupID, memberID) {
		return fmt.Errorf("%w: %s", ledger.ErrMemberHasActivity, memberID)
	}
	s.members[groupID] = slices.Delete(s.members[groupID], i, i+1)
	return nil
}

// findMember returns the member's index in its group, or -1. Callers hold mu.
func (s *Store) findMember(groupID, memberID string) int {
	return slices.IndexFunc(s.members[groupID], func(m *group.Member) bool { return m.ID == memberID })
}

// requireMembers fails with ErrUnknownMember unless every id belongs to the
// group. Callers hold mu.
func (s *Store) requireMembers(groupID string, ids ...string) error {
	var missing []string
	for _, id := range ids {
		if s.findMember(groupID, id) < 0 {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	slices.Sort(missing)
	return fmt.Errorf("%w: %s", ledger.ErrUnknownMember, strings.Join(slices.Compact(missing), ", "))
}

// referenced reports whether any expense or settlement of the group names
// memberID. Callers hold mu.
func (s *Store) referenced(groupID, memberID string) bool {
	for _, e := range s.expenses {
		if e.GroupID != groupID {
			continue
		}
		if _, weighted := e.Weights[memberID]; weighted || e.PayerID == memberID {
			return true
		}
	}
	for _, st := range s.settlements {
		if st.GroupID == groupID && (st.FromID == memberID || st.ToID == memberID) {
			return true
		}
	}
	return false
}

func expenseMembers(e *ledger.Expense) []string {
	ids := []string{e.PayerID}
	for id := range e.Weights {
		ids = append(ids, id)
	}
	return ids
}

// Expenses

func (s *Store) ListExpenses(ctx context.Context, groupID string) ([]*ledger.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*ledger.Expense, 0)
	for _, e := range s.expenses {
		if e.GroupID == groupID {
			out = append(out, cloneExpense(e))
		}
	}
	slices.SortFunc(out, func(a, b *ledger.Expense) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *Store) GetExpense(ctx context.Context, id string) (*ledger.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.expenses[id]
	if !ok {
		return nil, nil
	}
	return cloneExpense(e), nil
}

func (s *Store) SaveExpense(ctx context.Context, e *ledger.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.expenses[e.ID]; exists {
		return fmt.Errorf("failed to save expense: duplicate id %s", e.ID)
	}
	if err := s.requireMembers(e.GroupID, expenseMembers(e)...); err != nil {
		return err
	}
	s.expenses[e.ID] = cloneExpense(e)
	return nil
}

func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.expenses[id]; !ok {
		return fmt.Errorf("%w: expense %s", ledger.ErrNotFound, id)
	}
	delete(s.expenses, id)
	return nil
}

func (s *Store) ReplaceExpense(ctx context.Context, oldID string, e *ledger.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.expenses[oldID]; !ok {
		return fmt.Errorf("%w: expense %s", ledger.ErrNotFound, oldID)
	}
	if _, exists := s.expenses[e.ID]; exists {
		return fmt.Errorf("failed to save expense: duplicate id %s", e.ID)
	}
	if err := s.requireMembers(e.GroupID, expenseMembers(e)...); err != nil {
		return err
	}
	delete(s.expenses, oldID)
	s.expenses[e.ID] = cloneExpense(e)
	return nil
}

// CountMemberExpenses counts the expenses memberID paid or carries a weight in
func (s *Store) CountMemberExpenses(ctx context.Context, groupID, memberID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, e := range s.expenses {
		if e.GroupID != groupID {
			continue
		}
		if _, weighted := e.Weights[memberID]; weighted || e.PayerID == memberID {
			n++
		}
	}
	return n, nil
}

func cloneExpense(e *ledger.Expense) *ledger.Expense {
	cp := *e
	cp.Weights = maps.Clone(e.Weights)
	return &cp
}

// Settlements

func (s *Store) ListSettlements(ctx context.Context, groupID string) ([]*ledger.Settlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*ledger.Settlement, 0)
	for _, st := range s.settlements {
		if st.GroupID == groupID {
			cp := *st
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *ledger.Settlement) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *Store) GetSettlement(ctx context.Context, id string) (*ledger.Settlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.settlements[id]
	if !ok {
		return nil, nil
	}
	cp := *st
	return &cp, nil
}

func (s *Store) SaveSettlement(ctx context.Context, st *ledger.Settlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.settlements[st.ID]; exists {
		return fmt.Errorf("failed to save settlement: duplicate id %s", st.ID)
	}
	if err := s.requireMembers(st.GroupID, st.FromID, st.ToID); err != nil {
		return err
	}
	cp := *st
	s.settlements[st.ID] = &cp
	return nil
}

func (s *Store) DeleteSettlement(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.settlements[id]; !ok {
		return fmt.Errorf("%w: settlement %s", ledger.ErrNotFound, id)
	}
	delete(s.settlements, id)
	return nil
}

func (s *Store) CountMemberSettlements(ctx context.Context, groupID, memberID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, st := range s.settlements {
		if st.GroupID == groupID && (st.FromID == memberID || st.ToID == memberID) {
			n++
		}
	}
	return n, nil
}

// Notifications

func (s *Store) CreateNotification(ctx context.Context, n *notification.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *n
	s.notifications[n.ID] = &cp
	return nil
}

func (s *Store) GetNotification(ctx context.Context, id string) (*notification.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notifications[id]
	if !ok {
		return nil, nil
	}
	cp := *n
	return &cp, nil
}

func (s *Store) ListNotifications(ctx context.Context, recipientID string, limit, offset int, unreadOnly bool) ([]*notification.Notification, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*notification.Notification, 0)
	for _, n := range s.notifications {
		if n.RecipientID != recipientID || (unreadOnly && n.IsRead) {
			continue
		}
		cp := *n
		all = append(all, &cp)
	}
	slices.SortFunc(all, func(a, b *notification.Notification) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	total := len(all)
	if offset >= total {
		return []*notification.Notification{}, total, nil
	}
	end := min(offset+limit, total)
	return all[offset:end], total, nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n, ok := s.notifications[id]; ok {
		n.IsRead = true
	}
	return nil
}

func (s *Store) MarkAllNotificationsRead(ctx context.Context, recipientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.notifications {
		if n.RecipientID == recipientID {
			n.IsRead = true
		}
	}
	return nil
}

func (s *Store) UnreadNotificationCount(ctx context.Context, recipientID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

var (
	_ group.Store            = (*Store)(nil)
	_ ledger.ExpenseStore    = (*Store)(nil)
	_ ledger.SettlementStore = (*Store)(nil)
	_ notification.Store     = (*Store)(nil)
)

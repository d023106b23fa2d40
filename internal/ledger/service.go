package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fkhayef/groupledger/internal/events"
	"github.com/fkhayef/groupledger/internal/expense/split"
	"github.com/fkhayef/groupledger/internal/metrics"
)

// Service is the entry point for recording and querying a group's ledger.
// Writes to one group are serialized; reads run concurrently and always
// fold the committed records.
type Service struct {
	expenses    ExpenseStore
	settlements SettlementStore
	directory   Directory
	alloc       Allocator

	publisher events.Publisher
	cache     *BalanceCache
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string

	publishTimeout time.Duration

	locks *groupLocks
}

// DefaultPublishTimeout bounds delivery of the events for one write
const DefaultPublishTimeout = 5 * time.Second

// Option configures a Service
type Option func(*Service)

// WithPublisher sets the sink for committed ledger events
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithBalanceCache enables caching of computed balances
func WithBalanceCache(c *BalanceCache) Option {
	return func(s *Service) { s.cache = c }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithPublishTimeout bounds how long a write waits for its events to be
// delivered. The group's write lock is already released by then.
func WithPublishTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.publishTimeout = d
		}
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides the record id source (random UUIDs by default)
func WithIDGenerator(f func() string) Option {
	return func(s *Service) { s.newID = f }
}

// NewService creates a new ledger service
func NewService(expenses ExpenseStore, settlements SettlementStore, directory Directory, alloc Allocator, opts ...Option) *Service {
	s := &Service{
		expenses:    expenses,
		settlements: settlements,
		directory:   directory,
		alloc:       alloc,
		publisher:   events.Nop{},
		logger:      slog.Default(),
		now:         time.Now,
		newID:       uuid.NewString,

		publishTimeout: DefaultPublishTimeout,

		locks: newGroupLocks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Roster returns the group's current member set
func (s *Service) Roster(ctx context.Context, groupID string) (*Roster, error) {
	r, err := s.directory.Roster(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load group %s: %w", groupID, err)
	}
	if r == nil {
		return nil, fmt.Errorf("%w: group %s", ErrNotFound, groupID)
	}
	return r, nil
}

// AddExpense validates and records a new expense
func (s *Service) AddExpense(ctx context.Context, in NewExpense) (*Expense, error) {
	e, evs, err := s.addExpense(ctx, in)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, evs...)
	return e, nil
}

func (s *Service) addExpense(ctx context.Context, in NewExpense) (*Expense, []events.Event, error) {
	unlock := s.locks.lock(in.GroupID)
	defer unlock()

	e, roster, shares, err := s.prepareExpense(ctx, in)
	if err != nil {
		s.rejected("add_expense", in.GroupID, err)
		return nil, nil, err
	}

	if err := s.expenses.SaveExpense(ctx, e); err != nil {
		return nil, nil, err
	}
	s.committed(e.GroupID)
	s.metrics.ExpenseRecorded(string(e.Method))

	s.logger.Info("Expense recorded",
		"group_id", e.GroupID,
		"expense_id", e.ID,
		"payer_id", e.PayerID,
		"method", e.Method,
		"amount", e.Amount.Minor(),
	)
	return e, []events.Event{expenseEvent(events.ExpenseCreated, roster, e, shares, s.now())}, nil
}

// ReplaceExpense corrects an expense by deleting it and recording in as a new
// expense in the same group. The original stays untouched if in is invalid.
func (s *Service) ReplaceExpense(ctx context.Context, id string, in NewExpense) (*Expense, error) {
	e, evs, err := s.replaceExpense(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, evs...)
	return e, nil
}

func (s *Service) replaceExpense(ctx context.Context, id string, in NewExpense) (*Expense, []events.Event, error) {
	existing, err := s.GetExpense(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	in.GroupID = existing.GroupID

	unlock := s.locks.lock(existing.GroupID)
	defer unlock()

	// re-read under the lock; a concurrent delete may have won
	if existing, err = s.GetExpense(ctx, id); err != nil {
		return nil, nil, err
	}

	e, roster, shares, err := s.prepareExpense(ctx, in)
	if err != nil {
		s.rejected("replace_expense", in.GroupID, err)
		return nil, nil, err
	}

	if err := s.expenses.ReplaceExpense(ctx, existing.ID, e); err != nil {
		return nil, nil, err
	}
	s.committed(e.GroupID)
	s.metrics.RecordDeleted("expense")
	s.metrics.ExpenseRecorded(string(e.Method))

	s.logger.Info("Expense replaced",
		"group_id", e.GroupID,
		"old_expense_id", existing.ID,
		"expense_id", e.ID,
		"amount", e.Amount.Minor(),
	)
	now := s.now()
	return e, []events.Event{
		expenseEvent(events.ExpenseDeleted, roster, existing, s.sharesOf(existing, roster), now),
		expenseEvent(events.ExpenseCreated, roster, e, shares, now),
	}, nil
}

func (s *Service) prepareExpense(ctx context.Context, in NewExpense) (*Expense, *Roster, split.Allocation, error) {
	roster, err := s.Roster(ctx, in.GroupID)
	if err != nil {
		return nil, nil, nil, err
	}

	if !roster.Has(in.PayerID) {
		return nil, nil, nil, fmt.Errorf("%w: payer %s", ErrUnknownMember, in.PayerID)
	}
	if err := in.Amount.Validate(); err != nil {
		return nil, nil, nil, err
	}
	for _, id := range sortedWeightKeys(in.Weights) {
		if !roster.Has(id) {
			return nil, nil, nil, fmt.Errorf("%w: participant %s", ErrUnknownMember, id)
		}
	}

	weights := make(split.Weights, len(in.Weights))
	for id, w := range in.Weights {
		weights[id] = w
	}
	// An equal split over "everyone" is pinned to today's roster so that
	// later joiners do not change past expenses.
	if in.Method == split.MethodEqual && len(weights) == 0 {
		for _, id := range roster.MemberIDs() {
			weights[id] = decimal.NewFromInt(1)
		}
	}

	shares, err := s.alloc.Allocate(in.Method, in.Amount, weights, roster.MemberIDs())
	if err != nil {
		return nil, nil, nil, err
	}

	now := s.now().UTC()
	date := in.Date
	if date.IsZero() {
		date = now
	}

	e := &Expense{
		ID:          s.newID(),
		GroupID:     in.GroupID,
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount,
		PayerID:     in.PayerID,
		Date:        truncateDay(date),
		Method:      in.Method,
		Weights:     weights,
		CreatedAt:   now,
	}
	return e, roster, shares, nil
}

// RecordSettlement validates and records a payment between two members
func (s *Service) RecordSettlement(ctx context.Context, in NewSettlement) (*Settlement, error) {
	st, evs, err := s.recordSettlement(ctx, in)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, evs...)
	return st, nil
}

func (s *Service) recordSettlement(ctx context.Context, in NewSettlement) (*Settlement, []events.Event, error) {
	unlock := s.locks.lock(in.GroupID)
	defer unlock()

	st, roster, err := s.prepareSettlement(ctx, in)
	if err != nil {
		s.rejected("record_settlement", in.GroupID, err)
		return nil, nil, err
	}

	if err := s.settlements.SaveSettlement(ctx, st); err != nil {
		return nil, nil, err
	}
	s.committed(st.GroupID)
	s.metrics.SettlementRecorded()

	s.logger.Info("Settlement recorded",
		"group_id", st.GroupID,
		"settlement_id", st.ID,
		"from_id", st.FromID,
		"to_id", st.ToID,
		"amount", st.Amount.Minor(),
	)
	return st, []events.Event{settlementEvent(events.SettlementRecorded, roster, st, s.now())}, nil
}

func (s *Service) prepareSettlement(ctx context.Context, in NewSettlement) (*Settlement, *Roster, error) {
	roster, err := s.Roster(ctx, in.GroupID)
	if err != nil {
		return nil, nil, err
	}

	if in.FromID == in.ToID {
		return nil, nil, fmt.Errorf("%w: %s", ErrSameMember, in.FromID)
	}
	if !roster.Has(in.FromID) {
		return nil, nil, fmt.Errorf("%w: from %s", ErrUnknownMember, in.FromID)
	}
	if !roster.Has(in.ToID) {
		return nil, nil, fmt.Errorf("%w: to %s", ErrUnknownMember, in.ToID)
	}
	if err := in.Amount.Validate(); err != nil {
		return nil, nil, err
	}

	now := s.now().UTC()
	date := in.Date
	if date.IsZero() {
		date = now
	}

	st := &Settlement{
		ID:        s.newID(),
		GroupID:   in.GroupID,
		FromID:    in.FromID,
		ToID:      in.ToID,
		Amount:    in.Amount,
		Date:      truncateDay(date),
		Notes:     strings.TrimSpace(in.Notes),
		CreatedAt: now,
	}
	return st, roster, nil
}

// DeleteExpense removes an expense; balances reflect the removal immediately
func (s *Service) DeleteExpense(ctx context.Context, id string) error {
	evs, err := s.deleteExpense(ctx, id)
	if err != nil {
		return err
	}
	s.publish(ctx, evs...)
	return nil
}

func (s *Service) deleteExpense(ctx context.Context, id string) ([]events.Event, error) {
	existing, err := s.GetExpense(ctx, id)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(existing.GroupID)
	defer unlock()

	if existing, err = s.GetExpense(ctx, id); err != nil {
		return nil, err
	}
	if err := s.expenses.DeleteExpense(ctx, id); err != nil {
		return nil, err
	}
	s.committed(existing.GroupID)
	s.metrics.RecordDeleted("expense")

	s.logger.Info("Expense deleted", "group_id", existing.GroupID, "expense_id", id)
	roster, err := s.directory.Roster(ctx, existing.GroupID)
	if err != nil || roster == nil {
		return nil, nil
	}
	return []events.Event{expenseEvent(events.ExpenseDeleted, roster, existing, s.sharesOf(existing, roster), s.now())}, nil
}

// DeleteSettlement removes a settlement
func (s *Service) DeleteSettlement(ctx context.Context, id string) error {
	evs, err := s.deleteSettlement(ctx, id)
	if err != nil {
		return err
	}
	s.publish(ctx, evs...)
	return nil
}

func (s *Service) deleteSettlement(ctx context.Context, id string) ([]events.Event, error) {
	existing, err := s.GetSettlement(ctx, id)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(existing.GroupID)
	defer unlock()

	if existing, err = s.GetSettlement(ctx, id); err != nil {
		return nil, err
	}
	if err := s.settlements.DeleteSettlement(ctx, id); err != nil {
		return nil, err
	}
	s.committed(existing.GroupID)
	s.metrics.RecordDeleted("settlement")

	s.logger.Info("Settlement deleted", "group_id", existing.GroupID, "settlement_id", id)
	roster, err := s.directory.Roster(ctx, existing.GroupID)
	if err != nil || roster == nil {
		return nil, nil
	}
	return []events.Event{settlementEvent(events.SettlementDeleted, roster, existing, s.now())}, nil
}

// GetExpense retrieves an expense by id
func (s *Service) GetExpense(ctx context.Context, id string) (*Expense, error) {
	e, err := s.expenses.GetExpense(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, fmt.Errorf("%w: expense %s", ErrNotFound, id)
	}
	return e, nil
}

// GetSettlement retrieves a settlement by id
func (s *Service) GetSettlement(ctx context.Context, id string) (*Settlement, error) {
	st, err := s.settlements.GetSettlement(ctx, id)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, fmt.Errorf("%w: settlement %s", ErrNotFound, id)
	}
	return st, nil
}

// ListExpenses returns a group's expenses, newest first
func (s *Service) ListExpenses(ctx context.Context, groupID string) ([]*Expense, error) {
	if _, err := s.Roster(ctx, groupID); err != nil {
		return nil, err
	}
	list, err := s.expenses.ListExpenses(ctx, groupID)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(list, func(a, b *Expense) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return list, nil
}

// ListSettlements returns a group's settlements, newest first
func (s *Service) ListSettlements(ctx context.Context, groupID string) ([]*Settlement, error) {
	if _, err := s.Roster(ctx, groupID); err != nil {
		return nil, err
	}
	list, err := s.settlements.ListSettlements(ctx, groupID)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(list, func(a, b *Settlement) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return list, nil
}

// GetBalances returns every member's net balance
func (s *Service) GetBalances(ctx context.Context, groupID string) (Balances, error) {
	roster, err := s.Roster(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return s.BalancesFor(ctx, roster)
}

// BalancesFor is GetBalances against a roster the caller already loaded, so
// the balances and the member names rendered next to them agree.
func (s *Service) BalancesFor(ctx context.Context, roster *Roster) (Balances, error) {
	return s.balances(ctx, roster)
}

// GetSimplifiedDebts returns the transfers that would settle the group
func (s *Service) GetSimplifiedDebts(ctx context.Context, groupID string) ([]Transfer, error) {
	roster, err := s.Roster(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return s.SimplifiedDebtsFor(ctx, roster)
}

// SimplifiedDebtsFor is GetSimplifiedDebts against a loaded roster
func (s *Service) SimplifiedDebtsFor(ctx context.Context, roster *Roster) ([]Transfer, error) {
	b, err := s.balances(ctx, roster)
	if err != nil {
		return nil, err
	}
	return Simplify(b)
}

// GetPosition returns what one member owes and is owed after simplification
func (s *Service) GetPosition(ctx context.Context, groupID, memberID string) (*Position, error) {
	roster, err := s.Roster(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return s.PositionFor(ctx, roster, memberID)
}

// PositionFor is GetPosition against a loaded roster
func (s *Service) PositionFor(ctx context.Context, roster *Roster, memberID string) (*Position, error) {
	if !roster.Has(memberID) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMember, memberID)
	}

	b, err := s.balances(ctx, roster)
	if err != nil {
		return nil, err
	}
	transfers, err := Simplify(b)
	if err != nil {
		return nil, err
	}
	return PositionOf(memberID, b, transfers), nil
}

// MemberHasActivity reports whether any expense or settlement references the member
func (s *Service) MemberHasActivity(ctx context.Context, groupID, memberID string) (bool, error) {
	n, err := s.expenses.CountMemberExpenses(ctx, groupID, memberID)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	n, err = s.settlements.CountMemberSettlements(ctx, groupID, memberID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RemoveIfInactive runs remove under the group's write lock, but only when
// the member has no recorded activity. Otherwise it fails with
// ErrMemberHasActivity.
func (s *Service) RemoveIfInactive(ctx context.Context, groupID, memberID string, remove func(context.Context) error) error {
	unlock := s.locks.lock(groupID)
	defer unlock()

	active, err := s.MemberHasActivity(ctx, groupID, memberID)
	if err != nil {
		return err
	}
	if active {
		return fmt.Errorf("%w: %s", ErrMemberHasActivity, memberID)
	}
	if err := remove(ctx); err != nil {
		return err
	}
	s.committed(groupID)
	return nil
}

func (s *Service) balances(ctx context.Context, roster *Roster) (Balances, error) {
	var generation uint64
	if s.cache != nil {
		if b, ok := s.cache.get(roster.GroupID); ok {
			s.metrics.CacheLookup(true)
			return project(b, roster), nil
		}
		s.metrics.CacheLookup(false)
		generation = s.cache.generation(roster.GroupID)
	}

	start := time.Now()
	expenses, err := s.expenses.ListExpenses(ctx, roster.GroupID)
	if err != nil {
		return nil, err
	}
	settlements, err := s.settlements.ListSettlements(ctx, roster.GroupID)
	if err != nil {
		return nil, err
	}

	b, err := ComputeBalances(s.alloc, roster.MemberIDs(), expenses, settlements)
	if err != nil {
		return nil, err
	}
	s.metrics.BalancesComputed(time.Since(start))

	if s.cache != nil {
		s.cache.put(roster.GroupID, generation, b)
	}
	return b, nil
}

// project restricts cached balances to the current roster. Members without
// activity have a zero balance by construction.
func project(b Balances, roster *Roster) Balances {
	out := make(Balances, len(roster.Members))
	for _, m := range roster.Members {
		out[m.ID] = b[m.ID]
	}
	return out
}

// committed runs after every successful write
func (s *Service) committed(groupID string) {
	if s.cache != nil {
		s.cache.Invalidate(groupID)
	}
}

func (s *Service) rejected(operation, groupID string, err error) {
	code := ErrorCode(err)
	if code == "INTERNAL_ERROR" {
		s.logger.Error("Ledger write failed", "operation", operation, "group_id", groupID, "error", err)
		return
	}
	s.metrics.WriteRejected(operation, code)
	s.logger.Warn("Ledger write rejected", "operation", operation, "group_id", groupID, "reason", code, "error", err)
}

// publish delivers the events of one committed write. It runs after the
// group's write lock is released and never fails the caller.
func (s *Service) publish(ctx context.Context, evs ...events.Event) {
	if len(evs) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()

	for _, ev := range evs {
		if err := s.publisher.Publish(ctx, ev); err != nil {
			s.logger.Warn("Failed to publish ledger event",
				"type", ev.Type,
				"group_id", ev.GroupID,
				"entity_id", ev.EntityID,
				"error", err,
			)
		}
	}
}

func expenseEvent(t events.Type, roster *Roster, e *Expense, shares split.Allocation, at time.Time) events.Event {
	ev := events.Event{
		Type:        t,
		GroupID:     e.GroupID,
		GroupName:   roster.Name,
		EntityID:    e.ID,
		ActorID:     e.PayerID,
		ActorName:   roster.DisplayName(e.PayerID),
		Description: e.Description,
		Currency:    roster.Currency,
		Amount:      e.Amount.Minor(),
		OccurredAt:  at.UTC(),
	}
	if len(shares) > 0 {
		ev.Shares = make(map[string]int64, len(shares))
		for id, share := range shares {
			ev.Shares[id] = share.Minor()
		}
	}
	return ev
}

// Shares re-derives a stored expense's allocation against roster
func (s *Service) Shares(e *Expense, roster *Roster) (split.Allocation, error) {
	return s.alloc.Allocate(e.Method, e.Amount, e.Weights, roster.MemberIDs())
}

// sharesOf is Shares for event payloads; nil if the roster no longer covers
// the expense.
func (s *Service) sharesOf(e *Expense, roster *Roster) split.Allocation {
	shares, err := s.Shares(e, roster)
	if err != nil {
		return nil
	}
	return shares
}

func settlementEvent(t events.Type, roster *Roster, st *Settlement, at time.Time) events.Event {
	return events.Event{
		Type:         t,
		GroupID:      st.GroupID,
		GroupName:    roster.Name,
		EntityID:     st.ID,
		ActorID:      st.FromID,
		ActorName:    roster.DisplayName(st.FromID),
		Counterparty: st.ToID,
		Description:  st.Notes,
		Currency:     roster.Currency,
		Amount:       st.Amount.Minor(),
		OccurredAt:   at.UTC(),
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sortedWeightKeys(w split.Weights) []string {
	ids := make([]string, 0, len(w))
	for id := range w {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// IsValidation reports whether err is a caller input error rather than an
// infrastructure failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidSplit) ||
		errors.Is(err, ErrUnknownMember) ||
		errors.Is(err, ErrSameMember)
}

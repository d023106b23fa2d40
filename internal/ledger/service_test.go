package ledger_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/groupledger/internal/events"
	"github.com/fkhayef/groupledger/internal/expense/split"
	"github.com/fkhayef/groupledger/internal/group"
	"github.com/fkhayef/groupledger/internal/ledger"
	"github.com/fkhayef/groupledger/internal/money"
	"github.com/fkhayef/groupledger/internal/storage/memory"
)

var now = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

type fixture struct {
	ledger  *ledger.Service
	groups  *group.Service
	store   *memory.Store
	events  *events.Recorder
	cache   *ledger.BalanceCache
	groupID string
}

func newFixture(t *testing.T, memberIDs ...string) *fixture {
	t.Helper()
	return newFixtureWith(t, nil, memberIDs...)
}

// newFixtureWith applies opts after the defaults, so they can replace the
// event recorder.
func newFixtureWith(t *testing.T, opts []ledger.Option, memberIDs ...string) *fixture {
	t.Helper()

	store := memory.NewStore()
	groups := group.NewService(store)
	rec := &events.Recorder{}
	cache := ledger.NewBalanceCache(10, 0)

	defaults := []ledger.Option{
		ledger.WithPublisher(rec),
		ledger.WithBalanceCache(cache),
		ledger.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		ledger.WithClock(func() time.Time { return now }),
	}
	svc := ledger.NewService(store, store, groups, split.NewSplitStrategyFactory(), append(defaults, opts...)...)
	groups.SetActivityGuard(svc)

	req := &group.CreateGroupRequest{Name: "Trip", Currency: "USD"}
	for _, id := range memberIDs {
		req.Members = append(req.Members, &group.AddMemberRequest{ID: id, DisplayName: "Member " + id})
	}
	g, _, err := groups.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("create group: %v", err)
	}

	return &fixture{ledger: svc, groups: groups, store: store, events: rec, cache: cache, groupID: g.ID}
}

func weights(values map[string]int64) split.Weights {
	w := make(split.Weights, len(values))
	for id, v := range values {
		w[id] = decimal.NewFromInt(v)
	}
	return w
}

func (f *fixture) addExpense(t *testing.T, payer string, minor int64, method split.Method, w split.Weights) *ledger.Expense {
	t.Helper()
	e, err := f.ledger.AddExpense(context.Background(), ledger.NewExpense{
		GroupID: f.groupID,
		PayerID: payer,
		Amount:  money.New(minor),
		Method:  method,
		Weights: w,
	})
	if err != nil {
		t.Fatalf("AddExpense: %v", err)
	}
	return e
}

func (f *fixture) assertBalances(t *testing.T, want map[string]int64) {
	t.Helper()
	got, err := f.ledger.GetBalances(context.Background(), f.groupID)
	if err != nil {
		t.Fatalf("GetBalances: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("balances = %v, want %v", got, want)
	}
	for id, v := range want {
		if got[id].Minor() != v {
			t.Fatalf("balance of %s = %d, want %d (all: %v)", id, got[id].Minor(), v, got)
		}
	}
}

func TestAddExpenseEqualSplit(t *testing.T) {
	f := newFixture(t, "A", "B", "C")

	e := f.addExpense(t, "A", 1000, split.MethodEqual, nil)
	if len(e.Weights) != 3 {
		t.Errorf("equal split over everyone pinned %d participants, want 3", len(e.Weights))
	}
	if !e.Date.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v, want the current day", e.Date)
	}

	f.assertBalances(t, map[string]int64{"A": 666, "B": -333, "C": -333})

	if got := f.events.Types(); !slices.Equal(got, []events.Type{events.ExpenseCreated}) {
		t.Fatalf("events = %v", got)
	}
	ev := f.events.Events[0]
	if ev.Shares["A"] != 334 || ev.Shares["B"] != 333 || ev.Shares["C"] != 333 {
		t.Errorf("event shares = %v", ev.Shares)
	}
	if ev.Currency != "USD" || ev.ActorName != "Member A" || ev.Amount != 1000 {
		t.Errorf("event = %+v", ev)
	}
}

func TestAddExpenseCustomSplit(t *testing.T) {
	f := newFixture(t, "A", "B", "C")

	f.addExpense(t, "A", 500, split.MethodCustom, weights(map[string]int64{"A": 200, "B": 300}))
	f.assertBalances(t, map[string]int64{"A": 300, "B": -300, "C": 0})
}

func TestEqualSplitSkipsZeroWeights(t *testing.T) {
	w := weights(map[string]int64{"A": 1, "B": 1, "C": 0})

	equal := newFixture(t, "A", "B", "C")
	equal.addExpense(t, "A", 900, split.MethodEqual, w)
	equal.assertBalances(t, map[string]int64{"A": 450, "B": -450, "C": 0})

	shares := newFixture(t, "A", "B", "C")
	shares.addExpense(t, "A", 900, split.MethodShares, w)
	shares.assertBalances(t, map[string]int64{"A": 450, "B": -450, "C": 0})

	_, err := equal.ledger.AddExpense(context.Background(), ledger.NewExpense{
		GroupID: equal.groupID,
		PayerID: "A",
		Amount:  money.New(900),
		Method:  split.MethodEqual,
		Weights: weights(map[string]int64{"A": 0, "C": 0}),
	})
	if !errors.Is(err, ledger.ErrInvalidSplit) {
		t.Fatalf("all-zero equal weights error = %v, want ErrInvalidSplit", err)
	}
}

func TestAddExpenseRejected(t *testing.T) {
	tests := []struct {
		name    string
		in      ledger.NewExpense
		wantErr error
	}{
		{
			name:    "unknown payer",
			in:      ledger.NewExpense{PayerID: "Z", Amount: money.New(100), Method: split.MethodEqual},
			wantErr: ledger.ErrUnknownMember,
		},
		{
			name:    "zero amount",
			in:      ledger.NewExpense{PayerID: "A", Amount: money.Zero, Method: split.MethodEqual},
			wantErr: ledger.ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			in:      ledger.NewExpense{PayerID: "A", Amount: money.New(-5), Method: split.MethodEqual},
			wantErr: ledger.ErrInvalidAmount,
		},
		{
			name:    "unknown participant",
			in:      ledger.NewExpense{PayerID: "A", Amount: money.New(100), Method: split.MethodEqual, Weights: weights(map[string]int64{"A": 1, "Z": 1})},
			wantErr: ledger.ErrUnknownMember,
		},
		{
			name:    "percentages sum to 99",
			in:      ledger.NewExpense{PayerID: "A", Amount: money.New(999), Method: split.MethodPercentage, Weights: weights(map[string]int64{"A": 50, "B": 30, "C": 19})},
			wantErr: ledger.ErrInvalidSplit,
		},
		{
			name:    "custom amounts do not match",
			in:      ledger.NewExpense{PayerID: "A", Amount: money.New(500), Method: split.MethodCustom, Weights: weights(map[string]int64{"A": 200, "B": 250})},
			wantErr: ledger.ErrInvalidSplit,
		},
		{
			name:    "all zero shares",
			in:      ledger.NewExpense{PayerID: "A", Amount: money.New(500), Method: split.MethodShares, Weights: weights(map[string]int64{"A": 0, "B": 0})},
			wantErr: ledger.ErrInvalidSplit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "A", "B", "C")
			tt.in.GroupID = f.groupID

			_, err := f.ledger.AddExpense(context.Background(), tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}

			list, err := f.ledger.ListExpenses(context.Background(), f.groupID)
			if err != nil {
				t.Fatal(err)
			}
			if len(list) != 0 {
				t.Errorf("rejected expense was persisted: %v", list)
			}
			if len(f.events.Events) != 0 {
				t.Errorf("rejected expense published %v", f.events.Types())
			}
		})
	}
}

func TestAddExpenseUnknownGroup(t *testing.T) {
	f := newFixture(t, "A")
	_, err := f.ledger.AddExpense(context.Background(), ledger.NewExpense{
		GroupID: "missing",
		PayerID: "A",
		Amount:  money.New(100),
		Method:  split.MethodEqual,
	})
	if !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSettlementClearsDebt(t *testing.T) {
	f := newFixture(t, "A", "B")
	ctx := context.Background()

	f.addExpense(t, "B", 1000, split.MethodCustom, weights(map[string]int64{"A": 1000}))
	f.assertBalances(t, map[string]int64{"A": -1000, "B": 1000})

	st, err := f.ledger.RecordSettlement(ctx, ledger.NewSettlement{
		GroupID: f.groupID,
		FromID:  "A",
		ToID:    "B",
		Amount:  money.New(1000),
		Notes:   "  cash  ",
	})
	if err != nil {
		t.Fatalf("RecordSettlement: %v", err)
	}
	if st.Notes != "cash" {
		t.Errorf("notes = %q", st.Notes)
	}

	f.assertBalances(t, map[string]int64{"A": 0, "B": 0})

	debts, err := f.ledger.GetSimplifiedDebts(ctx, f.groupID)
	if err != nil {
		t.Fatal(err)
	}
	if len(debts) != 0 {
		t.Errorf("debts = %v, want none", debts)
	}

	last := f.events.Events[len(f.events.Events)-1]
	if last.Type != events.SettlementRecorded || last.Counterparty != "B" {
		t.Errorf("last event = %+v", last)
	}
}

func TestRecordSettlementRejected(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		amount   int64
		wantErr  error
	}{
		{name: "same member", from: "A", to: "A", amount: 100, wantErr: ledger.ErrSameMember},
		{name: "unknown sender", from: "Z", to: "A", amount: 100, wantErr: ledger.ErrUnknownMember},
		{name: "unknown receiver", from: "A", to: "Z", amount: 100, wantErr: ledger.ErrUnknownMember},
		{name: "zero amount", from: "A", to: "B", amount: 0, wantErr: ledger.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "A", "B")
			_, err := f.ledger.RecordSettlement(context.Background(), ledger.NewSettlement{
				GroupID: f.groupID,
				FromID:  tt.from,
				ToID:    tt.to,
				Amount:  money.New(tt.amount),
			})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}

			list, _ := f.ledger.ListSettlements(context.Background(), f.groupID)
			if len(list) != 0 {
				t.Errorf("rejected settlement was persisted: %v", list)
			}
		})
	}
}

func TestDeleteExpense(t *testing.T) {
	f := newFixture(t, "A", "B", "C")
	ctx := context.Background()

	e := f.addExpense(t, "A", 1000, split.MethodEqual, nil)
	if err := f.ledger.DeleteExpense(ctx, e.ID); err != nil {
		t.Fatalf("DeleteExpense: %v", err)
	}
	f.assertBalances(t, map[string]int64{"A": 0, "B": 0, "C": 0})

	if err := f.ledger.DeleteExpense(ctx, e.ID); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}

	want := []events.Type{events.ExpenseCreated, events.ExpenseDeleted}
	if got := f.events.Types(); !slices.Equal(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	if shares := f.events.Events[1].Shares; shares["B"] != 333 {
		t.Errorf("deleted event shares = %v", shares)
	}
}

func TestDeleteSettlement(t *testing.T) {
	f := newFixture(t, "A", "B")
	ctx := context.Background()

	st, err := f.ledger.RecordSettlement(ctx, ledger.NewSettlement{GroupID: f.groupID, FromID: "A", ToID: "B", Amount: money.New(40)})
	if err != nil {
		t.Fatal(err)
	}
	f.assertBalances(t, map[string]int64{"A": 40, "B": -40})

	if err := f.ledger.DeleteSettlement(ctx, st.ID); err != nil {
		t.Fatalf("DeleteSettlement: %v", err)
	}
	f.assertBalances(t, map[string]int64{"A": 0, "B": 0})

	if err := f.ledger.DeleteSettlement(ctx, st.ID); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestReplaceExpense(t *testing.T) {
	f := newFixture(t, "A", "B", "C")
	ctx := context.Background()

	original := f.addExpense(t, "A", 1000, split.MethodEqual, nil)

	_, err := f.ledger.ReplaceExpense(ctx, original.ID, ledger.NewExpense{
		PayerID: "A",
		Amount:  money.New(600),
		Method:  split.MethodCustom,
		Weights: weights(map[string]int64{"B": 500}),
	})
	if !errors.Is(err, ledger.ErrInvalidSplit) {
		t.Fatalf("invalid replacement err = %v, want ErrInvalidSplit", err)
	}
	f.assertBalances(t, map[string]int64{"A": 666, "B": -333, "C": -333})

	replaced, err := f.ledger.ReplaceExpense(ctx, original.ID, ledger.NewExpense{
		PayerID: "A",
		Amount:  money.New(600),
		Method:  split.MethodCustom,
		Weights: weights(map[string]int64{"B": 600}),
	})
	if err != nil {
		t.Fatalf("ReplaceExpense: %v", err)
	}
	if replaced.ID == original.ID || replaced.GroupID != f.groupID {
		t.Errorf("replacement = %+v", replaced)
	}

	list, _ := f.ledger.ListExpenses(ctx, f.groupID)
	if len(list) != 1 || list[0].ID != replaced.ID {
		t.Errorf("expenses after replace = %v", list)
	}
	f.assertBalances(t, map[string]int64{"A": 600, "B": -600, "C": 0})

	want := []events.Type{events.ExpenseCreated, events.ExpenseDeleted, events.ExpenseCreated}
	if got := f.events.Types(); !slices.Equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}

	if _, err := f.ledger.ReplaceExpense(ctx, "missing", ledger.NewExpense{}); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("replace missing err = %v, want ErrNotFound", err)
	}
}

func TestBalancesRecomputedAfterWrite(t *testing.T) {
	f := newFixture(t, "A", "B")

	f.assertBalances(t, map[string]int64{"A": 0, "B": 0})
	f.assertBalances(t, map[string]int64{"A": 0, "B": 0})
	if f.cache.Size() != 1 {
		t.Errorf("cache size = %d, want 1", f.cache.Size())
	}

	f.addExpense(t, "A", 100, split.MethodEqual, nil)
	f.assertBalances(t, map[string]int64{"A": 50, "B": -50})
}

func TestBalancesIncludeNewMember(t *testing.T) {
	f := newFixture(t, "A", "B")
	ctx := context.Background()

	f.addExpense(t, "A", 100, split.MethodEqual, nil)
	f.assertBalances(t, map[string]int64{"A": 50, "B": -50})

	if _, err := f.groups.AddMember(ctx, f.groupID, &group.AddMemberRequest{ID: "C", DisplayName: "Carol"}); err != nil {
		t.Fatal(err)
	}
	// past equal splits keep their participants
	f.assertBalances(t, map[string]int64{"A": 50, "B": -50, "C": 0})
}

func TestRemoveMemberWithActivity(t *testing.T) {
	f := newFixture(t, "A", "B", "C")
	ctx := context.Background()

	f.addExpense(t, "A", 100, split.MethodCustom, weights(map[string]int64{"B": 100}))

	if err := f.groups.RemoveMember(ctx, f.groupID, "B"); !errors.Is(err, group.ErrMemberHasActivity) {
		t.Errorf("remove participant err = %v, want ErrMemberHasActivity", err)
	}
	if err := f.groups.RemoveMember(ctx, f.groupID, "A"); !errors.Is(err, ledger.ErrMemberHasActivity) {
		t.Errorf("remove payer err = %v, want ErrMemberHasActivity", err)
	}
	if err := f.groups.RemoveMember(ctx, f.groupID, "C"); err != nil {
		t.Fatalf("remove inactive member: %v", err)
	}
	f.assertBalances(t, map[string]int64{"A": 100, "B": -100})
}

func TestGetPosition(t *testing.T) {
	f := newFixture(t, "A", "B", "C")
	ctx := context.Background()

	f.addExpense(t, "A", 500, split.MethodCustom, weights(map[string]int64{"C": 500}))
	f.addExpense(t, "B", 300, split.MethodCustom, weights(map[string]int64{"C": 300}))

	p, err := f.ledger.GetPosition(ctx, f.groupID, "C")
	if err != nil {
		t.Fatal(err)
	}
	want := []ledger.Transfer{
		{From: "C", To: "A", Amount: money.New(500)},
		{From: "C", To: "B", Amount: money.New(300)},
	}
	if p.Balance.Minor() != -800 || !slices.Equal(p.Owes, want) {
		t.Errorf("position = %+v", p)
	}

	if _, err := f.ledger.GetPosition(ctx, f.groupID, "Z"); !errors.Is(err, ledger.ErrUnknownMember) {
		t.Errorf("unknown member err = %v", err)
	}
}

func TestConcurrentWrites(t *testing.T) {
	f := newFixture(t, "A", "B", "C")
	ctx := context.Background()

	const writers = 40
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payer := []string{"A", "B", "C"}[i%3]
			_, err := f.ledger.AddExpense(ctx, ledger.NewExpense{
				GroupID: f.groupID,
				PayerID: payer,
				Amount:  money.New(int64(100 + i)),
				Method:  split.MethodEqual,
			})
			if err != nil {
				t.Errorf("AddExpense: %v", err)
			}
			if _, err := f.ledger.GetBalances(ctx, f.groupID); err != nil {
				t.Errorf("GetBalances: %v", err)
			}
		}(i)
	}
	wg.Wait()

	list, _ := f.ledger.ListExpenses(ctx, f.groupID)
	if len(list) != writers {
		t.Fatalf("got %d expenses, want %d", len(list), writers)
	}
	b, err := f.ledger.GetBalances(ctx, f.groupID)
	if err != nil {
		t.Fatal(err)
	}
	if !b.Sum().IsZero() {
		t.Errorf("balances sum to %s", b.Sum())
	}
}

// stallingPublisher blocks its first Publish until release is closed or the
// context ends.
type stallingPublisher struct {
	once     sync.Once
	entered  chan struct{}
	release  chan struct{}
	deadline chan bool
}

func newStallingPublisher() *stallingPublisher {
	return &stallingPublisher{
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
		deadline: make(chan bool, 1),
	}
}

func (p *stallingPublisher) Publish(ctx context.Context, _ events.Event) error {
	first := false
	p.once.Do(func() { first = true })
	if !first {
		return nil
	}

	_, ok := ctx.Deadline()
	p.deadline <- ok
	close(p.entered)
	select {
	case <-p.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestSlowPublisherDoesNotBlockGroupWrites(t *testing.T) {
	pub := newStallingPublisher()
	f := newFixtureWith(t, []ledger.Option{ledger.WithPublisher(pub)}, "A", "B")

	firstDone := make(chan error, 1)
	go func() {
		_, err := f.ledger.AddExpense(context.Background(), ledger.NewExpense{
			GroupID: f.groupID,
			PayerID: "A",
			Amount:  money.New(100),
			Method:  split.MethodEqual,
		})
		firstDone <- err
	}()
	<-pub.entered

	secondDone := make(chan error, 1)
	go func() {
		_, err := f.ledger.RecordSettlement(context.Background(), ledger.NewSettlement{
			GroupID: f.groupID,
			FromID:  "B",
			ToID:    "A",
			Amount:  money.New(50),
		})
		secondDone <- err
	}()

	select {
	case err := <-secondDone:
		if err != nil {
			t.Fatalf("RecordSettlement: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("a write waited on another write's event delivery")
	}

	f.assertBalances(t, map[string]int64{"A": 0, "B": 0})

	close(pub.release)
	if err := <-firstDone; err != nil {
		t.Fatalf("AddExpense: %v", err)
	}
}

func TestPublishIsBounded(t *testing.T) {
	pub := newStallingPublisher()
	f := newFixtureWith(t, []ledger.Option{
		ledger.WithPublisher(pub),
		ledger.WithPublishTimeout(20 * time.Millisecond),
	}, "A", "B")

	start := time.Now()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// a cancelled request still delivers; only the publish timeout ends it
	if _, err := f.ledger.AddExpense(ctx, ledger.NewExpense{
		GroupID: f.groupID,
		PayerID: "A",
		Amount:  money.New(100),
		Method:  split.MethodEqual,
	}); err != nil {
		t.Fatalf("AddExpense: %v", err)
	}

	if !<-pub.deadline {
		t.Error("publish context carries no deadline")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("AddExpense took %v with a stalled publisher", elapsed)
	}
}

func TestHandlerSimplifiedDebts(t *testing.T) {
	f := newFixture(t, "A", "B", "C")
	f.addExpense(t, "A", 500, split.MethodCustom, weights(map[string]int64{"C": 500}))
	f.addExpense(t, "B", 300, split.MethodCustom, weights(map[string]int64{"C": 300}))

	srv := httptest.NewServer(ledger.NewHandler(f.ledger).Routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/group/" + f.groupID + "/debts")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body struct {
		Success bool                  `json:"success"`
		Data    ledger.DebtsResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if !body.Success || len(body.Data.Transfers) != 2 {
		t.Fatalf("body = %+v", body)
	}
	first := body.Data.Transfers[0]
	if first.From != "C" || first.To != "A" || first.AmountMinor != 500 || first.Amount != "5.00" || first.ToName != "Member A" {
		t.Errorf("first transfer = %+v", first)
	}
}

func TestHandlerErrors(t *testing.T) {
	f := newFixture(t, "A", "B")
	h := ledger.NewHandler(f.ledger).Routes()

	tests := []struct {
		name string
		path string
		want int
	}{
		{name: "unknown group", path: "/group/missing", want: http.StatusNotFound},
		{name: "unknown member", path: "/group/" + f.groupID + "/members/Z", want: http.StatusBadRequest},
		{name: "balances", path: "/group/" + f.groupID, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

type countingDirectory struct {
	ledger.Directory
	calls atomic.Int32
}

func (d *countingDirectory) Roster(ctx context.Context, groupID string) (*ledger.Roster, error) {
	d.calls.Add(1)
	return d.Directory.Roster(ctx, groupID)
}

func TestHandlerLoadsRosterOnce(t *testing.T) {
	f := newFixture(t, "A", "B")
	f.addExpense(t, "A", 200, split.MethodEqual, nil)

	dir := &countingDirectory{Directory: f.groups}
	svc := ledger.NewService(f.store, f.store, dir, split.NewSplitStrategyFactory(),
		ledger.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	h := ledger.NewHandler(svc).Routes()

	for _, path := range []string{
		"/group/" + f.groupID,
		"/group/" + f.groupID + "/debts",
		"/group/" + f.groupID + "/members/B",
	} {
		t.Run(path, func(t *testing.T) {
			dir.calls.Store(0)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
			}
			if n := dir.calls.Load(); n != 1 {
				t.Errorf("roster loaded %d times, want 1", n)
			}
		})
	}
}

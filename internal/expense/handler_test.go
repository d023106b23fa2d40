package expense_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fkhayef/groupledger/internal/expense"
	"github.com/fkhayef/groupledger/internal/expense/split"
	"github.com/fkhayef/groupledger/internal/group"
	"github.com/fkhayef/groupledger/internal/ledger"
	"github.com/fkhayef/groupledger/internal/storage/memory"
)

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta *struct {
		Total int `json:"total"`
	} `json:"meta"`
}

func setup(t *testing.T) (http.Handler, *ledger.Service, string) {
	t.Helper()

	store := memory.NewStore()
	groups := group.NewService(store)
	l := ledger.NewService(store, store, groups, split.NewSplitStrategyFactory(),
		ledger.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	groups.SetActivityGuard(l)

	g, _, err := groups.Create(context.Background(), &group.CreateGroupRequest{
		Name:     "Trip",
		Currency: "USD",
		Members: []*group.AddMemberRequest{
			{ID: "A", DisplayName: "Ann"},
			{ID: "B", DisplayName: "Ben"},
			{ID: "C", DisplayName: "Cat"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	return expense.NewHandler(expense.NewService(l)).Routes(), l, g.ID
}

func call(t *testing.T, h http.Handler, method, path, body string) (int, apiResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))

	var resp apiResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode %s %s: %v (%s)", method, path, err, rec.Body.String())
	}
	return rec.Code, resp
}

func TestCreateExpense(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantShares map[string]int64
	}{
		{
			name:       "equal over everyone",
			body:       `{"description":"Dinner","amount":"10.00","payer_id":"A","split_method":"equal"}`,
			wantShares: map[string]int64{"A": 334, "B": 333, "C": 333},
		},
		{
			name:       "equal over selected participants",
			body:       `{"amount":"10.01","payer_id":"A","split_method":"EVEN","weights":{"B":"","C":""}}`,
			wantShares: map[string]int64{"B": 501, "C": 500},
		},
		{
			name:       "percentage",
			body:       `{"amount":"9.99","payer_id":"B","split_method":"percentage","weights":{"A":"50","B":"30","C":"20"}}`,
			wantShares: nil,
		},
		{
			name:       "custom in major units",
			body:       `{"amount":"5","payer_id":"A","split_method":"custom","weights":{"A":"2.00","B":"3"}}`,
			wantShares: map[string]int64{"A": 200, "B": 300},
		},
		{
			name:       "shares",
			body:       `{"amount":"0.03","payer_id":"C","split_method":"shares","weights":{"A":"1","C":"2"}}`,
			wantShares: map[string]int64{"A": 1, "C": 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, groupID := setup(t)
			body := strings.Replace(tt.body, "{", `{"group_id":"`+groupID+`",`, 1)

			status, resp := call(t, h, http.MethodPost, "/", body)
			if status != http.StatusCreated {
				t.Fatalf("status = %d: %+v", status, resp.Error)
			}

			var got expense.ExpenseResponse
			if err := json.Unmarshal(resp.Data, &got); err != nil {
				t.Fatal(err)
			}

			var total int64
			for _, s := range got.Shares {
				total += s.AmountMinor
				if tt.wantShares != nil && tt.wantShares[s.MemberID] != s.AmountMinor {
					t.Errorf("share of %s = %d, want %d", s.MemberID, s.AmountMinor, tt.wantShares[s.MemberID])
				}
			}
			if total != got.AmountMinor {
				t.Errorf("shares sum to %d, amount is %d", total, got.AmountMinor)
			}
			if tt.wantShares != nil && len(got.Shares) != len(tt.wantShares) {
				t.Errorf("got %d shares, want %d", len(got.Shares), len(tt.wantShares))
			}
		})
	}
}

func TestCreateExpenseRejected(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{name: "zero amount", body: `{"amount":"0","payer_id":"A","split_method":"equal"}`, wantStatus: http.StatusBadRequest, wantCode: "INVALID_AMOUNT"},
		{name: "not a number", body: `{"amount":"ten","payer_id":"A","split_method":"equal"}`, wantStatus: http.StatusBadRequest, wantCode: "INVALID_AMOUNT"},
		{name: "unknown payer", body: `{"amount":"1","payer_id":"Z","split_method":"equal"}`, wantStatus: http.StatusBadRequest, wantCode: "UNKNOWN_MEMBER"},
		{name: "unknown method", body: `{"amount":"1","payer_id":"A","split_method":"itemized"}`, wantStatus: http.StatusBadRequest, wantCode: "INVALID_SPLIT"},
		{name: "percentages off", body: `{"amount":"9.99","payer_id":"A","split_method":"percentage","weights":{"A":"50","B":"30","C":"19"}}`, wantStatus: http.StatusBadRequest, wantCode: "INVALID_SPLIT"},
		{name: "custom sum off", body: `{"amount":"5","payer_id":"A","split_method":"custom","weights":{"A":"2","B":"2.5"}}`, wantStatus: http.StatusBadRequest, wantCode: "INVALID_SPLIT"},
		{name: "custom sub-cent", body: `{"amount":"0.01","payer_id":"A","split_method":"custom","weights":{"A":"0.005","B":"0.005"}}`, wantStatus: http.StatusBadRequest, wantCode: "INVALID_SPLIT"},
		{name: "weight not a number", body: `{"amount":"1","payer_id":"A","split_method":"shares","weights":{"A":"x"}}`, wantStatus: http.StatusBadRequest, wantCode: "INVALID_SPLIT"},
		{name: "bad date", body: `{"amount":"1","payer_id":"A","split_method":"equal","date":"03/01/2024"}`, wantStatus: http.StatusBadRequest, wantCode: "BAD_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, l, groupID := setup(t)
			body := strings.Replace(tt.body, "{", `{"group_id":"`+groupID+`",`, 1)

			status, resp := call(t, h, http.MethodPost, "/", body)
			if status != tt.wantStatus {
				t.Fatalf("status = %d, want %d", status, tt.wantStatus)
			}
			if resp.Error == nil || resp.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %s", resp.Error, tt.wantCode)
			}

			list, _ := l.ListExpenses(context.Background(), groupID)
			if len(list) != 0 {
				t.Errorf("rejected expense persisted: %v", list)
			}
		})
	}
}

func TestCreateExpenseUnknownGroup(t *testing.T) {
	h, _, _ := setup(t)
	status, resp := call(t, h, http.MethodPost, "/", `{"group_id":"missing","amount":"1","payer_id":"A","split_method":"equal"}`)
	if status != http.StatusNotFound || resp.Error.Code != "NOT_FOUND" {
		t.Errorf("status = %d, error = %+v", status, resp.Error)
	}
}

func TestExpenseLifecycle(t *testing.T) {
	h, l, groupID := setup(t)
	ctx := context.Background()

	status, resp := call(t, h, http.MethodPost, "/", `{"group_id":"`+groupID+`","description":"Taxi","amount":"30","payer_id":"A","split_method":"equal","date":"2024-02-29"}`)
	if status != http.StatusCreated {
		t.Fatalf("create status = %d", status)
	}
	var created expense.ExpenseResponse
	json.Unmarshal(resp.Data, &created)
	if created.Date != "2024-02-29" || created.PayerName != "Ann" || created.Amount != "30.00" {
		t.Errorf("created = %+v", created)
	}

	status, _ = call(t, h, http.MethodGet, "/"+created.ID, "")
	if status != http.StatusOK {
		t.Errorf("get status = %d", status)
	}

	status, resp = call(t, h, http.MethodPut, "/"+created.ID, `{"amount":"12","payer_id":"B","split_method":"custom","weights":{"A":"12"}}`)
	if status != http.StatusOK {
		t.Fatalf("replace status = %d: %+v", status, resp.Error)
	}
	var replaced expense.ExpenseResponse
	json.Unmarshal(resp.Data, &replaced)
	if replaced.ID == created.ID || replaced.Weights["A"] != "12" {
		t.Errorf("replaced = %+v", replaced)
	}

	status, _ = call(t, h, http.MethodGet, "/"+created.ID, "")
	if status != http.StatusNotFound {
		t.Errorf("get replaced original status = %d", status)
	}

	b, err := l.GetBalances(ctx, groupID)
	if err != nil {
		t.Fatal(err)
	}
	if b["A"].Minor() != -1200 || b["B"].Minor() != 1200 || !b["C"].IsZero() {
		t.Errorf("balances after replace = %v", b)
	}

	status, resp = call(t, h, http.MethodGet, "/group/"+groupID+"?per_page=10", "")
	if status != http.StatusOK || resp.Meta == nil || resp.Meta.Total != 1 {
		t.Errorf("list status = %d, meta = %+v", status, resp.Meta)
	}

	status, resp = call(t, h, http.MethodGet, "/group/"+groupID+"?page=922337203685477581&per_page=10", "")
	var page []expense.ExpenseResponse
	json.Unmarshal(resp.Data, &page)
	if status != http.StatusOK || len(page) != 0 || resp.Meta == nil || resp.Meta.Total != 1 {
		t.Errorf("far page status = %d, items = %d, meta = %+v", status, len(page), resp.Meta)
	}

	status, _ = call(t, h, http.MethodDelete, "/"+replaced.ID, "")
	if status != http.StatusOK {
		t.Errorf("delete status = %d", status)
	}
	status, _ = call(t, h, http.MethodDelete, "/"+replaced.ID, "")
	if status != http.StatusNotFound {
		t.Errorf("second delete status = %d", status)
	}

	b, _ = l.GetBalances(ctx, groupID)
	if !b.Sum().IsZero() || !b["A"].IsZero() {
		t.Errorf("balances after delete = %v", b)
	}
}

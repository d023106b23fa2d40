package expense

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/groupledger/internal/expense/split"
	"github.com/fkhayef/groupledger/internal/ledger"
	"github.com/fkhayef/groupledger/pkg/amount"
)

// DateLayout is the wire format of expense dates
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned for dates that are not YYYY-MM-DD
var ErrInvalidDate = errors.New("date must be formatted as YYYY-MM-DD")

// ExpenseInput holds the fields shared by create and update requests.
// Amounts are decimal strings in major units of the group currency.
type ExpenseInput struct {
	Description string `json:"description"`
	Amount      string `json:"amount" example:"30.00"`
	PayerID     string `json:"payer_id"`
	Date        string `json:"date,omitempty" example:"2024-03-01"`
	SplitMethod string `json:"split_method" example:"equal"`
	// Weights per member id: empty or participant keys for equal, percentages
	// for percentage, major-unit amounts for custom, share counts for shares.
	Weights map[string]string `json:"weights,omitempty"`
}

// CreateExpenseRequest represents the request to create an expense
type CreateExpenseRequest struct {
	GroupID string `json:"group_id"`
	ExpenseInput
}

// UpdateExpenseRequest replaces an expense with a corrected one
type UpdateExpenseRequest struct {
	ExpenseInput
}

// toNewExpense validates the wire format and converts it for the ledger
func (in *ExpenseInput) toNewExpense(groupID, currency string) (ledger.NewExpense, error) {
	method, err := split.ParseMethod(in.SplitMethod)
	if err != nil {
		return ledger.NewExpense{}, err
	}

	total, err := amount.Parse(in.Amount, currency)
	if err != nil {
		return ledger.NewExpense{}, err
	}

	var date time.Time
	if s := strings.TrimSpace(in.Date); s != "" {
		if date, err = time.Parse(DateLayout, s); err != nil {
			return ledger.NewExpense{}, fmt.Errorf("%w: %q", ErrInvalidDate, in.Date)
		}
	}

	weights := make(split.Weights, len(in.Weights))
	for id, raw := range in.Weights {
		raw = strings.TrimSpace(raw)
		if raw == "" && method == split.MethodEqual {
			raw = "1"
		}
		w, err := decimal.NewFromString(raw)
		if err != nil {
			return ledger.NewExpense{}, fmt.Errorf("%w: weight %q for %s is not a number", split.ErrInvalidSplit, raw, id)
		}
		if method == split.MethodCustom {
			w = amount.ExactMinorUnits(w, currency)
		}
		weights[id] = w
	}

	return ledger.NewExpense{
		GroupID:     groupID,
		Description: in.Description,
		PayerID:     strings.TrimSpace(in.PayerID),
		Amount:      total,
		Date:        date,
		Method:      method,
		Weights:     weights,
	}, nil
}

// ExpenseResponse represents the response for an expense
type ExpenseResponse struct {
	ID          string            `json:"id"`
	GroupID     string            `json:"group_id"`
	Description string            `json:"description"`
	Currency    string            `json:"currency"`
	Amount      string            `json:"amount"`
	AmountMinor int64             `json:"amount_minor"`
	PayerID     string            `json:"payer_id"`
	PayerName   string            `json:"payer_name"`
	Date        string            `json:"date"`
	SplitMethod split.Method      `json:"split_method"`
	Weights     map[string]string `json:"weights,omitempty"`
	Shares      []*ShareResponse  `json:"shares"`
	CreatedAt   string            `json:"created_at"`
}

// ShareResponse is one participant's owed share
type ShareResponse struct {
	MemberID    string `json:"member_id"`
	DisplayName string `json:"display_name"`
	Amount      string `json:"amount"`
	AmountMinor int64  `json:"amount_minor"`
}

// ToResponse converts a Detail to an ExpenseResponse DTO
func (d *Detail) ToResponse() *ExpenseResponse {
	e, r := d.Expense, d.Roster

	resp := &ExpenseResponse{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Description: e.Description,
		Currency:    r.Currency,
		Amount:      amount.Format(e.Amount, r.Currency),
		AmountMinor: e.Amount.Minor(),
		PayerID:     e.PayerID,
		PayerName:   r.DisplayName(e.PayerID),
		Date:        e.Date.Format(DateLayout),
		SplitMethod: e.Method,
		Shares:      make([]*ShareResponse, 0, len(d.Shares)),
		CreatedAt:   e.CreatedAt.UTC().Format(time.RFC3339),
	}

	if len(e.Weights) > 0 {
		resp.Weights = make(map[string]string, len(e.Weights))
		for id, w := range e.Weights {
			if e.Method == split.MethodCustom {
				w = w.Shift(-amount.Exponent(r.Currency))
			}
			resp.Weights[id] = w.String()
		}
	}

	for _, id := range d.Shares.MemberIDs() {
		share := d.Shares[id]
		resp.Shares = append(resp.Shares, &ShareResponse{
			MemberID:    id,
			DisplayName: r.DisplayName(id),
			Amount:      amount.Format(share, r.Currency),
			AmountMinor: share.Minor(),
		})
	}
	return resp
}

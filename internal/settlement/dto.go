package settlement

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fkhayef/groupledger/internal/ledger"
	"github.com/fkhayef/groupledger/pkg/amount"
)

// DateLayout is the wire format of settlement dates
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned for dates that are not YYYY-MM-DD
var ErrInvalidDate = errors.New("date must be formatted as YYYY-MM-DD")

// CreateSettlementRequest records that FromID paid ToID outside the app
type CreateSettlementRequest struct {
	GroupID string `json:"group_id"`
	FromID  string `json:"from_id"`
	ToID    string `json:"to_id"`
	Amount  string `json:"amount" example:"25.00"`
	Date    string `json:"date,omitempty" example:"2024-03-01"`
	Notes   string `json:"notes,omitempty"`
}

func (req *CreateSettlementRequest) toNewSettlement(currency string) (ledger.NewSettlement, error) {
	total, err := amount.Parse(req.Amount, currency)
	if err != nil {
		return ledger.NewSettlement{}, err
	}

	var date time.Time
	if s := strings.TrimSpace(req.Date); s != "" {
		if date, err = time.Parse(DateLayout, s); err != nil {
			return ledger.NewSettlement{}, fmt.Errorf("%w: %q", ErrInvalidDate, req.Date)
		}
	}

	return ledger.NewSettlement{
		GroupID: req.GroupID,
		FromID:  strings.TrimSpace(req.FromID),
		ToID:    strings.TrimSpace(req.ToID),
		Amount:  total,
		Date:    date,
		Notes:   req.Notes,
	}, nil
}

// SettlementResponse represents the response for a settlement
type SettlementResponse struct {
	ID          string `json:"id"`
	GroupID     string `json:"group_id"`
	FromID      string `json:"from_id"`
	FromName    string `json:"from_name"`
	ToID        string `json:"to_id"`
	ToName      string `json:"to_name"`
	Currency    string `json:"currency"`
	Amount      string `json:"amount"`
	AmountMinor int64  `json:"amount_minor"`
	Date        string `json:"date"`
	Notes       string `json:"notes,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// ToResponse converts a Detail to a SettlementResponse DTO
func (d *Detail) ToResponse() *SettlementResponse {
	s, r := d.Settlement, d.Roster
	return &SettlementResponse{
		ID:          s.ID,
		GroupID:     s.GroupID,
		FromID:      s.FromID,
		FromName:    r.DisplayName(s.FromID),
		ToID:        s.ToID,
		ToName:      r.DisplayName(s.ToID),
		Currency:    r.Currency,
		Amount:      amount.Format(s.Amount, r.Currency),
		AmountMinor: s.Amount.Minor(),
		Date:        s.Date.Format(DateLayout),
		Notes:       s.Notes,
		CreatedAt:   s.CreatedAt.UTC().Format(time.RFC3339),
	}
}

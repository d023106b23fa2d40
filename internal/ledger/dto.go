package ledger

import (
	"github.com/fkhayef/groupledger/pkg/amount"
)

// BalanceResponse is one member's net balance
type BalanceResponse struct {
	MemberID     string `json:"member_id"`
	DisplayName  string `json:"display_name"`
	Balance      string `json:"balance"`
	BalanceMinor int64  `json:"balance_minor"`
}

// GroupBalancesResponse lists every member's balance
type GroupBalancesResponse struct {
	GroupID  string             `json:"group_id"`
	Currency string             `json:"currency"`
	Balances []*BalanceResponse `json:"balances"`
}

// TransferResponse is one simplified debt
type TransferResponse struct {
	From        string `json:"from"`
	FromName    string `json:"from_name"`
	To          string `json:"to"`
	ToName      string `json:"to_name"`
	Amount      string `json:"amount"`
	AmountMinor int64  `json:"amount_minor"`
}

// DebtsResponse lists the transfers that settle a group
type DebtsResponse struct {
	GroupID   string              `json:"group_id"`
	Currency  string              `json:"currency"`
	Transfers []*TransferResponse `json:"transfers"`
}

// PositionResponse is one member's owes / owed-by view
type PositionResponse struct {
	GroupID      string              `json:"group_id"`
	MemberID     string              `json:"member_id"`
	DisplayName  string              `json:"display_name"`
	Currency     string              `json:"currency"`
	Balance      string              `json:"balance"`
	BalanceMinor int64               `json:"balance_minor"`
	Owes         []*TransferResponse `json:"owes"`
	OwedBy       []*TransferResponse `json:"owed_by"`
}

// ToBalancesResponse renders balances in member id order
func ToBalancesResponse(r *Roster, b Balances) *GroupBalancesResponse {
	resp := &GroupBalancesResponse{
		GroupID:  r.GroupID,
		Currency: r.Currency,
		Balances: make([]*BalanceResponse, 0, len(b)),
	}
	for _, id := range b.MemberIDs() {
		resp.Balances = append(resp.Balances, &BalanceResponse{
			MemberID:     id,
			DisplayName:  r.DisplayName(id),
			Balance:      amount.Format(b[id], r.Currency),
			BalanceMinor: b[id].Minor(),
		})
	}
	return resp
}

// ToTransferResponses renders transfers in the order the simplifier produced them
func ToTransferResponses(r *Roster, transfers []Transfer) []*TransferResponse {
	out := make([]*TransferResponse, len(transfers))
	for i, t := range transfers {
		out[i] = &TransferResponse{
			From:        t.From,
			FromName:    r.DisplayName(t.From),
			To:          t.To,
			ToName:      r.DisplayName(t.To),
			Amount:      amount.Format(t.Amount, r.Currency),
			AmountMinor: t.Amount.Minor(),
		}
	}
	return out
}

// ToPositionResponse renders a member position
func ToPositionResponse(r *Roster, p *Position) *PositionResponse {
	return &PositionResponse{
		GroupID:      r.GroupID,
		MemberID:     p.MemberID,
		DisplayName:  r.DisplayName(p.MemberID),
		Currency:     r.Currency,
		Balance:      amount.Format(p.Balance, r.Currency),
		BalanceMinor: p.Balance.Minor(),
		Owes:         ToTransferResponses(r, p.Owes),
		OwedBy:       ToTransferResponses(r, p.OwedBy),
	}
}

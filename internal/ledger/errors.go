package ledger

import (
	"errors"

	"github.com/fkhayef/groupledger/internal/expense/split"
	"github.com/fkhayef/groupledger/internal/money"
)

// Common errors
var (
	ErrInvalidAmount     = money.ErrInvalidAmount
	ErrInvalidSplit      = split.ErrInvalidSplit
	ErrUnknownMember     = errors.New("member is not part of the group")
	ErrSameMember        = errors.New("settlement must be between two different members")
	ErrNotFound          = errors.New("not found")
	ErrUnbalanced        = errors.New("balances do not sum to zero")
	ErrMemberHasActivity = errors.New("member has recorded expenses or settlements")
)

// ErrorCode maps an error onto the stable code used in API responses and
// rejection metrics.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		return "INVALID_AMOUNT"
	case errors.Is(err, ErrInvalidSplit):
		return "INVALID_SPLIT"
	case errors.Is(err, ErrUnknownMember):
		return "UNKNOWN_MEMBER"
	case errors.Is(err, ErrSameMember):
		return "SAME_MEMBER"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrMemberHasActivity):
		return "CONFLICT"
	default:
		return "INTERNAL_ERROR"
	}
}

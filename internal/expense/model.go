package expense

import (
	"github.com/fkhayef/groupledger/internal/expense/split"
	"github.com/fkhayef/groupledger/internal/ledger"
)

// Detail combines a recorded expense with its derived shares and the group
// it was read against
type Detail struct {
	Expense *ledger.Expense
	Shares  split.Allocation
	Roster  *ledger.Roster
}

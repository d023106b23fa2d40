package settlement

import "github.com/fkhayef/groupledger/internal/ledger"

// Detail is a recorded settlement with the group it was read against
type Detail struct {
	Settlement *ledger.Settlement
	Roster     *ledger.Roster
}

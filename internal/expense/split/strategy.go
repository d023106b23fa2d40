package split

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/groupledger/internal/money"
)

// Method defines how an expense amount is divided among members
type Method string

const (
	MethodEqual      Method = "equal"
	MethodPercentage Method = "percentage"
	MethodCustom     Method = "custom"
	MethodShares     Method = "shares"
)

// Methods lists every supported method in display order
var Methods = []Method{MethodEqual, MethodPercentage, MethodCustom, MethodShares}

// ParseMethod accepts the canonical lower-case names plus the legacy
// upper-case EVEN / PERCENTAGE / EXACT / SHARES spelling.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "equal", "even":
		return MethodEqual, nil
	case "percentage":
		return MethodPercentage, nil
	case "custom", "exact":
		return MethodCustom, nil
	case "shares":
		return MethodShares, nil
	default:
		return "", fmt.Errorf("%w: unknown split method %q", ErrInvalidSplit, s)
	}
}

// Weights maps a member id to the method-specific split input:
// nothing meaningful for equal (keys select participants), a percentage for
// percentage, an exact amount in minor units for custom, a share count for shares.
type Weights map[string]decimal.Decimal

// Allocation is the owed share of every participant. Its total always equals
// the expense amount.
type Allocation map[string]money.Money

// Total sums all shares.
func (a Allocation) Total() money.Money {
	total := money.Zero
	for _, share := range a {
		total = total.Add(share)
	}
	return total
}

// MemberIDs returns participant ids in ascending order.
func (a Allocation) MemberIDs() []string {
	ids := make([]string, 0, len(a))
	for id := range a {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Strategy is the interface that all split methods implement
type Strategy interface {
	// Allocate computes every participant's share of amount
	Allocate(amount money.Money, weights Weights, members []string) (Allocation, error)

	// Method returns the identifier of this strategy
	Method() Method

	// Validate checks the inputs without computing shares
	Validate(amount money.Money, weights Weights, members []string) error
}

// Factory creates split strategies based on the requested method
type Factory struct {
	strategies map[Method]Strategy
}

// NewSplitStrategyFactory creates a factory with all built-in strategies
func NewSplitStrategyFactory() *Factory {
	return &Factory{
		strategies: map[Method]Strategy{
			MethodEqual:      &EqualStrategy{},
			MethodPercentage: &PercentageStrategy{},
			MethodCustom:     &CustomStrategy{},
			MethodShares:     &SharesStrategy{},
		},
	}
}

// Create returns the strategy for method
func (f *Factory) Create(method Method) (Strategy, error) {
	s, ok := f.strategies[method]
	if !ok {
		return nil, fmt.Errorf("%w: unknown split method %q", ErrInvalidSplit, method)
	}
	return s, nil
}

// CreateFromString creates a strategy from a request string
func (f *Factory) CreateFromString(method string) (Strategy, error) {
	m, err := ParseMethod(method)
	if err != nil {
		return nil, err
	}
	return f.Create(m)
}

// Allocate picks the strategy for method and runs it.
func (f *Factory) Allocate(method Method, amount money.Money, weights Weights, members []string) (Allocation, error) {
	s, err := f.Create(method)
	if err != nil {
		return nil, err
	}
	return s.Allocate(amount, weights, members)
}

var (
	// ErrInvalidSplit is the root of every split validation failure.
	ErrInvalidSplit = errors.New("invalid split")

	ErrNoParticipants       = fmt.Errorf("%w: at least one participant is required", ErrInvalidSplit)
	ErrInvalidPercentages   = fmt.Errorf("%w: percentages must sum to 100", ErrInvalidSplit)
	ErrPercentageOutOfRange = fmt.Errorf("%w: percentage must be between 0 and 100", ErrInvalidSplit)
	ErrInvalidCustomAmounts = fmt.Errorf("%w: custom amounts must sum to the expense amount", ErrInvalidSplit)
	ErrFractionalAmount     = fmt.Errorf("%w: custom amounts must be whole minor units", ErrInvalidSplit)
	ErrNegativeWeight       = fmt.Errorf("%w: weights cannot be negative", ErrInvalidSplit)
	ErrZeroShares           = fmt.Errorf("%w: at least one share must be positive", ErrInvalidSplit)
)

// validateAmount rejects amounts that cannot be split
func validateAmount(amount money.Money) error {
	return amount.Validate()
}

// sortedKeys returns the weight keys in ascending member id order
func sortedKeys(weights Weights) []string {
	ids := make([]string, 0, len(weights))
	for id := range weights {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

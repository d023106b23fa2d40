package split

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/groupledger/internal/money"
)

// =============================================================================
// PERCENTAGE SPLIT STRATEGY
// Divides the expense based on specified percentages for each participant
// =============================================================================

var (
	hundred = decimal.NewFromInt(100)

	// PercentageTolerance is how far the percentages may sum from 100 (one basis point).
	PercentageTolerance = decimal.New(1, -2)
)

// PercentageStrategy implements the Strategy interface for percentage-based splits
type PercentageStrategy struct{}

// Method returns the split method identifier
func (s *PercentageStrategy) Method() Method {
	return MethodPercentage
}

// Validate checks if the inputs are valid for a percentage split
func (s *PercentageStrategy) Validate(amount money.Money, weights Weights, members []string) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	if len(weights) == 0 {
		return ErrNoParticipants
	}

	total := decimal.Zero
	for id, p := range weights {
		if p.IsNegative() || p.GreaterThan(hundred) {
			return fmt.Errorf("%w: member %s has %s", ErrPercentageOutOfRange, id, p.String())
		}
		total = total.Add(p)
	}

	if total.Sub(hundred).Abs().GreaterThan(PercentageTolerance) {
		return fmt.Errorf("%w: got %s", ErrInvalidPercentages, total.String())
	}
	return nil
}

// Allocate gives each participant its percentage of amount. Percentages are
// applied against their actual sum, so a total within tolerance of 100 still
// allocates the whole amount.
func (s *PercentageStrategy) Allocate(amount money.Money, weights Weights, members []string) (Allocation, error) {
	if err := s.Validate(amount, weights, members); err != nil {
		return nil, err
	}

	ids, values, err := positiveWeights(weights)
	if err != nil {
		return nil, err
	}
	return apportion(amount, ids, values)
}

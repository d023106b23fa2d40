package split

import (
	"github.com/shopspring/decimal"

	"github.com/fkhayef/groupledger/internal/money"
)

// =============================================================================
// SHARES SPLIT STRATEGY
// Divides the expense proportionally to each participant's share count
// =============================================================================

var decimalMax = decimal.NewFromInt(money.MaxMinor)

// SharesStrategy implements the Strategy interface for share-count splits
type SharesStrategy struct{}

// Method returns the split method identifier
func (s *SharesStrategy) Method() Method {
	return MethodShares
}

// Validate checks if the inputs are valid for a shares split
func (s *SharesStrategy) Validate(amount money.Money, weights Weights, members []string) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	if len(weights) == 0 {
		return ErrNoParticipants
	}

	ids, _, err := positiveWeights(weights)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return ErrZeroShares
	}
	return nil
}

// Allocate divides amount proportionally to the share counts
func (s *SharesStrategy) Allocate(amount money.Money, weights Weights, members []string) (Allocation, error) {
	if err := s.Validate(amount, weights, members); err != nil {
		return nil, err
	}

	ids, values, err := positiveWeights(weights)
	if err != nil {
		return nil, err
	}
	return apportion(amount, ids, values)
}

package split

import (
	"fmt"

	"github.com/fkhayef/groupledger/internal/money"
)

// =============================================================================
// CUSTOM SPLIT STRATEGY
// Each participant owes an exact amount; the amounts must sum to the total
// =============================================================================

// CustomStrategy implements the Strategy interface for exact amount splits
type CustomStrategy struct{}

// Method returns the split method identifier
func (s *CustomStrategy) Method() Method {
	return MethodCustom
}

// Validate checks if the inputs are valid for a custom split. There is no
// rounding tolerance: the caller's amounts are authoritative.
func (s *CustomStrategy) Validate(amount money.Money, weights Weights, members []string) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	if len(weights) == 0 {
		return ErrNoParticipants
	}

	total := money.Zero
	for id, w := range weights {
		if w.IsNegative() {
			return fmt.Errorf("%w: member %s", ErrNegativeWeight, id)
		}
		if !w.IsInteger() {
			return fmt.Errorf("%w: member %s has %s", ErrFractionalAmount, id, w.String())
		}
		if w.GreaterThan(decimalMax) {
			return fmt.Errorf("%w: member %s", money.ErrInvalidAmount, id)
		}
		total = total.Add(money.New(w.IntPart()))
	}

	if !total.Equal(amount) {
		return fmt.Errorf("%w: got %d, want %d", ErrInvalidCustomAmounts, total.Minor(), amount.Minor())
	}
	return nil
}

// Allocate returns the specified amounts unchanged
func (s *CustomStrategy) Allocate(amount money.Money, weights Weights, members []string) (Allocation, error) {
	if err := s.Validate(amount, weights, members); err != nil {
		return nil, err
	}

	alloc := make(Allocation, len(weights))
	for id, w := range weights {
		alloc[id] = money.New(w.IntPart())
	}
	return alloc, nil
}

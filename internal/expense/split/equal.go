package split

import (
	"fmt"
	"slices"

	"github.com/fkhayef/groupledger/internal/money"
)

// =============================================================================
// EQUAL SPLIT STRATEGY
// Divides the expense equally among the participants
// =============================================================================

// EqualStrategy implements the Strategy interface for equal splits
type EqualStrategy struct{}

// Method returns the split method identifier
func (s *EqualStrategy) Method() Method {
	return MethodEqual
}

// Validate checks if the inputs are valid for an equal split
func (s *EqualStrategy) Validate(amount money.Money, weights Weights, members []string) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	_, err := equalParticipants(weights, members)
	return err
}

// Allocate divides amount into equal parts. Leftover minor units go one each
// to the participants with the lowest member ids.
func (s *EqualStrategy) Allocate(amount money.Money, weights Weights, members []string) (Allocation, error) {
	if err := s.Validate(amount, weights, members); err != nil {
		return nil, err
	}

	participants, _ := equalParticipants(weights, members)
	parts, err := amount.Distribute(len(participants))
	if err != nil {
		return nil, err
	}

	alloc := make(Allocation, len(participants))
	for i, id := range participants {
		alloc[id] = parts[i]
	}
	return alloc, nil
}

// equalParticipants returns the sorted, de-duplicated participant ids: the
// keys with a positive weight when weights are given, otherwise every member.
func equalParticipants(weights Weights, members []string) ([]string, error) {
	var ids []string
	if len(weights) > 0 {
		for id, w := range weights {
			if w.IsNegative() {
				return nil, fmt.Errorf("%w: member %s", ErrNegativeWeight, id)
			}
			if w.IsZero() {
				continue
			}
			ids = append(ids, id)
		}
	} else {
		ids = append(ids, members...)
	}

	slices.Sort(ids)
	ids = slices.Compact(ids)
	if len(ids) == 0 {
		return nil, ErrNoParticipants
	}
	return ids, nil
}

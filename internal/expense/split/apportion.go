package split

import (
	"fmt"
	"math/big"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/groupledger/internal/money"
)

// apportion divides amount proportionally to weights using the largest
// remainder method. Every participant first gets floor(amount*w/W); the
// minor units left over go one each to the largest fractional remainders,
// ties broken by member id ascending. ids and weights are parallel slices;
// all weights must be positive.
func apportion(amount money.Money, ids []string, weights []decimal.Decimal) (Allocation, error) {
	scaled := scaleToIntegers(weights)

	total := new(big.Int)
	for _, w := range scaled {
		total.Add(total, w)
	}
	if total.Sign() <= 0 {
		return nil, ErrZeroShares
	}

	type part struct {
		id        string
		share     money.Money
		remainder *big.Int
	}
	parts := make([]part, len(ids))
	distributed := money.Zero
	for i, id := range ids {
		share, rem, err := amount.MulRat(scaled[i], total)
		if err != nil {
			return nil, fmt.Errorf("apportion %s: %w", id, err)
		}
		parts[i] = part{id: id, share: share, remainder: rem}
		distributed = distributed.Add(share)
	}

	// Floors undershoot by strictly less than one unit per participant.
	leftover := amount.Sub(distributed).Minor()

	order := make([]int, len(parts))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		if c := parts[b].remainder.Cmp(parts[a].remainder); c != 0 {
			return c
		}
		return strings.Compare(parts[a].id, parts[b].id)
	})
	for i := int64(0); i < leftover; i++ {
		p := &parts[order[i]]
		p.share = p.share.Add(money.New(1))
	}

	alloc := make(Allocation, len(parts))
	for _, p := range parts {
		alloc[p.id] = p.share
	}
	return alloc, nil
}

// scaleToIntegers multiplies every weight by the same power of ten so that all
// of them become integers without changing their ratios.
func scaleToIntegers(weights []decimal.Decimal) []*big.Int {
	minExp := int32(0)
	for _, w := range weights {
		if w.Exponent() < minExp {
			minExp = w.Exponent()
		}
	}

	ten := big.NewInt(10)
	out := make([]*big.Int, len(weights))
	for i, w := range weights {
		coef := w.Coefficient()
		shift := int64(w.Exponent() - minExp)
		if shift > 0 {
			coef.Mul(coef, new(big.Int).Exp(ten, big.NewInt(shift), nil))
		}
		out[i] = coef
	}
	return out
}

// positiveWeights returns the members with a weight greater than zero, sorted
// by id, and rejects negative weights.
func positiveWeights(weights Weights) ([]string, []decimal.Decimal, error) {
	var ids []string
	var values []decimal.Decimal
	for _, id := range sortedKeys(weights) {
		w := weights[id]
		if w.IsNegative() {
			return nil, nil, fmt.Errorf("%w: member %s", ErrNegativeWeight, id)
		}
		if w.IsZero() {
			continue
		}
		ids = append(ids, id)
		values = append(values, w)
	}
	return ids, values, nil
}

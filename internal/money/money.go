// Package money implements exact currency amounts in integer minor units.
//
// A Money value is immutable. All arithmetic returns a new value; there is no
// floating point anywhere in this package. Converting to and from decimal
// display strings is done at the API boundary (see pkg/amount).
package money

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"
)

// MaxMinor bounds the absolute value of a single recorded amount. Sums of a
// realistic number of such amounts stay far away from int64 overflow.
const MaxMinor int64 = 1_000_000_000_000_000

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrZeroParts     = errors.New("cannot distribute into zero parts")
	ErrZeroDivisor   = errors.New("divisor must be non-zero")
)

// Money is a signed amount in minor units (cents for USD).
type Money struct {
	minor int64
}

// Zero is the zero amount.
var Zero = Money{}

// New returns an amount of the given minor units.
func New(minor int64) Money {
	return Money{minor: minor}
}

// Minor returns the amount in minor units.
func (m Money) Minor() int64 {
	return m.minor
}

func (m Money) Add(o Money) Money {
	return Money{minor: m.minor + o.minor}
}

func (m Money) Sub(o Money) Money {
	return Money{minor: m.minor - o.minor}
}

func (m Money) Neg() Money {
	return Money{minor: -m.minor}
}

func (m Money) Abs() Money {
	if m.minor < 0 {
		return m.Neg()
	}
	return m
}

// Cmp returns -1, 0 or +1.
func (m Money) Cmp(o Money) int {
	switch {
	case m.minor < o.minor:
		return -1
	case m.minor > o.minor:
		return 1
	default:
		return 0
	}
}

func (m Money) Equal(o Money) bool { return m.minor == o.minor }
func (m Money) IsZero() bool       { return m.minor == 0 }
func (m Money) IsPositive() bool   { return m.minor > 0 }
func (m Money) IsNegative() bool   { return m.minor < 0 }

// Min returns the smaller of m and o.
func Min(m, o Money) Money {
	if m.minor <= o.minor {
		return m
	}
	return o
}

// Sum adds all amounts.
func Sum(amounts ...Money) Money {
	var total int64
	for _, a := range amounts {
		total += a.minor
	}
	return Money{minor: total}
}

// Validate reports ErrInvalidAmount unless 0 < m <= MaxMinor.
func (m Money) Validate() error {
	if m.minor <= 0 {
		return fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount)
	}
	if m.minor > MaxMinor {
		return fmt.Errorf("%w: exceeds %d minor units", ErrInvalidAmount, MaxMinor)
	}
	return nil
}

// MulRat computes m * num / den exactly. It returns the floored quotient and
// the non-negative remainder of the division, so that
// quotient*den + remainder == m*num. den must be positive.
func (m Money) MulRat(num, den *big.Int) (Money, *big.Int, error) {
	if den.Sign() <= 0 {
		return Zero, nil, ErrZeroDivisor
	}
	product := new(big.Int).Mul(big.NewInt(m.minor), num)
	q, r := new(big.Int), new(big.Int)
	// DivMod is Euclidean: r is always in [0, den).
	q.DivMod(product, den, r)
	if !q.IsInt64() {
		return Zero, nil, fmt.Errorf("%w: product overflows", ErrInvalidAmount)
	}
	return Money{minor: q.Int64()}, r, nil
}

// Distribute splits m into n parts that differ by at most one minor unit.
// The first |m| mod n parts receive the extra unit; callers decide the order
// of recipients.
func (m Money) Distribute(n int) ([]Money, error) {
	if n <= 0 {
		return nil, ErrZeroParts
	}
	base := m.minor / int64(n)
	rem := m.minor % int64(n)
	step := int64(1)
	if rem < 0 {
		rem = -rem
		step = -1
	}

	parts := make([]Money, n)
	for i := range parts {
		parts[i] = Money{minor: base}
		if int64(i) < rem {
			parts[i].minor += step
		}
	}
	return parts, nil
}

// String renders the raw minor units, e.g. "1234". Presentation belongs to pkg/amount.
func (m Money) String() string {
	return strconv.FormatInt(m.minor, 10)
}

// MarshalJSON encodes the amount as an integer of minor units.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.minor)
}

// UnmarshalJSON decodes an integer of minor units.
func (m *Money) UnmarshalJSON(data []byte) error {
	var minor int64
	if err := json.Unmarshal(data, &minor); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	m.minor = minor
	return nil
}

// Value stores the amount as BIGINT.
func (m Money) Value() (driver.Value, error) {
	return m.minor, nil
}

// Scan reads a BIGINT column.
func (m *Money) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		m.minor = v
	case []byte:
		n, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return fmt.Errorf("scan money: %w", err)
		}
		m.minor = n
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("scan money: %w", err)
		}
		m.minor = n
	default:
		return fmt.Errorf("scan money: unsupported type %T", src)
	}
	return nil
}

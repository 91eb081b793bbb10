package models

import (
	"fmt"
	"math/big"
)

// i128 bounds: [-2^127, 2^127-1]
var (
	maxI128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	minI128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
)

// Amount is a signed 128-bit integer quantity. Arithmetic saturates at the i128
// bounds rather than wrapping or growing arbitrarily. The zero value is 0.
type Amount struct {
	i big.Int
}

// NewAmount creates an Amount from an int64.
func NewAmount(v int64) Amount {
	var a Amount
	a.i.SetInt64(v)
	return a
}

// ParseAmount parses a base-10 string into an Amount. Values outside the signed
// 128-bit range are rejected.
func ParseAmount(s string) (Amount, error) {
	var a Amount
	if _, ok := a.i.SetString(s, 10); !ok {
		return Amount{}, fmt.Errorf("invalid amount: %q", s)
	}
	if a.i.Cmp(maxI128) > 0 || a.i.Cmp(minI128) < 0 {
		return Amount{}, fmt.Errorf("amount out of 128-bit range: %q", s)
	}
	return a, nil
}

// SaturatingAdd returns a+b clamped to the i128 bounds.
func (a Amount) SaturatingAdd(b Amount) Amount {
	var sum Amount
	sum.i.Add(&a.i, &b.i)
	if sum.i.Cmp(maxI128) > 0 {
		sum.i.Set(maxI128)
	} else if sum.i.Cmp(minI128) < 0 {
		sum.i.Set(minI128)
	}
	return sum
}

// Cmp compares a and b, returning -1, 0 or +1.
func (a Amount) Cmp(b Amount) int {
	return a.i.Cmp(&b.i)
}

// Sign returns -1, 0 or +1 for negative, zero and positive amounts.
func (a Amount) Sign() int {
	return a.i.Sign()
}

// IsPositive reports whether the amount is strictly greater than zero.
func (a Amount) IsPositive() bool {
	return a.i.Sign() > 0
}

func (a Amount) String() string {
	return a.i.String()
}

// MarshalJSON encodes the amount as a decimal string so 128-bit values survive
// JSON number precision limits.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.i.String() + `"`), nil
}

// UnmarshalJSON accepts either a quoted decimal string or a bare JSON number.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// MaxAmount returns the largest representable Amount (2^127 - 1).
func MaxAmount() Amount {
	var a Amount
	a.i.Set(maxI128)
	return a
}

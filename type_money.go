package investax

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// ErrCurrencyMismatch is returned by Cash arithmetic between two different
// currencies. It always indicates a programming or data error.
var ErrCurrencyMismatch = fmt.Errorf("currency mismatch")

// Cash represents a monetary value tagged with its currency.
//
// Arithmetic between two Cash values is strict: operands must carry the
// same currency or the operation fails with ErrCurrencyMismatch.
type Cash struct {
	value decimal.Decimal // as major unit value
	cur   string
}

func C[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T, currency string) Cash {
	return Cash{value: newDecimal(value), cur: currency}
}

// NewCash returns a Cash value for the given currency and amount.
func NewCash(currency string, amount decimal.Decimal) Cash {
	return Cash{value: amount, cur: currency}
}

// Zero returns the zero amount in the given currency.
func Zero(currency string) Cash {
	return Cash{value: decimal.Zero, cur: currency}
}

// currency returns the money's full currency description.
func (c Cash) currency() money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, c.cur).Currency()
}

// String returns the string representation of the cash value.
func (c Cash) String() string {
	cur := c.currency()
	dec := c.value.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

// SignedString returns the string representation of the cash value with a sign.
// 0 is represented as a "-".
func (c Cash) SignedString() string {
	if c.value.IsZero() {
		return "-"
	}
	if c.value.IsPositive() {
		return "+" + c.String()
	}
	return c.String()
}

func (c Cash) Currency() string         { return c.cur }
func (c Cash) Amount() decimal.Decimal  { return c.value }
func (c Cash) Equal(n Cash) bool        { return c.value.Equal(n.value) && c.cur == n.cur }
func (c Cash) IsZero() bool             { return c.value.IsZero() }
func (c Cash) IsPositive() bool         { return c.value.IsPositive() }
func (c Cash) IsNegative() bool         { return c.value.IsNegative() }
func (c Cash) Neg() Cash                { return Cash{value: c.value.Neg(), cur: c.cur} }
func (c Cash) Mul(n Quantity) Cash      { return Cash{value: c.value.Mul(n.value), cur: c.cur} }
func (c Cash) DivBy(n Quantity) Cash    { return Cash{value: c.value.Div(n.value), cur: c.cur} }
func (c Cash) MulDec(n decimal.Decimal) Cash {
	return Cash{value: c.value.Mul(n), cur: c.cur}
}

// Round rounds the amount to 2 decimal places (cents), half away from zero.
func (c Cash) Round() Cash {
	return Cash{value: c.value.Round(2), cur: c.cur}
}

// RoundTo rounds the amount to the given number of decimal places.
func (c Cash) RoundTo(places int32) Cash {
	return Cash{value: c.value.Round(places), cur: c.cur}
}

func (c Cash) sameCurrency(n Cash) error {
	if c.cur != n.cur {
		return fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, c.cur, n.cur)
	}
	return nil
}

// Add returns c + n or ErrCurrencyMismatch when the currencies differ.
func (c Cash) Add(n Cash) (Cash, error) {
	if err := c.sameCurrency(n); err != nil {
		return Cash{}, err
	}
	return Cash{value: c.value.Add(n.value), cur: c.cur}, nil
}

// Sub returns c - n or ErrCurrencyMismatch when the currencies differ.
func (c Cash) Sub(n Cash) (Cash, error) {
	if err := c.sameCurrency(n); err != nil {
		return Cash{}, err
	}
	return Cash{value: c.value.Sub(n.value), cur: c.cur}, nil
}

// Div returns the ratio c / n or ErrCurrencyMismatch when the currencies differ.
func (c Cash) Div(n Cash) (decimal.Decimal, error) {
	if err := c.sameCurrency(n); err != nil {
		return decimal.Decimal{}, err
	}
	return c.value.Div(n.value), nil
}

// MustAdd is Add for call sites where same currency is a checked invariant.
func (c Cash) MustAdd(n Cash) Cash {
	r, err := c.Add(n)
	if err != nil {
		panic(err.Error())
	}
	return r
}

// MustSub is Sub for call sites where same currency is a checked invariant.
func (c Cash) MustSub(n Cash) Cash {
	r, err := c.Sub(n)
	if err != nil {
		panic(err.Error())
	}
	return r
}

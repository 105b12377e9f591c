package investax

import (
	"errors"
	"testing"
)

func TestCashArithmetic(t *testing.T) {
	a := C(10.50, "USD")
	b := C(2.25, "USD")

	sum, err := a.Add(b)
	if err != nil {
		t.Fatal(err)
	}
	if !sum.Equal(C(12.75, "USD")) {
		t.Errorf("Add = %s, want 12.75 USD", sum)
	}

	diff, err := a.Sub(b)
	if err != nil {
		t.Fatal(err)
	}
	if !diff.Equal(C(8.25, "USD")) {
		t.Errorf("Sub = %s, want 8.25 USD", diff)
	}

	ratio, err := C(9, "USD").Div(b)
	if err != nil {
		t.Fatal(err)
	}
	if !ratio.Equal(Q(4).Decimal()) {
		t.Errorf("Div = %s, want 4", ratio)
	}
}

func TestCashCurrencyMismatch(t *testing.T) {
	a := C(10, "USD")
	b := C(10, "RUB")

	if _, err := a.Add(b); !errors.Is(err, ErrCurrencyMismatch) {
		t.Errorf("Add across currencies: got %v, want ErrCurrencyMismatch", err)
	}
	if _, err := a.Sub(b); !errors.Is(err, ErrCurrencyMismatch) {
		t.Errorf("Sub across currencies: got %v, want ErrCurrencyMismatch", err)
	}
	if _, err := a.Div(b); !errors.Is(err, ErrCurrencyMismatch) {
		t.Errorf("Div across currencies: got %v, want ErrCurrencyMismatch", err)
	}
}

func TestCashRound(t *testing.T) {
	testCases := []struct {
		in   Cash
		want Cash
	}{
		{C(1.005, "USD"), C(1.01, "USD")},
		{C(1.004, "USD"), C(1.00, "USD")},
		{C(-1.005, "USD"), C(-1.01, "USD")}, // half away from zero
		{C(13.4950, "RUB"), C(13.50, "RUB")},
	}
	for _, tc := range testCases {
		if got := tc.in.Round(); !got.Equal(tc.want) {
			t.Errorf("%s.Round() = %s, want %s", tc.in.Amount(), got.Amount(), tc.want.Amount())
		}
	}
}

func TestCashMulDiv(t *testing.T) {
	price := C(12.5, "USD")
	if got := price.Mul(Q(4)); !got.Equal(C(50, "USD")) {
		t.Errorf("Mul = %s, want 50 USD", got)
	}
	if got := C(50, "USD").DivBy(Q(4)); !got.Equal(price) {
		t.Errorf("DivBy = %s, want 12.5 USD", got)
	}
}

func TestCashSignedString(t *testing.T) {
	if got := C(0, "USD").SignedString(); got != "-" {
		t.Errorf("zero SignedString = %q, want %q", got, "-")
	}
	if got := C(5, "USD").SignedString(); got[0] != '+' {
		t.Errorf("positive SignedString = %q, want leading +", got)
	}
	if got := C(-5, "USD").SignedString(); got[0] == '+' {
		t.Errorf("negative SignedString = %q", got)
	}
}

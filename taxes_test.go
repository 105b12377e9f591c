package investax

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRoundTax(t *testing.T) {
	testCases := []struct {
		tax       string
		precision int32
		want      string
	}{
		{"13.4950", 0, "14"},  // rounds to 13.50 first, then up
		{"13.4949", 0, "13"},  // rounds to 13.49 first, then down
		{"1.005", 2, "1.01"}, // half away from zero
		{"90.4956", 0, "91"}, // 90.50 first, then up
		{"10.644", 2, "10.64"},
	}
	for _, tc := range testCases {
		tax := decimal.RequireFromString(tc.tax)
		want := decimal.RequireFromString(tc.want)
		if got := RoundTax(tax, tc.precision); !got.Equal(want) {
			t.Errorf("RoundTax(%s, %d) = %s, want %s", tc.tax, tc.precision, got, want)
		}
	}
}

func TestParseTaxExemption(t *testing.T) {
	testCases := []struct {
		in      string
		want    TaxExemption
		wantErr bool
	}{
		{in: "long-term-ownership", want: ExemptionLongTermOwnership},
		{in: "tax-free", want: ExemptionTaxFree},
		{in: "unknown-regime", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range testCases {
		got, err := ParseTaxExemption(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseTaxExemption(%q) = %v, want error", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTaxExemption(%q) failed: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseTaxExemption(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestValidateTaxExemptions(t *testing.T) {
	russian := NewBroker("Tinkoff", JurisdictionRussia)
	american := NewBroker("Interactive Brokers", JurisdictionUsa)

	if err := ValidateTaxExemptions(american, nil); err != nil {
		t.Errorf("no exemptions must always validate: %v", err)
	}
	if err := ValidateTaxExemptions(russian, []TaxExemption{ExemptionLongTermOwnership}); err != nil {
		t.Errorf("LTO on a Russian broker must validate: %v", err)
	}
	if err := ValidateTaxExemptions(american, []TaxExemption{ExemptionLongTermOwnership}); err == nil {
		t.Error("exemptions on a non-Russian broker must be rejected")
	}
	if err := ValidateTaxExemptions(russian, []TaxExemption{ExemptionLongTermOwnership, ExemptionTaxFree}); err == nil {
		t.Error("multiple exemptions must be rejected")
	}
}

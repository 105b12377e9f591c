package investax

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func rubBuy(symbol string, date Date, quantity int, price, commission float64) *StockBuy {
	return NewStockBuy(symbol, Q(quantity), SourceTrade,
		C(price, "RUB"), C(price*float64(quantity), "RUB"), C(commission, "RUB"),
		date, date)
}

func rubSell(symbol string, date Date, quantity int, price, commission float64) *StockSell {
	return NewStockSell(symbol, Q(quantity),
		C(price, "RUB"), C(price*float64(quantity), "RUB"), C(commission, "RUB"),
		date, date)
}

func calculateSell(t *testing.T, s *Statement, exemptions []TaxExemption, converter *Converter) *SellDetails {
	t.Helper()
	if err := s.ProcessTrades(); err != nil {
		t.Fatal(err)
	}
	sell := s.StockSells[0]
	details, err := sell.Calculate(Russia(nil, nil, nil), sell.ExecutionDate.Year(), exemptions, converter)
	if err != nil {
		t.Fatal(err)
	}
	return details
}

func TestCalculateLocalTrade(t *testing.T) {
	s := NewStatement(NewBroker("Tinkoff", JurisdictionRussia))
	s.StockBuys = append(s.StockBuys, rubBuy("SBER", NewDate(2022, time.January, 10), 10, 1000, 10))
	s.StockSells = append(s.StockSells, rubSell("SBER", NewDate(2022, time.August, 10), 10, 1200, 12))

	details := calculateSell(t, s, nil, NewConverter("RUB", nil))

	wantCash := func(name string, got Cash, want float64) {
		t.Helper()
		if !got.Equal(C(want, "RUB")) {
			t.Errorf("%s = %s, want %v", name, got.Amount(), want)
		}
	}

	wantCash("Revenue", details.Revenue, 12000)
	wantCash("LocalRevenue", details.LocalRevenue, 12000)
	wantCash("LocalCommission", details.LocalCommission, 12)
	wantCash("PurchaseLocalCost", details.PurchaseLocalCost, 10010)
	wantCash("TotalLocalCost", details.TotalLocalCost, 10022)
	wantCash("LocalProfit", details.LocalProfit, 1978)
	wantCash("TaxableLocalProfit", details.TaxableLocalProfit, 1978)
	wantCash("TaxToPay", details.TaxToPay, 257) // 1978 * 13%, whole rubles
	wantCash("TaxDeduction", details.TaxDeduction, 0)

	if details.TaxExemptionApplied() {
		t.Error("no exemption was configured")
	}
	if details.RealLocalProfitRatio == nil {
		t.Fatal("missing real profit ratio")
	}
	// (1978 - 257) / 10010
	want := decimal.NewFromInt(1721).Div(decimal.NewFromInt(10010))
	if !details.RealLocalProfitRatio.Equal(want) {
		t.Errorf("RealLocalProfitRatio = %s, want %s", details.RealLocalProfitRatio, want)
	}
}

func TestCalculateLtoDeductible(t *testing.T) {
	s := NewStatement(NewBroker("Tinkoff", JurisdictionRussia))
	s.StockBuys = append(s.StockBuys,
		rubBuy("SBER", NewDate(2018, time.January, 10), 10, 1000, 0),
		rubBuy("SBER", NewDate(2021, time.June, 1), 10, 1100, 0),
	)
	s.StockSells = append(s.StockSells, rubSell("SBER", NewDate(2022, time.August, 10), 20, 2000, 0))

	details := calculateSell(t, s, []TaxExemption{ExemptionLongTermOwnership}, NewConverter("RUB", nil))

	if !details.TaxExemptionApplied() {
		t.Fatal("exemption must apply to the long-held lot")
	}
	if details.FIFO[0].LtoDeductible == nil || details.FIFO[0].OwnershipYears != 4 {
		t.Errorf("first lot: deductible=%v years=%d, want a deductible after 4 years",
			details.FIFO[0].LtoDeductible, details.FIFO[0].OwnershipYears)
	}
	if details.FIFO[1].LtoDeductible != nil || details.FIFO[1].OwnershipYears != 1 {
		t.Errorf("second lot: deductible=%v years=%d, want taxable after 1 year",
			details.FIFO[1].LtoDeductible, details.FIFO[1].OwnershipYears)
	}

	// The deductible profit stays inside the taxable profit: the annual
	// limit is only applied by the net calculator.
	if !details.TaxableLocalProfit.Equal(C(19000, "RUB")) {
		t.Errorf("TaxableLocalProfit = %s, want 19000", details.TaxableLocalProfit.Amount())
	}
	if !details.LocalProfit.Equal(C(19000, "RUB")) {
		t.Errorf("LocalProfit = %s, want 19000", details.LocalProfit.Amount())
	}
	if !details.TaxToPay.Equal(C(2470, "RUB")) {
		t.Errorf("TaxToPay = %s, want 2470", details.TaxToPay.Amount())
	}
	if !details.TaxDeduction.IsZero() {
		t.Errorf("TaxDeduction = %s, want 0", details.TaxDeduction.Amount())
	}

	// The long-held lot's profit is carried for per-year deduction
	// accounting: 10 x 2000 revenue against a 10000 cost basis.
	if len(details.LtoDeductibles) != 1 {
		t.Fatalf("got %d LTO deductibles, want 1", len(details.LtoDeductibles))
	}
	if !details.LtoDeductibles[0].Profit.Equal(decimal.NewFromInt(10000)) || details.LtoDeductibles[0].Years != 4 {
		t.Errorf("LtoDeductibles = %+v, want 10000 over 4 years", details.LtoDeductibles[0])
	}
}

func TestCalculateLtoAtLoss(t *testing.T) {
	// An eligible lot sold at a loss stays fully deductible: the exemption
	// never converts a loss into a non-deductible one.
	s := NewStatement(NewBroker("Tinkoff", JurisdictionRussia))
	s.StockBuys = append(s.StockBuys, rubBuy("SBER", NewDate(2018, time.January, 10), 10, 2000, 0))
	s.StockSells = append(s.StockSells, rubSell("SBER", NewDate(2022, time.August, 10), 10, 1500, 0))

	details := calculateSell(t, s, []TaxExemption{ExemptionLongTermOwnership}, NewConverter("RUB", nil))

	if details.TaxExemptionApplied() {
		t.Error("a losing lot must not be exempted")
	}
	if !details.TaxableLocalProfit.Equal(C(-5000, "RUB")) {
		t.Errorf("TaxableLocalProfit = %s, want -5000", details.TaxableLocalProfit.Amount())
	}
	if !details.TaxToPay.IsZero() {
		t.Errorf("TaxToPay = %s, want 0", details.TaxToPay.Amount())
	}
	if len(details.LtoDeductibles) != 0 {
		t.Errorf("LtoDeductibles = %+v, want none", details.LtoDeductibles)
	}
}

func TestCalculateTaxFree(t *testing.T) {
	s := NewStatement(NewBroker("Tinkoff", JurisdictionRussia))
	s.StockBuys = append(s.StockBuys, rubBuy("SBER", NewDate(2022, time.January, 10), 10, 1000, 0))
	s.StockSells = append(s.StockSells, rubSell("SBER", NewDate(2022, time.August, 10), 10, 1200, 0))

	details := calculateSell(t, s, []TaxExemption{ExemptionTaxFree}, NewConverter("RUB", nil))

	if !details.TaxExemptionApplied() {
		t.Fatal("tax-free accounts exempt unconditionally")
	}
	if !details.TaxableLocalProfit.IsZero() {
		t.Errorf("TaxableLocalProfit = %s, want 0", details.TaxableLocalProfit.Amount())
	}
	if !details.TaxToPay.IsZero() {
		t.Errorf("TaxToPay = %s, want 0", details.TaxToPay.Amount())
	}
	if len(details.LtoDeductibles) != 0 {
		t.Errorf("LtoDeductibles = %+v, want none", details.LtoDeductibles)
	}
}

func TestCalculateForeignCurrency(t *testing.T) {
	buyDate := NewDate(2022, time.March, 10)
	sellDate := NewDate(2022, time.June, 10)

	s := NewStatement(NewBroker("Interactive Brokers", JurisdictionUsa))
	s.StockBuys = append(s.StockBuys, NewStockBuy("AAPL", Q(10), SourceTrade,
		C(100, "USD"), C(1000, "USD"), C(1, "USD"), buyDate, buyDate))
	s.StockSells = append(s.StockSells, NewStockSell("AAPL", Q(10),
		C(150, "USD"), C(1500, "USD"), C(1, "USD"), sellDate, sellDate))

	converter := NewConverter("RUB", nil)
	converter.AddRates("USD", []CurrencyRate{
		{Date: buyDate, Price: decimal.NewFromInt(80)},
		{Date: sellDate, Price: decimal.NewFromInt(60)},
	})

	details := calculateSell(t, s, nil, converter)

	// The cost basis converts at the purchase-date rate, the revenue at
	// the sell-date rate.
	if !details.LocalRevenue.Equal(C(90000, "RUB")) {
		t.Errorf("LocalRevenue = %s, want 90000", details.LocalRevenue.Amount())
	}
	if !details.PurchaseLocalCost.Equal(C(80080, "RUB")) {
		t.Errorf("PurchaseLocalCost = %s, want 80080 (at the March rate)", details.PurchaseLocalCost.Amount())
	}
	if !details.TotalLocalCost.Equal(C(80140, "RUB")) {
		t.Errorf("TotalLocalCost = %s, want 80140", details.TotalLocalCost.Amount())
	}
	if !details.LocalProfit.Equal(C(9860, "RUB")) {
		t.Errorf("LocalProfit = %s, want 9860", details.LocalProfit.Amount())
	}
	if !details.TaxToPay.Equal(C(1282, "RUB")) {
		t.Errorf("TaxToPay = %s, want 1282", details.TaxToPay.Amount())
	}

	// The trade-currency view never converts: 1500 - 1002.
	if !details.Profit.Equal(C(498, "USD")) {
		t.Errorf("Profit = %s, want 498 USD", details.Profit.Amount())
	}
}

package investax

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func testBuy(t *testing.T, quantity int, price float64) *StockBuy {
	t.Helper()
	date := NewDate(2022, time.March, 10)
	return NewStockBuy("AAPL", Q(quantity), SourceTrade,
		C(price, "USD"), C(price*float64(quantity), "USD"), C(1, "USD"),
		date, date.Add(2))
}

func TestStockBuySell(t *testing.T) {
	lot := testBuy(t, 10, 100)

	if lot.IsSold() {
		t.Error("a fresh lot must not be sold")
	}
	if !lot.Unsold().Equal(Q(10)) {
		t.Errorf("Unsold = %s, want 10", lot.Unsold())
	}

	lot.Sell(Q(4))
	if !lot.Unsold().Equal(Q(6)) {
		t.Errorf("Unsold = %s, want 6", lot.Unsold())
	}

	lot.Sell(Q(6))
	if !lot.IsSold() {
		t.Error("fully consumed lot must be sold")
	}
}

func TestStockBuyOverconsume(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic")
		}
	}()
	testBuy(t, 10, 100).Sell(Q(11))
}

func TestStockBuySplit(t *testing.T) {
	lot := testBuy(t, 10, 100)
	lot.Sell(Q(4))

	lot.Split(Q(3))

	if !lot.Quantity.Equal(Q(30)) {
		t.Errorf("Quantity = %s, want 30", lot.Quantity)
	}
	if !lot.Unsold().Equal(Q(18)) {
		t.Errorf("Unsold = %s, want 18 (6 pre-split shares)", lot.Unsold())
	}
	if !lot.Multiplier.Equal(Q(3)) {
		t.Errorf("Multiplier = %s, want 3", lot.Multiplier)
	}
	// The total cost is unchanged: splits redistribute, they don't spend.
	if !lot.Volume.Equal(C(1000, "USD")) {
		t.Errorf("Volume = %s, want 1000 USD", lot.Volume.Amount())
	}
	// The cost fraction of the remaining shares is preserved.
	if got := lot.costFraction(Q(18)); !got.Decimal().Equal(decimal.RequireFromString("0.6")) {
		t.Errorf("costFraction = %s, want 0.6", got)
	}
}

func TestNewStockBuyDerivesPrice(t *testing.T) {
	date := NewDate(2022, time.March, 10)

	// Corporate-action lots often carry a volume without a price.
	lot := NewStockBuy("VTRS", Q(4), SourceCorporateAction,
		Zero("USD"), C(58.08, "USD"), Zero("USD"), date, date)

	if !lot.Price.Amount().Equal(decimal.RequireFromString("14.52")) {
		t.Errorf("derived price = %s, want 14.52", lot.Price.Amount())
	}
}

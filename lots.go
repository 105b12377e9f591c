package investax

// StockSource tells whether a buy lot comes from a market trade or from a
// corporate action (spin-off, grant, rename). Corporate-action-sourced
// profit can be taxed or disclosed differently, so the tag survives into
// the FIFO breakdown.
type StockSource int

const (
	SourceTrade StockSource = iota
	SourceCorporateAction
)

func (s StockSource) String() string {
	switch s {
	case SourceTrade:
		return "trade"
	case SourceCorporateAction:
		return "corporate action"
	default:
		return "unknown"
	}
}

// StockBuy is an open buy lot owned by the per-symbol FIFO queue during
// matching.
//
// Quantity and the sold counter are kept in current (post-split) units:
// a stock split scales both, which preserves consumed cost fractions.
// Volume is the total cost of the lot and never changes, so a split
// divides the cost across the new share count. Price keeps the original
// per-unit price; Multiplier records the cumulative split factor.
type StockBuy struct {
	Symbol   string
	Quantity Quantity

	Source StockSource

	// All of the following values can be zero for corporate-action-sourced
	// lots.
	Price      Cash
	Volume     Cash // may differ slightly from price * quantity due to broker-side rounding
	Commission Cash

	ConclusionDate Date
	ExecutionDate  Date

	Multiplier Quantity

	sold Quantity
}

// NewStockBuy creates an open lot. A zero price with a non-zero volume is
// back-computed from the volume (derived-cost corporate action lots).
func NewStockBuy(
	symbol string, quantity Quantity, source StockSource,
	price, volume, commission Cash, conclusionDate, executionDate Date,
) *StockBuy {
	if price.IsZero() && !volume.IsZero() && !quantity.IsZero() {
		if derived, err := CalculatePrice(quantity, volume); err == nil {
			price = derived
		}
	}
	return &StockBuy{
		Symbol:         symbol,
		Quantity:       quantity,
		Source:         source,
		Price:          price,
		Volume:         volume,
		Commission:     commission,
		ConclusionDate: conclusionDate,
		ExecutionDate:  executionDate,
		Multiplier:     Q(1),
	}
}

// IsSold reports whether the lot is fully consumed.
func (b *StockBuy) IsSold() bool {
	return b.sold.Equal(b.Quantity)
}

// Unsold returns the remaining quantity of the lot in current units.
func (b *StockBuy) Unsold() Quantity {
	return b.Quantity.Sub(b.sold)
}

// Sell consumes a quantity from the lot.
func (b *StockBuy) Sell(quantity Quantity) {
	if b.Unsold().LessThan(quantity) {
		panic("an attempt to sell more than the lot holds")
	}
	b.sold = b.sold.Add(quantity)
}

// Split scales the lot by the split ratio. Total cost is unchanged.
func (b *StockBuy) Split(ratio Quantity) {
	b.Quantity = b.Quantity.Mul(ratio)
	b.sold = b.sold.Mul(ratio)
	b.Multiplier = b.Multiplier.Mul(ratio)
}

// costFraction returns the share of the lot's total cost and commission
// attributable to the given consumed quantity.
func (b *StockBuy) costFraction(quantity Quantity) Quantity {
	return quantity.Div(b.Quantity)
}

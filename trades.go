package investax

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// StockSell is a sell trade together with the FIFO sources that cover it.
type StockSell struct {
	Symbol   string
	Quantity Quantity

	Price      Cash
	Volume     Cash // may differ slightly from price * quantity due to broker-side rounding
	Commission Cash

	ConclusionDate Date
	ExecutionDate  Date

	sources []StockSellSource
}

// NewStockSell creates an unprocessed sell trade.
func NewStockSell(
	symbol string, quantity Quantity, price, volume, commission Cash,
	conclusionDate, executionDate Date,
) *StockSell {
	return &StockSell{
		Symbol:         symbol,
		Quantity:       quantity,
		Price:          price,
		Volume:         volume,
		Commission:     commission,
		ConclusionDate: conclusionDate,
		ExecutionDate:  executionDate,
	}
}

// StockSellSource is one slice of a buy lot consumed by the sell, pro-rated
// by the consumed fraction.
type StockSellSource struct {
	Quantity   Quantity // in current (post-split) units
	Multiplier Quantity

	Source StockSource

	// All of the following values can be zero for corporate-action-sourced
	// lots.
	Price      Cash
	Volume     Cash
	Commission Cash

	ConclusionDate Date
	ExecutionDate  Date
}

// IsProcessed reports whether FIFO matching attached sources to the sell.
func (s *StockSell) IsProcessed() bool {
	return len(s.sources) != 0
}

// Process attaches the FIFO sources covering the sell.
func (s *StockSell) Process(sources []StockSellSource) {
	if s.IsProcessed() {
		panic("an attempt to process an already processed sell")
	}

	total := Q(0)
	for _, source := range sources {
		total = total.Add(source.Quantity)
	}
	if !total.Equal(s.Quantity) {
		panic(fmt.Sprintf("FIFO sources cover %s of %s sold", total, s.Quantity))
	}

	s.sources = sources
}

// Sources returns the FIFO sources attached by matching.
func (s *StockSell) Sources() []StockSellSource {
	return s.sources
}

// SellDetails is the full tax breakdown of one sell trade.
type SellDetails struct {
	Revenue         Cash
	LocalRevenue    Cash
	LocalCommission Cash

	// All of the following values can be zero due to corporate actions or
	// other non-trade operations:
	PurchaseLocalCost Cash
	TotalLocalCost    Cash

	Profit             Cash
	LocalProfit        Cash
	TaxableLocalProfit Cash

	TaxToPay     Cash
	TaxDeduction Cash

	RealTaxRatio         *decimal.Decimal
	RealProfitRatio      *decimal.Decimal
	RealLocalProfitRatio *decimal.Decimal

	FIFO []FifoDetails

	// LtoDeductibles carries the long-term-ownership profit slices. Their
	// profit is still included in TaxableLocalProfit: the net calculator
	// applies the capped deduction per tax year.
	LtoDeductibles []LtoDeductibleProfit
}

// TaxExemptionApplied reports whether any consumed lot was exempted or
// produced a long-term-ownership deductible.
func (d *SellDetails) TaxExemptionApplied() bool {
	for _, source := range d.FIFO {
		if source.TaxExemptionApplied || source.LtoDeductible != nil {
			return true
		}
	}
	return false
}

// FifoDetails is the tax view of one consumed lot slice.
type FifoDetails struct {
	Quantity   Quantity
	Multiplier Quantity

	ConclusionDate Date
	ExecutionDate  Date

	Source StockSource

	// All of the following values can be zero due to corporate actions or
	// other non-trade operations:
	Price           Cash
	Commission      Cash
	LocalCommission Cash
	Cost            Cash
	LocalCost       Cash
	TotalLocalCost  Cash

	TaxExemptionApplied bool
	OwnershipYears      int

	// LtoDeductible is set when the slice qualifies for the long-term
	// ownership deduction. The annual limit is applied downstream.
	LtoDeductible *LtoDeductibleProfit
}

func newFifoDetails(source StockSellSource, country Country, converter *Converter) (FifoDetails, error) {
	cost := source.Volume.Round()
	localCost, err := converter.ConvertToRounding(source.ExecutionDate, cost, country.Currency)
	if err != nil {
		return FifoDetails{}, err
	}

	commission := source.Commission.Round()
	localCommission, err := converter.ConvertToRounding(source.ConclusionDate, commission, country.Currency)
	if err != nil {
		return FifoDetails{}, err
	}

	totalLocalCost, err := localCost.Add(localCommission)
	if err != nil {
		return FifoDetails{}, err
	}

	return FifoDetails{
		Quantity:   source.Quantity,
		Multiplier: source.Multiplier,

		ConclusionDate: source.ConclusionDate,
		ExecutionDate:  source.ExecutionDate,

		Source: source.Source,

		Price:           source.Price,
		Commission:      commission,
		LocalCommission: localCommission,

		Cost:           cost,
		LocalCost:      localCost,
		TotalLocalCost: totalLocalCost,
	}, nil
}

// totalCost converts the slice cost plus commission into the given currency.
func (d *FifoDetails) totalCost(currency string, converter *Converter) (Cash, error) {
	cost, err := converter.ConvertToRounding(d.ExecutionDate, d.Cost, currency)
	if err != nil {
		return Cash{}, err
	}
	commission, err := converter.ConvertToRounding(d.ConclusionDate, d.Commission, currency)
	if err != nil {
		return Cash{}, err
	}
	return cost.Add(commission)
}

// Calculate computes the tax breakdown of the sell: cost basis and revenue
// in trade and local currency, per-share tax exemption granularity, tax to
// pay and the resulting deduction.
//
// Commissions are converted at the conclusion-date rate, prices and costs
// at the execution-date rate, matching brokerage settlement conventions.
func (s *StockSell) Calculate(
	country Country, taxYear int, exemptions []TaxExemption, converter *Converter,
) (*SellDetails, error) {
	details, err := s.calculate(country, taxYear, exemptions, converter)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate results of %s selling order from %s: %w",
			s.Symbol, s.ConclusionDate, err)
	}
	return details, nil
}

func (s *StockSell) calculate(
	country Country, taxYear int, exemptions []TaxExemption, converter *Converter,
) (*SellDetails, error) {
	currency := s.Price.Currency()

	localConclusion := func(value Cash) (Cash, error) {
		return converter.ConvertToRounding(s.ConclusionDate, value, country.Currency)
	}
	localExecution := func(value Cash) (Cash, error) {
		return converter.ConvertToRounding(s.ExecutionDate, value, country.Currency)
	}

	purchaseCost := Zero(currency)
	purchaseLocalCost := country.Zero()
	deductiblePurchaseLocalCost := country.Zero()

	fifo := make([]FifoDetails, 0, len(s.sources))
	var ltoDeductibles []LtoDeductibleProfit
	totalQuantity := Q(0)
	taxFreeQuantity := Q(0)

	for _, source := range s.sources {
		sourceDetails, err := newFifoDetails(source, country, converter)
		if err != nil {
			return nil, err
		}

		exemptible := false
		for _, exemption := range exemptions {
			applicable, unconditional := exemption.applicable()
			if unconditional {
				sourceDetails.TaxExemptionApplied = true
				break
			}
			exemptible = exemptible || applicable
		}

		if exemptible && !sourceDetails.TaxExemptionApplied {
			eligible, years := LtoEligibility(source.ExecutionDate, s.ExecutionDate)
			sourceDetails.OwnershipYears = years

			if eligible {
				sourceLocalRevenue, err := localExecution(s.Price.Mul(source.Quantity))
				if err != nil {
					return nil, err
				}
				sourceLocalCommission, err := localConclusion(s.Commission.Mul(source.Quantity).DivBy(s.Quantity))
				if err != nil {
					return nil, err
				}

				profit, err := sourceLocalRevenue.Sub(sourceLocalCommission)
				if err != nil {
					return nil, err
				}
				sourceLocalProfit, err := profit.Sub(sourceDetails.TotalLocalCost)
				if err != nil {
					return nil, err
				}

				// The deduction only ever covers profit: selling eligible
				// shares at a loss stays fully deductible.
				if sourceLocalProfit.IsPositive() {
					sourceDetails.LtoDeductible = &LtoDeductibleProfit{
						Profit: sourceLocalProfit.Amount(),
						Years:  years,
					}
					ltoDeductibles = append(ltoDeductibles, *sourceDetails.LtoDeductible)
				}
			}
		}

		totalQuantity = totalQuantity.Add(source.Quantity)
		if sourceDetails.TaxExemptionApplied {
			taxFreeQuantity = taxFreeQuantity.Add(source.Quantity)
		}

		sourceTotalCost, err := sourceDetails.totalCost(currency, converter)
		if err != nil {
			return nil, err
		}
		if purchaseCost, err = purchaseCost.Add(sourceTotalCost); err != nil {
			return nil, err
		}

		if purchaseLocalCost, err = purchaseLocalCost.Add(sourceDetails.TotalLocalCost); err != nil {
			return nil, err
		}
		if !sourceDetails.TaxExemptionApplied {
			if deductiblePurchaseLocalCost, err = deductiblePurchaseLocalCost.Add(sourceDetails.TotalLocalCost); err != nil {
				return nil, err
			}
		}

		fifo = append(fifo, sourceDetails)
	}

	if !totalQuantity.Equal(s.Quantity) {
		panic("FIFO sources do not cover the sold quantity")
	}
	taxableRatio := totalQuantity.Sub(taxFreeQuantity).Div(totalQuantity)

	revenue := s.Volume.Round()
	localRevenue, err := localExecution(revenue)
	if err != nil {
		return nil, err
	}
	taxableLocalRevenue, err := localExecution(revenue.Mul(taxableRatio))
	if err != nil {
		return nil, err
	}

	commission := s.Commission.Round()
	localCommission, err := localConclusion(commission)
	if err != nil {
		return nil, err
	}
	deductibleLocalCommission, err := localConclusion(commission.Mul(taxableRatio))
	if err != nil {
		return nil, err
	}

	commissionInTradeCurrency, err := converter.ConvertToRounding(s.ConclusionDate, commission, currency)
	if err != nil {
		return nil, err
	}
	totalCost, err := purchaseCost.Add(commissionInTradeCurrency)
	if err != nil {
		return nil, err
	}
	totalLocalCost, err := purchaseLocalCost.Add(localCommission)
	if err != nil {
		return nil, err
	}
	deductibleTotalLocalCost, err := deductiblePurchaseLocalCost.Add(deductibleLocalCommission)
	if err != nil {
		return nil, err
	}

	profit, err := revenue.Sub(totalCost)
	if err != nil {
		return nil, err
	}
	localProfit, err := localRevenue.Sub(totalLocalCost)
	if err != nil {
		return nil, err
	}
	taxableLocalProfit, err := taxableLocalRevenue.Sub(deductibleTotalLocalCost)
	if err != nil {
		return nil, err
	}

	taxWithoutDeduction, err := country.TaxToPay(IncomeTrading, taxYear, localProfit, nil)
	if err != nil {
		return nil, err
	}
	taxToPay, err := country.TaxToPay(IncomeTrading, taxYear, taxableLocalProfit, nil)
	if err != nil {
		return nil, err
	}
	taxDeduction, err := taxWithoutDeduction.Sub(taxToPay)
	if err != nil {
		return nil, err
	}
	if taxDeduction.IsNegative() {
		panic("tax deduction is negative")
	}

	var realTaxRatio, realProfitRatio, realLocalProfitRatio *decimal.Decimal

	if !profit.IsZero() {
		taxInTradeCurrency, err := converter.ConvertTo(s.ExecutionDate, taxToPay, currency)
		if err != nil {
			return nil, err
		}
		ratio := taxInTradeCurrency.Amount().Div(profit.Amount())
		realTaxRatio = &ratio
	}

	taxToPayInTradeCurrency, err := converter.ConvertToRounding(s.ExecutionDate, taxToPay, currency)
	if err != nil {
		return nil, err
	}
	realProfit, err := profit.Sub(taxToPayInTradeCurrency)
	if err != nil {
		return nil, err
	}
	if !purchaseCost.IsZero() {
		ratio, err := realProfit.Div(purchaseCost)
		if err != nil {
			return nil, err
		}
		realProfitRatio = &ratio
	}

	realLocalProfit, err := localProfit.Sub(taxToPay)
	if err != nil {
		return nil, err
	}
	if !purchaseLocalCost.IsZero() {
		ratio, err := realLocalProfit.Div(purchaseLocalCost)
		if err != nil {
			return nil, err
		}
		realLocalProfitRatio = &ratio
	}

	return &SellDetails{
		Revenue:         revenue,
		LocalRevenue:    localRevenue,
		LocalCommission: localCommission,

		PurchaseLocalCost: purchaseLocalCost,
		TotalLocalCost:    totalLocalCost,

		Profit:             profit,
		LocalProfit:        localProfit,
		TaxableLocalProfit: taxableLocalProfit,

		TaxToPay:     taxToPay,
		TaxDeduction: taxDeduction,

		RealTaxRatio:         realTaxRatio,
		RealProfitRatio:      realProfitRatio,
		RealLocalProfitRatio: realLocalProfitRatio,

		FIFO:           fifo,
		LtoDeductibles: ltoDeductibles,
	}, nil
}

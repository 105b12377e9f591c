package investax

import (
	"fmt"
	"log"

	"github.com/shopspring/decimal"
)

// TradesProcessor orchestrates the whole trade taxation pipeline: FIFO
// matching results, currency conversion, jurisdiction tax rates, the
// long-term ownership exemption and the per-payment-period aggregation.
type TradesProcessor struct {
	Statement     *Statement
	Country       Country
	Converter     *Converter
	TaxPaymentDay TaxPaymentDay
	Exemptions    []TaxExemption

	// Year restricts processing to sells executed in one tax year.
	// Zero processes the whole statement.
	Year int

	// WithTaxStatement requests tax-statement entries for the processed
	// year. Unsupported jurisdictions degrade to a warning.
	WithTaxStatement bool
}

// ProcessedTrade is one sell trade with its tax breakdown and the precise
// currency rates used, for reporting.
type ProcessedTrade struct {
	Sell    *StockSell
	Details *SellDetails

	// Rates to the local currency: commission at conclusion date, price at
	// execution date. One pair per FIFO slice as well.
	ConclusionRate decimal.Decimal
	ExecutionRate  decimal.Decimal
	FifoRates      [][2]decimal.Decimal

	// FifoPrices carries the per-slice lot price restated in the sell's
	// trade currency, one entry per FIFO slice.
	FifoPrices []Cash
}

// ProcessedFee is one standalone fee converted to the local currency.
type ProcessedFee struct {
	Fee         Fee
	LocalAmount Cash
}

// TradesReport is the complete result of one processing run.
type TradesReport struct {
	Trades []ProcessedTrade
	Fees   []ProcessedFee

	// SameDates and SameCurrency allow reports to elide redundant columns.
	SameDates    bool
	SameCurrency bool

	TotalLocalProfit   Cash
	TotalTaxableProfit Cash

	// TotalTaxToPay is nil when the run produced no taxable income.
	TotalTaxToPay     *Cash
	TotalTaxDeduction Cash

	NetTaxes map[int]NetTax
	NetLto   map[int]NetLtoDeduction

	// TaxStatement is filled when requested and the jurisdiction supports
	// statement generation.
	TaxStatement *TaxStatement
}

// Process runs the pipeline. The statement must have been matched with
// ProcessTrades beforehand.
func (p *TradesProcessor) Process() (*TradesReport, error) {
	report := &TradesReport{
		SameDates:          true,
		SameCurrency:       true,
		TotalLocalProfit:   p.Country.Zero(),
		TotalTaxableProfit: p.Country.Zero(),
		TotalTaxDeduction:  p.Country.Zero(),
	}

	var taxStatement *TaxStatement
	if p.WithTaxStatement {
		statement, err := NewTaxStatement(p.Statement.Broker.Jurisdiction, p.Year)
		if err != nil {
			// A missing statement is not fatal: the report is still useful.
			log.Printf("WARNING: Skipping tax statement generation: %s.", err)
		} else {
			taxStatement = statement
		}
	}

	net := NewNetTaxCalculator(p.Country, p.TaxPaymentDay)
	netLto := NewNetLtoDeductionCalculator()

	for _, sell := range p.Statement.StockSells {
		if !sell.IsProcessed() {
			return nil, fmt.Errorf("unprocessed %s sell from %s: run FIFO matching first", sell.Symbol, sell.ConclusionDate)
		}
		if p.Year != 0 && sell.ExecutionDate.Year() != p.Year {
			continue
		}

		taxYear, _ := p.TaxPaymentDay.Get(sell.ExecutionDate, true)

		details, err := sell.Calculate(p.Country, taxYear, p.Exemptions, p.Converter)
		if err != nil {
			return nil, err
		}

		trade, err := p.processTrade(sell, details)
		if err != nil {
			return nil, err
		}
		report.Trades = append(report.Trades, trade)

		report.SameDates = report.SameDates && sell.ExecutionDate == sell.ConclusionDate
		report.SameCurrency = report.SameCurrency &&
			sell.Price.Currency() == p.Country.Currency &&
			sell.Commission.Currency() == p.Country.Currency
		for _, source := range details.FIFO {
			report.SameDates = report.SameDates && source.ExecutionDate == source.ConclusionDate
			report.SameCurrency = report.SameCurrency &&
				source.Price.Currency() == p.Country.Currency &&
				source.Commission.Currency() == p.Country.Currency
		}

		report.TotalLocalProfit = report.TotalLocalProfit.MustAdd(details.LocalProfit)
		report.TotalTaxableProfit = report.TotalTaxableProfit.MustAdd(details.TaxableLocalProfit)

		net.AddProfit(sell.ExecutionDate, details.LocalProfit, details.TaxableLocalProfit, details.LtoDeductibles)
		for _, deductible := range details.LtoDeductibles {
			netLto.AddProfit(taxYear, deductible.Profit, deductible.Years)
		}

		if taxStatement != nil {
			if err := p.addIncome(taxStatement, sell, details); err != nil {
				return nil, err
			}
		}
	}

	for _, fee := range p.Statement.Fees {
		if p.Year != 0 && fee.Date.Year() != p.Year {
			continue
		}

		localAmount, err := p.Converter.ConvertToRounding(fee.Date, fee.Amount, p.Country.Currency)
		if err != nil {
			return nil, err
		}
		report.Fees = append(report.Fees, ProcessedFee{Fee: fee, LocalAmount: localAmount})

		// Fees reduce the taxable result directly.
		net.AddProfit(fee.Date, localAmount.Neg(), localAmount.Neg(), nil)
		report.TotalLocalProfit = report.TotalLocalProfit.MustSub(localAmount)
		report.TotalTaxableProfit = report.TotalTaxableProfit.MustSub(localAmount)
	}

	netTaxes, err := net.Calculate()
	if err != nil {
		return nil, err
	}
	report.NetTaxes = netTaxes

	for taxYear, netTax := range netTaxes {
		if !netTax.LtoDeduction.IsZero() {
			netLto.AddApplied(taxYear, netTax.LtoDeduction.Amount())
		}
		if netTax.LtoLoss.IsPositive() {
			log.Printf(
				"WARNING: %d tax year: long-term ownership deduction limit covers only a part of the profit: %s is not deductible.",
				taxYear, netTax.LtoLoss)
		}

		if report.TotalTaxToPay == nil {
			zero := p.Country.Zero()
			report.TotalTaxToPay = &zero
		}
		total := report.TotalTaxToPay.MustAdd(netTax.TaxToPay)
		report.TotalTaxToPay = &total

		report.TotalTaxDeduction = report.TotalTaxDeduction.MustAdd(netTax.TaxDeduction)
	}

	report.NetLto = netLto.Calculate()
	for taxYear, lto := range report.NetLto {
		if lto.AppliedAboveLimit.IsPositive() {
			log.Printf(
				"WARNING: %d tax year: long-term ownership deduction is applied above the calculated limit by %s.",
				taxYear, p.Country.Cash(lto.AppliedAboveLimit))
		}
	}

	report.TaxStatement = taxStatement
	return report, nil
}

func (p *TradesProcessor) processTrade(sell *StockSell, details *SellDetails) (ProcessedTrade, error) {
	conclusionRate, err := p.Converter.PreciseRate(
		sell.ConclusionDate, sell.Commission.Currency(), p.Country.Currency)
	if err != nil {
		return ProcessedTrade{}, err
	}
	executionRate, err := p.Converter.PreciseRate(
		sell.ExecutionDate, sell.Price.Currency(), p.Country.Currency)
	if err != nil {
		return ProcessedTrade{}, err
	}

	fifoRates := make([][2]decimal.Decimal, 0, len(details.FIFO))
	fifoPrices := make([]Cash, 0, len(details.FIFO))
	for _, source := range details.FIFO {
		sourceConclusionRate, err := p.Converter.PreciseRate(
			source.ConclusionDate, source.Commission.Currency(), p.Country.Currency)
		if err != nil {
			return ProcessedTrade{}, err
		}
		sourceExecutionRate, err := p.Converter.PreciseRate(
			source.ExecutionDate, source.Price.Currency(), p.Country.Currency)
		if err != nil {
			return ProcessedTrade{}, err
		}
		fifoRates = append(fifoRates, [2]decimal.Decimal{sourceConclusionRate, sourceExecutionRate})

		price := source.Price
		if !price.IsZero() && price.Currency() != sell.Price.Currency() {
			price, err = ConvertPrice(price, source.Quantity, source.ExecutionDate, sell.Price.Currency(), p.Converter)
			if err != nil {
				return ProcessedTrade{}, err
			}
		}
		fifoPrices = append(fifoPrices, price)
	}

	return ProcessedTrade{
		Sell:           sell,
		Details:        details,
		ConclusionRate: conclusionRate,
		ExecutionRate:  executionRate,
		FifoRates:      fifoRates,
		FifoPrices:     fifoPrices,
	}, nil
}

func (p *TradesProcessor) addIncome(statement *TaxStatement, sell *StockSell, details *SellDetails) error {
	name := p.Statement.InstrumentName(sell.Symbol)
	description := fmt.Sprintf("%s: sale of %s", p.Statement.Broker.Name, name)

	rate, err := p.Converter.PreciseRate(
		sell.ExecutionDate, details.Revenue.Currency(), p.Country.Currency)
	if err != nil {
		return fmt.Errorf("unable to add income from selling %s on %s to the tax statement: %w",
			sell.Symbol, sell.ExecutionDate, err)
	}

	statement.AddStockIncome(
		description, sell.ExecutionDate, details.Revenue.Currency(), rate,
		details.Revenue, details.LocalRevenue, details.TotalLocalCost)
	return nil
}

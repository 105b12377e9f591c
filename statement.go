package investax

import (
	"fmt"
	"sort"
)

// ErrInsufficientLots is returned when a sell cannot be covered by the open
// buy history. It always indicates missing or incomplete statement data.
var ErrInsufficientLots = fmt.Errorf("insufficient open lots")

// CorporateActionKind enumerates the supported non-trade events.
type CorporateActionKind int

const (
	// ActionStockSplit multiplies the share count of lots acquired before
	// the split date without changing their total cost.
	ActionStockSplit CorporateActionKind = iota
	// ActionSpinOff grants shares of a new symbol at zero or derived cost.
	ActionSpinOff
	// ActionRename moves open lots to a new symbol, preserving their
	// acquisition dates.
	ActionRename
)

func (k CorporateActionKind) String() string {
	switch k {
	case ActionStockSplit:
		return "stock split"
	case ActionSpinOff:
		return "spin-off"
	case ActionRename:
		return "rename"
	default:
		return "unknown"
	}
}

// CorporateAction is a non-trade event that creates or modifies lot records.
type CorporateAction struct {
	Date   Date
	Symbol string
	Kind   CorporateActionKind

	Ratio    Quantity // stock split: new shares per old share
	ToSymbol string   // rename target
	Quantity Quantity // spin-off: granted shares
	Volume   Cash     // spin-off: derived cost basis, zero when none
}

// Statement is the normalized output of the broker-statement collaborator:
// an in-memory, chronological view of everything the engine needs.
type Statement struct {
	Broker Broker
	Period [2]Date

	StockBuys        []*StockBuy
	StockSells       []*StockSell
	Fees             []Fee
	CorporateActions []CorporateAction

	InstrumentNames map[string]string
}

// NewStatement creates an empty statement for a broker.
func NewStatement(broker Broker) *Statement {
	return &Statement{
		Broker:          broker,
		InstrumentNames: make(map[string]string),
	}
}

// InstrumentName returns the human name of a symbol, or the symbol itself.
func (s *Statement) InstrumentName(symbol string) string {
	if name, ok := s.InstrumentNames[symbol]; ok {
		return name
	}
	return symbol
}

// Sort brings all event collections into chronological order. Sorting is
// stable: same-date events keep their ingestion order.
func (s *Statement) Sort() {
	sort.SliceStable(s.StockBuys, func(i, j int) bool {
		return s.StockBuys[i].ConclusionDate.Before(s.StockBuys[j].ConclusionDate)
	})
	sort.SliceStable(s.StockSells, func(i, j int) bool {
		return s.StockSells[i].ConclusionDate.Before(s.StockSells[j].ConclusionDate)
	})
	sort.SliceStable(s.Fees, func(i, j int) bool {
		return s.Fees[i].Date.Before(s.Fees[j].Date)
	})
	sort.SliceStable(s.CorporateActions, func(i, j int) bool {
		return s.CorporateActions[i].Date.Before(s.CorporateActions[j].Date)
	})
}

// ProcessTrades applies corporate actions and matches every sell against
// the open buy lots in FIFO order, attaching the consumed sources to each
// sell. Events are interleaved chronologically: a split dated between two
// sells affects only the later one.
func (s *Statement) ProcessTrades() error {
	s.Sort()
	s.Fees = suppressFeeReversals(s.Fees, s.Broker.FeeReversal)

	// Spin-off grants are buy lots; fold them in upfront so that date
	// ordering places them correctly in the FIFO queues. Grants without a
	// derived cost basis have no currency of their own and settle in the
	// broker's local currency.
	for _, action := range s.CorporateActions {
		if action.Kind != ActionSpinOff {
			continue
		}
		currency := action.Volume.Currency()
		if currency == "" {
			currency = s.Broker.Jurisdiction.Currency()
		}
		s.StockBuys = append(s.StockBuys, NewStockBuy(
			action.Symbol, action.Quantity, SourceCorporateAction,
			Zero(currency), NewCash(currency, action.Volume.Amount()), Zero(currency),
			action.Date, action.Date,
		))
	}
	sort.SliceStable(s.StockBuys, func(i, j int) bool {
		return s.StockBuys[i].ConclusionDate.Before(s.StockBuys[j].ConclusionDate)
	})

	// Per-symbol FIFO queues of open lots, ordered by acquisition.
	queues := make(map[string][]*StockBuy)
	buyIndex := 0
	actionIndex := 0

	enqueueUpTo := func(date Date) {
		for buyIndex < len(s.StockBuys) && !s.StockBuys[buyIndex].ConclusionDate.After(date) {
			buy := s.StockBuys[buyIndex]
			queues[buy.Symbol] = append(queues[buy.Symbol], buy)
			buyIndex++
		}
	}

	applyActionsUpTo := func(date Date) {
		for actionIndex < len(s.CorporateActions) && !s.CorporateActions[actionIndex].Date.After(date) {
			action := s.CorporateActions[actionIndex]
			actionIndex++

			// Lots dated up to the action date must be in the queues
			// before the action applies to them.
			enqueueUpTo(action.Date)

			switch action.Kind {
			case ActionStockSplit:
				for _, lot := range queues[action.Symbol] {
					lot.Split(action.Ratio)
				}
			case ActionRename:
				renamed := queues[action.Symbol]
				for _, lot := range renamed {
					lot.Symbol = action.ToSymbol
					lot.Source = SourceCorporateAction
				}
				merged := append(queues[action.ToSymbol], renamed...)
				sort.SliceStable(merged, func(i, j int) bool {
					return merged[i].ConclusionDate.Before(merged[j].ConclusionDate)
				})
				queues[action.ToSymbol] = merged
				delete(queues, action.Symbol)
			case ActionSpinOff:
				// Already folded into the buy stream.
			}
		}
	}

	for _, sell := range s.StockSells {
		if sell.IsProcessed() {
			continue
		}

		applyActionsUpTo(sell.ConclusionDate)
		enqueueUpTo(sell.ConclusionDate)

		sources, err := s.match(queues, sell)
		if err != nil {
			return err
		}
		sell.Process(sources)
	}

	// Apply trailing actions so open positions end up in their final shape.
	applyActionsUpTo(NewDate(9999, 12, 31))
	enqueueUpTo(NewDate(9999, 12, 31))

	return nil
}

// match consumes open lots of the sell's symbol in FIFO order.
func (s *Statement) match(queues map[string][]*StockBuy, sell *StockSell) ([]StockSellSource, error) {
	queue := queues[sell.Symbol]
	remaining := sell.Quantity
	var sources []StockSellSource

	for remaining.IsPositive() {
		// Skip fully consumed lots at the queue head.
		for len(queue) > 0 && queue[0].IsSold() {
			queue = queue[1:]
		}
		if len(queue) == 0 {
			return nil, fmt.Errorf(
				"%w: error while processing %s position closing on %s",
				ErrInsufficientLots, sell.Symbol, sell.ConclusionDate)
		}

		lot := queue[0]
		quantity := remaining.Min(lot.Unsold())
		fraction := lot.costFraction(quantity)

		sources = append(sources, StockSellSource{
			Quantity:   quantity,
			Multiplier: lot.Multiplier,

			Source: lot.Source,

			Price:      lot.Price,
			Volume:     lot.Volume.Mul(fraction),
			Commission: lot.Commission.Mul(fraction),

			ConclusionDate: lot.ConclusionDate,
			ExecutionDate:  lot.ExecutionDate,
		})

		lot.Sell(quantity)
		remaining = remaining.Sub(quantity)
	}

	queues[sell.Symbol] = queue
	return sources, nil
}

// OpenPositions returns the remaining quantity per symbol after matching.
func (s *Statement) OpenPositions() map[string]Quantity {
	open := make(map[string]Quantity)
	for _, buy := range s.StockBuys {
		if buy.IsSold() {
			continue
		}
		position, ok := open[buy.Symbol]
		if !ok {
			position = Q(0)
		}
		open[buy.Symbol] = position.Add(buy.Unsold())
	}
	return open
}

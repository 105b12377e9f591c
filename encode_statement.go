package investax

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// CommandType discriminates the record kinds of a statement file.
type CommandType string

const (
	CmdBroker  CommandType = "broker"
	CmdName    CommandType = "name"
	CmdBuy     CommandType = "buy"
	CmdSell    CommandType = "sell"
	CmdFee     CommandType = "fee"
	CmdSplit   CommandType = "split"
	CmdSpinOff CommandType = "spin-off"
	CmdRename  CommandType = "rename"
)

// brokerCmd is the statement header line.
type brokerCmd struct {
	Command      CommandType `json:"command"`
	Name         string      `json:"name"`
	Jurisdiction string      `json:"jurisdiction"`
	From         Date        `json:"from,omitzero"`
	To           Date        `json:"to,omitzero"`
}

// tradeCmd is a specialized struct covering both buy and sell lines. The
// commission currency defaults to the trade currency when omitted.
type tradeCmd struct {
	Command            CommandType     `json:"command"`
	Date               Date            `json:"date"`
	Execution          Date            `json:"execution,omitzero"`
	Symbol             string          `json:"symbol"`
	Quantity           Quantity        `json:"quantity"`
	Price              decimal.Decimal `json:"price"`
	Volume             decimal.Decimal `json:"volume"`
	Currency           string          `json:"currency"`
	Commission         decimal.Decimal `json:"commission"`
	CommissionCurrency string          `json:"commissionCurrency,omitempty"`
}

func (t tradeCmd) commissionCash() Cash {
	currency := t.CommissionCurrency
	if currency == "" {
		currency = t.Currency
	}
	return C(t.Commission, currency)
}

func (t tradeCmd) executionDate() Date {
	if t.Execution.IsZero() {
		return t.Date
	}
	return t.Execution
}

type feeCmd struct {
	Command     CommandType     `json:"command"`
	Date        Date            `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Description string          `json:"description,omitempty"`
}

type actionCmd struct {
	Command  CommandType     `json:"command"`
	Date     Date            `json:"date"`
	Symbol   string          `json:"symbol"`
	Ratio    Quantity        `json:"ratio,omitzero"`
	To       string          `json:"to,omitempty"`
	Quantity Quantity        `json:"quantity,omitzero"`
	Volume   decimal.Decimal `json:"volume,omitzero"`
	Currency string          `json:"currency,omitempty"`
}

type nameCmd struct {
	Command CommandType `json:"command"`
	Symbol  string      `json:"symbol"`
	Name    string      `json:"name"`
}

func parseJurisdiction(s string) (Jurisdiction, error) {
	for _, jurisdiction := range []Jurisdiction{JurisdictionRussia, JurisdictionUsa} {
		if s == jurisdiction.Name() {
			return jurisdiction, nil
		}
	}
	return 0, fmt.Errorf("unknown jurisdiction: %q", s)
}

// DecodeStatement reads a broker statement from a stream of JSONL data.
// The first record must be the broker header; every other record is an
// event line. The result is sorted chronologically.
func DecodeStatement(r io.Reader) (*Statement, error) {
	scanner := bufio.NewScanner(r)
	var statement *Statement

	for scanner.Scan() {
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}

		var identifier struct {
			Command CommandType `json:"command"`
		}
		if err := json.Unmarshal(lineBytes, &identifier); err != nil {
			return nil, fmt.Errorf("could not identify command in line %q: %w", string(lineBytes), err)
		}

		if identifier.Command == CmdBroker {
			var temp brokerCmd
			if err := json.Unmarshal(lineBytes, &temp); err != nil {
				return nil, err
			}
			jurisdiction, err := parseJurisdiction(temp.Jurisdiction)
			if err != nil {
				return nil, err
			}
			broker := NewBroker(temp.Name, jurisdiction)
			broker.FeeReversal = SameDayFeeReversal
			statement = NewStatement(broker)
			statement.Period = [2]Date{temp.From, temp.To}
			continue
		}

		if statement == nil {
			return nil, fmt.Errorf("statement file must start with a %q record, got %q", CmdBroker, identifier.Command)
		}

		switch identifier.Command {
		case CmdName:
			var temp nameCmd
			if err := json.Unmarshal(lineBytes, &temp); err != nil {
				return nil, err
			}
			statement.InstrumentNames[temp.Symbol] = temp.Name

		case CmdBuy:
			var temp tradeCmd
			if err := json.Unmarshal(lineBytes, &temp); err != nil {
				return nil, err
			}
			statement.StockBuys = append(statement.StockBuys, NewStockBuy(
				temp.Symbol, temp.Quantity, SourceTrade,
				C(temp.Price, temp.Currency), C(temp.Volume, temp.Currency), temp.commissionCash(),
				temp.Date, temp.executionDate(),
			))

		case CmdSell:
			var temp tradeCmd
			if err := json.Unmarshal(lineBytes, &temp); err != nil {
				return nil, err
			}
			statement.StockSells = append(statement.StockSells, NewStockSell(
				temp.Symbol, temp.Quantity,
				C(temp.Price, temp.Currency), C(temp.Volume, temp.Currency), temp.commissionCash(),
				temp.Date, temp.executionDate(),
			))

		case CmdFee:
			var temp feeCmd
			if err := json.Unmarshal(lineBytes, &temp); err != nil {
				return nil, err
			}
			statement.Fees = append(statement.Fees, Fee{
				Date:        temp.Date,
				Amount:      C(temp.Amount, temp.Currency),
				Description: temp.Description,
			})

		case CmdSplit:
			var temp actionCmd
			if err := json.Unmarshal(lineBytes, &temp); err != nil {
				return nil, err
			}
			statement.CorporateActions = append(statement.CorporateActions, CorporateAction{
				Date:   temp.Date,
				Symbol: temp.Symbol,
				Kind:   ActionStockSplit,
				Ratio:  temp.Ratio,
			})

		case CmdSpinOff:
			var temp actionCmd
			if err := json.Unmarshal(lineBytes, &temp); err != nil {
				return nil, err
			}
			statement.CorporateActions = append(statement.CorporateActions, CorporateAction{
				Date:     temp.Date,
				Symbol:   temp.Symbol,
				Kind:     ActionSpinOff,
				Quantity: temp.Quantity,
				Volume:   C(temp.Volume, temp.Currency),
			})

		case CmdRename:
			var temp actionCmd
			if err := json.Unmarshal(lineBytes, &temp); err != nil {
				return nil, err
			}
			statement.CorporateActions = append(statement.CorporateActions, CorporateAction{
				Date:     temp.Date,
				Symbol:   temp.Symbol,
				Kind:     ActionRename,
				ToSymbol: temp.To,
			})

		default:
			return nil, fmt.Errorf("unknown statement command: %q", identifier.Command)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from input: %w", err)
	}
	if statement == nil {
		return nil, fmt.Errorf("empty statement file")
	}

	statement.Sort()
	return statement, nil
}

func encodeLine(w io.Writer, record any) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal statement record: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write statement record: %w", err)
	}
	return nil
}

// EncodeStatement persists a statement to an io.Writer in JSONL format:
// the broker header first, instrument names next, then all events in
// chronological order. Re-encoding a decoded statement produces canonical
// output.
func EncodeStatement(w io.Writer, s *Statement) error {
	decimal.MarshalJSONWithoutQuotes = true
	s.Sort()

	header := brokerCmd{
		Command:      CmdBroker,
		Name:         s.Broker.Name,
		Jurisdiction: s.Broker.Jurisdiction.Name(),
		From:         s.Period[0],
		To:           s.Period[1],
	}
	if err := encodeLine(w, header); err != nil {
		return err
	}

	symbols := make([]string, 0, len(s.InstrumentNames))
	for symbol := range s.InstrumentNames {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	for _, symbol := range symbols {
		if err := encodeLine(w, nameCmd{Command: CmdName, Symbol: symbol, Name: s.InstrumentNames[symbol]}); err != nil {
			return err
		}
	}

	records := make([]dated, 0, len(s.StockBuys)+len(s.StockSells)+len(s.Fees)+len(s.CorporateActions))
	for _, buy := range s.StockBuys {
		if buy.Source != SourceTrade {
			continue // corporate-action lots are re-derived from their actions
		}
		records = append(records, dated{buy.ConclusionDate, tradeCmd{
			Command:            CmdBuy,
			Date:               buy.ConclusionDate,
			Execution:          elideDate(buy.ExecutionDate, buy.ConclusionDate),
			Symbol:             buy.Symbol,
			Quantity:           buy.Quantity,
			Price:              buy.Price.Amount(),
			Volume:             buy.Volume.Amount(),
			Currency:           buy.Price.Currency(),
			Commission:         buy.Commission.Amount(),
			CommissionCurrency: elideCurrency(buy.Commission.Currency(), buy.Price.Currency()),
		}})
	}
	for _, sell := range s.StockSells {
		records = append(records, dated{sell.ConclusionDate, tradeCmd{
			Command:            CmdSell,
			Date:               sell.ConclusionDate,
			Execution:          elideDate(sell.ExecutionDate, sell.ConclusionDate),
			Symbol:             sell.Symbol,
			Quantity:           sell.Quantity,
			Price:              sell.Price.Amount(),
			Volume:             sell.Volume.Amount(),
			Currency:           sell.Price.Currency(),
			Commission:         sell.Commission.Amount(),
			CommissionCurrency: elideCurrency(sell.Commission.Currency(), sell.Price.Currency()),
		}})
	}
	for _, fee := range s.Fees {
		records = append(records, dated{fee.Date, feeCmd{
			Command:     CmdFee,
			Date:        fee.Date,
			Amount:      fee.Amount.Amount(),
			Currency:    fee.Amount.Currency(),
			Description: fee.Description,
		}})
	}
	for _, action := range s.CorporateActions {
		record := actionCmd{Date: action.Date, Symbol: action.Symbol}
		switch action.Kind {
		case ActionStockSplit:
			record.Command = CmdSplit
			record.Ratio = action.Ratio
		case ActionSpinOff:
			record.Command = CmdSpinOff
			record.Quantity = action.Quantity
			record.Volume = action.Volume.Amount()
			record.Currency = action.Volume.Currency()
		case ActionRename:
			record.Command = CmdRename
			record.To = action.ToSymbol
		}
		records = append(records, dated{action.Date, record})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].date.Before(records[j].date)
	})
	for _, record := range records {
		if err := encodeLine(w, record.record); err != nil {
			return err
		}
	}
	return nil
}

type dated struct {
	date   Date
	record any
}

func elideDate(date, against Date) Date {
	if date == against {
		return Date{}
	}
	return date
}

func elideCurrency(currency, against string) string {
	if currency == against {
		return ""
	}
	return currency
}

package investax

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ErrRateUnavailable is returned when no historical currency rate exists
// for the requested date.
var ErrRateUnavailable = fmt.Errorf("currency rate unavailable")

// CurrencyRate is the official price of one unit of a foreign currency in
// the base currency on a given date.
type CurrencyRate struct {
	Date  Date            `json:"date"`
	Price decimal.Decimal `json:"price"`
}

// RateProvider fetches historical rates for a currency against the base
// currency. Dates without a published rate (weekends, holidays) are simply
// absent from the result.
type RateProvider interface {
	Rates(currency string, from, to Date) ([]CurrencyRate, error)
}

// Converter converts cash between currencies using historical daily rates.
//
// It keeps a per-currency history of rates against its base currency and
// fills it read-through from an optional RateProvider. The whole pipeline
// is single-threaded, so no locking is needed.
// fetchedRange is the contiguous date range already requested from the
// provider for one currency.
type fetchedRange struct {
	from, to Date
}

type Converter struct {
	base      string
	histories map[string][]CurrencyRate // sorted by date
	provider  RateProvider
	fetched   map[string]fetchedRange
	today     Date
}

// NewConverter creates a converter with the given base currency (the
// currency rates are quoted in, e.g. "RUB").
func NewConverter(base string, provider RateProvider) *Converter {
	return &Converter{
		base:      base,
		histories: make(map[string][]CurrencyRate),
		provider:  provider,
		fetched:   make(map[string]fetchedRange),
		today:     Today(),
	}
}

// AddRates seeds the converter with known rates for a currency.
func (c *Converter) AddRates(currency string, rates []CurrencyRate) {
	history := append(c.histories[currency], rates...)
	sort.Slice(history, func(i, j int) bool { return history[i].Date.Before(history[j].Date) })
	c.histories[currency] = history
}

// minRateDate returns how far back a rate lookup may walk from the given
// date. The window covers exchange holidays around New Year, March 8 and
// May celebrations.
func minRateDate(date Date) Date {
	switch {
	case date.Month() == time.January && date.Day() < 10:
		return NewDate(date.Year()-1, time.December, 30)
	case (date.Month() == time.March || date.Month() == time.May) && date.Day() < 13:
		return date.Add(-5)
	default:
		return date.Add(-3)
	}
}

// rate returns the base-currency price of one unit of the given currency
// effective on the date: the latest published rate within the holiday-aware
// lookup window.
func (c *Converter) rate(currency string, date Date) (decimal.Decimal, error) {
	if date.After(c.today) {
		return decimal.Decimal{}, fmt.Errorf(
			"%w: an attempt to make currency conversion for a future date: %s", ErrRateUnavailable, date)
	}

	cur := date
	if cur == c.today {
		// Today's official rate is generally not published yet.
		cur = cur.Add(-1)
	}

	min := minRateDate(date)
	if err := c.ensure(currency, min, cur); err != nil {
		return decimal.Decimal{}, err
	}

	history := c.histories[currency]
	for !cur.Before(min) {
		if price, ok := lookupRate(history, cur); ok {
			return price, nil
		}
		cur = cur.Add(-1)
	}

	return decimal.Decimal{}, fmt.Errorf(
		"%w: unable to find %s rate for %s with %d days precision",
		ErrRateUnavailable, currency, date, date.Days(min))
}

func lookupRate(history []CurrencyRate, date Date) (decimal.Decimal, bool) {
	index := sort.Search(len(history), func(i int) bool { return !history[i].Date.Before(date) })
	if index < len(history) && history[index].Date == date {
		return history[index].Price, true
	}
	return decimal.Decimal{}, false
}

// ensure fills the history read-through from the provider for the window,
// extending the already fetched range with only the missing parts.
func (c *Converter) ensure(currency string, from, to Date) error {
	if c.provider == nil {
		return nil
	}

	covered, ok := c.fetched[currency]
	if !ok {
		if err := c.fetch(currency, from, to); err != nil {
			return err
		}
		c.fetched[currency] = fetchedRange{from: from, to: to}
		return nil
	}

	if from.Before(covered.from) {
		if err := c.fetch(currency, from, covered.from.Add(-1)); err != nil {
			return err
		}
		covered.from = from
	}
	if to.After(covered.to) {
		if err := c.fetch(currency, covered.to.Add(1), to); err != nil {
			return err
		}
		covered.to = to
	}
	c.fetched[currency] = covered
	return nil
}

func (c *Converter) fetch(currency string, from, to Date) error {
	rates, err := c.provider.Rates(currency, from, to)
	if err != nil {
		return fmt.Errorf("failed to fetch %s currency rates: %w", currency, err)
	}
	c.AddRates(currency, rates)
	return nil
}

// PreciseRate returns the raw conversion rate between two currencies on the
// given date, without any rounding.
func (c *Converter) PreciseRate(date Date, from, to string) (decimal.Decimal, error) {
	return c.convert(date, from, to, decimal.NewFromInt(1))
}

// convert converts an amount between currencies on the given date.
func (c *Converter) convert(date Date, from, to string, amount decimal.Decimal) (decimal.Decimal, error) {
	if from == to || amount.IsZero() {
		return amount, nil
	}

	switch {
	case to == c.base:
		price, err := c.rate(from, date)
		if err != nil {
			return decimal.Decimal{}, err
		}
		return amount.Mul(price), nil
	case from == c.base:
		price, err := c.rate(to, date)
		if err != nil {
			return decimal.Decimal{}, err
		}
		return amount.Div(price), nil
	default:
		return decimal.Decimal{}, fmt.Errorf("unsupported currency conversion: %s -> %s", from, to)
	}
}

// ConvertTo converts cash to the target currency at the date's rate.
func (c *Converter) ConvertTo(date Date, cash Cash, to string) (Cash, error) {
	amount, err := c.convert(date, cash.Currency(), to, cash.Amount())
	if err != nil {
		return Cash{}, err
	}
	return NewCash(to, amount), nil
}

// ConvertToRounding converts cash to the target currency and rounds the
// result to cents, matching the declaration rounding discipline.
func (c *Converter) ConvertToRounding(date Date, cash Cash, to string) (Cash, error) {
	converted, err := c.ConvertTo(date, cash, to)
	if err != nil {
		return Cash{}, err
	}
	return converted.Round(), nil
}

package investax

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// CBR publishes daily official RUB rates. We use the JSON mirror of the
// archive, one document per publication day:
//
//	{
//	    "Date": "2020-02-04T11:30:00+03:00",
//	    "Valute": {
//	        "USD": {
//	            "Nominal": 1,
//	            "Value": 63.9091,
//	            ...
//	        }
//	    }
//	}
const cbrArchiveURL = "https://www.cbr-xml-daily.ru/archive/%04d/%02d/%02d/daily_json.js"

// CbrProvider fetches official RUB currency rates from the Central Bank of
// the Russian Federation daily archive.
type CbrProvider struct {
	client *http.Client
}

// NewCbrProvider returns a provider backed by a daily-expiring disk-cached
// HTTP client.
func NewCbrProvider() *CbrProvider {
	return &CbrProvider{client: daily()}
}

// Rates implements RateProvider. Days without a publication (weekends,
// holidays) are skipped.
func (p *CbrProvider) Rates(currency string, from, to Date) ([]CurrencyRate, error) {
	var rates []CurrencyRate

	for date := from; !date.After(to); date = date.Add(1) {
		price, ok, err := p.dailyRate(currency, date)
		if err != nil {
			return nil, err
		}
		if ok {
			rates = append(rates, CurrencyRate{Date: date, Price: price})
		}
	}

	return rates, nil
}

func (p *CbrProvider) dailyRate(currency string, date Date) (decimal.Decimal, bool, error) {
	addr := fmt.Sprintf(cbrArchiveURL, date.Year(), int(date.Month()), date.Day())

	var jobj any
	if err := jwget(p.client, addr, &jobj); err != nil {
		// The archive has no document for non-publication days.
		if strings.Contains(err.Error(), "404") {
			return decimal.Decimal{}, false, nil
		}
		return decimal.Decimal{}, false, fmt.Errorf("error in wget %q: %w", addr, err)
	}

	value, err := p.lookup(jobj, fmt.Sprintf("$.Valute.%s.Value", currency))
	if err != nil {
		return decimal.Decimal{}, false, fmt.Errorf("no %s rate published on %s: %w", currency, date, err)
	}
	nominal, err := p.lookup(jobj, fmt.Sprintf("$.Valute.%s.Nominal", currency))
	if err != nil {
		return decimal.Decimal{}, false, fmt.Errorf("no %s nominal published on %s: %w", currency, date, err)
	}

	price := decimal.NewFromFloat(value).Div(decimal.NewFromFloat(nominal))
	return price, true, nil
}

func (p *CbrProvider) lookup(jobj any, path string) (float64, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return 0, fmt.Errorf("error parsing %q: %w", path, err)
	}
	// because jsonpath is never clear about whether it returns a list of 1
	// answer, or a single answer: by this call I keep the first one if any
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}

	val, ok := jval.(float64)
	if !ok {
		return 0, fmt.Errorf("error parsing %q: not a number: %v", path, jval)
	}
	return val, nil
}

var _ RateProvider = (*CbrProvider)(nil)

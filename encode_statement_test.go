package investax

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

const sampleStatement = `{"command":"broker","name":"Interactive Brokers","jurisdiction":"USA","from":"2022-01-01","to":"2022-12-31"}
{"command":"name","symbol":"AAPL","name":"Apple Inc"}
{"command":"buy","date":"2022-01-10","symbol":"AAPL","quantity":60,"price":10,"volume":600,"currency":"USD","commission":1}
{"command":"buy","date":"2022-01-11","execution":"2022-01-13","symbol":"AAPL","quantity":50,"price":12,"volume":600,"currency":"USD","commission":1,"commissionCurrency":"EUR"}
{"command":"split","date":"2022-02-01","symbol":"AAPL","ratio":4}
{"command":"fee","date":"2022-03-01","amount":5,"currency":"USD","description":"Monthly activity fee"}
{"command":"sell","date":"2022-06-10","symbol":"AAPL","quantity":100,"price":15,"volume":1500,"currency":"USD","commission":1}
`

func TestDecodeStatement(t *testing.T) {
	s, err := DecodeStatement(strings.NewReader(sampleStatement))
	if err != nil {
		t.Fatal(err)
	}

	if s.Broker.Name != "Interactive Brokers" || s.Broker.Jurisdiction != JurisdictionUsa {
		t.Errorf("broker = %+v", s.Broker)
	}
	if s.Period[0] != NewDate(2022, time.January, 1) || s.Period[1] != NewDate(2022, time.December, 31) {
		t.Errorf("period = %v", s.Period)
	}
	if got := s.InstrumentName("AAPL"); got != "Apple Inc" {
		t.Errorf("InstrumentName = %q", got)
	}

	if len(s.StockBuys) != 2 || len(s.StockSells) != 1 || len(s.Fees) != 1 || len(s.CorporateActions) != 1 {
		t.Fatalf("decoded %d buys, %d sells, %d fees, %d actions",
			len(s.StockBuys), len(s.StockSells), len(s.Fees), len(s.CorporateActions))
	}

	first := s.StockBuys[0]
	if first.ExecutionDate != first.ConclusionDate {
		t.Error("execution date must default to the conclusion date")
	}

	second := s.StockBuys[1]
	if second.ExecutionDate != NewDate(2022, time.January, 13) {
		t.Errorf("execution date = %s", second.ExecutionDate)
	}
	if second.Commission.Currency() != "EUR" {
		t.Errorf("commission currency = %s, want the explicit EUR", second.Commission.Currency())
	}

	action := s.CorporateActions[0]
	if action.Kind != ActionStockSplit || !action.Ratio.Equal(Q(4)) {
		t.Errorf("action = %+v", action)
	}
}

func TestDecodeStatementErrors(t *testing.T) {
	testCases := []struct {
		name string
		in   string
	}{
		{name: "empty file", in: ""},
		{name: "missing header", in: `{"command":"fee","date":"2022-03-01","amount":5,"currency":"USD"}` + "\n"},
		{name: "unknown command", in: `{"command":"broker","name":"X","jurisdiction":"Russia"}` + "\n" + `{"command":"dance","date":"2022-03-01"}` + "\n"},
		{name: "unknown jurisdiction", in: `{"command":"broker","name":"X","jurisdiction":"Atlantis"}` + "\n"},
		{name: "broken json", in: "{command}\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeStatement(strings.NewReader(tc.in)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestEncodeStatementRoundTrip(t *testing.T) {
	s, err := DecodeStatement(strings.NewReader(sampleStatement))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := EncodeStatement(&buf, s); err != nil {
		t.Fatal(err)
	}

	reloaded, err := DecodeStatement(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("re-decoding canonical output failed: %v\n%s", err, buf.String())
	}

	if len(reloaded.StockBuys) != len(s.StockBuys) ||
		len(reloaded.StockSells) != len(s.StockSells) ||
		len(reloaded.Fees) != len(s.Fees) ||
		len(reloaded.CorporateActions) != len(s.CorporateActions) {
		t.Errorf("round trip changed the event counts:\n%s", buf.String())
	}

	// Canonical output is stable: encoding again yields the same bytes.
	var again bytes.Buffer
	if err := EncodeStatement(&again, reloaded); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf.Bytes(), again.Bytes()) {
		t.Errorf("canonical encoding is not stable:\n%s\nvs\n%s", buf.String(), again.String())
	}
}

package investax

import (
	"encoding/json"
	"testing"
)

const cbrSampleDoc = `{
    "Date": "2020-02-04T11:30:00+03:00",
    "Valute": {
        "USD": {
            "Nominal": 1,
            "Value": 63.9091
        },
        "JPY": {
            "Nominal": 100,
            "Value": 58.8225
        }
    }
}`

func TestCbrLookup(t *testing.T) {
	var jobj any
	if err := json.Unmarshal([]byte(cbrSampleDoc), &jobj); err != nil {
		t.Fatal(err)
	}

	provider := NewCbrProvider()

	value, err := provider.lookup(jobj, "$.Valute.USD.Value")
	if err != nil {
		t.Fatal(err)
	}
	if value != 63.9091 {
		t.Errorf("USD value = %v, want 63.9091", value)
	}

	// Nominal divides the published value for per-unit pricing.
	nominal, err := provider.lookup(jobj, "$.Valute.JPY.Nominal")
	if err != nil {
		t.Fatal(err)
	}
	if nominal != 100 {
		t.Errorf("JPY nominal = %v, want 100", nominal)
	}

	if _, err := provider.lookup(jobj, "$.Valute.XXX.Value"); err == nil {
		t.Error("missing currency must be an error")
	}
}

package investax

import (
	"fmt"
)

// decimalPrecision returns the number of decimal places of the amount.
func decimalPrecision(c Cash) int32 {
	if exp := c.Amount().Exponent(); exp < 0 {
		return -exp
	}
	return 0
}

// CalculatePrice back-computes the per-unit price from a trade volume: the
// smallest precision whose rounded product restores the volume exactly.
// Brokers round volumes on their side, so a plain division may not match.
func CalculatePrice(quantity Quantity, volume Cash) (Cash, error) {
	volumePrecision := decimalPrecision(volume)

	price := volume.Amount().Div(quantity.Decimal())

	for precision := volumePrecision; precision <= 20; precision++ {
		rounded := price.Round(precision)
		if rounded.Mul(quantity.Decimal()).Round(volumePrecision).Equal(volume.Amount()) {
			return NewCash(volume.Currency(), rounded), nil
		}
	}

	return Cash{}, fmt.Errorf(
		"unable to calculate %s / %s price with a reasonable precision", volume, quantity)
}

// ConvertPrice converts a per-unit price to another currency through the
// trade volume, so that the converted price restores the converted volume.
func ConvertPrice(price Cash, quantity Quantity, date Date, currency string, converter *Converter) (Cash, error) {
	volume := price.Mul(quantity)

	converted, err := converter.ConvertTo(date, volume, currency)
	if err != nil {
		return Cash{}, err
	}
	converted = converted.RoundTo(decimalPrecision(volume) + 2)

	result, err := CalculatePrice(quantity, converted)
	if err != nil {
		return Cash{}, fmt.Errorf("unable to convert %s x %s price to %s: %w", quantity, price, currency, err)
	}
	return result, nil
}

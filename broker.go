package investax

// Broker describes the statement's origin: the institution name, its tax
// jurisdiction and its data quirks.
type Broker struct {
	Name         string
	Jurisdiction Jurisdiction

	// FeeReversal decides whether two fee events are a reversal pair that
	// should be suppressed as statement noise. Nil disables suppression.
	// This is a data-quality workaround for specific brokers, kept out of
	// the matching logic itself.
	FeeReversal func(fee, candidate Fee) bool
}

// SameDayFeeReversal reports same-day equal-and-opposite fee pairs.
// Interactive Brokers statements are known to contain such entries.
func SameDayFeeReversal(fee, candidate Fee) bool {
	return fee.Date == candidate.Date &&
		fee.Amount.Currency() == candidate.Amount.Currency() &&
		fee.Amount.Amount().Equal(candidate.Amount.Amount().Neg())
}

// NewBroker returns a broker with no statement quirks.
func NewBroker(name string, jurisdiction Jurisdiction) Broker {
	return Broker{Name: name, Jurisdiction: jurisdiction}
}

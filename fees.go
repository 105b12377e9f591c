package investax

// Fee is a standalone broker fee event. A negative amount is a refund of a
// previously withheld fee.
type Fee struct {
	Date        Date
	Amount      Cash
	Description string
}

// LocalDescription returns the fee description, or a default one based on
// the amount sign.
func (f Fee) LocalDescription() string {
	if f.Description != "" {
		return f.Description
	}
	if f.Amount.IsNegative() {
		return "Commission refund"
	}
	return "Broker commission"
}

// suppressFeeReversals drops fee pairs matched by the broker's reversal
// predicate. Both entries of a pair are noise: the fee was charged and
// refunded the same day.
func suppressFeeReversals(fees []Fee, reversal func(fee, candidate Fee) bool) []Fee {
	if reversal == nil {
		return fees
	}

	suppressed := make([]bool, len(fees))
	for i := range fees {
		if suppressed[i] {
			continue
		}
		for j := i + 1; j < len(fees); j++ {
			if !suppressed[j] && reversal(fees[i], fees[j]) {
				suppressed[i] = true
				suppressed[j] = true
				break
			}
		}
	}

	kept := make([]Fee, 0, len(fees))
	for i, fee := range fees {
		if !suppressed[i] {
			kept = append(kept, fee)
		}
	}
	return kept
}

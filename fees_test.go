package investax

import (
	"testing"
	"time"
)

func TestLocalDescription(t *testing.T) {
	date := NewDate(2023, time.June, 1)

	testCases := []struct {
		fee  Fee
		want string
	}{
		{Fee{Date: date, Amount: C(5, "USD"), Description: "Monthly activity fee"}, "Monthly activity fee"},
		{Fee{Date: date, Amount: C(5, "USD")}, "Broker commission"},
		{Fee{Date: date, Amount: C(-5, "USD")}, "Commission refund"},
	}
	for _, tc := range testCases {
		if got := tc.fee.LocalDescription(); got != tc.want {
			t.Errorf("LocalDescription() = %q, want %q", got, tc.want)
		}
	}
}

func TestSuppressFeeReversals(t *testing.T) {
	day1 := NewDate(2023, time.June, 1)
	day2 := NewDate(2023, time.June, 2)

	charge := Fee{Date: day1, Amount: C(10, "USD")}
	refund := Fee{Date: day1, Amount: C(-10, "USD")}
	unrelated := Fee{Date: day1, Amount: C(3, "USD")}
	laterRefund := Fee{Date: day2, Amount: C(-3, "USD")}

	t.Run("pairs are dropped, the rest kept", func(t *testing.T) {
		got := suppressFeeReversals([]Fee{charge, unrelated, refund, laterRefund}, SameDayFeeReversal)
		if len(got) != 2 {
			t.Fatalf("kept %d fees, want 2", len(got))
		}
		if !got[0].Amount.Equal(unrelated.Amount) || !got[1].Amount.Equal(laterRefund.Amount) {
			t.Errorf("kept the wrong fees: %v", got)
		}
	})

	t.Run("a refund on another day is not a reversal", func(t *testing.T) {
		fees := []Fee{{Date: day1, Amount: C(3, "USD")}, laterRefund}
		if got := suppressFeeReversals(fees, SameDayFeeReversal); len(got) != 2 {
			t.Errorf("kept %d fees, want 2", len(got))
		}
	})

	t.Run("different currencies are not a reversal", func(t *testing.T) {
		fees := []Fee{{Date: day1, Amount: C(10, "USD")}, {Date: day1, Amount: C(-10, "EUR")}}
		if got := suppressFeeReversals(fees, SameDayFeeReversal); len(got) != 2 {
			t.Errorf("kept %d fees, want 2", len(got))
		}
	})

	t.Run("nil predicate keeps everything", func(t *testing.T) {
		fees := []Fee{charge, refund}
		if got := suppressFeeReversals(fees, nil); len(got) != 2 {
			t.Errorf("kept %d fees, want 2", len(got))
		}
	})

	t.Run("each charge pairs with one refund only", func(t *testing.T) {
		fees := []Fee{charge, refund, {Date: day1, Amount: C(-10, "USD")}}
		got := suppressFeeReversals(fees, SameDayFeeReversal)
		if len(got) != 1 {
			t.Fatalf("kept %d fees, want 1", len(got))
		}
		if !got[0].Amount.IsNegative() {
			t.Errorf("kept %s, want the unpaired refund", got[0].Amount.Amount())
		}
	})
}

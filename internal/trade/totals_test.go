package trade

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestComputeLineBacksTaxOutOfInclusivePrice(t *testing.T) {
	lt := ComputeLine(118, 1, 0.18)
	require.InDelta(t, 100.00, lt.Subtotal, 0.0001)
	require.InDelta(t, 18.00, lt.Tax, 0.0001)
	require.InDelta(t, 118.00, lt.Total, 0.0001)

	// subtotal*(1+v) must reproduce the gross line total for any rate
	for _, v := range []float64{0, 0.18, 0.10} {
		lt := ComputeLine(73.55, 3, v)
		require.InDelta(t, lt.Total, lt.Subtotal*(1+v), 1e-9)
	}
}

func TestComputeLineZeroRate(t *testing.T) {
	lt := ComputeLine(50, 2, 0)
	require.InDelta(t, 100.00, lt.Subtotal, 0.0001)
	require.Zero(t, lt.Tax)
	require.InDelta(t, 100.00, lt.Total, 0.0001)
}

func TestComputeDocumentMixedRatesWithPercentDiscount(t *testing.T) {
	totals := ComputeDocument(DocumentInput{
		Lines: []Detail{
			{UnitPrice: 118, Quantity: 1, ValueTax: 0.18},
			{UnitPrice: 50, Quantity: 2, ValueTax: 0},
		},
		Discount:     10,
		DiscountMode: DiscountPercent,
	})
	require.InDelta(t, 200.00, totals.Subtotal, 0.0001)
	require.InDelta(t, 18.00, totals.Tax, 0.0001)
	require.InDelta(t, 218.00, totals.Total, 0.0001)
	require.InDelta(t, 21.80, totals.DiscountAmount, 0.0001)
	require.InDelta(t, 196.20, totals.FinalTotal, 0.0001)
}

func TestComputeDocumentOversizedDiscountGoesNegative(t *testing.T) {
	totals := ComputeDocument(DocumentInput{
		Lines:        []Detail{{UnitPrice: 100, Quantity: 1, ValueTax: 0}},
		Discount:     150,
		DiscountMode: DiscountAmount,
	})
	require.InDelta(t, -50.00, totals.FinalTotal, 0.0001)
}

func TestComputeDocumentShipping(t *testing.T) {
	totals := ComputeDocument(DocumentInput{
		Lines:    []Detail{{UnitPrice: 118, Quantity: 2, ValueTax: 0.18}},
		Shipping: 15,
	})
	require.InDelta(t, 236.00, totals.Total, 0.0001)
	require.InDelta(t, 251.00, totals.FinalTotal, 0.0001)
}

func TestTotalsForInputsMatchesComputeDocument(t *testing.T) {
	details := []DetailInput{
		{ProductID: "p1", Quantity: 1, UnitPrice: 118, ValueTax: 0.18},
		{ProductID: "p2", Quantity: 2, UnitPrice: 50},
	}

	totals := TotalsForInputs(details, 18, false, 5)
	require.InDelta(t, 218.00, totals.Total, 0.0001)
	require.InDelta(t, 205.00, totals.FinalTotal, 0.0001)

	totals = TotalsForInputs(details, 50, true, 0)
	require.InDelta(t, 109.00, totals.FinalTotal, 0.0001)
}

func TestMergeDateWithClockKeepsPickedDateAndCurrentTime(t *testing.T) {
	picked := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 3, 20, 14, 30, 0, 0, time.UTC)

	merged := MergeDateWithClock(picked, now)
	require.Equal(t, 2024, merged.Year())
	require.Equal(t, time.March, merged.Month())
	require.Equal(t, 15, merged.Day())
	require.Equal(t, 14, merged.Hour())
	require.Equal(t, 30, merged.Minute())
	require.Equal(t, time.UTC, merged.Location())
}

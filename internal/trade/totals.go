package trade

// LineTotals is the tax decomposition of a single line item. Unit prices are
// tax inclusive, so the subtotal is derived by dividing the gross amount out
// of the tax factor.
type LineTotals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// ComputeLine decomposes one line. valueTax is the rate as a fraction, e.g.
// 0.18 for IGV. A zero rate yields subtotal == total and no tax.
func ComputeLine(unitPrice, quantity, valueTax float64) LineTotals {
	gross := unitPrice * quantity
	subtotal := gross / (1 + valueTax)
	return LineTotals{
		Subtotal: subtotal,
		Tax:      valueTax * subtotal,
		Total:    gross,
	}
}

// DiscountMode selects how Discount in DocumentInput is interpreted.
type DiscountMode string

const (
	DiscountAmount  DiscountMode = "amount"
	DiscountPercent DiscountMode = "percent"
)

// DocumentInput is the raw material for document totals.
type DocumentInput struct {
	Lines        []Detail
	Discount     float64
	DiscountMode DiscountMode
	Shipping     float64
}

// DocumentTotals is the aggregate summary of a document.
type DocumentTotals struct {
	Subtotal       float64 `json:"subtotal"`
	Tax            float64 `json:"tax"`
	Total          float64 `json:"total"`
	DiscountAmount float64 `json:"discountAmount"`
	Shipping       float64 `json:"shipping"`
	FinalTotal     float64 `json:"finalTotal"`
}

// TotalsForInputs computes document totals straight from the lines of a
// save request. Document saves persist this result, never a submitted total.
func TotalsForInputs(details []DetailInput, discount float64, percent bool, shipping float64) DocumentTotals {
	lines := make([]Detail, 0, len(details))
	for _, d := range details {
		lines = append(lines, Detail{Quantity: d.Quantity, UnitPrice: d.UnitPrice, ValueTax: d.ValueTax})
	}
	mode := DiscountAmount
	if percent {
		mode = DiscountPercent
	}
	return ComputeDocument(DocumentInput{
		Lines:        lines,
		Discount:     discount,
		DiscountMode: mode,
		Shipping:     shipping,
	})
}

// ComputeDocument sums the line decompositions and applies discount and
// shipping. A percent discount is taken on the gross total. The final total
// is not clamped at zero: an oversized discount produces a negative amount
// and the caller decides whether that is acceptable.
func ComputeDocument(in DocumentInput) DocumentTotals {
	var t DocumentTotals
	for _, line := range in.Lines {
		lt := ComputeLine(line.UnitPrice, line.Quantity, line.ValueTax)
		t.Subtotal += lt.Subtotal
		t.Tax += lt.Tax
		t.Total += lt.Total
	}
	switch in.DiscountMode {
	case DiscountPercent:
		t.DiscountAmount = t.Total * in.Discount / 100
	default:
		t.DiscountAmount = in.Discount
	}
	t.Shipping = in.Shipping
	t.FinalTotal = t.Total - t.DiscountAmount + t.Shipping
	return t
}

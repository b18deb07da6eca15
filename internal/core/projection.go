package core

// ProjectedBill is a bill annotated with its paid flag for one month.
type ProjectedBill struct {
	Bill
	IsPaid bool `json:"isPaid"`
}

// Totals aggregates a month's projected bills.
type Totals struct {
	Total     Money `json:"total"`
	Paid      Money `json:"paid"`
	Remaining Money `json:"remaining"`
}

// Project attaches the paid flag from a month's payment-mark set to every
// bill, preserving store order. It never mutates its inputs; paid may be nil.
func Project(bills []Bill, paid map[string]bool) []ProjectedBill {
	out := make([]ProjectedBill, len(bills))
	for i, b := range bills {
		out[i] = ProjectedBill{Bill: b, IsPaid: paid[b.ID]}
	}
	return out
}

// Sum computes the month totals over projected bills. Arithmetic is exact
// integer cents; no rounding is applied here.
func Sum(projected []ProjectedBill) Totals {
	var t Totals
	for _, b := range projected {
		t.Total = t.Total.Add(b.Amount)
		if b.IsPaid {
			t.Paid = t.Paid.Add(b.Amount)
		}
	}
	t.Remaining = t.Total.Sub(t.Paid)
	return t
}

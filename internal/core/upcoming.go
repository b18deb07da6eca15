package core

import "time"

// upcomingWindow is the inclusive look-ahead for upcoming bills.
const upcomingWindow = 7 * 24 * time.Hour

// SelectUpcoming returns the unpaid bills whose due date falls within seven
// days of the reference date, inclusive of both endpoints.
//
// The due date is always constructed inside the reference month. A DueDay
// beyond the month's length overflows into the next month under Go's calendar
// normalization (day 31 in a 30-day month becomes the 1st of the following
// month); it is deliberately not clamped to the month's last day.
// Result order follows the input order.
func SelectUpcoming(projected []ProjectedBill, ref time.Time) []ProjectedBill {
	today := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
	var out []ProjectedBill
	for _, b := range projected {
		if b.IsPaid {
			continue
		}
		due := time.Date(ref.Year(), ref.Month(), b.DueDay, 0, 0, 0, 0, time.UTC)
		diff := due.Sub(today)
		if diff >= 0 && diff <= upcomingWindow {
			out = append(out, b)
		}
	}
	return out
}

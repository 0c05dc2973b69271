package services

import "time"

// NextMonthlyDue returns the due date one month after the given one, keeping
// the day of month and clamping to the last day when the next month is
// shorter (Jan 31 -> Feb 28/29).
func NextMonthlyDue(from time.Time) time.Time {
	year, month, day := from.Date()
	next := month + 1

	lastDay := time.Date(year, next+1, 0, 0, 0, 0, 0, from.Location()).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(year, next, day, 0, 0, 0, 0, from.Location())
}

// FirstInstallmentDue is the due date of the first unpaid installment: one
// month after the expense date, since the first installment is paid at
// purchase time.
func FirstInstallmentDue(expenseDate time.Time) time.Time {
	return NextMonthlyDue(expenseDate)
}

package analytics

import (
	"fmt"
	"time"
)

// DateKeyLayout is the store's date key format; lexical order equals
// chronological order, which is what makes range scans by date key work.
const DateKeyLayout = "2006-01-02"

// DateRange is an inclusive window of local calendar dates.
type DateRange struct {
	Start string
	End   string
}

// LocalDate formats t's local calendar date as a store key.
func LocalDate(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// RangeFor resolves a day count into [today-(days-1), today] using now's local
// calendar. Day counts below one collapse to a single day.
func RangeFor(days int, now time.Time) DateRange {
	if days < 1 {
		days = 1
	}
	return DateRange{
		Start: LocalDate(now.AddDate(0, 0, -(days - 1))),
		End:   LocalDate(now),
	}
}

// RangeLabel is the human label for a selected day count.
func RangeLabel(days int) string {
	if days <= 1 {
		return "Today"
	}
	return fmt.Sprintf("Last %dd", days)
}

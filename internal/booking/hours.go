package booking

import "time"

// Hours is an open/close window in minutes since midnight.
type Hours struct {
	Open  int
	Close int
}

// Library opening policy. Changing operating hours means changing this table.
var (
	weekdayHours  = Hours{Open: 7 * 60, Close: 21*60 + 55}  // 07:00–21:55
	saturdayHours = Hours{Open: 8 * 60, Close: 13*60 + 55} // 08:00–13:55
)

// OpeningHours returns the opening window for a calendar date.
// The second return value is false when the library is closed that day.
func OpeningHours(date time.Time) (Hours, bool) {
	switch date.Weekday() {
	case time.Sunday:
		return Hours{}, false
	case time.Saturday:
		return saturdayHours, true
	default:
		return weekdayHours, true
	}
}

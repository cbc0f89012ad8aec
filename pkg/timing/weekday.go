package timing

import "time"

// Weekday is the day name stored in the day_of_week column.
type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

// Weekdays lists every day in display order.
var Weekdays = [7]Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// WeekdayOf returns the weekday name of the given date.
func WeekdayOf(date time.Time) Weekday {
	// time.Weekday starts at Sunday
	return Weekdays[(int(date.Weekday())+6)%7]
}

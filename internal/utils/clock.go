package utils

import "time"

// DateLayout is the calendar date format used for override ranges.
const DateLayout = "2006-01-02"

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

type MockClock struct {
	FixedNow time.Time
}

func (m *MockClock) Now() time.Time {
	return m.FixedNow
}

func (m *MockClock) SetNow(now time.Time) {
	m.FixedNow = now
}

// DaysFrom returns the calendar date n days after the clock's current date.
func DaysFrom(clock Clock, n int) string {
	return clock.Now().AddDate(0, 0, n).Format(DateLayout)
}

package timing

import (
	"time"

	"github.com/libradesk/libradesk/internal/utils"
)

type HoursSource string

const (
	SourceWeekly   HoursSource = "weekly"
	SourceOverride HoursSource = "override"
)

// EffectiveHours are the hours that apply to one calendar date.
type EffectiveHours struct {
	Date       string
	Day        Weekday
	IsClosed   bool
	Open       string
	Close      string
	Source     HoursSource
	OverrideId string
}

// ResolveHours returns the hours in force on date. The first override whose
// inclusive range contains the date wins; otherwise the weekly rule applies.
// Overrides with unparseable dates or an end before their start never match.
func ResolveHours(view BranchTimingView, date time.Time) EffectiveHours {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	weekday := WeekdayOf(day)
	result := EffectiveHours{Date: day.Format(utils.DateLayout), Day: weekday}

	for _, o := range view.Overrides {
		if !covers(o, day) {
			continue
		}
		result.IsClosed = o.IsClosed
		result.Source = SourceOverride
		result.OverrideId = o.Id
		if !o.IsClosed {
			result.Open, result.Close = o.Open, o.Close
		}
		return result
	}

	for _, rule := range view.Weekly {
		if rule.Day != weekday {
			continue
		}
		result.IsClosed = rule.IsClosed
		if !rule.IsClosed {
			result.Open, result.Close = rule.Open, rule.Close
		}
		break
	}
	result.Source = SourceWeekly
	return result
}

func covers(o OverrideRule, day time.Time) bool {
	startDate, endDate := o.StartDate, o.EndDate
	// a single-sided range covers only its one date
	if startDate == "" {
		startDate = endDate
	}
	if endDate == "" {
		endDate = startDate
	}
	start, err := time.Parse(utils.DateLayout, startDate)
	if err != nil {
		return false
	}
	end, err := time.Parse(utils.DateLayout, endDate)
	if err != nil || end.Before(start) {
		return false
	}
	return !day.Before(start) && !day.After(end)
}

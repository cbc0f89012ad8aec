package timing

import "slices"

const (
	DefaultOpen  = "09:00"
	DefaultClose = "17:00"
)

// WeekdayRule holds the recurring hours of one weekday. Open and Close are
// canonical "HH:MM" values and carry no meaning while IsClosed is set.
type WeekdayRule struct {
	Day      Weekday
	IsClosed bool
	Open     string
	Close    string
}

// OverrideRule is a date range during which every weekday follows the same
// exception. Id is generated on load and is only stable within one editing
// session. Note is never persisted.
type OverrideRule struct {
	Id        string
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD, inclusive
	IsClosed  bool
	Open      string
	Close     string
	Note      string
}

// StoredTimingRow mirrors one row of the timings table. Nil pointers are NULLs.
// Rows without dates are weekly rules, rows with any date are override rows.
type StoredTimingRow struct {
	Id        int
	BranchId  int
	DayOfWeek Weekday
	StartDate *string
	EndDate   *string
	IsClosed  bool
	OpenTime  *string
	CloseTime *string
}

func (r StoredTimingRow) IsWeekly() bool {
	return r.StartDate == nil && r.EndDate == nil
}

// BranchTimingView is the normalised editing view of a branch's hours.
type BranchTimingView struct {
	BranchId   int
	BranchName string
	Weekly     [7]WeekdayRule
	Overrides  []OverrideRule
}

// Clone returns a copy that shares no memory with v.
func (v BranchTimingView) Clone() BranchTimingView {
	v.Overrides = slices.Clone(v.Overrides)
	return v
}

func (v BranchTimingView) Override(id string) (OverrideRule, bool) {
	for _, o := range v.Overrides {
		if o.Id == id {
			return o, true
		}
	}
	return OverrideRule{}, false
}

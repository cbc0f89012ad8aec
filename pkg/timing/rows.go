package timing

import (
	"strconv"

	"github.com/google/uuid"
)

// BuildDefaultWeek returns seven open days with default hours.
func BuildDefaultWeek() [7]WeekdayRule {
	var week [7]WeekdayRule
	for i, day := range Weekdays {
		week[i] = WeekdayRule{Day: day, Open: DefaultOpen, Close: DefaultClose}
	}
	return week
}

// CollapseWeekly picks the weekly row of each weekday. Days without a weekly
// row keep the defaults, so the result is always complete and in order.
func CollapseWeekly(rows []StoredTimingRow) [7]WeekdayRule {
	week := BuildDefaultWeek()
	for i, day := range Weekdays {
		for _, row := range rows {
			if !row.IsWeekly() || row.DayOfWeek != day {
				continue
			}
			week[i] = WeekdayRule{
				Day:      day,
				IsClosed: row.IsClosed,
				Open:     ToCanonical(row.OpenTime),
				Close:    ToCanonical(row.CloseTime),
			}
			break
		}
	}
	return week
}

// ExpandWeekly produces the seven dateless rows of a weekly schedule.
func ExpandWeekly(weekly [7]WeekdayRule, branchId int) []StoredTimingRow {
	rows := make([]StoredTimingRow, 0, len(weekly))
	for _, rule := range weekly {
		rows = append(rows, StoredTimingRow{
			BranchId:  branchId,
			DayOfWeek: rule.Day,
			IsClosed:  rule.IsClosed,
			OpenTime:  ToStorage(rule.Open, rule.IsClosed),
			CloseTime: ToStorage(rule.Close, rule.IsClosed),
		})
	}
	return rows
}

type overrideKey struct {
	startDate string
	endDate   string
	isClosed  string
	openTime  string
	closeTime string
}

func keyOf(row StoredTimingRow) overrideKey {
	return overrideKey{
		startDate: valueOrEmpty(row.StartDate),
		endDate:   valueOrEmpty(row.EndDate),
		isClosed:  strconv.FormatBool(row.IsClosed),
		openTime:  valueOrEmpty(row.OpenTime),
		closeTime: valueOrEmpty(row.CloseTime),
	}
}

// GroupOverrides rebuilds overrides from their per-weekday rows. Rows sharing
// dates, closed flag and times form one override, emitted in first-seen order
// with values taken from the first row. Storage keeps no override identity, so
// two overrides saved with identical values come back as one.
func GroupOverrides(rows []StoredTimingRow) []OverrideRule {
	seen := make(map[overrideKey]struct{})
	var overrides []OverrideRule
	for _, row := range rows {
		if row.IsWeekly() {
			continue
		}
		key := keyOf(row)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		overrides = append(overrides, OverrideRule{
			Id:        newOverrideId(),
			StartDate: valueOrEmpty(row.StartDate),
			EndDate:   valueOrEmpty(row.EndDate),
			IsClosed:  row.IsClosed,
			Open:      ToCanonical(row.OpenTime),
			Close:     ToCanonical(row.CloseTime),
		})
	}
	return overrides
}

// ExpandOverrides writes every override as seven rows, one per weekday.
func ExpandOverrides(overrides []OverrideRule, branchId int) []StoredTimingRow {
	rows := make([]StoredTimingRow, 0, len(overrides)*len(Weekdays))
	for _, o := range overrides {
		startDate := emptyToNil(o.StartDate)
		endDate := emptyToNil(o.EndDate)
		openTime := ToStorage(o.Open, o.IsClosed)
		closeTime := ToStorage(o.Close, o.IsClosed)
		for _, day := range Weekdays {
			rows = append(rows, StoredTimingRow{
				BranchId:  branchId,
				DayOfWeek: day,
				StartDate: startDate,
				EndDate:   endDate,
				IsClosed:  o.IsClosed,
				OpenTime:  openTime,
				CloseTime: closeTime,
			})
		}
	}
	return rows
}

// Expand flattens a view into the full replacement row set for its branch:
// seven weekly rows followed by seven rows per override.
func Expand(view BranchTimingView) []StoredTimingRow {
	return append(ExpandWeekly(view.Weekly, view.BranchId), ExpandOverrides(view.Overrides, view.BranchId)...)
}

// Collapse builds the editing view from a branch's stored rows.
func Collapse(branchId int, branchName string, rows []StoredTimingRow) BranchTimingView {
	return BranchTimingView{
		BranchId:   branchId,
		BranchName: branchName,
		Weekly:     CollapseWeekly(rows),
		Overrides:  GroupOverrides(rows),
	}
}

func newOverrideId() string {
	return uuid.NewString()
}

func valueOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func emptyToNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

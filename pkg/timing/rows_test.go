package timing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleView() BranchTimingView {
	weekly := BuildDefaultWeek()
	weekly[5] = WeekdayRule{Day: Saturday, Open: "10:00", Close: "14:00"}
	weekly[6] = WeekdayRule{Day: Sunday, IsClosed: true}
	return BranchTimingView{
		BranchId:   3,
		BranchName: "Central",
		Weekly:     weekly,
		Overrides: []OverrideRule{
			{Id: "a", StartDate: "2026-12-24", EndDate: "2026-12-26", IsClosed: true, Note: "Christmas"},
			{Id: "b", StartDate: "2026-07-01", EndDate: "2026-07-31", Open: "10:00", Close: "15:00"},
		},
	}
}

func withoutIdsAndNotes(overrides []OverrideRule) []OverrideRule {
	result := make([]OverrideRule, 0, len(overrides))
	for _, o := range overrides {
		o.Id = ""
		o.Note = ""
		result = append(result, o)
	}
	return result
}

func TestBuildDefaultWeek(t *testing.T) {
	week := BuildDefaultWeek()

	for i, rule := range week {
		assert.Equal(t, Weekdays[i], rule.Day)
		assert.False(t, rule.IsClosed)
		assert.Equal(t, "09:00", rule.Open)
		assert.Equal(t, "17:00", rule.Close)
	}
}

func TestCollapseWeekly(t *testing.T) {
	t.Run("should return seven defaults for no rows", func(t *testing.T) {
		assert.Equal(t, BuildDefaultWeek(), CollapseWeekly(nil))
	})

	t.Run("should fill missing days with defaults and keep weekday order", func(t *testing.T) {
		// given
		rows := []StoredTimingRow{
			{DayOfWeek: Sunday, IsClosed: true},
			{DayOfWeek: Wednesday, OpenTime: ptr("08:00:00"), CloseTime: ptr("12:30:00")},
		}

		// when
		week := CollapseWeekly(rows)

		// then
		require.Len(t, week, 7)
		for i := range week {
			assert.Equal(t, Weekdays[i], week[i].Day)
		}
		assert.Equal(t, WeekdayRule{Day: Wednesday, Open: "08:00", Close: "12:30"}, week[2])
		assert.Equal(t, WeekdayRule{Day: Sunday, IsClosed: true}, week[6])
		assert.Equal(t, WeekdayRule{Day: Monday, Open: "09:00", Close: "17:00"}, week[0])
	})

	t.Run("should ignore override rows", func(t *testing.T) {
		rows := []StoredTimingRow{
			{DayOfWeek: Monday, StartDate: ptr("2026-01-01"), IsClosed: true},
		}

		week := CollapseWeekly(rows)

		assert.False(t, week[0].IsClosed)
	})
}

func TestExpand(t *testing.T) {
	t.Run("should produce seven rows plus seven per override", func(t *testing.T) {
		for n := 0; n <= 3; n++ {
			view := BranchTimingView{BranchId: 1, Weekly: BuildDefaultWeek()}
			for i := 0; i < n; i++ {
				view.Overrides = append(view.Overrides, OverrideRule{Id: "x", StartDate: "2026-01-01"})
			}
			assert.Len(t, Expand(view), 7+7*n)
		}
	})

	t.Run("should write weekly rows first without dates", func(t *testing.T) {
		rows := Expand(sampleView())

		for i, row := range rows[:7] {
			assert.True(t, row.IsWeekly())
			assert.Equal(t, Weekdays[i], row.DayOfWeek)
			assert.Equal(t, 3, row.BranchId)
		}
		for _, row := range rows[7:] {
			assert.False(t, row.IsWeekly())
		}
	})

	t.Run("should write null times for closed days whatever they hold", func(t *testing.T) {
		view := BranchTimingView{BranchId: 1, Weekly: BuildDefaultWeek()}
		view.Weekly[1].IsClosed = true

		rows := Expand(view)

		assert.Nil(t, rows[1].OpenTime)
		assert.Nil(t, rows[1].CloseTime)
		require.NotNil(t, rows[0].OpenTime)
		assert.Equal(t, "09:00", *rows[0].OpenTime)
	})

	t.Run("should write each override on every weekday", func(t *testing.T) {
		view := BranchTimingView{
			BranchId:  1,
			Weekly:    BuildDefaultWeek(),
			Overrides: []OverrideRule{{Id: "a", StartDate: "2026-02-01", EndDate: "2026-02-01", Open: "11:00", Close: "13:00"}},
		}

		rows := Expand(view)[7:]

		days := map[Weekday]bool{}
		for _, row := range rows {
			days[row.DayOfWeek] = true
			assert.Equal(t, "2026-02-01", *row.StartDate)
			assert.Equal(t, "2026-02-01", *row.EndDate)
			assert.Equal(t, "11:00", *row.OpenTime)
			assert.Equal(t, "13:00", *row.CloseTime)
		}
		assert.Len(t, days, 7)
	})
}

func TestGroupOverrides(t *testing.T) {
	t.Run("should return one override per group in first-seen order", func(t *testing.T) {
		view := sampleView()

		overrides := GroupOverrides(Expand(view))

		require.Len(t, overrides, 2)
		assert.Equal(t, "2026-12-24", overrides[0].StartDate)
		assert.Equal(t, "2026-07-01", overrides[1].StartDate)
	})

	t.Run("should generate fresh ids", func(t *testing.T) {
		overrides := GroupOverrides(Expand(sampleView()))

		assert.NotEqual(t, "a", overrides[0].Id)
		assert.NotEmpty(t, overrides[0].Id)
		assert.NotEqual(t, overrides[0].Id, overrides[1].Id)
	})

	t.Run("should canonicalise stored times", func(t *testing.T) {
		rows := []StoredTimingRow{
			{DayOfWeek: Monday, StartDate: ptr("2026-03-01"), OpenTime: ptr("10:00:00"), CloseTime: ptr("12:00:00")},
		}

		overrides := GroupOverrides(rows)

		require.Len(t, overrides, 1)
		assert.Equal(t, "10:00", overrides[0].Open)
		assert.Equal(t, "12:00", overrides[0].Close)
		assert.Equal(t, "", overrides[0].EndDate)
	})

	t.Run("should merge overrides that only differ by note", func(t *testing.T) {
		// given
		view := BranchTimingView{
			BranchId: 1,
			Weekly:   BuildDefaultWeek(),
			Overrides: []OverrideRule{
				{Id: "a", StartDate: "2026-05-01", EndDate: "2026-05-01", IsClosed: true, Note: "Labour day"},
				{Id: "b", StartDate: "2026-05-01", EndDate: "2026-05-01", IsClosed: true, Note: "Inventory"},
			},
		}

		// when
		overrides := GroupOverrides(Expand(view))

		// then
		require.Len(t, overrides, 1)
		assert.Empty(t, overrides[0].Note)
	})
}

func TestCollapse(t *testing.T) {
	t.Run("should round trip a view except ids and notes", func(t *testing.T) {
		// given
		view := sampleView()

		// when
		collapsed := Collapse(view.BranchId, view.BranchName, Expand(view))

		// then
		assert.Equal(t, view.BranchId, collapsed.BranchId)
		assert.Equal(t, view.BranchName, collapsed.BranchName)
		assert.Equal(t, view.Weekly, collapsed.Weekly)
		assert.Equal(t, withoutIdsAndNotes(view.Overrides), withoutIdsAndNotes(collapsed.Overrides))
	})

	t.Run("should drop in-memory times of closed days", func(t *testing.T) {
		view := BranchTimingView{BranchId: 1, Weekly: BuildDefaultWeek()}
		view.Weekly[0] = WeekdayRule{Day: Monday, IsClosed: true, Open: "09:00", Close: "17:00"}

		collapsed := Collapse(1, "", Expand(view))

		assert.Equal(t, WeekdayRule{Day: Monday, IsClosed: true}, collapsed.Weekly[0])
	})

	t.Run("should keep a midnight closing time through storage", func(t *testing.T) {
		// given
		view := BranchTimingView{BranchId: 1, Weekly: BuildDefaultWeek()}
		view.Weekly[4] = WeekdayRule{Day: Friday, Open: "18:00", Close: "24:00"}
		rows := Expand(view)
		// the database returns times with seconds
		for i := range rows {
			if rows[i].CloseTime != nil {
				rows[i].CloseTime = ptr(*rows[i].CloseTime + ":00")
			}
		}

		// when
		collapsed := Collapse(1, "", rows)

		// then
		assert.Equal(t, WeekdayRule{Day: Friday, Open: "18:00", Close: "24:00"}, collapsed.Weekly[4])
		resaved := Expand(collapsed)
		require.NotNil(t, resaved[4].CloseTime)
		assert.Equal(t, "24:00", *resaved[4].CloseTime)
	})

	t.Run("should return defaults and no overrides for no rows", func(t *testing.T) {
		collapsed := Collapse(9, "Empty", nil)

		assert.Equal(t, BuildDefaultWeek(), collapsed.Weekly)
		assert.Empty(t, collapsed.Overrides)
	})
}

package timing

import (
	"slices"

	"github.com/libradesk/libradesk/internal/utils"
)

// WeekdayPatch changes the non-nil fields of a weekday rule.
type WeekdayPatch struct {
	IsClosed *bool
	Open     *string
	Close    *string
}

// OverridePatch changes the non-nil fields of an override.
type OverridePatch struct {
	StartDate *string
	EndDate   *string
	IsClosed  *bool
	Open      *string
	Close     *string
	Note      *string
}

// Editor applies user edits to a BranchTimingView. It performs no I/O: every
// operation builds a new view, reports it through onChange and returns it.
// Views handed out earlier are never modified.
//
// Override date ranges are not validated; an end date before the start date is
// kept as entered.
type Editor struct {
	value    BranchTimingView
	clock    utils.Clock
	onChange func(BranchTimingView)
}

func NewEditor(value BranchTimingView, clock utils.Clock, onChange func(BranchTimingView)) *Editor {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	return &Editor{value: value.Clone(), clock: clock, onChange: onChange}
}

func (e *Editor) Value() BranchTimingView {
	return e.value.Clone()
}

// ChangeWeekday merges patch into the weekday at index. An index outside 0..6,
// or a patch that changes nothing, leaves the view unchanged.
func (e *Editor) ChangeWeekday(index int, patch WeekdayPatch) BranchTimingView {
	if index < 0 || index >= len(e.value.Weekly) {
		return e.Value()
	}
	next := e.value.Clone()
	rule := next.Weekly[index]
	if patch.IsClosed != nil {
		rule.IsClosed = *patch.IsClosed
	}
	if patch.Open != nil {
		rule.Open = *patch.Open
	}
	if patch.Close != nil {
		rule.Close = *patch.Close
	}
	if rule == next.Weekly[index] {
		return e.Value()
	}
	next.Weekly[index] = rule
	return e.commit(next)
}

// AddOverride appends a closed, single-day override for tomorrow.
func (e *Editor) AddOverride() BranchTimingView {
	next := e.value.Clone()
	tomorrow := utils.DaysFrom(e.clock, 1)
	next.Overrides = append(next.Overrides, OverrideRule{
		Id:        newOverrideId(),
		StartDate: tomorrow,
		EndDate:   tomorrow,
		IsClosed:  true,
		Open:      DefaultOpen,
		Close:     DefaultClose,
	})
	return e.commit(next)
}

// ChangeOverride merges patch into the override with the given id. Unknown ids
// and patches that change nothing leave the view unchanged.
func (e *Editor) ChangeOverride(id string, patch OverridePatch) BranchTimingView {
	idx := slices.IndexFunc(e.value.Overrides, func(o OverrideRule) bool { return o.Id == id })
	if idx < 0 {
		return e.Value()
	}
	next := e.value.Clone()
	o := next.Overrides[idx]
	if patch.StartDate != nil {
		o.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		o.EndDate = *patch.EndDate
	}
	if patch.IsClosed != nil {
		o.IsClosed = *patch.IsClosed
	}
	if patch.Open != nil {
		o.Open = *patch.Open
	}
	if patch.Close != nil {
		o.Close = *patch.Close
	}
	if patch.Note != nil {
		o.Note = *patch.Note
	}
	if o == next.Overrides[idx] {
		return e.Value()
	}
	next.Overrides[idx] = o
	return e.commit(next)
}

// DeleteOverride removes the override with the given id, if present.
func (e *Editor) DeleteOverride(id string) BranchTimingView {
	if _, ok := e.value.Override(id); !ok {
		return e.Value()
	}
	next := e.value.Clone()
	next.Overrides = slices.DeleteFunc(next.Overrides, func(o OverrideRule) bool { return o.Id == id })
	return e.commit(next)
}

func (e *Editor) commit(next BranchTimingView) BranchTimingView {
	e.value = next
	if e.onChange != nil {
		e.onChange(next.Clone())
	}
	return next.Clone()
}

package filter

import (
	"time"

	"github.com/jinzhu/now"

	"semantic-compiler/internal/domain"
)

// Window is the range a relative date filter selects. Until is inclusive
// unless UntilExclusive is set.
type Window struct {
	From           time.Time
	Until          time.Time
	UntilExclusive bool
}

// RelativeWindow computes the range selected by a relative date operator
// around at, n units wide.
//
//	in the current            [startOf(at), endOf(at)]
//	in the past               [at - n, at]
//	in the past, completed    [startOf(at) - n, startOf(at))
//	in the next               [at, at + n]
//	in the next, completed    [startOf(at + 1), startOf(at + 1) + n)
func RelativeWindow(op domain.FilterOperator, n int, settings domain.DateFilterSettings, at time.Time, weekStart *domain.WeekDay) (Window, error) {
	unit := settings.UnitOfTime
	if unit == "" {
		unit = domain.UnitDays
	}
	if !unit.Valid() {
		return Window{}, invalidValue("unknown unit of time %q", unit)
	}
	if n < 0 {
		return Window{}, invalidValue("relative date count must be >= 0, got %d", n)
	}
	if weekStart != nil && !weekStart.Valid() {
		return Window{}, invalidValue("invalid start of week %s", *weekStart)
	}

	switch op {
	case domain.OperatorInTheCurrent:
		return Window{From: StartOf(unit, at, weekStart), Until: EndOf(unit, at, weekStart)}, nil
	case domain.OperatorInThePast:
		if settings.Completed {
			start := StartOf(unit, at, weekStart)
			return Window{From: AddUnits(unit, start, -n), Until: start, UntilExclusive: true}, nil
		}
		return Window{From: AddUnits(unit, at, -n), Until: at}, nil
	case domain.OperatorInTheNext:
		if settings.Completed {
			start := StartOf(unit, AddUnits(unit, at, 1), weekStart)
			return Window{From: start, Until: AddUnits(unit, start, n), UntilExclusive: true}, nil
		}
		return Window{From: at, Until: AddUnits(unit, at, n)}, nil
	default:
		return Window{}, unsupportedOperator("relative date", op)
	}
}

// weekStartDay maps a Monday-based WeekDay onto time.Weekday. Weeks start
// on Sunday when no start of week is configured.
func weekStartDay(d *domain.WeekDay) time.Weekday {
	if d == nil {
		return time.Sunday
	}
	if !d.Valid() {
		return domain.Unreachable[time.Weekday]("start of week", *d)
	}
	return time.Weekday((int(*d) + 1) % 7)
}

func calendar(t time.Time, weekStart *domain.WeekDay) *now.Now {
	cfg := &now.Config{WeekStartDay: weekStartDay(weekStart), TimeLocation: t.Location()}
	return cfg.With(t)
}

// StartOf returns the first instant of the unit-long period containing t.
func StartOf(unit domain.UnitOfTime, t time.Time, weekStart *domain.WeekDay) time.Time {
	c := calendar(t, weekStart)
	switch unit {
	case domain.UnitYears:
		return c.BeginningOfYear()
	case domain.UnitQuarters:
		return c.BeginningOfQuarter()
	case domain.UnitMonths:
		return c.BeginningOfMonth()
	case domain.UnitWeeks:
		return c.BeginningOfWeek()
	case domain.UnitDays:
		return c.BeginningOfDay()
	case domain.UnitHours:
		return c.BeginningOfHour()
	case domain.UnitMinutes:
		return c.BeginningOfMinute()
	case domain.UnitSeconds:
		y, m, d := t.Date()
		return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, t.Location())
	default:
		return domain.Unreachable[time.Time]("unit of time", unit)
	}
}

// EndOf returns the last instant (nanosecond precision) of the unit-long
// period containing t.
func EndOf(unit domain.UnitOfTime, t time.Time, weekStart *domain.WeekDay) time.Time {
	c := calendar(t, weekStart)
	switch unit {
	case domain.UnitYears:
		return c.EndOfYear()
	case domain.UnitQuarters:
		return c.EndOfQuarter()
	case domain.UnitMonths:
		return c.EndOfMonth()
	case domain.UnitWeeks:
		return c.EndOfWeek()
	case domain.UnitDays:
		return c.EndOfDay()
	case domain.UnitHours:
		return c.EndOfHour()
	case domain.UnitMinutes:
		return c.EndOfMinute()
	case domain.UnitSeconds:
		return StartOf(unit, t, weekStart).Add(time.Second - time.Nanosecond)
	default:
		return domain.Unreachable[time.Time]("unit of time", unit)
	}
}

// AddUnits moves t by n units. Month-based units clamp to the last day of
// the target month, so Mar 31 minus one month is the last day of February.
func AddUnits(unit domain.UnitOfTime, t time.Time, n int) time.Time {
	switch unit {
	case domain.UnitYears:
		return addMonths(t, 12*n)
	case domain.UnitQuarters:
		return addMonths(t, 3*n)
	case domain.UnitMonths:
		return addMonths(t, n)
	case domain.UnitWeeks:
		return t.AddDate(0, 0, 7*n)
	case domain.UnitDays:
		return t.AddDate(0, 0, n)
	case domain.UnitHours:
		return t.Add(time.Duration(n) * time.Hour)
	case domain.UnitMinutes:
		return t.Add(time.Duration(n) * time.Minute)
	case domain.UnitSeconds:
		return t.Add(time.Duration(n) * time.Second)
	default:
		return domain.Unreachable[time.Time]("unit of time", unit)
	}
}

func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysInMonth(first); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

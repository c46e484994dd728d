package domain

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// FilterOperator names the comparison a filter rule applies.
type FilterOperator string

const (
	OperatorNull               FilterOperator = "isNull"
	OperatorNotNull            FilterOperator = "notNull"
	OperatorEquals             FilterOperator = "equals"
	OperatorNotEquals          FilterOperator = "notEquals"
	OperatorStartsWith         FilterOperator = "startsWith"
	OperatorInclude            FilterOperator = "include"
	OperatorNotInclude         FilterOperator = "doesNotInclude"
	OperatorLessThan           FilterOperator = "lessThan"
	OperatorLessThanOrEqual    FilterOperator = "lessThanOrEqual"
	OperatorGreaterThan        FilterOperator = "greaterThan"
	OperatorGreaterThanOrEqual FilterOperator = "greaterThanOrEqual"
	OperatorInThePast          FilterOperator = "inThePast"
	OperatorInTheNext          FilterOperator = "inTheNext"
	OperatorInTheCurrent       FilterOperator = "inTheCurrent"
	OperatorInBetween          FilterOperator = "inBetween"
)

// FieldTarget identifies the field a filter rule applies to.
type FieldTarget struct {
	FieldID string `json:"fieldId" yaml:"field_id"`
}

// FilterRule is a declarative predicate over one field. Settings is free-form;
// date rules decode it with DateSettings.
type FilterRule struct {
	ID       string         `json:"id" yaml:"id"`
	Target   FieldTarget    `json:"target" yaml:"target"`
	Operator FilterOperator `json:"operator" yaml:"operator"`
	Values   []any          `json:"values,omitempty" yaml:"values"`
	Settings map[string]any `json:"settings,omitempty" yaml:"settings"`
}

// UnitOfTime is the calendar granularity of relative date filters.
type UnitOfTime string

const (
	UnitYears    UnitOfTime = "years"
	UnitQuarters UnitOfTime = "quarters"
	UnitMonths   UnitOfTime = "months"
	UnitWeeks    UnitOfTime = "weeks"
	UnitDays     UnitOfTime = "days"
	UnitHours    UnitOfTime = "hours"
	UnitMinutes  UnitOfTime = "minutes"
	UnitSeconds  UnitOfTime = "seconds"
)

// Valid reports whether u is a known unit of time.
func (u UnitOfTime) Valid() bool {
	switch u {
	case UnitYears, UnitQuarters, UnitMonths, UnitWeeks, UnitDays, UnitHours, UnitMinutes, UnitSeconds:
		return true
	}
	return false
}

// DateFilterSettings configures relative date operators.
type DateFilterSettings struct {
	UnitOfTime UnitOfTime `json:"unitOfTime" yaml:"unit_of_time"`
	Completed  bool       `json:"completed" yaml:"completed"`
}

// DateFilterRule is a FilterRule over a date or timestamp field.
type DateFilterRule struct {
	ID       string             `json:"id"`
	Target   FieldTarget        `json:"target"`
	Operator FilterOperator     `json:"operator"`
	Values   []any              `json:"values,omitempty"`
	Settings DateFilterSettings `json:"settings"`
}

// DateSettings decodes the rule's free-form settings into date settings.
// A missing unit defaults to days.
func (r FilterRule) DateSettings() (DateFilterSettings, error) {
	settings := DateFilterSettings{UnitOfTime: UnitDays}
	if raw, ok := lookupSetting(r.Settings, "unitOfTime", "unit_of_time"); ok {
		unit, err := cast.ToStringE(raw)
		if err != nil {
			return settings, fmt.Errorf("unitOfTime: %w", err)
		}
		if unit != "" {
			settings.UnitOfTime = UnitOfTime(strings.ToLower(unit))
		}
	}
	if !settings.UnitOfTime.Valid() {
		return settings, fmt.Errorf("unknown unit of time %q", settings.UnitOfTime)
	}
	if raw, ok := lookupSetting(r.Settings, "completed"); ok {
		completed, err := cast.ToBoolE(raw)
		if err != nil {
			return settings, fmt.Errorf("completed: %w", err)
		}
		settings.Completed = completed
	}
	return settings, nil
}

// AsDateRule converts the rule into its date-specialized form.
func (r FilterRule) AsDateRule() (DateFilterRule, error) {
	settings, err := r.DateSettings()
	if err != nil {
		return DateFilterRule{}, fmt.Errorf("filter rule %q settings: %w", r.ID, err)
	}
	return DateFilterRule{
		ID:       r.ID,
		Target:   r.Target,
		Operator: r.Operator,
		Values:   r.Values,
		Settings: settings,
	}, nil
}

func lookupSetting(settings map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := settings[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// WeekDay is a day of the week where Monday is 0, as stored in warehouse
// settings.
type WeekDay int

const (
	Monday WeekDay = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekDayNames = []string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY", "SUNDAY"}

// Valid reports whether d is Monday through Sunday.
func (d WeekDay) Valid() bool {
	return d >= Monday && d <= Sunday
}

func (d WeekDay) String() string {
	if !d.Valid() {
		return fmt.Sprintf("WeekDay(%d)", int(d))
	}
	return weekDayNames[d]
}

// ParseWeekDay accepts a day name (any case, full or three-letter) or its
// Monday-based index.
func ParseWeekDay(s string) (WeekDay, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, name := range weekDayNames {
		if s == name || s == name[:3] {
			return WeekDay(i), nil
		}
	}
	if n, err := cast.ToIntE(s); err == nil && n >= 0 && n <= 6 {
		return WeekDay(n), nil
	}
	return 0, ErrValidation("invalid start of week %q", s)
}

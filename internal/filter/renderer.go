// Package filter renders declarative filter rules into SQL predicates.
//
// Rendering is dispatched on the target field's value type because the same
// operator means different SQL for strings, numbers, booleans and dates.
// Relative date operators (in the past, in the next, in the current) are
// evaluated against an injected clock.
package filter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"semantic-compiler/internal/domain"
)

var (
	// ErrUnsupportedOperator is returned when an operator is not valid for
	// the target field's value type.
	ErrUnsupportedOperator = errors.New("unsupported filter operator")
	// ErrInvalidFilterValue is returned when a rule value cannot be coerced
	// to the target field's value type.
	ErrInvalidFilterValue = errors.New("invalid filter value")
)

func unsupportedOperator(kind string, op domain.FilterOperator) error {
	return fmt.Errorf("%w %q for %s filter", ErrUnsupportedOperator, op, kind)
}

func invalidValue(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidFilterValue, fmt.Sprintf(format, args...))
}

// Quotes is the warehouse quoting configuration.
type Quotes struct {
	Field        string
	String       string
	StringEscape string
}

// DefaultQuotes matches ANSI SQL warehouses.
var DefaultQuotes = Quotes{Field: `"`, String: `'`, StringEscape: `'`}

// QuoteField wraps an identifier in the field quote character.
func (q Quotes) QuoteField(name string) string {
	return q.Field + name + q.Field
}

// EscapeString escapes every string quote inside v.
func (q Quotes) EscapeString(v string) string {
	if q.String == "" {
		return v
	}
	return strings.ReplaceAll(v, q.String, q.StringEscape+q.String)
}

// QuoteString escapes v and wraps it in string quotes.
func (q Quotes) QuoteString(v string) string {
	return q.String + q.EscapeString(v) + q.String
}

// Renderer renders filter rules with a fixed warehouse configuration. It is
// immutable after construction and safe for concurrent use.
type Renderer struct {
	quotes          Quotes
	formatDate      DateFormatter
	formatTimestamp DateFormatter
	weekStart       *domain.WeekDay
	clock           Clock
	location        *time.Location
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithQuotes sets the warehouse quoting characters.
func WithQuotes(q Quotes) Option {
	return func(r *Renderer) { r.quotes = q }
}

// WithDateFormatter overrides the literal format for DATE fields.
func WithDateFormatter(f DateFormatter) Option {
	return func(r *Renderer) { r.formatDate = f }
}

// WithTimestampFormatter overrides the literal format for TIMESTAMP fields.
func WithTimestampFormatter(f DateFormatter) Option {
	return func(r *Renderer) { r.formatTimestamp = f }
}

// WithStartOfWeek sets the first day of week used for week boundaries. Nil
// keeps the default (Sunday).
func WithStartOfWeek(d *domain.WeekDay) Option {
	return func(r *Renderer) { r.weekStart = d }
}

// WithClock sets the source of "now" for relative date filters.
func WithClock(c Clock) Option {
	return func(r *Renderer) { r.clock = c }
}

// WithLocation sets the calendar used for period boundaries.
func WithLocation(loc *time.Location) Option {
	return func(r *Renderer) { r.location = loc }
}

// NewRenderer returns a Renderer with ANSI quoting, the default date
// formatters and the system clock in UTC.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		quotes:          DefaultQuotes,
		formatDate:      FormatDate,
		formatTimestamp: FormatTimestamp,
		clock:           SystemClock{},
		location:        time.UTC,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Quotes returns the renderer's quoting configuration.
func (r *Renderer) Quotes() Quotes { return r.quotes }

// RenderFilterRule renders rule against a compiled field.
func (r *Renderer) RenderFilterRule(field domain.CompiledField, rule domain.FilterRule) (string, error) {
	return r.RenderRule(field.Compiled().CompiledSQL, field.ValueType(), rule)
}

// RenderRule renders rule against sql, choosing SQL by valueType.
func (r *Renderer) RenderRule(sql string, valueType domain.DimensionType, rule domain.FilterRule) (string, error) {
	switch valueType {
	case domain.DimensionTypeString:
		return RenderStringFilterSQL(sql, rule, r.quotes)
	case domain.DimensionTypeNumber:
		return RenderNumberFilterSQL(sql, rule)
	case domain.DimensionTypeBoolean:
		return RenderBooleanFilterSQL(sql, rule)
	case domain.DimensionTypeDate, domain.DimensionTypeTimestamp:
		dateRule, err := rule.AsDateRule()
		if err != nil {
			return "", invalidValue("%v", err)
		}
		format := r.formatDate
		if valueType == domain.DimensionTypeTimestamp {
			format = r.formatTimestamp
		}
		return RenderDateFilterSQL(sql, dateRule, r.quotes, format, r.now(), r.weekStart)
	default:
		return "", fmt.Errorf("%w: unknown field type %q", ErrUnsupportedOperator, valueType)
	}
}

func (r *Renderer) now() time.Time {
	return r.clock.Now().In(r.location)
}

func nullCheck(sql string, op domain.FilterOperator) string {
	if op == domain.OperatorNull {
		return fmt.Sprintf("(%s) IS NULL", sql)
	}
	return fmt.Sprintf("(%s) IS NOT NULL", sql)
}

package filter

import (
	"fmt"
	"math"
	"time"

	"github.com/spf13/cast"

	"semantic-compiler/internal/domain"
)

// RenderDateFilterSQL renders a rule over a date or timestamp expression.
// format turns instants into literal bodies, which are wrapped in the string
// quotes; at is "now" for relative operators and its location is the
// calendar used for period boundaries.
func RenderDateFilterSQL(sql string, rule domain.DateFilterRule, quotes Quotes, format DateFormatter, at time.Time, weekStart *domain.WeekDay) (string, error) {
	switch rule.Operator {
	case domain.OperatorNull, domain.OperatorNotNull:
		return nullCheck(sql, rule.Operator), nil
	case domain.OperatorEquals, domain.OperatorNotEquals,
		domain.OperatorGreaterThan, domain.OperatorGreaterThanOrEqual,
		domain.OperatorLessThan, domain.OperatorLessThanOrEqual:
		v, err := dateValue(rule, 0, at.Location())
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s) %s (%s)", sql, comparison(rule.Operator), quotes.QuoteString(format(v))), nil
	case domain.OperatorInBetween:
		from, err := dateValue(rule, 0, at.Location())
		if err != nil {
			return "", err
		}
		until, err := dateValue(rule, 1, at.Location())
		if err != nil {
			return "", err
		}
		return renderWindow(sql, Window{From: from, Until: until}, quotes, format), nil
	case domain.OperatorInThePast, domain.OperatorInTheNext, domain.OperatorInTheCurrent:
		n := 0
		if rule.Operator != domain.OperatorInTheCurrent {
			var err error
			if n, err = unitCount(rule); err != nil {
				return "", err
			}
		}
		w, err := RelativeWindow(rule.Operator, n, rule.Settings, at, weekStart)
		if err != nil {
			return "", err
		}
		return renderWindow(sql, w, quotes, format), nil
	default:
		return "", unsupportedOperator("date", rule.Operator)
	}
}

func renderWindow(sql string, w Window, quotes Quotes, format DateFormatter) string {
	upper := "<="
	if w.UntilExclusive {
		upper = "<"
	}
	return fmt.Sprintf("((%s) >= (%s)) AND ((%s) %s (%s))",
		sql, quotes.QuoteString(format(w.From)), sql, upper, quotes.QuoteString(format(w.Until)))
}

func dateValue(rule domain.DateFilterRule, i int, loc *time.Location) (time.Time, error) {
	if i >= len(rule.Values) || rule.Values[i] == nil {
		return time.Time{}, invalidValue("date filter %q needs a value at position %d", rule.ID, i)
	}
	t, err := cast.ToTimeInDefaultLocationE(rule.Values[i], loc)
	if err != nil {
		return time.Time{}, invalidValue("date filter %q: %v", rule.ID, err)
	}
	return t, nil
}

func unitCount(rule domain.DateFilterRule) (int, error) {
	if len(rule.Values) == 0 || rule.Values[0] == nil {
		return 0, invalidValue("date filter %q needs a number of units", rule.ID)
	}
	f, err := cast.ToFloat64E(rule.Values[0])
	if err != nil {
		return 0, invalidValue("date filter %q: %v", rule.ID, err)
	}
	if math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, invalidValue("date filter %q: number of units must be a whole number, got %v", rule.ID, rule.Values[0])
	}
	return int(f), nil
}

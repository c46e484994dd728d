package filter

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"semantic-compiler/internal/domain"
)

// RenderNumberFilterSQL renders a rule over a numeric expression. Values are
// embedded as bare numeric literals.
func RenderNumberFilterSQL(sql string, rule domain.FilterRule) (string, error) {
	switch rule.Operator {
	case domain.OperatorEquals, domain.OperatorNotEquals:
		if len(rule.Values) == 0 {
			if rule.Operator == domain.OperatorEquals {
				return "false", nil
			}
			return "true", nil
		}
		literals := make([]string, len(rule.Values))
		for i, v := range rule.Values {
			lit, err := numberLiteral(v)
			if err != nil {
				return "", err
			}
			literals[i] = lit
		}
		op := "IN"
		if rule.Operator == domain.OperatorNotEquals {
			op = "NOT IN"
		}
		return fmt.Sprintf("(%s) %s (%s)", sql, op, strings.Join(literals, ", ")), nil
	case domain.OperatorGreaterThan, domain.OperatorGreaterThanOrEqual,
		domain.OperatorLessThan, domain.OperatorLessThanOrEqual:
		lit := "0"
		if len(rule.Values) > 0 {
			var err error
			if lit, err = numberLiteral(rule.Values[0]); err != nil {
				return "", err
			}
		}
		return fmt.Sprintf("(%s) %s (%s)", sql, comparison(rule.Operator), lit), nil
	case domain.OperatorNull, domain.OperatorNotNull:
		return nullCheck(sql, rule.Operator), nil
	default:
		return "", unsupportedOperator("number", rule.Operator)
	}
}

func comparison(op domain.FilterOperator) string {
	switch op {
	case domain.OperatorGreaterThan:
		return ">"
	case domain.OperatorGreaterThanOrEqual:
		return ">="
	case domain.OperatorLessThan:
		return "<"
	case domain.OperatorLessThanOrEqual:
		return "<="
	case domain.OperatorEquals:
		return "="
	case domain.OperatorNotEquals:
		return "!="
	default:
		return domain.Unreachable[string]("comparison operator", op)
	}
}

// numberLiteral renders v as a numeric SQL literal, rejecting anything that
// does not parse as a number.
func numberLiteral(v any) (string, error) {
	switch n := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return cast.ToStringE(n)
	case string:
		s := strings.TrimSpace(n)
		if _, err := strconv.ParseInt(s, 10, 64); err == nil {
			return s, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return "", invalidValue("%q is not a number", n)
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return "", invalidValue("%v is not a number", v)
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}

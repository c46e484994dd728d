package filter

import (
	"fmt"

	"github.com/spf13/cast"

	"semantic-compiler/internal/domain"
)

// RenderBooleanFilterSQL renders a rule over a boolean expression. A missing
// value compares against false.
func RenderBooleanFilterSQL(sql string, rule domain.FilterRule) (string, error) {
	switch rule.Operator {
	case domain.OperatorEquals:
		want := false
		if len(rule.Values) > 0 {
			var err error
			if want, err = cast.ToBoolE(rule.Values[0]); err != nil {
				return "", invalidValue("%v is not a boolean", rule.Values[0])
			}
		}
		return fmt.Sprintf("(%s) = %t", sql, want), nil
	case domain.OperatorNull, domain.OperatorNotNull:
		return nullCheck(sql, rule.Operator), nil
	default:
		return "", unsupportedOperator("boolean", rule.Operator)
	}
}

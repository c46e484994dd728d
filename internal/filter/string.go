package filter

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"semantic-compiler/internal/domain"
)

// RenderStringFilterSQL renders a rule over a string-valued expression.
// Values are escaped with the quotes' escape character before embedding.
func RenderStringFilterSQL(sql string, rule domain.FilterRule, quotes Quotes) (string, error) {
	values := make([]string, 0, len(rule.Values))
	for _, v := range rule.Values {
		s, err := cast.ToStringE(v)
		if err != nil {
			return "", invalidValue("string filter %q: %v", rule.ID, err)
		}
		values = append(values, quotes.EscapeString(s))
	}
	q := quotes.String

	switch rule.Operator {
	case domain.OperatorEquals:
		if len(values) == 0 {
			return "false", nil
		}
		return fmt.Sprintf("(%s) IN (%s)", sql, joinQuoted(values, q)), nil
	case domain.OperatorNotEquals:
		if len(values) == 0 {
			return "true", nil
		}
		return fmt.Sprintf("(%s) NOT IN (%s)", sql, joinQuoted(values, q)), nil
	case domain.OperatorInclude:
		if len(values) == 0 {
			return "true", nil
		}
		parts := make([]string, len(values))
		for i, v := range values {
			parts[i] = fmt.Sprintf("LOWER(%s) LIKE LOWER(%s%%%s%%%s)", sql, q, v, q)
		}
		return strings.Join(parts, " OR "), nil
	case domain.OperatorNotInclude:
		if len(values) == 0 {
			return "true", nil
		}
		parts := make([]string, len(values))
		for i, v := range values {
			parts[i] = fmt.Sprintf("LOWER(%s) NOT LIKE LOWER(%s%%%s%%%s)", sql, q, v, q)
		}
		return strings.Join(parts, " AND "), nil
	case domain.OperatorStartsWith:
		if len(values) == 0 {
			return "true", nil
		}
		parts := make([]string, len(values))
		for i, v := range values {
			parts[i] = fmt.Sprintf("%s LIKE %s%s%%%s", sql, q, v, q)
		}
		return strings.Join(parts, " OR "), nil
	case domain.OperatorNull, domain.OperatorNotNull:
		return nullCheck(sql, rule.Operator), nil
	default:
		return "", unsupportedOperator("string", rule.Operator)
	}
}

func joinQuoted(values []string, quote string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = quote + v + quote
	}
	return strings.Join(quoted, ", ")
}

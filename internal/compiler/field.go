package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"semantic-compiler/internal/domain"
)

// compileField resolves a dimension or metric. Callers go through
// resolveField so cycle detection and memoization apply.
func (s *session) compileField(field domain.Field) (compiledSQL, error) {
	switch f := field.(type) {
	case domain.Dimension:
		return s.resolveTemplate(f.SQL, fieldReferrer(f.FieldBase))
	case domain.Metric:
		return s.compileMetric(f)
	default:
		return domain.Unreachable[compiledSQL]("field kind", field), nil
	}
}

// compileMetric resolves the metric template, gates it with the metric's
// filters and applies the aggregate for its type:
//
//	SUM(CASE WHEN (<filter>) THEN (<sql>) ELSE NULL END)
func (s *session) compileMetric(m domain.Metric) (compiledSQL, error) {
	from := fieldReferrer(m.FieldBase)
	base, err := s.resolveTemplate(m.SQL, from)
	if err != nil {
		return compiledSQL{}, err
	}

	sql := base.sql
	refs := orderedSet{}
	refs.add(base.refs...)

	if len(m.Filters) > 0 {
		predicates := make([]string, 0, len(m.Filters))
		for _, rule := range m.Filters {
			predicate, filterRefs, err := s.compileMetricFilter(m, rule)
			if err != nil {
				return compiledSQL{}, err
			}
			predicates = append(predicates, "("+predicate+")")
			refs.add(filterRefs...)
		}
		sql = fmt.Sprintf("CASE WHEN %s THEN (%s) ELSE NULL END", strings.Join(predicates, " AND "), sql)
	}

	aggregated, err := aggregate(m, sql)
	if err != nil {
		return compiledSQL{}, err
	}
	return compiledSQL{sql: aggregated, refs: refs.items}, nil
}

func (s *session) compileMetricFilter(m domain.Metric, rule domain.MetricFilterRule) (string, []string, error) {
	from := fieldReferrer(m.FieldBase)
	table, name, err := splitReference(strings.TrimSpace(rule.Target.FieldRef), from)
	if err != nil {
		return "", nil, err
	}
	if table, err = s.tableFor(table, from); err != nil {
		return "", nil, err
	}
	t, ok := s.tables[table]
	if !ok {
		return "", nil, domain.ErrCompile(domain.KindInvalidMetricFilter, from.fieldID,
			"filter %q targets %q but table %q is not part of the explore", rule.ID, rule.Target.FieldRef, table)
	}
	dim, ok := t.Dimensions[name]
	if !ok {
		return "", nil, domain.ErrCompile(domain.KindInvalidMetricFilter, from.fieldID,
			"filter %q targets %q which is not a dimension of table %q", rule.ID, rule.Target.FieldRef, table)
	}

	target, err := s.resolveField(table, name, from)
	if err != nil {
		return "", nil, err
	}
	predicate, err := s.c.renderer.RenderRule(target.sql, dim.Type, domain.FilterRule{
		ID:       rule.ID,
		Target:   domain.FieldTarget{FieldID: dim.FieldID()},
		Operator: rule.Operator,
		Values:   rule.Values,
		Settings: rule.Settings,
	})
	if err != nil {
		ce := domain.ErrCompile(domain.KindInvalidMetricFilter, from.fieldID, "filter %q: %v", rule.ID, err)
		ce.Err = err
		return "", nil, ce
	}
	return predicate, append([]string{table}, target.refs...), nil
}

func aggregate(m domain.Metric, sql string) (string, error) {
	switch m.Type {
	case domain.MetricTypeSum:
		return "SUM(" + sql + ")", nil
	case domain.MetricTypeCount:
		return "COUNT(" + sql + ")", nil
	case domain.MetricTypeCountDistinct:
		return "COUNT(DISTINCT " + sql + ")", nil
	case domain.MetricTypeAverage:
		return "AVG(" + sql + ")", nil
	case domain.MetricTypeMin:
		return "MIN(" + sql + ")", nil
	case domain.MetricTypeMax:
		return "MAX(" + sql + ")", nil
	case domain.MetricTypeMedian:
		return percentileCont(50, sql), nil
	case domain.MetricTypePercentile:
		p := 50.0
		if m.Percentile != nil {
			p = *m.Percentile
		}
		if p < 0 || p > 100 {
			return "", domain.ErrCompile(domain.KindInvalidFieldType, m.FieldID(),
				"percentile must be between 0 and 100, got %v", p)
		}
		return percentileCont(p, sql), nil
	case domain.MetricTypeNumber, domain.MetricTypeString, domain.MetricTypeDate,
		domain.MetricTypeTimestamp, domain.MetricTypeBoolean:
		return sql, nil
	default:
		return domain.Unreachable[string]("metric type", m.Type), nil
	}
}

func percentileCont(p float64, sql string) string {
	return fmt.Sprintf("PERCENTILE_CONT(%s) WITHIN GROUP (ORDER BY %s)", strconv.FormatFloat(p/100, 'f', -1, 64), sql)
}

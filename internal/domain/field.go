package domain

import "strings"

// FieldType discriminates the two kinds of explore fields.
type FieldType string

const (
	FieldTypeDimension FieldType = "dimension"
	FieldTypeMetric    FieldType = "metric"
)

// DimensionType is the value type of a dimension.
type DimensionType string

const (
	DimensionTypeString    DimensionType = "string"
	DimensionTypeNumber    DimensionType = "number"
	DimensionTypeTimestamp DimensionType = "timestamp"
	DimensionTypeDate      DimensionType = "date"
	DimensionTypeBoolean   DimensionType = "boolean"
)

// DimensionTypes lists every dimension value type.
var DimensionTypes = []DimensionType{
	DimensionTypeString,
	DimensionTypeNumber,
	DimensionTypeTimestamp,
	DimensionTypeDate,
	DimensionTypeBoolean,
}

// Valid reports whether t is a known dimension type.
func (t DimensionType) Valid() bool {
	for _, known := range DimensionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// MetricType selects how a metric's SQL is aggregated.
type MetricType string

const (
	MetricTypePercentile    MetricType = "percentile"
	MetricTypeMedian        MetricType = "median"
	MetricTypeAverage       MetricType = "average"
	MetricTypeCount         MetricType = "count"
	MetricTypeCountDistinct MetricType = "count_distinct"
	MetricTypeSum           MetricType = "sum"
	MetricTypeMin           MetricType = "min"
	MetricTypeMax           MetricType = "max"
	MetricTypeNumber        MetricType = "number"
	MetricTypeString        MetricType = "string"
	MetricTypeDate          MetricType = "date"
	MetricTypeTimestamp     MetricType = "timestamp"
	MetricTypeBoolean       MetricType = "boolean"
)

// MetricTypes lists every metric type.
var MetricTypes = []MetricType{
	MetricTypePercentile,
	MetricTypeMedian,
	MetricTypeAverage,
	MetricTypeCount,
	MetricTypeCountDistinct,
	MetricTypeSum,
	MetricTypeMin,
	MetricTypeMax,
	MetricTypeNumber,
	MetricTypeString,
	MetricTypeDate,
	MetricTypeTimestamp,
	MetricTypeBoolean,
}

// MetricClass groups metric types by whether they aggregate rows.
type MetricClass string

const (
	MetricClassAggregate    MetricClass = "aggregate"
	MetricClassNonAggregate MetricClass = "non_aggregate"
)

// Valid reports whether t is a known metric type.
func (t MetricType) Valid() bool {
	for _, known := range MetricTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Class maps the metric type to its aggregation class.
func (t MetricType) Class() MetricClass {
	switch t {
	case MetricTypePercentile, MetricTypeMedian, MetricTypeAverage, MetricTypeCount,
		MetricTypeCountDistinct, MetricTypeSum, MetricTypeMin, MetricTypeMax:
		return MetricClassAggregate
	case MetricTypeNumber, MetricTypeString, MetricTypeDate, MetricTypeTimestamp, MetricTypeBoolean:
		return MetricClassNonAggregate
	default:
		return Unreachable[MetricClass]("metric type", t)
	}
}

// ValueType is the dimension type a metric's result compares as when filtered.
func (t MetricType) ValueType() DimensionType {
	switch t {
	case MetricTypeString:
		return DimensionTypeString
	case MetricTypeDate:
		return DimensionTypeDate
	case MetricTypeTimestamp:
		return DimensionTypeTimestamp
	case MetricTypeBoolean:
		return DimensionTypeBoolean
	case MetricTypePercentile, MetricTypeMedian, MetricTypeAverage, MetricTypeCount,
		MetricTypeCountDistinct, MetricTypeSum, MetricTypeMin, MetricTypeMax, MetricTypeNumber:
		return DimensionTypeNumber
	default:
		return Unreachable[DimensionType]("metric type", t)
	}
}

// Field is implemented by Dimension and Metric only.
type Field interface {
	Kind() FieldType
	Base() FieldBase
	// ValueType is the type used to pick a filter renderer for this field.
	ValueType() DimensionType
	isField()
}

// FieldBase holds the attributes shared by dimensions and metrics.
type FieldBase struct {
	Name        string `json:"name" yaml:"name"`
	Label       string `json:"label" yaml:"label"`
	Table       string `json:"table" yaml:"table"`
	TableLabel  string `json:"tableLabel" yaml:"table_label"`
	SQL         string `json:"sql" yaml:"sql"`
	Description string `json:"description,omitempty" yaml:"description"`
	Hidden      bool   `json:"hidden" yaml:"hidden"`
	Format      string `json:"format,omitempty" yaml:"format"`
	Round       *int   `json:"round,omitempty" yaml:"round"`
	Compact     string `json:"compact,omitempty" yaml:"compact"`
}

// FieldID joins the owning table and field name into the explore-wide identity.
func (b FieldBase) FieldID() string {
	return FieldID(b.Table, b.Name)
}

// FieldID builds the identity of field name in table.
func FieldID(table, name string) string {
	return table + "_" + strings.ReplaceAll(name, ".", "__")
}

// Dimension is a groupable, typed column expression.
type Dimension struct {
	FieldBase    `yaml:",inline"`
	Type         DimensionType `json:"type" yaml:"type"`
	TimeInterval string        `json:"timeInterval,omitempty" yaml:"time_interval"`
	GroupLabel   string        `json:"groupLabel,omitempty" yaml:"group_label"`
}

func (Dimension) Kind() FieldType { return FieldTypeDimension }

func (d Dimension) Base() FieldBase { return d.FieldBase }

func (d Dimension) ValueType() DimensionType { return d.Type }

func (Dimension) isField() {}

// MetricFilterTarget points a metric filter at a dimension by name. A bare
// name refers to the metric's own table; "table.field" is also accepted.
type MetricFilterTarget struct {
	FieldRef string `json:"fieldRef" yaml:"field_ref"`
}

// MetricFilterRule gates the rows fed into a metric's aggregate.
type MetricFilterRule struct {
	ID       string             `json:"id" yaml:"id"`
	Target   MetricFilterTarget `json:"target" yaml:"target"`
	Operator FilterOperator     `json:"operator" yaml:"operator"`
	Values   []any              `json:"values,omitempty" yaml:"values"`
	Settings map[string]any     `json:"settings,omitempty" yaml:"settings"`
}

// Metric is an aggregated (or derived) expression.
type Metric struct {
	FieldBase  `yaml:",inline"`
	Type       MetricType         `json:"type" yaml:"type"`
	Filters    []MetricFilterRule `json:"filters,omitempty" yaml:"filters"`
	Percentile *float64           `json:"percentile,omitempty" yaml:"percentile"`
}

func (Metric) Kind() FieldType { return FieldTypeMetric }

func (m Metric) Base() FieldBase { return m.FieldBase }

func (m Metric) ValueType() DimensionType { return m.Type.ValueType() }

func (Metric) isField() {}

// Compilation is the result of resolving a field's SQL template.
type Compilation struct {
	CompiledSQL      string   `json:"compiledSql"`
	TablesReferences []string `json:"tablesReferences"`
}

// Compiled returns the compilation itself; it lets CompiledDimension and
// CompiledMetric satisfy CompiledField through embedding.
func (c Compilation) Compiled() Compilation { return c }

// CompiledField is a field whose SQL has been fully resolved.
type CompiledField interface {
	Field
	Compiled() Compilation
}

// CompiledDimension is a Dimension with resolved SQL.
type CompiledDimension struct {
	Dimension
	Compilation
}

// CompiledMetric is a Metric with resolved SQL.
type CompiledMetric struct {
	Metric
	Compilation
}

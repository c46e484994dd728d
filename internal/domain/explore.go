package domain

import "sort"

// Table is a named source of raw dimension and metric definitions.
type Table struct {
	Name        string               `json:"name" yaml:"name"`
	Label       string               `json:"label" yaml:"label"`
	Description string               `json:"description,omitempty" yaml:"description"`
	Database    string               `json:"database,omitempty" yaml:"database"`
	Schema      string               `json:"schema,omitempty" yaml:"schema"`
	SQLTable    string               `json:"sqlTable" yaml:"sql_table"`
	Dimensions  map[string]Dimension `json:"dimensions" yaml:"dimensions"`
	Metrics     map[string]Metric    `json:"metrics" yaml:"metrics"`
}

// ExploreJoin joins a table onto the explore's base table.
type ExploreJoin struct {
	Table string `json:"table" yaml:"table"`
	SQLOn string `json:"sqlOn" yaml:"sql_on"`
	// Alias exposes the joined table under a different name.
	Alias string `json:"alias,omitempty" yaml:"alias"`
	// Label replaces the joined table's label on all of its fields.
	Label string `json:"label,omitempty" yaml:"label"`
	// Fields is the allow-list of field names to expose; nil exposes all.
	Fields []string `json:"fields,omitempty" yaml:"fields"`
}

// Explore is the uncompiled definition: a base table plus joins.
type Explore struct {
	Name         string           `json:"name" yaml:"name"`
	Label        string           `json:"label" yaml:"label"`
	Tags         []string         `json:"tags,omitempty" yaml:"tags"`
	BaseTable    string           `json:"baseTable" yaml:"base_table"`
	JoinedTables []ExploreJoin    `json:"joinedTables" yaml:"joined_tables"`
	Tables       map[string]Table `json:"tables" yaml:"tables"`
}

// CompiledTable is a table whose fields have all been compiled. Tables
// joined under an alias keep their source name in OriginalName.
type CompiledTable struct {
	Name         string                       `json:"name"`
	OriginalName string                       `json:"originalName"`
	Label        string                       `json:"label"`
	Description  string                       `json:"description,omitempty"`
	Database     string                       `json:"database,omitempty"`
	Schema       string                       `json:"schema,omitempty"`
	SQLTable     string                       `json:"sqlTable"`
	Dimensions   map[string]CompiledDimension `json:"dimensions"`
	Metrics      map[string]CompiledMetric    `json:"metrics"`
}

// Fields returns every compiled field of the table, dimensions first, each
// group ordered by name.
func (t CompiledTable) Fields() []CompiledField {
	fields := make([]CompiledField, 0, len(t.Dimensions)+len(t.Metrics))
	for _, name := range sortedKeys(t.Dimensions) {
		fields = append(fields, t.Dimensions[name])
	}
	for _, name := range sortedKeys(t.Metrics) {
		fields = append(fields, t.Metrics[name])
	}
	return fields
}

// CompiledExploreJoin is a join whose ON condition has been resolved.
type CompiledExploreJoin struct {
	Table            string   `json:"table"`
	SQLOn            string   `json:"sqlOn"`
	CompiledSQLOn    string   `json:"compiledSqlOn"`
	TablesReferences []string `json:"tablesReferences"`
}

// CompiledExplore is the output of explore compilation.
type CompiledExplore struct {
	Name         string                   `json:"name"`
	Label        string                   `json:"label"`
	Tags         []string                 `json:"tags,omitempty"`
	BaseTable    string                   `json:"baseTable"`
	JoinedTables []CompiledExploreJoin    `json:"joinedTables"`
	Tables       map[string]CompiledTable `json:"tables"`
}

// FieldByID looks up a compiled field by its explore-wide id.
func (e *CompiledExplore) FieldByID(fieldID string) (CompiledField, bool) {
	for _, name := range sortedKeys(e.Tables) {
		for _, f := range e.Tables[name].Fields() {
			if f.Base().FieldID() == fieldID {
				return f, true
			}
		}
	}
	return nil, false
}

// Fields returns every compiled field in the explore, ordered by table name.
func (e *CompiledExplore) Fields() []CompiledField {
	var fields []CompiledField
	for _, name := range sortedKeys(e.Tables) {
		fields = append(fields, e.Tables[name].Fields()...)
	}
	return fields
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

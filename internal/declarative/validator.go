package declarative

import (
	"fmt"
)

// ValidationError represents a single validation problem.
type ValidationError struct {
	Path    string // e.g. "table[orders].dimension[id]"
	Message string
}

func (e ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// ValidateExplore checks an Explore document for structural correctness.
// Reference integrity (tables, joins, ${...} placeholders) is left to the
// compiler. It returns every problem found rather than stopping at the first.
func ValidateExplore(doc *ExploreDoc) []ValidationError {
	var errs []ValidationError

	if doc.Metadata.Name == "" {
		addErr(&errs, "metadata", "name is required")
	}
	if doc.Spec.BaseTable == "" {
		addErr(&errs, "spec", "base_table is required")
	}
	if len(doc.Spec.Tables) == 0 {
		addErr(&errs, "spec", "at least one table is required")
	}

	validateJoins(doc.Spec.Joins, &errs)
	validateTables(doc.Spec.Tables, &errs)
	return errs
}

// ValidateFilterRule checks a FilterRule document.
func ValidateFilterRule(doc *FilterRuleDoc) []ValidationError {
	var errs []ValidationError
	if doc.Spec.Target.FieldID == "" {
		addErr(&errs, "spec.target", "field_id is required")
	}
	if doc.Spec.Operator == "" {
		addErr(&errs, "spec", "operator is required")
	}
	return errs
}

// addErr appends a formatted validation error.
func addErr(errs *[]ValidationError, path, msg string, args ...any) {
	*errs = append(*errs, ValidationError{
		Path:    path,
		Message: fmt.Sprintf(msg, args...),
	})
}

// indexedPath names the i-th element of kind, preferring its name.
func indexedPath(kind string, i int, name string) string {
	if name != "" {
		return fmt.Sprintf("%s[%s]", kind, name)
	}
	return fmt.Sprintf("%s[%d]", kind, i)
}

// === Joins ===

func validateJoins(joins []JoinSpec, errs *[]ValidationError) {
	for i, j := range joins {
		path := indexedPath("join", i, j.Table)
		if j.Alias != "" {
			path = indexedPath("join", i, j.Alias)
		}
		if j.Table == "" {
			addErr(errs, path, "table is required")
		}
		if j.SQLOn == "" {
			addErr(errs, path, "sql_on is required")
		}
		seen := make(map[string]bool, len(j.Fields))
		for _, f := range j.Fields {
			if seen[f] {
				addErr(errs, path, "field %q listed more than once", f)
			}
			seen[f] = true
		}
	}
}

// === Tables ===

func validateTables(tables []TableSpec, errs *[]ValidationError) {
	seen := make(map[string]bool, len(tables))
	for i, t := range tables {
		path := indexedPath("table", i, t.Name)
		if t.Name == "" {
			addErr(errs, path, "name is required")
		} else {
			if seen[t.Name] {
				addErr(errs, path, "duplicate table name %q", t.Name)
			}
			seen[t.Name] = true
		}
		validateFieldNames(path, t, errs)
	}
}

// validateFieldNames requires every field to be named, and dimension and
// metric names to be unique within their table.
func validateFieldNames(tablePath string, t TableSpec, errs *[]ValidationError) {
	owner := make(map[string]string, len(t.Dimensions)+len(t.Metrics))
	check := func(kind string, i int, name string) {
		path := tablePath + "." + indexedPath(kind, i, name)
		if name == "" {
			addErr(errs, path, "name is required")
			return
		}
		if prev, ok := owner[name]; ok {
			addErr(errs, path, "name %q is already used by a %s", name, prev)
			return
		}
		owner[name] = kind
	}

	for i, d := range t.Dimensions {
		check("dimension", i, d.Name)
	}
	for i, m := range t.Metrics {
		check("metric", i, m.Name)
		for j, f := range m.Filters {
			if f.Target.FieldRef == "" {
				addErr(errs, fmt.Sprintf("%s.metric[%s].filter[%d]", tablePath, m.Name, j), "target.field_ref is required")
			}
			if f.Operator == "" {
				addErr(errs, fmt.Sprintf("%s.metric[%s].filter[%d]", tablePath, m.Name, j), "operator is required")
			}
		}
	}
}

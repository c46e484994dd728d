package compiler

import (
	"sort"

	"semantic-compiler/internal/domain"
)

// effectiveTable is a table as seen inside one explore: renamed by its join
// alias, relabelled and limited to the join's allow-list.
type effectiveTable struct {
	domain.Table
	originalName string
}

// baseTable stamps the base table's name and label on its fields.
func baseTable(t domain.Table) effectiveTable {
	return effectiveTable{
		Table:        rebuildTable(t, t.Name, t.Label, nil),
		originalName: t.Name,
	}
}

// resolveJoin applies a join's alias, label override and field allow-list
// to source. Allow-listed names missing from source are reported here rather
// than when something references them.
func resolveJoin(join domain.ExploreJoin, source domain.Table) (effectiveTable, error) {
	name := source.Name
	if join.Alias != "" {
		name = join.Alias
	}
	label := source.Label
	if join.Label != "" {
		label = join.Label
	}

	var allowed map[string]bool
	if join.Fields != nil {
		allowed = make(map[string]bool, len(join.Fields))
		for _, f := range join.Fields {
			_, isDim := source.Dimensions[f]
			_, isMetric := source.Metrics[f]
			if !isDim && !isMetric {
				return effectiveTable{}, domain.ErrCompile(domain.KindMissingJoinField, domain.FieldID(name, f),
					"join %q lists field %q which does not exist in table %q", name, f, source.Name)
			}
			allowed[f] = true
		}
	}

	return effectiveTable{
		Table:        rebuildTable(source, name, label, allowed),
		originalName: source.Name,
	}, nil
}

// rebuildTable copies t under a new name and label. Map keys are the
// canonical field names. A nil allowed keeps every field. The input maps are
// never modified.
func rebuildTable(t domain.Table, name, label string, allowed map[string]bool) domain.Table {
	out := t
	out.Name = name
	out.Label = label
	out.Dimensions = make(map[string]domain.Dimension, len(t.Dimensions))
	out.Metrics = make(map[string]domain.Metric, len(t.Metrics))

	for key, d := range t.Dimensions {
		if allowed != nil && !allowed[key] {
			continue
		}
		d.Name = key
		d.Table = name
		d.TableLabel = label
		out.Dimensions[key] = d
	}
	for key, m := range t.Metrics {
		if allowed != nil && !allowed[key] {
			continue
		}
		m.Name = key
		m.Table = name
		m.TableLabel = label
		out.Metrics[key] = m
	}
	return out
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

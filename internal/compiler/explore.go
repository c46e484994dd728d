package compiler

import (
	"semantic-compiler/internal/domain"
)

// CompileExplore validates explore and compiles every field of its base and
// joined tables. It either returns a complete compiled explore or a
// *domain.CompileError; nothing is compiled partially.
func (c *Compiler) CompileExplore(explore domain.Explore) (*domain.CompiledExplore, error) {
	base, ok := explore.Tables[explore.BaseTable]
	if !ok {
		return nil, domain.ErrCompile(domain.KindMissingBaseTable, "",
			"explore %q: base table %q not found", explore.Name, explore.BaseTable)
	}
	for _, join := range explore.JoinedTables {
		if _, ok := explore.Tables[join.Table]; !ok {
			return nil, domain.ErrCompile(domain.KindMissingJoinTable, "",
				"explore %q: joined table %q not found", explore.Name, join.Table)
		}
	}

	ordered, err := effectiveTables(explore, base)
	if err != nil {
		return nil, err
	}
	tables := make(map[string]domain.Table, len(ordered))
	for _, t := range ordered {
		tables[t.Name] = t.Table
	}
	if err := validateFields(ordered); err != nil {
		return nil, err
	}

	s := newSession(c, tables)
	for _, t := range ordered {
		s.alias(t.Name, t.originalName)
	}
	compiled := &domain.CompiledExplore{
		Name:         explore.Name,
		Label:        explore.Label,
		Tags:         explore.Tags,
		BaseTable:    explore.BaseTable,
		JoinedTables: make([]domain.CompiledExploreJoin, 0, len(explore.JoinedTables)),
		Tables:       make(map[string]domain.CompiledTable, len(ordered)),
	}

	for _, t := range ordered {
		ct, err := s.compileTable(t)
		if err != nil {
			return nil, err
		}
		compiled.Tables[ct.Name] = ct
	}

	for i, join := range explore.JoinedTables {
		name := ordered[i+1].Name
		on, err := s.resolveTemplate(join.SQLOn, referrer{table: name, desc: "join \"" + name + "\""})
		if err != nil {
			return nil, err
		}
		compiled.JoinedTables = append(compiled.JoinedTables, domain.CompiledExploreJoin{
			Table:            name,
			SQLOn:            join.SQLOn,
			CompiledSQLOn:    on.sql,
			TablesReferences: nonNil(on.refs),
		})
	}

	return compiled, nil
}

// effectiveTables returns the base table followed by one table per join, in
// join order.
func effectiveTables(explore domain.Explore, base domain.Table) ([]effectiveTable, error) {
	ordered := []effectiveTable{baseTable(withName(base, explore.BaseTable))}
	seen := map[string]bool{explore.BaseTable: true}

	for _, join := range explore.JoinedTables {
		t, err := resolveJoin(join, withName(explore.Tables[join.Table], join.Table))
		if err != nil {
			return nil, err
		}
		if seen[t.Name] {
			return nil, domain.ErrCompile(domain.KindDuplicateTable, "",
				"explore %q: table name %q is used more than once; give the join an alias", explore.Name, t.Name)
		}
		seen[t.Name] = true
		ordered = append(ordered, t)
	}
	return ordered, nil
}

// withName makes the map key the table's canonical name.
func withName(t domain.Table, name string) domain.Table {
	t.Name = name
	return t
}

// validateFields checks field types and that field ids are unique across the
// explore, before any SQL is resolved.
func validateFields(tables []effectiveTable) error {
	owners := make(map[string]string)
	claim := func(f domain.FieldBase) error {
		id := f.FieldID()
		if owner, ok := owners[id]; ok {
			return domain.ErrCompile(domain.KindDuplicateFieldID, id,
				"field id %q is produced by both %s and %s.%s", id, owner, f.Table, f.Name)
		}
		owners[id] = f.Table + "." + f.Name
		return nil
	}

	for _, t := range tables {
		for _, name := range sortedNames(t.Dimensions) {
			d := t.Dimensions[name]
			if !d.Type.Valid() {
				return domain.ErrCompile(domain.KindInvalidFieldType, d.FieldID(), "unknown dimension type %q", d.Type)
			}
			if err := claim(d.FieldBase); err != nil {
				return err
			}
		}
		for _, name := range sortedNames(t.Metrics) {
			m := t.Metrics[name]
			if !m.Type.Valid() {
				return domain.ErrCompile(domain.KindInvalidFieldType, m.FieldID(), "unknown metric type %q", m.Type)
			}
			if err := claim(m.FieldBase); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *session) compileTable(t effectiveTable) (domain.CompiledTable, error) {
	ct := domain.CompiledTable{
		Name:         t.Name,
		OriginalName: t.originalName,
		Label:        t.Label,
		Description:  t.Description,
		Database:     t.Database,
		Schema:       t.Schema,
		SQLTable:     t.SQLTable,
		Dimensions:   make(map[string]domain.CompiledDimension, len(t.Dimensions)),
		Metrics:      make(map[string]domain.CompiledMetric, len(t.Metrics)),
	}
	for _, name := range sortedNames(t.Dimensions) {
		d := t.Dimensions[name]
		c, err := s.resolveField(t.Name, name, fieldReferrer(d.FieldBase))
		if err != nil {
			return domain.CompiledTable{}, err
		}
		ct.Dimensions[name] = domain.CompiledDimension{Dimension: d, Compilation: compilation(c)}
	}
	for _, name := range sortedNames(t.Metrics) {
		m := t.Metrics[name]
		c, err := s.resolveField(t.Name, name, fieldReferrer(m.FieldBase))
		if err != nil {
			return domain.CompiledTable{}, err
		}
		ct.Metrics[name] = domain.CompiledMetric{Metric: m, Compilation: compilation(c)}
	}
	return ct, nil
}

func compilation(c compiledSQL) domain.Compilation {
	return domain.Compilation{CompiledSQL: c.sql, TablesReferences: nonNil(c.refs)}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

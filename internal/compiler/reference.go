package compiler

import (
	"fmt"
	"regexp"
	"strings"

	"semantic-compiler/internal/domain"
)

var placeholderPattern = regexp.MustCompile(`\$\{([^}]*)\}`)

const tablePlaceholder = "TABLE"

// compiledSQL is a resolved template and the tables it touches, in
// first-seen order.
type compiledSQL struct {
	sql  string
	refs []string
}

// referrer identifies whose template is being resolved, for error messages.
type referrer struct {
	table   string
	fieldID string
	desc    string
}

func fieldReferrer(f domain.FieldBase) referrer {
	id := f.FieldID()
	return referrer{table: f.Table, fieldID: id, desc: fmt.Sprintf("field %q", id)}
}

// session is the scratch space of one explore compilation: the effective
// tables after join resolution, resolved fields by id and the ids currently
// being resolved.
type session struct {
	c       *Compiler
	tables  map[string]domain.Table
	memo    map[string]compiledSQL
	stack   []string
	onStack map[string]bool

	// originals maps explore table names to the table they were joined
	// from; aliases is the reverse, for aliased joins only.
	originals map[string]string
	aliases   map[string][]string
}

func newSession(c *Compiler, tables map[string]domain.Table) *session {
	s := &session{
		c:         c,
		tables:    tables,
		memo:      make(map[string]compiledSQL),
		onStack:   make(map[string]bool),
		originals: make(map[string]string, len(tables)),
		aliases:   make(map[string][]string),
	}
	for name := range tables {
		s.originals[name] = name
	}
	return s
}

// alias records that explore table name was joined from original.
func (s *session) alias(name, original string) {
	s.originals[name] = original
	if name != original {
		s.aliases[original] = append(s.aliases[original], name)
	}
}

// tableFor maps a referenced table name onto an explore table name. A
// table's own source name means the table itself, even under an alias. Any
// other source name that is not an explore table resolves to its alias when
// it was joined exactly once.
func (s *session) tableFor(table string, from referrer) (string, error) {
	if from.table != table && s.originals[from.table] == table {
		return from.table, nil
	}
	if _, ok := s.tables[table]; ok {
		return table, nil
	}
	names := s.aliases[table]
	switch len(names) {
	case 0:
		return table, nil
	case 1:
		return names[0], nil
	default:
		return "", domain.ErrCompile(domain.KindMissingReference, from.fieldID,
			"%s references table %q which is joined more than once (as %s); reference an alias instead",
			from.desc, table, strings.Join(names, ", "))
	}
}

// resolveTemplate expands every placeholder in template. ${TABLE} becomes
// the quoted name of the referrer's table; ${table.field} and the
// same-table shorthand ${field} become the referenced field's resolved SQL
// in parentheses.
func (s *session) resolveTemplate(template string, from referrer) (compiledSQL, error) {
	var (
		b    strings.Builder
		refs orderedSet
		last int
	)
	for _, m := range placeholderPattern.FindAllStringSubmatchIndex(template, -1) {
		b.WriteString(template[last:m[0]])
		last = m[1]

		inner := strings.TrimSpace(template[m[2]:m[3]])
		if inner == tablePlaceholder {
			b.WriteString(s.c.quotes.QuoteField(from.table))
			refs.add(from.table)
			continue
		}

		table, field, err := splitReference(inner, from)
		if err != nil {
			return compiledSQL{}, err
		}
		if table, err = s.tableFor(table, from); err != nil {
			return compiledSQL{}, err
		}
		resolved, err := s.resolveField(table, field, from)
		if err != nil {
			return compiledSQL{}, err
		}
		b.WriteString("(" + resolved.sql + ")")
		refs.add(table)
		refs.add(resolved.refs...)
	}
	b.WriteString(template[last:])
	return compiledSQL{sql: b.String(), refs: refs.items}, nil
}

func splitReference(inner string, from referrer) (string, string, error) {
	if inner == "" {
		return "", "", domain.ErrCompile(domain.KindInvalidReference, from.fieldID,
			"empty reference ${} in %s", from.desc)
	}
	table, field, ok := strings.Cut(inner, ".")
	if !ok {
		return from.table, inner, nil
	}
	if table == "" || field == "" {
		return "", "", domain.ErrCompile(domain.KindInvalidReference, from.fieldID,
			"malformed reference ${%s} in %s", inner, from.desc)
	}
	return table, field, nil
}

// resolveField returns the resolved SQL of table.name, compiling it first if
// needed. Each field is compiled at most once per session.
func (s *session) resolveField(table, name string, from referrer) (compiledSQL, error) {
	t, ok := s.tables[table]
	if !ok {
		return compiledSQL{}, domain.ErrCompile(domain.KindMissingReference, from.fieldID,
			"%s references ${%s.%s} but table %q is not part of the explore", from.desc, table, name, table)
	}
	field, ok := lookupField(t, name)
	if !ok {
		return compiledSQL{}, domain.ErrCompile(domain.KindMissingReference, from.fieldID,
			"%s references ${%s.%s} but table %q has no field %q", from.desc, table, name, table, name)
	}

	id := field.Base().FieldID()
	if c, ok := s.memo[id]; ok {
		return c, nil
	}
	if s.onStack[id] {
		return compiledSQL{}, domain.ErrCompile(domain.KindCircularReference, from.fieldID,
			"circular reference: %s", s.cyclePath(id))
	}

	s.stack = append(s.stack, id)
	s.onStack[id] = true
	c, err := s.compileField(field)
	s.stack = s.stack[:len(s.stack)-1]
	delete(s.onStack, id)
	if err != nil {
		return compiledSQL{}, err
	}

	s.memo[id] = c
	return c, nil
}

// cyclePath renders the stack from the first occurrence of id back to id.
func (s *session) cyclePath(id string) string {
	start := 0
	for i, onStack := range s.stack {
		if onStack == id {
			start = i
			break
		}
	}
	path := append(append([]string(nil), s.stack[start:]...), id)
	return strings.Join(path, " -> ")
}

func lookupField(t domain.Table, name string) (domain.Field, bool) {
	if d, ok := t.Dimensions[name]; ok {
		return d, true
	}
	if m, ok := t.Metrics[name]; ok {
		return m, true
	}
	return nil, false
}

type orderedSet struct {
	items []string
	seen  map[string]bool
}

func (o *orderedSet) add(values ...string) {
	if o.seen == nil {
		o.seen = make(map[string]bool)
	}
	for _, v := range values {
		if !o.seen[v] {
			o.seen[v] = true
			o.items = append(o.items, v)
		}
	}
}

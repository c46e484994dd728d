package filter

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semantic-compiler/internal/domain"
)

// openPeopleDB returns an in-memory table the rendered predicates run against.
func openPeopleDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE people (name TEXT, age REAL, active BOOLEAN, joined TEXT);
INSERT INTO people VALUES
	('Alice', 31, 1, '2020-04-04'),
	('bob', 25, 0, '2020-04-02'),
	('Carol''s', 47, 1, '2020-03-15'),
	(NULL, NULL, NULL, NULL);
`)
	require.NoError(t, err)
	return db
}

func selectNames(t *testing.T, db *sql.DB, predicate string) []string {
	t.Helper()
	rows, err := db.Query("SELECT COALESCE(name, '<null>') FROM people WHERE " + predicate + " ORDER BY rowid")
	require.NoError(t, err, predicate)
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	return names
}

func TestRenderedPredicatesExecute(t *testing.T) {
	db := openPeopleDB(t)
	r := NewRenderer(WithClock(FixedClock(frozenNow)))

	tests := []struct {
		name      string
		column    string
		valueType domain.DimensionType
		rule      domain.FilterRule
		want      []string
	}{
		{"string equals escaped", "name", domain.DimensionTypeString,
			domain.FilterRule{Operator: domain.OperatorEquals, Values: []any{"Carol's", "bob"}}, []string{"bob", "Carol's"}},
		{"string equals nothing", "name", domain.DimensionTypeString,
			domain.FilterRule{Operator: domain.OperatorEquals}, []string{}},
		{"string include is case insensitive", "name", domain.DimensionTypeString,
			domain.FilterRule{Operator: domain.OperatorInclude, Values: []any{"AL", "OB"}}, []string{"Alice", "bob"}},
		{"string does not include", "name", domain.DimensionTypeString,
			domain.FilterRule{Operator: domain.OperatorNotInclude, Values: []any{"a"}}, []string{"bob"}},
		{"string starts with", "name", domain.DimensionTypeString,
			domain.FilterRule{Operator: domain.OperatorStartsWith, Values: []any{"Ca"}}, []string{"Carol's"}},
		{"string is null", "name", domain.DimensionTypeString,
			domain.FilterRule{Operator: domain.OperatorNull}, []string{"<null>"}},
		{"number greater than", "age", domain.DimensionTypeNumber,
			domain.FilterRule{Operator: domain.OperatorGreaterThan, Values: []any{30}}, []string{"Alice", "Carol's"}},
		{"number not equals", "age", domain.DimensionTypeNumber,
			domain.FilterRule{Operator: domain.OperatorNotEquals, Values: []any{31, 47}}, []string{"bob"}},
		{"boolean equals", "active", domain.DimensionTypeBoolean,
			domain.FilterRule{Operator: domain.OperatorEquals, Values: []any{true}}, []string{"Alice", "Carol's"}},
		{"date in the past two completed days", "joined", domain.DimensionTypeDate,
			domain.FilterRule{Operator: domain.OperatorInThePast, Values: []any{2}, Settings: map[string]any{"unitOfTime": "days", "completed": true}},
			[]string{"bob"}},
		{"date in the current month", "joined", domain.DimensionTypeDate,
			domain.FilterRule{Operator: domain.OperatorInTheCurrent, Settings: map[string]any{"unitOfTime": "months"}},
			[]string{"Alice", "bob"}},
		{"date in between", "joined", domain.DimensionTypeDate,
			domain.FilterRule{Operator: domain.OperatorInBetween, Values: []any{"2020-03-01", "2020-04-02"}},
			[]string{"bob", "Carol's"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			predicate, err := r.RenderRule(tc.column, tc.valueType, tc.rule)
			require.NoError(t, err)
			assert.Equal(t, tc.want, selectNames(t, db, predicate), predicate)
		})
	}
}

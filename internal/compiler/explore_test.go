package compiler

import (
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"semantic-compiler/internal/domain"
	"semantic-compiler/internal/filter"
)

func requireCompileError(t *testing.T, err error, kind domain.CompileErrorKind) *domain.CompileError {
	t.Helper()
	require.Error(t, err)
	var ce *domain.CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, kind, ce.Kind, "unexpected error: %v", err)
	return ce
}

func TestCompileExplore_OrdersExplore(t *testing.T) {
	compiled, err := CompileExplore(ordersExplore())
	require.NoError(t, err)

	assert.Equal(t, "orders", compiled.Name)
	assert.Equal(t, "orders", compiled.BaseTable)
	require.Len(t, compiled.Tables, 2)

	tests := []struct {
		id   string
		sql  string
		refs []string
	}{
		{"orders_id", `"orders".id`, []string{"orders"}},
		{"orders_amount_with_tax", `("orders".amount) * 1.2`, []string{"orders"}},
		{"orders_customer_label", `("orders".status) || ' ' || ("customers".name)`, []string{"orders", "customers"}},
		{"orders_total_amount", `SUM("orders".amount)`, []string{"orders"}},
		{"orders_order_count", `COUNT(DISTINCT ("orders".id))`, []string{"orders"}},
		{"orders_average_amount", `AVG((("orders".amount) * 1.2))`, []string{"orders"}},
		{"customers_name", `"customers".name`, []string{"customers"}},
		{"customers_customer_count", `COUNT("customers".id)`, []string{"customers"}},
	}
	for _, tc := range tests {
		t.Run(tc.id, func(t *testing.T) {
			f, ok := compiled.FieldByID(tc.id)
			require.True(t, ok)
			assert.Equal(t, tc.sql, f.Compiled().CompiledSQL)
			assert.Equal(t, tc.refs, f.Compiled().TablesReferences)
		})
	}

	require.Len(t, compiled.JoinedTables, 1)
	join := compiled.JoinedTables[0]
	assert.Equal(t, "customers", join.Table)
	assert.Equal(t, "${orders.customer_id} = ${customers.id}", join.SQLOn)
	assert.Equal(t, `("orders".customer_id) = ("customers".id)`, join.CompiledSQLOn)
	assert.Equal(t, []string{"orders", "customers"}, join.TablesReferences)
}

func TestCompileExplore_StampsTableAndLabel(t *testing.T) {
	compiled, err := CompileExplore(ordersExplore())
	require.NoError(t, err)

	ct := compiled.Tables["customers"]
	assert.Equal(t, "customers", ct.OriginalName)
	assert.Equal(t, "Customers", ct.Label)
	assert.Equal(t, `"analytics"."customers"`, ct.SQLTable)

	name := ct.Dimensions["name"]
	assert.Equal(t, "customers", name.Table)
	assert.Equal(t, "Customers", name.TableLabel)
	assert.Equal(t, "${TABLE}.name", name.SQL)
}

func TestCompileExplore_Idempotent(t *testing.T) {
	explore := ordersExplore()

	first, err := CompileExplore(explore)
	require.NoError(t, err)
	second, err := CompileExplore(explore)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestCompileExplore_DoesNotMutateInput(t *testing.T) {
	explore := ordersExplore()
	explore.JoinedTables[0].Alias = "buyer"
	explore.JoinedTables[0].Fields = []string{"id", "name"}

	_, err := CompileExplore(explore)
	require.NoError(t, err)

	want := ordersExplore()
	want.JoinedTables[0].Alias = "buyer"
	want.JoinedTables[0].Fields = []string{"id", "name"}
	assert.Equal(t, want, explore)
}

func TestCompileExplore_ReferentialClosure(t *testing.T) {
	compiled, err := CompileExplore(ordersExplore())
	require.NoError(t, err)

	q := filter.DefaultQuotes
	for _, f := range compiled.Fields() {
		c := f.Compiled()
		assert.NotContains(t, c.CompiledSQL, "${", f.Base().FieldID())
		for _, table := range c.TablesReferences {
			_, ok := compiled.Tables[table]
			assert.True(t, ok, "%s references unknown table %s", f.Base().FieldID(), table)
			assert.Contains(t, c.CompiledSQL, q.QuoteField(table), f.Base().FieldID())
		}
	}
}

func TestCompileExplore_MissingTables(t *testing.T) {
	t.Run("base table", func(t *testing.T) {
		explore := ordersExplore()
		explore.BaseTable = "invoices"
		_, err := CompileExplore(explore)
		ce := requireCompileError(t, err, domain.KindMissingBaseTable)
		assert.Contains(t, ce.Error(), `"invoices"`)
	})

	t.Run("joined table", func(t *testing.T) {
		explore := ordersExplore()
		explore.JoinedTables = append(explore.JoinedTables, domain.ExploreJoin{Table: "payments", SQLOn: "true"})
		_, err := CompileExplore(explore)
		ce := requireCompileError(t, err, domain.KindMissingJoinTable)
		assert.Contains(t, ce.Error(), `"payments"`)
	})
}

func TestCompileExplore_DuplicateTable(t *testing.T) {
	explore := ordersExplore()
	explore.JoinedTables = append(explore.JoinedTables, domain.ExploreJoin{Table: "customers", SQLOn: "true"})

	_, err := CompileExplore(explore)
	requireCompileError(t, err, domain.KindDuplicateTable)

	explore.JoinedTables[1].Alias = "referrer"
	_, err = CompileExplore(explore)
	require.NoError(t, err)
}

func TestCompileExplore_DuplicateFieldID(t *testing.T) {
	a := table("a", []domain.Dimension{dim("b_c", domain.DimensionTypeString, "${TABLE}.x")}, nil)
	ab := table("a_b", []domain.Dimension{dim("c", domain.DimensionTypeString, "${TABLE}.y")}, nil)
	explore := domain.Explore{
		Name:         "a",
		BaseTable:    "a",
		JoinedTables: []domain.ExploreJoin{{Table: "a_b", SQLOn: "true"}},
		Tables:       map[string]domain.Table{"a": a, "a_b": ab},
	}

	_, err := CompileExplore(explore)
	ce := requireCompileError(t, err, domain.KindDuplicateFieldID)
	assert.Equal(t, "a_b_c", ce.FieldID)
}

func TestCompileExplore_InvalidFieldType(t *testing.T) {
	t.Run("dimension", func(t *testing.T) {
		explore := singleTableExplore(table("t",
			[]domain.Dimension{dim("x", "geography", "${TABLE}.x")}, nil))
		_, err := CompileExplore(explore)
		ce := requireCompileError(t, err, domain.KindInvalidFieldType)
		assert.Equal(t, "t_x", ce.FieldID)
	})

	t.Run("metric", func(t *testing.T) {
		explore := singleTableExplore(table("t", nil,
			[]domain.Metric{metric("m", "stddev", "${TABLE}.x")}))
		_, err := CompileExplore(explore)
		requireCompileError(t, err, domain.KindInvalidFieldType)
	})

	t.Run("percentile out of range", func(t *testing.T) {
		m := metric("p", domain.MetricTypePercentile, "${TABLE}.x")
		p := 120.0
		m.Percentile = &p
		_, err := CompileExplore(singleTableExplore(table("t", nil, []domain.Metric{m})))
		requireCompileError(t, err, domain.KindInvalidFieldType)
	})
}

func TestCompileExplore_TablesOutsideExploreAreIgnored(t *testing.T) {
	explore := ordersExplore()
	explore.Tables["unused"] = table("unused",
		[]domain.Dimension{dim("broken", domain.DimensionTypeString, "${missing.field}")}, nil)

	compiled, err := CompileExplore(explore)
	require.NoError(t, err)
	assert.NotContains(t, compiled.Tables, "unused")
}

func TestCompileExplore_CustomQuotes(t *testing.T) {
	c := New(WithQuotes(filter.Quotes{Field: "`", String: "'", StringEscape: "\\"}))

	compiled, err := c.CompileExplore(ordersExplore())
	require.NoError(t, err)

	f, ok := compiled.FieldByID("orders_customer_label")
	require.True(t, ok)
	assert.Equal(t, "(`orders`.status) || ' ' || (`customers`.name)", f.Compiled().CompiledSQL)
}

func TestCompileExplore_Concurrent(t *testing.T) {
	c := New()
	want, err := c.CompileExplore(ordersExplore())
	require.NoError(t, err)

	explore := ordersExplore()
	results := make([]*domain.CompiledExplore, 16)
	var g errgroup.Group
	for i := range results {
		i := i
		g.Go(func() error {
			compiled, err := c.CompileExplore(explore)
			results[i] = compiled
			return err
		})
	}
	require.NoError(t, g.Wait())

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestCompileExplore_LongChain(t *testing.T) {
	const depth = 200
	dims := []domain.Dimension{dim("f0", domain.DimensionTypeNumber, "${TABLE}.x")}
	for i := 1; i < depth; i++ {
		dims = append(dims, dim(fieldName(i), domain.DimensionTypeNumber, "${"+fieldName(i-1)+"} + 1"))
	}

	compiled, err := CompileExplore(singleTableExplore(table("t", dims, nil)))
	require.NoError(t, err)

	last, ok := compiled.FieldByID("t_" + fieldName(depth-1))
	require.True(t, ok)
	sql := last.Compiled().CompiledSQL
	assert.True(t, strings.HasPrefix(sql, strings.Repeat("(", depth-1)+`"t".x`), sql)
	assert.Equal(t, depth-1, strings.Count(sql, "+ 1"))
}

func fieldName(i int) string {
	return "f" + strconv.Itoa(i)
}

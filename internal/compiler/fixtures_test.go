package compiler

import "semantic-compiler/internal/domain"

func dim(name string, typ domain.DimensionType, sql string) domain.Dimension {
	return domain.Dimension{FieldBase: domain.FieldBase{Name: name, SQL: sql}, Type: typ}
}

func metric(name string, typ domain.MetricType, sql string) domain.Metric {
	return domain.Metric{FieldBase: domain.FieldBase{Name: name, SQL: sql}, Type: typ}
}

func table(name string, dims []domain.Dimension, metrics []domain.Metric) domain.Table {
	t := domain.Table{
		Name:       name,
		Label:      domain.FriendlyName(name),
		SQLTable:   `"analytics"."` + name + `"`,
		Dimensions: make(map[string]domain.Dimension, len(dims)),
		Metrics:    make(map[string]domain.Metric, len(metrics)),
	}
	for _, d := range dims {
		d.Table = name
		t.Dimensions[d.Name] = d
	}
	for _, m := range metrics {
		m.Table = name
		t.Metrics[m.Name] = m
	}
	return t
}

// ordersExplore is orders joined to customers.
func ordersExplore() domain.Explore {
	orders := table("orders",
		[]domain.Dimension{
			dim("id", domain.DimensionTypeNumber, "${TABLE}.id"),
			dim("customer_id", domain.DimensionTypeNumber, "${TABLE}.customer_id"),
			dim("amount", domain.DimensionTypeNumber, "${TABLE}.amount"),
			dim("amount_with_tax", domain.DimensionTypeNumber, "${amount} * 1.2"),
			dim("status", domain.DimensionTypeString, "${TABLE}.status"),
			dim("created", domain.DimensionTypeDate, "${TABLE}.created"),
			dim("customer_label", domain.DimensionTypeString, "${status} || ' ' || ${customers.name}"),
		},
		[]domain.Metric{
			metric("total_amount", domain.MetricTypeSum, "${TABLE}.amount"),
			metric("order_count", domain.MetricTypeCountDistinct, "${id}"),
			metric("average_amount", domain.MetricTypeAverage, "${orders.amount_with_tax}"),
		},
	)
	customers := table("customers",
		[]domain.Dimension{
			dim("id", domain.DimensionTypeNumber, "${TABLE}.id"),
			dim("name", domain.DimensionTypeString, "${TABLE}.name"),
			dim("email", domain.DimensionTypeString, "${TABLE}.email"),
		},
		[]domain.Metric{
			metric("customer_count", domain.MetricTypeCount, "${TABLE}.id"),
		},
	)
	return domain.Explore{
		Name:      "orders",
		Label:     "Orders",
		BaseTable: "orders",
		JoinedTables: []domain.ExploreJoin{
			{Table: "customers", SQLOn: "${orders.customer_id} = ${customers.id}"},
		},
		Tables: map[string]domain.Table{"orders": orders, "customers": customers},
	}
}

// singleTableExplore wraps one table as its own explore.
func singleTableExplore(t domain.Table) domain.Explore {
	return domain.Explore{
		Name:      t.Name,
		Label:     t.Label,
		BaseTable: t.Name,
		Tables:    map[string]domain.Table{t.Name: t},
	}
}

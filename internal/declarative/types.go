package declarative

import "semantic-compiler/internal/domain"

// Document is the generic envelope parsed first to determine Kind.
type Document struct {
	APIVersion string `yaml:"apiVersion"`
	Kind       string `yaml:"kind"`
}

// ObjectMeta holds common metadata for named resources.
type ObjectMeta struct {
	Name  string   `yaml:"name"`
	Label string   `yaml:"label,omitempty"`
	Tags  []string `yaml:"tags,omitempty"`
}

// ExploreDoc declares one explore together with every table it may use.
type ExploreDoc struct {
	APIVersion string      `yaml:"apiVersion"`
	Kind       string      `yaml:"kind"`
	Metadata   ObjectMeta  `yaml:"metadata"`
	Spec       ExploreSpec `yaml:"spec"`
}

// ExploreSpec is the body of an Explore document.
type ExploreSpec struct {
	BaseTable string      `yaml:"base_table"`
	Joins     []JoinSpec  `yaml:"joins,omitempty"`
	Tables    []TableSpec `yaml:"tables"`
}

// JoinSpec describes one join of the explore.
type JoinSpec struct {
	Table  string   `yaml:"table"`
	SQLOn  string   `yaml:"sql_on"`
	Alias  string   `yaml:"alias,omitempty"`
	Label  string   `yaml:"label,omitempty"`
	Fields []string `yaml:"fields,omitempty"`
}

// TableSpec describes a warehouse table and its fields. Dimensions and
// metrics are lists so the file order is preserved for error paths.
type TableSpec struct {
	Name        string             `yaml:"name"`
	Label       string             `yaml:"label,omitempty"`
	Description string             `yaml:"description,omitempty"`
	Database    string             `yaml:"database,omitempty"`
	Schema      string             `yaml:"schema,omitempty"`
	SQLTable    string             `yaml:"sql_table"`
	Dimensions  []domain.Dimension `yaml:"dimensions,omitempty"`
	Metrics     []domain.Metric    `yaml:"metrics,omitempty"`
}

// FilterRuleDoc declares a single filter rule.
type FilterRuleDoc struct {
	APIVersion string            `yaml:"apiVersion"`
	Kind       string            `yaml:"kind"`
	Spec       domain.FilterRule `yaml:"spec"`
}

package declarative

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"semantic-compiler/internal/domain"
)

// LoadOptions configures YAML loading behavior.
type LoadOptions struct {
	AllowUnknownFields bool
}

// LoadExploreFile reads an Explore document from path.
func LoadExploreFile(path string) (domain.Explore, error) {
	return LoadExploreFileWithOptions(path, LoadOptions{})
}

// LoadExploreFileWithOptions reads an Explore document from path using
// caller-provided loading options.
func LoadExploreFileWithOptions(path string, opts LoadOptions) (domain.Explore, error) {
	data, err := os.ReadFile(path) //nolint:gosec // intentional: reading user-specified definition files
	if err != nil {
		return domain.Explore{}, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseExplore(data, path, opts)
}

// ParseExplore decodes and validates an Explore document. source names the
// document in error messages.
func ParseExplore(data []byte, source string, opts LoadOptions) (domain.Explore, error) {
	var doc ExploreDoc
	if err := decodeYAML(data, &doc, opts); err != nil {
		return domain.Explore{}, fmt.Errorf("parse %s: %w", source, err)
	}
	if err := validateDocument(source, doc.APIVersion, doc.Kind, KindExplore); err != nil {
		return domain.Explore{}, err
	}
	if errs := ValidateExplore(&doc); len(errs) > 0 {
		return domain.Explore{}, validationFailure(source, errs)
	}
	return doc.ToExplore(), nil
}

// LoadFilterRuleFile reads a FilterRule document from path.
func LoadFilterRuleFile(path string) (domain.FilterRule, error) {
	data, err := os.ReadFile(path) //nolint:gosec // intentional: reading user-specified definition files
	if err != nil {
		return domain.FilterRule{}, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseFilterRule(data, path, LoadOptions{})
}

// ParseFilterRule decodes and validates a FilterRule document. A rule
// without an id is given a random one.
func ParseFilterRule(data []byte, source string, opts LoadOptions) (domain.FilterRule, error) {
	var doc FilterRuleDoc
	if err := decodeYAML(data, &doc, opts); err != nil {
		return domain.FilterRule{}, fmt.Errorf("parse %s: %w", source, err)
	}
	if err := validateDocument(source, doc.APIVersion, doc.Kind, KindFilterRule); err != nil {
		return domain.FilterRule{}, err
	}
	if errs := ValidateFilterRule(&doc); len(errs) > 0 {
		return domain.FilterRule{}, validationFailure(source, errs)
	}
	if doc.Spec.ID == "" {
		doc.Spec.ID = uuid.NewString()
	}
	return doc.Spec, nil
}

// ToExplore converts the document into the compiler's input model. Empty
// labels are derived from names and every field is stamped with its table.
func (d *ExploreDoc) ToExplore() domain.Explore {
	explore := domain.Explore{
		Name:         d.Metadata.Name,
		Label:        labelOr(d.Metadata.Label, d.Metadata.Name),
		Tags:         d.Metadata.Tags,
		BaseTable:    d.Spec.BaseTable,
		JoinedTables: make([]domain.ExploreJoin, 0, len(d.Spec.Joins)),
		Tables:       make(map[string]domain.Table, len(d.Spec.Tables)),
	}
	for _, j := range d.Spec.Joins {
		explore.JoinedTables = append(explore.JoinedTables, domain.ExploreJoin{
			Table:  j.Table,
			SQLOn:  j.SQLOn,
			Alias:  j.Alias,
			Label:  j.Label,
			Fields: j.Fields,
		})
	}
	for _, ts := range d.Spec.Tables {
		explore.Tables[ts.Name] = ts.toTable()
	}
	return explore
}

func (ts TableSpec) toTable() domain.Table {
	label := labelOr(ts.Label, ts.Name)
	t := domain.Table{
		Name:        ts.Name,
		Label:       label,
		Description: ts.Description,
		Database:    ts.Database,
		Schema:      ts.Schema,
		SQLTable:    ts.SQLTable,
		Dimensions:  make(map[string]domain.Dimension, len(ts.Dimensions)),
		Metrics:     make(map[string]domain.Metric, len(ts.Metrics)),
	}
	for _, dim := range ts.Dimensions {
		dim.Table = ts.Name
		dim.TableLabel = label
		dim.Label = labelOr(dim.Label, dim.Name)
		t.Dimensions[dim.Name] = dim
	}
	for _, m := range ts.Metrics {
		m.Table = ts.Name
		m.TableLabel = label
		m.Label = labelOr(m.Label, m.Name)
		t.Metrics[m.Name] = m
	}
	return t
}

func labelOr(label, name string) string {
	if label != "" {
		return label
	}
	return domain.FriendlyName(name)
}

// decodeYAML unmarshals data into target, rejecting unknown keys unless
// opts allows them.
func decodeYAML(data []byte, target interface{}, opts LoadOptions) error {
	if opts.AllowUnknownFields {
		return yaml.Unmarshal(data, target)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	return decoder.Decode(target)
}

// validateDocument checks the apiVersion and kind fields.
func validateDocument(path string, apiVersion, kind, expectedKind string) error {
	if apiVersion != SupportedAPIVersion {
		return fmt.Errorf("%s: unsupported apiVersion %q (expected %q)", path, apiVersion, SupportedAPIVersion)
	}
	if kind != expectedKind {
		return fmt.Errorf("%s: unexpected kind %q (expected %q)", path, kind, expectedKind)
	}
	return nil
}

func validationFailure(source string, errs []ValidationError) error {
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = "  - " + e.Error()
	}
	return domain.ErrValidation("%s: %d validation error(s):\n%s", source, len(errs), strings.Join(lines, "\n"))
}

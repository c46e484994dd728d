package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"semantic-compiler/internal/config"
	"semantic-compiler/internal/declarative"
	"semantic-compiler/internal/domain"
)

func newFilterCmd(a *app) *cobra.Command {
	var (
		exploreFile string
		ruleFile    string
	)

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Render a filter rule as a SQL predicate",
		Long:  "Compiles an explore, looks up the rule's target field and prints the SQL predicate for the rule.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			compiled, err := compileFile(a.compiler(), exploreFile, declarative.LoadOptions{})
			if err != nil {
				return err
			}
			rule, err := declarative.LoadFilterRuleFile(ruleFile)
			if err != nil {
				return fmt.Errorf("load rule: %w", err)
			}

			field, ok := compiled.FieldByID(rule.Target.FieldID)
			if !ok {
				return domain.ErrNotFound("field %q not found in explore %q", rule.Target.FieldID, compiled.Name)
			}
			sql, err := a.renderer().RenderFilterRule(field, rule)
			if err != nil {
				return fmt.Errorf("render rule %q: %w", rule.ID, err)
			}
			a.logger.Debug("rendered filter", "rule", rule.ID, "field", rule.Target.FieldID, "operator", rule.Operator)

			if getOutputFormat(cmd) == config.OutputJSON {
				return printJSON(cmd.OutOrStdout(), map[string]string{
					"ruleId":  rule.ID,
					"fieldId": rule.Target.FieldID,
					"sql":     sql,
				})
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), sql)
			return nil
		},
	}

	cmd.Flags().StringVar(&exploreFile, "explore", "", "Explore definition file")
	cmd.Flags().StringVar(&ruleFile, "rule", "", "Filter rule file")
	_ = cmd.MarkFlagRequired("explore")
	_ = cmd.MarkFlagRequired("rule")

	return cmd
}

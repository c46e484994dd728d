package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"semantic-compiler/internal/config"
	"semantic-compiler/internal/domain"
)

// ANSI color codes.
const (
	colorReset = "\033[0m"
	colorGreen = "\033[32m"
	colorCyan  = "\033[36m"
	colorDim   = "\033[2m"
)

// getOutputFormat returns the effective output format from the root command's persistent flags.
func getOutputFormat(cmd *cobra.Command) string {
	v, _ := cmd.Root().PersistentFlags().GetString("output")
	return v
}

func validateOutputFormat(output string) error {
	if output != config.OutputJSON && output != config.OutputText {
		return fmt.Errorf("unsupported output format %q: use 'json' or 'text'", output)
	}
	return nil
}

// printJSON writes v as indented JSON followed by a newline.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// formatExploreText writes a human-readable listing of a compiled explore.
// If noColor is true, ANSI codes are suppressed.
func formatExploreText(w io.Writer, explore *domain.CompiledExplore, noColor bool) {
	c := func(code string) string {
		if noColor {
			return ""
		}
		return code
	}

	fmt.Fprintf(w, "%s# explore %s%s (%s)\n", c(colorCyan), explore.Name, c(colorReset), explore.Label)
	for _, j := range explore.JoinedTables {
		fmt.Fprintf(w, "%sjoin %s ON %s%s\n", c(colorDim), j.Table, j.CompiledSQLOn, c(colorReset))
	}

	var table string
	for _, f := range explore.Fields() {
		base := f.Base()
		if base.Table != table {
			table = base.Table
			fmt.Fprintf(w, "\n%s## %s%s\n", c(colorCyan), table, c(colorReset))
		}
		marker := "dim"
		if f.Kind() == domain.FieldTypeMetric {
			marker = "met"
		}
		fmt.Fprintf(w, "  %s%s%s %s%s%s = %s\n",
			c(colorDim), marker, c(colorReset),
			c(colorGreen), base.FieldID(), c(colorReset),
			f.Compiled().CompiledSQL)
	}
}

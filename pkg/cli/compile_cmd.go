package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"semantic-compiler/internal/compiler"
	"semantic-compiler/internal/config"
	"semantic-compiler/internal/declarative"
	"semantic-compiler/internal/domain"
)

func newCompileCmd(a *app) *cobra.Command {
	var allowUnknownFields bool

	cmd := &cobra.Command{
		Use:   "compile FILE...",
		Short: "Compile explore definition files",
		Long:  "Loads each explore YAML file, compiles it and prints the compiled explores.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := declarative.LoadOptions{AllowUnknownFields: allowUnknownFields}
			compiled, err := compileFiles(cmd, a, args, opts)
			if err != nil {
				return err
			}

			if getOutputFormat(cmd) == config.OutputJSON {
				return printJSON(cmd.OutOrStdout(), compiled)
			}
			for _, e := range compiled {
				formatExploreText(cmd.OutOrStdout(), e, a.cfg.NoColor)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&allowUnknownFields, "allow-unknown-fields", false, "Allow unknown YAML fields in explore files")

	return cmd
}

// compileFiles loads and compiles every file concurrently. Results keep the
// argument order; the first failure cancels the rest.
func compileFiles(cmd *cobra.Command, a *app, paths []string, opts declarative.LoadOptions) ([]*domain.CompiledExplore, error) {
	c := a.compiler()
	results := make([]*domain.CompiledExplore, len(paths))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			explore, err := compileFile(c, path, opts)
			if err != nil {
				return err
			}
			a.logger.Debug("compiled explore",
				"explore", explore.Name,
				"file", path,
				"tables", len(explore.Tables),
				"fields", len(explore.Fields()))
			results[i] = explore
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func compileFile(c *compiler.Compiler, path string, opts declarative.LoadOptions) (*domain.CompiledExplore, error) {
	explore, err := declarative.LoadExploreFileWithOptions(path, opts)
	if err != nil {
		return nil, fmt.Errorf("load explore: %w", err)
	}
	compiled, err := c.CompileExplore(explore)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return compiled, nil
}

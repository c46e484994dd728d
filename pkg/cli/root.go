// Package cli implements the explorec command tree.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"semantic-compiler/internal/compiler"
	"semantic-compiler/internal/config"
	"semantic-compiler/internal/domain"
	"semantic-compiler/internal/filter"
)

var (
	version = "dev"
	commit  = "none"
)

// app is the state resolved once by the root command before any
// subcommand runs.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	clock  filter.Clock
}

func (a *app) compiler() *compiler.Compiler {
	return compiler.New(compiler.WithQuotes(a.cfg.Quotes()))
}

func (a *app) renderer() *filter.Renderer {
	return a.cfg.Renderer(filter.WithClock(a.clock))
}

// Execute runs the CLI.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == config.OutputJSON {
			_ = printJSON(os.Stdout, errorObject(err))
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// errorObject describes err for JSON output, exposing the compile error
// kind and field when there is one.
func errorObject(err error) map[string]interface{} {
	obj := map[string]interface{}{
		"error": err.Error(),
	}
	var ce *domain.CompileError
	if errors.As(err, &ce) {
		obj["kind"] = ce.Kind
		if ce.FieldID != "" {
			obj["fieldId"] = ce.FieldID
		}
	}
	return obj
}

func newRootCmd() *cobra.Command {
	var (
		startOfWeek string
		timezone    string
		nowFlag     time.Time
		logLevel    string
		output      string
		noColor     bool
		envFile     string
	)
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "explorec",
		Short:         "Semantic layer explore compiler",
		Long:          "Compiles explore definitions into resolved SQL and renders filter rules as SQL predicates.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(envFile); err != nil {
				return err
			}
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			// Apply precedence: flag > env > default
			if cmd.Flags().Changed("start-of-week") {
				if err := cfg.SetStartOfWeek(startOfWeek); err != nil {
					return fmt.Errorf("--start-of-week: %w", err)
				}
			}
			if cmd.Flags().Changed("timezone") {
				if err := cfg.SetTimezone(timezone); err != nil {
					return fmt.Errorf("--timezone: %w", err)
				}
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if cmd.Flags().Changed("output") {
				cfg.Output = output
			} else {
				output = cfg.Output
			}
			if cmd.Flags().Changed("no-color") {
				cfg.NoColor = noColor
			}
			if err := validateOutputFormat(cfg.Output); err != nil {
				return err
			}

			a.clock = filter.SystemClock{}
			if !nowFlag.IsZero() {
				a.clock = filter.FixedClock(nowFlag)
			}

			a.cfg = cfg
			a.logger = newLogger(cmd.ErrOrStderr(), cfg.SlogLevel())
			for _, w := range cfg.Warnings {
				a.logger.Warn(w)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&startOfWeek, "start-of-week", "", "First day of the week (MONDAY..SUNDAY)")
	rootCmd.PersistentFlags().StringVar(&timezone, "timezone", "", "IANA timezone for relative date filters")
	instantVar(rootCmd.PersistentFlags(), &nowFlag, "now", "Freeze the current time (RFC3339)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", config.OutputJSON, "Output format (json, text)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored text output")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file with EXPLOREC_* settings")

	rootCmd.AddCommand(newCompileCmd(a))
	rootCmd.AddCommand(newFilterCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Octrafic/stepexec/internal/cli"
	internalConfig "github.com/Octrafic/stepexec/internal/config"
	"github.com/Octrafic/stepexec/internal/core/parser"
	"github.com/Octrafic/stepexec/internal/core/tester"
	"github.com/Octrafic/stepexec/internal/infra/logger"
	"github.com/Octrafic/stepexec/internal/infra/storage"
)

var (
	version = "dev"
)

// errStepFailed makes the process exit 1 without printing anything more.
var errStepFailed = errors.New("step did not pass")

var (
	cfg *internalConfig.Config

	debugFilePath string
	debugEnabled  bool
	noColor       bool

	listSpec  string
	listJSONL bool

	historyLimit int
)

var rootCmd = &cobra.Command{
	Use:           "stepexec",
	Short:         "stepexec - run a single API test step",
	Long:          `stepexec builds one HTTP request from an endpoint description, variables and fixtures, sends it and reports a normalized result.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := internalConfig.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded

		if cmd.Flags().Changed("debug-file") {
			cfg.LogFile = debugFilePath
		}
		if cmd.Flags().Changed("debug") {
			cfg.Debug = debugEnabled
		}
		if cmd.Flags().Changed("no-color") {
			cfg.NoColor = noColor
		}

		if err := logger.Init(cfg.Debug || cfg.LogFile != "", cfg.LogFile); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger.Info("stepexec starting",
			logger.String("version", version),
			logger.String("log_file", cfg.LogFile),
			logger.Bool("debug", cfg.Debug),
		)
		return nil
	},
}

var endpointsCmd = &cobra.Command{
	Use:   "endpoints",
	Short: "List the endpoints of a specification",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := parser.ParseSpecification(listSpec)
		if err != nil {
			return fmt.Errorf("failed to parse specification: %w", err)
		}
		if listJSONL {
			return parser.WriteJSONL(cmd.OutOrStdout(), spec.Endpoints)
		}
		fmt.Fprint(cmd.OutOrStdout(), cli.NewRenderer(cmd.OutOrStdout(), 0, cfg.NoColor).Endpoints(spec.Endpoints))
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded step results",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		history, err := storage.NewHistory(cfg.HistoryDir)
		if err != nil {
			return err
		}
		records, err := history.List(historyLimit)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), cli.NewRenderer(cmd.OutOrStdout(), 0, cfg.NoColor).History(records))
		return nil
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of a step result",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		schema := jsonschema.Reflect(&tester.StepResult{})
		data, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&debugFilePath, "debug-file", "", "Path to debug log file (enables file logging)")
	rootCmd.PersistentFlags().BoolVar(&debugEnabled, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	endpointsCmd.Flags().StringVarP(&listSpec, "spec", "s", "", "Path to API specification file")
	endpointsCmd.Flags().BoolVar(&listJSONL, "jsonl", false, "Print endpoints as JSONL")
	_ = endpointsCmd.MarkFlagRequired("spec")

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "Number of most recent results to show (0 for all)")

	rootCmd.AddCommand(runCmd, endpointsCmd, historyCmd, schemaCmd)
}

func main() {
	_ = godotenv.Load()

	err := rootCmd.Execute()
	logger.Close()
	if err == nil {
		return
	}
	if !errors.Is(err, errStepFailed) {
		logger.Error("Command execution failed", logger.Err(err))
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(1)
}

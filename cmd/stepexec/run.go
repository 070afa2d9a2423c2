package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Octrafic/stepexec/internal/cli"
	internalConfig "github.com/Octrafic/stepexec/internal/config"
	"github.com/Octrafic/stepexec/internal/core/auth"
	"github.com/Octrafic/stepexec/internal/core/parser"
	"github.com/Octrafic/stepexec/internal/core/tester"
	"github.com/Octrafic/stepexec/internal/infra/logger"
	"github.com/Octrafic/stepexec/internal/infra/storage"
)

var (
	specFile     string
	operation    string
	method       string
	path         string
	apiURL       string
	varsFile     string
	fixturesFile string

	authType     string
	authToken    string
	authKey      string
	authValue    string
	authLocation string
	authUser     string
	authPass     string

	jsonOutput bool
	saveResult bool
	noSpinner  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one endpoint and report the result",
	Example: `  stepexec run --spec openapi.yaml --op getUser --url http://localhost:8080 --fixtures fixtures.yaml
  stepexec run --method GET --path /users/{id} --url http://localhost:8080 --vars vars.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		step, err := buildStep()
		if err != nil {
			return err
		}

		provider, err := buildAuth(cmd)
		if err != nil {
			return err
		}
		logger.Debug("Using authentication",
			logger.String("type", provider.Type()),
			logger.String("credentials", fmt.Sprint(provider.Redact())),
		)

		executor := tester.NewExecutor(
			auth.Client(provider, nil),
			tester.WithLogger(logger.L().Named("tester")),
		)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var result tester.StepResult
		if useSpinner() {
			label := step.Endpoint.Method + " " + step.Endpoint.Path
			result, err = cli.RunWithSpinner(ctx, os.Stderr, label, func(ctx context.Context) tester.StepResult {
				return executor.Execute(ctx, step)
			})
			if err != nil {
				return err
			}
		} else {
			result = executor.Execute(ctx, step)
		}

		if saveResult {
			history, err := storage.NewHistory(cfg.HistoryDir)
			if err != nil {
				return err
			}
			record, err := history.Append(step.Endpoint.OperationKey(), result)
			if err != nil {
				return err
			}
			logger.Debug("Result saved", logger.String("id", record.ID), logger.String("path", history.Path()))
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			data, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode result: %w", err)
			}
			fmt.Fprintln(out, string(data))
		} else {
			fmt.Fprint(out, cli.NewRenderer(out, 0, cfg.NoColor).Result(result))
		}

		if !result.Passed {
			logger.Warn("Step did not pass",
				logger.String("url", result.URL),
				logger.Int("status", result.Status),
				logger.String("error", result.Error),
			)
			return errStepFailed
		}
		return nil
	},
}

func buildStep() (tester.Step, error) {
	baseURL := apiURL
	if baseURL == "" {
		baseURL = cfg.BaseURL
	}
	if baseURL == "" {
		return tester.Step{}, fmt.Errorf("API URL is required (--url or %s)", internalConfig.GetEnvVarName("base_url"))
	}

	endpoint, err := selectEndpoint()
	if err != nil {
		return tester.Step{}, err
	}

	vars, err := parser.LoadVars(varsFile)
	if err != nil {
		return tester.Step{}, fmt.Errorf("failed to load variables: %w", err)
	}
	fixtures, err := parser.LoadFixtures(fixturesFile)
	if err != nil {
		return tester.Step{}, fmt.Errorf("failed to load fixtures: %w", err)
	}

	return tester.Step{
		Endpoint:  endpoint,
		BaseURL:   baseURL,
		Variables: vars,
		Fixtures:  fixtures,
	}, nil
}

func selectEndpoint() (tester.EndpointDescriptor, error) {
	if specFile == "" {
		if method == "" || path == "" {
			return tester.EndpointDescriptor{}, errors.New("either --spec with --op, or --method with --path is required")
		}
		endpoint := tester.EndpointDescriptor{
			Method:      strings.ToUpper(method),
			Path:        path,
			OperationID: operation,
		}
		// Every placeholder of an ad-hoc path is treated as a path parameter.
		for _, name := range tester.ParseTemplate(path).Placeholders() {
			endpoint.Parameters = append(endpoint.Parameters, tester.ParameterDescriptor{Name: name, In: tester.LocationPath})
		}
		return endpoint, nil
	}

	spec, err := parser.ParseSpecification(specFile)
	if err != nil {
		return tester.EndpointDescriptor{}, fmt.Errorf("failed to parse specification: %w", err)
	}

	selector := operation
	if selector == "" {
		if method == "" || path == "" {
			return tester.EndpointDescriptor{}, errors.New("--op or --method with --path is required to pick an endpoint")
		}
		selector = method + " " + path
	}
	return spec.Find(selector)
}

// buildAuth starts from STEPEXEC_AUTH_* and lets explicit flags win.
func buildAuth(cmd *cobra.Command) (auth.Provider, error) {
	settings, err := internalConfig.LoadAuth()
	if err != nil {
		return nil, fmt.Errorf("failed to read auth environment: %w", err)
	}

	flags := cmd.Flags()
	for name, target := range map[string]*string{
		"auth":   &settings.Type,
		"token":  &settings.Token,
		"key":    &settings.Key,
		"value":  &settings.Value,
		"key-in": &settings.Location,
		"user":   &settings.User,
		"pass":   &settings.Pass,
	} {
		if flags.Changed(name) {
			v, _ := flags.GetString(name)
			*target = v
		}
	}

	provider, err := auth.New(settings)
	if err != nil {
		return nil, fmt.Errorf("invalid authentication configuration: %w", err)
	}
	return provider, nil
}

func useSpinner() bool {
	if noSpinner || jsonOutput {
		return false
	}
	return isatty.IsTerminal(os.Stderr.Fd()) && isatty.IsTerminal(os.Stdin.Fd())
}

func init() {
	runCmd.Flags().StringVarP(&specFile, "spec", "s", "", "Path to API specification file (OpenAPI JSON/YAML or JSONL)")
	runCmd.Flags().StringVarP(&operation, "op", "o", "", "Operation id of the endpoint")
	runCmd.Flags().StringVarP(&method, "method", "m", "", "HTTP method (with --path)")
	runCmd.Flags().StringVarP(&path, "path", "p", "", "Endpoint path template (with --method)")
	runCmd.Flags().StringVarP(&apiURL, "url", "u", "", "Base URL of the API to test")
	runCmd.Flags().StringVar(&varsFile, "vars", "", "Variables file (YAML or JSON)")
	runCmd.Flags().StringVar(&fixturesFile, "fixtures", "", "Fixture data file keyed by operation (YAML or JSON)")

	runCmd.Flags().StringVar(&authType, "auth", "none", "Authentication type (none|bearer|apikey|basic)")
	runCmd.Flags().StringVar(&authToken, "token", "", "Bearer token")
	runCmd.Flags().StringVar(&authKey, "key", "", "API key name (e.g., X-API-Key)")
	runCmd.Flags().StringVar(&authValue, "value", "", "API key value")
	runCmd.Flags().StringVar(&authLocation, "key-in", "header", "Where the API key goes (header|query)")
	runCmd.Flags().StringVar(&authUser, "user", "", "Username for basic auth")
	runCmd.Flags().StringVar(&authPass, "pass", "", "Password for basic auth")

	runCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the result as JSON")
	runCmd.Flags().BoolVar(&saveResult, "save", false, "Append the result to the history")
	runCmd.Flags().BoolVar(&noSpinner, "no-spinner", false, "Do not show a spinner while the request runs")
}

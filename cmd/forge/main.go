// Command forge turns a natural-language request into a working Go snippet
// by looping an LLM developer against an in-process execution sandbox.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"codeforge/cmd/forge/ui"
	"codeforge/internal/agents"
	"codeforge/internal/config"
	"codeforge/internal/history"
	"codeforge/internal/llm"
	"codeforge/internal/sandbox"
	"codeforge/internal/web"
	"codeforge/internal/workflow"
)

var version = "0.1.0"

var (
	// Global flags
	cfgPath       string
	verbose       bool
	maxIterations int
	model         string

	cfg      *config.Config
	logger   *zap.Logger
	exitCode int
)

var rootCmd = &cobra.Command{
	Use:   "forge",
	Short: "codeforge — autonomous code workshop",
	Long: `codeforge runs a fixed pipeline of LLM calls — requirements analysis,
code generation, execution-based testing and retry routing — to turn a
natural-language request into a working Go snippet.

Candidates are executed in an isolated in-process interpreter; failures are
fed back to the model until the code passes or the iteration budget runs out.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfgPath == "" {
			cfgPath = config.DefaultConfigPath()
		}
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}

		// Flag overrides beat file and environment.
		if maxIterations > 0 {
			cfg.Workflow.MaxIterations = maxIterations
		}
		if model != "" {
			cfg.LLM.Model = model
		}

		logger, err = buildLogger(cfg.Logging.Level, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func buildLogger(level string, verbose bool) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	switch level {
	case "DEBUG":
		zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case "WARNING":
		zapCfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case "ERROR":
		zapCfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	default:
		zapCfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	if verbose {
		zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zapCfg.Build()
}

// buildEngine wires the sandbox, oracle client and agents into an engine.
func buildEngine() (*workflow.Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	client, err := llm.NewClient(llm.ClientConfig{
		Provider:    llm.Provider(cfg.LLM.Provider),
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		BaseURL:     cfg.LLM.BaseURL,
		Temperature: cfg.Workflow.Temperature,
		Timeout:     cfg.GetLLMTimeout(),
	})
	if err != nil {
		return nil, err
	}

	runner := sandbox.NewRunner(sandbox.Options{
		Timeout:        cfg.GetSandboxTimeout(),
		MaxOutputBytes: cfg.Sandbox.MaxOutputBytes,
	}, logger)

	return workflow.NewEngine(
		agents.NewProductManager(client, logger),
		agents.NewDeveloper(client, logger),
		agents.NewQATester(runner, logger),
		logger,
	), nil
}

func openStore() *history.Store {
	store, err := history.NewStore(cfg.History.DatabasePath)
	if err != nil {
		logger.Warn("run history disabled", zap.Error(err))
		return nil
	}
	return store
}

var runCmd = &cobra.Command{
	Use:   "run \"<request>\"",
	Short: "Run the workflow for a single request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := buildEngine()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fmt.Print(ui.Banner())
		fmt.Print(ui.Request(args[0]))

		state, err := engine.Run(ctx, args[0], cfg.Workflow.MaxIterations)
		if err != nil {
			return fmt.Errorf("workflow aborted: %w", err)
		}

		for _, rec := range state.Records {
			fmt.Print(ui.Iteration(rec))
		}
		fmt.Print(ui.FinalResults(state))

		if store := openStore(); store != nil {
			defer store.Close()
			if err := store.SaveRun(state); err != nil {
				logger.Warn("failed to persist run", zap.Error(err))
			}
		}

		if state.Status != workflow.StatusPassed {
			exitCode = 1
		}
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := buildEngine()
		if err != nil {
			return err
		}

		webCfg := web.DefaultConfig()
		webCfg.Host = cfg.Web.Host
		webCfg.Port = cfg.Web.Port
		webCfg.MaxIterations = cfg.Workflow.MaxIterations

		var store web.HistoryStore
		if s := openStore(); s != nil {
			defer s.Close()
			store = s
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv := web.New(webCfg, engine, store, logger)
		fmt.Printf("codeforge web UI on http://%s\n", srv.Addr())
		return srv.Start(ctx)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		store, err := history.NewStore(cfg.History.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to open history: %w", err)
		}
		defer store.Close()

		runs, err := store.ListRuns(limit)
		if err != nil {
			return err
		}
		fmt.Print(ui.HistoryTable(runs))
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("codeforge %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().IntVar(&maxIterations, "max-iterations", 0, "override the iteration budget")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "override the model identifier")

	historyCmd.Flags().Int("limit", 20, "number of runs to show")

	rootCmd.AddCommand(runCmd, serveCmd, historyCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(exitCode)
}

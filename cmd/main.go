package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Jamolkhon5/clarifi/internal/ai/clarity/handler"
	"github.com/Jamolkhon5/clarifi/internal/ai/clarity/models"
	"github.com/Jamolkhon5/clarifi/internal/ai/clarity/service"
	"github.com/Jamolkhon5/clarifi/internal/ai/clarity/validator"
	"github.com/Jamolkhon5/clarifi/internal/config"
	"github.com/Jamolkhon5/clarifi/internal/logging"
	"github.com/Jamolkhon5/clarifi/internal/mcptool"
	"github.com/Jamolkhon5/clarifi/internal/repository"
	apiserver "github.com/Jamolkhon5/clarifi/internal/server"
	"github.com/Jamolkhon5/clarifi/internal/tui"
	"github.com/Jamolkhon5/clarifi/internal/widget"
)

// Version is set at build time via ldflags.
var Version = "dev"

var (
	configPath string
	verbose    bool
	mode       string
	endpoint   string
	contextTag string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "clarifi",
	Short: "ClariFi - turn confusion into clarity",
	Long: `ClariFi takes a short description of a dilemma plus a context tag
and returns a clarity report: a restated summary, the key decision
variables and one suggested next step.

Run without arguments to start the interactive widget.`,
	SilenceUsage: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runWidget,
}

var widgetCmd = &cobra.Command{
	Use:   "widget",
	Short: "Start the interactive clarity widget",
	RunE:  runWidget,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reference analysis server (HTTP + gRPC health)",
	Long: `Serves POST /analyze with the local template so the widget's remote
mode can be exercised end-to-end. Reports are logged to the database
when DB_DSN is set.`,
	RunE: runServe,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [situation]",
	Short: "Print a clarity report for a single situation",
	Example: `  clarifi analyze --context career "take the offer from the startup"
  clarifi analyze --mode remote --endpoint http://localhost:5000/analyze "switch majors"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the get_clarity tool over MCP (stdio)",
	RunE:  runMCP,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "clarifi %s\n", Version)
	},
}

func init() {
	rootCmd.PersistentPreRunE = setup

	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".env", "path to env-format config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&mode, "mode", "local", "analysis mode: local or remote")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", service.DefaultEndpoint, "remote analysis endpoint")

	analyzeCmd.Flags().StringVarP(&contextTag, "context", "c", string(models.DefaultContext), "Career, Study, Personal or Project")

	rootCmd.AddCommand(widgetCmd, serveCmd, analyzeCmd, mcpCmd, versionCmd)
}

// setup загружает конфигурацию и логгер перед любой командой
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.NewConfig(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("mode") {
		cfg.Mode = mode
	}
	if cmd.Flags().Changed("endpoint") {
		cfg.Endpoint = endpoint
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	// интерфейс и stdio MCP занимают терминал, поэтому логи только в файл
	switch cmd.Name() {
	case "clarifi", "widget", "mcp":
		if cfg.LogFile == "" {
			logger = zap.NewNop()
			return nil
		}
	}
	logger, err = logging.New(level, cfg.LogFile)
	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newProvider() (service.Provider, widget.Mode, error) {
	m, err := widget.ParseMode(cfg.Mode)
	if err != nil {
		return nil, "", err
	}
	if m == widget.ModeRemote {
		return service.NewRemoteProvider(cfg.Endpoint, service.WithLogger(logger)), m, nil
	}
	return service.NewLocalProvider(), m, nil
}

func runWidget(cmd *cobra.Command, args []string) error {
	provider, m, err := newProvider()
	if err != nil {
		return err
	}

	notifier := &tui.Notifier{}
	w := widget.New(provider,
		widget.WithMode(m),
		widget.WithClipboard(tui.WriteClipboard),
		widget.WithCopyAck(cfg.CopyAck),
		widget.WithLogger(logger),
		widget.WithOnChange(notifier.OnChange),
	)

	return tui.Run(w, notifier)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	c, err := models.ParseContext(contextTag)
	if err != nil {
		return err
	}
	situation := args[0]
	for _, a := range args[1:] {
		situation += " " + a
	}
	if err := validator.ValidateSituation(situation); err != nil {
		return err
	}

	provider, _, err := newProvider()
	if err != nil {
		return err
	}

	analysis, err := provider.GetAnalysis(cmd.Context(), situation, c)
	if err != nil {
		logger.Error("analysis failed", zap.Error(err))
		return errors.New(widget.GenericErrorMessage)
	}

	fmt.Fprintln(cmd.OutOrStdout(), service.FormatReport(*analysis))
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	var reports handler.ReportLog
	if cfg.DBDSN != "" {
		db, err := repository.Open(cfg.DBDriver, cfg.DBDSN)
		if err != nil {
			return err
		}
		defer db.Close()

		repo := repository.NewRepository(db)
		if err := repo.Migrate(cmd.Context()); err != nil {
			return err
		}
		reports = repo
		logger.Info("report log enabled", zap.String("driver", cfg.DBDriver))
	}

	clarity := handler.NewClarityHandler(service.NewLocalProvider(), reports, logger)
	srv := apiserver.New(apiserver.Options{
		HTTPAddr:       cfg.HTTPAddr,
		GRPCAddr:       cfg.GRPCAddr,
		AllowedOrigins: cfg.AllowedOrigins,
	}, clarity, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}

func runMCP(cmd *cobra.Command, args []string) error {
	provider, _, err := newProvider()
	if err != nil {
		return err
	}
	return server.ServeStdio(mcptool.NewServer(Version, provider, logger))
}

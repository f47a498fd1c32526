package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ChristianF88/burstx/config"
	"github.com/ChristianF88/burstx/version"
	cli "github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// logger is replaced in App.Before once the global flags are known
var logger = zap.NewNop()

// logFile is the --logFile value; interactive commands only log when it is set
var logFile string

// parseDate attempts to parse the build date
func parseDate(d string) time.Time {
	t, err := time.Parse(time.RFC3339, d)
	if err != nil {
		return time.Now()
	}
	return t
}

// Shared flag definitions to eliminate duplication
var (
	// Global flags
	verboseFlag = &cli.BoolFlag{
		Name:  "verbose",
		Usage: "Enable debug logging",
		Value: false,
	}
	logFileFlag = &cli.StringFlag{
		Name:  "logFile",
		Usage: "Write logs to this file instead of stderr (required for logs in tui mode)",
	}

	// Configuration flags
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "Path to configuration file (mutually exclusive with other flags)",
	}

	// Data flags
	dataFlag = &cli.StringFlag{
		Name:  "data",
		Usage: "Path to the tree data file (.json, .yaml, .yml or .toml)",
	}
	titleFlag = &cli.StringFlag{
		Name:  "title",
		Usage: "Chart title",
		Value: config.DefaultTitle,
	}
	rootLabelFlag = &cli.StringFlag{
		Name:  "rootLabel",
		Usage: "Name of the first breadcrumb",
	}

	// Navigation flags
	searchFlag = &cli.StringFlag{
		Name:  "search",
		Usage: "Only show segments whose name, or a descendant's name, contains this text (case-insensitive)",
	}
	pathFlag = &cli.StringSliceFlag{
		Name:  "path",
		Usage: "Drill down by segment name, starting at the root (repeatable, e.g. --path 'Company Sales' --path Electronics)",
	}

	// Output flags
	plotPathFlag = &cli.StringFlag{
		Name:  "plotPath",
		Usage: "Path where to save the sunburst file (e.g., '/path/to/sunburst.html'). If not provided, no plot will be generated.",
	}
	exportFlag = &cli.BoolFlag{
		Name:  "export",
		Usage: "Output only the export rows (name, value, percent, has_children) of the current level",
		Value: false,
	}
	compactFlag = &cli.BoolFlag{
		Name:  "compact",
		Usage: "Output compact JSON (no pretty printing)",
		Value: false,
	}
	plainFlag = &cli.BoolFlag{
		Name:  "plain",
		Usage: "Output plain text format for easy readability",
		Value: false,
	}

	// Watch and serve flags
	watchFlag = &cli.BoolFlag{
		Name:  "watch",
		Usage: "Reload the data file when it changes",
		Value: false,
	}
	debounceFlag = &cli.DurationFlag{
		Name:  "debounce",
		Usage: "Quiet period before a changed data file is reloaded",
		Value: config.DefaultDebounce,
	}
	addrFlag = &cli.StringFlag{
		Name:  "addr",
		Usage: "Address to listen on",
		Value: config.DefaultAddr,
	}
)

// newLogger builds the production zap logger used by all commands
func newLogger(verbose bool, path string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if path != "" {
		cfg.OutputPaths = []string{path}
		cfg.ErrorOutputPaths = []string{path}
	}
	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return l, nil
}

// interactiveLogger is the logger for commands that own the terminal
func interactiveLogger() *zap.Logger {
	if logFile == "" {
		return zap.NewNop()
	}
	return logger
}

// Shared validation functions
func validateConfigModeFlags(c *cli.Context, allowedFlags []string) error {
	// Create a map for quick lookup of allowed flags
	allowed := make(map[string]bool)
	for _, flag := range allowedFlags {
		allowed[flag] = true
	}

	// Check all possible flags
	flagsToCheck := []string{
		"data", "title", "rootLabel", "search", "path", "plotPath",
		"export", "compact", "plain", "watch", "debounce", "addr",
	}

	for _, flag := range flagsToCheck {
		if c.IsSet(flag) && !allowed[flag] {
			return fmt.Errorf("when using --config, only %v flags are allowed", allowedFlags)
		}
	}
	return nil
}

func validatePlotPath(plotPath string) error {
	if plotPath != "" {
		plotDir := filepath.Dir(plotPath)
		if plotDir == "." {
			plotDir, _ = os.Getwd()
		}
		if _, err := os.Stat(plotDir); os.IsNotExist(err) {
			return fmt.Errorf("plot directory does not exist: %s", plotDir)
		}
	}
	return nil
}

func validateDataFileExists(dataPath string) error {
	if _, err := os.Stat(dataPath); os.IsNotExist(err) {
		return fmt.Errorf("data file does not exist: %s", dataPath)
	}
	return nil
}

// loadConfig loads the file and its palette
func loadConfig(configPath string) (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// Command handler functions to reduce deep nesting

// handleRenderCommand processes the render command
func handleRenderCommand(c *cli.Context) error {
	outputConfig := OutputConfig{
		Compact: c.Bool("compact"),
		Plain:   c.Bool("plain"),
		Export:  c.Bool("export"),
	}

	configPath := c.String("config")
	if configPath != "" {
		return handleRenderConfigMode(c, configPath, outputConfig)
	}
	return handleRenderFlagsMode(c, outputConfig)
}

// handleRenderConfigMode handles render command when using config file
func handleRenderConfigMode(c *cli.Context, configPath string, outputConfig OutputConfig) error {
	// Validate only allowed flags in config mode
	if err := validateConfigModeFlags(c, []string{"export", "compact", "plain"}); err != nil {
		return err
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateRender(); err != nil {
		return fmt.Errorf("invalid render configuration: %w", err)
	}
	if err := validatePlotPath(cfg.Render.PlotPath); err != nil {
		return err
	}

	p, err := cfg.BuildPalette()
	if err != nil {
		return err
	}

	return Render(RenderOptions{
		DataFile:  cfg.Global.DataFile,
		Title:     cfg.GetTitle(),
		RootLabel: cfg.GetRootLabel(),
		Search:    cfg.Render.Search,
		Path:      cfg.Render.Path,
		PlotPath:  cfg.Render.PlotPath,
		Palette:   p,
	}, outputConfig)
}

// handleRenderFlagsMode handles render command when using CLI flags only
func handleRenderFlagsMode(c *cli.Context, outputConfig OutputConfig) error {
	if !c.IsSet("data") {
		return fmt.Errorf("data is required when not using --config")
	}
	if err := validateDataFileExists(c.String("data")); err != nil {
		return err
	}
	if err := validatePlotPath(c.String("plotPath")); err != nil {
		return err
	}

	return Render(RenderOptions{
		DataFile:  c.String("data"),
		Title:     c.String("title"),
		RootLabel: c.String("rootLabel"),
		Search:    c.String("search"),
		Path:      c.StringSlice("path"),
		PlotPath:  c.String("plotPath"),
	}, outputConfig)
}

// handleTUICommand processes the tui command
func handleTUICommand(c *cli.Context) error {
	configPath := c.String("config")
	if configPath == "" {
		if !c.IsSet("data") {
			return fmt.Errorf("data is required when not using --config")
		}
		if err := validateDataFileExists(c.String("data")); err != nil {
			return err
		}
		if err := validatePlotPath(c.String("plotPath")); err != nil {
			return err
		}
		return TUI(TUIOptions{
			DataFile:  c.String("data"),
			Title:     c.String("title"),
			RootLabel: c.String("rootLabel"),
			PlotPath:  c.String("plotPath"),
			Watch:     c.Bool("watch"),
			Debounce:  c.Duration("debounce"),
		})
	}

	if err := validateConfigModeFlags(c, []string{}); err != nil {
		return err
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateTUI(); err != nil {
		return fmt.Errorf("invalid tui configuration: %w", err)
	}
	if err := validatePlotPath(cfg.TUI.PlotPath); err != nil {
		return err
	}
	p, err := cfg.BuildPalette()
	if err != nil {
		return err
	}

	return TUI(TUIOptions{
		DataFile:  cfg.Global.DataFile,
		Title:     cfg.GetTitle(),
		RootLabel: cfg.GetRootLabel(),
		PlotPath:  cfg.TUI.PlotPath,
		Watch:     cfg.TUI.Watch,
		Debounce:  config.DefaultDebounce,
		Palette:   p,
	})
}

// handleServeCommand processes the serve command
func handleServeCommand(c *cli.Context) error {
	configPath := c.String("config")
	if configPath == "" {
		if !c.IsSet("data") {
			return fmt.Errorf("data is required when not using --config")
		}
		if err := validateDataFileExists(c.String("data")); err != nil {
			return err
		}
		return Serve(ServeOptions{
			DataFile:  c.String("data"),
			Title:     c.String("title"),
			RootLabel: c.String("rootLabel"),
			Addr:      c.String("addr"),
			Watch:     c.Bool("watch"),
			Debounce:  c.Duration("debounce"),
		})
	}

	if err := validateConfigModeFlags(c, []string{}); err != nil {
		return err
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateServe(); err != nil {
		return fmt.Errorf("invalid serve configuration: %w", err)
	}
	debounce, err := cfg.GetDebounce()
	if err != nil {
		return err
	}
	p, err := cfg.BuildPalette()
	if err != nil {
		return err
	}

	return Serve(ServeOptions{
		DataFile:  cfg.Global.DataFile,
		Title:     cfg.GetTitle(),
		RootLabel: cfg.GetRootLabel(),
		Addr:      cfg.GetAddr(),
		Watch:     cfg.Serve.Watch,
		Debounce:  debounce,
		Palette:   p,
	})
}

var App = &cli.App{
	Name:     "burstx",
	Usage:    "Drill down through hierarchical data as a sunburst",
	Version:  version.Version,
	Compiled: parseDate(version.Date),
	Flags: []cli.Flag{
		verboseFlag,
		logFileFlag,
	},
	Before: func(c *cli.Context) error {
		logFile = c.String("logFile")
		l, err := newLogger(c.Bool("verbose"), logFile)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	After: func(c *cli.Context) error {
		_ = logger.Sync()
		return nil
	},
	Commands: []*cli.Command{
		{
			Name:  "render",
			Usage: "Print the breakdown of one level as JSON or plain text, optionally plotting it",
			Flags: []cli.Flag{
				// Configuration
				configFlag,
				// Data flags
				dataFlag,
				titleFlag,
				rootLabelFlag,
				// Navigation flags
				searchFlag,
				pathFlag,
				// Output flags
				plotPathFlag,
				exportFlag,
				compactFlag,
				plainFlag,
			},
			Action: handleRenderCommand,
		},
		{
			Name:  "tui",
			Usage: "Explore the tree interactively in the terminal",
			Flags: []cli.Flag{
				configFlag,
				dataFlag,
				titleFlag,
				rootLabelFlag,
				plotPathFlag,
				watchFlag,
				debounceFlag,
			},
			Action: handleTUICommand,
		},
		{
			Name:  "serve",
			Usage: "Serve navigation sessions over HTTP",
			Flags: []cli.Flag{
				configFlag,
				dataFlag,
				titleFlag,
				rootLabelFlag,
				addrFlag,
				watchFlag,
				debounceFlag,
			},
			Action: handleServeCommand,
		},
	},
}

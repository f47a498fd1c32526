package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ChristianF88/burstx/analysis"
	"github.com/ChristianF88/burstx/ingestor"
	"github.com/ChristianF88/burstx/navigation"
	"github.com/ChristianF88/burstx/output"
	"github.com/ChristianF88/burstx/palette"
	"github.com/ChristianF88/burstx/server"
	"github.com/ChristianF88/burstx/tree"
	"github.com/ChristianF88/burstx/tui"
	"github.com/ChristianF88/burstx/watcher"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ============================================================================
// CONFIGURATION STRUCTS
// ============================================================================

// OutputConfig contains output formatting options
type OutputConfig struct {
	Compact bool
	Plain   bool
	Export  bool
}

// RenderOptions describe one non-interactive render
type RenderOptions struct {
	DataFile  string
	Title     string
	RootLabel string
	Search    string
	Path      []string
	PlotPath  string
	Palette   *palette.Palette
}

// TUIOptions describe an interactive session
type TUIOptions struct {
	DataFile  string
	Title     string
	RootLabel string
	PlotPath  string
	Watch     bool
	Debounce  time.Duration
	Palette   *palette.Palette
}

// ServeOptions describe the HTTP server
type ServeOptions struct {
	DataFile  string
	Title     string
	RootLabel string
	Addr      string
	Watch     bool
	Debounce  time.Duration
	Palette   *palette.Palette
}

// ============================================================================
// MAIN ENTRY POINTS
// ============================================================================

// Render loads the data file, walks opts.Path, applies opts.Search and prints
// the resulting level
func Render(opts RenderOptions, outputConfig OutputConfig) error {
	start := time.Now()

	root, err := ingestor.Load(opts.DataFile)
	if err != nil {
		return err
	}
	nav, err := navigation.New(root,
		navigation.WithPalette(opts.Palette),
		navigation.WithRootLabel(opts.RootLabel),
		navigation.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	if err := drillPath(nav, opts.Path); err != nil {
		return err
	}
	if opts.Search != "" {
		nav.Search(opts.Search)
	}

	if outputConfig.Export {
		return outputExport(nav.Frame().ExportRows(), outputConfig)
	}

	result := output.NewJSONOutput(opts.Title, start)
	result.Metadata.DataFile = opts.DataFile
	result.SetState(nav)

	if nav.Frame().Len() == 0 && nav.Keyword() != "" {
		result.AddWarning("filter", fmt.Sprintf("No segment matches %q", nav.Keyword()), 0)
	}

	// Generate the sunburst if plotPath is provided
	if opts.PlotPath != "" {
		plotStart := time.Now()
		err := output.PlotSunburst(nav.Frame().Nodes, output.ChartOptions{
			Title:    opts.Title,
			Subtitle: nav.BreadcrumbText(" > "),
			Palette:  opts.Palette,
			Depth:    nav.Depth(),
		}, opts.PlotPath)
		if err != nil {
			result.AddError("plot", err.Error(), 0)
		} else {
			result.AddWarning("info", fmt.Sprintf("Sunburst generated in %v at %s", time.Since(plotStart), opts.PlotPath), 0)
		}
	}

	result.UpdateDuration(start)
	outputResult(result, outputConfig)
	return nil
}

// TUI runs the terminal UI until the user quits or the process is signalled
func TUI(opts TUIOptions) error {
	log := interactiveLogger()

	root, err := ingestor.Load(opts.DataFile)
	if err != nil {
		return err
	}
	app, err := tui.NewApp(root, tui.Options{
		Title:     opts.Title,
		DataFile:  opts.DataFile,
		PlotPath:  opts.PlotPath,
		RootLabel: opts.RootLabel,
		Palette:   opts.Palette,
		Logger:    log,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	if opts.Watch {
		reloader := watcher.NewTreeReloader(opts.DataFile, app.ApplyTree, log,
			watcher.WithDebounceDuration(opts.Debounce))
		g.Go(func() error {
			return reloader.Run(ctx)
		})
	}
	g.Go(func() error {
		// Quitting the UI stops the watcher too
		defer cancel()
		return app.Run(ctx)
	})
	return g.Wait()
}

// Serve runs the HTTP session server until the process is signalled
func Serve(opts ServeOptions) error {
	root, err := ingestor.Load(opts.DataFile)
	if err != nil {
		return err
	}
	srv, err := server.New(root, server.Options{
		Title:     opts.Title,
		DataFile:  opts.DataFile,
		RootLabel: opts.RootLabel,
		Palette:   opts.Palette,
	}, logger)
	if err != nil {
		return err
	}

	logger.Info("serving",
		zap.String("data", opts.DataFile),
		zap.Int("nodes", tree.Count(root)),
		zap.Bool("watch", opts.Watch),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	if opts.Watch {
		reloader := watcher.NewTreeReloader(opts.DataFile, srv.ApplyTree, logger,
			watcher.WithDebounceDuration(opts.Debounce))
		g.Go(func() error {
			return reloader.Run(ctx)
		})
	}
	g.Go(func() error {
		return srv.ListenAndServe(ctx, opts.Addr)
	})
	return g.Wait()
}

// drillPath clicks each named segment in turn, starting at the current level
func drillPath(nav *navigation.Navigator, path []string) error {
	for i, name := range path {
		idx := nav.IndexOf(name)
		if idx < 0 {
			return fmt.Errorf("path element %d: no segment named %q at %s", i+1, name, nav.BreadcrumbText(" > "))
		}
		drilled, err := nav.Click(idx)
		if err != nil {
			return fmt.Errorf("path element %d: %w", i+1, err)
		}
		if !drilled {
			return fmt.Errorf("path element %d: %q is a leaf and cannot be drilled into", i+1, name)
		}
	}
	return nil
}

// ============================================================================
// OUTPUT FUNCTIONS - Unified output handling
// ============================================================================

// outputResult is the unified output function that handles all output formats
func outputResult(jsonOutput *output.JSONOutput, outputConfig OutputConfig) {
	if outputConfig.Plain {
		outputPlain(jsonOutput)
		return
	}

	var jsonBytes []byte
	var err error

	if outputConfig.Compact {
		jsonBytes, err = jsonOutput.ToCompactJSON()
	} else {
		jsonBytes, err = jsonOutput.ToJSON()
	}

	if err != nil {
		fmt.Printf(`{"error": "failed to marshal JSON output: %v"}`, err)
		return
	}
	fmt.Println(string(jsonBytes))
}

// outputExport prints the export rows as JSON or as a plain table
func outputExport(rows []analysis.ExportRow, outputConfig OutputConfig) error {
	if outputConfig.Plain {
		fmt.Printf("%-30s  %14s  %8s  %s\n", "NAME", "VALUE", "PERCENT", "CHILDREN")
		for _, row := range rows {
			children := "no"
			if row.HasChildren {
				children = "yes"
			}
			fmt.Printf("%-30s  %14s  %7.2f%%  %s\n", row.Name, output.FormatValue(row.Value), row.Percent, children)
		}
		return nil
	}

	data, err := output.ExportJSON(rows, outputConfig.Compact)
	if err != nil {
		return fmt.Errorf("failed to marshal export rows: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// outputPlain formats the JSON output as human-readable plain text
func outputPlain(jsonOutput *output.JSONOutput) {
	heavy := strings.Repeat("═", 79)
	light := strings.Repeat("─", 79)

	fmt.Printf("%s\n", heavy)
	fmt.Printf("%s\n", centered(fmt.Sprintf("%s Breakdown", jsonOutput.Metadata.Title), 79))
	fmt.Printf("%s\n\n", heavy)

	// Location
	nav := jsonOutput.Navigation
	fmt.Printf("📍 LOCATION\n")
	fmt.Printf("%s\n", light)
	fmt.Printf("Path:            %s\n", strings.Join(nav.Breadcrumbs, " > "))
	fmt.Printf("Level:           %s\n", nav.LevelName)
	if nav.Keyword != "" {
		fmt.Printf("Filter:          %s\n", nav.Keyword)
	} else {
		fmt.Printf("Filter:          None\n")
	}
	if nav.Selected != "" {
		fmt.Printf("Clicked:         %s\n", nav.Selected)
	}
	if jsonOutput.Metadata.DataFile != "" {
		fmt.Printf("Data File:       %s\n", jsonOutput.Metadata.DataFile)
	}
	fmt.Printf("Tree:            %s nodes, depth %d\n",
		output.FormatNumber(jsonOutput.Metadata.TreeNodes), jsonOutput.Metadata.TreeDepth)
	fmt.Printf("Generated:       %s\n", jsonOutput.Metadata.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("Duration:        %d ms\n", jsonOutput.Metadata.DurationMS)
	fmt.Printf("\n")

	// Summary
	s := jsonOutput.Summary
	fmt.Printf("📊 SUMMARY\n")
	fmt.Printf("%s\n", light)
	fmt.Printf("Total:           %s\n", output.FormatValue(s.Total))
	fmt.Printf("Categories:      %s\n", output.FormatNumber(s.Count))
	fmt.Printf("Largest:         %s\n", output.FormatValue(s.Max))
	fmt.Printf("Average:         %s\n", output.FormatValue(s.Average))
	fmt.Printf("\n")

	// Segments
	fmt.Printf("🍩 SEGMENTS (%d)\n", len(jsonOutput.Segments))
	fmt.Printf("...............................................................................  \n")
	if len(jsonOutput.Segments) == 0 {
		fmt.Printf("  No segments to show\n")
	}
	for _, seg := range jsonOutput.Segments {
		drill := ""
		if seg.HasChildren {
			drill = fmt.Sprintf("  › %d children", seg.Children)
		}
		fmt.Printf("  %2d. %-24s  %12s  (%6.2f%%)  %s%s\n",
			seg.Index+1, seg.Name, output.FormatValue(seg.Value), seg.Percent, seg.Color, drill)
	}
	fmt.Printf("\n")

	// Warnings and Errors
	if len(jsonOutput.Warnings) > 0 || len(jsonOutput.Errors) > 0 {
		fmt.Printf("⚠️  DIAGNOSTICS\n")
		fmt.Printf("%s\n", light)

		if len(jsonOutput.Warnings) > 0 {
			fmt.Printf("Warnings:\n")
			for _, warning := range jsonOutput.Warnings {
				fmt.Printf("  • %s\n", warning.Message)
			}
		}

		if len(jsonOutput.Errors) > 0 {
			fmt.Printf("Errors:\n")
			for _, err := range jsonOutput.Errors {
				fmt.Printf("  • %s\n", err.Message)
			}
		}
		fmt.Printf("\n")
	}

	fmt.Printf("%s\n", heavy)
}

func centered(s string, width int) string {
	pad := (width - len([]rune(s))) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}

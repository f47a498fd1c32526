package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/ChristianF88/burstx/analysis"
	"github.com/ChristianF88/burstx/navigation"
	"github.com/ChristianF88/burstx/output"
	"github.com/ChristianF88/burstx/palette"
	"github.com/ChristianF88/burstx/tree"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"
)

const defaultHelp = "Enter: drill down, ↑↓: hover, Backspace/b: back, 1-9: breadcrumb, '/': search, 'r': reset, 'p': plot, 'q': quit"

// Options configure the TUI
type Options struct {
	Title     string
	DataFile  string
	PlotPath  string
	RootLabel string
	Palette   *palette.Palette
	Logger    *zap.Logger
}

// App represents the TUI application
type App struct {
	app           *tview.Application
	header        *tview.TextView
	search        *tview.InputField
	segments      *tview.List
	visualization *VisualizationView
	summary       *tview.TextView
	statusBar     *tview.TextView

	// Only touched on the tview event goroutine
	nav        *navigation.Navigator
	refreshing bool

	opts Options
	log  *zap.Logger
}

// NewApp creates a new TUI application positioned at the root of nodes
func NewApp(root []*tree.Node, opts Options) (*App, error) {
	a := &App{
		app:  tview.NewApplication(),
		opts: opts,
		log:  opts.Logger,
	}
	if a.log == nil {
		a.log = zap.NewNop()
	}
	if a.opts.Title == "" {
		a.opts.Title = "burstx"
	}

	nav, err := a.newNavigator(root)
	if err != nil {
		return nil, err
	}
	a.nav = nav

	a.setupUI()
	a.refresh()
	return a, nil
}

func (a *App) newNavigator(root []*tree.Node) (*navigation.Navigator, error) {
	return navigation.New(root,
		navigation.WithPalette(a.opts.Palette),
		navigation.WithRootLabel(a.opts.RootLabel),
		navigation.WithLogger(a.log),
	)
}

// setupUI initializes the user interface
func (a *App) setupUI() {
	a.header = tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)
	a.header.SetBorder(true).SetTitle(fmt.Sprintf(" %s ", a.opts.Title)).SetTitleAlign(tview.AlignCenter)

	a.search = tview.NewInputField().
		SetLabel("Search: ").
		SetFieldWidth(0)
	a.search.SetChangedFunc(func(text string) {
		if a.refreshing {
			return
		}
		a.dispatch(navigation.Event{Kind: navigation.EventSearch, Text: text})
	})
	a.search.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEscape {
			a.search.SetText("")
		}
		a.app.SetFocus(a.segments)
	})

	a.segments = tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)
	a.segments.SetBorder(true).SetTitle(" Segments ").SetTitleAlign(tview.AlignLeft)
	a.segments.SetChangedFunc(func(index int, _ string, _ string, _ rune) {
		if a.refreshing {
			return
		}
		a.hover(index)
	})
	a.segments.SetSelectedFunc(func(index int, _ string, _ string, _ rune) {
		a.dispatch(navigation.Event{Kind: navigation.EventClick, Index: index})
	})

	a.visualization = NewVisualizationView()

	a.summary = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	a.summary.SetBorder(true).SetTitle(" Summary ").SetTitleAlign(tview.AlignLeft)

	a.statusBar = tview.NewTextView().
		SetDynamicColors(true)
	a.statusBar.SetBorder(false)

	middle := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(a.segments, 0, 1, true).
		AddItem(a.visualization.GetView(), 0, 2, false)

	main := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.header, 3, 0, false).
		AddItem(a.search, 1, 0, false).
		AddItem(middle, 0, 1, true).
		AddItem(a.summary, 7, 0, false).
		AddItem(a.statusBar, 1, 0, false)

	a.app.SetInputCapture(a.handleKey)
	a.app.SetRoot(main, true).SetFocus(a.segments)
}

// handleKey implements the global key bindings. Keys typed into the search
// field are passed through untouched.
func (a *App) handleKey(event *tcell.EventKey) *tcell.EventKey {
	if a.app.GetFocus() == a.search {
		return event
	}

	switch event.Key() {
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		a.dispatch(navigation.Event{Kind: navigation.EventBack})
		return nil
	case tcell.KeyRune:
	default:
		return event
	}

	r := event.Rune()
	switch {
	case r == 'q' || r == 'Q':
		a.app.Stop()
		return nil
	case r == '/':
		a.app.SetFocus(a.search)
		a.setStatus("[yellow]Searching[white] | Enter/Esc: back to segments (Esc clears)")
		return nil
	case r == 'b' || r == 'B':
		a.dispatch(navigation.Event{Kind: navigation.EventBack})
		return nil
	case r == 'r' || r == 'R':
		a.dispatch(navigation.Event{Kind: navigation.EventReset})
		return nil
	case r == 'p' || r == 'P':
		a.plot()
		return nil
	case r >= '1' && r <= '9':
		a.dispatch(navigation.Event{Kind: navigation.EventJump, Index: int(r - '1')})
		return nil
	}
	return event
}

// dispatch applies ev and redraws everything
func (a *App) dispatch(ev navigation.Event) {
	if err := a.nav.Apply(ev); err != nil {
		a.log.Debug("event rejected", zap.String("kind", string(ev.Kind)), zap.Error(err))
		a.refresh()
		a.setStatus(fmt.Sprintf("[red]%s[white] | %s", tview.Escape(err.Error()), defaultHelp))
		return
	}
	a.refresh()
}

// hover highlights index without rebuilding the segment list
func (a *App) hover(index int) {
	a.nav.Hover(index)
	a.visualization.Render(a.nav)
	a.summary.SetText(summaryText(a.nav))
}

// refresh redraws all panels from the navigator
func (a *App) refresh() {
	a.refreshing = true
	defer func() { a.refreshing = false }()

	if a.search.GetText() != a.nav.Keyword() {
		a.search.SetText(a.nav.Keyword())
	}

	a.header.SetText(breadcrumbMarkup(a.nav.BreadcrumbNames()))

	frame := a.nav.Frame()
	a.segments.Clear()
	for i := range frame.Labels {
		a.segments.AddItem(segmentLabel(frame, i), "", 0, nil)
	}
	if idx, ok := a.nav.Highlighted(); ok {
		a.segments.SetCurrentItem(idx)
	} else if frame.Len() > 0 {
		// Clear left the cursor on the first segment
		a.nav.Hover(0)
	}
	a.segments.SetTitle(fmt.Sprintf(" %s ", a.nav.LevelName()))

	a.visualization.Render(a.nav)
	a.summary.SetText(summaryText(a.nav))
	a.updateStatusBar()
}

func (a *App) updateStatusBar() {
	if a.nav.Keyword() != "" {
		a.setStatus(fmt.Sprintf("[green]%s[white] | filter [yellow]%s[white] | %s",
			a.nav.LevelName(), tview.Escape(a.nav.Keyword()), defaultHelp))
		return
	}
	a.setStatus(fmt.Sprintf("[green]%s[white] | %s", a.nav.LevelName(), defaultHelp))
}

func (a *App) setStatus(text string) {
	a.statusBar.SetText(text)
}

// plot writes the current level as a sunburst HTML page
func (a *App) plot() {
	if a.opts.PlotPath == "" {
		a.setStatus("[yellow]No plot path configured (--plotPath)[white] | " + defaultHelp)
		return
	}

	err := output.PlotSunburst(a.nav.Frame().Nodes, output.ChartOptions{
		Title:    a.opts.Title,
		Subtitle: a.nav.BreadcrumbText(" > "),
		Palette:  a.opts.Palette,
		Depth:    a.nav.Depth(),
	}, a.opts.PlotPath)
	if err != nil {
		a.log.Error("plot failed", zap.String("path", a.opts.PlotPath), zap.Error(err))
		a.setStatus(fmt.Sprintf("[red]Plot failed: %s[white]", tview.Escape(err.Error())))
		return
	}
	a.setStatus(fmt.Sprintf("[green]Sunburst written to %s[white] | %s", tview.Escape(a.opts.PlotPath), defaultHelp))
}

// ApplyTree replaces the tree from another goroutine, e.g. a file watcher.
// The search keyword survives the reload; the drill-down path does not.
func (a *App) ApplyTree(root []*tree.Node) {
	a.app.QueueUpdateDraw(func() {
		a.applyTree(root)
	})
}

func (a *App) applyTree(root []*tree.Node) {
	nav, err := a.newNavigator(root)
	if err != nil {
		a.log.Error("reload rejected", zap.Error(err))
		a.setStatus(fmt.Sprintf("[red]Reload rejected: %s[white]", tview.Escape(err.Error())))
		return
	}
	if keyword := a.nav.Keyword(); keyword != "" {
		nav.Search(keyword)
	}
	a.nav = nav
	a.visualization.cache.Clear()
	a.refresh()
	a.setStatus(fmt.Sprintf("[green]Reloaded %s[white] (%s nodes) | %s",
		tview.Escape(a.opts.DataFile), output.FormatNumber(tree.Count(root)), defaultHelp))
}

// Run starts the TUI and blocks until the user quits or ctx is cancelled
func (a *App) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			a.app.Stop()
		case <-done:
		}
	}()

	return a.app.Run()
}

// breadcrumbMarkup renders the path with the current level emphasized
func breadcrumbMarkup(names []string) string {
	parts := make([]string, len(names))
	for i, name := range names {
		label := fmt.Sprintf("[dim]%d[-] %s", i+1, tview.Escape(name))
		if i == len(names)-1 {
			label = fmt.Sprintf("[dim]%d[-] [yellow::b]%s[-::-]", i+1, tview.Escape(name))
		}
		parts[i] = label
	}
	return strings.Join(parts, " [dim]>[-] ")
}

// segmentLabel is the list entry for segment i
func segmentLabel(frame analysis.Frame, i int) string {
	label := fmt.Sprintf("[%s]■[-] %s  %s (%.1f%%)",
		frame.Colors[i],
		tview.Escape(frame.Labels[i]),
		output.FormatValue(frame.Values[i]),
		frame.Percent(i))
	if tree.HasChildren(frame.Nodes[i]) {
		label += " ›"
	}
	return label
}

// summaryText describes the current level
func summaryText(nav *navigation.Navigator) string {
	s := nav.Summary()

	var b strings.Builder
	b.WriteString(fmt.Sprintf("[yellow]Level:[white]      %s\n", nav.LevelName()))
	b.WriteString(fmt.Sprintf("[yellow]Total:[white]      %s\n", output.FormatValue(s.Total)))
	b.WriteString(fmt.Sprintf("[yellow]Categories:[white] %s\n", output.FormatNumber(s.Count)))
	b.WriteString(fmt.Sprintf("[yellow]Largest:[white]    %s  [yellow]Average:[white] %s\n",
		output.FormatValue(s.Max), output.FormatValue(s.Average)))

	if selected := nav.Selected(); selected != nil {
		b.WriteString(fmt.Sprintf("[yellow]Clicked:[white]    %s", tview.Escape(selected.Name)))
	}
	return b.String()
}

package output

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ChristianF88/burstx/analysis"
	"github.com/ChristianF88/burstx/navigation"
	"github.com/ChristianF88/burstx/palette"
	"github.com/ChristianF88/burstx/testutil"
	"github.com/goccy/go-json"
)

func newNavigator(t testing.TB) *navigation.Navigator {
	t.Helper()
	nav, err := navigation.New(testutil.CompanySales())
	if err != nil {
		t.Fatalf("Failed to create navigator: %v", err)
	}
	return nav
}

func TestJSONOutput_ToJSON_RoundTrip(t *testing.T) {
	startTime := time.Now()
	out := NewJSONOutput("Company Sales", startTime)
	out.Metadata.DataFile = "/data/sales.json"

	nav := newNavigator(t)
	if _, err := nav.Click(0); err != nil {
		t.Fatalf("Click failed: %v", err)
	}
	nav.Hover(2)
	out.SetState(nav)
	out.AddWarning("filter", "keyword matched nothing", 0)

	// Serialize to JSON
	data, err := out.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error: %v", err)
	}

	// Deserialize back
	var restored JSONOutput
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}

	if restored.Metadata.Title != "Company Sales" {
		t.Errorf("Title = %q, want %q", restored.Metadata.Title, "Company Sales")
	}
	if restored.Metadata.TreeNodes != 12 {
		t.Errorf("TreeNodes = %d, want 12", restored.Metadata.TreeNodes)
	}
	if restored.Metadata.TreeDepth != 4 {
		t.Errorf("TreeDepth = %d, want 4", restored.Metadata.TreeDepth)
	}
	if got := strings.Join(restored.Navigation.Breadcrumbs, "/"); got != "Root/Company Sales" {
		t.Errorf("Breadcrumbs = %q", got)
	}
	if restored.Navigation.LevelName != "Level 2" {
		t.Errorf("LevelName = %q, want Level 2", restored.Navigation.LevelName)
	}
	if restored.Navigation.Selected != "Company Sales" {
		t.Errorf("Selected = %q, want Company Sales", restored.Navigation.Selected)
	}
	if restored.Navigation.Highlighted == nil || *restored.Navigation.Highlighted != 2 {
		t.Errorf("Highlighted = %v, want 2", restored.Navigation.Highlighted)
	}
	if restored.Summary.Total != 640 || restored.Summary.Count != 3 || restored.Summary.Max != 450 {
		t.Errorf("unexpected summary: %+v", restored.Summary)
	}
	if len(restored.Segments) != 3 {
		t.Fatalf("len(Segments) = %d, want 3", len(restored.Segments))
	}
	electronics := restored.Segments[0]
	if electronics.Name != "Electronics" || electronics.Value != 450 || !electronics.HasChildren || electronics.Children != 2 {
		t.Errorf("unexpected first segment: %+v", electronics)
	}
	if electronics.Color != palette.AssignColors(3, 1)[0] {
		t.Errorf("Color = %q, want depth-1 color", electronics.Color)
	}
	if len(restored.Warnings) != 1 || restored.Warnings[0].Type != "filter" {
		t.Errorf("unexpected warnings: %+v", restored.Warnings)
	}

	// Compact form decodes to the same document
	compact, err := out.ToCompactJSON()
	if err != nil {
		t.Fatalf("ToCompactJSON() error: %v", err)
	}
	if bytes.Contains(compact, []byte("\n")) {
		t.Error("compact JSON contains newlines")
	}
	var restoredCompact JSONOutput
	if err := json.Unmarshal(compact, &restoredCompact); err != nil {
		t.Fatalf("Unmarshal compact error: %v", err)
	}
	if restoredCompact.Summary != restored.Summary {
		t.Errorf("compact summary = %+v, want %+v", restoredCompact.Summary, restored.Summary)
	}
}

func TestJSONOutput_EmptyCollections(t *testing.T) {
	out := NewJSONOutput("empty", time.Now())
	data, err := out.ToCompactJSON()
	if err != nil {
		t.Fatalf("ToCompactJSON() error: %v", err)
	}
	for _, want := range []string{`"segments":[]`, `"warnings":[]`, `"errors":[]`, `"breadcrumbs":[]`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("expected %s in %s", want, data)
		}
	}
	if strings.Contains(string(data), "highlighted") {
		t.Errorf("highlighted should be omitted when unset: %s", data)
	}
}

func TestSegmentsZeroTotal(t *testing.T) {
	nav, err := navigation.New(testutil.ElectronicsFurniture())
	if err != nil {
		t.Fatalf("Failed to create navigator: %v", err)
	}
	nav.Search("nothing")
	if got := Segments(nav.Frame()); len(got) != 0 {
		t.Errorf("expected no segments, got %+v", got)
	}
}

func TestExportJSON(t *testing.T) {
	frame := analysis.BuildFrame(testutil.ElectronicsFurniture(), "", 0)

	data, err := ExportJSON(frame.ExportRows(), true)
	if err != nil {
		t.Fatalf("ExportJSON error: %v", err)
	}
	var rows []analysis.ExportRow
	if err := json.Unmarshal(data, &rows); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if len(rows) != 2 || rows[0].Name != "Electronics" || !rows[0].HasChildren || rows[1].HasChildren {
		t.Errorf("unexpected rows: %+v", rows)
	}

	empty, err := ExportJSON(nil, true)
	if err != nil {
		t.Fatalf("ExportJSON error: %v", err)
	}
	if string(empty) != "[]" {
		t.Errorf("ExportJSON(nil) = %s, want []", empty)
	}
}

func TestJSONOutput_AddWarning_Concurrent(t *testing.T) {
	out := NewJSONOutput("render", time.Now())

	const goroutines = 10
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			out.AddWarning("concurrent", fmt.Sprintf("warning from goroutine %d", id), id)
		}(i)
	}
	wg.Wait()

	if len(out.Warnings) != goroutines {
		t.Errorf("len(Warnings) = %d, want %d", len(out.Warnings), goroutines)
	}

	// Verify all goroutine IDs are represented
	seen := make(map[int]bool)
	for _, w := range out.Warnings {
		seen[w.Count] = true
	}
	for i := 0; i < goroutines; i++ {
		if !seen[i] {
			t.Errorf("missing warning from goroutine %d", i)
		}
	}
}

func TestJSONOutput_AddError_Concurrent(t *testing.T) {
	out := NewJSONOutput("render", time.Now())

	const goroutines = 10
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			out.AddError("concurrent", fmt.Sprintf("error from goroutine %d", id), id)
		}(i)
	}
	wg.Wait()

	if len(out.Errors) != goroutines {
		t.Errorf("len(Errors) = %d, want %d", len(out.Errors), goroutines)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		input int
		want  string
	}{
		{0, "0"},
		{1, "1"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-1234, "-1,234"},
		{math.MaxInt64, "9,223,372,036,854,775,807"},
		{math.MinInt64, "-9,223,372,036,854,775,808"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.input), func(t *testing.T) {
			got := FormatNumber(tt.input)
			if got != tt.want {
				t.Errorf("FormatNumber(%d) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{0, "0"},
		{120, "120"},
		{1234.5, "1,234.5"},
		{68.9655, "68.97"},
		{0.05, "0.05"},
		{-2.5, "-2.5"},
		{999.999, "1,000"},
		{-0.001, "0"},
		{9876543210.125, "9,876,543,210.13"},
		{1e17, "100,000,000,000,000,000"},
		{1e20, "100,000,000,000,000,000,000"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.input), func(t *testing.T) {
			if got := FormatValue(tt.input); got != tt.want {
				t.Errorf("FormatValue(%v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSunburstData(t *testing.T) {
	root := testutil.ElectronicsFurniture()
	data := SunburstData(root, nil, 0)

	if len(data) != 2 {
		t.Fatalf("len(data) = %d, want 2", len(data))
	}
	if data[0].Name != "Electronics" || data[0].Value != 200 {
		t.Errorf("unexpected first node: %s=%v", data[0].Name, data[0].Value)
	}
	if data[0].ItemStyle.Color != "#3b82f6" {
		t.Errorf("root ring color = %q, want #3b82f6", data[0].ItemStyle.Color)
	}
	if data[0].Emphasis.ItemStyle.Color != "#4f96ff" {
		t.Errorf("hover color = %q, want #4f96ff", data[0].Emphasis.ItemStyle.Color)
	}
	if len(data[0].Children) != 2 {
		t.Fatalf("len(children) = %d, want 2", len(data[0].Children))
	}
	// inner ring uses the next depth
	if got := data[0].Children[0].ItemStyle.Color; got != "#539aff" {
		t.Errorf("child color = %q, want #539aff", got)
	}
	if data[1].Children != nil {
		t.Errorf("leaf should have no children")
	}
}

func TestSunburstDataMatchesFrameColors(t *testing.T) {
	level := testutil.CompanySales()[0].Children
	frame := analysis.BuildFrame(level, "", 1)
	data := SunburstData(frame.Nodes, palette.Default(), 1)

	for i := range data {
		if data[i].ItemStyle.Color != frame.Colors[i] {
			t.Errorf("segment %d color = %q, frame has %q", i, data[i].ItemStyle.Color, frame.Colors[i])
		}
		if data[i].Value != frame.Values[i] {
			t.Errorf("segment %d value = %v, frame has %v", i, data[i].Value, frame.Values[i])
		}
	}
}

func TestRenderSunburst(t *testing.T) {
	var buf bytes.Buffer
	err := RenderSunburst(&buf, testutil.CompanySales(), ChartOptions{Title: "Company Sales", Subtitle: "Root"})
	if err != nil {
		t.Fatalf("RenderSunburst error: %v", err)
	}
	html := buf.String()
	for _, want := range []string{"<html", "Company Sales", "Smartphones", "sunburst"} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered page missing %q", want)
		}
	}
}

func TestPlotSunburst(t *testing.T) {
	path := testutil.TempFilePath(t, "sunburst-*.html")
	if err := PlotSunburst(testutil.ElectronicsFurniture(), ChartOptions{}, path); err != nil {
		t.Fatalf("PlotSunburst error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read plot: %v", err)
	}
	if !strings.Contains(string(data), "Laptops") {
		t.Error("plot does not contain the leaf names")
	}
}

func TestPlotSunburstBadPath(t *testing.T) {
	err := PlotSunburst(testutil.ElectronicsFurniture(), ChartOptions{}, "/nonexistent-dir/x/plot.html")
	if err == nil {
		t.Fatal("expected error for unwritable path")
	}
}

func BenchmarkFormatNumber(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		FormatNumber(1234567)
	}
}

func BenchmarkToJSON(b *testing.B) {
	out := NewJSONOutput("bench", time.Now())
	out.SetState(newNavigator(b))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := out.ToJSON(); err != nil {
			b.Fatal(err)
		}
	}
}

package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ChristianF88/burstx/analysis"
	"github.com/ChristianF88/burstx/navigation"
	"github.com/ChristianF88/burstx/output"
	"github.com/ChristianF88/burstx/testutil"
	"github.com/goccy/go-json"
)

// captureStdout runs fn with os.Stdout redirected and returns what it wrote
func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	os.Stdout = w

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		io.Copy(&buf, r)
		done <- buf.String()
	}()

	runErr := fn()

	w.Close()
	os.Stdout = oldStdout
	return <-done, runErr
}

func writeSalesFile(t *testing.T) string {
	t.Helper()
	return testutil.WriteTempFile(t, "sales.json", testutil.CompanySalesJSON)
}

func TestParseDate(t *testing.T) {
	got := parseDate("2025-03-01T10:00:00Z")
	want := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("parseDate = %v, want %v", got, want)
	}

	before := time.Now()
	if got := parseDate(""); got.Before(before) {
		t.Errorf("parseDate of an empty date should fall back to now, got %v", got)
	}
}

func TestRenderCommandValidation(t *testing.T) {
	dataFile := writeSalesFile(t)
	configFile := testutil.WriteTempFile(t, "burstx.toml", "[global]\ndataFile = \""+filepath.ToSlash(dataFile)+"\"\n")

	tests := []struct {
		name        string
		args        []string
		expectError bool
		errorMatch  string
	}{
		{
			name:        "Valid render command",
			args:        []string{"burstx", "render", "--data", dataFile},
			expectError: false,
		},
		{
			name:        "Valid render with path",
			args:        []string{"burstx", "render", "--data", dataFile, "--path", "Company Sales", "--path", "Electronics"},
			expectError: false,
		},
		{
			name:        "Missing data file flag",
			args:        []string{"burstx", "render"},
			expectError: true,
			errorMatch:  "data is required",
		},
		{
			name:        "Nonexistent data file",
			args:        []string{"burstx", "render", "--data", filepath.Join(t.TempDir(), "missing.json")},
			expectError: true,
			errorMatch:  "data file does not exist",
		},
		{
			name:        "Unknown path element",
			args:        []string{"burstx", "render", "--data", dataFile, "--path", "Toys"},
			expectError: true,
			errorMatch:  `no segment named "Toys"`,
		},
		{
			name:        "Path through a leaf",
			args:        []string{"burstx", "render", "--data", dataFile, "--path", "Company Sales", "--path", "Furniture"},
			expectError: true,
			errorMatch:  "is a leaf",
		},
		{
			name:        "Plot directory missing",
			args:        []string{"burstx", "render", "--data", dataFile, "--plotPath", filepath.Join(t.TempDir(), "nope", "plot.html")},
			expectError: true,
			errorMatch:  "plot directory does not exist",
		},
		{
			name:        "Config with allowed flags",
			args:        []string{"burstx", "render", "--config", configFile, "--compact"},
			expectError: false,
		},
		{
			name:        "Config with disallowed flag",
			args:        []string{"burstx", "render", "--config", configFile, "--search", "tablet"},
			expectError: true,
			errorMatch:  "when using --config",
		},
		{
			name:        "Unsupported data format",
			args:        []string{"burstx", "render", "--data", testutil.WriteTempFile(t, "sales.csv", "a,b")},
			expectError: true,
			errorMatch:  "unsupported",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := captureStdout(t, func() error {
				return App.Run(tt.args)
			})

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got none")
				} else if tt.errorMatch != "" && !strings.Contains(err.Error(), tt.errorMatch) {
					t.Errorf("Expected error containing %q, got %q", tt.errorMatch, err.Error())
				}
			} else if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestRenderJSONOutput(t *testing.T) {
	dataFile := writeSalesFile(t)

	out, err := captureStdout(t, func() error {
		return App.Run([]string{"burstx", "render", "--data", dataFile, "--title", "Sales", "--path", "Company Sales", "--compact"})
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	var result output.JSONOutput
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("Failed to decode output %q: %v", out, err)
	}
	if result.Metadata.Title != "Sales" {
		t.Errorf("Expected title Sales, got %q", result.Metadata.Title)
	}
	if got := strings.Join(result.Navigation.Breadcrumbs, "/"); got != "Root/Company Sales" {
		t.Errorf("Unexpected breadcrumbs %q", got)
	}
	if len(result.Segments) != 3 || result.Segments[0].Name != "Electronics" {
		t.Errorf("Unexpected segments: %+v", result.Segments)
	}
	if result.Summary.Total != 640 {
		t.Errorf("Expected total 640, got %v", result.Summary.Total)
	}
}

func TestRenderSearchWithoutMatches(t *testing.T) {
	dataFile := writeSalesFile(t)

	out, err := captureStdout(t, func() error {
		return App.Run([]string{"burstx", "render", "--data", dataFile, "--search", "zzz", "--compact"})
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	var result output.JSONOutput
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("Failed to decode output: %v", err)
	}
	if len(result.Segments) != 0 {
		t.Errorf("Expected no segments, got %d", len(result.Segments))
	}
	if len(result.Warnings) != 1 || result.Warnings[0].Type != "filter" {
		t.Errorf("Expected a filter warning, got %+v", result.Warnings)
	}
}

func TestRenderExport(t *testing.T) {
	dataFile := writeSalesFile(t)

	out, err := captureStdout(t, func() error {
		return App.Run([]string{"burstx", "render", "--data", dataFile, "--path", "Company Sales", "--export", "--compact"})
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	var rows []analysis.ExportRow
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("Failed to decode export %q: %v", out, err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}
	if rows[2].Name != "Furniture" || rows[2].HasChildren {
		t.Errorf("Unexpected last row: %+v", rows[2])
	}

	plain, err := captureStdout(t, func() error {
		return App.Run([]string{"burstx", "render", "--data", dataFile, "--export", "--plain"})
	})
	if err != nil {
		t.Fatalf("plain export failed: %v", err)
	}
	if !strings.Contains(plain, "NAME") || !strings.Contains(plain, "Company Sales") || !strings.Contains(plain, "100.00%") {
		t.Errorf("Unexpected plain export:\n%s", plain)
	}
}

func TestRenderPlain(t *testing.T) {
	dataFile := writeSalesFile(t)

	out, err := captureStdout(t, func() error {
		return App.Run([]string{"burstx", "render", "--data", dataFile, "--path", "Company Sales", "--search", "tablet", "--plain"})
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	for _, want := range []string{"LOCATION", "Root > Company Sales", "Filter:          tablet", "SUMMARY", "SEGMENTS (1)", "Electronics"} {
		if !strings.Contains(out, want) {
			t.Errorf("Plain output should contain %q:\n%s", want, out)
		}
	}
}

func TestRenderPlot(t *testing.T) {
	dataFile := writeSalesFile(t)
	plotPath := filepath.Join(t.TempDir(), "sunburst.html")

	out, err := captureStdout(t, func() error {
		return App.Run([]string{"burstx", "render", "--data", dataFile, "--plotPath", plotPath, "--compact"})
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	data, err := os.ReadFile(plotPath)
	if err != nil {
		t.Fatalf("Failed to read plot: %v", err)
	}
	if !strings.Contains(string(data), "Company Sales") {
		t.Error("Plot should contain the root segment")
	}
	if !strings.Contains(out, "Sunburst generated") {
		t.Errorf("Output should mention the plot, got %s", out)
	}
}

func TestRenderConfigMode(t *testing.T) {
	dataFile := testutil.WriteTempFile(t, "sales.yaml", `
- name: Electronics
  children:
    - {name: Laptops, value: 120}
    - {name: Desktops, value: 80}
- name: Furniture
  value: 90
`)
	configFile := testutil.WriteTempFile(t, "burstx.toml", `
[global]
dataFile = "`+filepath.ToSlash(dataFile)+`"
title = "Shop"
rootLabel = "All"

[palette]
colors = ["#101010"]

[render]
path = ["Electronics"]
`)

	out, err := captureStdout(t, func() error {
		return App.Run([]string{"burstx", "render", "--config", configFile, "--compact"})
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	var result output.JSONOutput
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("Failed to decode output: %v", err)
	}
	if result.Metadata.Title != "Shop" {
		t.Errorf("Expected title Shop, got %q", result.Metadata.Title)
	}
	if got := strings.Join(result.Navigation.Breadcrumbs, "/"); got != "All/Electronics" {
		t.Errorf("Unexpected breadcrumbs %q", got)
	}
	if len(result.Segments) != 2 || result.Segments[0].Color != "#282828" {
		t.Errorf("Expected configured depth-1 color #282828, got %+v", result.Segments)
	}
}

func TestInteractiveCommandValidation(t *testing.T) {
	dataFile := writeSalesFile(t)
	configFile := testutil.WriteTempFile(t, "burstx.toml", "[global]\ndataFile = \""+filepath.ToSlash(dataFile)+"\"\n")

	tests := []struct {
		name       string
		args       []string
		errorMatch string
	}{
		{"tui without data", []string{"burstx", "tui"}, "data is required"},
		{"tui missing file", []string{"burstx", "tui", "--data", filepath.Join(t.TempDir(), "x.json")}, "data file does not exist"},
		{"tui config with flags", []string{"burstx", "tui", "--config", configFile, "--watch"}, "when using --config"},
		{"tui bad plot dir", []string{"burstx", "tui", "--data", dataFile, "--plotPath", filepath.Join(t.TempDir(), "a", "b.html")}, "plot directory does not exist"},
		{"serve without data", []string{"burstx", "serve"}, "data is required"},
		{"serve config with flags", []string{"burstx", "serve", "--config", configFile, "--addr", ":9999"}, "when using --config"},
		{"serve missing config", []string{"burstx", "serve", "--config", filepath.Join(t.TempDir(), "none.toml")}, "failed to load config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := App.Run(tt.args)
			if err == nil {
				t.Fatalf("Expected error containing %q", tt.errorMatch)
			}
			if !strings.Contains(err.Error(), tt.errorMatch) {
				t.Errorf("Expected error containing %q, got %q", tt.errorMatch, err.Error())
			}
		})
	}
}

func TestServeConfigValidation(t *testing.T) {
	dataFile := writeSalesFile(t)
	configFile := testutil.WriteTempFile(t, "burstx.toml", "[global]\ndataFile = \""+filepath.ToSlash(dataFile)+"\"\n\n[serve]\ndebounce = \"soon\"\n")

	err := App.Run([]string{"burstx", "serve", "--config", configFile})
	if err == nil || !strings.Contains(err.Error(), "invalid serve configuration") {
		t.Errorf("Expected invalid serve configuration error, got %v", err)
	}
}

func TestDrillPath(t *testing.T) {
	nav, err := navigation.New(testutil.CompanySales())
	if err != nil {
		t.Fatalf("Failed to create navigator: %v", err)
	}

	if err := drillPath(nav, nil); err != nil {
		t.Errorf("Empty path should be a no-op, got %v", err)
	}
	if err := drillPath(nav, []string{"Company Sales", "Electronics", "Computers"}); err != nil {
		t.Fatalf("drillPath failed: %v", err)
	}
	if got := nav.BreadcrumbText("/"); got != "Root/Company Sales/Electronics/Computers" {
		t.Errorf("Unexpected breadcrumbs %q", got)
	}

	err = drillPath(nav, []string{"Laptops"})
	if err == nil || !strings.Contains(err.Error(), "is a leaf") {
		t.Errorf("Expected leaf error, got %v", err)
	}
}

func TestValidatePlotPath(t *testing.T) {
	if err := validatePlotPath(""); err != nil {
		t.Errorf("Empty plot path should be valid, got %v", err)
	}
	if err := validatePlotPath("plot.html"); err != nil {
		t.Errorf("Plot path in the working directory should be valid, got %v", err)
	}
	if err := validatePlotPath(filepath.Join(t.TempDir(), "missing", "plot.html")); err == nil {
		t.Error("Expected error for missing plot directory")
	}
}

func TestCentered(t *testing.T) {
	if got := centered("ab", 6); got != "  ab" {
		t.Errorf("centered = %q", got)
	}
	if got := centered("toolong", 3); got != "toolong" {
		t.Errorf("centered should not truncate, got %q", got)
	}
}

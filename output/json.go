package output

import (
	"sync"
	"time"

	"github.com/ChristianF88/burstx/analysis"
	"github.com/ChristianF88/burstx/navigation"
	"github.com/ChristianF88/burstx/tree"
	"github.com/ChristianF88/burstx/version"
	"github.com/goccy/go-json"
)

// JSONOutput is the document describing one navigator state
type JSONOutput struct {
	Metadata   Metadata         `json:"metadata"`
	Navigation Navigation       `json:"navigation"`
	Summary    analysis.Summary `json:"summary"`
	Segments   []Segment        `json:"segments"`
	Warnings   []Warning        `json:"warnings"`
	Errors     []Error          `json:"errors"`

	// Mutex for thread-safe warning/error appending
	mu sync.Mutex `json:"-"`
}

// Metadata contains information about the run
type Metadata struct {
	GeneratedAt time.Time `json:"generated_at"`
	Title       string    `json:"title"`
	DataFile    string    `json:"data_file,omitempty"`
	SessionID   string    `json:"session_id,omitempty"`
	Version     string    `json:"version"`
	DurationMS  int64     `json:"duration_ms"`
	TreeNodes   int       `json:"tree_nodes"`
	TreeDepth   int       `json:"tree_depth"`
}

// Navigation describes where in the tree the view is
type Navigation struct {
	Breadcrumbs []string `json:"breadcrumbs"`
	Depth       int      `json:"depth"`
	LevelName   string   `json:"level_name"`
	Keyword     string   `json:"keyword,omitempty"`
	Selected    string   `json:"selected,omitempty"`
	Highlighted *int     `json:"highlighted,omitempty"`
}

// Segment is one slice of the current ring
type Segment struct {
	Index       int     `json:"index"`
	Name        string  `json:"name"`
	Value       float64 `json:"value"`
	Percent     float64 `json:"percent"`
	Color       string  `json:"color"`
	HoverColor  string  `json:"hover_color"`
	HasChildren bool    `json:"has_children"`
	Children    int     `json:"children,omitempty"`
}

// Warning represents a warning message
type Warning struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

// Error represents an error message
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

// NewJSONOutput creates a new JSONOutput with default metadata
func NewJSONOutput(title string, startTime time.Time) *JSONOutput {
	return &JSONOutput{
		Metadata: Metadata{
			GeneratedAt: time.Now().UTC(),
			Title:       title,
			Version:     version.Version,
			DurationMS:  time.Since(startTime).Milliseconds(),
		},
		Navigation: Navigation{
			Breadcrumbs: []string{},
		},
		Segments: []Segment{},
		Warnings: []Warning{},
		Errors:   []Error{},
	}
}

// SetState fills the navigation, summary and segment sections from nav
func (j *JSONOutput) SetState(nav *navigation.Navigator) {
	root := nav.Root()
	j.Metadata.TreeNodes = tree.Count(root)
	j.Metadata.TreeDepth = tree.MaxDepth(root)

	j.Navigation = Navigation{
		Breadcrumbs: nav.BreadcrumbNames(),
		Depth:       nav.Depth(),
		LevelName:   nav.LevelName(),
		Keyword:     nav.Keyword(),
	}
	if selected := nav.Selected(); selected != nil {
		j.Navigation.Selected = selected.Name
	}
	if idx, ok := nav.Highlighted(); ok {
		j.Navigation.Highlighted = &idx
	}

	frame := nav.Frame()
	j.Summary = frame.Summary()
	j.Segments = Segments(frame)
}

// Segments converts a frame into its segment list
func Segments(frame analysis.Frame) []Segment {
	segments := make([]Segment, frame.Len())
	for i, node := range frame.Nodes {
		segments[i] = Segment{
			Index:       i,
			Name:        frame.Labels[i],
			Value:       frame.Values[i],
			Percent:     frame.Percent(i),
			Color:       frame.Colors[i],
			HoverColor:  frame.HoverColors[i],
			HasChildren: tree.HasChildren(node),
			Children:    len(node.Children),
		}
	}
	return segments
}

// ToJSON converts the output to pretty-printed JSON
func (j *JSONOutput) ToJSON() ([]byte, error) {
	return json.MarshalIndent(j, "", "  ")
}

// ToCompactJSON converts the output to compact JSON
func (j *JSONOutput) ToCompactJSON() ([]byte, error) {
	return json.Marshal(j)
}

// AddWarning adds a warning to the output (thread-safe)
func (j *JSONOutput) AddWarning(warningType, message string, count int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Warnings = append(j.Warnings, Warning{
		Type:    warningType,
		Message: message,
		Count:   count,
	})
}

// AddError adds an error to the output (thread-safe)
func (j *JSONOutput) AddError(errorType, message string, count int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Errors = append(j.Errors, Error{
		Type:    errorType,
		Message: message,
		Count:   count,
	})
}

// UpdateDuration updates the duration in metadata
func (j *JSONOutput) UpdateDuration(startTime time.Time) {
	j.Metadata.DurationMS = time.Since(startTime).Milliseconds()
}

// ExportJSON encodes export rows as a JSON array
func ExportJSON(rows []analysis.ExportRow, compact bool) ([]byte, error) {
	if rows == nil {
		rows = []analysis.ExportRow{}
	}
	if compact {
		return json.Marshal(rows)
	}
	return json.MarshalIndent(rows, "", "  ")
}

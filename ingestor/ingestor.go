// Package ingestor loads value trees from data files.
package ingestor

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ChristianF88/burstx/tree"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

type Format uint8

const (
	JSON Format = iota
	YAML
	TOML
	UNKNOWN
)

var ErrUnsupportedFormat = errors.New("unsupported data format")

func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case YAML:
		return "yaml"
	case TOML:
		return "toml"
	default:
		return "unknown"
	}
}

// ParseFormat maps a format name or file extension (with or without the
// leading dot) to a Format.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return JSON
	case "yaml", "yml":
		return YAML
	case "toml":
		return TOML
	default:
		return UNKNOWN
	}
}

// FormatOf derives the format from the file extension of path.
func FormatOf(path string) (Format, error) {
	f := ParseFormat(filepath.Ext(path))
	if f == UNKNOWN {
		return UNKNOWN, fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
	return f, nil
}

// document is the object form of a data file: {"nodes": [...]}.
type document struct {
	Nodes []*tree.Node `json:"nodes" yaml:"nodes" toml:"nodes"`
}

// Load reads, decodes and validates the tree stored in path.
func Load(path string) ([]*tree.Node, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	nodes, err := Decode(format, data)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nodes, nil
}

// Decode parses data in the given format and validates the resulting tree.
// JSON and YAML accept a top-level array of nodes or a document object with a
// "nodes" array; TOML needs the document form ([[nodes]] tables).
func Decode(format Format, data []byte) ([]*tree.Node, error) {
	var (
		nodes []*tree.Node
		err   error
	)
	switch format {
	case JSON:
		nodes, err = decodeJSON(data)
	case YAML:
		nodes, err = decodeYAML(data)
	case TOML:
		nodes, err = decodeTOML(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%s decode error: %w", format, err)
	}
	if nodes == nil {
		nodes = []*tree.Node{}
	}
	if err := tree.Validate(nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

func decodeJSON(data []byte) ([]*tree.Node, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var nodes []*tree.Node
		if err := json.Unmarshal(trimmed, &nodes); err != nil {
			return nil, err
		}
		return nodes, nil
	}
	var doc document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, err
	}
	return doc.Nodes, nil
}

func decodeYAML(data []byte) ([]*tree.Node, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, nil
	}

	content := root.Content[0]
	switch content.Kind {
	case yaml.SequenceNode:
		var nodes []*tree.Node
		if err := content.Decode(&nodes); err != nil {
			return nil, err
		}
		return nodes, nil
	case yaml.MappingNode:
		var doc document
		if err := content.Decode(&doc); err != nil {
			return nil, err
		}
		return doc.Nodes, nil
	default:
		return nil, fmt.Errorf("line %d: expected a list of nodes or a mapping with a nodes key", content.Line)
	}
}

func decodeTOML(data []byte) ([]*tree.Node, error) {
	var doc document
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return doc.Nodes, nil
}

package main

import (
	"fmt"
	"testing"
	"time"

	"github.com/ChristianF88/burstx/analysis"
	"github.com/ChristianF88/burstx/ingestor"
	"github.com/ChristianF88/burstx/navigation"
	"github.com/ChristianF88/burstx/output"
	"github.com/ChristianF88/burstx/testutil"
	"github.com/ChristianF88/burstx/tree"
	"github.com/goccy/go-json"
)

// pipelineSizes are (fanout, depth) pairs; 8^5 is ~37K nodes, 20^4 ~168K
var pipelineSizes = [][2]int{{8, 3}, {8, 5}, {20, 4}}

func encodeTree(b *testing.B, nodes []*tree.Node) []byte {
	b.Helper()
	data, err := json.Marshal(nodes)
	if err != nil {
		b.Fatal(err)
	}
	return data
}

// BenchmarkFullPipelineProfile profiles the complete render pipeline:
// decode data → validate → navigator → drill/search → JSON document
func BenchmarkFullPipelineProfile(b *testing.B) {
	for _, size := range pipelineSizes {
		nodes := testutil.GenerateTree(size[0], size[1])
		data := encodeTree(b, nodes)

		b.Run(fmt.Sprintf("fanout_%d_depth_%d", size[0], size[1]), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(data)))

			for i := 0; i < b.N; i++ {
				// Phase 1: Decode and validate
				root, err := ingestor.Decode(ingestor.JSON, data)
				if err != nil {
					b.Fatal(err)
				}

				// Phase 2: Navigator (builds the root frame)
				nav, err := navigation.New(root)
				if err != nil {
					b.Fatal(err)
				}

				// Phase 3: Drill down and filter
				if _, err := nav.Click(0); err != nil {
					b.Fatal(err)
				}
				nav.Search("1")

				// Phase 4: Output document
				result := output.NewJSONOutput("bench", time.Now())
				result.SetState(nav)
				if _, err := result.ToCompactJSON(); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkDecodeOnly isolates decoding and validation cost
func BenchmarkDecodeOnly(b *testing.B) {
	data := encodeTree(b, testutil.GenerateTree(8, 5))

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := ingestor.Decode(ingestor.JSON, data); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkFilterOnly isolates keyword filtering over the whole tree
func BenchmarkFilterOnly(b *testing.B) {
	root := testutil.GenerateTree(8, 5)

	for _, keyword := range []string{"n0.0.0", "7", "zzz"} {
		b.Run(keyword, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = analysis.FilterByKeyword(root, keyword)
			}
		})
	}
}

// BenchmarkAggregateOnly isolates the recursive value sum
func BenchmarkAggregateOnly(b *testing.B) {
	root := testutil.GenerateTree(20, 4)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		var total float64
		for _, node := range root {
			total += tree.Aggregate(node)
		}
		_ = total
	}
}

// TestPipelineTotals checks that the generated tree survives the full
// pipeline with its totals intact
func TestPipelineTotals(t *testing.T) {
	nodes := testutil.GenerateTree(3, 3)
	data, err := json.Marshal(nodes)
	if err != nil {
		t.Fatalf("Failed to encode tree: %v", err)
	}

	root, err := ingestor.Decode(ingestor.JSON, data)
	if err != nil {
		t.Fatalf("Failed to decode tree: %v", err)
	}
	if got := tree.Count(root); got != 3+9+27 {
		t.Errorf("Expected 39 nodes, got %d", got)
	}

	nav, err := navigation.New(root)
	if err != nil {
		t.Fatalf("Failed to create navigator: %v", err)
	}
	// Each of the 3 top-level branches holds 3 branches of leaves worth 3, 6 and 9
	if total := nav.Frame().Total(); total != 3*3*18 {
		t.Errorf("Expected total 162, got %v", total)
	}
	if _, err := nav.Click(0); err != nil {
		t.Fatalf("Click failed: %v", err)
	}
	if total := nav.Frame().Total(); total != 54 {
		t.Errorf("Expected drilled total 54, got %v", total)
	}
}

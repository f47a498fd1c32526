package tui

import (
	"fmt"
	"sync"

	"github.com/ChristianF88/burstx/navigation"
)

// maxCachedRenders bounds the cache; it is emptied when full
const maxCachedRenders = 256

// RenderKey identifies one rendering of a ring
type RenderKey struct {
	Level     string // identity of the level slice plus its depth
	Keyword   string
	Highlight int
}

// KeyFor derives the render key of the navigator's current view
func KeyFor(nav *navigation.Navigator) RenderKey {
	highlight := -1
	if idx, ok := nav.Highlighted(); ok {
		highlight = idx
	}
	return RenderKey{
		Level:     fmt.Sprintf("%d:%p", nav.Depth(), nav.Level()),
		Keyword:   nav.Keyword(),
		Highlight: highlight,
	}
}

// VisualizationCache holds rendered ring text so that moving back and forth
// between levels does not re-render them
type VisualizationCache struct {
	text map[RenderKey]string

	// Bumped on every Clear
	Version int

	mu sync.RWMutex
}

// NewVisualizationCache creates an empty cache
func NewVisualizationCache() *VisualizationCache {
	return &VisualizationCache{
		text: make(map[RenderKey]string),
	}
}

// Get returns the cached text for key
func (vc *VisualizationCache) Get(key RenderKey) (string, bool) {
	vc.mu.RLock()
	defer vc.mu.RUnlock()

	text, ok := vc.text[key]
	return text, ok
}

// Put stores text for key
func (vc *VisualizationCache) Put(key RenderKey, text string) {
	vc.mu.Lock()
	defer vc.mu.Unlock()

	if len(vc.text) >= maxCachedRenders {
		vc.text = make(map[RenderKey]string)
	}
	vc.text[key] = text
}

// Clear drops all cached renders. Called when the tree is replaced.
func (vc *VisualizationCache) Clear() {
	vc.mu.Lock()
	defer vc.mu.Unlock()

	vc.text = make(map[RenderKey]string)
	vc.Version++
}

// GetCacheSize returns the number of cached renders
func (vc *VisualizationCache) GetCacheSize() int {
	vc.mu.RLock()
	defer vc.mu.RUnlock()

	return len(vc.text)
}

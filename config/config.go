package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ChristianF88/burstx/navigation"
	"github.com/ChristianF88/burstx/palette"
)

const (
	DefaultAddr     = ":8080"
	DefaultTitle    = "burstx"
	DefaultDebounce = 200 * time.Millisecond
)

type GlobalConfig struct {
	DataFile  string `toml:"dataFile"`
	Title     string `toml:"title"`
	RootLabel string `toml:"rootLabel"`
}

// PaletteConfig overrides the default colors. Unset steps keep their
// defaults; an explicit 0 disables the shift.
type PaletteConfig struct {
	Colors        []string `toml:"colors"`
	DepthStep     *int     `toml:"depthStep"`
	MaxDepthShift *int     `toml:"maxDepthShift"`
	HoverStep     *int     `toml:"hoverStep"`
}

type RenderConfig struct {
	PlotPath string   `toml:"plotPath"`
	Search   string   `toml:"search"`
	Path     []string `toml:"path"`
}

type TUIConfig struct {
	PlotPath string `toml:"plotPath"`
	Watch    bool   `toml:"watch"`
}

type ServeConfig struct {
	Addr     string `toml:"addr"`
	Watch    bool   `toml:"watch"`
	Debounce string `toml:"debounce"`
}

type Config struct {
	Global  *GlobalConfig  `toml:"global"`
	Palette *PaletteConfig `toml:"palette"`
	Render  *RenderConfig  `toml:"render"`
	TUI     *TUIConfig     `toml:"tui"`
	Serve   *ServeConfig   `toml:"serve"`
}

func LoadConfig(configPath string) (*Config, error) {
	configData, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	md, err := toml.Decode(string(configData), config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}

	if config.Global == nil {
		config.Global = &GlobalConfig{}
	}
	if config.Palette == nil {
		config.Palette = &PaletteConfig{}
	}
	if config.Render == nil {
		config.Render = &RenderConfig{}
	}
	if config.TUI == nil {
		config.TUI = &TUIConfig{}
	}
	if config.Serve == nil {
		config.Serve = &ServeConfig{}
	}

	return config, nil
}

func (c *Config) GetTitle() string {
	if c.Global != nil && c.Global.Title != "" {
		return c.Global.Title
	}
	return DefaultTitle
}

func (c *Config) GetRootLabel() string {
	if c.Global != nil && c.Global.RootLabel != "" {
		return c.Global.RootLabel
	}
	return navigation.DefaultRootLabel
}

func (c *Config) GetAddr() string {
	if c.Serve != nil && c.Serve.Addr != "" {
		return c.Serve.Addr
	}
	return DefaultAddr
}

func (c *Config) GetDebounce() (time.Duration, error) {
	if c.Serve == nil || c.Serve.Debounce == "" {
		return DefaultDebounce, nil
	}
	d, err := time.ParseDuration(c.Serve.Debounce)
	if err != nil {
		return 0, fmt.Errorf("invalid debounce %q: %w", c.Serve.Debounce, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("debounce must not be negative: %s", c.Serve.Debounce)
	}
	return d, nil
}

// BuildPalette returns the configured palette, or the default one when the
// palette section is absent or empty.
func (c *Config) BuildPalette() (*palette.Palette, error) {
	p := c.Palette
	if p == nil {
		return palette.Default(), nil
	}

	colors := p.Colors
	if len(colors) == 0 {
		colors = palette.DefaultColors
	}
	depthStep := palette.DefaultDepthStep
	if p.DepthStep != nil {
		depthStep = *p.DepthStep
	}
	maxShift := palette.DefaultMaxDepthShift
	if p.MaxDepthShift != nil {
		maxShift = *p.MaxDepthShift
	}
	hoverStep := palette.DefaultHoverStep
	if p.HoverStep != nil {
		hoverStep = *p.HoverStep
	}
	return palette.New(colors, depthStep, maxShift, hoverStep)
}

func (c *Config) validateDataFile(mode string) error {
	if c.Global == nil {
		return fmt.Errorf("global configuration section is required for %s mode", mode)
	}
	if c.Global.DataFile == "" {
		return fmt.Errorf("dataFile is required in global configuration for %s mode", mode)
	}
	if _, err := os.Stat(c.Global.DataFile); os.IsNotExist(err) {
		return fmt.Errorf("data file does not exist: %s", c.Global.DataFile)
	}
	return nil
}

func (c *Config) validatePalette() error {
	if _, err := c.BuildPalette(); err != nil {
		return fmt.Errorf("invalid palette configuration: %w", err)
	}
	return nil
}

func (c *Config) ValidateRender() error {
	if err := c.validateDataFile("render"); err != nil {
		return err
	}
	if c.Render != nil {
		for i, name := range c.Render.Path {
			if strings.TrimSpace(name) == "" {
				return fmt.Errorf("path entry %d is empty in render configuration", i)
			}
		}
	}
	// PlotPath is optional
	return c.validatePalette()
}

func (c *Config) ValidateTUI() error {
	if err := c.validateDataFile("tui"); err != nil {
		return err
	}
	return c.validatePalette()
}

func (c *Config) ValidateServe() error {
	if err := c.validateDataFile("serve"); err != nil {
		return err
	}
	if _, err := c.GetDebounce(); err != nil {
		return err
	}
	return c.validatePalette()
}

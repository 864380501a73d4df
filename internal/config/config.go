package config

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/example/playtestshot/internal/render"
	"github.com/example/playtestshot/internal/theme"
)

// MemoryStore selects the in-process comment store.
const MemoryStore = "memory"

// Server holds HTTP host settings.
type Server struct {
	Listen   string `yaml:"listen"`
	Token    string `yaml:"token"`
	LogLevel string `yaml:"log_level"`
}

// Validate checks the server settings.
func (s *Server) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.Listen, validation.Required),
		validation.Field(&s.LogLevel, validation.In("debug", "info", "warn", "error")),
	)
}

// Level returns the slog level for LogLevel.
func (s *Server) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Editor holds annotation surface settings.
type Editor struct {
	MaxWidth   int  `yaml:"max_width"`
	MaxHeight  int  `yaml:"max_height"`
	Eraser     bool `yaml:"eraser"`
	AllowFiles bool `yaml:"allow_files"`
}

// Validate checks the editor settings.
func (e *Editor) Validate() error {
	return validation.ValidateStruct(e,
		validation.Field(&e.MaxWidth, validation.Required, validation.Min(1), validation.Max(16384)),
		validation.Field(&e.MaxHeight, validation.Required, validation.Min(1), validation.Max(16384)),
	)
}

// Notify holds notification toggles.
type Notify struct {
	Submit bool `yaml:"submit"`
	Copy   bool `yaml:"copy"`
}

// Clipboard holds clipboard integration toggles.
type Clipboard struct {
	CopyOnSave bool `yaml:"copy_on_save"`
	Source     bool `yaml:"source"`
}

// Config holds the application configuration.
type Config struct {
	Theme     string                  `yaml:"theme"`
	Store     string                  `yaml:"store"`
	Server    Server                  `yaml:"server"`
	Editor    Editor                  `yaml:"editor"`
	Notify    Notify                  `yaml:"notify"`
	Clipboard Clipboard               `yaml:"clipboard"`
	Themes    map[string]*theme.Theme `yaml:"-"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		Store: "playtestshot.db",
		Server: Server{
			Listen:   ":8080",
			LogLevel: "info",
		},
		Editor: Editor{
			MaxWidth:   render.DefaultMaxWidth,
			MaxHeight:  render.DefaultMaxHeight,
			AllowFiles: false,
		},
		Themes: make(map[string]*theme.Theme),
	}
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Store, validation.Required),
	); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Editor.Validate(); err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	return nil
}

// ActiveTheme returns the named theme from the config, falling back to the
// theme loader and finally the default swatches.
func (c *Config) ActiveTheme(name string) (*theme.Theme, error) {
	if name == "" {
		name = c.Theme
	}
	if t, ok := c.Themes[name]; ok {
		t = t.Clone()
		if len(t.Swatches) == 0 {
			t.Swatches = theme.Default().Swatches
		}
		return t, nil
	}
	return theme.NewLoader().Load(name)
}

// String renders the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	fmt.Fprintf(&sb, "store = %s\n", c.Store)
	sb.WriteString("\n")

	sb.WriteString("[server]\n")
	fmt.Fprintf(&sb, "listen = %s\n", c.Server.Listen)
	if c.Server.Token != "" {
		fmt.Fprintf(&sb, "token = %s\n", c.Server.Token)
	}
	fmt.Fprintf(&sb, "log_level = %s\n", c.Server.LogLevel)
	sb.WriteString("\n")

	sb.WriteString("[editor]\n")
	fmt.Fprintf(&sb, "max_width = %d\n", c.Editor.MaxWidth)
	fmt.Fprintf(&sb, "max_height = %d\n", c.Editor.MaxHeight)
	fmt.Fprintf(&sb, "eraser = %v\n", c.Editor.Eraser)
	fmt.Fprintf(&sb, "allow_files = %v\n", c.Editor.AllowFiles)
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "submit = %v\n", c.Notify.Submit)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	sb.WriteString("[clipboard]\n")
	fmt.Fprintf(&sb, "copy_on_save = %v\n", c.Clipboard.CopyOnSave)
	fmt.Fprintf(&sb, "source = %v\n", c.Clipboard.Source)

	var names []string
	for name := range c.Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t := c.Themes[name]
		fmt.Fprintf(&sb, "\n[theme.%s]\n", name)
		if t.DefaultColor != "" {
			fmt.Fprintf(&sb, "default_color = %s\n", t.DefaultColor)
		}
		fmt.Fprintf(&sb, "brush = %d\n", t.DefaultBrush)
		for _, s := range t.Swatches {
			fmt.Fprintf(&sb, "%s = %s\n", s.Name, theme.Hex(s.Color))
		}
	}
	return sb.String()
}

package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/example/playtestshot/internal/theme"
)

// Parse reads RC-format configuration: "key = value" lines grouped under
// [section] headers, with [theme.NAME] sections defining swatch sets.
// Values may reference environment variables as $VAR or ${VAR}.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var (
		section string
		current *theme.Theme
	)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") || strings.HasPrefix(line, ";") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.ToLower(strings.TrimSpace(line[1 : len(line)-1]))
			current = nil
			if name, ok := strings.CutPrefix(section, "theme."); ok {
				current = emptyTheme(name)
				cfg.Themes[name] = current
			}
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			key, value, ok = strings.Cut(line, ":")
		}
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = os.ExpandEnv(strings.Trim(strings.TrimSpace(value), `"`))

		var err error
		switch {
		case current != nil:
			err = current.SetField(key, value)
		case section == "":
			err = setRootField(cfg, key, value)
		case section == "server":
			err = setServerField(&cfg.Server, key, value)
		case section == "editor":
			err = setEditorField(&cfg.Editor, key, value)
		case section == "notify":
			err = setNotifyField(&cfg.Notify, key, value)
		case section == "clipboard":
			err = setClipboardField(&cfg.Clipboard, key, value)
		}
		if err != nil {
			if section == "" {
				return nil, fmt.Errorf("error in root section: %w", err)
			}
			return nil, fmt.Errorf("error in section [%s]: %w", section, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// yamlConfig mirrors Config with theme sections as plain maps.
type yamlConfig struct {
	Config `yaml:",inline"`
	Themes map[string]map[string]string `yaml:"themes"`
}

// ParseYAML reads the YAML form of the configuration after expanding
// environment variables.
func ParseYAML(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	doc := yamlConfig{Config: *New()}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	cfg := doc.Config
	cfg.Themes = make(map[string]*theme.Theme)
	for name, fields := range doc.Themes {
		t := emptyTheme(name)
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := t.SetField(k, fields[k]); err != nil {
				return nil, fmt.Errorf("theme %s: %w", name, err)
			}
		}
		cfg.Themes[name] = t
	}
	return &cfg, nil
}

func emptyTheme(name string) *theme.Theme {
	t := theme.Default()
	t.Name = name
	t.Swatches = nil
	t.DefaultColor = ""
	return t
}

func setRootField(cfg *Config, key, value string) error {
	switch key {
	case "theme":
		cfg.Theme = value
	case "store":
		cfg.Store = value
	}
	return nil
}

func setServerField(s *Server, key, value string) error {
	switch key {
	case "listen":
		s.Listen = value
	case "token":
		s.Token = value
	case "log_level":
		s.LogLevel = strings.ToLower(value)
	}
	return nil
}

func setEditorField(e *Editor, key, value string) error {
	switch key {
	case "max_width", "max_height":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for key %s: %w", key, err)
		}
		if key == "max_width" {
			e.MaxWidth = n
		} else {
			e.MaxHeight = n
		}
	case "eraser", "allow_files":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for key %s: %w", key, err)
		}
		if key == "eraser" {
			e.Eraser = b
		} else {
			e.AllowFiles = b
		}
	}
	return nil
}

func setNotifyField(n *Notify, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	switch key {
	case "submit":
		n.Submit = b
	case "copy":
		n.Copy = b
	}
	return nil
}

func setClipboardField(c *Clipboard, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	switch key {
	case "copy_on_save":
		c.CopyOnSave = b
	case "source":
		c.Source = b
	}
	return nil
}

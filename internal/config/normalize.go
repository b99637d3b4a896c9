package config

import (
	"fmt"
	"strings"
)

// normalize expands paths, trims free-form strings, and lowercases
// enumerated values so validation and downstream code see canonical forms.
func (c *Config) normalize() error {
	paths := []struct {
		name  string
		value *string
	}{
		{"paths.watch_dir", &c.Paths.WatchDir},
		{"paths.output_dir", &c.Paths.OutputDir},
		{"paths.temp_dir", &c.Paths.TempDir},
		{"paths.log_dir", &c.Paths.LogDir},
		{"paths.trash_dir", &c.Paths.TrashDir},
	}
	for _, p := range paths {
		trimmed := strings.TrimSpace(*p.value)
		if trimmed == "" {
			*p.value = ""
			continue
		}
		expanded, err := expandPath(trimmed)
		if err != nil {
			return fmt.Errorf("normalize %s: %w", p.name, err)
		}
		*p.value = expanded
	}

	c.Clips.SelectionPolicy = strings.ToLower(strings.TrimSpace(c.Clips.SelectionPolicy))
	c.Output.Preset = strings.TrimSpace(c.Output.Preset)
	c.Output.SharpenPreset = strings.ToLower(strings.TrimSpace(c.Output.SharpenPreset))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)

	exts := make([]string, 0, len(c.Workflow.WatchExtensions))
	for _, ext := range c.Workflow.WatchExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	c.Workflow.WatchExtensions = exts

	return nil
}

package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipforge/internal/config"
)

func TestLoadDefaultsWhenNoFilePresent(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	// testing.T.Chdir equivalent; the method requires Go 1.24+.
	origWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWD) })

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantOutput := filepath.Join(tempHome, "Videos", "clipforge", "shorts")
	if cfg.Paths.OutputDir != wantOutput {
		t.Fatalf("unexpected output dir: got %q want %q", cfg.Paths.OutputDir, wantOutput)
	}
	if cfg.Clips.MinClipSec != 12 || cfg.Clips.MaxClipSec != 45 {
		t.Fatalf("unexpected clip bounds: %v/%v", cfg.Clips.MinClipSec, cfg.Clips.MaxClipSec)
	}
	if cfg.StoryHook.Enabled {
		t.Fatal("expected story hook disabled by default")
	}
	if cfg.Clips.SelectionPolicy != "chronological" {
		t.Fatalf("unexpected selection policy: %q", cfg.Clips.SelectionPolicy)
	}
	if cfg.Audio.SampleRate != 16000 || cfg.Audio.HopMS != 250 {
		t.Fatalf("unexpected audio defaults: %d/%d", cfg.Audio.SampleRate, cfg.Audio.HopMS)
	}
	if cfg.HopSeconds() != 0.25 {
		t.Fatalf("unexpected hop seconds: %v", cfg.HopSeconds())
	}
}

func TestLoadAppliesFileOverridesAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[paths]
output_dir = "~/exports"

[clips]
min_clip_sec = 10.0
max_clip_sec = 30.0
selection_policy = "Best-First"

[story_hook]
enabled = true
hook_sec = 4.0
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatalf("expected existing config file, got exists=%v resolved=%q", exists, resolved)
	}
	if cfg.Paths.OutputDir != filepath.Join(tempHome, "exports") {
		t.Fatalf("expected ~ expansion, got %q", cfg.Paths.OutputDir)
	}
	if cfg.Clips.MinClipSec != 10 || cfg.Clips.MaxClipSec != 30 {
		t.Fatalf("overrides not applied: %v/%v", cfg.Clips.MinClipSec, cfg.Clips.MaxClipSec)
	}
	if cfg.Clips.SelectionPolicy != "best-first" {
		t.Fatalf("expected normalized policy, got %q", cfg.Clips.SelectionPolicy)
	}
	if !cfg.StoryHook.Enabled || cfg.StoryHook.HookSec != 4 {
		t.Fatalf("story hook override not applied: %+v", cfg.StoryHook)
	}
	// Untouched sections keep their defaults.
	if cfg.Output.FPS != 30 {
		t.Fatalf("unexpected fps: %d", cfg.Output.FPS)
	}
}

func TestLoadRejectsDuplicateStoryHookSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[story_hook]
enabled = true

[story_hook]
enabled = false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected duplicate section to be rejected")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "min above max",
			content: "[clips]\nmin_clip_sec = 60.0\nmax_clip_sec = 30.0\n",
			want:    "clips:",
		},
		{
			name:    "percentile out of range",
			content: "[clips]\nsilence_percentile = 180.0\n",
			want:    "percentile",
		},
		{
			name:    "bad selection policy",
			content: "[clips]\nselection_policy = \"loudest\"\n",
			want:    "selection policy",
		},
		{
			name:    "layout does not sum",
			content: "[layout]\ngameplay_height = 1000\nfacecam_height = 600\n",
			want:    "1920",
		},
		{
			name:    "bad log format",
			content: "[logging]\nformat = \"xml\"\n",
			want:    "logging.format",
		},
		{
			name:    "hop larger than min clip",
			content: "[audio]\nhop_ms = 20000\n",
			want:    "hop_ms",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load of sample config: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	def := config.Default()
	if cfg.Clips.MinClipSec != def.Clips.MinClipSec {
		t.Fatalf("sample config changed defaults: %v vs %v", cfg.Clips.MinClipSec, def.Clips.MinClipSec)
	}
}

func TestHighlightOptionsMotionWeightGatedByEnable(t *testing.T) {
	cfg := config.Default()
	cfg.FaceMotion.Enabled = false
	cfg.FaceMotion.Weight = 0.8
	if w := cfg.HighlightOptions().MotionWeight; w != 0 {
		t.Fatalf("disabled face motion should zero the weight, got %v", w)
	}
	cfg.FaceMotion.Enabled = true
	if w := cfg.HighlightOptions().MotionWeight; w != 0.8 {
		t.Fatalf("enabled face motion should carry the weight, got %v", w)
	}
}

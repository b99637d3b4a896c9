package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"clipforge/internal/highlight"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WatchDir  string `toml:"watch_dir"`
	OutputDir string `toml:"output_dir"`
	TempDir   string `toml:"temp_dir"`
	LogDir    string `toml:"log_dir"`
	TrashDir  string `toml:"trash_dir"`
}

// Clips contains the highlight selection parameters.
type Clips struct {
	MinClipSec        float64 `toml:"min_clip_sec"`
	MaxClipSec        float64 `toml:"max_clip_sec"`
	EndSilenceRunSec  float64 `toml:"end_silence_run_sec"`
	MaxSilenceFrac    float64 `toml:"max_silence_frac"`
	SilencePercentile float64 `toml:"silence_percentile"`
	MaxClips          int     `toml:"max_clips"`
	SelectionPolicy   string  `toml:"selection_policy"`
	SmoothWindow      int     `toml:"smooth_window"`
	NormLowPct        float64 `toml:"norm_low_pct"`
	NormHighPct       float64 `toml:"norm_high_pct"`
}

// Audio contains envelope extraction parameters.
type Audio struct {
	SampleRate int `toml:"sample_rate"`
	HopMS      int `toml:"hop_ms"`
}

// StoryHook contains the climax-first reordering settings.
type StoryHook struct {
	Enabled bool    `toml:"enabled"`
	HookSec float64 `toml:"hook_sec"`
}

// FaceMotion contains the optional facecam motion signal settings.
type FaceMotion struct {
	Enabled   bool    `toml:"enabled"`
	Weight    float64 `toml:"weight"`
	SampleFPS int     `toml:"sample_fps"`
}

// BoringFilter contains the post-selection dullness filters.
type BoringFilter struct {
	DetectFreeze     bool    `toml:"detect_freeze"`
	DetectScene      bool    `toml:"detect_scene"`
	FreezeFPS        int     `toml:"freeze_fps"`
	FreezeNoise      float64 `toml:"freeze_noise"`
	FreezeMinDurSec  float64 `toml:"freeze_min_dur_sec"`
	MaxFreezeOverlap float64 `toml:"max_freeze_overlap_sec"`
	SceneFPS         int     `toml:"scene_fps"`
	SceneThreshold   float64 `toml:"scene_threshold"`
	MinSceneChanges  int     `toml:"min_scene_changes"`
}

// Layout contains the vertical stack geometry handed to the renderer.
type Layout struct {
	GameplayHeight int `toml:"gameplay_height"`
	FacecamHeight  int `toml:"facecam_height"`
	GameTopCropPx  int `toml:"game_top_crop_px"`
	GameBottomCrop int `toml:"game_bottom_crop_px"`
}

// FacecamCrop locates the facecam region in the source frame.
type FacecamCrop struct {
	WRatio    float64 `toml:"w_ratio"`
	HRatio    float64 `toml:"h_ratio"`
	XOffsetPx int     `toml:"x_offset_px"`
	YOffsetPx int     `toml:"y_offset_px"`
}

// Output contains encoding parameters for exported clips.
type Output struct {
	FPS            int    `toml:"fps"`
	CRF            int    `toml:"crf"`
	Preset         string `toml:"preset"`
	Sharpen        bool   `toml:"sharpen"`
	SharpenPreset  string `toml:"sharpen_preset"`
	DeleteOriginal bool   `toml:"delete_original"`
}

// Workflow contains daemon timing and intake settings.
type Workflow struct {
	QueuePollInterval int      `toml:"queue_poll_interval"`
	StableSeconds     int      `toml:"stable_seconds"`
	WatchExtensions   []string `toml:"watch_extensions"`
}

// Logging contains log output configuration.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Notifications contains ntfy push notification settings.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Config encapsulates all configuration values for clipforge.
type Config struct {
	Paths         Paths         `toml:"paths"`
	Clips         Clips         `toml:"clips"`
	Audio         Audio         `toml:"audio"`
	StoryHook     StoryHook     `toml:"story_hook"`
	FaceMotion    FaceMotion    `toml:"face_motion"`
	BoringFilter  BoringFilter  `toml:"boring_filter"`
	Layout        Layout        `toml:"layout"`
	FacecamCrop   FacecamCrop   `toml:"facecam_crop"`
	Output        Output        `toml:"output"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
	Notifications Notifications `toml:"notifications"`
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/clipforge/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. Duplicate TOML keys are
// a decode error, never a silent last-wins merge.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("clipforge.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories required for processing.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WatchDir, c.Paths.OutputDir, c.Paths.TempDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// HopSeconds returns the envelope frame hop in seconds.
func (c *Config) HopSeconds() float64 {
	return float64(c.Audio.HopMS) / 1000
}

// HighlightOptions maps the configuration onto the analysis option record.
// The record is built once here and passed by value; the engine never reads
// configuration itself.
func (c *Config) HighlightOptions() highlight.Options {
	motionWeight := 0.0
	if c.FaceMotion.Enabled {
		motionWeight = c.FaceMotion.Weight
	}
	return highlight.Options{
		MinClipSec:        c.Clips.MinClipSec,
		MaxClipSec:        c.Clips.MaxClipSec,
		EndSilenceRunSec:  c.Clips.EndSilenceRunSec,
		MaxSilenceFrac:    c.Clips.MaxSilenceFrac,
		SilencePercentile: c.Clips.SilencePercentile,
		HookEnabled:       c.StoryHook.Enabled,
		HookSec:           c.StoryHook.HookSec,
		MaxClips:          c.Clips.MaxClips,
		SelectionPolicy:   highlight.SelectionPolicy(c.Clips.SelectionPolicy),
		SmoothWindow:      c.Clips.SmoothWindow,
		NormLowPct:        c.Clips.NormLowPct,
		NormHighPct:       c.Clips.NormHighPct,
		MotionWeight:      motionWeight,
	}
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

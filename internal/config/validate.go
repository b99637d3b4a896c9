package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable. It delegates the selection
// parameters to the highlight option record so CLI startup fails with the
// same errors the engine would raise.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateClips(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateRendering(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.TempDir == "" {
		return errors.New("paths.temp_dir must be set")
	}
	if c.Output.DeleteOriginal && c.Paths.TrashDir == "" {
		return errors.New("paths.trash_dir must be set when output.delete_original is true")
	}
	return nil
}

func (c *Config) validateClips() error {
	if err := c.HighlightOptions().Validate(); err != nil {
		return fmt.Errorf("clips: %w", err)
	}
	return nil
}

func (c *Config) validateAudio() error {
	if c.Audio.SampleRate <= 0 {
		return errors.New("audio.sample_rate must be positive")
	}
	if c.Audio.HopMS <= 0 {
		return errors.New("audio.hop_ms must be positive")
	}
	if float64(c.Audio.HopMS)/1000 > c.Clips.MinClipSec {
		return errors.New("audio.hop_ms must not exceed clips.min_clip_sec")
	}
	return nil
}

func (c *Config) validateRendering() error {
	if c.Layout.GameplayHeight <= 0 || c.Layout.FacecamHeight <= 0 {
		return errors.New("layout heights must be positive")
	}
	if c.Layout.GameplayHeight+c.Layout.FacecamHeight != 1920 {
		return fmt.Errorf("layout.gameplay_height + layout.facecam_height must equal 1920, got %d",
			c.Layout.GameplayHeight+c.Layout.FacecamHeight)
	}
	if c.FacecamCrop.WRatio <= 0 || c.FacecamCrop.WRatio > 1 {
		return errors.New("facecam_crop.w_ratio must be in (0,1]")
	}
	if c.FacecamCrop.HRatio <= 0 || c.FacecamCrop.HRatio > 1 {
		return errors.New("facecam_crop.h_ratio must be in (0,1]")
	}
	if c.Output.FPS <= 0 {
		return errors.New("output.fps must be positive")
	}
	if c.Output.CRF < 0 || c.Output.CRF > 51 {
		return errors.New("output.crf must be in [0,51]")
	}
	if c.Output.Preset == "" {
		return errors.New("output.preset must be set")
	}
	switch c.Output.SharpenPreset {
	case "mild", "medium", "strong":
	default:
		return fmt.Errorf("output.sharpen_preset must be mild, medium, or strong, got %q", c.Output.SharpenPreset)
	}
	if c.BoringFilter.DetectFreeze {
		if c.BoringFilter.FreezeFPS <= 0 {
			return errors.New("boring_filter.freeze_fps must be positive")
		}
		if c.BoringFilter.FreezeMinDurSec <= 0 {
			return errors.New("boring_filter.freeze_min_dur_sec must be positive")
		}
		if c.BoringFilter.MaxFreezeOverlap < 0 {
			return errors.New("boring_filter.max_freeze_overlap_sec must be >= 0")
		}
	}
	if c.BoringFilter.DetectScene {
		if c.BoringFilter.SceneFPS <= 0 {
			return errors.New("boring_filter.scene_fps must be positive")
		}
		if c.BoringFilter.SceneThreshold <= 0 || c.BoringFilter.SceneThreshold >= 1 {
			return errors.New("boring_filter.scene_threshold must be in (0,1)")
		}
		if c.BoringFilter.MinSceneChanges < 0 {
			return errors.New("boring_filter.min_scene_changes must be >= 0")
		}
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.QueuePollInterval <= 0 {
		return errors.New("workflow.queue_poll_interval must be positive")
	}
	if c.Workflow.StableSeconds <= 0 {
		return errors.New("workflow.stable_seconds must be positive")
	}
	if len(c.Workflow.WatchExtensions) == 0 {
		return errors.New("workflow.watch_extensions must include at least one extension")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

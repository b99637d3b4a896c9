package config

// Default returns the built-in configuration values applied before a config
// file is decoded over them.
func Default() Config {
	return Config{
		Paths: Paths{
			WatchDir:  "~/Videos/clipforge/incoming",
			OutputDir: "~/Videos/clipforge/shorts",
			TempDir:   "~/.cache/clipforge/tmp",
			LogDir:    "~/.local/share/clipforge/logs",
			TrashDir:  "~/.local/share/clipforge/trash",
		},
		Clips: Clips{
			MinClipSec:        12,
			MaxClipSec:        45,
			EndSilenceRunSec:  4,
			MaxSilenceFrac:    0.35,
			SilencePercentile: 55,
			MaxClips:          6,
			SelectionPolicy:   "chronological",
			SmoothWindow:      5,
			NormLowPct:        10,
			NormHighPct:       99,
		},
		Audio: Audio{
			SampleRate: 16000,
			HopMS:      250,
		},
		StoryHook: StoryHook{
			Enabled: false,
			HookSec: 3,
		},
		FaceMotion: FaceMotion{
			Enabled:   false,
			Weight:    0.8,
			SampleFPS: 3,
		},
		BoringFilter: BoringFilter{
			DetectFreeze:     true,
			DetectScene:      true,
			FreezeFPS:        2,
			FreezeNoise:      0.003,
			FreezeMinDurSec:  2,
			MaxFreezeOverlap: 4,
			SceneFPS:         2,
			SceneThreshold:   0.35,
			MinSceneChanges:  1,
		},
		Layout: Layout{
			GameplayHeight: 1280,
			FacecamHeight:  640,
			GameTopCropPx:  0,
			GameBottomCrop: 0,
		},
		FacecamCrop: FacecamCrop{
			WRatio:    0.25,
			HRatio:    0.25,
			XOffsetPx: 0,
			YOffsetPx: 0,
		},
		Output: Output{
			FPS:            30,
			CRF:            21,
			Preset:         "veryfast",
			Sharpen:        false,
			SharpenPreset:  "mild",
			DeleteOriginal: false,
		},
		Workflow: Workflow{
			QueuePollInterval: 5,
			StableSeconds:     5,
			WatchExtensions:   []string{".mp4", ".mov", ".mkv"},
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
		Notifications: Notifications{
			NtfyTopic:      "",
			RequestTimeout: 10,
		},
	}
}

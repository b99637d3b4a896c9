// Package highlight selects highlight windows from an audio energy envelope.
//
// The engine is a pure, deterministic computation: per-frame energy readings
// become a normalized envelope, a percentile threshold classifies frames as
// silent or active, a single forward scan produces validated candidate
// segments, and each segment is partitioned into an ordered cut list that
// optionally moves the most energetic sub-window to the front. The package
// never touches media files; callers feed it readings and hand the resulting
// clip plans to a renderer.
package highlight

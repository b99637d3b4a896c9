// Package render turns clip plans into vertical 1080x1920 shorts by driving
// ffmpeg with a generated filter_complex graph: facecam crop stacked over
// gameplay, per-range trim/concat in plan order, and loudness-normalized
// audio.
package render

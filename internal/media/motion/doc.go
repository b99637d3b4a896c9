// Package motion derives video activity signals through ffmpeg filters:
// freeze intervals, scene-change timestamps, and a facecam motion series
// sampled from the bottom-right crop region.
package motion

// Package audio extracts loudness series from recordings by decoding mono
// PCM through ffmpeg and reducing it to one RMS value per hop.
package audio

// Package ffprobe wraps the ffprobe binary for container inspection.
package ffprobe

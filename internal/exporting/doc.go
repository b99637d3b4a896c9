// Package exporting implements the second workflow stage: realizing the
// analysis clip plan as encoded vertical shorts on disk, then disposing of
// the source recording when configured to do so.
package exporting

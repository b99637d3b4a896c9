// Package watchfolder feeds the queue from a drop directory.
//
// The watcher combines fsnotify events with a one-second stability sweep: a
// candidate file is enqueued only after its size has stopped changing for the
// configured number of seconds, so recordings still being written (or copied
// in) are never picked up half-finished. Files already present at startup are
// swept in the same way.
package watchfolder

// Package analysis implements the first workflow stage: probing the source
// recording, extracting the loudness (and optional facecam motion) envelope,
// and producing the ordered clip plan that the rendering stage consumes.
//
// The stage persists its outcome as a JSON report on the queue item, so the
// two stages share nothing but the database row.
package analysis

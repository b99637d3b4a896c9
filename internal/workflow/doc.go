// Package workflow drives queue items through the analysis and rendering
// stages.
//
// The Manager polls the queue for actionable items, transitions them into a
// processing status, invokes the registered stage handler, and persists the
// outcome. Failures are classified through the services error markers:
// validation and configuration problems land in review, everything else in
// failed where a retry can pick them up.
package workflow

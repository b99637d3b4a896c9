// Package services carries the cross-cutting contracts shared by workflow
// stages: sentinel error markers, the Wrap helper that tags failures with
// stage context, and context annotations used for structured logging.
package services

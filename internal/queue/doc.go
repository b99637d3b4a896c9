// Package queue persists workflow items in SQLite and exposes helpers for
// driving their lifecycle.
//
// The Store manages database connections, schema initialization, stats
// queries, stuck-item recovery, and the status transitions the workflow
// manager relies on. Queue items capture the source recording, the analyzed
// clip plan, progress, and review flags so stages can coordinate without
// additional state.
//
// The database is transient storage for in-flight jobs, not an archive.
// Schema changes bump the version in schema.go; users clear the database to
// adopt the new schema.
package queue

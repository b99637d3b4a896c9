// Package config loads and validates clipforge configuration.
//
// Configuration lives in a single TOML file. Loading follows a fixed
// pipeline: defaults, file decode, normalization (path expansion, string
// trimming), then validation. The resulting Config is constructed once at
// startup and passed by value into the analysis engine; nothing re-reads
// configuration mid-pass. The TOML decoder rejects duplicate keys and
// duplicate sections outright rather than silently picking one.
package config

// Package config holds process-wide constants (currently read by the
// modules loader) — grounded on the teacher's internal/config/constants.go,
// trimmed to a minimal set; see DESIGN.md's "internal/config" section for
// what was cut and why.
package config

// Version is the current watt version, set at build time via -ldflags.
var Version = "0.1.0"

// SourceFileExt is the canonical Oil/Watt source extension. internal/modules
// appends it when a `use` specifier omits one.
const SourceFileExt = ".wt"

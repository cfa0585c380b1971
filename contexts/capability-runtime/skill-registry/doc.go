// Package skillregistry maintains the set of pluggable skill handlers:
// their descriptors, advisory health state, and per-skill admission slots.
//
// Handlers come from two sources: builtins compiled into the binary and
// scripted skills loaded from the configured skills directory.
package skillregistry

// Package ruleengine contains the ArcHeli routing rule store and matcher.
//
// Rule sets are loaded from a declarative YAML source into immutable,
// versioned snapshots; matching evaluates a work item against the current
// snapshot and yields an ordered candidate list for the dispatcher.
package ruleengine

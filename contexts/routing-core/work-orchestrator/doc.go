// Package workorchestrator owns the per-item workflow: intake, matching
// against the current rule snapshot, handing the candidate list to the
// dispatcher, and tracking each item through its state machine until exactly
// one terminal outcome exists per attempt.
package workorchestrator

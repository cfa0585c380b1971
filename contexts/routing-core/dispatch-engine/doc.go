// Package dispatchengine walks a matched candidate list in order, invokes the
// first admissible skill handler under a bounded time budget, and commits the
// attempt (routing decision, evidence, outcome) to the ledger as one unit.
package dispatchengine

// Package evidenceledger durably records what the routing engine decided and
// what the skills produced: routing decisions, append-only evidence artifacts
// keyed by (item, fingerprint), and terminal outcomes, with an outbox feeding
// the worker relay. A dispatch attempt commits as a single atomic unit.
package evidenceledger

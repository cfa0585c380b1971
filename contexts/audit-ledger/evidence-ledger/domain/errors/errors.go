package errors

import "errors"

var (
	ErrInvalidRecord        = errors.New("ledger record is invalid")
	ErrOutcomeNotFound      = errors.New("no outcome recorded for item")
	ErrDuplicateFingerprint = errors.New("evidence fingerprint already recorded for item")
)

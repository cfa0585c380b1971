package errors

import "errors"

var (
	ErrNotConfigured = errors.New("no rule snapshot has been loaded")
	ErrValidation    = errors.New("rule set failed validation")
)

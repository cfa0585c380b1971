package errors

import "errors"

var (
	ErrUnknownSkill     = errors.New("skill is not registered")
	ErrDuplicateSkill   = errors.New("skill id is already registered")
	ErrSkillBusy        = errors.New("skill concurrency limit reached")
	ErrSkillUnavailable = errors.New("skill is marked unavailable")
	ErrInvalidManifest  = errors.New("skill manifest is invalid")
)

package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrChallengeMismatch  = errors.New("challenge code mismatch")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrNotPending         = errors.New("request is not pending")
	ErrPersistenceCorrupt = errors.New("persisted data is corrupt")
	ErrInvalidInput       = errors.New("invalid input")
	ErrAlreadyExists      = errors.New("already exists")
)

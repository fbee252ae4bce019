package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness constraint was hit.
	ErrAlreadyExists = errors.New("already exists")
	// ErrAlreadyProcessing is returned when a checkout run is already in flight for a session.
	ErrAlreadyProcessing = errors.New("checkout already processing")
	// ErrInvalidTransition is returned for a session phase change the state machine does not allow.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrInvalidMode indicates an unknown purchase mode.
	ErrInvalidMode = errors.New("invalid purchase mode")
	// ErrInvalidFavourite indicates an unknown favourite kind or entity id.
	ErrInvalidFavourite = errors.New("invalid favourite")
)

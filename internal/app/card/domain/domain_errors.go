package domain

import "errors"

// Domain errors as sentinel values
var (
	// Registration errors
	ErrUnknownCardType   = errors.New("unknown card type")
	ErrUnknownField      = errors.New("field not permitted for card type")
	ErrInvalidFieldValue = errors.New("invalid field value")
	ErrEmptyEntityKey    = errors.New("entity key cannot be empty")
	ErrInvalidEntityID   = errors.New("entity id must be positive")
	ErrEntityKeyConflict = errors.New("entity key already used by another card")

	// Store errors
	ErrCardNotFound = errors.New("card not found")

	// Commit run errors
	ErrCommitInProgress = errors.New("a commit run is already in progress")
	ErrNoActiveRun      = errors.New("no commit run is in progress")
)

package model

import "errors"

// Common errors used across the application
var (
	// Access / session errors
	ErrInvalidCode      = errors.New("access code is invalid or inactive")
	ErrTeamNotFound     = errors.New("team not found")
	ErrSessionStale     = errors.New("stored session no longer matches a team")
	ErrTeamNameRequired = errors.New("team name is required")
	ErrNoMembers        = errors.New("at least one member name is required")
	ErrTooManyMembers   = errors.New("team already has the maximum number of members")

	// Question errors
	ErrQuestionNotFound  = errors.New("question not found")
	ErrHintNotAvailable  = errors.New("hint not available")
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	ErrInvalidQuestion   = errors.New("question is missing required fields")

	// Game errors
	ErrGameEnded = errors.New("game has ended")

	// Admin errors
	ErrAdminNotFound      = errors.New("admin user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccessCodeExists   = errors.New("access code already exists")
)

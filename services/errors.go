package services

import "errors"

// Sentinel errors shared across services and mapped to HTTP statuses in one
// place by the handlers package.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed          = errors.New("validation failed")
	ErrTournamentNameRequired    = errors.New("tournament name is required")
	ErrTournamentInvalidYear     = errors.New("tournament year is out of range")
	ErrTournamentInvalidRegions  = errors.New("tournament must name exactly four distinct regions")
	ErrTournamentAlreadyStarted  = errors.New("tournament has already left the pre-tournament stage")
	ErrRoundNotAdjacent          = errors.New("target round must immediately follow the current round")
	ErrRoundTerminal             = errors.New("tournament is already at the final round")
	ErrTransitionTimeNotFuture   = errors.New("scheduled time must be in the future")
	ErrMatchAlreadyCompleted     = errors.New("match result has already been recorded")
	ErrMatchNotDecidable         = errors.New("match does not have both teams assigned yet")
	ErrWinnerNotInMatch          = errors.New("winner must be one of the match's teams")
	ErrPickTeamNotInMatch        = errors.New("picked team is not playing in this match")
	ErrPickWrongTournament       = errors.New("match belongs to a different tournament")
	ErrPickMatchCompleted        = errors.New("picks are locked once the match is completed")
	ErrPreTournamentPickShape    = errors.New("pre-tournament pick needs 4 final four, 2 finals, 1 champion, and 2 cinderella selections")
	ErrCinderellaSeedOutOfRange  = errors.New("cinderella picks must be seeded 11 through 16")
	ErrPicksLocked               = errors.New("pre-tournament picks are locked once the bracket starts")
	ErrPicksNotVisible           = errors.New("picks are hidden until the tournament starts")
	ErrParticipantNameRequired   = errors.New("participant name is required")
	ErrLogoStorageDisabled       = errors.New("logo storage is not configured")
	ErrParticipantEmailRequired  = errors.New("participant email is required")

	// Conflicts
	ErrTournamentNameConflict   = errors.New("tournament name already exists for this year")
	ErrParticipantEmailConflict = errors.New("email already registered for this tournament")
	ErrTeamSeedConflict         = errors.New("seed already taken in this region")
	ErrRoundAlreadyGenerated    = errors.New("matches for that round already exist")

	// Authentication and authorization
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	// Entity-specific not-found errors
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrTeamNotFound        = errors.New("team not found")
	ErrMatchNotFound       = errors.New("match not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrTransitionNotFound  = errors.New("scheduled transition not found")
)

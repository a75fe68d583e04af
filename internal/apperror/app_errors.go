package apperror

import "errors"

var (
	ErrGameIsNotStarted = errors.New("game is not started")
	ErrUnknownCity      = errors.New("unknown city")
	ErrWrongLetter      = errors.New("city starts with a wrong letter")
	ErrCityAlreadyUsed  = errors.New("city is already used")
	ErrNoAvailableMoves = errors.New("no available moves")

	ErrUnknownCommand  = errors.New("unknown command")
	ErrSessionNotFound = errors.New("session not found")
	ErrNotConfigured   = errors.New("skill is not configured")
	ErrUnexpectedReply = errors.New("unexpected reply from remote service")
)

package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed   = errors.New("validation failed")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnknownCategory    = errors.New("unknown player category")
	ErrInvalidScore       = errors.New("scores must be non-negative")
	ErrTiedScore          = errors.New("a match cannot end level")

	// Ошибки состояния (конфликты)
	ErrEmailConflict         = errors.New("email address is already in use")
	ErrTournamentNotInSetup  = errors.New("tournament has already started")
	ErrTournamentNotFinished = errors.New("tournament is not finished")
	ErrTournamentArchived    = errors.New("tournament is archived")
	ErrMatchAlreadyFinished  = errors.New("match result is already recorded")
	ErrMatchAwaitingPair     = errors.New("match is waiting for a feeding winner")
	ErrPlayerAlreadyPaired   = errors.New("player is already in a pair of this tournament")
	ErrPairNotSolo           = errors.New("pair already has two players")
	ErrPairRejected          = errors.New("pair registration was rejected")
	ErrPairInUse             = errors.New("pair already plays matches")
	ErrPlayerInUse           = errors.New("player is referenced by pairs")
	ErrCategoryState         = errors.New("operation not allowed in the category's current stage")

	// Ошибки аутентификации и авторизации
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	// Ошибки, специфичные для сущностей
	ErrOrganizerNotFound  = errors.New("organizer not found")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrPairNotFound       = errors.New("pair not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrLeagueNotFound     = errors.New("league not found")
	ErrCategoryNotFound   = errors.New("league category not found")
)

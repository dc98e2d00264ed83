package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed         = errors.New("validation failed")
	ErrPasswordTooShort         = errors.New("password is too short")
	ErrCombatantStatsInvalid    = errors.New("combatant stats are invalid")
	ErrCombatantStatsNotFinal   = errors.New("combatant stats are not finalized")
	ErrCombatantSelfBattle      = errors.New("a combatant cannot battle itself")
	ErrRegistrationNotOpen      = errors.New("tournament registration is not open")
	ErrRegistrationClosed       = errors.New("tournament registration deadline has passed")
	ErrTournamentFull           = errors.New("tournament registration is full")
	ErrCombatantNotEligible     = errors.New("combatant is not eligible for this tournament")
	ErrApplicationNotPending    = errors.New("application has already been reviewed")
	ErrMatchAlreadyResolved     = errors.New("match has already been resolved")
	ErrMatchNotReady            = errors.New("match is waiting for participants")
	ErrInsufficientParticipants = errors.New("at least two approved participants are required")

	// Ошибки конфликтов
	ErrUserEmailConflict      = errors.New("email address is already in use")
	ErrUserNicknameConflict   = errors.New("nickname is already in use")
	ErrCombatantNameConflict  = errors.New("combatant nickname is already in use by this owner")
	ErrApplicationConflict    = errors.New("combatant is already registered for this tournament")
	ErrTournamentNameConflict = errors.New("tournament name already exists")

	// Ошибки аутентификации и авторизации
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")

	// Ошибки, специфичные для сущностей
	ErrUserNotFound        = errors.New("user not found")
	ErrCombatantNotFound   = errors.New("combatant not found")
	ErrBattleNotFound      = errors.New("battle not found")
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrApplicationNotFound = errors.New("tournament application not found")
	ErrMatchNotFound       = errors.New("tournament match not found")

	// Ошибки турниров
	ErrTournamentInvalidCapacity         = errors.New("tournament max participants must be at least two")
	ErrTournamentInvalidDeadline         = errors.New("tournament registration deadline must precede the start date")
	ErrTournamentInvalidStatusTransition = errors.New("invalid tournament status transition")
	ErrTournamentNotActive               = errors.New("tournament is not active")
)

package models

import "time"

type TournamentStatus string

const (
	TournamentStatusRegistration TournamentStatus = "registration"
	TournamentStatusActive       TournamentStatus = "active"
	TournamentStatusCompleted    TournamentStatus = "completed"
	TournamentStatusCanceled     TournamentStatus = "canceled"
)

type Tournament struct {
	ID        int              `json:"id"`
	Name      string           `json:"name"`
	Status    TournamentStatus `json:"status"`
	StartDate time.Time        `json:"start_date"`
	EndDate   *time.Time       `json:"end_date,omitempty"`

	// Ограничение по тиру: nil - турнир открыт для всех тиров.
	TierRestriction *Tier `json:"tier_restriction,omitempty"`

	MaxParticipants      *int       `json:"max_participants,omitempty"`
	RegistrationDeadline *time.Time `json:"registration_deadline,omitempty"`

	WinnerCombatantID *int `json:"winner_combatant_id,omitempty"`

	CreatedByID int       `json:"created_by_id"`
	CreatedAt   time.Time `json:"created_at"`

	// Заполняются при выдаче полной сетки.
	Applications []Application     `json:"applications,omitempty"`
	Matches      []TournamentMatch `json:"matches,omitempty"`
}

type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "pending"
	ApplicationApproved  ApplicationStatus = "approved"
	ApplicationRejected  ApplicationStatus = "rejected"
	ApplicationWithdrawn ApplicationStatus = "withdrawn"
)

// Application - заявка бойца на участие в турнире.
type Application struct {
	ID           int               `json:"id"`
	TournamentID int               `json:"tournament_id"`
	CombatantID  int               `json:"combatant_id"`
	UserID       int               `json:"user_id"`
	Status       ApplicationStatus `json:"status"`

	// Номер посева, присваивается при старте турнира (1 - сильнейший).
	SeedNumber *int `json:"seed_number,omitempty"`

	AppliedAt    time.Time  `json:"applied_at"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
	ReviewedByID *int       `json:"reviewed_by_id,omitempty"`

	Combatant *Combatant `json:"combatant,omitempty"`
}

// TournamentMatch - узел сетки, адресуемый парой (round, match_number).
// Создаётся один раз при старте турнира и мутируется только продвижением
// победителей: слот 1 заполняется раньше слота 2.
type TournamentMatch struct {
	ID           int `json:"id"`
	TournamentID int `json:"tournament_id"`
	RoundNumber  int `json:"round_number"`
	MatchNumber  int `json:"match_number"`

	Combatant1ID *int `json:"combatant1_id,omitempty"`
	Combatant2ID *int `json:"combatant2_id,omitempty"`
	WinnerID     *int `json:"winner_id,omitempty"`

	// Бой, которым разрешён этот матч (nil, пока матч не сыгран или bye).
	BattleID *int `json:"battle_id,omitempty"`

	// Матч следующего раунда, который потребляет победителя.
	NextMatchID *int `json:"next_match_id,omitempty"`

	// Bye: единственный участник проходит дальше без боя.
	IsBye bool `json:"is_bye,omitempty"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

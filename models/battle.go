package models

import "time"

// Battle - результат одиночного разрешения боя. Создаётся в момент
// разрешения и неизменяем после фиксации победителя; нарратив может быть
// прикреплён внешним сервисом постфактум.
type Battle struct {
	ID          int  `json:"id"`
	Combatant1ID int `json:"combatant1_id"`
	Combatant2ID int `json:"combatant2_id"`

	// nil - ничья.
	WinnerID *int `json:"winner_id,omitempty"`

	Narrative *string `json:"narrative,omitempty"`

	// Детали скрытого фактора видны только привилегированным ролям.
	HiddenFactorTriggered bool    `json:"-"`
	HiddenFactorDetails   *string `json:"-"`

	// Привязка к турниру, если бой сыгран в рамках сетки.
	TournamentID *int `json:"tournament_id,omitempty"`
	RoundNumber  *int `json:"round_number,omitempty"`

	FoughtAt time.Time `json:"fought_at"`
}

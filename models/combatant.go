package models

import "time"

type AttackType string

const (
	AttackPiercing  AttackType = "piercing"
	AttackCrushing  AttackType = "crushing"
	AttackSlashing  AttackType = "slashing"
	AttackVenom     AttackType = "venom"
	AttackChemical  AttackType = "chemical"
	AttackGrappling AttackType = "grappling"
)

type DefenseType string

const (
	DefenseHardShell      DefenseType = "hard_shell"
	DefenseSegmentedArmor DefenseType = "segmented_armor"
	DefenseEvasive        DefenseType = "evasive"
	DefenseHairySpiny     DefenseType = "hairy_spiny"
	DefenseToxicSkin      DefenseType = "toxic_skin"
	DefenseThickHide      DefenseType = "thick_hide"
)

// SizeClass - полностью упорядоченный размерный класс (tiny < ... < massive).
type SizeClass string

const (
	SizeTiny    SizeClass = "tiny"
	SizeSmall   SizeClass = "small"
	SizeMedium  SizeClass = "medium"
	SizeLarge   SizeClass = "large"
	SizeMassive SizeClass = "massive"
)

var sizeOrder = map[SizeClass]int{
	SizeTiny:    0,
	SizeSmall:   1,
	SizeMedium:  2,
	SizeLarge:   3,
	SizeMassive: 4,
}

// Index возвращает порядковый номер класса. ok=false для неизвестного класса.
func (s SizeClass) Index() (int, bool) {
	i, ok := sizeOrder[s]
	return i, ok
}

func (s SizeClass) Less(other SizeClass) bool {
	a, okA := s.Index()
	b, okB := other.Index()
	return okA && okB && a < b
}

// Combatant - боец со статами по шкале 0-100, типами атаки/защиты,
// размерным классом и секретным скрытым модификатором.
//
// HiddenFactor и HiddenFactorReason никогда не сериализуются в публичные
// ответы; привилегированное представление собирается отдельно.
type Combatant struct {
	ID             int    `json:"id"`
	OwnerID        int    `json:"owner_id"`
	Nickname       string `json:"nickname"`
	CommonName     *string `json:"common_name,omitempty"`
	ScientificName *string `json:"scientific_name,omitempty"`
	ImageKey       *string `json:"-"`
	ImageURL       *string `json:"image_url,omitempty"`
	Description    *string `json:"description,omitempty"`

	Attack  int `json:"attack"`
	Defense int `json:"defense"`
	Speed   int `json:"speed"`

	// Опциональные статы: nil означает, что слагаемое отсутствует в формуле силы.
	SpecialAttack  *int `json:"special_attack,omitempty"`
	SpecialDefense *int `json:"special_defense,omitempty"`
	Health         *int `json:"health,omitempty"`

	AttackType  AttackType  `json:"attack_type"`
	DefenseType DefenseType `json:"defense_type"`
	SizeClass   SizeClass   `json:"size_class"`

	HiddenFactor       float64 `json:"-"`
	HiddenFactorReason *string `json:"-"`

	Tier       Tier `json:"tier"`
	StatsFinal bool `json:"stats_final"`

	Wins   int `json:"wins"`
	Losses int `json:"losses"`

	SubmittedAt time.Time `json:"submitted_at"`
}

// AggregatePower - видимая сила для тиров, посева и предупреждений
// (attack + defense + speed).
func (c *Combatant) AggregatePower() int {
	return c.Attack + c.Defense + c.Speed
}

func (c *Combatant) WinRate() float64 {
	total := c.Wins + c.Losses
	if total == 0 {
		return 0
	}
	return float64(c.Wins) / float64(total) * 100
}

const (
	StatMin = 0
	StatMax = 100

	HiddenFactorMin = -5.0
	HiddenFactorMax = 5.0
)

// ClampStat приводит стат к объявленной шкале [0,100].
func ClampStat(v int) int {
	if v < StatMin {
		return StatMin
	}
	if v > StatMax {
		return StatMax
	}
	return v
}

// ClampHiddenFactor приводит скрытый фактор к диапазону [-5,+5].
// Значение вне диапазона - не ошибка, а усечение на записи.
func ClampHiddenFactor(f float64) float64 {
	if f < HiddenFactorMin {
		return HiddenFactorMin
	}
	if f > HiddenFactorMax {
		return HiddenFactorMax
	}
	return f
}

package models

// Tier - именованная полоса совокупной силы бойца. Полностью упорядочена:
// TierZU < TierNU < TierRU < TierUU < TierOU < TierUber.
type Tier string

const (
	TierZU   Tier = "zu"
	TierNU   Tier = "nu"
	TierRU   Tier = "ru"
	TierUU   Tier = "uu"
	TierOU   Tier = "ou"
	TierUber Tier = "uber"
)

var tierOrder = map[Tier]int{
	TierZU:   0,
	TierNU:   1,
	TierRU:   2,
	TierUU:   3,
	TierOU:   4,
	TierUber: 5,
}

var tierNames = map[Tier]string{
	TierZU:   "Little Cup",
	TierNU:   "D Tier",
	TierRU:   "C Tier",
	TierUU:   "B Tier",
	TierOU:   "A Tier",
	TierUber: "Legendary",
}

// Index возвращает порядковый номер тира. ok=false для неизвестного тира.
func (t Tier) Index() (int, bool) {
	i, ok := tierOrder[t]
	return i, ok
}

func (t Tier) Valid() bool {
	_, ok := tierOrder[t]
	return ok
}

func (t Tier) Less(other Tier) bool {
	a, okA := t.Index()
	b, okB := other.Index()
	return okA && okB && a < b
}

// DisplayName возвращает человекочитаемое имя тира.
func (t Tier) DisplayName() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return string(t)
}

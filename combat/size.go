package combat

import "github.com/Dosada05/bug-arena/models"

type sizePairKey struct {
	Own      models.SizeClass
	Opponent models.SizeClass
}

// sizePairTable holds explicit base modifiers for the most common size
// differentials. Any ordered pair not listed here falls back to the
// index-difference formula below.
var sizePairTable = map[sizePairKey]float64{
	{models.SizeMassive, models.SizeTiny}: 1.5,
	{models.SizeTiny, models.SizeMassive}: 0.7,
	{models.SizeLarge, models.SizeTiny}:   1.3,
	{models.SizeTiny, models.SizeLarge}:   0.8,
	{models.SizeMedium, models.SizeTiny}:  1.15,
}

// sizeAgnosticAttacks never gain or lose from size differences: the owner's
// size multiplier is forced to 1.0 regardless of table or formula.
var sizeAgnosticAttacks = map[models.AttackType]bool{
	models.AttackVenom:    true,
	models.AttackChemical: true,
}

// SizeAgnostic reports whether the attack type ignores size differentials.
func SizeAgnostic(attack models.AttackType) bool {
	return sizeAgnosticAttacks[attack]
}

// sizeFormula keys only on the index difference d between the two classes:
// d=0 -> 1.0, d=1 -> 1.15, d=2 -> 1.30, d>=3 -> 1.40, and the reciprocal
// for negative d.
func sizeFormula(d int) float64 {
	neg := d < 0
	if neg {
		d = -d
	}
	var m float64
	switch {
	case d == 0:
		m = 1.0
	case d == 1:
		m = 1.15
	case d == 2:
		m = 1.30
	default:
		m = 1.40
	}
	if neg {
		return 1.0 / m
	}
	return m
}

func sizeBaseMultiplier(own, opponent models.SizeClass) float64 {
	if m, ok := sizePairTable[sizePairKey{own, opponent}]; ok {
		return m
	}
	ownIdx, okOwn := own.Index()
	oppIdx, okOpp := opponent.Index()
	if !okOwn || !okOpp {
		return NeutralMultiplier
	}
	return sizeFormula(ownIdx - oppIdx)
}

// SizeMultipliers returns the size multipliers for both sides of a fight.
// An unknown size class on either side yields (1.0, 1.0). A side whose own
// attack type is size-agnostic gets exactly 1.0; the opponent's multiplier
// is still computed normally.
func SizeMultipliers(sizeA, sizeB models.SizeClass, attackA, attackB models.AttackType) (float64, float64) {
	multA := NeutralMultiplier
	multB := NeutralMultiplier

	_, okA := sizeA.Index()
	_, okB := sizeB.Index()
	if okA && okB {
		multA = sizeBaseMultiplier(sizeA, sizeB)
		multB = sizeBaseMultiplier(sizeB, sizeA)
	}

	if SizeAgnostic(attackA) {
		multA = NeutralMultiplier
	}
	if SizeAgnostic(attackB) {
		multB = NeutralMultiplier
	}
	return multA, multB
}

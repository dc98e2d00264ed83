package combat

import "github.com/Dosada05/bug-arena/models"

// NeutralMultiplier is the fallback for any attack/defense pair that is
// unknown or missing on either side. The "unknown pair -> neutral" policy
// lives here and nowhere else.
const NeutralMultiplier = 1.0

type matchupKey struct {
	Attack  models.AttackType
	Defense models.DefenseType
}

// matchupTable is the full offensive-type x defensive-type grid.
// Values stay within [0.7, 1.5].
var matchupTable = map[matchupKey]float64{
	{models.AttackPiercing, models.DefenseHardShell}:      1.5,
	{models.AttackPiercing, models.DefenseSegmentedArmor}: 1.2,
	{models.AttackPiercing, models.DefenseEvasive}:        0.9,
	{models.AttackPiercing, models.DefenseHairySpiny}:     1.1,
	{models.AttackPiercing, models.DefenseToxicSkin}:      1.3,
	{models.AttackPiercing, models.DefenseThickHide}:      0.7,

	{models.AttackCrushing, models.DefenseHardShell}:      1.4,
	{models.AttackCrushing, models.DefenseSegmentedArmor}: 1.1,
	{models.AttackCrushing, models.DefenseEvasive}:        0.7,
	{models.AttackCrushing, models.DefenseHairySpiny}:     1.0,
	{models.AttackCrushing, models.DefenseToxicSkin}:      1.2,
	{models.AttackCrushing, models.DefenseThickHide}:      0.8,

	{models.AttackSlashing, models.DefenseHardShell}:      0.8,
	{models.AttackSlashing, models.DefenseSegmentedArmor}: 1.3,
	{models.AttackSlashing, models.DefenseEvasive}:        0.9,
	{models.AttackSlashing, models.DefenseHairySpiny}:     0.7,
	{models.AttackSlashing, models.DefenseToxicSkin}:      1.1,
	{models.AttackSlashing, models.DefenseThickHide}:      1.2,

	{models.AttackVenom, models.DefenseHardShell}:      0.9,
	{models.AttackVenom, models.DefenseSegmentedArmor}: 1.2,
	{models.AttackVenom, models.DefenseEvasive}:        0.8,
	{models.AttackVenom, models.DefenseHairySpiny}:     1.0,
	{models.AttackVenom, models.DefenseToxicSkin}:      0.7,
	{models.AttackVenom, models.DefenseThickHide}:      1.4,

	{models.AttackChemical, models.DefenseHardShell}:      1.1,
	{models.AttackChemical, models.DefenseSegmentedArmor}: 0.9,
	{models.AttackChemical, models.DefenseEvasive}:        0.8,
	{models.AttackChemical, models.DefenseHairySpiny}:     1.3,
	{models.AttackChemical, models.DefenseToxicSkin}:      0.7,
	{models.AttackChemical, models.DefenseThickHide}:      1.2,

	{models.AttackGrappling, models.DefenseHardShell}:      1.2,
	{models.AttackGrappling, models.DefenseSegmentedArmor}: 0.9,
	{models.AttackGrappling, models.DefenseEvasive}:        0.7,
	{models.AttackGrappling, models.DefenseHairySpiny}:     0.8,
	{models.AttackGrappling, models.DefenseToxicSkin}:      1.1,
	{models.AttackGrappling, models.DefenseThickHide}:      1.3,
}

// MatchupMultiplier returns the multiplier for attackType hitting
// defenseType. Unknown or empty type on either side yields exactly 1.0.
func MatchupMultiplier(attack models.AttackType, defense models.DefenseType) float64 {
	if m, ok := matchupTable[matchupKey{attack, defense}]; ok {
		return m
	}
	return NeutralMultiplier
}

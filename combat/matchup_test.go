package combat

import (
	"testing"

	"github.com/Dosada05/bug-arena/models"
)

func TestMatchupMultiplier_KnownPairs(t *testing.T) {
	tests := []struct {
		attack  models.AttackType
		defense models.DefenseType
		want    float64
	}{
		{models.AttackPiercing, models.DefenseHardShell, 1.5},
		{models.AttackPiercing, models.DefenseThickHide, 0.7},
		{models.AttackCrushing, models.DefenseHardShell, 1.4},
		{models.AttackCrushing, models.DefenseEvasive, 0.7},
		{models.AttackVenom, models.DefenseToxicSkin, 0.7},
		{models.AttackVenom, models.DefenseThickHide, 1.4},
		{models.AttackGrappling, models.DefenseThickHide, 1.3},
	}
	for _, tt := range tests {
		if got := MatchupMultiplier(tt.attack, tt.defense); got != tt.want {
			t.Errorf("MatchupMultiplier(%s, %s) = %v, want %v", tt.attack, tt.defense, got, tt.want)
		}
	}
}

func TestMatchupMultiplier_UnknownPairIsNeutral(t *testing.T) {
	tests := []struct {
		name    string
		attack  models.AttackType
		defense models.DefenseType
	}{
		{"unknown attack", models.AttackType("sonic"), models.DefenseHardShell},
		{"unknown defense", models.AttackPiercing, models.DefenseType("mirror")},
		{"both unknown", models.AttackType(""), models.DefenseType("")},
		{"missing attack", models.AttackType(""), models.DefenseEvasive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchupMultiplier(tt.attack, tt.defense); got != NeutralMultiplier {
				t.Errorf("got %v, want neutral %v", got, NeutralMultiplier)
			}
		})
	}
}

func TestMatchupTable_FullGridWithinBounds(t *testing.T) {
	attacks := []models.AttackType{
		models.AttackPiercing, models.AttackCrushing, models.AttackSlashing,
		models.AttackVenom, models.AttackChemical, models.AttackGrappling,
	}
	defenses := []models.DefenseType{
		models.DefenseHardShell, models.DefenseSegmentedArmor, models.DefenseEvasive,
		models.DefenseHairySpiny, models.DefenseToxicSkin, models.DefenseThickHide,
	}
	for _, a := range attacks {
		for _, d := range defenses {
			if _, ok := matchupTable[matchupKey{a, d}]; !ok {
				t.Errorf("matchup table is missing pair (%s, %s)", a, d)
				continue
			}
			m := MatchupMultiplier(a, d)
			if m < 0.7 || m > 1.5 {
				t.Errorf("MatchupMultiplier(%s, %s) = %v, outside [0.7, 1.5]", a, d, m)
			}
		}
	}
}

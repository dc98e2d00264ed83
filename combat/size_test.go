package combat

import (
	"math"
	"testing"

	"github.com/Dosada05/bug-arena/models"
)

var allSizes = []models.SizeClass{
	models.SizeTiny, models.SizeSmall, models.SizeMedium,
	models.SizeLarge, models.SizeMassive,
}

func TestSizeMultipliers_ExplicitTable(t *testing.T) {
	tests := []struct {
		own, opp   models.SizeClass
		wantOwn    float64
	}{
		{models.SizeMassive, models.SizeTiny, 1.5},
		{models.SizeTiny, models.SizeMassive, 0.7},
		{models.SizeLarge, models.SizeTiny, 1.3},
		{models.SizeTiny, models.SizeLarge, 0.8},
		{models.SizeMedium, models.SizeTiny, 1.15},
	}
	for _, tt := range tests {
		got, _ := SizeMultipliers(tt.own, tt.opp, models.AttackCrushing, models.AttackCrushing)
		if got != tt.wantOwn {
			t.Errorf("SizeMultipliers(%s vs %s) own = %v, want %v", tt.own, tt.opp, got, tt.wantOwn)
		}
	}
}

func TestSizeMultipliers_FormulaFallback(t *testing.T) {
	tests := []struct {
		own, opp models.SizeClass
		want     float64
	}{
		{models.SizeMedium, models.SizeMedium, 1.0},
		{models.SizeLarge, models.SizeMedium, 1.15},
		{models.SizeLarge, models.SizeSmall, 1.30},
		{models.SizeMassive, models.SizeSmall, 1.40},
		{models.SizeMedium, models.SizeLarge, 1.0 / 1.15},
		{models.SizeSmall, models.SizeLarge, 1.0 / 1.30},
		{models.SizeSmall, models.SizeMassive, 1.0 / 1.40},
	}
	for _, tt := range tests {
		got, _ := SizeMultipliers(tt.own, tt.opp, models.AttackCrushing, models.AttackCrushing)
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("SizeMultipliers(%s vs %s) own = %v, want %v", tt.own, tt.opp, got, tt.want)
		}
	}
}

func TestSizeMultipliers_SizeAgnosticAlwaysNeutral(t *testing.T) {
	for _, agnostic := range []models.AttackType{models.AttackVenom, models.AttackChemical} {
		for _, own := range allSizes {
			for _, opp := range allSizes {
				mine, theirs := SizeMultipliers(own, opp, agnostic, models.AttackCrushing)
				if mine != NeutralMultiplier {
					t.Errorf("%s attacker (%s vs %s): own multiplier = %v, want 1.0", agnostic, own, opp, mine)
				}
				// Opponent is size-dependent and keeps the normal multiplier.
				want := sizeBaseMultiplier(opp, own)
				if theirs != want {
					t.Errorf("%s attacker (%s vs %s): opponent multiplier = %v, want %v", agnostic, own, opp, theirs, want)
				}
			}
		}
	}
}

func TestSizeMultipliers_BothAgnostic(t *testing.T) {
	mine, theirs := SizeMultipliers(models.SizeMassive, models.SizeTiny, models.AttackVenom, models.AttackChemical)
	if mine != NeutralMultiplier || theirs != NeutralMultiplier {
		t.Errorf("both agnostic: got (%v, %v), want (1.0, 1.0)", mine, theirs)
	}
}

func TestSizeMultipliers_UnknownSizeIsNeutral(t *testing.T) {
	tests := []struct {
		name     string
		own, opp models.SizeClass
	}{
		{"unknown own", models.SizeClass("gigantic"), models.SizeTiny},
		{"unknown opponent", models.SizeLarge, models.SizeClass("")},
		{"both unknown", models.SizeClass(""), models.SizeClass("colossal")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mine, theirs := SizeMultipliers(tt.own, tt.opp, models.AttackCrushing, models.AttackSlashing)
			if mine != NeutralMultiplier || theirs != NeutralMultiplier {
				t.Errorf("got (%v, %v), want (1.0, 1.0)", mine, theirs)
			}
		})
	}
}

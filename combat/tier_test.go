package combat

import (
	"testing"

	"github.com/Dosada05/bug-arena/models"
)

func TestClassifyTier(t *testing.T) {
	tests := []struct {
		power int
		want  models.Tier
	}{
		{300, models.TierUber},
		{270, models.TierUber},
		{269, models.TierOU},
		{240, models.TierOU},
		{239, models.TierUU},
		{200, models.TierUU},
		{199, models.TierRU},
		{160, models.TierRU},
		{159, models.TierNU},
		{120, models.TierNU},
		{119, models.TierZU},
		{0, models.TierZU},
	}
	for _, tt := range tests {
		if got := ClassifyTier(tt.power); got != tt.want {
			t.Errorf("ClassifyTier(%d) = %s, want %s", tt.power, got, tt.want)
		}
	}
}

func TestClassifyTier_GapFallsBackToLowestBand(t *testing.T) {
	// Values outside every configured band (negative, above the top cap)
	// must land in the lowest band instead of erroring.
	for _, power := range []int{-10, 301, 999} {
		if got := ClassifyTier(power); got != models.TierZU {
			t.Errorf("ClassifyTier(%d) = %s, want fallback %s", power, got, models.TierZU)
		}
	}
}

func TestTierBands_OrderedAndNonOverlapping(t *testing.T) {
	bands := TierBands()
	for i := 1; i < len(bands); i++ {
		prev, cur := bands[i-1], bands[i]
		if cur.MaxPower != prev.MinPower-1 {
			t.Errorf("bands %s and %s overlap or leave a gap: [%d,%d] then [%d,%d]",
				prev.Tier, cur.Tier, prev.MinPower, prev.MaxPower, cur.MinPower, cur.MaxPower)
		}
		if !cur.Tier.Less(prev.Tier) {
			t.Errorf("band order broken: %s should rank below %s", cur.Tier, prev.Tier)
		}
	}
}

func TestClassifyCombatant(t *testing.T) {
	c := &models.Combatant{Attack: 90, Defense: 90, Speed: 95}
	if got := ClassifyCombatant(c); got != models.TierUber {
		t.Errorf("ClassifyCombatant(275 power) = %s, want %s", got, models.TierUber)
	}
}

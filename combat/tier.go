package combat

import "github.com/Dosada05/bug-arena/models"

// TierBand is an inclusive [MinPower, MaxPower] range over the aggregate
// power attack+defense+speed (0-300 on the 0-100 stat scale).
type TierBand struct {
	Tier     models.Tier
	MinPower int
	MaxPower int
}

// tierBands are ordered strongest-first and must not overlap.
var tierBands = []TierBand{
	{models.TierUber, 270, 300},
	{models.TierOU, 240, 269},
	{models.TierUU, 200, 239},
	{models.TierRU, 160, 199},
	{models.TierNU, 120, 159},
	{models.TierZU, 0, 119},
}

// TierBands returns a copy of the configured bands, strongest first.
func TierBands() []TierBand {
	out := make([]TierBand, len(tierBands))
	copy(out, tierBands)
	return out
}

// ClassifyTier maps an aggregate power to its band. A configuration gap
// (no matching band) falls back to the lowest band rather than erroring.
func ClassifyTier(power int) models.Tier {
	for _, band := range tierBands {
		if power >= band.MinPower && power <= band.MaxPower {
			return band.Tier
		}
	}
	return models.TierZU
}

// ClassifyCombatant assigns the tier for a combatant's current stats.
func ClassifyCombatant(c *models.Combatant) models.Tier {
	return ClassifyTier(c.AggregatePower())
}

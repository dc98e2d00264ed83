package combat

import (
	"math"

	"github.com/Dosada05/bug-arena/models"
)

const (
	// drawEpsilon is the minimum adjusted-power difference required to
	// declare a non-draw outcome.
	drawEpsilon = 1e-3

	// zeroEpsilon guards the degenerate case of two zero-power combatants.
	zeroEpsilon = 1e-9

	// HiddenFactorTriggerDiff is the raw hidden-factor gap at and above
	// which a match is flagged as hidden-factor-triggered.
	HiddenFactorTriggerDiff = 2.0
)

// Result describes a single resolved fight.
type Result struct {
	// Winner is nil on a draw.
	Winner *models.Combatant
	Loser  *models.Combatant

	Power1 float64
	Power2 float64

	// HiddenFactorTriggered is set iff the raw hidden-factor gap between
	// the two sides is at least HiddenFactorTriggerDiff.
	HiddenFactorTriggered bool

	// HiddenAdvantage names the side whose secret advantage was decisive:
	// the winner, when the winner also holds the larger hidden factor.
	// Nil otherwise. The caller decides whether to request descriptive
	// text for that side.
	HiddenAdvantage *models.Combatant
}

// Draw reports whether the fight ended without a winner.
func (r *Result) Draw() bool { return r.Winner == nil }

// Resolve runs the full pipeline for a pair of combatants and decides the
// outcome. On a win the winner's win counter and the loser's loss counter
// are incremented in place; a draw leaves both untouched.
func (calc *Calculator) Resolve(c1, c2 *models.Combatant) (*Result, error) {
	if err := ValidateStats(c1); err != nil {
		return nil, err
	}
	if err := ValidateStats(c2); err != nil {
		return nil, err
	}

	p1, p2 := calc.AdjustedPowers(c1, c2)

	res := &Result{Power1: p1, Power2: p2}

	factorGap := math.Abs(models.ClampHiddenFactor(c1.HiddenFactor) - models.ClampHiddenFactor(c2.HiddenFactor))
	res.HiddenFactorTriggered = factorGap >= HiddenFactorTriggerDiff

	switch {
	case math.Abs(p1) < zeroEpsilon && math.Abs(p2) < zeroEpsilon:
		// Two zero-power combatants cannot beat each other.
	case math.Abs(p1-p2) <= drawEpsilon:
		// Within the tie threshold: draw, counters unchanged.
	case p1 > p2:
		res.Winner, res.Loser = c1, c2
	default:
		res.Winner, res.Loser = c2, c1
	}

	if res.Winner != nil {
		res.Winner.Wins++
		res.Loser.Losses++
		if res.HiddenFactorTriggered {
			other := c1
			if res.Winner == c1 {
				other = c2
			}
			if res.Winner.HiddenFactor > other.HiddenFactor {
				res.HiddenAdvantage = res.Winner
			}
		}
	}

	return res, nil
}

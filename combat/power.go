package combat

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/Dosada05/bug-arena/models"
)

// ErrInvalidStats is returned when a combatant enters resolution with stat
// data outside the declared 0-100 scale. Core stats are never silently
// defaulted.
var ErrInvalidStats = errors.New("combatant has invalid stat data")

// Weights of the visible stats in the base power formula.
const (
	attackWeight  = 2.0
	defenseWeight = 1.5
	speedWeight   = 1.2
	healthWeight  = 0.5

	// Hidden factor contributes at most +-10% of base power
	// (factor in [-5,+5] times this coefficient).
	hiddenFactorCoeff = 0.02

	// JitterSpread bounds the uniform jitter: each side draws a factor in
	// [1-JitterSpread, 1+JitterSpread], applied after all deterministic
	// modifiers so randomness only breaks near-ties.
	JitterSpread = 0.02
)

// JitterSource supplies the per-side random factor. Injectable so tests and
// what-if simulations can pin it to 1.0.
type JitterSource interface {
	Factor() float64
}

type neutralJitter struct{}

func (neutralJitter) Factor() float64 { return 1.0 }

// NeutralJitter always returns 1.0, disabling randomness entirely.
func NeutralJitter() JitterSource { return neutralJitter{} }

type uniformJitter struct {
	rng *rand.Rand
}

func (u uniformJitter) Factor() float64 {
	return 1.0 - JitterSpread + u.rng.Float64()*2*JitterSpread
}

// UniformJitter draws factors uniformly from [1-JitterSpread, 1+JitterSpread].
// The supplied rng must be safe for the caller's concurrency; see
// NewLockedSource for a shared source.
func UniformJitter(rng *rand.Rand) JitterSource {
	return uniformJitter{rng: rng}
}

type lockedSource struct {
	mu  sync.Mutex
	src rand.Source64
}

func (s *lockedSource) Int63() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Int63()
}

func (s *lockedSource) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Uint64()
}

func (s *lockedSource) Seed(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.src.Seed(seed)
}

// NewLockedSource returns a rand.Source64 safe for concurrent use, so one
// *rand.Rand can serve jitter draws and bracket shuffles from different
// goroutines.
func NewLockedSource(seed int64) rand.Source64 {
	return &lockedSource{src: rand.NewSource(seed).(rand.Source64)}
}

// Calculator computes base and adjusted power for a pair of combatants.
type Calculator struct {
	jitter JitterSource
}

func NewCalculator(jitter JitterSource) *Calculator {
	if jitter == nil {
		jitter = NeutralJitter()
	}
	return &Calculator{jitter: jitter}
}

// ValidateStats checks that every present stat sits on the declared scale.
// The hidden factor is not validated here: out-of-range values are clamped
// at write time, not rejected at resolution time.
func ValidateStats(c *models.Combatant) error {
	if c == nil {
		return fmt.Errorf("%w: combatant is nil", ErrInvalidStats)
	}
	check := func(name string, v int) error {
		if v < models.StatMin || v > models.StatMax {
			return fmt.Errorf("%w: %s=%d outside [%d,%d]", ErrInvalidStats, name, v, models.StatMin, models.StatMax)
		}
		return nil
	}
	if err := check("attack", c.Attack); err != nil {
		return err
	}
	if err := check("defense", c.Defense); err != nil {
		return err
	}
	if err := check("speed", c.Speed); err != nil {
		return err
	}
	if c.SpecialAttack != nil {
		if err := check("special_attack", *c.SpecialAttack); err != nil {
			return err
		}
	}
	if c.SpecialDefense != nil {
		if err := check("special_defense", *c.SpecialDefense); err != nil {
			return err
		}
	}
	if c.Health != nil {
		if err := check("health", *c.Health); err != nil {
			return err
		}
	}
	return nil
}

// BasePower is the weighted aggregate of the visible stats. Optional terms
// are simply omitted when absent.
func BasePower(c *models.Combatant) float64 {
	power := float64(c.Attack)*attackWeight +
		float64(c.Defense)*defenseWeight +
		float64(c.Speed)*speedWeight
	if c.SpecialAttack != nil {
		power += float64(*c.SpecialAttack)
	}
	if c.SpecialDefense != nil {
		power += float64(*c.SpecialDefense)
	}
	if c.Health != nil {
		power += float64(*c.Health) * healthWeight
	}
	return power
}

// AdjustedPowers runs the full modifier pipeline for both sides:
// base power, matchup multiplier, size multiplier, hidden factor, and an
// independent jitter draw per side applied last.
func (calc *Calculator) AdjustedPowers(c1, c2 *models.Combatant) (float64, float64) {
	p1 := BasePower(c1)
	p2 := BasePower(c2)

	p1 *= MatchupMultiplier(c1.AttackType, c2.DefenseType)
	p2 *= MatchupMultiplier(c2.AttackType, c1.DefenseType)

	size1, size2 := SizeMultipliers(c1.SizeClass, c2.SizeClass, c1.AttackType, c2.AttackType)
	p1 *= size1
	p2 *= size2

	p1 *= 1.0 + models.ClampHiddenFactor(c1.HiddenFactor)*hiddenFactorCoeff
	p2 *= 1.0 + models.ClampHiddenFactor(c2.HiddenFactor)*hiddenFactorCoeff

	p1 *= calc.jitter.Factor()
	p2 *= calc.jitter.Factor()

	return p1, p2
}

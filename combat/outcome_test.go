package combat

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/Dosada05/bug-arena/models"
)

func newTestRand() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

// scriptedJitter returns preset factors in order, then 1.0.
type scriptedJitter struct {
	factors []float64
	pos     int
}

func (s *scriptedJitter) Factor() float64 {
	if s.pos >= len(s.factors) {
		return 1.0
	}
	f := s.factors[s.pos]
	s.pos++
	return f
}

func TestResolve_IdenticalCombatantsDraw(t *testing.T) {
	calc := NewCalculator(NeutralJitter())

	a := baseCombatant(1)
	b := baseCombatant(2)

	res, err := calc.Resolve(a, b)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !res.Draw() {
		t.Fatalf("identical combatants with neutral jitter must draw, winner=%v", res.Winner.ID)
	}
	if a.Wins != 0 || a.Losses != 0 || b.Wins != 0 || b.Losses != 0 {
		t.Errorf("draw must leave counters unchanged: a=%d/%d b=%d/%d", a.Wins, a.Losses, b.Wins, b.Losses)
	}
	if res.HiddenFactorTriggered {
		t.Error("equal hidden factors must not trigger the flag")
	}
}

func TestResolve_MatchupAdvantageWins(t *testing.T) {
	calc := NewCalculator(NeutralJitter())

	// Piercing vs hard shell carries a 1.5 multiplier for side A.
	a := baseCombatant(1)
	a.AttackType = models.AttackPiercing
	b := baseCombatant(2)
	b.DefenseType = models.DefenseHardShell
	a.DefenseType = models.DefenseSegmentedArmor
	b.AttackType = models.AttackType("unknown") // neutral for B

	res, err := calc.Resolve(a, b)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if res.Winner != a {
		t.Fatalf("expected matchup-favored side to win")
	}
	if a.Wins != 1 || b.Losses != 1 {
		t.Errorf("counters not updated: a.Wins=%d b.Losses=%d", a.Wins, b.Losses)
	}
}

func TestResolve_SizeAdvantageWins(t *testing.T) {
	calc := NewCalculator(NeutralJitter())

	a := baseCombatant(1)
	a.SizeClass = models.SizeMassive
	b := baseCombatant(2)
	b.SizeClass = models.SizeTiny

	res, err := calc.Resolve(a, b)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if res.Winner != a {
		t.Fatal("massive crushing attacker must beat an otherwise equal tiny opponent")
	}
}

func TestResolve_HiddenFactorDecides(t *testing.T) {
	calc := NewCalculator(NeutralJitter())

	a := baseCombatant(1)
	a.HiddenFactor = 5.0
	b := baseCombatant(2)
	b.HiddenFactor = -5.0

	res, err := calc.Resolve(a, b)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if res.Winner != a {
		t.Fatal("side with +5.0 hidden factor must win against -5.0 on equal stats")
	}
	if !res.HiddenFactorTriggered {
		t.Error("gap of 10.0 must trigger the hidden-factor flag")
	}
	if res.HiddenAdvantage != a {
		t.Error("decisive hidden advantage must reference the winning side")
	}
}

func TestResolve_HiddenFactorTriggerThreshold(t *testing.T) {
	tests := []struct {
		name     string
		f1, f2   float64
		wantFlag bool
	}{
		{"gap below threshold", 1.0, -0.5, false},
		{"gap exactly at threshold", 1.0, -1.0, true},
		{"gap above threshold", 3.0, -2.0, true},
		{"no gap", 2.0, 2.0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := NewCalculator(NeutralJitter())
			a := baseCombatant(1)
			a.HiddenFactor = tt.f1
			b := baseCombatant(2)
			b.HiddenFactor = tt.f2

			res, err := calc.Resolve(a, b)
			if err != nil {
				t.Fatalf("Resolve returned error: %v", err)
			}
			if res.HiddenFactorTriggered != tt.wantFlag {
				t.Errorf("triggered = %v, want %v", res.HiddenFactorTriggered, tt.wantFlag)
			}
		})
	}
}

func TestResolve_NoAdvantageDetailWhenWinnerHasLowerFactor(t *testing.T) {
	calc := NewCalculator(NeutralJitter())

	// A wins on raw stats despite a far lower hidden factor.
	a := baseCombatant(1)
	a.Attack = 100
	a.Defense = 100
	a.Speed = 100
	a.HiddenFactor = -3.0
	b := baseCombatant(2)
	b.HiddenFactor = 3.0

	res, err := calc.Resolve(a, b)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if res.Winner != a {
		t.Fatal("expected the stronger side to win")
	}
	if !res.HiddenFactorTriggered {
		t.Error("gap of 6.0 must trigger the flag")
	}
	if res.HiddenAdvantage != nil {
		t.Error("winner with the lower factor must not be credited a secret advantage")
	}
}

func TestResolve_DominantSideWinsUnderWorstJitter(t *testing.T) {
	// A's deterministic advantage exceeds the maximum jitter swing, so A
	// wins even when A draws the worst factor and B the best.
	a := baseCombatant(1)
	a.Attack = 95
	b := baseCombatant(2)
	b.Attack = 60

	calc := NewCalculator(&scriptedJitter{factors: []float64{1.0 - JitterSpread, 1.0 + JitterSpread}})
	res, err := calc.Resolve(a, b)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if res.Winner != a {
		t.Fatal("dominant side must win regardless of jitter draw")
	}
}

func TestResolve_ZeroPowerDraw(t *testing.T) {
	calc := NewCalculator(NeutralJitter())

	a := &models.Combatant{ID: 1}
	b := &models.Combatant{ID: 2}

	res, err := calc.Resolve(a, b)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !res.Draw() {
		t.Fatal("two zero-power combatants must draw")
	}
}

func TestResolve_InvalidStatsRejected(t *testing.T) {
	calc := NewCalculator(NeutralJitter())

	a := baseCombatant(1)
	a.Attack = 250
	b := baseCombatant(2)

	if _, err := calc.Resolve(a, b); !errors.Is(err, ErrInvalidStats) {
		t.Fatalf("expected ErrInvalidStats, got %v", err)
	}
	if b.Wins != 0 && b.Losses != 0 {
		t.Error("failed resolution must not touch counters")
	}
}

func TestResolve_RandomJitterOnlyBreaksTies(t *testing.T) {
	// With real jitter and a deterministic edge wider than the spread the
	// favored side must win every time.
	rng := newTestRand()
	for i := 0; i < 200; i++ {
		a := baseCombatant(1)
		a.Attack = 90
		b := baseCombatant(2)
		b.Attack = 70

		calc := NewCalculator(UniformJitter(rng))
		res, err := calc.Resolve(a, b)
		if err != nil {
			t.Fatalf("Resolve returned error: %v", err)
		}
		if res.Winner != a {
			t.Fatalf("iteration %d: jitter flipped a decisive outcome", i)
		}
	}
}

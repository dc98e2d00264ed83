package combat

import (
	"errors"
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/Dosada05/bug-arena/models"
)

func intPtr(v int) *int { return &v }

func baseCombatant(id int) *models.Combatant {
	return &models.Combatant{
		ID:          id,
		Nickname:    "bug",
		Attack:      80,
		Defense:     50,
		Speed:       60,
		AttackType:  models.AttackCrushing,
		DefenseType: models.DefenseSegmentedArmor,
		SizeClass:   models.SizeMedium,
	}
}

func TestBasePower_CoreStatsOnly(t *testing.T) {
	c := baseCombatant(1)
	want := 80*2.0 + 50*1.5 + 60*1.2
	if got := BasePower(c); math.Abs(got-want) > 1e-9 {
		t.Errorf("BasePower = %v, want %v", got, want)
	}
}

func TestBasePower_OptionalTerms(t *testing.T) {
	c := baseCombatant(1)
	c.SpecialAttack = intPtr(40)
	c.SpecialDefense = intPtr(30)
	c.Health = intPtr(90)
	want := 80*2.0 + 50*1.5 + 60*1.2 + 40 + 30 + 90*0.5
	if got := BasePower(c); math.Abs(got-want) > 1e-9 {
		t.Errorf("BasePower with optional stats = %v, want %v", got, want)
	}
}

func TestAdjustedPowers_HiddenFactorBounds(t *testing.T) {
	calc := NewCalculator(NeutralJitter())

	a := baseCombatant(1)
	b := baseCombatant(2)
	a.HiddenFactor = models.HiddenFactorMax
	b.HiddenFactor = models.HiddenFactorMin

	p1, p2 := calc.AdjustedPowers(a, b)
	base := BasePower(a)
	if math.Abs(p1-base*1.10) > 1e-9 {
		t.Errorf("max hidden factor: got %v, want %v", p1, base*1.10)
	}
	if math.Abs(p2-base*0.90) > 1e-9 {
		t.Errorf("min hidden factor: got %v, want %v", p2, base*0.90)
	}
}

func TestAdjustedPowers_OutOfRangeHiddenFactorClamped(t *testing.T) {
	calc := NewCalculator(NeutralJitter())

	a := baseCombatant(1)
	b := baseCombatant(2)
	a.HiddenFactor = 50.0 // clamped to +5.0, never more than +10% power

	p1, _ := calc.AdjustedPowers(a, b)
	if want := BasePower(a) * 1.10; math.Abs(p1-want) > 1e-9 {
		t.Errorf("clamped hidden factor: got %v, want %v", p1, want)
	}
}

func TestValidateStats(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.Combatant)
		wantErr bool
	}{
		{"valid", func(c *models.Combatant) {}, false},
		{"attack too high", func(c *models.Combatant) { c.Attack = 101 }, true},
		{"negative defense", func(c *models.Combatant) { c.Defense = -1 }, true},
		{"speed too high", func(c *models.Combatant) { c.Speed = 500 }, true},
		{"bad optional health", func(c *models.Combatant) { c.Health = intPtr(1000) }, true},
		{"boundary values", func(c *models.Combatant) { c.Attack = 0; c.Defense = 100 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := baseCombatant(1)
			tt.mutate(c)
			err := ValidateStats(c)
			if tt.wantErr && !errors.Is(err, ErrInvalidStats) {
				t.Errorf("expected ErrInvalidStats, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLockedSource_ConcurrentJitterAndShuffle(t *testing.T) {
	rng := rand.New(NewLockedSource(42))
	jitter := UniformJitter(rng)

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				f := jitter.Factor()
				if f < 1.0-JitterSpread || f > 1.0+JitterSpread {
					t.Errorf("jitter factor %v outside [%v, %v]", f, 1.0-JitterSpread, 1.0+JitterSpread)
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			order := []int{1, 2, 3, 4, 5, 6, 7, 8}
			for i := 0; i < 500; i++ {
				rng.Shuffle(len(order), func(a, b int) { order[a], order[b] = order[b], order[a] })
			}
		}()
	}
	wg.Wait()
}

func TestUniformJitter_StaysWithinSpread(t *testing.T) {
	src := UniformJitter(newTestRand())
	for i := 0; i < 1000; i++ {
		f := src.Factor()
		if f < 1.0-JitterSpread || f > 1.0+JitterSpread {
			t.Fatalf("jitter factor %v outside [%v, %v]", f, 1.0-JitterSpread, 1.0+JitterSpread)
		}
	}
}

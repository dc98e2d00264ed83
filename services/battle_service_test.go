package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/Dosada05/bug-arena/combat"
	"github.com/Dosada05/bug-arena/models"
	"github.com/Dosada05/bug-arena/repositories"
)

type fakeCombatantRepo struct {
	repositories.CombatantRepository

	combatants map[int]*models.Combatant
}

func (f *fakeCombatantRepo) GetByID(ctx context.Context, id int) (*models.Combatant, error) {
	c, ok := f.combatants[id]
	if !ok {
		return nil, repositories.ErrCombatantNotFound
	}
	return c, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func predictFixture() (BattleService, *fakeCombatantRepo) {
	repo := &fakeCombatantRepo{combatants: map[int]*models.Combatant{
		1: {
			ID: 1, Nickname: "mandible", Attack: 90, Defense: 70, Speed: 60,
			AttackType: models.AttackCrushing, DefenseType: models.DefenseHardShell,
			SizeClass: models.SizeMedium, StatsFinal: true,
		},
		2: {
			ID: 2, Nickname: "gnat", Attack: 20, Defense: 15, Speed: 40,
			AttackType: models.AttackPiercing, DefenseType: models.DefenseEvasive,
			SizeClass: models.SizeTiny, StatsFinal: true,
		},
		3: {
			ID: 3, Nickname: "broken", Attack: 150, Defense: 50, Speed: 50,
			AttackType: models.AttackSlashing, DefenseType: models.DefenseEvasive,
			SizeClass: models.SizeSmall, StatsFinal: true,
		},
	}}
	svc := NewBattleService(nil, repo, nil, combat.NewCalculator(combat.NeutralJitter()), nil, discardLogger())
	return svc, repo
}

func TestPredictWinnerWithoutPersistence(t *testing.T) {
	svc, repo := predictFixture()

	prediction, err := svc.Predict(context.Background(), 1, 2, true)
	if err != nil {
		t.Fatalf("Predict returned error: %v", err)
	}
	if prediction.WinnerID == nil || *prediction.WinnerID != 1 {
		t.Fatalf("expected combatant 1 to win, got %+v", prediction)
	}
	if prediction.Draw {
		t.Fatal("decisive prediction flagged as draw")
	}
	if prediction.Power1 <= prediction.Power2 {
		t.Fatalf("winner power %f not above loser power %f", prediction.Power1, prediction.Power2)
	}

	// Прогон не трогает счётчики.
	if repo.combatants[1].Wins != 0 || repo.combatants[2].Losses != 0 {
		t.Fatalf("prediction mutated records: wins=%d losses=%d",
			repo.combatants[1].Wins, repo.combatants[2].Losses)
	}
}

func TestPredictIdenticalCombatantsDraw(t *testing.T) {
	svc, repo := predictFixture()
	clone := *repo.combatants[1]
	clone.ID = 4
	repo.combatants[4] = &clone

	prediction, err := svc.Predict(context.Background(), 1, 4, true)
	if err != nil {
		t.Fatalf("Predict returned error: %v", err)
	}
	if !prediction.Draw || prediction.WinnerID != nil {
		t.Fatalf("identical combatants should draw, got %+v", prediction)
	}
}

func TestPredictSelfBattleRejected(t *testing.T) {
	svc, _ := predictFixture()
	if _, err := svc.Predict(context.Background(), 1, 1, true); !errors.Is(err, ErrCombatantSelfBattle) {
		t.Fatalf("expected ErrCombatantSelfBattle, got %v", err)
	}
}

func TestPredictUnknownCombatant(t *testing.T) {
	svc, _ := predictFixture()
	if _, err := svc.Predict(context.Background(), 1, 99, true); !errors.Is(err, ErrCombatantNotFound) {
		t.Fatalf("expected ErrCombatantNotFound, got %v", err)
	}
}

func TestPredictInvalidStatsRejected(t *testing.T) {
	svc, _ := predictFixture()
	if _, err := svc.Predict(context.Background(), 1, 3, true); !errors.Is(err, ErrCombatantStatsInvalid) {
		t.Fatalf("expected ErrCombatantStatsInvalid, got %v", err)
	}
}

func TestHiddenFactorDetailUsesReason(t *testing.T) {
	reason := "unusually aggressive specimen"
	c := &models.Combatant{ID: 5, Nickname: "ripper", HiddenFactorReason: &reason}
	got := hiddenFactorDetail(c)
	want := "hidden advantage of ripper was decisive: unusually aggressive specimen"
	if got != want {
		t.Fatalf("detail = %q, want %q", got, want)
	}

	c.HiddenFactorReason = nil
	if got := hiddenFactorDetail(c); got != "hidden advantage of ripper was decisive" {
		t.Fatalf("detail without reason = %q", got)
	}
}

func TestCombatantLockerPairOrdering(t *testing.T) {
	locker := newCombatantLocker()

	// Перекрёстный порядок аргументов не должен приводить к дедлоку.
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			unlock := locker.LockPair(1, 2)
			unlock()
		}()
		go func() {
			defer wg.Done()
			unlock := locker.LockPair(2, 1)
			unlock()
		}()
	}
	wg.Wait()
}

func TestCombatantLockerSamePair(t *testing.T) {
	locker := newCombatantLocker()
	unlock := locker.LockPair(3, 3)
	unlock()
	// Повторный захват после освобождения не блокируется.
	unlock = locker.LockPair(3, 3)
	unlock()
}

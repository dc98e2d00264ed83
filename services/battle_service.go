package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/bug-arena/combat"
	"github.com/Dosada05/bug-arena/models"
	"github.com/Dosada05/bug-arena/narrative"
	"github.com/Dosada05/bug-arena/repositories"
)

// ResolveOutcome - результат разрешения боя вместе с записью и деталями
// расчёта. HiddenFactorDetails заполняется только для привилегированного
// представления.
type ResolveOutcome struct {
	Battle *models.Battle `json:"battle"`
	Result *combat.Result `json:"-"`
}

// PredictionResult - исход what-if прогона без персистентности.
type PredictionResult struct {
	Combatant1ID          int     `json:"combatant1_id"`
	Combatant2ID          int     `json:"combatant2_id"`
	WinnerID              *int    `json:"winner_id,omitempty"`
	Power1                float64 `json:"power1"`
	Power2                float64 `json:"power2"`
	Draw                  bool    `json:"draw"`
	HiddenFactorTriggered bool    `json:"hidden_factor_triggered"`
}

type BattleService interface {
	// ResolveExhibition проводит прямой бой вне турнира.
	ResolveExhibition(ctx context.Context, combatant1ID, combatant2ID int) (*ResolveOutcome, error)
	GetBattle(ctx context.Context, id int) (*models.Battle, error)
	ListByCombatant(ctx context.Context, combatantID, limit, offset int) ([]*models.Battle, error)
	// Predict прогоняет конвейер расчёта без записи: счётчики не меняются.
	// neutralJitter=true отключает случайность для воспроизводимого ответа.
	Predict(ctx context.Context, combatant1ID, combatant2ID int, neutralJitter bool) (*PredictionResult, error)
	// ResolveForMatch - бой в рамках турнирной сетки.
	ResolveForMatch(ctx context.Context, combatant1ID, combatant2ID, tournamentID, roundNumber int) (*ResolveOutcome, error)
}

type battleService struct {
	db            *sql.DB
	combatantRepo repositories.CombatantRepository
	battleRepo    repositories.BattleRepository
	calc          *combat.Calculator
	neutralCalc   *combat.Calculator
	narrator      narrative.Generator
	locker        *combatantLocker
	logger        *slog.Logger
}

func NewBattleService(
	db *sql.DB,
	combatantRepo repositories.CombatantRepository,
	battleRepo repositories.BattleRepository,
	calc *combat.Calculator,
	narrator narrative.Generator,
	logger *slog.Logger,
) BattleService {
	return &battleService{
		db:            db,
		combatantRepo: combatantRepo,
		battleRepo:    battleRepo,
		calc:          calc,
		neutralCalc:   combat.NewCalculator(combat.NeutralJitter()),
		narrator:      narrator,
		locker:        newCombatantLocker(),
		logger:        logger,
	}
}

func (s *battleService) ResolveExhibition(ctx context.Context, combatant1ID, combatant2ID int) (*ResolveOutcome, error) {
	return s.resolve(ctx, combatant1ID, combatant2ID, nil, nil)
}

// resolve - общий путь для выставочных и турнирных боёв. Бой и инкременты
// счётчиков фиксируются одной транзакцией; нарратив никогда не отменяет
// уже разрешённый исход.
func (s *battleService) resolve(ctx context.Context, combatant1ID, combatant2ID int, tournamentID, roundNumber *int) (*ResolveOutcome, error) {
	if combatant1ID == combatant2ID {
		return nil, ErrCombatantSelfBattle
	}

	unlock := s.locker.LockPair(combatant1ID, combatant2ID)
	defer unlock()

	c1, err := s.combatantRepo.GetByID(ctx, combatant1ID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	c2, err := s.combatantRepo.GetByID(ctx, combatant2ID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	result, err := s.calc.Resolve(c1, c2)
	if err != nil {
		if errors.Is(err, combat.ErrInvalidStats) {
			return nil, fmt.Errorf("%w: %v", ErrCombatantStatsInvalid, err)
		}
		return nil, fmt.Errorf("failed to resolve battle: %w", err)
	}

	battle := &models.Battle{
		Combatant1ID:          combatant1ID,
		Combatant2ID:          combatant2ID,
		HiddenFactorTriggered: result.HiddenFactorTriggered,
		TournamentID:          tournamentID,
		RoundNumber:           roundNumber,
	}
	if result.Winner != nil {
		battle.WinnerID = intPtr(result.Winner.ID)
	}
	if result.HiddenAdvantage != nil {
		detail := hiddenFactorDetail(result.HiddenAdvantage)
		battle.HiddenFactorDetails = &detail
	}

	text := s.buildNarrative(ctx, c1, c2, result)
	battle.Narrative = &text

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin battle transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.logger.ErrorContext(ctx, "battle transaction rollback failed", slog.Any("error", rbErr))
			}
		}
	}()

	if err := s.battleRepo.Create(ctx, tx, battle); err != nil {
		return nil, mapRepositoryError(err)
	}
	if result.Winner != nil {
		if err := s.combatantRepo.UpdateRecord(ctx, tx, result.Winner.ID, 1, 0); err != nil {
			return nil, mapRepositoryError(err)
		}
		if err := s.combatantRepo.UpdateRecord(ctx, tx, result.Loser.ID, 0, 1); err != nil {
			return nil, mapRepositoryError(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit battle transaction: %w", err)
	}
	committed = true

	return &ResolveOutcome{Battle: battle, Result: result}, nil
}

func (s *battleService) buildNarrative(ctx context.Context, c1, c2 *models.Combatant, result *combat.Result) string {
	input := narrative.Input{
		Combatant1: c1,
		Combatant2: c2,
		Power1:     result.Power1,
		Power2:     result.Power2,
	}
	if result.Winner != nil {
		input.WinnerID = intPtr(result.Winner.ID)
	}

	if s.narrator != nil {
		text, err := s.narrator.Generate(ctx, input)
		if err == nil {
			return text
		}
		s.logger.WarnContext(ctx, "narrative service failed, using fallback",
			slog.Int("combatant1_id", c1.ID),
			slog.Int("combatant2_id", c2.ID),
			slog.Any("error", err))
	}
	return narrative.Fallback(input)
}

func hiddenFactorDetail(advantage *models.Combatant) string {
	if advantage.HiddenFactorReason != nil && *advantage.HiddenFactorReason != "" {
		return fmt.Sprintf("hidden advantage of %s was decisive: %s", advantage.Nickname, *advantage.HiddenFactorReason)
	}
	return fmt.Sprintf("hidden advantage of %s was decisive", advantage.Nickname)
}

func (s *battleService) GetBattle(ctx context.Context, id int) (*models.Battle, error) {
	battle, err := s.battleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return battle, nil
}

func (s *battleService) ListByCombatant(ctx context.Context, combatantID, limit, offset int) ([]*models.Battle, error) {
	if limit <= 0 {
		limit = 20
	}
	battles, err := s.battleRepo.ListByCombatant(ctx, combatantID, limit, offset)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return battles, nil
}

func (s *battleService) Predict(ctx context.Context, combatant1ID, combatant2ID int, neutralJitter bool) (*PredictionResult, error) {
	if combatant1ID == combatant2ID {
		return nil, ErrCombatantSelfBattle
	}
	c1, err := s.combatantRepo.GetByID(ctx, combatant1ID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	c2, err := s.combatantRepo.GetByID(ctx, combatant2ID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	// Resolve мутирует счётчики победителя: прогон выполняется на копиях.
	copy1, copy2 := *c1, *c2
	calc := s.calc
	if neutralJitter {
		calc = s.neutralCalc
	}
	result, err := calc.Resolve(&copy1, &copy2)
	if err != nil {
		if errors.Is(err, combat.ErrInvalidStats) {
			return nil, fmt.Errorf("%w: %v", ErrCombatantStatsInvalid, err)
		}
		return nil, fmt.Errorf("failed to run prediction: %w", err)
	}

	prediction := &PredictionResult{
		Combatant1ID:          combatant1ID,
		Combatant2ID:          combatant2ID,
		Power1:                result.Power1,
		Power2:                result.Power2,
		Draw:                  result.Draw(),
		HiddenFactorTriggered: result.HiddenFactorTriggered,
	}
	if result.Winner != nil {
		prediction.WinnerID = intPtr(result.Winner.ID)
	}
	return prediction, nil
}

// ResolveForMatch используется турнирным сервисом: тот же путь, что и
// выставочный бой, но с привязкой к турниру и раунду.
func (s *battleService) ResolveForMatch(ctx context.Context, combatant1ID, combatant2ID, tournamentID, roundNumber int) (*ResolveOutcome, error) {
	return s.resolve(ctx, combatant1ID, combatant2ID, intPtr(tournamentID), intPtr(roundNumber))
}

package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"time"

	"github.com/Dosada05/bug-arena/brackets"
	"github.com/Dosada05/bug-arena/models"
	"github.com/Dosada05/bug-arena/repositories"
	"golang.org/x/sync/errgroup"
)

type CreateTournamentInput struct {
	Name                 string       `json:"name"`
	StartDate            time.Time    `json:"start_date"`
	TierRestriction      *models.Tier `json:"tier_restriction"`
	MaxParticipants      *int         `json:"max_participants"`
	RegistrationDeadline *time.Time   `json:"registration_deadline"`
}

// ApplyResult - итог подачи заявки: сама заявка (если допущена) и полный
// вердикт проверки допуска с причинами и предупреждениями.
type ApplyResult struct {
	Application *models.Application `json:"application,omitempty"`
	Eligibility *EligibilityResult  `json:"eligibility"`
}

// MatchReport - итог разрешения матча сетки.
type MatchReport struct {
	Match  *models.TournamentMatch `json:"match"`
	Battle *models.Battle          `json:"battle"`
	// Draw: исход не зафиксирован, матч нужно переиграть.
	Draw bool `json:"draw"`
	// TournamentComplete: это был финал, победитель турнира записан.
	TournamentComplete bool `json:"tournament_complete"`
}

// RoundView группирует матчи одного раунда для выдачи сетки.
type RoundView struct {
	RoundNumber int                       `json:"round_number"`
	Matches     []*models.TournamentMatch `json:"matches"`
}

type BracketView struct {
	Tournament *models.Tournament    `json:"tournament"`
	Entrants   []*models.Application `json:"entrants"`
	Rounds     []RoundView           `json:"rounds"`
}

type TournamentService interface {
	Create(ctx context.Context, actor *models.User, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]*models.Tournament, error)

	// Apply подаёт бойца на турнир. Допущенные заявки одобряются сразу.
	Apply(ctx context.Context, actor *models.User, tournamentID, combatantID int) (*ApplyResult, error)
	ReviewApplication(ctx context.Context, actor *models.User, applicationID int, approve bool) (*models.Application, error)
	WithdrawApplication(ctx context.Context, actor *models.User, applicationID int) error

	// Start сеет одобренных участников, строит сетку и активирует турнир.
	// Сетка целиком создаётся одной транзакцией: частичного состояния не бывает.
	Start(ctx context.Context, actor *models.User, tournamentID int) (*BracketView, error)

	// ReportMatch разрешает матч сетки: бой, фиксация победителя,
	// продвижение в следующий матч (слот 1 раньше слота 2), финал
	// завершает турнир.
	ReportMatch(ctx context.Context, actor *models.User, tournamentID, matchID int) (*MatchReport, error)

	GetBracket(ctx context.Context, tournamentID int) (*BracketView, error)

	// AutoCloseRegistrations - периметр планировщика: турниры с истекшим
	// дедлайном стартуют, а при нехватке участников отменяются.
	AutoCloseRegistrations(ctx context.Context, now time.Time) error
}

type tournamentService struct {
	db              *sql.DB
	tournamentRepo  repositories.TournamentRepository
	applicationRepo repositories.ApplicationRepository
	matchRepo       repositories.TournamentMatchRepository
	combatantRepo   repositories.CombatantRepository
	battles         BattleService
	eligibility     EligibilityChecker
	generator       brackets.BracketGenerator
	hub             *brackets.Hub
	rng             *rand.Rand
	logger          *slog.Logger
}

func NewTournamentService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	applicationRepo repositories.ApplicationRepository,
	matchRepo repositories.TournamentMatchRepository,
	combatantRepo repositories.CombatantRepository,
	battles BattleService,
	eligibility EligibilityChecker,
	generator brackets.BracketGenerator,
	hub *brackets.Hub,
	rng *rand.Rand,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		db:              db,
		tournamentRepo:  tournamentRepo,
		applicationRepo: applicationRepo,
		matchRepo:       matchRepo,
		combatantRepo:   combatantRepo,
		battles:         battles,
		eligibility:     eligibility,
		generator:       generator,
		hub:             hub,
		rng:             rng,
		logger:          logger,
	}
}

func (s *tournamentService) Create(ctx context.Context, actor *models.User, input CreateTournamentInput) (*models.Tournament, error) {
	if actor == nil {
		return nil, ErrForbiddenOperation
	}
	if input.Name == "" {
		return nil, fmt.Errorf("%w: tournament name is required", ErrValidationFailed)
	}
	if input.StartDate.IsZero() {
		return nil, fmt.Errorf("%w: tournament start date is required", ErrValidationFailed)
	}
	if input.MaxParticipants != nil && *input.MaxParticipants < 2 {
		return nil, ErrTournamentInvalidCapacity
	}
	if input.RegistrationDeadline != nil && input.RegistrationDeadline.After(input.StartDate) {
		return nil, ErrTournamentInvalidDeadline
	}
	if input.TierRestriction != nil && !input.TierRestriction.Valid() {
		return nil, fmt.Errorf("%w: unknown tier %q", ErrValidationFailed, *input.TierRestriction)
	}

	t := &models.Tournament{
		Name:                 input.Name,
		Status:               models.TournamentStatusRegistration,
		StartDate:            input.StartDate,
		TierRestriction:      input.TierRestriction,
		MaxParticipants:      input.MaxParticipants,
		RegistrationDeadline: input.RegistrationDeadline,
		CreatedByID:          actor.ID,
	}
	if err := s.tournamentRepo.Create(ctx, t); err != nil {
		return nil, mapRepositoryError(err)
	}
	return t, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return t, nil
}

func (s *tournamentService) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]*models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx, filter)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return tournaments, nil
}

func (s *tournamentService) Apply(ctx context.Context, actor *models.User, tournamentID, combatantID int) (*ApplyResult, error) {
	if actor == nil {
		return nil, ErrForbiddenOperation
	}
	t, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	combatant, err := s.combatantRepo.GetByID(ctx, combatantID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if combatant.OwnerID != actor.ID && actor.Role != models.RoleAdmin {
		return nil, ErrForbiddenOperation
	}

	verdict, err := s.eligibility.Check(ctx, t, combatant, time.Now())
	if err != nil {
		return nil, fmt.Errorf("eligibility check failed: %w", err)
	}
	if !verdict.Eligible {
		return &ApplyResult{Eligibility: verdict}, ErrCombatantNotEligible
	}

	// Допущенные заявки одобряются автоматически.
	now := time.Now()
	app := &models.Application{
		TournamentID: tournamentID,
		CombatantID:  combatantID,
		UserID:       actor.ID,
		Status:       models.ApplicationApproved,
		ReviewedAt:   &now,
	}
	if err := s.applicationRepo.Create(ctx, app); err != nil {
		return nil, mapRepositoryError(err)
	}
	app.Combatant = combatant
	return &ApplyResult{Application: app, Eligibility: verdict}, nil
}

func (s *tournamentService) ReviewApplication(ctx context.Context, actor *models.User, applicationID int, approve bool) (*models.Application, error) {
	if actor == nil || !actor.Role.CanViewHidden() {
		return nil, ErrForbiddenOperation
	}
	app, err := s.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if app.Status != models.ApplicationPending && app.Status != models.ApplicationApproved {
		return nil, ErrApplicationNotPending
	}

	status := models.ApplicationRejected
	if approve {
		status = models.ApplicationApproved
	}
	now := time.Now()
	if err := s.applicationRepo.UpdateStatus(ctx, applicationID, status, intPtr(actor.ID), now); err != nil {
		return nil, mapRepositoryError(err)
	}
	app.Status = status
	app.ReviewedAt = &now
	app.ReviewedByID = intPtr(actor.ID)
	return app, nil
}

func (s *tournamentService) WithdrawApplication(ctx context.Context, actor *models.User, applicationID int) error {
	if actor == nil {
		return ErrForbiddenOperation
	}
	app, err := s.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		return mapRepositoryError(err)
	}
	if app.UserID != actor.ID && actor.Role != models.RoleAdmin {
		return ErrForbiddenOperation
	}
	t, err := s.tournamentRepo.GetByID(ctx, app.TournamentID)
	if err != nil {
		return mapRepositoryError(err)
	}
	if t.Status != models.TournamentStatusRegistration {
		return ErrRegistrationNotOpen
	}
	return mapRepositoryError(
		s.applicationRepo.UpdateStatus(ctx, applicationID, models.ApplicationWithdrawn, intPtr(actor.ID), time.Now()))
}

func (s *tournamentService) canManage(actor *models.User, t *models.Tournament) bool {
	if actor == nil {
		return false
	}
	return actor.ID == t.CreatedByID || actor.Role.CanViewHidden()
}

func (s *tournamentService) Start(ctx context.Context, actor *models.User, tournamentID int) (*BracketView, error) {
	t, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if !s.canManage(actor, t) {
		return nil, ErrForbiddenOperation
	}
	if t.Status != models.TournamentStatusRegistration {
		return nil, fmt.Errorf("%w: tournament is %s", ErrTournamentInvalidStatusTransition, t.Status)
	}

	approved := models.ApplicationApproved
	applications, err := s.applicationRepo.ListByTournament(ctx, tournamentID, &approved, true)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if len(applications) < 2 {
		return nil, ErrInsufficientParticipants
	}

	entrants := make([]brackets.Entrant, 0, len(applications))
	appByCombatant := make(map[int]*models.Application, len(applications))
	for _, app := range applications {
		if app.Combatant == nil {
			return nil, fmt.Errorf("application %d is missing its combatant", app.ID)
		}
		entrants = append(entrants, brackets.Entrant{
			CombatantID: app.CombatantID,
			Power:       app.Combatant.AggregatePower(),
		})
		appByCombatant[app.CombatantID] = app
	}
	seeded := brackets.SeedEntrants(entrants)

	generated, err := s.generator.GenerateBracket(ctx, brackets.GenerateBracketParams{
		Entrants: entrants,
		Rand:     s.rng,
	})
	if err != nil {
		if errors.Is(err, brackets.ErrInsufficientParticipants) {
			return nil, ErrInsufficientParticipants
		}
		return nil, fmt.Errorf("bracket generation failed: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin bracket transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.logger.ErrorContext(ctx, "bracket transaction rollback failed", slog.Any("error", rbErr))
			}
		}
	}()

	// Сброс остатков предыдущей неудачной попытки старта.
	if err := s.matchRepo.DeleteByTournament(ctx, tx, tournamentID); err != nil {
		return nil, err
	}

	for _, e := range seeded {
		app, ok := appByCombatant[e.CombatantID]
		if !ok {
			return nil, fmt.Errorf("seeded combatant %d has no application", e.CombatantID)
		}
		if err := s.applicationRepo.UpdateSeedNumber(ctx, tx, app.ID, e.Seed); err != nil {
			return nil, mapRepositoryError(err)
		}
		app.SeedNumber = intPtr(e.Seed)
	}

	persisted, err := s.persistBracket(ctx, tx, tournamentID, generated)
	if err != nil {
		return nil, err
	}

	if err := s.tournamentRepo.UpdateStatus(ctx, tx, tournamentID, models.TournamentStatusActive); err != nil {
		return nil, mapRepositoryError(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit bracket transaction: %w", err)
	}
	committed = true

	t.Status = models.TournamentStatusActive
	view := buildBracketView(t, applications, persisted)

	if s.hub != nil {
		s.hub.BroadcastToRoom(strconv.Itoa(tournamentID), brackets.WebSocketMessage{
			Type:    brackets.MessageBracketGenerated,
			Payload: view,
			RoomID:  strconv.Itoa(tournamentID),
		})
	}
	return view, nil
}

// persistBracket пишет сгенерированное дерево в БД. Поздние раунды
// создаются первыми, чтобы NextMatchID ранних уже существовал.
func (s *tournamentService) persistBracket(ctx context.Context, tx repositories.SQLExecutor, tournamentID int, generated []*brackets.BracketMatch) ([]*models.TournamentMatch, error) {
	now := time.Now()
	idByCoord := make(map[[2]int]int, len(generated))
	persisted := make([]*models.TournamentMatch, 0, len(generated))

	for i := len(generated) - 1; i >= 0; i-- {
		g := generated[i]
		m := &models.TournamentMatch{
			TournamentID: tournamentID,
			RoundNumber:  g.Round,
			MatchNumber:  g.Order,
			Combatant1ID: g.Combatant1ID,
			Combatant2ID: g.Combatant2ID,
			IsBye:        g.IsBye,
		}
		if g.HasNext() {
			nextID, ok := idByCoord[[2]int{g.NextRound, g.NextOrder}]
			if !ok {
				return nil, fmt.Errorf("bracket persistence inconsistency: missing next match R%dM%d", g.NextRound, g.NextOrder)
			}
			m.NextMatchID = intPtr(nextID)
		}
		if g.IsBye && g.ByeCombatantID != nil {
			// Единственный участник проходит без боя: матч закрыт сразу.
			m.WinnerID = g.ByeCombatantID
			completed := now
			m.CompletedAt = &completed
		}
		if err := s.matchRepo.Create(ctx, tx, m); err != nil {
			return nil, err
		}
		idByCoord[[2]int{g.Round, g.Order}] = m.ID
		persisted = append(persisted, m)
	}

	// Восстановление порядка раунд/номер после обратного создания.
	for i, j := 0, len(persisted)-1; i < j; i, j = i+1, j-1 {
		persisted[i], persisted[j] = persisted[j], persisted[i]
	}
	return persisted, nil
}

func (s *tournamentService) ReportMatch(ctx context.Context, actor *models.User, tournamentID, matchID int) (*MatchReport, error) {
	t, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if !s.canManage(actor, t) {
		return nil, ErrForbiddenOperation
	}
	if t.Status != models.TournamentStatusActive {
		return nil, ErrTournamentNotActive
	}

	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if match.TournamentID != tournamentID {
		return nil, ErrMatchNotFound
	}
	if match.WinnerID != nil {
		return nil, ErrMatchAlreadyResolved
	}
	if match.Combatant1ID == nil || match.Combatant2ID == nil {
		return nil, ErrMatchNotReady
	}

	outcome, err := s.battles.ResolveForMatch(ctx, *match.Combatant1ID, *match.Combatant2ID, tournamentID, match.RoundNumber)
	if err != nil {
		return nil, err
	}

	report := &MatchReport{Match: match, Battle: outcome.Battle}
	if outcome.Battle.WinnerID == nil {
		// Ничья в сетке не фиксируется: бой записан, матч ждёт переигровки.
		report.Draw = true
		return report, nil
	}
	winnerID := *outcome.Battle.WinnerID

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin match transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.logger.ErrorContext(ctx, "match transaction rollback failed", slog.Any("error", rbErr))
			}
		}
	}()

	now := time.Now()
	if err := s.matchRepo.SetWinner(ctx, tx, matchID, winnerID, intPtr(outcome.Battle.ID), now); err != nil {
		return nil, mapRepositoryError(err)
	}

	if match.NextMatchID != nil {
		if err := s.matchRepo.FillNextSlot(ctx, tx, *match.NextMatchID, winnerID); err != nil {
			return nil, mapRepositoryError(err)
		}
	} else {
		// Финал: победитель матча - победитель турнира.
		if err := s.tournamentRepo.SetWinner(ctx, tx, tournamentID, winnerID, now); err != nil {
			return nil, mapRepositoryError(err)
		}
		report.TournamentComplete = true
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit match transaction: %w", err)
	}
	committed = true

	match.WinnerID = &winnerID
	match.BattleID = intPtr(outcome.Battle.ID)
	match.CompletedAt = &now

	if s.hub != nil {
		room := strconv.Itoa(tournamentID)
		s.hub.BroadcastToRoom(room, brackets.WebSocketMessage{
			Type:    brackets.MessageMatchResolved,
			Payload: report,
			RoomID:  room,
		})
		if report.TournamentComplete {
			s.hub.BroadcastToRoom(room, brackets.WebSocketMessage{
				Type:    brackets.MessageTournamentWinner,
				Payload: map[string]int{"tournament_id": tournamentID, "winner_combatant_id": winnerID},
				RoomID:  room,
			})
		}
	}
	return report, nil
}

func (s *tournamentService) GetBracket(ctx context.Context, tournamentID int) (*BracketView, error) {
	t, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	var (
		applications []*models.Application
		matches      []*models.TournamentMatch
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		approved := models.ApplicationApproved
		var listErr error
		applications, listErr = s.applicationRepo.ListByTournament(gctx, tournamentID, &approved, true)
		return listErr
	})
	g.Go(func() error {
		var listErr error
		matches, listErr = s.matchRepo.ListByTournament(gctx, tournamentID)
		return listErr
	})
	if err := g.Wait(); err != nil {
		return nil, mapRepositoryError(err)
	}

	return buildBracketView(t, applications, matches), nil
}

func buildBracketView(t *models.Tournament, applications []*models.Application, matches []*models.TournamentMatch) *BracketView {
	view := &BracketView{Tournament: t, Entrants: applications}

	byRound := make(map[int][]*models.TournamentMatch)
	maxRound := 0
	for _, m := range matches {
		byRound[m.RoundNumber] = append(byRound[m.RoundNumber], m)
		if m.RoundNumber > maxRound {
			maxRound = m.RoundNumber
		}
	}
	for r := 1; r <= maxRound; r++ {
		view.Rounds = append(view.Rounds, RoundView{RoundNumber: r, Matches: byRound[r]})
	}
	return view
}

func (s *tournamentService) AutoCloseRegistrations(ctx context.Context, now time.Time) error {
	tournaments, err := s.tournamentRepo.ListPastDeadline(ctx, now)
	if err != nil {
		return mapRepositoryError(err)
	}

	for _, t := range tournaments {
		system := &models.User{ID: t.CreatedByID, Role: models.RoleAdmin}
		_, startErr := s.Start(ctx, system, t.ID)
		switch {
		case startErr == nil:
			s.logger.InfoContext(ctx, "tournament auto-started after registration deadline",
				slog.Int("tournament_id", t.ID))
		case errors.Is(startErr, ErrInsufficientParticipants):
			if cancelErr := s.tournamentRepo.UpdateStatus(ctx, s.db, t.ID, models.TournamentStatusCanceled); cancelErr != nil {
				s.logger.ErrorContext(ctx, "failed to cancel understaffed tournament",
					slog.Int("tournament_id", t.ID), slog.Any("error", cancelErr))
				continue
			}
			s.logger.InfoContext(ctx, "tournament canceled: not enough participants at deadline",
				slog.Int("tournament_id", t.ID))
		default:
			s.logger.ErrorContext(ctx, "failed to auto-start tournament",
				slog.Int("tournament_id", t.ID), slog.Any("error", startErr))
		}
	}
	return nil
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Dosada05/bug-arena/models"
	"github.com/lib/pq"
)

var (
	ErrBattleNotFound         = errors.New("battle not found")
	ErrBattleCombatantInvalid = errors.New("battle combatant conflict or invalid")
)

type BattleRepository interface {
	// Create пишет бой через exec, чтобы запись участвовала в транзакции
	// разрешения вместе с обновлением счётчиков.
	Create(ctx context.Context, exec SQLExecutor, battle *models.Battle) error
	GetByID(ctx context.Context, id int) (*models.Battle, error)
	ListByCombatant(ctx context.Context, combatantID int, limit, offset int) ([]*models.Battle, error)
	ListByTournament(ctx context.Context, tournamentID int, round *int) ([]*models.Battle, error)
	UpdateNarrative(ctx context.Context, id int, narrative string) error
}

type postgresBattleRepository struct {
	db *sql.DB
}

func NewPostgresBattleRepository(db *sql.DB) BattleRepository {
	return &postgresBattleRepository{db: db}
}

const battleColumns = `
	id, combatant1_id, combatant2_id, winner_id, narrative,
	hidden_factor_triggered, hidden_factor_details, tournament_id, round_number, fought_at`

func (r *postgresBattleRepository) Create(ctx context.Context, exec SQLExecutor, b *models.Battle) error {
	query := `
		INSERT INTO battles
			(combatant1_id, combatant2_id, winner_id, narrative,
			 hidden_factor_triggered, hidden_factor_details, tournament_id, round_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, fought_at`

	err := exec.QueryRowContext(ctx, query,
		b.Combatant1ID,
		b.Combatant2ID,
		b.WinnerID,
		b.Narrative,
		b.HiddenFactorTriggered,
		b.HiddenFactorDetails,
		b.TournamentID,
		b.RoundNumber,
	).Scan(&b.ID, &b.FoughtAt)

	return r.handleBattleError(err)
}

func (r *postgresBattleRepository) GetByID(ctx context.Context, id int) (*models.Battle, error) {
	query := `SELECT ` + battleColumns + ` FROM battles WHERE id = $1`
	b := &models.Battle{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&b.ID,
		&b.Combatant1ID,
		&b.Combatant2ID,
		&b.WinnerID,
		&b.Narrative,
		&b.HiddenFactorTriggered,
		&b.HiddenFactorDetails,
		&b.TournamentID,
		&b.RoundNumber,
		&b.FoughtAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBattleNotFound
		}
		return nil, fmt.Errorf("failed to scan battle by id %d: %w", id, err)
	}
	return b, nil
}

func (r *postgresBattleRepository) ListByCombatant(ctx context.Context, combatantID int, limit, offset int) ([]*models.Battle, error) {
	query := `SELECT ` + battleColumns + `
		FROM battles
		WHERE combatant1_id = $1 OR combatant2_id = $1
		ORDER BY fought_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	return r.queryBattles(ctx, query, combatantID, limit, offset)
}

func (r *postgresBattleRepository) ListByTournament(ctx context.Context, tournamentID int, round *int) ([]*models.Battle, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + battleColumns + ` FROM battles WHERE tournament_id = $1`)

	args := []interface{}{tournamentID}
	if round != nil {
		queryBuilder.WriteString(" AND round_number = $")
		queryBuilder.WriteString(strconv.Itoa(len(args) + 1))
		args = append(args, *round)
	}
	queryBuilder.WriteString(" ORDER BY round_number ASC, id ASC")

	return r.queryBattles(ctx, queryBuilder.String(), args...)
}

func (r *postgresBattleRepository) UpdateNarrative(ctx context.Context, id int, narrative string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE battles SET narrative = $1 WHERE id = $2`, narrative, id)
	if err != nil {
		return fmt.Errorf("failed to update narrative for battle %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrBattleNotFound)
}

func (r *postgresBattleRepository) queryBattles(ctx context.Context, query string, args ...interface{}) ([]*models.Battle, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query battles: %w", err)
	}
	defer rows.Close()

	battles := make([]*models.Battle, 0)
	for rows.Next() {
		b := &models.Battle{}
		if scanErr := rows.Scan(
			&b.ID,
			&b.Combatant1ID,
			&b.Combatant2ID,
			&b.WinnerID,
			&b.Narrative,
			&b.HiddenFactorTriggered,
			&b.HiddenFactorDetails,
			&b.TournamentID,
			&b.RoundNumber,
			&b.FoughtAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan battle row: %w", scanErr)
		}
		battles = append(battles, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during battle rows iteration: %w", err)
	}
	return battles, nil
}

func (r *postgresBattleRepository) handleBattleError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "battles_combatant1_id_fkey", "battles_combatant2_id_fkey", "battles_winner_id_fkey":
			return ErrBattleCombatantInvalid
		}
	}
	return err
}

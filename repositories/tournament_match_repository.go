package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/bug-arena/models"
)

var (
	ErrTournamentMatchNotFound = errors.New("tournament match not found")
	ErrMatchSlotsOccupied      = errors.New("both slots of the match are already occupied")
)

type TournamentMatchRepository interface {
	// Create пишет матч через exec: вся сетка создаётся одной транзакцией.
	Create(ctx context.Context, exec SQLExecutor, match *models.TournamentMatch) error
	GetByID(ctx context.Context, id int) (*models.TournamentMatch, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.TournamentMatch, error)
	// FillNextSlot сажает победителя в первый свободный слот следующего
	// матча: слот 1 раньше слота 2. ErrMatchSlotsOccupied - сетка повреждена.
	FillNextSlot(ctx context.Context, exec SQLExecutor, matchID, combatantID int) error
	SetWinner(ctx context.Context, exec SQLExecutor, matchID, winnerID int, battleID *int, completedAt time.Time) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresTournamentMatchRepository struct {
	db *sql.DB
}

func NewPostgresTournamentMatchRepository(db *sql.DB) TournamentMatchRepository {
	return &postgresTournamentMatchRepository{db: db}
}

const tournamentMatchColumns = `
	id, tournament_id, round_number, match_number, combatant1_id, combatant2_id,
	winner_id, battle_id, next_match_id, is_bye, completed_at`

func (r *postgresTournamentMatchRepository) Create(ctx context.Context, exec SQLExecutor, m *models.TournamentMatch) error {
	query := `
		INSERT INTO tournament_matches
			(tournament_id, round_number, match_number, combatant1_id, combatant2_id,
			 winner_id, next_match_id, is_bye, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	err := exec.QueryRowContext(ctx, query,
		m.TournamentID,
		m.RoundNumber,
		m.MatchNumber,
		m.Combatant1ID,
		m.Combatant2ID,
		m.WinnerID,
		m.NextMatchID,
		m.IsBye,
		m.CompletedAt,
	).Scan(&m.ID)

	if err != nil {
		return fmt.Errorf("failed to create tournament match (t=%d r=%d m=%d): %w",
			m.TournamentID, m.RoundNumber, m.MatchNumber, err)
	}
	return nil
}

func (r *postgresTournamentMatchRepository) GetByID(ctx context.Context, id int) (*models.TournamentMatch, error) {
	query := `SELECT ` + tournamentMatchColumns + ` FROM tournament_matches WHERE id = $1`
	m, err := scanTournamentMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament match by id %d: %w", id, err)
	}
	return m, nil
}

func (r *postgresTournamentMatchRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.TournamentMatch, error) {
	query := `SELECT ` + tournamentMatchColumns + `
		FROM tournament_matches
		WHERE tournament_id = $1
		ORDER BY round_number ASC, match_number ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.TournamentMatch, 0)
	for rows.Next() {
		m := &models.TournamentMatch{}
		if scanErr := scanTournamentMatchInto(rows, m); scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament match row: %w", scanErr)
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresTournamentMatchRepository) FillNextSlot(ctx context.Context, exec SQLExecutor, matchID, combatantID int) error {
	// CASE держит выбор слота и запись в одном UPDATE, без гонки между
	// чтением матча и записью участника.
	query := `
		UPDATE tournament_matches
		SET combatant1_id = CASE WHEN combatant1_id IS NULL THEN $1 ELSE combatant1_id END,
		    combatant2_id = CASE WHEN combatant1_id IS NOT NULL AND combatant2_id IS NULL THEN $1 ELSE combatant2_id END
		WHERE id = $2 AND (combatant1_id IS NULL OR combatant2_id IS NULL)`

	result, err := exec.ExecContext(ctx, query, combatantID, matchID)
	if err != nil {
		return fmt.Errorf("FillNextSlot: failed to execute query for match %d: %w", matchID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("FillNextSlot: failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		// Либо матча нет, либо оба слота заняты.
		var exists bool
		if checkErr := r.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM tournament_matches WHERE id = $1)`, matchID,
		).Scan(&exists); checkErr != nil {
			return fmt.Errorf("FillNextSlot: failed to check match %d: %w", matchID, checkErr)
		}
		if !exists {
			return ErrTournamentMatchNotFound
		}
		return ErrMatchSlotsOccupied
	}
	return nil
}

func (r *postgresTournamentMatchRepository) SetWinner(ctx context.Context, exec SQLExecutor, matchID, winnerID int, battleID *int, completedAt time.Time) error {
	query := `
		UPDATE tournament_matches
		SET winner_id = $1, battle_id = $2, completed_at = $3
		WHERE id = $4`
	result, err := exec.ExecContext(ctx, query, winnerID, battleID, completedAt, matchID)
	if err != nil {
		return fmt.Errorf("SetWinner: failed to execute query for match %d: %w", matchID, err)
	}
	return checkAffectedRows(result, ErrTournamentMatchNotFound)
}

func (r *postgresTournamentMatchRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	_, err := exec.ExecContext(ctx,
		`DELETE FROM tournament_matches WHERE tournament_id = $1`, tournamentID)
	if err != nil {
		return fmt.Errorf("DeleteByTournament: failed to execute query for tournament %d: %w", tournamentID, err)
	}
	return nil
}

func scanTournamentMatchInto(s rowScanner, m *models.TournamentMatch) error {
	return s.Scan(
		&m.ID,
		&m.TournamentID,
		&m.RoundNumber,
		&m.MatchNumber,
		&m.Combatant1ID,
		&m.Combatant2ID,
		&m.WinnerID,
		&m.BattleID,
		&m.NextMatchID,
		&m.IsBye,
		&m.CompletedAt,
	)
}

func scanTournamentMatch(row *sql.Row) (*models.TournamentMatch, error) {
	m := &models.TournamentMatch{}
	if err := scanTournamentMatchInto(row, m); err != nil {
		return nil, err
	}
	return m, nil
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/bug-arena/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name already exists")
)

type ListTournamentsFilter struct {
	Status      *models.TournamentStatus
	CreatedByID *int
	Limit       int
	Offset      int
}

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]*models.Tournament, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error
	SetWinner(ctx context.Context, exec SQLExecutor, id int, winnerCombatantID int, endedAt time.Time) error
	// ListPastDeadline возвращает турниры в регистрации с истекшим дедлайном.
	ListPastDeadline(ctx context.Context, now time.Time) ([]*models.Tournament, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

const tournamentColumns = `
	id, name, status, start_date, end_date, tier_restriction, max_participants,
	registration_deadline, winner_combatant_id, created_by_id, created_at`

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments
			(name, status, start_date, tier_restriction, max_participants,
			 registration_deadline, created_by_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		t.Name,
		t.Status,
		t.StartDate,
		t.TierRestriction,
		t.MaxParticipants,
		t.RegistrationDeadline,
		t.CreatedByID,
	).Scan(&t.ID, &t.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Constraint == "tournaments_name_key" {
			return ErrTournamentNameConflict
		}
		return err
	}
	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	t, err := scanTournament(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament by id %d: %w", id, err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]*models.Tournament, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + tournamentColumns + ` FROM tournaments WHERE 1=1`)

	args := make([]interface{}, 0, 4)
	if filter.Status != nil {
		args = append(args, *filter.Status)
		queryBuilder.WriteString(" AND status = $" + strconv.Itoa(len(args)))
	}
	if filter.CreatedByID != nil {
		args = append(args, *filter.CreatedByID)
		queryBuilder.WriteString(" AND created_by_id = $" + strconv.Itoa(len(args)))
	}
	queryBuilder.WriteString(" ORDER BY start_date DESC, id DESC")

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit)
	queryBuilder.WriteString(" LIMIT $" + strconv.Itoa(len(args)))
	args = append(args, filter.Offset)
	queryBuilder.WriteString(" OFFSET $" + strconv.Itoa(len(args)))

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments: %w", err)
	}
	defer rows.Close()

	return collectTournaments(rows)
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	result, err := exec.ExecContext(ctx, `UPDATE tournaments SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update status for tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) SetWinner(ctx context.Context, exec SQLExecutor, id int, winnerCombatantID int, endedAt time.Time) error {
	query := `
		UPDATE tournaments
		SET winner_combatant_id = $1, end_date = $2, status = $3
		WHERE id = $4`
	result, err := exec.ExecContext(ctx, query, winnerCombatantID, endedAt, models.TournamentStatusCompleted, id)
	if err != nil {
		return fmt.Errorf("failed to set winner for tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) ListPastDeadline(ctx context.Context, now time.Time) ([]*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + `
		FROM tournaments
		WHERE status = $1 AND registration_deadline IS NOT NULL AND registration_deadline < $2`
	rows, err := r.db.QueryContext(ctx, query, models.TournamentStatusRegistration, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query past-deadline tournaments: %w", err)
	}
	defer rows.Close()

	return collectTournaments(rows)
}

func scanTournament(row *sql.Row) (*models.Tournament, error) {
	t := &models.Tournament{}
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Status,
		&t.StartDate,
		&t.EndDate,
		&t.TierRestriction,
		&t.MaxParticipants,
		&t.RegistrationDeadline,
		&t.WinnerCombatantID,
		&t.CreatedByID,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func collectTournaments(rows *sql.Rows) ([]*models.Tournament, error) {
	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		t := &models.Tournament{}
		if err := rows.Scan(
			&t.ID,
			&t.Name,
			&t.Status,
			&t.StartDate,
			&t.EndDate,
			&t.TierRestriction,
			&t.MaxParticipants,
			&t.RegistrationDeadline,
			&t.WinnerCombatantID,
			&t.CreatedByID,
			&t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", err)
		}
		tournaments = append(tournaments, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/bug-arena/models"
	"github.com/lib/pq"
)

var (
	ErrApplicationNotFound = errors.New("tournament application not found")
	ErrApplicationConflict = errors.New("combatant is already registered for this tournament")
)

type ApplicationRepository interface {
	Create(ctx context.Context, application *models.Application) error
	GetByID(ctx context.Context, id int) (*models.Application, error)
	FindByTournamentAndCombatant(ctx context.Context, tournamentID, combatantID int) (*models.Application, error)
	// ListByTournament с withCombatants=true подгружает бойцов заявок.
	ListByTournament(ctx context.Context, tournamentID int, status *models.ApplicationStatus, withCombatants bool) ([]*models.Application, error)
	CountByStatus(ctx context.Context, tournamentID int, status models.ApplicationStatus) (int, error)
	// AverageApprovedPower возвращает среднюю совокупную силу
	// (attack+defense+speed) одобренных заявок; nil, если их нет.
	AverageApprovedPower(ctx context.Context, tournamentID int) (*float64, error)
	UpdateStatus(ctx context.Context, id int, status models.ApplicationStatus, reviewerID *int, reviewedAt time.Time) error
	UpdateSeedNumber(ctx context.Context, exec SQLExecutor, id int, seedNumber int) error
}

type postgresApplicationRepository struct {
	db *sql.DB
}

func NewPostgresApplicationRepository(db *sql.DB) ApplicationRepository {
	return &postgresApplicationRepository{db: db}
}

const applicationColumns = `
	a.id, a.tournament_id, a.combatant_id, a.user_id, a.status,
	a.seed_number, a.applied_at, a.reviewed_at, a.reviewed_by_id`

func (r *postgresApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	query := `
		INSERT INTO tournament_applications (tournament_id, combatant_id, user_id, status, reviewed_at, reviewed_by_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, applied_at`

	err := r.db.QueryRowContext(ctx, query,
		app.TournamentID,
		app.CombatantID,
		app.UserID,
		app.Status,
		app.ReviewedAt,
		app.ReviewedByID,
	).Scan(&app.ID, &app.AppliedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Constraint == "tournament_applications_tournament_id_combatant_id_key" {
			return ErrApplicationConflict
		}
		return err
	}
	return nil
}

func (r *postgresApplicationRepository) GetByID(ctx context.Context, id int) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM tournament_applications a WHERE a.id = $1`
	app := &models.Application{}
	err := scanApplication(r.db.QueryRowContext(ctx, query, id), app)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to scan application by id %d: %w", id, err)
	}
	return app, nil
}

func (r *postgresApplicationRepository) FindByTournamentAndCombatant(ctx context.Context, tournamentID, combatantID int) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + `
		FROM tournament_applications a
		WHERE a.tournament_id = $1 AND a.combatant_id = $2`
	app := &models.Application{}
	err := scanApplication(r.db.QueryRowContext(ctx, query, tournamentID, combatantID), app)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Отсутствие заявки - не ошибка для проверки допуска.
		}
		return nil, fmt.Errorf("failed to scan application for tournament %d combatant %d: %w", tournamentID, combatantID, err)
	}
	return app, nil
}

func (r *postgresApplicationRepository) ListByTournament(ctx context.Context, tournamentID int, status *models.ApplicationStatus, withCombatants bool) ([]*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM tournament_applications a WHERE a.tournament_id = $1`
	args := []interface{}{tournamentID}
	if status != nil {
		query += ` AND a.status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY a.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	applications := make([]*models.Application, 0)
	for rows.Next() {
		app := &models.Application{}
		if scanErr := scanApplication(rows, app); scanErr != nil {
			return nil, fmt.Errorf("failed to scan application row: %w", scanErr)
		}
		applications = append(applications, app)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during application rows iteration: %w", err)
	}

	if withCombatants {
		if err := r.attachCombatants(ctx, applications); err != nil {
			return nil, err
		}
	}
	return applications, nil
}

func (r *postgresApplicationRepository) attachCombatants(ctx context.Context, applications []*models.Application) error {
	if len(applications) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(applications))
	byID := make(map[int][]*models.Application, len(applications))
	for _, app := range applications {
		ids = append(ids, int64(app.CombatantID))
		byID[app.CombatantID] = append(byID[app.CombatantID], app)
	}

	query := `SELECT ` + combatantColumns + ` FROM combatants WHERE id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, pq.Int64Array(ids))
	if err != nil {
		return fmt.Errorf("failed to query combatants for applications: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c, scanErr := scanCombatantRows(rows)
		if scanErr != nil {
			return fmt.Errorf("failed to scan combatant row: %w", scanErr)
		}
		for _, app := range byID[c.ID] {
			app.Combatant = c
		}
	}
	return rows.Err()
}

func (r *postgresApplicationRepository) CountByStatus(ctx context.Context, tournamentID int, status models.ApplicationStatus) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tournament_applications WHERE tournament_id = $1 AND status = $2`,
		tournamentID, status,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count applications for tournament %d: %w", tournamentID, err)
	}
	return count, nil
}

func (r *postgresApplicationRepository) AverageApprovedPower(ctx context.Context, tournamentID int) (*float64, error) {
	query := `
		SELECT AVG(c.attack + c.defense + c.speed)
		FROM tournament_applications a
		JOIN combatants c ON c.id = a.combatant_id
		WHERE a.tournament_id = $1 AND a.status = $2`

	var avg sql.NullFloat64
	err := r.db.QueryRowContext(ctx, query, tournamentID, models.ApplicationApproved).Scan(&avg)
	if err != nil {
		return nil, fmt.Errorf("failed to compute average power for tournament %d: %w", tournamentID, err)
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

func (r *postgresApplicationRepository) UpdateStatus(ctx context.Context, id int, status models.ApplicationStatus, reviewerID *int, reviewedAt time.Time) error {
	query := `
		UPDATE tournament_applications
		SET status = $1, reviewed_by_id = $2, reviewed_at = $3
		WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, status, reviewerID, reviewedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update status for application %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrApplicationNotFound)
}

func (r *postgresApplicationRepository) UpdateSeedNumber(ctx context.Context, exec SQLExecutor, id int, seedNumber int) error {
	result, err := exec.ExecContext(ctx,
		`UPDATE tournament_applications SET seed_number = $1 WHERE id = $2`,
		seedNumber, id)
	if err != nil {
		return fmt.Errorf("UpdateSeedNumber: failed to execute query for application %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrApplicationNotFound)
}

type applicationScanner interface {
	Scan(dest ...interface{}) error
}

func scanApplication(s applicationScanner, app *models.Application) error {
	return s.Scan(
		&app.ID,
		&app.TournamentID,
		&app.CombatantID,
		&app.UserID,
		&app.Status,
		&app.SeedNumber,
		&app.AppliedAt,
		&app.ReviewedAt,
		&app.ReviewedByID,
	)
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/bug-arena/models"
	"github.com/lib/pq"
)

var (
	ErrCombatantNotFound     = errors.New("combatant not found")
	ErrCombatantOwnerInvalid = errors.New("combatant owner conflict or invalid")
	ErrCombatantNameConflict = errors.New("combatant nickname is already in use by this owner")
)

type CombatantRepository interface {
	Create(ctx context.Context, combatant *models.Combatant) error
	GetByID(ctx context.Context, id int) (*models.Combatant, error)
	ListByOwner(ctx context.Context, ownerID int) ([]*models.Combatant, error)
	List(ctx context.Context, limit, offset int) ([]*models.Combatant, error)
	UpdateStats(ctx context.Context, combatant *models.Combatant) error
	UpdateImage(ctx context.Context, id int, imageKey, imageURL *string) error
	// UpdateRecord добавляет дельты к счётчикам побед/поражений.
	// Инкремент выполняется на стороне БД, чтобы обновления не терялись.
	UpdateRecord(ctx context.Context, exec SQLExecutor, id int, winsDelta, lossesDelta int) error
	UpdateTier(ctx context.Context, id int, tier models.Tier) error
}

type postgresCombatantRepository struct {
	db *sql.DB
}

func NewPostgresCombatantRepository(db *sql.DB) CombatantRepository {
	return &postgresCombatantRepository{db: db}
}

const combatantColumns = `
	id, owner_id, nickname, common_name, scientific_name, image_key, image_url,
	description, attack, defense, speed, special_attack, special_defense, health,
	attack_type, defense_type, size_class, hidden_factor, hidden_factor_reason,
	tier, stats_final, wins, losses, submitted_at`

func (r *postgresCombatantRepository) Create(ctx context.Context, c *models.Combatant) error {
	query := `
		INSERT INTO combatants
			(owner_id, nickname, common_name, scientific_name, image_key, image_url,
			 description, attack, defense, speed, special_attack, special_defense, health,
			 attack_type, defense_type, size_class, hidden_factor, hidden_factor_reason,
			 tier, stats_final)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING id, wins, losses, submitted_at`

	err := r.db.QueryRowContext(ctx, query,
		c.OwnerID,
		c.Nickname,
		c.CommonName,
		c.ScientificName,
		c.ImageKey,
		c.ImageURL,
		c.Description,
		c.Attack,
		c.Defense,
		c.Speed,
		c.SpecialAttack,
		c.SpecialDefense,
		c.Health,
		c.AttackType,
		c.DefenseType,
		c.SizeClass,
		c.HiddenFactor,
		c.HiddenFactorReason,
		c.Tier,
		c.StatsFinal,
	).Scan(&c.ID, &c.Wins, &c.Losses, &c.SubmittedAt)

	return r.handleCombatantError(err)
}

func (r *postgresCombatantRepository) GetByID(ctx context.Context, id int) (*models.Combatant, error) {
	query := `SELECT ` + combatantColumns + ` FROM combatants WHERE id = $1`
	c, err := scanCombatant(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCombatantNotFound
		}
		return nil, fmt.Errorf("failed to scan combatant by id %d: %w", id, err)
	}
	return c, nil
}

func (r *postgresCombatantRepository) ListByOwner(ctx context.Context, ownerID int) ([]*models.Combatant, error) {
	query := `SELECT ` + combatantColumns + ` FROM combatants WHERE owner_id = $1 ORDER BY id`
	return r.queryCombatants(ctx, query, ownerID)
}

func (r *postgresCombatantRepository) List(ctx context.Context, limit, offset int) ([]*models.Combatant, error) {
	query := `SELECT ` + combatantColumns + ` FROM combatants ORDER BY id LIMIT $1 OFFSET $2`
	return r.queryCombatants(ctx, query, limit, offset)
}

func (r *postgresCombatantRepository) UpdateStats(ctx context.Context, c *models.Combatant) error {
	query := `
		UPDATE combatants
		SET attack = $1, defense = $2, speed = $3,
		    special_attack = $4, special_defense = $5, health = $6,
		    attack_type = $7, defense_type = $8, size_class = $9,
		    hidden_factor = $10, hidden_factor_reason = $11,
		    tier = $12, stats_final = $13
		WHERE id = $14`

	result, err := r.db.ExecContext(ctx, query,
		c.Attack, c.Defense, c.Speed,
		c.SpecialAttack, c.SpecialDefense, c.Health,
		c.AttackType, c.DefenseType, c.SizeClass,
		c.HiddenFactor, c.HiddenFactorReason,
		c.Tier, c.StatsFinal,
		c.ID,
	)
	if err != nil {
		return r.handleCombatantError(err)
	}
	return checkAffectedRows(result, ErrCombatantNotFound)
}

func (r *postgresCombatantRepository) UpdateImage(ctx context.Context, id int, imageKey, imageURL *string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE combatants SET image_key = $1, image_url = $2 WHERE id = $3`,
		imageKey, imageURL, id)
	if err != nil {
		return fmt.Errorf("failed to update image for combatant %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrCombatantNotFound)
}

func (r *postgresCombatantRepository) UpdateRecord(ctx context.Context, exec SQLExecutor, id int, winsDelta, lossesDelta int) error {
	query := `UPDATE combatants SET wins = wins + $1, losses = losses + $2 WHERE id = $3`
	result, err := exec.ExecContext(ctx, query, winsDelta, lossesDelta, id)
	if err != nil {
		return fmt.Errorf("UpdateRecord: failed to execute query for combatant %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrCombatantNotFound)
}

func (r *postgresCombatantRepository) UpdateTier(ctx context.Context, id int, tier models.Tier) error {
	result, err := r.db.ExecContext(ctx, `UPDATE combatants SET tier = $1 WHERE id = $2`, tier, id)
	if err != nil {
		return fmt.Errorf("failed to update tier for combatant %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrCombatantNotFound)
}

func (r *postgresCombatantRepository) queryCombatants(ctx context.Context, query string, args ...interface{}) ([]*models.Combatant, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query combatants: %w", err)
	}
	defer rows.Close()

	combatants := make([]*models.Combatant, 0)
	for rows.Next() {
		c, scanErr := scanCombatantRows(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan combatant row: %w", scanErr)
		}
		combatants = append(combatants, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during combatant rows iteration: %w", err)
	}
	return combatants, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCombatantInto(s rowScanner, c *models.Combatant) error {
	return s.Scan(
		&c.ID,
		&c.OwnerID,
		&c.Nickname,
		&c.CommonName,
		&c.ScientificName,
		&c.ImageKey,
		&c.ImageURL,
		&c.Description,
		&c.Attack,
		&c.Defense,
		&c.Speed,
		&c.SpecialAttack,
		&c.SpecialDefense,
		&c.Health,
		&c.AttackType,
		&c.DefenseType,
		&c.SizeClass,
		&c.HiddenFactor,
		&c.HiddenFactorReason,
		&c.Tier,
		&c.StatsFinal,
		&c.Wins,
		&c.Losses,
		&c.SubmittedAt,
	)
}

func scanCombatant(row *sql.Row) (*models.Combatant, error) {
	c := &models.Combatant{}
	if err := scanCombatantInto(row, c); err != nil {
		return nil, err
	}
	return c, nil
}

func scanCombatantRows(rows *sql.Rows) (*models.Combatant, error) {
	c := &models.Combatant{}
	if err := scanCombatantInto(rows, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *postgresCombatantRepository) handleCombatantError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		// "23503": foreign_key_violation, "23505": unique_violation
		switch pqErr.Constraint {
		case "combatants_owner_id_fkey":
			return ErrCombatantOwnerInvalid
		case "combatants_owner_id_nickname_key":
			return ErrCombatantNameConflict
		}
	}
	return err
}

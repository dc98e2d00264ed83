package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Dosada05/bug-arena/combat"
	"github.com/Dosada05/bug-arena/models"
	"github.com/Dosada05/bug-arena/repositories"
	"github.com/Dosada05/bug-arena/storage"
	"github.com/google/uuid"
)

type CreateCombatantInput struct {
	Nickname       string  `json:"nickname"`
	CommonName     *string `json:"common_name"`
	ScientificName *string `json:"scientific_name"`
	Description    *string `json:"description"`

	Attack  int `json:"attack"`
	Defense int `json:"defense"`
	Speed   int `json:"speed"`

	SpecialAttack  *int `json:"special_attack"`
	SpecialDefense *int `json:"special_defense"`
	Health         *int `json:"health"`

	AttackType  models.AttackType  `json:"attack_type"`
	DefenseType models.DefenseType `json:"defense_type"`
	SizeClass   models.SizeClass   `json:"size_class"`
}

// UpdateStatsInput - частичное обновление: nil-поля не трогаются.
type UpdateStatsInput struct {
	Attack  *int `json:"attack"`
	Defense *int `json:"defense"`
	Speed   *int `json:"speed"`

	SpecialAttack  *int `json:"special_attack"`
	SpecialDefense *int `json:"special_defense"`
	Health         *int `json:"health"`

	AttackType  *models.AttackType  `json:"attack_type"`
	DefenseType *models.DefenseType `json:"defense_type"`
	SizeClass   *models.SizeClass   `json:"size_class"`

	StatsFinal *bool `json:"stats_final"`
}

// HiddenFactorInput доступен только модераторам/админам.
type HiddenFactorInput struct {
	HiddenFactor float64 `json:"hidden_factor"`
	Reason       *string `json:"reason"`
}

type CombatantService interface {
	Create(ctx context.Context, ownerID int, input CreateCombatantInput) (*models.Combatant, error)
	GetByID(ctx context.Context, id int) (*models.Combatant, error)
	ListByOwner(ctx context.Context, ownerID int) ([]*models.Combatant, error)
	List(ctx context.Context, limit, offset int) ([]*models.Combatant, error)
	UpdateStats(ctx context.Context, actor *models.User, id int, input UpdateStatsInput) (*models.Combatant, error)
	// SetHiddenFactor задаёт скрытый модификатор; значение усекается
	// к [-5,+5], а не отклоняется.
	SetHiddenFactor(ctx context.Context, actor *models.User, id int, input HiddenFactorInput) (*models.Combatant, error)
	UploadImage(ctx context.Context, actor *models.User, id int, contentType string, file io.Reader) (*models.Combatant, error)
}

type combatantService struct {
	combatantRepo repositories.CombatantRepository
	uploader      storage.FileUploader
	logger        *slog.Logger
}

func NewCombatantService(combatantRepo repositories.CombatantRepository, uploader storage.FileUploader, logger *slog.Logger) CombatantService {
	return &combatantService{
		combatantRepo: combatantRepo,
		uploader:      uploader,
		logger:        logger,
	}
}

func validAttackType(t models.AttackType) bool {
	switch t {
	case models.AttackPiercing, models.AttackCrushing, models.AttackSlashing,
		models.AttackVenom, models.AttackChemical, models.AttackGrappling:
		return true
	}
	return false
}

func validDefenseType(t models.DefenseType) bool {
	switch t {
	case models.DefenseHardShell, models.DefenseSegmentedArmor, models.DefenseEvasive,
		models.DefenseHairySpiny, models.DefenseToxicSkin, models.DefenseThickHide:
		return true
	}
	return false
}

func (s *combatantService) Create(ctx context.Context, ownerID int, input CreateCombatantInput) (*models.Combatant, error) {
	if input.Nickname == "" {
		return nil, fmt.Errorf("%w: nickname is required", ErrValidationFailed)
	}
	if !validAttackType(input.AttackType) {
		return nil, fmt.Errorf("%w: unknown attack type %q", ErrValidationFailed, input.AttackType)
	}
	if !validDefenseType(input.DefenseType) {
		return nil, fmt.Errorf("%w: unknown defense type %q", ErrValidationFailed, input.DefenseType)
	}
	if _, ok := input.SizeClass.Index(); !ok {
		return nil, fmt.Errorf("%w: unknown size class %q", ErrValidationFailed, input.SizeClass)
	}

	c := &models.Combatant{
		OwnerID:        ownerID,
		Nickname:       input.Nickname,
		CommonName:     input.CommonName,
		ScientificName: input.ScientificName,
		Description:    input.Description,
		Attack:         models.ClampStat(input.Attack),
		Defense:        models.ClampStat(input.Defense),
		Speed:          models.ClampStat(input.Speed),
		AttackType:     input.AttackType,
		DefenseType:    input.DefenseType,
		SizeClass:      input.SizeClass,
	}
	if input.SpecialAttack != nil {
		c.SpecialAttack = intPtr(models.ClampStat(*input.SpecialAttack))
	}
	if input.SpecialDefense != nil {
		c.SpecialDefense = intPtr(models.ClampStat(*input.SpecialDefense))
	}
	if input.Health != nil {
		c.Health = intPtr(models.ClampStat(*input.Health))
	}
	c.Tier = combat.ClassifyCombatant(c)

	if err := s.combatantRepo.Create(ctx, c); err != nil {
		return nil, mapRepositoryError(err)
	}
	s.populateImageURL(c)
	return c, nil
}

func (s *combatantService) GetByID(ctx context.Context, id int) (*models.Combatant, error) {
	c, err := s.combatantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	s.populateImageURL(c)
	return c, nil
}

func (s *combatantService) ListByOwner(ctx context.Context, ownerID int) ([]*models.Combatant, error) {
	combatants, err := s.combatantRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	for _, c := range combatants {
		s.populateImageURL(c)
	}
	return combatants, nil
}

func (s *combatantService) List(ctx context.Context, limit, offset int) ([]*models.Combatant, error) {
	if limit <= 0 {
		limit = 20
	}
	combatants, err := s.combatantRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	for _, c := range combatants {
		s.populateImageURL(c)
	}
	return combatants, nil
}

func (s *combatantService) UpdateStats(ctx context.Context, actor *models.User, id int, input UpdateStatsInput) (*models.Combatant, error) {
	c, err := s.combatantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if err := s.authorizeOwner(actor, c); err != nil {
		return nil, err
	}

	if input.Attack != nil {
		c.Attack = models.ClampStat(*input.Attack)
	}
	if input.Defense != nil {
		c.Defense = models.ClampStat(*input.Defense)
	}
	if input.Speed != nil {
		c.Speed = models.ClampStat(*input.Speed)
	}
	if input.SpecialAttack != nil {
		c.SpecialAttack = intPtr(models.ClampStat(*input.SpecialAttack))
	}
	if input.SpecialDefense != nil {
		c.SpecialDefense = intPtr(models.ClampStat(*input.SpecialDefense))
	}
	if input.Health != nil {
		c.Health = intPtr(models.ClampStat(*input.Health))
	}
	if input.AttackType != nil {
		if !validAttackType(*input.AttackType) {
			return nil, fmt.Errorf("%w: unknown attack type %q", ErrValidationFailed, *input.AttackType)
		}
		c.AttackType = *input.AttackType
	}
	if input.DefenseType != nil {
		if !validDefenseType(*input.DefenseType) {
			return nil, fmt.Errorf("%w: unknown defense type %q", ErrValidationFailed, *input.DefenseType)
		}
		c.DefenseType = *input.DefenseType
	}
	if input.SizeClass != nil {
		if _, ok := input.SizeClass.Index(); !ok {
			return nil, fmt.Errorf("%w: unknown size class %q", ErrValidationFailed, *input.SizeClass)
		}
		c.SizeClass = *input.SizeClass
	}
	if input.StatsFinal != nil {
		c.StatsFinal = *input.StatsFinal
	}

	// Тир пересчитывается при каждом изменении статов.
	c.Tier = combat.ClassifyCombatant(c)

	if err := s.combatantRepo.UpdateStats(ctx, c); err != nil {
		return nil, mapRepositoryError(err)
	}
	s.populateImageURL(c)
	return c, nil
}

func (s *combatantService) SetHiddenFactor(ctx context.Context, actor *models.User, id int, input HiddenFactorInput) (*models.Combatant, error) {
	if actor == nil || !actor.Role.CanViewHidden() {
		return nil, ErrForbiddenOperation
	}
	c, err := s.combatantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	c.HiddenFactor = models.ClampHiddenFactor(input.HiddenFactor)
	c.HiddenFactorReason = input.Reason

	if err := s.combatantRepo.UpdateStats(ctx, c); err != nil {
		return nil, mapRepositoryError(err)
	}
	return c, nil
}

func (s *combatantService) UploadImage(ctx context.Context, actor *models.User, id int, contentType string, file io.Reader) (*models.Combatant, error) {
	c, err := s.combatantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if err := s.authorizeOwner(actor, c); err != nil {
		return nil, err
	}
	if s.uploader == nil {
		return nil, fmt.Errorf("image storage is not configured")
	}

	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	key := fmt.Sprintf("combatants/%d/%s%s", c.ID, uuid.NewString(), ext)
	uploadResult, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload combatant image: %w", err)
	}

	oldKey := c.ImageKey
	c.ImageKey = &uploadResult.Key
	c.ImageURL = &uploadResult.Location

	if err := s.combatantRepo.UpdateImage(ctx, c.ID, c.ImageKey, c.ImageURL); err != nil {
		return nil, mapRepositoryError(err)
	}

	if oldKey != nil && *oldKey != "" && *oldKey != uploadResult.Key {
		if delErr := s.uploader.Delete(ctx, *oldKey); delErr != nil {
			s.logger.WarnContext(ctx, "failed to delete previous combatant image",
				slog.Int("combatant_id", c.ID), slog.String("key", *oldKey), slog.Any("error", delErr))
		}
	}
	return c, nil
}

func (s *combatantService) authorizeOwner(actor *models.User, c *models.Combatant) error {
	if actor == nil {
		return ErrForbiddenOperation
	}
	if actor.ID != c.OwnerID && actor.Role != models.RoleAdmin && actor.Role != models.RoleModerator {
		return ErrForbiddenOperation
	}
	return nil
}

func (s *combatantService) populateImageURL(c *models.Combatant) {
	if c == nil || s.uploader == nil || c.ImageKey == nil || *c.ImageKey == "" {
		return
	}
	if url := s.uploader.GetPublicURL(*c.ImageKey); url != "" {
		c.ImageURL = &url
	}
}

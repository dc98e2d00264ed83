package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Dosada05/bug-arena/models"
	"github.com/Dosada05/bug-arena/repositories"
)

// belowAverageWarningRatio: совокупная сила ниже этой доли от средней силы
// одобренных участников даёт предупреждение, но не отказ.
const belowAverageWarningRatio = 0.7

// EligibilityResult - вердикт проверки допуска. Провал правил - не ошибка:
// результат с Eligible=false и списком причин.
type EligibilityResult struct {
	Eligible bool     `json:"eligible"`
	Reasons  []string `json:"reasons,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func (r *EligibilityResult) fail(reason string) {
	r.Eligible = false
	r.Reasons = append(r.Reasons, reason)
}

func (r *EligibilityResult) warn(warning string) {
	r.Warnings = append(r.Warnings, warning)
}

type EligibilityChecker interface {
	Check(ctx context.Context, tournament *models.Tournament, combatant *models.Combatant, now time.Time) (*EligibilityResult, error)
}

type eligibilityChecker struct {
	applicationRepo repositories.ApplicationRepository
}

func NewEligibilityChecker(applicationRepo repositories.ApplicationRepository) EligibilityChecker {
	return &eligibilityChecker{applicationRepo: applicationRepo}
}

// Check прогоняет все правила и собирает полный список причин, а не
// останавливается на первой.
func (e *eligibilityChecker) Check(ctx context.Context, tournament *models.Tournament, combatant *models.Combatant, now time.Time) (*EligibilityResult, error) {
	result := &EligibilityResult{Eligible: true}

	if tournament.Status != models.TournamentStatusRegistration {
		result.fail("tournament registration is not open")
	}
	if tournament.RegistrationDeadline != nil && now.After(*tournament.RegistrationDeadline) {
		result.fail("tournament registration deadline has passed")
	}

	if !combatant.StatsFinal {
		result.fail("combatant stats are not finalized")
	}
	// Без известной даты создания турнира правило о времени подачи
	// проверить нельзя: не отказ, а предупреждение.
	if tournament.CreatedAt.IsZero() {
		result.warn("tournament creation date is unknown, submission timing not verified")
	} else if combatant.SubmittedAt.After(tournament.CreatedAt) {
		result.fail("combatant was submitted after the tournament was created")
	}

	if tournament.TierRestriction != nil && combatant.Tier != *tournament.TierRestriction {
		result.fail(fmt.Sprintf("tournament is restricted to tier %s, combatant is tier %s",
			tournament.TierRestriction.DisplayName(), combatant.Tier.DisplayName()))
	}

	existing, err := e.applicationRepo.FindByTournamentAndCombatant(ctx, tournament.ID, combatant.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing application: %w", err)
	}
	if existing != nil && existing.Status != models.ApplicationWithdrawn && existing.Status != models.ApplicationRejected {
		result.fail("combatant is already registered for this tournament")
	}

	if tournament.MaxParticipants != nil {
		approved, err := e.applicationRepo.CountByStatus(ctx, tournament.ID, models.ApplicationApproved)
		if err != nil {
			return nil, fmt.Errorf("failed to count approved applications: %w", err)
		}
		if approved >= *tournament.MaxParticipants {
			result.fail("tournament registration is full")
		}
	}

	avg, err := e.applicationRepo.AverageApprovedPower(ctx, tournament.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute average approved power: %w", err)
	}
	if avg != nil && float64(combatant.AggregatePower()) < *avg*belowAverageWarningRatio {
		result.warn(fmt.Sprintf("combatant power %d is well below the field average %.0f",
			combatant.AggregatePower(), *avg))
	}

	return result, nil
}

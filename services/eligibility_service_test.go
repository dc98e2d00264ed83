package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/bug-arena/models"
	"github.com/Dosada05/bug-arena/repositories"
)

type fakeApplicationRepo struct {
	repositories.ApplicationRepository

	existing      *models.Application
	approvedCount int
	averagePower  *float64
}

func (f *fakeApplicationRepo) FindByTournamentAndCombatant(ctx context.Context, tournamentID, combatantID int) (*models.Application, error) {
	return f.existing, nil
}

func (f *fakeApplicationRepo) CountByStatus(ctx context.Context, tournamentID int, status models.ApplicationStatus) (int, error) {
	return f.approvedCount, nil
}

func (f *fakeApplicationRepo) AverageApprovedPower(ctx context.Context, tournamentID int) (*float64, error) {
	return f.averagePower, nil
}

func floatPtr(v float64) *float64 { return &v }

func tierPtr(t models.Tier) *models.Tier { return &t }

func eligibleCombatant(power int) *models.Combatant {
	third := power / 3
	return &models.Combatant{
		ID:          7,
		Attack:      third,
		Defense:     third,
		Speed:       power - 2*third,
		Tier:        models.TierRU,
		StatsFinal:  true,
		SubmittedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func openTournament() *models.Tournament {
	return &models.Tournament{
		ID:        3,
		Status:    models.TournamentStatusRegistration,
		CreatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestEligibilityCheck(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	deadline := now.Add(-time.Hour)
	futureDeadline := now.Add(time.Hour)

	tests := []struct {
		name         string
		tournament   func() *models.Tournament
		combatant    func() *models.Combatant
		repo         fakeApplicationRepo
		wantEligible bool
		wantReason   string
		wantWarning  string
	}{
		{
			name:         "eligible with no restrictions",
			tournament:   openTournament,
			combatant:    func() *models.Combatant { return eligibleCombatant(180) },
			wantEligible: true,
		},
		{
			name: "registration closed by status",
			tournament: func() *models.Tournament {
				t := openTournament()
				t.Status = models.TournamentStatusActive
				return t
			},
			combatant:  func() *models.Combatant { return eligibleCombatant(180) },
			wantReason: "registration is not open",
		},
		{
			name: "registration deadline passed",
			tournament: func() *models.Tournament {
				t := openTournament()
				t.RegistrationDeadline = &deadline
				return t
			},
			combatant:  func() *models.Combatant { return eligibleCombatant(180) },
			wantReason: "deadline has passed",
		},
		{
			name:       "stats not finalized",
			tournament: openTournament,
			combatant: func() *models.Combatant {
				c := eligibleCombatant(180)
				c.StatsFinal = false
				return c
			},
			wantReason: "not finalized",
		},
		{
			name:       "submitted after tournament creation",
			tournament: openTournament,
			combatant: func() *models.Combatant {
				c := eligibleCombatant(180)
				c.SubmittedAt = time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
				return c
			},
			wantReason: "submitted after the tournament",
		},
		{
			name: "unknown creation date waives timing rule with warning",
			tournament: func() *models.Tournament {
				t := openTournament()
				t.CreatedAt = time.Time{}
				return t
			},
			combatant: func() *models.Combatant {
				c := eligibleCombatant(180)
				c.SubmittedAt = time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
				return c
			},
			wantEligible: true,
			wantWarning:  "submission timing not verified",
		},
		{
			name: "tier restriction mismatch",
			tournament: func() *models.Tournament {
				t := openTournament()
				t.TierRestriction = tierPtr(models.TierOU)
				return t
			},
			combatant:  func() *models.Combatant { return eligibleCombatant(180) },
			wantReason: "restricted to tier",
		},
		{
			name: "tier restriction match",
			tournament: func() *models.Tournament {
				t := openTournament()
				t.TierRestriction = tierPtr(models.TierRU)
				return t
			},
			combatant:    func() *models.Combatant { return eligibleCombatant(180) },
			wantEligible: true,
		},
		{
			name:       "duplicate application",
			tournament: openTournament,
			combatant:  func() *models.Combatant { return eligibleCombatant(180) },
			repo: fakeApplicationRepo{
				existing: &models.Application{ID: 1, Status: models.ApplicationApproved},
			},
			wantReason: "already registered",
		},
		{
			name:       "withdrawn application allows re-entry",
			tournament: openTournament,
			combatant:  func() *models.Combatant { return eligibleCombatant(180) },
			repo: fakeApplicationRepo{
				existing: &models.Application{ID: 1, Status: models.ApplicationWithdrawn},
			},
			wantEligible: true,
		},
		{
			name: "tournament full",
			tournament: func() *models.Tournament {
				t := openTournament()
				t.MaxParticipants = intPtr(8)
				return t
			},
			combatant:  func() *models.Combatant { return eligibleCombatant(180) },
			repo:       fakeApplicationRepo{approvedCount: 8},
			wantReason: "registration is full",
		},
		{
			name:       "weak combatant gets warning but stays eligible",
			tournament: openTournament,
			combatant:  func() *models.Combatant { return eligibleCombatant(90) },
			repo:       fakeApplicationRepo{averagePower: floatPtr(250)},
			wantEligible: true,
			wantWarning:  "below the field average",
		},
		{
			name: "deadline in the future is fine",
			tournament: func() *models.Tournament {
				t := openTournament()
				t.RegistrationDeadline = &futureDeadline
				return t
			},
			combatant:    func() *models.Combatant { return eligibleCombatant(180) },
			wantEligible: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := tc.repo
			checker := NewEligibilityChecker(&repo)
			result, err := checker.Check(context.Background(), tc.tournament(), tc.combatant(), now)
			if err != nil {
				t.Fatalf("Check returned error: %v", err)
			}
			if result.Eligible != tc.wantEligible {
				t.Fatalf("Eligible = %v, want %v (reasons: %v)", result.Eligible, tc.wantEligible, result.Reasons)
			}
			if tc.wantReason != "" && !containsSubstring(result.Reasons, tc.wantReason) {
				t.Errorf("reasons %v do not mention %q", result.Reasons, tc.wantReason)
			}
			if tc.wantWarning != "" && !containsSubstring(result.Warnings, tc.wantWarning) {
				t.Errorf("warnings %v do not mention %q", result.Warnings, tc.wantWarning)
			}
		})
	}
}

func TestEligibilityCheckCollectsAllReasons(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tournament := openTournament()
	tournament.Status = models.TournamentStatusActive
	combatant := eligibleCombatant(180)
	combatant.StatsFinal = false

	repo := fakeApplicationRepo{}
	checker := NewEligibilityChecker(&repo)
	result, err := checker.Check(context.Background(), tournament, combatant, now)
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if result.Eligible {
		t.Fatal("expected ineligible result")
	}
	if len(result.Reasons) < 2 {
		t.Fatalf("expected all failing rules collected, got %v", result.Reasons)
	}
}

func containsSubstring(list []string, substr string) bool {
	for _, s := range list {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}

package services

import (
	"testing"

	"github.com/Dosada05/bug-arena/models"
)

func TestBuildBracketViewGroupsByRound(t *testing.T) {
	tournament := &models.Tournament{ID: 9, Status: models.TournamentStatusActive}
	matches := []*models.TournamentMatch{
		{ID: 1, TournamentID: 9, RoundNumber: 1, MatchNumber: 1},
		{ID: 2, TournamentID: 9, RoundNumber: 1, MatchNumber: 2},
		{ID: 3, TournamentID: 9, RoundNumber: 2, MatchNumber: 1},
	}

	view := buildBracketView(tournament, nil, matches)

	if len(view.Rounds) != 2 {
		t.Fatalf("expected 2 rounds, got %d", len(view.Rounds))
	}
	if view.Rounds[0].RoundNumber != 1 || len(view.Rounds[0].Matches) != 2 {
		t.Fatalf("round 1 malformed: %+v", view.Rounds[0])
	}
	if view.Rounds[1].RoundNumber != 2 || len(view.Rounds[1].Matches) != 1 {
		t.Fatalf("round 2 malformed: %+v", view.Rounds[1])
	}
}

func TestBuildBracketViewEmpty(t *testing.T) {
	view := buildBracketView(&models.Tournament{ID: 9}, nil, nil)
	if len(view.Rounds) != 0 {
		t.Fatalf("expected no rounds for empty bracket, got %d", len(view.Rounds))
	}
}

func TestCanManage(t *testing.T) {
	svc := &tournamentService{}
	tournament := &models.Tournament{ID: 1, CreatedByID: 10}

	tests := []struct {
		name  string
		actor *models.User
		want  bool
	}{
		{"nil actor", nil, false},
		{"creator", &models.User{ID: 10, Role: models.RoleUser}, true},
		{"other user", &models.User{ID: 11, Role: models.RoleUser}, false},
		{"moderator", &models.User{ID: 11, Role: models.RoleModerator}, true},
		{"admin", &models.User{ID: 11, Role: models.RoleAdmin}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := svc.canManage(tc.actor, tournament); got != tc.want {
				t.Fatalf("canManage = %v, want %v", got, tc.want)
			}
		})
	}
}

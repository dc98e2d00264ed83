package brackets

import (
	"context"
	"errors"
	"math/rand"
)

// ErrInsufficientParticipants is returned when a bracket build is attempted
// with fewer than 2 approved entrants. No partial state is ever produced.
var ErrInsufficientParticipants = errors.New("not enough participants to generate a bracket (minimum 2)")

// Entrant is one approved tournament entrant entering the seeder.
type Entrant struct {
	CombatantID int

	// Power is the aggregate visible power used for ranking.
	Power int

	// Seed is assigned by the seeder: 1 is the strongest entrant.
	Seed int
}

type GenerateBracketParams struct {
	Entrants []Entrant

	// Rand shuffles the non-seeded entrants. Injectable so builds can be
	// reproduced in tests; nil uses a time-seeded source.
	Rand *rand.Rand
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error)

	GetName() string
}

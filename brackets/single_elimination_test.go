package brackets

import (
	"context"
	"errors"
	"math/rand"
	"testing"
)

func fixedRand() *rand.Rand {
	return rand.New(rand.NewSource(7))
}

func makeEntrants(powers ...int) []Entrant {
	entrants := make([]Entrant, len(powers))
	for i, p := range powers {
		entrants[i] = Entrant{CombatantID: i + 1, Power: p}
	}
	return entrants
}

func generate(t *testing.T, entrants []Entrant) []*BracketMatch {
	t.Helper()
	gen := NewSingleEliminationGenerator()
	matches, err := gen.GenerateBracket(context.Background(), GenerateBracketParams{
		Entrants: entrants,
		Rand:     fixedRand(),
	})
	if err != nil {
		t.Fatalf("GenerateBracket: %v", err)
	}
	return matches
}

func matchesInRound(matches []*BracketMatch, round int) []*BracketMatch {
	var out []*BracketMatch
	for _, m := range matches {
		if m.Round == round {
			out = append(out, m)
		}
	}
	return out
}

func TestSeedEntrants(t *testing.T) {
	seeded := SeedEntrants(makeEntrants(150, 280, 90, 280))
	wantIDs := []int{2, 4, 1, 3} // power desc, ID breaks the 280 tie
	for i, want := range wantIDs {
		if seeded[i].CombatantID != want {
			t.Errorf("seed %d: combatant %d, want %d", i+1, seeded[i].CombatantID, want)
		}
		if seeded[i].Seed != i+1 {
			t.Errorf("seed number = %d, want %d", seeded[i].Seed, i+1)
		}
	}
}

func TestGenerateBracket_EightEntrants(t *testing.T) {
	matches := generate(t, makeEntrants(280, 260, 240, 220, 200, 180, 160, 140))

	for round, want := range map[int]int{1: 4, 2: 2, 3: 1} {
		if got := len(matchesInRound(matches, round)); got != want {
			t.Errorf("round %d: %d matches, want %d", round, got, want)
		}
	}
	if len(matches) != 7 {
		t.Fatalf("total matches = %d, want 7", len(matches))
	}

	// Every round-2+ match must have exactly two predecessors pointing at it.
	predecessors := make(map[[2]int]int)
	for _, m := range matches {
		if m.HasNext() {
			predecessors[[2]int{m.NextRound, m.NextOrder}]++
		}
	}
	for _, m := range matches {
		if m.Round == 1 {
			continue
		}
		if got := predecessors[[2]int{m.Round, m.Order}]; got != 2 {
			t.Errorf("match R%dM%d has %d predecessors, want 2", m.Round, m.Order, got)
		}
	}

	// No byes for a full power-of-two field.
	for _, m := range matches {
		if m.IsBye {
			t.Errorf("unexpected bye at R%dM%d", m.Round, m.Order)
		}
	}
}

func TestGenerateBracket_TopSeedsInOppositeHalves(t *testing.T) {
	// Seeds 1 and 2 must be unable to meet before the final: following
	// the winner-propagation edges from their round-1 matches must reach
	// the final via different semifinal slots.
	matches := generate(t, makeEntrants(280, 260, 240, 220, 200, 180, 160, 140))

	byCoord := make(map[[2]int]*BracketMatch)
	for _, m := range matches {
		byCoord[[2]int{m.Round, m.Order}] = m
	}

	pathToFinal := func(combatantID int) [2]int {
		var cur *BracketMatch
		for _, m := range matchesInRound(matches, 1) {
			if (m.Combatant1ID != nil && *m.Combatant1ID == combatantID) ||
				(m.Combatant2ID != nil && *m.Combatant2ID == combatantID) {
				cur = m
			}
		}
		if cur == nil {
			t.Fatalf("combatant %d not placed in round 1", combatantID)
		}
		// Advance to the match feeding the final.
		for byCoord[[2]int{cur.NextRound, cur.NextOrder}].HasNext() {
			cur = byCoord[[2]int{cur.NextRound, cur.NextOrder}]
		}
		return [2]int{cur.Round, cur.Order}
	}

	// Combatant 1 holds seed 1, combatant 2 holds seed 2.
	semi1 := pathToFinal(1)
	semi2 := pathToFinal(2)
	if semi1 == semi2 {
		t.Fatalf("seeds 1 and 2 share semifinal %v; they must only meet in the final", semi1)
	}
}

func TestGenerateBracket_FiveEntrantsByes(t *testing.T) {
	matches := generate(t, makeEntrants(280, 260, 240, 220, 200))

	// ceil(log2(5)) = 3 rounds over a bracket of size 8.
	if got := len(matchesInRound(matches, 3)); got != 1 {
		t.Fatalf("round 3: %d matches, want 1", got)
	}

	byes := 0
	for _, m := range matchesInRound(matches, 1) {
		if m.IsBye {
			byes++
			if m.ByeCombatantID == nil {
				t.Error("bye match without a bye combatant")
			}
			if m.Combatant2ID != nil {
				t.Error("bye match must have a single entrant")
			}
		}
	}
	if byes != 3 {
		t.Errorf("byes = %d, want 3 for 5 entrants in a bracket of 8", byes)
	}

	// Seed 1 (combatant 1, highest power) holds the first pairing position
	// and must receive a bye.
	first := matchesInRound(matches, 1)[0]
	if !first.IsBye || first.ByeCombatantID == nil || *first.ByeCombatantID != 1 {
		t.Errorf("top seed must get the first bye, got %+v", first)
	}

	// Bye entrants are pre-filled into their round-2 slots.
	advanced := 0
	for _, m := range matchesInRound(matches, 2) {
		if m.Combatant1ID != nil {
			advanced++
		}
		if m.Combatant2ID != nil {
			advanced++
		}
	}
	if advanced != byes {
		t.Errorf("round 2 pre-filled slots = %d, want %d", advanced, byes)
	}
}

func TestGenerateBracket_InsufficientParticipants(t *testing.T) {
	gen := NewSingleEliminationGenerator()
	for _, entrants := range [][]Entrant{nil, makeEntrants(100)} {
		_, err := gen.GenerateBracket(context.Background(), GenerateBracketParams{Entrants: entrants, Rand: fixedRand()})
		if !errors.Is(err, ErrInsufficientParticipants) {
			t.Errorf("%d entrants: got %v, want ErrInsufficientParticipants", len(entrants), err)
		}
	}
}

func TestGenerateBracket_EveryEntrantPlacedOnce(t *testing.T) {
	for _, n := range []int{2, 3, 5, 6, 8, 13, 16} {
		powers := make([]int, n)
		for i := range powers {
			powers[i] = 300 - i*7
		}
		matches := generate(t, makeEntrants(powers...))

		placed := make(map[int]int)
		for _, m := range matchesInRound(matches, 1) {
			if m.Combatant1ID != nil {
				placed[*m.Combatant1ID]++
			}
			if m.Combatant2ID != nil {
				placed[*m.Combatant2ID]++
			}
		}
		if len(placed) != n {
			t.Errorf("n=%d: %d distinct entrants placed in round 1, want %d", n, len(placed), n)
		}
		for id, count := range placed {
			if count != 1 {
				t.Errorf("n=%d: combatant %d placed %d times in round 1", n, id, count)
			}
		}
	}
}

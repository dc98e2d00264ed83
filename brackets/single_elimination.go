package brackets

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"
)

// BracketMatch is one node of the generated elimination tree, addressable
// by (Round, Order). The tree only points forward: each match records the
// coordinates of the match that consumes its winner.
type BracketMatch struct {
	Round int
	Order int // 1-based position within the round

	Combatant1ID *int
	Combatant2ID *int

	// Bye: the single present entrant advances without a fight.
	IsBye          bool
	ByeCombatantID *int

	// Coordinates of the next-round match. NextRound == 0 for the final.
	NextRound int
	NextOrder int
}

// HasNext reports whether a following match consumes this match's winner.
func (m *BracketMatch) HasNext() bool { return m.NextRound != 0 }

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// SeedEntrants ranks entrants by aggregate power, strongest first, and
// assigns sequential seed numbers starting at 1. Ties break on combatant ID
// so seeding stays deterministic.
func SeedEntrants(entrants []Entrant) []Entrant {
	seeded := make([]Entrant, len(entrants))
	copy(seeded, entrants)
	sort.Slice(seeded, func(i, j int) bool {
		if seeded[i].Power != seeded[j].Power {
			return seeded[i].Power > seeded[j].Power
		}
		return seeded[i].CombatantID < seeded[j].CombatantID
	})
	for i := range seeded {
		seeded[i].Seed = i + 1
	}
	return seeded
}

// buildPairingSequence distributes seeds across bracket halves:
// seeds 1 and 3 open the left half, seeds 2 and 4 open the right half, and
// the remaining entrants are shuffled and split as evenly as possible.
// The returned sequence is leftHalf followed by rightHalf.
func buildPairingSequence(seeded []Entrant, rng *rand.Rand) []Entrant {
	n := len(seeded)
	topCount := 4
	if n < topCount {
		topCount = n
	}
	top := seeded[:topCount]
	rest := make([]Entrant, n-topCount)
	copy(rest, seeded[topCount:])
	rng.Shuffle(len(rest), func(i, j int) {
		rest[i], rest[j] = rest[j], rest[i]
	})

	var left, right []Entrant
	if topCount >= 1 {
		left = append(left, top[0]) // seed 1
	}
	if topCount >= 2 {
		right = append(right, top[1]) // seed 2
	}
	if topCount >= 3 {
		left = append(left, top[2]) // seed 3
	}
	if topCount >= 4 {
		right = append(right, top[3]) // seed 4
	}

	mid := len(rest) / 2
	left = append(left, rest[:mid]...)
	right = append(right, rest[mid:]...)

	return append(left, right...)
}

// GenerateBracket seeds the entrants, pairs round 1 outer-in (position i vs
// position L-1-i) and builds the full linked round structure. The sequence
// is padded with bye slots at its tail up to the bracket size, which hands
// every bye to the highest-placed remaining entrant; a bye match's entrant
// is written straight into its next-round slot.
//
// The build is all-or-nothing: any failure returns no matches at all.
func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error) {
	n := len(params.Entrants)
	if n < 2 {
		return nil, ErrInsufficientParticipants
	}

	rng := params.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	seeded := SeedEntrants(params.Entrants)
	sequence := buildPairingSequence(seeded, rng)

	numRounds := int(math.Ceil(math.Log2(float64(n))))
	bracketSize := 1 << uint(numRounds)
	numByes := bracketSize - n

	// Pad to the full bracket size; nil slots are byes.
	slots := make([]*Entrant, bracketSize)
	for i := range sequence {
		e := sequence[i]
		slots[i] = &e
	}

	matchesByCoord := make(map[[2]int]*BracketMatch, bracketSize-1)
	allMatches := make([]*BracketMatch, 0, bracketSize-1)

	addMatch := func(m *BracketMatch) {
		matchesByCoord[[2]int{m.Round, m.Order}] = m
		allMatches = append(allMatches, m)
	}

	// Placeholder matches for rounds 2..numRounds, linked forward.
	for r := 2; r <= numRounds; r++ {
		count := bracketSize >> uint(r)
		for order := 1; order <= count; order++ {
			m := &BracketMatch{Round: r, Order: order}
			if r < numRounds {
				m.NextRound = r + 1
				m.NextOrder = (order + 1) / 2
			}
			addMatch(m)
		}
	}

	// fillNextSlot propagates a known entrant into the consuming match,
	// slot 1 before slot 2.
	fillNextSlot := func(round, order int, combatantID int) error {
		next, ok := matchesByCoord[[2]int{round, order}]
		if !ok {
			return fmt.Errorf("bracket build inconsistency: missing match R%dM%d", round, order)
		}
		id := combatantID
		switch {
		case next.Combatant1ID == nil:
			next.Combatant1ID = &id
		case next.Combatant2ID == nil:
			next.Combatant2ID = &id
		default:
			return fmt.Errorf("bracket build inconsistency: match R%dM%d already full", round, order)
		}
		return nil
	}

	// Round 1: outer-in pairing over the padded sequence.
	for i := 0; i < bracketSize/2; i++ {
		s1 := slots[i]
		s2 := slots[bracketSize-1-i]

		m := &BracketMatch{Round: 1, Order: i + 1}
		if numRounds > 1 {
			m.NextRound = 2
			m.NextOrder = (m.Order + 1) / 2
		}

		switch {
		case s1 != nil && s2 != nil:
			id1, id2 := s1.CombatantID, s2.CombatantID
			m.Combatant1ID = &id1
			m.Combatant2ID = &id2
		case s1 != nil:
			id := s1.CombatantID
			m.IsBye = true
			m.ByeCombatantID = &id
			m.Combatant1ID = &id
			if m.HasNext() {
				if err := fillNextSlot(m.NextRound, m.NextOrder, id); err != nil {
					return nil, err
				}
			}
		case s2 != nil:
			id := s2.CombatantID
			m.IsBye = true
			m.ByeCombatantID = &id
			m.Combatant1ID = &id
			if m.HasNext() {
				if err := fillNextSlot(m.NextRound, m.NextOrder, id); err != nil {
					return nil, err
				}
			}
		default:
			// Byes only occupy the sequence tail and numByes < bracketSize/2,
			// so a bye cannot meet a bye.
			return nil, fmt.Errorf("bracket build inconsistency: two byes paired at position %d (byes=%d)", i, numByes)
		}
		addMatch(m)
	}

	sort.Slice(allMatches, func(i, j int) bool {
		if allMatches[i].Round != allMatches[j].Round {
			return allMatches[i].Round < allMatches[j].Round
		}
		return allMatches[i].Order < allMatches[j].Order
	})

	return allMatches, nil
}

package brackets

import "github.com/FedericoSorianox/TorneoBJJ/models"

// SingleEliminationGenerator builds a fully linked single-elimination tree.
// The competitor order is the seeding order; the generator never shuffles,
// so identical input always yields an identical structure.
type SingleEliminationGenerator struct{}

func (g *SingleEliminationGenerator) Name() models.EliminationType {
	return models.SingleElimination
}

func (g *SingleEliminationGenerator) Generate(competitors []CompetitorRef) ([]*GeneratedMatch, error) {
	return generateSingleElimination(competitors), nil
}

// generateSingleElimination pads the field to the next power of two with BYE
// slots, pairs neighbours round by round and numbers matches breadth-first
// (round-major, left to right, starting at 1). A match with a BYE slot is
// still emitted; short-circuiting byes is the caller's decision.
func generateSingleElimination(competitors []CompetitorRef) []*GeneratedMatch {
	n := len(competitors)
	if n == 0 {
		return []*GeneratedMatch{}
	}
	if n == 1 {
		// Degenerate bracket: a single placement record. The caller decides
		// how to surface the walkover.
		return []*GeneratedMatch{{
			MatchNumber: 1,
			Round:       1,
			P1:          competitors[0],
			P2:          TBD,
			Segment:     models.SegmentWinner,
		}}
	}

	size := 1
	for size < n {
		size *= 2
	}

	slots := make([]CompetitorRef, size)
	copy(slots, competitors)
	for i := n; i < size; i++ {
		slots[i] = Bye
	}

	// rounds[r] holds round r+1, left to right.
	var rounds [][]*GeneratedMatch

	firstRound := make([]*GeneratedMatch, 0, size/2)
	for i := 0; i < size; i += 2 {
		firstRound = append(firstRound, &GeneratedMatch{
			Round:   1,
			P1:      slots[i],
			P2:      slots[i+1],
			Segment: models.SegmentWinner,
		})
	}
	rounds = append(rounds, firstRound)

	for len(rounds[len(rounds)-1]) > 1 {
		prev := rounds[len(rounds)-1]
		next := make([]*GeneratedMatch, 0, (len(prev)+1)/2)
		for i := 0; i < len(prev); i += 2 {
			next = append(next, &GeneratedMatch{
				Round:   len(rounds) + 1,
				P1:      TBD,
				P2:      TBD,
				Segment: models.SegmentWinner,
			})
		}
		rounds = append(rounds, next)
	}

	matches := make([]*GeneratedMatch, 0, size-1)
	num := 1
	for _, round := range rounds {
		for _, m := range round {
			m.MatchNumber = num
			num++
			matches = append(matches, m)
		}
	}

	// Winner of match i in round r feeds slot 1 or 2 of match i/2 in r+1.
	for r := 0; r < len(rounds)-1; r++ {
		for i, m := range rounds[r] {
			parent := rounds[r+1][i/2]
			slot := Slot1
			if i%2 == 1 {
				slot = Slot2
			}
			m.AdvanceTo = &Advancement{MatchNumber: parent.MatchNumber, Slot: slot}
		}
	}

	return matches
}

package brackets

import "github.com/FedericoSorianox/TorneoBJJ/models"

// DoubleEliminationGenerator builds a winner bracket plus a consolation
// bracket fed by round-1 losers only. This is deliberately not full double
// elimination: losers from winner-bracket rounds 2+ are out of the
// tournament, which keeps the match count at (size-1) + (size/2 - 1) and is
// what the downstream bracket views expect. Do not extend it to drain later
// rounds without revisiting those expectations.
type DoubleEliminationGenerator struct{}

func (g *DoubleEliminationGenerator) Name() models.EliminationType {
	return models.DoubleElimination
}

func (g *DoubleEliminationGenerator) Generate(competitors []CompetitorRef) ([]*GeneratedMatch, error) {
	winner := generateSingleElimination(competitors)
	if len(winner) == 0 {
		return []*GeneratedMatch{}, nil
	}

	firstRound := make([]*GeneratedMatch, 0, len(winner))
	maxNumber := 0
	for _, m := range winner {
		if m.Round == 1 {
			firstRound = append(firstRound, m)
		}
		if m.MatchNumber > maxNumber {
			maxNumber = m.MatchNumber
		}
	}

	// One consolation entry per round-1 match; identities are only known
	// once those matches finish.
	placeholders := make([]CompetitorRef, len(firstRound))
	for i := range placeholders {
		placeholders[i] = TBD
	}
	loser := generateSingleElimination(placeholders)

	// Offset consolation numbering past the winner segment so match numbers
	// stay globally unique across both.
	for _, m := range loser {
		m.MatchNumber += maxNumber
		m.Segment = models.SegmentLoser
		if m.AdvanceTo != nil {
			m.AdvanceTo.MatchNumber += maxNumber
		}
	}

	loserFirstRound := make([]*GeneratedMatch, 0, len(loser))
	for _, m := range loser {
		if m.Round == 1 {
			loserFirstRound = append(loserFirstRound, m)
		}
	}

	for i, wm := range firstRound {
		lm := loserFirstRound[i/2]
		slot := Slot1
		if i%2 == 1 {
			slot = Slot2
		}
		wm.LoserAdvanceTo = &Advancement{MatchNumber: lm.MatchNumber, Slot: slot}
	}

	return append(winner, loser...), nil
}

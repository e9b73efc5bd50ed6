package brackets

import (
	"fmt"

	"github.com/FedericoSorianox/TorneoBJJ/models"
)

// CompetitorRef is an opaque competitor identifier inside a generated
// bracket. Brackets are built over whatever identifiers the caller supplies,
// in seeding order; uniqueness is the caller's responsibility.
type CompetitorRef string

const (
	// Bye marks a slot with no opponent in a padded first round.
	Bye CompetitorRef = "BYE"
	// TBD marks a slot resolved later by advancement.
	TBD CompetitorRef = "TBD"
)

// Slot is a competitor position within a match.
type Slot int

const (
	Slot1 Slot = 1
	Slot2 Slot = 2
)

// Advancement points a match's winner (or loser) at a slot of another match
// in the same generated bracket, by match number.
type Advancement struct {
	MatchNumber int
	Slot        Slot
}

// GeneratedMatch is the transient output of a bracket generator. The caller
// persists it (resolving match numbers to DB ids) or discards it.
type GeneratedMatch struct {
	MatchNumber int
	Round       int
	P1          CompetitorRef
	P2          CompetitorRef

	AdvanceTo      *Advancement
	LoserAdvanceTo *Advancement

	Segment models.BracketSegment
}

type Generator interface {
	Generate(competitors []CompetitorRef) ([]*GeneratedMatch, error)
	Name() models.EliminationType
}

// New returns the generator for the given elimination type.
func New(t models.EliminationType) (Generator, error) {
	switch t {
	case models.SingleElimination:
		return &SingleEliminationGenerator{}, nil
	case models.DoubleElimination:
		return &DoubleEliminationGenerator{}, nil
	default:
		return nil, fmt.Errorf("unsupported elimination type %q", t)
	}
}

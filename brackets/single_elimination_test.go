package brackets

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FedericoSorianox/TorneoBJJ/models"
)

func competitors(n int) []CompetitorRef {
	refs := make([]CompetitorRef, n)
	for i := range refs {
		refs[i] = CompetitorRef(fmt.Sprintf("a%d", i+1))
	}
	return refs
}

func TestSingleEliminationSizes(t *testing.T) {
	gen := &SingleEliminationGenerator{}

	tests := []struct {
		name        string
		competitors int
		wantMatches int
		wantRounds  int
	}{
		{"empty field", 0, 0, 0},
		{"single competitor", 1, 1, 1},
		{"two competitors", 2, 1, 1},
		{"three competitors", 3, 3, 2},
		{"four competitors", 4, 3, 2},
		{"five competitors", 5, 7, 3},
		{"eight competitors", 8, 7, 3},
		{"sixteen competitors", 16, 15, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches, err := gen.Generate(competitors(tt.competitors))
			require.NoError(t, err)
			require.Len(t, matches, tt.wantMatches)

			maxRound := 0
			for _, m := range matches {
				if m.Round > maxRound {
					maxRound = m.Round
				}
				assert.Equal(t, models.SegmentWinner, m.Segment)
			}
			assert.Equal(t, tt.wantRounds, maxRound)
		})
	}
}

func TestSingleEliminationNumbering(t *testing.T) {
	gen := &SingleEliminationGenerator{}
	matches, err := gen.Generate(competitors(8))
	require.NoError(t, err)

	// Breadth-first: numbers run 1..7 in round-major order.
	for i, m := range matches {
		assert.Equal(t, i+1, m.MatchNumber)
	}
	assert.Equal(t, 1, matches[0].Round)
	assert.Equal(t, 1, matches[3].Round)
	assert.Equal(t, 2, matches[4].Round)
	assert.Equal(t, 3, matches[6].Round)
}

func TestSingleEliminationByePadding(t *testing.T) {
	gen := &SingleEliminationGenerator{}
	matches, err := gen.Generate(competitors(5))
	require.NoError(t, err)

	// Field of 5 pads to 8: three BYE slots, all in round 1.
	byes := 0
	for _, m := range matches {
		if m.P1 == Bye {
			byes++
		}
		if m.P2 == Bye {
			byes++
		}
		if m.Round > 1 {
			assert.Equal(t, TBD, m.P1)
			assert.Equal(t, TBD, m.P2)
		}
	}
	assert.Equal(t, 3, byes)

	// Seeding order preserved: first pair is a1 vs a2.
	assert.Equal(t, CompetitorRef("a1"), matches[0].P1)
	assert.Equal(t, CompetitorRef("a2"), matches[0].P2)
}

func TestSingleEliminationAdvancement(t *testing.T) {
	gen := &SingleEliminationGenerator{}
	matches, err := gen.Generate(competitors(8))
	require.NoError(t, err)

	byNumber := make(map[int]*GeneratedMatch)
	for _, m := range matches {
		byNumber[m.MatchNumber] = m
	}

	final := matches[len(matches)-1]
	assert.Nil(t, final.AdvanceTo)

	// Every non-final match advances its winner into an existing
	// later-numbered match of the next round, and each target slot is
	// filled exactly once.
	type slotKey struct {
		number int
		slot   Slot
	}
	seen := make(map[slotKey]bool)
	for _, m := range matches {
		if m == final {
			continue
		}
		require.NotNil(t, m.AdvanceTo, "match %d has no advancement", m.MatchNumber)
		target, ok := byNumber[m.AdvanceTo.MatchNumber]
		require.True(t, ok)
		assert.Greater(t, target.MatchNumber, m.MatchNumber)
		assert.Equal(t, m.Round+1, target.Round)

		key := slotKey{m.AdvanceTo.MatchNumber, m.AdvanceTo.Slot}
		assert.False(t, seen[key], "slot %v targeted twice", key)
		seen[key] = true
	}
}

func TestSingleEliminationDegenerateBracket(t *testing.T) {
	gen := &SingleEliminationGenerator{}
	matches, err := gen.Generate(competitors(1))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	assert.Equal(t, CompetitorRef("a1"), matches[0].P1)
	assert.Equal(t, TBD, matches[0].P2)
	assert.Nil(t, matches[0].AdvanceTo)
}

func TestSingleEliminationDeterministic(t *testing.T) {
	gen := &SingleEliminationGenerator{}
	first, err := gen.Generate(competitors(6))
	require.NoError(t, err)
	second, err := gen.Generate(competitors(6))
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, *first[i], *second[i])
	}
}

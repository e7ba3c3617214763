package engine

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"civdraft/internal/catalog"
	"civdraft/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(seed uint64) *Engine {
	return New(rand.New(rand.NewPCG(seed, seed)))
}

var mapCategory = []catalog.Category{
	{Name: "Map", Options: []string{"Continents", "Pangaea"}},
}

// votesFor builds one single-category ballot per simulated participant.
func votesFor(category string, counts map[string]int) map[domain.ParticipantID]domain.Ballot {
	votes := make(map[domain.ParticipantID]domain.Ballot)
	i := 0
	for option, count := range counts {
		for n := 0; n < count; n++ {
			pid := domain.ParticipantID(fmt.Sprintf("p%d", i))
			votes[pid] = domain.Ballot{category: option}
			i++
		}
	}
	return votes
}

func TestResolveTally(t *testing.T) {
	eng := newTestEngine(1)
	votes := votesFor("Map", map[string]int{"Continents": 3, "Pangaea": 1})

	resolved := eng.Resolve(votes, mapCategory)

	require.Contains(t, resolved, "Map")
	result := resolved["Map"]
	assert.Equal(t, map[string]int{"Continents": 3, "Pangaea": 1}, result.Tally)
	assert.Contains(t, []string{"Continents", "Pangaea"}, result.Selected)
}

func TestResolveWeightedDistribution(t *testing.T) {
	eng := newTestEngine(42)
	votes := votesFor("Map", map[string]int{"Continents": 75, "Pangaea": 25})

	const trials = 10000
	wins := 0
	for i := 0; i < trials; i++ {
		resolved := eng.Resolve(votes, mapCategory)
		if resolved["Map"].Selected == "Continents" {
			wins++
		}
	}

	// 75% expected; the band is wide enough that a correct implementation
	// essentially never falls outside it.
	assert.Greater(t, wins, trials*70/100, "Continents selected too rarely: %d/%d", wins, trials)
	assert.Less(t, wins, trials*80/100, "Continents selected too often: %d/%d", wins, trials)
}

func TestResolveDeterministicWithSeed(t *testing.T) {
	votes := votesFor("Map", map[string]int{"Continents": 1, "Pangaea": 1, "Fractal": 1})
	categories := []catalog.Category{
		{Name: "Map", Options: []string{"Continents", "Pangaea", "Fractal"}},
	}

	first := newTestEngine(7).Resolve(votes, categories)
	second := newTestEngine(7).Resolve(votes, categories)

	assert.Equal(t, first, second)
}

func TestResolveIndependentDrawsPerCategory(t *testing.T) {
	eng := newTestEngine(3)
	categories := []catalog.Category{
		{Name: "Map", Options: []string{"Continents", "Pangaea"}},
		{Name: "Speed", Options: []string{"Standard", "Quick"}},
	}
	votes := map[domain.ParticipantID]domain.Ballot{
		"p0": {"Map": "Continents", "Speed": "Quick"},
		"p1": {"Map": "Pangaea", "Speed": "Quick"},
	}

	resolved := eng.Resolve(votes, categories)

	require.Len(t, resolved, 2)
	assert.Equal(t, "Quick", resolved["Speed"].Selected)
	assert.Equal(t, map[string]int{"Quick": 2}, resolved["Speed"].Tally)
}

func TestResolveOmitsUnvotedCategory(t *testing.T) {
	eng := newTestEngine(1)
	categories := []catalog.Category{
		{Name: "Map", Options: []string{"Continents", "Pangaea"}},
		{Name: "Speed", Options: []string{"Standard", "Quick"}},
	}
	votes := map[domain.ParticipantID]domain.Ballot{
		"p0": {"Map": "Continents"},
	}

	resolved := eng.Resolve(votes, categories)

	assert.Contains(t, resolved, "Map")
	assert.NotContains(t, resolved, "Speed")
}

func TestResolveForcedFallsBackToDefault(t *testing.T) {
	eng := newTestEngine(1)
	categories := []catalog.Category{
		{Name: "Map", Options: []string{"Continents", "Pangaea"}},
		{Name: "Speed", Options: []string{"Standard", "Quick"}},
	}
	votes := map[domain.ParticipantID]domain.Ballot{
		"p0": {"Map": "Pangaea"},
	}

	resolved := eng.ResolveForced(votes, categories)

	require.Len(t, resolved, 2)
	assert.Equal(t, "Pangaea", resolved["Map"].Selected)
	assert.Equal(t, "Standard", resolved["Speed"].Selected)
	assert.Empty(t, resolved["Speed"].Tally)
}

func TestResolveEmptyVotes(t *testing.T) {
	eng := newTestEngine(1)

	resolved := eng.Resolve(nil, mapCategory)

	assert.Empty(t, resolved)
}

package rankingsservice

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rosterdomain "github.com/combine-day/combine-bot/app/modules/roster/domain"
)

func intPtr(n int) *int { return &n }

func rankingSchema() rosterdomain.EventSchema {
	return rosterdomain.EventSchema{
		EventID: "evt-1",
		Drills: []rosterdomain.DrillDefinition{
			{Key: "vertical_jump", Label: "Vertical Jump (in)"},
			{Key: "lane_agility", Label: "Lane Agility (sec)", LowerIsBetter: true},
		},
	}
}

func TestComputeRankings(t *testing.T) {
	athletes := []rosterdomain.ExistingAthlete{
		{ID: "a", FirstName: "Ethan", LastName: "Garcia", Number: intPtr(1), Scores: map[string]float64{"vertical_jump": 30, "lane_agility": 10}},
		{ID: "b", FirstName: "Mia", LastName: "Lopez", Number: intPtr(2), Scores: map[string]float64{"vertical_jump": 20, "lane_agility": 12}},
	}

	ranked := ComputeRankings(athletes, rankingSchema())
	require.Len(t, ranked, 2)

	// Ethan is best on both drills: top of both normalized scales.
	assert.Equal(t, "a", ranked[0].AthleteID)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.InDelta(t, 100.0, ranked[0].Composite, 1e-9)
	assert.Equal(t, "b", ranked[1].AthleteID)
	assert.InDelta(t, 0.0, ranked[1].Composite, 1e-9)
}

func TestComputeRankings_LowerIsBetterInverts(t *testing.T) {
	athletes := []rosterdomain.ExistingAthlete{
		{ID: "slow", FirstName: "A", LastName: "One", Scores: map[string]float64{"lane_agility": 15}},
		{ID: "fast", FirstName: "B", LastName: "Two", Scores: map[string]float64{"lane_agility": 10}},
	}

	ranked := ComputeRankings(athletes, rankingSchema())
	assert.Equal(t, "fast", ranked[0].AthleteID)
	assert.Equal(t, "slow", ranked[1].AthleteID)
}

func TestComputeRankings_WeightsApply(t *testing.T) {
	schema := rosterdomain.EventSchema{
		EventID: "evt-1",
		Drills: []rosterdomain.DrillDefinition{
			{Key: "heavy", Weight: 3},
			{Key: "light", Weight: 1},
		},
	}
	athletes := []rosterdomain.ExistingAthlete{
		{ID: "heavy-winner", FirstName: "A", LastName: "One", Scores: map[string]float64{"heavy": 10, "light": 0}},
		{ID: "light-winner", FirstName: "B", LastName: "Two", Scores: map[string]float64{"heavy": 0, "light": 10}},
	}

	ranked := ComputeRankings(athletes, schema)
	assert.Equal(t, "heavy-winner", ranked[0].AthleteID)
	assert.InDelta(t, 75.0, ranked[0].Composite, 1e-9)
	assert.InDelta(t, 25.0, ranked[1].Composite, 1e-9)
}

func TestComputeRankings_MissingScoresDoNotPenalizeToZero(t *testing.T) {
	athletes := []rosterdomain.ExistingAthlete{
		{ID: "partial", FirstName: "A", LastName: "One", Scores: map[string]float64{"vertical_jump": 30}},
		{ID: "none", FirstName: "B", LastName: "Two"},
	}

	ranked := ComputeRankings(athletes, rankingSchema())
	require.Len(t, ranked, 2)
	// The athlete with no scores at all lands at composite zero.
	assert.Equal(t, "partial", ranked[0].AthleteID)
	assert.Equal(t, 0.0, ranked[1].Composite)
}

func TestComputeRankings_StableTiebreakOnName(t *testing.T) {
	athletes := []rosterdomain.ExistingAthlete{
		{ID: "z", FirstName: "Zoe", LastName: "Young"},
		{ID: "a", FirstName: "Amy", LastName: "Adams"},
	}

	ranked := ComputeRankings(athletes, rankingSchema())
	assert.Equal(t, "a", ranked[0].AthleteID)
	assert.Equal(t, "z", ranked[1].AthleteID)
}

func TestComputeDrillStats(t *testing.T) {
	athletes := []rosterdomain.ExistingAthlete{
		{ID: "a", Scores: map[string]float64{"vertical_jump": 30, "lane_agility": 10}},
		{ID: "b", Scores: map[string]float64{"vertical_jump": 20}},
		{ID: "c"},
	}

	stats := ComputeDrillStats(athletes, rankingSchema())
	require.Len(t, stats, 2)

	vj := stats[0]
	assert.Equal(t, "vertical_jump", vj.Key)
	assert.Equal(t, 2, vj.Count)
	assert.Equal(t, 1, vj.Missing)
	assert.Equal(t, 20.0, vj.Min)
	assert.Equal(t, 30.0, vj.Max)
	assert.InDelta(t, 25.0, vj.Mean, 1e-9)

	la := stats[1]
	assert.Equal(t, 1, la.Count)
	assert.Equal(t, 2, la.Missing)
}

var pngHeader = []byte{0x89, 'P', 'N', 'G'}

func TestGenerateRankingChart(t *testing.T) {
	t.Run("renders PNG for ranked athletes", func(t *testing.T) {
		ranked := []RankedAthlete{
			{AthleteID: "a", Name: "Ethan Garcia", Number: intPtr(1002), Composite: 88.2, Rank: 1},
			{AthleteID: "b", Name: "Mia Lopez", Composite: 71.5, Rank: 2},
		}

		png, err := GenerateRankingChart(ranked)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(png, pngHeader))
	})

	t.Run("empty roster renders placeholder", func(t *testing.T) {
		png, err := GenerateRankingChart(nil)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(png, pngHeader))
	})
}

package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultThresholds = Thresholds{Watch: 4.0, Surge: 5.0}

func TestInflowScore(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		min, max float64
		expected float64
	}{
		{"minimum maps to 3.0", 10, 10, 110, 3.0},
		{"maximum maps to 6.0", 110, 10, 110, 6.0},
		{"midpoint maps to 4.5", 60, 10, 110, 4.5},
		{"below range clamps", 0, 10, 110, 3.0},
		{"above range clamps", 500, 10, 110, 6.0},
		{"degenerate range stays on scale", 42, 42, 42, 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, InflowScore(tt.value, tt.min, tt.max), 0.01)
		})
	}
}

func TestTierFor(t *testing.T) {
	assert.Equal(t, TierNormal, TierFor(3.9, defaultThresholds))
	assert.Equal(t, TierWatch, TierFor(4.0, defaultThresholds))
	assert.Equal(t, TierWatch, TierFor(4.99, defaultThresholds))
	assert.Equal(t, TierSurge, TierFor(5.0, defaultThresholds))
	assert.Equal(t, TierSurge, TierFor(6.0, defaultThresholds))
}

func TestRecommendationsFor(t *testing.T) {
	surge := RecommendationsFor(TierSurge)
	assert.Len(t, surge, 4)
	assert.Contains(t, surge, "Deploy mobile Aadhaar van")

	// Callers get their own copy.
	surge[0] = "mutated"
	assert.NotContains(t, RecommendationsFor(TierSurge), "mutated")

	assert.Equal(t, []string{"Monitor trends"}, RecommendationsFor(Tier("bogus")))
}

func TestRank(t *testing.T) {
	totals := map[string]float64{
		"DL": 400,
		"MH": 100,
		"UP": 400,
		"WB": 250,
	}

	alerts := Rank(totals, "2023-06", defaultThresholds, 10)
	require.Len(t, alerts, 4)

	// Highest score first, region code breaking the tie between DL and UP.
	assert.Equal(t, "DL", alerts[0].Region)
	assert.Equal(t, "UP", alerts[1].Region)
	assert.Equal(t, "WB", alerts[2].Region)
	assert.Equal(t, "MH", alerts[3].Region)

	assert.Equal(t, 6.0, alerts[0].Score)
	assert.Equal(t, TierSurge, alerts[0].Tier)
	assert.Equal(t, 3.0, alerts[3].Score)
	assert.Equal(t, TierNormal, alerts[3].Tier)

	for _, a := range alerts {
		assert.Equal(t, "2023-06", a.Month)
		assert.NotEmpty(t, a.Recommendations)
	}
}

func TestRank_Limit(t *testing.T) {
	totals := map[string]float64{"DL": 3, "MH": 2, "UP": 1}

	alerts := Rank(totals, "2023-06", defaultThresholds, 2)
	require.Len(t, alerts, 2)
	assert.Equal(t, "DL", alerts[0].Region)
	assert.Equal(t, "MH", alerts[1].Region)
}

func TestRank_Empty(t *testing.T) {
	assert.Nil(t, Rank(nil, "2023-06", defaultThresholds, 10))
}

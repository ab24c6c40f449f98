package scoring

import (
	"math"
	"sort"
)

// Tier labels a migration inflow level.
type Tier string

const (
	TierNormal Tier = "NORMAL"
	TierWatch  Tier = "WATCH"
	TierSurge  Tier = "SURGE"
)

// Thresholds are the inflow-score cut-offs for the WATCH and SURGE
// tiers on the 3.0-6.0 presentation scale.
type Thresholds struct {
	Watch float64
	Surge float64
}

// Alert is one ranked region-level migration inflow alert.
type Alert struct {
	Region          string
	Month           string
	Score           float64
	Tier            Tier
	Recommendations []string
}

var recommendations = map[Tier][]string{
	TierNormal: {"Monitor trends"},
	TierWatch: {
		"Increase staff shifts for 14 days",
		"Add multilingual helpdesk",
	},
	TierSurge: {
		"Open 2 temporary enrollment/update camps",
		"Deploy mobile Aadhaar van",
		"Increase ration shop capacity",
		"Set up drinking water + shade",
	},
}

// InflowScore maps a raw inflow value onto the 3.0-6.0 presentation
// scale given the observed value range. Values are clamped so outliers
// never leave the scale.
func InflowScore(value, rawMin, rawMax float64) float64 {
	denom := (rawMax - rawMin) + 1e-9
	x := (value - rawMin) / denom
	x = math.Max(0, math.Min(1, x))
	return math.Round((3.0+3.0*x)*100) / 100
}

// TierFor buckets an inflow score into a tier.
func TierFor(score float64, th Thresholds) Tier {
	switch {
	case score >= th.Surge:
		return TierSurge
	case score >= th.Watch:
		return TierWatch
	default:
		return TierNormal
	}
}

// RecommendationsFor returns the operational playbook for a tier.
func RecommendationsFor(tier Tier) []string {
	recs, ok := recommendations[tier]
	if !ok {
		return recommendations[TierNormal]
	}
	out := make([]string, len(recs))
	copy(out, recs)
	return out
}

// Rank scores each region's inflow total for one month and returns up
// to limit alerts, highest score first. Ties break on region code so
// the ordering is deterministic.
func Rank(totals map[string]float64, month string, th Thresholds, limit int) []Alert {
	if len(totals) == 0 {
		return nil
	}

	rawMin, rawMax := math.Inf(1), math.Inf(-1)
	for _, v := range totals {
		rawMin = math.Min(rawMin, v)
		rawMax = math.Max(rawMax, v)
	}

	alerts := make([]Alert, 0, len(totals))
	for region, v := range totals {
		score := InflowScore(v, rawMin, rawMax)
		tier := TierFor(score, th)
		alerts = append(alerts, Alert{
			Region:          region,
			Month:           month,
			Score:           score,
			Tier:            tier,
			Recommendations: RecommendationsFor(tier),
		})
	}

	sort.Slice(alerts, func(i, j int) bool {
		if alerts[i].Score != alerts[j].Score {
			return alerts[i].Score > alerts[j].Score
		}
		return alerts[i].Region < alerts[j].Region
	})

	if limit > 0 && len(alerts) > limit {
		alerts = alerts[:limit]
	}
	return alerts
}

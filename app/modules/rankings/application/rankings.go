// Package rankingsservice computes composite score rankings over an event's
// roster and renders them as charts.
package rankingsservice

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	rosterdomain "github.com/combine-day/combine-bot/app/modules/roster/domain"
	rosterdb "github.com/combine-day/combine-bot/app/modules/roster/infrastructure/repositories"
	"github.com/combine-day/combine-bot/internal/observability/attr"
)

// RankedAthlete is one roster entry with its composite score.
type RankedAthlete struct {
	AthleteID string  `json:"athlete_id"`
	Name      string  `json:"name"`
	Number    *int    `json:"number,omitempty"`
	AgeGroup  string  `json:"age_group,omitempty"`
	Composite float64 `json:"composite"`
	Rank      int     `json:"rank"`
}

// DrillStats summarizes one drill across the roster.
type DrillStats struct {
	Key     string  `json:"key"`
	Count   int     `json:"count"`
	Missing int     `json:"missing"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Mean    float64 `json:"mean"`
}

// RankingsService reads the roster and produces rankings.
type RankingsService struct {
	repo   rosterdb.Repository
	logger *slog.Logger
}

// NewRankingsService creates a new RankingsService.
func NewRankingsService(repo rosterdb.Repository, logger *slog.Logger) *RankingsService {
	return &RankingsService{repo: repo, logger: logger}
}

// GetRankings computes the composite ranking for an event.
func (s *RankingsService) GetRankings(ctx context.Context, eventID string) ([]RankedAthlete, error) {
	schema, err := s.repo.GetEventSchema(ctx, eventID)
	if err != nil {
		return nil, err
	}
	athletes, err := s.repo.GetAthletesByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	ranked := ComputeRankings(athletes, schema)
	s.logger.InfoContext(ctx, "Rankings computed",
		attr.String("event_id", eventID),
		attr.Int("athletes", len(ranked)),
	)
	return ranked, nil
}

// ComputeRankings derives composite scores. Each drill is min-max normalized
// to 0..100 across the roster, inverted when lower is better, weighted by the
// schema weight (default 1), then averaged over the drills the athlete has
// values for. Pure function; ties break on name for stable output.
func ComputeRankings(athletes []rosterdomain.ExistingAthlete, schema rosterdomain.EventSchema) []RankedAthlete {
	type bounds struct {
		min, max float64
		seen     bool
	}

	drillBounds := make(map[string]*bounds, len(schema.Drills))
	for _, d := range schema.Drills {
		drillBounds[d.Key] = &bounds{}
	}

	for _, a := range athletes {
		for key, v := range a.Scores {
			b, ok := drillBounds[key]
			if !ok {
				continue
			}
			if !b.seen || v < b.min {
				b.min = v
			}
			if !b.seen || v > b.max {
				b.max = v
			}
			b.seen = true
		}
	}

	ranked := make([]RankedAthlete, 0, len(athletes))
	for _, a := range athletes {
		var weightedSum, weightTotal float64
		for _, d := range schema.Drills {
			v, ok := a.Scores[d.Key]
			if !ok {
				continue
			}
			b := drillBounds[d.Key]

			normalized := 100.0
			if b.max > b.min {
				normalized = (v - b.min) / (b.max - b.min) * 100
			}
			if d.LowerIsBetter {
				normalized = 100 - normalized
			}

			weight := d.Weight
			if weight == 0 {
				weight = 1
			}
			weightedSum += normalized * weight
			weightTotal += weight
		}

		composite := 0.0
		if weightTotal > 0 {
			composite = weightedSum / weightTotal
		}

		ranked = append(ranked, RankedAthlete{
			AthleteID: a.ID,
			Name:      strings.TrimSpace(a.FirstName + " " + a.LastName),
			Number:    a.Number,
			AgeGroup:  a.AgeGroup,
			Composite: composite,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Composite != ranked[j].Composite {
			return ranked[i].Composite > ranked[j].Composite
		}
		return ranked[i].Name < ranked[j].Name
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// ComputeDrillStats aggregates per-drill min/max/mean and missing counts,
// feeding the event stats view.
func ComputeDrillStats(athletes []rosterdomain.ExistingAthlete, schema rosterdomain.EventSchema) []DrillStats {
	stats := make([]DrillStats, 0, len(schema.Drills))
	for _, d := range schema.Drills {
		st := DrillStats{Key: d.Key}
		var sum float64
		for _, a := range athletes {
			v, ok := a.Scores[d.Key]
			if !ok {
				st.Missing++
				continue
			}
			if st.Count == 0 || v < st.Min {
				st.Min = v
			}
			if st.Count == 0 || v > st.Max {
				st.Max = v
			}
			sum += v
			st.Count++
		}
		if st.Count > 0 {
			st.Mean = sum / float64(st.Count)
		}
		stats = append(stats, st)
	}
	return stats
}

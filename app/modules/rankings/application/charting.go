package rankingsservice

import (
	"bytes"
	"context"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const chartTopN = 10

// RenderRankingChart produces a PNG bar chart of the top composite scores for
// an event.
func (s *RankingsService) RenderRankingChart(ctx context.Context, eventID string) ([]byte, error) {
	ranked, err := s.GetRankings(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return GenerateRankingChart(ranked)
}

// GenerateRankingChart renders the top entries as a bar chart.
func GenerateRankingChart(ranked []RankedAthlete) ([]byte, error) {
	if len(ranked) == 0 {
		return renderNoDataPlaceholder()
	}

	top := ranked
	if len(top) > chartTopN {
		top = top[:chartTopN]
	}

	bars := make([]chart.Value, 0, len(top))
	for _, r := range top {
		label := r.Name
		if r.Number != nil {
			label = fmt.Sprintf("%s #%d", r.Name, *r.Number)
		}
		bars = append(bars, chart.Value{Label: label, Value: r.Composite})
	}

	graph := chart.BarChart{
		Title:    "Composite Ranking",
		Width:    900,
		Height:   450,
		BarWidth: 50,
		Background: chart.Style{
			FillColor: drawing.ColorWhite,
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: 100},
		},
		Bars: bars,
	}

	var buffer bytes.Buffer
	if err := graph.Render(chart.PNG, &buffer); err != nil {
		return nil, fmt.Errorf("failed to render ranking chart: %w", err)
	}
	return buffer.Bytes(), nil
}

func renderNoDataPlaceholder() ([]byte, error) {
	graph := chart.Chart{
		Width:  400,
		Height: 200,
		Background: chart.Style{
			FillColor: drawing.ColorWhite,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{XValues: []float64{0, 1}, YValues: []float64{0, 0}},
		},
	}

	var buffer bytes.Buffer
	if err := graph.Render(chart.PNG, &buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

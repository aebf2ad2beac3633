package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/pagetype/internal/model"
)

func TestWPM(t *testing.T) {
	assert.Equal(t, 0, WPM(10, 0))
	assert.Equal(t, 0, WPM(10, -5))
	assert.Equal(t, 0, WPM(0, 1000))
	// 50 chars = 10 words in one minute.
	assert.Equal(t, 10, WPM(50, 60000))
	// 3 chars in 1.2s: (3/5)/(0.02) = 30.
	assert.Equal(t, 30, WPM(3, 1200))
	// 7 chars in 10s: 1.4 words / (1/6) min = 8.4 -> 8.
	assert.Equal(t, 8, WPM(7, 10000))
	// 9 chars in 12s: 1.8 / 0.2 = 9.
	assert.Equal(t, 9, WPM(9, 12000))
}

func TestAccuracy(t *testing.T) {
	assert.Equal(t, 100.0, Accuracy(0, 0))
	assert.Equal(t, 100.0, Accuracy(0, 7))
	assert.Equal(t, 100.0, Accuracy(1, 0))
	assert.Equal(t, 0.0, Accuracy(1, 1))
	assert.Equal(t, 50.0, Accuracy(2, 1))
	assert.Equal(t, 66.7, Accuracy(3, 1))
	assert.Equal(t, 0.0, Accuracy(2, 9))
}

func TestAccuracyAlwaysInRange(t *testing.T) {
	for cursor := 0; cursor < 40; cursor++ {
		for mistakes := 0; mistakes < 80; mistakes++ {
			acc := Accuracy(cursor, mistakes)
			require.GreaterOrEqual(t, acc, 0.0)
			require.LessOrEqual(t, acc, 100.0)
		}
	}
}

func records(wpms ...int) []model.StatsRecord {
	out := make([]model.StatsRecord, len(wpms))
	for i, w := range wpms {
		out[i] = model.StatsRecord{WPM: w, Accuracy: float64(90 + i%10)}
	}
	return out
}

func TestAggregate(t *testing.T) {
	s := Aggregate(nil, 0)
	assert.Equal(t, Summary{Window: DefaultWindow}, s)

	recs := records(10, 20, 30, 40, 50, 60, 70, 80, 90, 100, 110, 120)
	s = Aggregate(recs, 10)
	assert.Equal(t, 12, s.Total)
	// Last 10: 30..120.
	assert.Equal(t, 75.0, s.RecentWPM)
	assert.Equal(t, 65.0, s.OverallWPM)
	// Accuracies 90..99 then 90, 91; recent = 92..99,90,91.
	assert.Equal(t, 94.5, s.RecentAccuracy)
	assert.Equal(t, 93.8, s.OverallAccuracy)
}

func TestAggregateShortHistory(t *testing.T) {
	s := Aggregate([]model.StatsRecord{{WPM: 41, Accuracy: 70}, {WPM: 40, Accuracy: 95}}, 10)
	assert.Equal(t, 40.5, s.RecentWPM)
	assert.Equal(t, s.RecentWPM, s.OverallWPM)
	assert.Equal(t, 82.5, s.RecentAccuracy)
}

func TestMovingAverage(t *testing.T) {
	assert.Equal(t, []float64{1, 2, 3}, MovingAverage([]float64{1, 2, 3}, 1))
	assert.Equal(t, []float64{2, 3, 5, 7}, MovingAverage([]float64{2, 4, 6, 8}, 2))
	assert.Empty(t, MovingAverage(nil, 3))
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "", Sparkline(nil))
	assert.Equal(t, "+++", Sparkline([]float64{4, 4, 4}))
	assert.Equal(t, " @", Sparkline([]float64{0, 10}))
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSummary(&buf, Summary{}))
	assert.Equal(t, "No games played yet.\n", buf.String())

	buf.Reset()
	require.NoError(t, RenderSummary(&buf, Aggregate(records(40, 50), 10)))
	out := buf.String()
	for _, want := range []string{"Games: 2", "Recent WPM (last 10): 45.0", "Recent Accuracy (last 10): 90.5%", "Overall WPM: 45.0", "Overall Accuracy: 90.5%"} {
		assert.Contains(t, out, want)
	}
}

func TestRenderHistory(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderHistory(&buf, nil))
	assert.Empty(t, buf.String())

	completed := time.Date(2026, 3, 1, 12, 30, 0, 0, time.Local)
	recs := []model.StatsRecord{
		{CompletedAt: completed, WPM: 41, Accuracy: 66.7, Typed: 3, TargetLength: 3, Mistakes: 1, Completed: true, Source: "hi.html"},
		{CompletedAt: completed, WPM: 12, Accuracy: 100, Typed: 4, TargetLength: 90, Source: "long.txt"},
	}
	require.NoError(t, RenderHistory(&buf, recs))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "History", lines[0])
	assert.Contains(t, lines[1], "Completed")
	assert.Contains(t, lines[2], "2026-03-01 12:30")
	assert.Contains(t, lines[2], "66.7%")
	assert.Contains(t, lines[2], "done")
	assert.Contains(t, lines[3], "4/90")
	assert.Contains(t, lines[3], "stopped")
}

func TestRenderTrend(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderTrend(&buf, records(10), 1, 80))
	assert.Empty(t, buf.String())

	require.NoError(t, RenderTrend(&buf, records(10, 20, 30, 40, 50), 1, 13))
	assert.Equal(t, "WPM trend  +@\n\n", buf.String())
}

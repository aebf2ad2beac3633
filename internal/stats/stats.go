// Package stats contains score calculations and the aggregation view over the
// session history.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/pagetype/internal/model"
)

const (
	sparkChars = " .:-=+*#%@"

	// charsPerWord is the standard word length used for WPM.
	charsPerWord = 5

	// DefaultWindow is the trailing window used for recent averages.
	DefaultWindow = 10
)

// WPM computes words per minute from matched characters and elapsed time.
func WPM(cursor int, elapsedMs int64) int {
	if elapsedMs <= 0 || cursor <= 0 {
		return 0
	}
	minutes := float64(elapsedMs) / 60000.0
	return int(math.Round((float64(cursor) / charsPerWord) / minutes))
}

// Accuracy computes the percentage of advancing keystrokes that were not
// offset by mistakes, rounded to one decimal and floored at zero.
func Accuracy(cursor, mistakes int) float64 {
	if cursor <= 0 {
		return 100
	}
	acc := Round1(float64(cursor-mistakes) / float64(cursor) * 100)
	if acc < 0 {
		return 0
	}
	return acc
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Summary holds trailing-window and all-time averages.
type Summary struct {
	Total           int
	Window          int
	RecentWPM       float64
	RecentAccuracy  float64
	OverallWPM      float64
	OverallAccuracy float64
}

// Aggregate averages WPM and accuracy over the last window records and over
// all records. Records must be in chronological order.
func Aggregate(records []model.StatsRecord, window int) Summary {
	if window <= 0 {
		window = DefaultWindow
	}
	s := Summary{Total: len(records), Window: window}
	if len(records) == 0 {
		return s
	}
	recent := records
	if len(recent) > window {
		recent = recent[len(recent)-window:]
	}
	s.RecentWPM, s.RecentAccuracy = averages(recent)
	s.OverallWPM, s.OverallAccuracy = averages(records)
	return s
}

func averages(records []model.StatsRecord) (wpm, accuracy float64) {
	var sumWPM, sumAcc float64
	for _, r := range records {
		sumWPM += float64(r.WPM)
		sumAcc += r.Accuracy
	}
	n := float64(len(records))
	return Round1(sumWPM / n), Round1(sumAcc / n)
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		out[i] = sum / float64(min(i+1, window))
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints the recent and overall averages.
func RenderSummary(w io.Writer, s Summary) error {
	if s.Total == 0 {
		_, err := fmt.Fprintln(w, "No games played yet.")
		return err
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Games: %d", s.Total),
		fmt.Sprintf("Recent WPM (last %d): %.1f", s.Window, s.RecentWPM),
		fmt.Sprintf("Recent Accuracy (last %d): %.1f%%", s.Window, s.RecentAccuracy),
		fmt.Sprintf("Overall WPM: %.1f", s.OverallWPM),
		fmt.Sprintf("Overall Accuracy: %.1f%%", s.OverallAccuracy),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderTrend prints a sparkline of the WPM moving average, keeping only the
// most recent points that fit in width columns.
func RenderTrend(w io.Writer, records []model.StatsRecord, window, width int) error {
	if len(records) < 2 {
		return nil
	}
	wpms := make([]float64, len(records))
	for i, r := range records {
		wpms[i] = float64(r.WPM)
	}
	wpms = MovingAverage(wpms, window)
	const label = "WPM trend "
	if avail := width - len(label); avail > 0 && len(wpms) > avail {
		wpms = wpms[len(wpms)-avail:]
	}
	if _, err := fmt.Fprintf(w, "%s%s\n\n", label, Sparkline(wpms)); err != nil {
		return err
	}
	return nil
}

// RenderHistory prints one row per record, oldest first.
func RenderHistory(w io.Writer, records []model.StatsRecord) error {
	if len(records) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "History"); err != nil {
		return err
	}
	headers := []string{"#", "Completed", "WPM", "Accuracy", "Typed", "Mistakes", "Status", "Source"}
	rows := make([][]string, 0, len(records))
	for i, r := range records {
		status := "done"
		if !r.Completed {
			status = "stopped"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			r.CompletedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", r.WPM),
			fmt.Sprintf("%.1f%%", r.Accuracy),
			fmt.Sprintf("%d/%d", r.Typed, r.TargetLength),
			fmt.Sprintf("%d", r.Mistakes),
			status,
			r.Source,
		})
	}
	rightAlign := map[int]bool{0: true, 2: true, 3: true, 4: true, 5: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

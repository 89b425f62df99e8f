package report

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/ethpandaops/uimatrix/internal/matrix"
)

// Attention is a result that makes the run unsuccessful.
type Attention struct {
	Key      string  `json:"key"`
	Outcome  Outcome `json:"outcome"`
	Reason   string  `json:"reason,omitempty"`
	Error    string  `json:"error,omitempty"`
	Failures int     `json:"failed_assertions"`
	Artifact string  `json:"artifact,omitempty"`
}

// Timing holds elapsed-time statistics. Scenario statistics cover results that
// actually ran.
type Timing struct {
	Wall time.Duration
	Min  time.Duration
	Max  time.Duration
	Mean time.Duration
	P50  time.Duration
	P95  time.Duration
}

// MarshalJSON renders durations as milliseconds.
func (t Timing) MarshalJSON() ([]byte, error) {
	ms := func(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }

	return json.Marshal(struct {
		Wall float64 `json:"wall_ms"`
		Min  float64 `json:"min_ms"`
		Max  float64 `json:"max_ms"`
		Mean float64 `json:"mean_ms"`
		P50  float64 `json:"p50_ms"`
		P95  float64 `json:"p95_ms"`
	}{ms(t.Wall), ms(t.Min), ms(t.Max), ms(t.Mean), ms(t.P50), ms(t.P95)})
}

// Summary is the aggregate of one run.
type Summary struct {
	RunID     string           `json:"run_id"`
	Total     int              `json:"total"`
	Counts    map[Outcome]int  `json:"counts"`
	Attention []Attention      `json:"attention"`
	Skipped   []matrix.Skipped `json:"skipped"`
	Timing    Timing           `json:"timing"`
	Success   bool             `json:"success"`
	Results   []Result         `json:"results"`
}

// Count returns the number of results with outcome o.
func (s Summary) Count(o Outcome) int {
	return s.Counts[o]
}

// Summarize aggregates results. Excluded pairs are counted under OutcomeSkipped.
func Summarize(runID string, results []Result, skipped []matrix.Skipped, wall time.Duration) Summary {
	s := Summary{
		RunID:     runID,
		Total:     len(results) + len(skipped),
		Counts:    make(map[Outcome]int, len(Outcomes)),
		Attention: make([]Attention, 0),
		Skipped:   append(make([]matrix.Skipped, 0, len(skipped)), skipped...),
		Results:   append(make([]Result, 0, len(results)), results...),
		Success:   true,
	}

	sort.SliceStable(s.Results, func(i, j int) bool { return s.Results[i].Index < s.Results[j].Index })

	for _, o := range Outcomes {
		s.Counts[o] = 0
	}

	s.Counts[OutcomeSkipped] = len(skipped)

	durations := make([]time.Duration, 0, len(results))

	for i := range results {
		r := &results[i]
		s.Counts[r.Outcome]++

		if r.Outcome.NeedsAttention() {
			s.Success = false
			s.Attention = append(s.Attention, Attention{
				Key:      r.Key,
				Outcome:  r.Outcome,
				Reason:   r.Reason,
				Error:    r.Error,
				Failures: len(r.FailedAssertions()),
				Artifact: r.Artifact,
			})
		}

		if r.State != StateSkippedTimeout {
			durations = append(durations, r.Duration)
		}
	}

	sort.Slice(s.Attention, func(i, j int) bool { return s.Attention[i].Key < s.Attention[j].Key })

	s.Timing = timing(durations)
	s.Timing.Wall = wall

	return s
}

func timing(durations []time.Duration) Timing {
	if len(durations) == 0 {
		return Timing{}
	}

	sorted := append([]time.Duration(nil), durations...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var total time.Duration
	for _, d := range sorted {
		total += d
	}

	return Timing{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: total / time.Duration(len(sorted)),
		P50:  percentile(sorted, 50),
		P95:  percentile(sorted, 95),
	}
}

// percentile uses the nearest-rank method on sorted input.
func percentile(sorted []time.Duration, p int) time.Duration {
	rank := (p*len(sorted) + 99) / 100
	if rank < 1 {
		rank = 1
	}

	return sorted[rank-1]
}

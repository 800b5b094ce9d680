package models

import "time"

// -----------------------------------------------------------------------------
// Statistic output of the analysis pipeline.
// -----------------------------------------------------------------------------

// MStatisticResult carries the per-bin (x channel) -log10(p) array, or an
// explicit empty marker when fewer than 2 pairs have accumulated. Produced
// fresh on every recompute and never mutated after emission.
type MStatisticResult struct {
	Empty      bool        `json:"empty"`
	Data       [][]float64 `json:"data,omitempty"`
	FreqAxis   MAxis       `json:"freq_axis"`
	Pairs      int         `json:"pairs"`
	Correction float64     `json:"correction"`
	ComputedAt time.Time   `json:"computed_at"`
}

// -----------------------------------------------------------------------------

// MStatisticSummary is the topline derived from each non-empty result for
// storage and the dashboard header.
type MStatisticSummary struct {
	PeakStatistic float64   `json:"peak_statistic"`
	PeakFreqHz    float64   `json:"peak_freq_hz"`
	PeakChannel   int       `json:"peak_channel"`
	BinsOver      int       `json:"bins_over_threshold"`
	Threshold     float64   `json:"threshold"`
	Pairs         int       `json:"pairs"`
	ComputedAt    time.Time `json:"computed_at"`
}

// -----------------------------------------------------------------------------

// Summarize derives the summary of a non-empty result. threshold is the
// significance level applied to the -log10(p) values.
func (r MStatisticResult) Summarize(threshold float64) MStatisticSummary {
	s := MStatisticSummary{
		Threshold:  threshold,
		Pairs:      r.Pairs,
		ComputedAt: r.ComputedAt,
	}

	first := true
	for bin, row := range r.Data {
		for ch, v := range row {
			if first || v > s.PeakStatistic {
				s.PeakStatistic = v
				s.PeakFreqHz = r.FreqAxis.Value(bin)
				s.PeakChannel = ch
				first = false
			}
			if v >= threshold {
				s.BinsOver++
			}
		}
	}

	return s
}

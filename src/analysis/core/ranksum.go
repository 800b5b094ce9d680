package core

import (
	"math"
	"sort"
)

// -----------------------------------------------------------------------------
// Wilcoxon rank-sum (Mann-Whitney U) test, two-sided, with the normal
// approximation, tie correction and continuity correction. Applied per
// frequency bin to compare baseline magnitudes against stimulus magnitudes.
// -----------------------------------------------------------------------------

// RankSumPValue returns the two-sided p-value of the rank-sum test comparing
// samples x and y. Groups smaller than one observation, or a zero-variance
// rank distribution (all values tied), return p = 1.
func RankSumPValue(x, y []float64) float64 {
	n1 := len(x)
	n2 := len(y)
	if n1 == 0 || n2 == 0 {
		return 1
	}

	combined := make([]float64, 0, n1+n2)
	combined = append(combined, x...)
	combined = append(combined, y...)
	ranks, tieTerm := rankWithTies(combined)

	// Rank sum of the first group
	r1 := 0.0
	for i := 0; i < n1; i++ {
		r1 += ranks[i]
	}

	fn1 := float64(n1)
	fn2 := float64(n2)
	n := fn1 + fn2

	u1 := r1 - fn1*(fn1+1)/2
	mu := fn1 * fn2 / 2
	sigma := math.Sqrt(fn1 * fn2 / 12 * ((n + 1) - tieTerm/(n*(n-1))))

	if sigma == 0 {
		return 1
	}

	// Continuity correction toward the mean
	diff := u1 - mu
	var corrected float64
	switch {
	case diff > 0:
		corrected = diff - 0.5
	case diff < 0:
		corrected = diff + 0.5
	}

	z := corrected / sigma
	return math.Erfc(math.Abs(z) / math.Sqrt2)
}

// -----------------------------------------------------------------------------

// rankWithTies assigns average ranks (1-based) to data and returns the tie
// correction term sum(t^3 - t) over tie groups.
func rankWithTies(data []float64) ([]float64, float64) {
	n := len(data)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return data[order[a]] < data[order[b]]
	})

	ranks := make([]float64, n)
	tieTerm := 0.0

	i := 0
	for i < n {
		j := i
		for j+1 < n && data[order[j+1]] == data[order[i]] {
			j++
		}

		// Average rank over the tie group [i, j]
		avg := float64(i+j+2) / 2
		for k := i; k <= j; k++ {
			ranks[order[k]] = avg
		}

		t := float64(j - i + 1)
		tieTerm += t*t*t - t

		i = j + 1
	}

	return ranks, tieTerm
}

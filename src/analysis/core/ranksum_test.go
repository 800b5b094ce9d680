package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func TestRankSumPValueSeparatedGroups(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	y := []float64{101, 102, 103, 104, 105, 106, 107, 108}

	p := RankSumPValue(x, y)
	require.Less(t, p, 0.01, "fully separated groups should be highly significant")
	require.Greater(t, p, 0.0)
}

// -----------------------------------------------------------------------------

func TestRankSumPValueIsSymmetric(t *testing.T) {
	x := []float64{1.2, 0.4, 3.3, 2.8, 0.9, 1.7}
	y := []float64{2.1, 4.0, 3.9, 1.1, 2.2, 5.3}

	assert.InDelta(t, RankSumPValue(x, y), RankSumPValue(y, x), 1e-12)
}

// -----------------------------------------------------------------------------

func TestRankSumPValueOverlappingGroups(t *testing.T) {
	x := []float64{1, 3, 5, 7, 9, 11}
	y := []float64{2, 4, 6, 8, 10, 12}

	p := RankSumPValue(x, y)
	assert.Greater(t, p, 0.5, "interleaved groups should not be significant")
	assert.LessOrEqual(t, p, 1.0)
}

// -----------------------------------------------------------------------------

func TestRankSumPValueAllTied(t *testing.T) {
	x := []float64{4, 4, 4, 4}
	y := []float64{4, 4, 4, 4}

	// Zero rank variance, the test is undefined and must report p = 1
	assert.Equal(t, 1.0, RankSumPValue(x, y))
}

// -----------------------------------------------------------------------------

func TestRankSumPValueEmptyGroup(t *testing.T) {
	assert.Equal(t, 1.0, RankSumPValue(nil, []float64{1, 2, 3}))
	assert.Equal(t, 1.0, RankSumPValue([]float64{1, 2, 3}, nil))
}

// -----------------------------------------------------------------------------

func TestRankWithTiesAverageRanks(t *testing.T) {
	ranks, tieTerm := rankWithTies([]float64{10, 20, 20, 30})

	assert.Equal(t, []float64{1, 2.5, 2.5, 4}, ranks)
	// One tie group of size 2: 2^3 - 2 = 6
	assert.Equal(t, 6.0, tieTerm)
}

// -----------------------------------------------------------------------------

func TestRankWithTiesNoTies(t *testing.T) {
	ranks, tieTerm := rankWithTies([]float64{5, 1, 3})

	assert.Equal(t, []float64{3, 1, 2}, ranks)
	assert.Equal(t, 0.0, tieTerm)
}

package optimize

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"futures-backtest/internal/model"
)

func TestGridSearchRanksAndTruncates(t *testing.T) {
	universe := []model.ParamSet{
		{"lookback": 5},
		{"lookback": 10},
		{"lookback": 20},
	}
	score := func(p model.ParamSet) (float64, error) {
		return -p["lookback"], nil // shorter lookback scores higher
	}

	g := NewGridSearch(2, zerolog.Nop())
	best, err := g.Search(universe, score)
	require.NoError(t, err)
	require.Len(t, best, 2)
	assert.Equal(t, 5.0, best[0]["lookback"])
	assert.Equal(t, 10.0, best[1]["lookback"])
}

func TestGridSearchNBestLargerThanUniverse(t *testing.T) {
	g := NewGridSearch(10, zerolog.Nop())
	best, err := g.Search([]model.ParamSet{{"x": 1}}, func(model.ParamSet) (float64, error) { return 0, nil })
	require.NoError(t, err)
	assert.Len(t, best, 1)
}

func TestGridSearchEmptyUniverse(t *testing.T) {
	g := NewGridSearch(1, zerolog.Nop())
	_, err := g.Search(nil, func(model.ParamSet) (float64, error) { return 0, nil })
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
}

func TestGridSearchPropagatesScoreError(t *testing.T) {
	boom := errors.New("boom")
	g := NewGridSearch(1, zerolog.Nop())
	_, err := g.Search([]model.ParamSet{{"x": 1}}, func(model.ParamSet) (float64, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
}

func TestUniverseCartesianProduct(t *testing.T) {
	u := Universe(map[string][]float64{
		"a": {1, 2},
		"b": {10, 20, 30},
	})
	require.Len(t, u, 6)
	seen := map[[2]float64]bool{}
	for _, p := range u {
		seen[[2]float64{p["a"], p["b"]}] = true
	}
	assert.Len(t, seen, 6)
}

func TestUniverseEmpty(t *testing.T) {
	assert.Nil(t, Universe(nil))
}

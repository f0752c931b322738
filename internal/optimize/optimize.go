// Package optimize defines the parameter-search capability and ships a
// brute-force grid search as the in-repo reference implementation.
// External optimizers (genetic search and friends) plug in through the
// same interface.
package optimize

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"futures-backtest/internal/model"
)

// ScoreFunc evaluates one parameter set over an in-sample span.
// Higher is better.
type ScoreFunc func(params model.ParamSet) (float64, error)

// Optimizer ranks a parameter universe by score.
type Optimizer interface {
	Search(universe []model.ParamSet, score ScoreFunc) ([]model.ParamSet, error)
}

// GridSearch scores every point in the universe and keeps the NBest.
type GridSearch struct {
	NBest int
	log   zerolog.Logger
}

// NewGridSearch returns a brute-force optimizer keeping nbest results.
func NewGridSearch(nbest int, log zerolog.Logger) *GridSearch {
	return &GridSearch{NBest: nbest, log: log.With().Str("component", "gridsearch").Logger()}
}

func (g *GridSearch) Search(universe []model.ParamSet, score ScoreFunc) ([]model.ParamSet, error) {
	if len(universe) == 0 {
		return nil, fmt.Errorf("%w: empty parameter universe", model.ErrInvalidArgument)
	}
	type scored struct {
		params model.ParamSet
		score  float64
	}
	results := make([]scored, 0, len(universe))
	for _, p := range universe {
		s, err := score(p)
		if err != nil {
			return nil, fmt.Errorf("score %v: %w", p, err)
		}
		results = append(results, scored{params: p, score: s})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].score > results[j].score })

	n := g.NBest
	if n <= 0 || n > len(results) {
		n = len(results)
	}
	out := make([]model.ParamSet, 0, n)
	for _, r := range results[:n] {
		out = append(out, r.params)
	}
	g.log.Debug().Int("universe", len(universe)).Int("selected", n).
		Float64("best_score", results[0].score).Msg("grid search done")
	return out, nil
}

// Universe expands named value ranges into their cartesian product.
func Universe(ranges map[string][]float64) []model.ParamSet {
	names := make([]string, 0, len(ranges))
	for k := range ranges {
		names = append(names, k)
	}
	sort.Strings(names)

	out := []model.ParamSet{{}}
	for _, name := range names {
		var next []model.ParamSet
		for _, base := range out {
			for _, v := range ranges[name] {
				p := base.Clone()
				p[name] = v
				next = append(next, p)
			}
		}
		out = next
	}
	if len(out) == 1 && len(out[0]) == 0 {
		return nil
	}
	return out
}

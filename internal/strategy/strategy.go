// Package strategy defines the pluggable hooks a trading strategy
// supplies to the walk-forward runner, and a registry resolving
// strategies by name for configuration and persisted-run reload.
package strategy

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"futures-backtest/internal/ledger"
	"futures-backtest/internal/market"
	"futures-backtest/internal/model"
	"futures-backtest/internal/replay"
)

// Context bundles the collaborators a strategy works against. Scoped to
// one backtest run.
type Context struct {
	Ledger  *ledger.Ledger
	Pricing market.Pricing
	Log     zerolog.Logger
}

// Strategy is one tradable signal definition.
type Strategy interface {
	Name() string

	// ParamUniverse enumerates the parameter sets the optimizer searches.
	ParamUniverse() []model.ParamSet

	// Calculate computes the exposure signal for one parameter set over
	// the given trading days.
	Calculate(params model.ParamSet, days []time.Time) (*replay.ExposureTable, error)

	// CalculatePosition turns the day's member exposures into ledger
	// mutations.
	CalculatePosition(date time.Time, frame replay.Frame) error
}

// Factory constructs a strategy from its YAML settings.
type Factory func(ctx Context, settings map[string]any) (Strategy, error)

var factories = map[string]Factory{}

// Register installs a strategy constructor under name. Called from
// package init at startup; duplicate names panic.
func Register(name string, f Factory) {
	if _, dup := factories[name]; dup {
		panic(fmt.Sprintf("strategy: duplicate registration of %q", name))
	}
	factories[name] = f
}

// New resolves a registered strategy by name.
func New(name string, ctx Context, settings map[string]any) (Strategy, error) {
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %v)", model.ErrUnknownStrategy, name, Names())
	}
	return f(ctx, settings)
}

// Names lists the registered strategies, sorted.
func Names() []string {
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

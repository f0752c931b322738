package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"futures-backtest/internal/ledger"
	"futures-backtest/internal/model"
	"futures-backtest/internal/wfo"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	// Optional: load the quote table from a separate JSON file. A
	// relative path is resolved against the config file's directory.
	QuotesFile string `yaml:"quotes_file"`

	Strategy StrategyConfig `yaml:"strategy"`
	Calendar CalendarConfig `yaml:"calendar"`
	Rollover RolloverConfig `yaml:"rollover"`
	Costs    CostsConfig    `yaml:"costs"`
	Optimize OptimizeConfig `yaml:"optimize"`
	StoreDir string         `yaml:"store_dir"`
}

type StrategyConfig struct {
	Name     string         `yaml:"name"`
	Settings map[string]any `yaml:"settings"`
}

type CalendarConfig struct {
	Period     string `yaml:"period"`      // weekly | monthly
	WindowType string `yaml:"window_type"` // rolling | expanding
	OOSPeriods int    `yaml:"oos_periods"`
	IISPeriods int    `yaml:"iis_periods"`
	WeekAnchor string `yaml:"week_anchor"` // weekday name, default Friday
}

type RolloverConfig struct {
	FutureDays int `yaml:"future_days"`
	OptionDays int `yaml:"option_days"`
}

type CostsConfig struct {
	FeePerContract float64 `yaml:"fee_per_contract"`
}

type OptimizeConfig struct {
	NBest int `yaml:"nbest"`
}

// Load reads, defaults and validates a config file.
func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads a config without defaulting or validation. Useful
// for debugging partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	if c.QuotesFile != "" && !filepath.IsAbs(c.QuotesFile) {
		cand := filepath.Join(filepath.Dir(path), c.QuotesFile)
		if _, err := os.Stat(cand); err == nil {
			c.QuotesFile = cand
		}
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Calendar.Period == "" {
		c.Calendar.Period = string(wfo.Weekly)
	}
	if c.Calendar.WindowType == "" {
		c.Calendar.WindowType = string(wfo.Rolling)
	}
	if c.Calendar.WeekAnchor == "" {
		c.Calendar.WeekAnchor = "Friday"
	}
	if c.Rollover.FutureDays == 0 {
		c.Rollover.FutureDays = 7
	}
	if c.Rollover.OptionDays == 0 {
		c.Rollover.OptionDays = 7
	}
	if c.Optimize.NBest == 0 {
		c.Optimize.NBest = 1
	}
	if c.StoreDir == "" {
		c.StoreDir = "results"
	}
}

// Validate checks the config by constructing the component configs it
// maps to.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Strategy.Name == "" {
		return errors.New("strategy.name is required")
	}
	if _, err := c.WeekAnchor(); err != nil {
		return err
	}
	cal, err := c.CalendarConfig()
	if err != nil {
		return err
	}
	// Probe window generation against a synthetic range wide enough for
	// any stride; only the parameter checks matter here.
	probe := model.DateRange{
		First: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		Last:  time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if _, err := wfo.BuildCalendar(cal, probe); err != nil {
		return fmt.Errorf("calendar config invalid: %w", err)
	}
	return nil
}

// CalendarConfig maps the YAML shape onto the wfo package's config.
func (c *Config) CalendarConfig() (wfo.CalendarConfig, error) {
	anchor, err := c.WeekAnchor()
	if err != nil {
		return wfo.CalendarConfig{}, err
	}
	return wfo.CalendarConfig{
		Period:     wfo.Period(c.Calendar.Period),
		WindowType: wfo.WindowType(c.Calendar.WindowType),
		OOSPeriods: c.Calendar.OOSPeriods,
		IISPeriods: c.Calendar.IISPeriods,
		WeekAnchor: anchor,
	}, nil
}

// RolloverDays maps the rollover thresholds onto the ledger's config.
func (c *Config) RolloverDays() ledger.RolloverDays {
	return ledger.RolloverDays{Future: c.Rollover.FutureDays, Option: c.Rollover.OptionDays}
}

// WeekAnchor parses the configured weekday name.
func (c *Config) WeekAnchor() (time.Weekday, error) {
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if strings.EqualFold(wd.String(), c.Calendar.WeekAnchor) {
			return wd, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown week_anchor %q", model.ErrInvalidArgument, c.Calendar.WeekAnchor)
}

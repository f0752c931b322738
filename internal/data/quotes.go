// Package data loads quote tables from disk into the static pricing
// source. The production data engine is an external collaborator; this
// package only covers file-backed series for demos, tests and research.
package data

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"futures-backtest/internal/market"
	"futures-backtest/internal/model"
)

const dateLayout = "2006-01-02"

// QuotesFile is the on-disk quote table shape.
type QuotesFile struct {
	Series []SeriesDoc `json:"series"`
}

// SeriesDoc is one instrument's quote history.
type SeriesDoc struct {
	Ticker     string     `json:"ticker"`
	Kind       string     `json:"kind"`
	PointValue float64    `json:"point_value"`
	Expiration string     `json:"expiration,omitempty"` // YYYY-MM-DD, empty = never
	Quotes     []QuoteDoc `json:"quotes"`
}

// QuoteDoc is one day's marks.
type QuoteDoc struct {
	Date        string  `json:"date"` // YYYY-MM-DD
	DecisionPx  float64 `json:"decision_px"`
	ExecutionPx float64 `json:"execution_px"`
	Delta       float64 `json:"delta,omitempty"`
}

// LoadQuotesJSON reads a quote table file into pricing series.
func LoadQuotesJSON(path string) ([]market.Series, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var qf QuotesFile
	if err := json.Unmarshal(raw, &qf); err != nil {
		return nil, fmt.Errorf("decode quotes %s: %w", path, err)
	}
	return qf.ToSeries()
}

// ToSeries converts the file shape into pricing series.
func (qf QuotesFile) ToSeries() ([]market.Series, error) {
	out := make([]market.Series, 0, len(qf.Series))
	for _, sd := range qf.Series {
		kind := model.AssetKind(sd.Kind)
		switch kind {
		case model.KindFuture, model.KindCall, model.KindPut, model.KindStock:
		default:
			return nil, fmt.Errorf("%w: unknown asset kind %q for %s", model.ErrInvalidArgument, sd.Kind, sd.Ticker)
		}
		pv := sd.PointValue
		if pv == 0 {
			pv = 1
		}
		sr := market.Series{
			Asset: model.AssetRef{Ticker: sd.Ticker, Kind: kind, PointValue: pv},
		}
		if sd.Expiration != "" {
			exp, err := time.ParseInLocation(dateLayout, sd.Expiration, time.UTC)
			if err != nil {
				return nil, fmt.Errorf("expiration for %s: %w", sd.Ticker, err)
			}
			sr.Expiration = exp
		}
		for _, qd := range sd.Quotes {
			d, err := time.ParseInLocation(dateLayout, qd.Date, time.UTC)
			if err != nil {
				return nil, fmt.Errorf("quote date for %s: %w", sd.Ticker, err)
			}
			sr.Quotes = append(sr.Quotes, market.Quote{
				Date:       d,
				DecisionPx: qd.DecisionPx,
				ExecPx:     qd.ExecutionPx,
				Delta:      qd.Delta,
			})
		}
		out = append(out, sr)
	}
	return out, nil
}

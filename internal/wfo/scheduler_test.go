package wfo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"futures-backtest/internal/model"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func window(iisStart, oosStart, oosEnd string) model.WFOWindow {
	return model.WFOWindow{
		IISStart: day(iisStart),
		IISEnd:   day(oosStart),
		OOSStart: day(oosStart),
		OOSEnd:   day(oosEnd),
	}
}

func TestNextActionFirstRun(t *testing.T) {
	quotes := model.DateRange{First: day("2023-01-06"), Last: day("2023-03-31")}

	// Candidate in-sample end beyond available quotes.
	beyond := window("2023-03-10", "2023-04-07", "2023-04-14")
	assert.Equal(t, Skip, NextAction(nil, beyond, quotes, day("2023-04-01")))

	inside := window("2023-02-03", "2023-03-03", "2023-03-10")
	assert.Equal(t, Optimize, NextAction(nil, inside, quotes, day("2023-03-04")))
}

func TestNextActionSameWindowReruns(t *testing.T) {
	quotes := model.DateRange{First: day("2023-01-06"), Last: day("2023-03-31")}
	last := window("2023-02-03", "2023-03-03", "2023-03-10")
	assert.Equal(t, Run, NextAction(&last, last, quotes, day("2023-03-11")))
}

func TestNextActionStaleCandidateSkips(t *testing.T) {
	quotes := model.DateRange{First: day("2023-01-06"), Last: day("2023-03-31")}
	last := window("2023-02-10", "2023-03-10", "2023-03-17")
	stale := window("2023-02-03", "2023-03-03", "2023-03-10")
	assert.Equal(t, Skip, NextAction(&last, stale, quotes, day("2023-03-18")))
}

func TestNextActionBeyondQuotes(t *testing.T) {
	quotes := model.DateRange{First: day("2023-01-06"), Last: day("2023-03-31")}
	last := window("2023-02-24", "2023-03-24", "2023-03-31")
	cand := window("2023-03-03", "2023-04-07", "2023-04-14")

	// Wall clock before the candidate's span: nothing more to do yet.
	assert.Equal(t, Break, NextAction(&last, cand, quotes, day("2023-04-01")))

	// Wall clock inside the span: the weekend re-optimization trigger.
	assert.Equal(t, Optimize, NextAction(&last, cand, quotes, day("2023-04-08")))

	// Wall clock past the span: stop, the window is gone.
	assert.Equal(t, Break, NextAction(&last, cand, quotes, day("2023-04-20")))
}

func TestNextActionNewHistoryOptimizes(t *testing.T) {
	quotes := model.DateRange{First: day("2023-01-06"), Last: day("2023-04-28")}
	last := window("2023-02-03", "2023-03-03", "2023-03-10")
	cand := window("2023-02-10", "2023-03-10", "2023-03-17")
	assert.Equal(t, Optimize, NextAction(&last, cand, quotes, day("2023-04-29")))
}

func TestNextActionTotality(t *testing.T) {
	// Every reachable combination yields exactly one known action.
	quotes := model.DateRange{First: day("2023-01-06"), Last: day("2023-03-31")}
	lasts := []*model.WFOWindow{nil}
	for _, w := range []model.WFOWindow{
		window("2023-02-03", "2023-03-03", "2023-03-10"),
		window("2023-02-24", "2023-03-24", "2023-03-31"),
	} {
		w := w
		lasts = append(lasts, &w)
	}
	cands := []model.WFOWindow{
		window("2023-02-03", "2023-03-03", "2023-03-10"),
		window("2023-02-10", "2023-03-10", "2023-03-17"),
		window("2023-03-03", "2023-04-07", "2023-04-14"),
		window("2023-05-05", "2023-06-02", "2023-06-09"),
	}
	nows := []time.Time{day("2023-01-01"), day("2023-03-15"), day("2023-04-10"), day("2023-07-01")}

	for _, last := range lasts {
		for _, cand := range cands {
			for _, now := range nows {
				a := NextAction(last, cand, quotes, now)
				assert.Contains(t, []Action{Skip, Optimize, Run, Break}, a)
				assert.NotEqual(t, "unknown", a.String())
			}
		}
	}
}

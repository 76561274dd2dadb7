package analysis

import (
	"math"
	"sort"
	"time"

	"github.com/gridsol/solar-pr-lab/internal/common"
	"github.com/gridsol/solar-pr-lab/internal/daily"
)

// BudgetPeriod assigns a target PR value to the annual span starting at Start.
// Each span runs through the day before the next period's Start; the last
// period extends one year ([Jul 1 Y, Jun 30 Y+1], both ends inclusive).
type BudgetPeriod struct {
	Start time.Time
	Value float64
}

// BudgetCurve is an ordered list of budget periods. Dates outside the defined
// range clamp to the nearest period: before the first period the first value
// applies, after the last the last value applies. Every date gets a value.
type BudgetCurve []BudgetPeriod

// NewBudgetCurve builds the stepped annual target curve: for each year Y in
// [firstYear, lastYear] the period starting July 1 of Y carries
// base * decay^(Y - firstYear).
func NewBudgetCurve(cfg common.BudgetConfig) BudgetCurve {
	curve := make(BudgetCurve, 0, cfg.LastYear-cfg.FirstYear+1)
	for year := cfg.FirstYear; year <= cfg.LastYear; year++ {
		curve = append(curve, BudgetPeriod{
			Start: daily.Day(year, time.July, 1),
			Value: cfg.Base * math.Pow(cfg.Decay, float64(year-cfg.FirstYear)),
		})
	}
	return curve
}

// DefaultBudgetCurve returns the standard target curve: 73.9 on July 1 2019,
// declining 0.8% per year through the period starting July 1 2022.
func DefaultBudgetCurve() BudgetCurve {
	return NewBudgetCurve(common.BudgetConfig{
		Base:      73.9,
		Decay:     0.992,
		FirstYear: 2019,
		LastYear:  2022,
	})
}

// ValueAt returns the target PR for a date, clamping to the nearest period
// outside the defined range. Panics only on an empty curve, which no caller
// constructs.
func (c BudgetCurve) ValueAt(d time.Time) float64 {
	// Latest period whose start is on or before d.
	i := sort.Search(len(c), func(i int) bool { return c[i].Start.After(d) })
	if i == 0 {
		return c[0].Value
	}
	return c[i-1].Value
}

package fixedincome

import (
	"fmt"

	"github.com/seenimoa/investlab/pkg/models"
)

// Reprice returns the exact price of inst after a parallel shift of its
// yield by yieldChange.
func Reprice(inst models.Instrument, yieldChange float64) (float64, error) {
	shifted := inst
	shifted.YieldToMaturity += yieldChange
	price, err := PresentValue(shifted)
	if err != nil {
		return 0, fmt.Errorf("repricing at %+.4f: %w", yieldChange, err)
	}
	return price, nil
}

// ShockTable compares the duration and duration-convexity approximations
// with exact repricing for each yield shift in shocks.
func ShockTable(inst models.Instrument, shocks []float64) ([]models.YieldShock, error) {
	m, err := ComputeBondMetrics(inst)
	if err != nil {
		return nil, err
	}

	rows := make([]models.YieldShock, 0, len(shocks))
	for _, dy := range shocks {
		repriced, err := Reprice(inst, dy)
		if err != nil {
			return nil, err
		}
		approx := PriceChange(m.Price, m.ModifiedDuration, m.Convexity, dy)
		exact := repriced - m.Price
		rows = append(rows, models.YieldShock{
			YieldChange:   dy,
			DurationOnly:  PriceChange(m.Price, m.ModifiedDuration, 0, dy),
			WithConvexity: approx,
			Exact:         exact,
			Error:         approx - exact,
		})
	}
	return rows, nil
}

// Package fixedincome provides closed-form valuation and interest-rate risk
// measures for fixed-coupon bonds priced per 100 of face value.
package fixedincome

import (
	"errors"
	"fmt"
	"math"

	"github.com/seenimoa/investlab/pkg/models"
)

// ErrInvalidInput is returned for instrument parameters that cannot be
// priced: non-positive maturity or frequency, a discount base at or below
// zero, or non-finite values.
var ErrInvalidInput = errors.New("fixedincome: invalid input")

// periodTolerance bounds how far maturity*freq may sit from a whole number
// of coupon periods.
const periodTolerance = 1e-9

// ════════════════════════════════════════════════════════════════════
// Validation
// ════════════════════════════════════════════════════════════════════

// Validate checks that inst can be discounted without producing NaN or Inf.
func Validate(inst models.Instrument) error {
	if inst.PaymentsPerYear <= 0 {
		return fmt.Errorf("%w: payments per year must be positive, got %d", ErrInvalidInput, inst.PaymentsPerYear)
	}
	if !finite(inst.MaturityYears) || inst.MaturityYears <= 0 {
		return fmt.Errorf("%w: maturity must be positive, got %v", ErrInvalidInput, inst.MaturityYears)
	}
	if !finite(inst.CouponRate) || inst.CouponRate < 0 {
		return fmt.Errorf("%w: coupon rate must be non-negative, got %v", ErrInvalidInput, inst.CouponRate)
	}
	if !finite(inst.YieldToMaturity) {
		return fmt.Errorf("%w: yield must be finite, got %v", ErrInvalidInput, inst.YieldToMaturity)
	}
	if 1+inst.PeriodRate() <= 0 {
		return fmt.Errorf("%w: yield %v gives a non-positive discount base at %d payments per year",
			ErrInvalidInput, inst.YieldToMaturity, inst.PaymentsPerYear)
	}
	periods := inst.MaturityYears * float64(inst.PaymentsPerYear)
	if math.Abs(periods-math.Round(periods)) > periodTolerance {
		return fmt.Errorf("%w: maturity %v is not a whole number of %d-per-year periods",
			ErrInvalidInput, inst.MaturityYears, inst.PaymentsPerYear)
	}
	return nil
}

// ════════════════════════════════════════════════════════════════════
// Cash flows
// ════════════════════════════════════════════════════════════════════

// CashFlows returns the coupon and principal schedule of inst with each
// payment discounted at the per-period yield. The final period carries the
// last coupon plus the 100 principal.
func CashFlows(inst models.Instrument) ([]models.CashFlow, error) {
	if err := Validate(inst); err != nil {
		return nil, err
	}
	return schedule(inst), nil
}

func schedule(inst models.Instrument) []models.CashFlow {
	n := inst.Periods()
	freq := float64(inst.PaymentsPerYear)
	base := 1 + inst.PeriodRate()
	coupon := inst.Coupon()

	flows := make([]models.CashFlow, n)
	discount := 1.0
	for t := 1; t <= n; t++ {
		discount /= base
		amount := coupon
		if t == n {
			amount += models.FaceValue
		}
		flows[t-1] = models.CashFlow{
			Period:       t,
			Time:         float64(t) / freq,
			Amount:       amount,
			PresentValue: amount * discount,
		}
	}
	return flows
}

// ════════════════════════════════════════════════════════════════════
// Valuation and risk measures
// ════════════════════════════════════════════════════════════════════

// PresentValue returns the price of inst per 100 face.
func PresentValue(inst models.Instrument) (float64, error) {
	m, err := ComputeBondMetrics(inst)
	if err != nil {
		return 0, err
	}
	return m.Price, nil
}

// MacaulayDuration returns the present-value weighted average time, in
// years, at which the cash flows of inst are received.
func MacaulayDuration(inst models.Instrument) (float64, error) {
	m, err := ComputeBondMetrics(inst)
	if err != nil {
		return 0, err
	}
	return m.MacaulayDuration, nil
}

// ModifiedDuration converts a Macaulay duration into the first-order
// percentage price sensitivity: macaulay / (1 + ytm/freq).
func ModifiedDuration(macaulay, ytm float64, paymentsPerYear int) (float64, error) {
	if paymentsPerYear <= 0 {
		return 0, fmt.Errorf("%w: payments per year must be positive, got %d", ErrInvalidInput, paymentsPerYear)
	}
	base := 1 + ytm/float64(paymentsPerYear)
	if !finite(macaulay) || !finite(ytm) || base <= 0 {
		return 0, fmt.Errorf("%w: cannot discount duration %v at yield %v", ErrInvalidInput, macaulay, ytm)
	}
	return macaulay / base, nil
}

// Convexity returns the curvature of the price-yield relationship of inst,
// in years squared.
func Convexity(inst models.Instrument) (float64, error) {
	m, err := ComputeBondMetrics(inst)
	if err != nil {
		return 0, err
	}
	return m.Convexity, nil
}

// ComputeBondMetrics prices inst and derives its durations and convexity in
// a single pass over the cash flows.
func ComputeBondMetrics(inst models.Instrument) (models.BondMetrics, error) {
	if err := Validate(inst); err != nil {
		return models.BondMetrics{}, err
	}

	freq := float64(inst.PaymentsPerYear)
	var price, timeWeighted, curvature float64
	for _, cf := range schedule(inst) {
		t := float64(cf.Period)
		price += cf.PresentValue
		timeWeighted += t / freq * cf.PresentValue
		curvature += t * (t + 1) / (freq * freq) * cf.PresentValue
	}
	if price <= 0 || !finite(price) {
		return models.BondMetrics{}, fmt.Errorf("%w: price is not positive (%v)", ErrInvalidInput, price)
	}

	base := 1 + inst.PeriodRate()
	macaulay := timeWeighted / price
	return models.BondMetrics{
		Price:            price,
		MacaulayDuration: macaulay,
		ModifiedDuration: macaulay / base,
		Convexity:        curvature / (price * base * base),
	}, nil
}

// PriceChange estimates the currency change in price for a yield move of
// yieldChange using the second-order Taylor expansion
//
//	ΔP ≈ -D·Δy·P + ½·C·Δy²·P
//
// It is only accurate for moves of a few percentage points.
func PriceChange(price, modifiedDuration, convexity, yieldChange float64) float64 {
	first := -modifiedDuration * yieldChange * price
	second := 0.5 * convexity * yieldChange * yieldChange * price
	return first + second
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

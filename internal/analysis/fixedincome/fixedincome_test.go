package fixedincome

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/investlab/pkg/models"
)

func treasury10Y() models.Instrument {
	return models.Instrument{
		Name:            "10Y",
		CouponRate:      0.048,
		MaturityYears:   10,
		YieldToMaturity: 0.0521,
		PaymentsPerYear: 1,
	}
}

// reference recomputes the metrics straight from the textbook sums.
func reference(inst models.Instrument) (price, mac, conv float64) {
	f := float64(inst.PaymentsPerYear)
	r := inst.YieldToMaturity / f
	n := int(inst.MaturityYears * f)
	c := inst.CouponRate * 100 / f
	var tw, cw float64
	for t := 1; t <= n; t++ {
		cf := c
		if t == n {
			cf += 100
		}
		pv := cf / math.Pow(1+r, float64(t))
		price += pv
		tw += float64(t) / f * pv
		cw += float64(t) * float64(t+1) / (f * f) * pv
	}
	return price, tw / price, cw / (price * (1 + r) * (1 + r))
}

// ── Valuation ──

func TestComputeBondMetricsEndToEnd(t *testing.T) {
	inst := treasury10Y()
	m, err := ComputeBondMetrics(inst)
	require.NoError(t, err)

	price, mac, conv := reference(inst)
	assert.InDelta(t, price, m.Price, 1e-9)
	assert.InDelta(t, mac, m.MacaulayDuration, 1e-9)
	assert.InDelta(t, mac/(1+inst.YieldToMaturity), m.ModifiedDuration, 1e-9)
	assert.InDelta(t, conv, m.Convexity, 1e-9)

	assert.True(t, m.MacaulayDuration >= 8.0 && m.MacaulayDuration <= 8.2,
		"Macaulay duration %.4f outside [8.0, 8.2]", m.MacaulayDuration)
	assert.True(t, m.ModifiedDuration >= 7.6 && m.ModifiedDuration <= 7.8,
		"modified duration %.4f outside [7.6, 7.8]", m.ModifiedDuration)
	assert.Less(t, m.Price, 100.0, "coupon below yield should price below par")
}

func TestParBond(t *testing.T) {
	inst := models.Instrument{CouponRate: 0.05, MaturityYears: 5, YieldToMaturity: 0.05, PaymentsPerYear: 1}
	price, err := PresentValue(inst)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, price, 1e-9)
}

func TestZeroCoupon(t *testing.T) {
	for _, freq := range []int{1, 2} {
		inst := models.Instrument{CouponRate: 0, MaturityYears: 10, YieldToMaturity: 0.05, PaymentsPerYear: freq}
		m, err := ComputeBondMetrics(inst)
		require.NoError(t, err)

		f := float64(freq)
		n := 10 * f
		base := 1 + 0.05/f
		assert.InDelta(t, 100/math.Pow(base, n), m.Price, 1e-9, "freq=%d", freq)
		assert.InDelta(t, 10.0, m.MacaulayDuration, 1e-12, "freq=%d", freq)
		assert.InDelta(t, n*(n+1)/(f*f)/(base*base), m.Convexity, 1e-9, "freq=%d", freq)
	}
}

func TestModifiedBelowMacaulay(t *testing.T) {
	cases := []models.Instrument{
		treasury10Y(),
		{CouponRate: 0.03, MaturityYears: 30, YieldToMaturity: 0.045, PaymentsPerYear: 2},
		{CouponRate: 0.08, MaturityYears: 2, YieldToMaturity: 0.001, PaymentsPerYear: 2},
		{CouponRate: 0, MaturityYears: 1, YieldToMaturity: 0.2, PaymentsPerYear: 1},
	}
	for _, inst := range cases {
		m, err := ComputeBondMetrics(inst)
		require.NoError(t, err)
		assert.Less(t, m.ModifiedDuration, m.MacaulayDuration, "%+v", inst)
		assert.GreaterOrEqual(t, m.Convexity, 0.0, "%+v", inst)
	}
}

func TestDurationIsInYears(t *testing.T) {
	annual := treasury10Y()
	semi := annual
	semi.PaymentsPerYear = 2

	ma, err := ComputeBondMetrics(annual)
	require.NoError(t, err)
	ms, err := ComputeBondMetrics(semi)
	require.NoError(t, err)

	// Durations are in years, so a ×2 slip would show up immediately.
	assert.InDelta(t, ma.MacaulayDuration, ms.MacaulayDuration, 0.5)
	assert.True(t, ms.MacaulayDuration > 7.5 && ms.MacaulayDuration < 10)
	assert.InDelta(t, ma.Convexity, ms.Convexity, 5)

	_, mac, conv := reference(semi)
	assert.InDelta(t, mac, ms.MacaulayDuration, 1e-9)
	assert.InDelta(t, conv, ms.Convexity, 1e-9)
}

func TestSeparateFunctionsAgree(t *testing.T) {
	inst := treasury10Y()
	m, err := ComputeBondMetrics(inst)
	require.NoError(t, err)

	mac, err := MacaulayDuration(inst)
	require.NoError(t, err)
	assert.Equal(t, m.MacaulayDuration, mac)

	mod, err := ModifiedDuration(mac, inst.YieldToMaturity, inst.PaymentsPerYear)
	require.NoError(t, err)
	assert.InDelta(t, m.ModifiedDuration, mod, 1e-12)

	conv, err := Convexity(inst)
	require.NoError(t, err)
	assert.Equal(t, m.Convexity, conv)
}

func TestCashFlows(t *testing.T) {
	inst := models.Instrument{CouponRate: 0.06, MaturityYears: 2, YieldToMaturity: 0.04, PaymentsPerYear: 2}
	flows, err := CashFlows(inst)
	require.NoError(t, err)
	require.Len(t, flows, 4)

	var sum float64
	for i, cf := range flows {
		assert.Equal(t, i+1, cf.Period)
		assert.InDelta(t, float64(i+1)/2, cf.Time, 1e-12)
		sum += cf.PresentValue
	}
	assert.InDelta(t, 3.0, flows[0].Amount, 1e-12)
	assert.InDelta(t, 103.0, flows[3].Amount, 1e-12)

	price, err := PresentValue(inst)
	require.NoError(t, err)
	assert.InDelta(t, price, sum, 1e-12)
}

// ── Price change approximation ──

func TestPriceChangeZeroShift(t *testing.T) {
	m, err := ComputeBondMetrics(treasury10Y())
	require.NoError(t, err)
	assert.Equal(t, 0.0, PriceChange(m.Price, m.ModifiedDuration, m.Convexity, 0))
}

func TestPriceChangeTerms(t *testing.T) {
	// -7.5*0.01*100 + 0.5*80*0.0001*100
	assert.InDelta(t, -7.5+0.4, PriceChange(100, 7.5, 80, 0.01), 1e-12)
	assert.InDelta(t, 7.5+0.4, PriceChange(100, 7.5, 80, -0.01), 1e-12)
}

func TestShockTable(t *testing.T) {
	inst := treasury10Y()
	rows, err := ShockTable(inst, []float64{-0.01, 0.01, 0.02, 0.05})
	require.NoError(t, err)
	require.Len(t, rows, 4)

	for _, r := range rows {
		// Convexity always improves on the duration-only estimate.
		assert.LessOrEqual(t, math.Abs(r.WithConvexity-r.Exact), math.Abs(r.DurationOnly-r.Exact), "dy=%v", r.YieldChange)
		assert.InDelta(t, r.WithConvexity-r.Exact, r.Error, 1e-12)
	}
	assert.Greater(t, rows[0].Exact, -rows[1].Exact, "a fall in yield gains more than the same rise loses")
	assert.Less(t, math.Abs(rows[1].Error), 0.05, "±100bp should be accurate to a few cents")
	assert.Greater(t, math.Abs(rows[3].Error), math.Abs(rows[2].Error), "error grows with shock size")
}

func TestRepriceMatchesPresentValue(t *testing.T) {
	inst := treasury10Y()
	got, err := Reprice(inst, 0.01)
	require.NoError(t, err)

	shifted := inst
	shifted.YieldToMaturity = 0.0621
	want, err := PresentValue(shifted)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

// ── Validation ──

func TestInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		inst models.Instrument
	}{
		{"zero frequency", models.Instrument{CouponRate: 0.05, MaturityYears: 5, YieldToMaturity: 0.05, PaymentsPerYear: 0}},
		{"negative frequency", models.Instrument{CouponRate: 0.05, MaturityYears: 5, YieldToMaturity: 0.05, PaymentsPerYear: -2}},
		{"zero maturity", models.Instrument{CouponRate: 0.05, MaturityYears: 0, YieldToMaturity: 0.05, PaymentsPerYear: 1}},
		{"negative maturity", models.Instrument{CouponRate: 0.05, MaturityYears: -3, YieldToMaturity: 0.05, PaymentsPerYear: 1}},
		{"discount base zero", models.Instrument{CouponRate: 0.05, MaturityYears: 5, YieldToMaturity: -1, PaymentsPerYear: 1}},
		{"discount base zero semi", models.Instrument{CouponRate: 0.05, MaturityYears: 5, YieldToMaturity: -2, PaymentsPerYear: 2}},
		{"discount base negative", models.Instrument{CouponRate: 0.05, MaturityYears: 5, YieldToMaturity: -3, PaymentsPerYear: 2}},
		{"NaN yield", models.Instrument{CouponRate: 0.05, MaturityYears: 5, YieldToMaturity: math.NaN(), PaymentsPerYear: 1}},
		{"infinite maturity", models.Instrument{CouponRate: 0.05, MaturityYears: math.Inf(1), YieldToMaturity: 0.05, PaymentsPerYear: 1}},
		{"negative coupon", models.Instrument{CouponRate: -0.01, MaturityYears: 5, YieldToMaturity: 0.05, PaymentsPerYear: 1}},
		{"fractional periods", models.Instrument{CouponRate: 0.05, MaturityYears: 2.3, YieldToMaturity: 0.05, PaymentsPerYear: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeBondMetrics(tt.inst)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput), "got %v", err)

			_, err = PresentValue(tt.inst)
			assert.ErrorIs(t, err, ErrInvalidInput)
			_, err = CashFlows(tt.inst)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestHalfYearMaturityAllowed(t *testing.T) {
	inst := models.Instrument{CouponRate: 0.04, MaturityYears: 2.5, YieldToMaturity: 0.03, PaymentsPerYear: 2}
	m, err := ComputeBondMetrics(inst)
	require.NoError(t, err)
	assert.Greater(t, m.Price, 100.0)
	assert.Less(t, m.MacaulayDuration, 2.5)
}

func TestNegativeYieldAboveFloor(t *testing.T) {
	inst := models.Instrument{CouponRate: 0, MaturityYears: 5, YieldToMaturity: -0.005, PaymentsPerYear: 1}
	m, err := ComputeBondMetrics(inst)
	require.NoError(t, err)
	assert.Greater(t, m.Price, 100.0)
	assert.InDelta(t, 5.0, m.MacaulayDuration, 1e-12)
}

func TestModifiedDurationInvalid(t *testing.T) {
	_, err := ModifiedDuration(8, 0.05, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = ModifiedDuration(8, -1, 1)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = ModifiedDuration(math.NaN(), 0.05, 1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestShockTableRejectsDegenerateShift(t *testing.T) {
	_, err := ShockTable(treasury10Y(), []float64{-2})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

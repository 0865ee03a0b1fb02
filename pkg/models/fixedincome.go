package models

// --- Fixed Income / Instruments ---

// Instrument describes a fixed-coupon bond priced per 100 of face value.
// Rates are fractions per year (0.048 for 4.8%).
type Instrument struct {
	Name            string  `json:"name,omitempty"`
	CouponRate      float64 `json:"coupon_rate"`
	MaturityYears   float64 `json:"maturity_years"`
	YieldToMaturity float64 `json:"yield_to_maturity"`
	PaymentsPerYear int     `json:"payments_per_year"` // 1 = annual, 2 = semi-annual
}

// Periods returns the total number of coupon periods, rounded to the
// nearest integer.
func (i Instrument) Periods() int {
	return int(i.MaturityYears*float64(i.PaymentsPerYear) + 0.5)
}

// PeriodRate returns the per-period discount rate ytm/freq.
func (i Instrument) PeriodRate() float64 {
	return i.YieldToMaturity / float64(i.PaymentsPerYear)
}

// Coupon returns the cash coupon paid each period per 100 face.
func (i Instrument) Coupon() float64 {
	return i.CouponRate * FaceValue / float64(i.PaymentsPerYear)
}

// FaceValue is the notional all prices are quoted against.
const FaceValue = 100.0

// --- Fixed Income / Analytics ---

// BondMetrics holds the valuation and risk measures of an Instrument.
type BondMetrics struct {
	Price            float64 `json:"price"`             // per 100 face
	MacaulayDuration float64 `json:"macaulay_duration"` // years
	ModifiedDuration float64 `json:"modified_duration"` // years
	Convexity        float64 `json:"convexity"`
}

// CashFlow is a single scheduled payment of an Instrument.
type CashFlow struct {
	Period       int     `json:"period"`
	Time         float64 `json:"time"` // years from today (period / freq)
	Amount       float64 `json:"amount"`
	PresentValue float64 `json:"present_value"`
}

// YieldShock compares approximated and exact price changes for a parallel
// yield shift.
type YieldShock struct {
	YieldChange   float64 `json:"yield_change"`   // fraction, e.g. 0.01 = +100bp
	DurationOnly  float64 `json:"duration_only"`  // -D*dy*P
	WithConvexity float64 `json:"with_convexity"` // -D*dy*P + 0.5*C*dy²*P
	Exact         float64 `json:"exact"`          // repriced minus original price
	Error         float64 `json:"error"`          // WithConvexity - Exact
}

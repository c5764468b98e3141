package models

import "time"

// --- Fixed Income / Portfolio ---

// Canonical portfolio column names.
const (
	ColISIN        = "ISIN"
	ColMaturity    = "Maturity"
	ColCoupon      = "Coupon"
	ColYield       = "Yield"
	ColMarketValue = "Market Value"
	ColDuration    = "Duration"
	ColConvexity   = "Convexity"
)

// RequiredColumns lists the portfolio columns every input must provide, in
// display order. Convexity is optional.
var RequiredColumns = []string{ColISIN, ColMaturity, ColCoupon, ColYield, ColMarketValue, ColDuration}

// BondRecord is one row of a portfolio table.
type BondRecord struct {
	ISIN        string  `json:"isin"`
	Maturity    Date    `json:"maturity"`
	Coupon      float64 `json:"coupon"`       // percent
	Yield       float64 `json:"yield"`        // percent
	MarketValue float64 `json:"market_value"` // currency amount
	Duration    float64 `json:"duration"`     // years
	Convexity   float64 `json:"convexity,omitempty"`
}

// PortfolioMetrics is an aggregate snapshot computed from a bond table.
type PortfolioMetrics struct {
	TotalMarketValue float64 `json:"total_market_value"`
	WeightedYield    float64 `json:"weighted_yield"`
	WeightedDuration float64 `json:"weighted_duration"`
	DV01             float64 `json:"dv01"`
	Convexity        float64 `json:"convexity"`
}

// --- Rate shocks ---

// RiskLevel classifies the magnitude of a shock's percentage impact.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
)

// ShockResult is the outcome of one parallel yield shock.
type ShockResult struct {
	ShockPercent  float64   `json:"shock_percent"`
	Label         string    `json:"label"` // e.g. "+1.0%"
	ValueChange   float64   `json:"value_change"`
	PercentImpact float64   `json:"percent_impact"`
	RiskLevel     RiskLevel `json:"risk_level"`
}

// --- Liquidity ---

// Liquidity ladder bucket labels, in ladder order.
const (
	Bucket0To30   = "0–30 days"
	Bucket30To90  = "30–90 days"
	Bucket90To180 = "90–180 days"
	Bucket1YPlus  = "1 year+"
)

// LadderBucket is one maturity bucket of a liquidity ladder.
// ToDays is 0 for the open-ended last bucket.
type LadderBucket struct {
	Label       string  `json:"label"`
	FromDays    int     `json:"from_days"`
	ToDays      int     `json:"to_days,omitempty"`
	MarketValue float64 `json:"market_value"`
	Count       int     `json:"count"`
}

// MaturedBonds summarises bonds whose maturity is already in the past.
type MaturedBonds struct {
	MarketValue float64  `json:"market_value"`
	Count       int      `json:"count"`
	ISINs       []string `json:"isins,omitempty"`
}

// LiquidityLadder groups market value by time to maturity.
type LiquidityLadder struct {
	AsOf    time.Time      `json:"as_of"`
	Buckets []LadderBucket `json:"buckets"`
	Matured MaturedBonds   `json:"matured"`
}

// Values returns the bucket label → market value mapping.
func (l LiquidityLadder) Values() map[string]float64 {
	out := make(map[string]float64, len(l.Buckets))
	for _, b := range l.Buckets {
		out[b.Label] = b.MarketValue
	}
	return out
}

// Total returns the market value held across all buckets.
func (l LiquidityLadder) Total() float64 {
	var sum float64
	for _, b := range l.Buckets {
		sum += b.MarketValue
	}
	return sum
}

// --- Fixed Income / Yield curve ---

// Tenor is a point on the hand-entered yield curve.
type Tenor string

const (
	Tenor3M  Tenor = "3M"
	Tenor6M  Tenor = "6M"
	Tenor1Y  Tenor = "1Y"
	Tenor2Y  Tenor = "2Y"
	Tenor5Y  Tenor = "5Y"
	Tenor10Y Tenor = "10Y"
)

// Tenors returns the six curve tenors in maturity order.
func Tenors() []Tenor {
	return []Tenor{Tenor3M, Tenor6M, Tenor1Y, Tenor2Y, Tenor5Y, Tenor10Y}
}

// YieldCurve maps tenors to yields in percent. A zero (or absent) yield means
// the tenor was not entered.
type YieldCurve map[Tenor]float64

// HasData reports whether at least one tenor was entered.
func (c YieldCurve) HasData() bool {
	for _, t := range Tenors() {
		if c[t] > 0 {
			return true
		}
	}
	return false
}

// CurvePoint is a tenor/yield pair as displayed on the chart.
type CurvePoint struct {
	Tenor Tenor   `json:"tenor"`
	Yield float64 `json:"yield"`
	Set   bool    `json:"set"`
}

// Spread is a tenor-pair yield spread; Value is nil when an endpoint is unset.
type Spread struct {
	Label string   `json:"label"` // e.g. "10Y-3M"
	Value *float64 `json:"value"`
}

// CurveAnalysis holds the slopes, spreads and steepening signal of a curve.
type CurveAnalysis struct {
	Points        []CurvePoint `json:"points"`
	SlopeShort    *float64     `json:"slope_short"`
	SlopeLong     *float64     `json:"slope_long"`
	Steepening    *bool        `json:"steepening"`
	SpreadChanges []Spread     `json:"spread_changes"`
	HasData       bool         `json:"has_data"`
}

// Spread returns the spread with the given label, if present.
func (a CurveAnalysis) Spread(label string) (*float64, bool) {
	for _, s := range a.SpreadChanges {
		if s.Label == label {
			return s.Value, true
		}
	}
	return nil, false
}

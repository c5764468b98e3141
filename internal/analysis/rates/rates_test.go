package rates

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/seenimoa/treasuryrisk/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

const eps = 1e-9

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// samplePortfolio is the two-bond example portfolio used across the dashboard.
func samplePortfolio() []models.BondRecord {
	return []models.BondRecord{
		{
			ISIN:        "US1234567890",
			Maturity:    models.NewDate(2027, time.June, 15),
			Coupon:      2.5,
			Yield:       2.7,
			MarketValue: 1_000_000,
			Duration:    4.2,
		},
		{
			ISIN:        "US0987654321",
			Maturity:    models.NewDate(2029, time.December, 1),
			Coupon:      3.0,
			Yield:       3.1,
			MarketValue: 500_000,
			Duration:    6.1,
		},
	}
}

// ════════════════════════════════════════════════════════════════════
// ComputeMetrics
// ════════════════════════════════════════════════════════════════════

func TestComputeMetrics_TwoBondExample(t *testing.T) {
	m, err := ComputeMetrics(samplePortfolio())
	if err != nil {
		t.Fatalf("ComputeMetrics error: %v", err)
	}

	if m.TotalMarketValue != 1_500_000 {
		t.Errorf("TotalMarketValue: got %f, want 1500000", m.TotalMarketValue)
	}
	wantDuration := (1_000_000*4.2 + 500_000*6.1) / 1_500_000
	if !approx(m.WeightedDuration, wantDuration, eps) {
		t.Errorf("WeightedDuration: got %f, want %f", m.WeightedDuration, wantDuration)
	}
	if !approx(m.WeightedDuration, 4.8333, 1e-4) {
		t.Errorf("WeightedDuration: got %f, want ~4.8333", m.WeightedDuration)
	}
	wantYield := (1_000_000*2.7 + 500_000*3.1) / 1_500_000
	if !approx(m.WeightedYield, wantYield, eps) {
		t.Errorf("WeightedYield: got %f, want %f", m.WeightedYield, wantYield)
	}
	if !approx(m.DV01, 725.00, 1e-6) {
		t.Errorf("DV01: got %f, want 725.00", m.DV01)
	}
	if m.Convexity != 0 {
		t.Errorf("Convexity: got %f, want 0 when no bond carries convexity", m.Convexity)
	}
}

func TestComputeMetrics_DV01Identity(t *testing.T) {
	portfolios := [][]models.BondRecord{
		samplePortfolio(),
		{{ISIN: "A", MarketValue: 250, Duration: 0.5, Yield: 1}},
		{{ISIN: "A", MarketValue: 3e9, Duration: 12.7, Yield: 5}, {ISIN: "B", MarketValue: 1, Duration: 0, Yield: 0}},
	}
	for i, p := range portfolios {
		m, err := ComputeMetrics(p)
		if err != nil {
			t.Fatalf("portfolio %d: %v", i, err)
		}
		if m.DV01 != m.TotalMarketValue*m.WeightedDuration*0.0001 {
			t.Errorf("portfolio %d: DV01 %v != V*D*0.0001 (%v)", i, m.DV01, m.TotalMarketValue*m.WeightedDuration*0.0001)
		}
	}
}

func TestComputeMetrics_ScaleInvariance(t *testing.T) {
	base, err := ComputeMetrics(samplePortfolio())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []float64{0.001, 3, 1e6} {
		scaled := samplePortfolio()
		for i := range scaled {
			scaled[i].MarketValue *= k
		}
		m, err := ComputeMetrics(scaled)
		if err != nil {
			t.Fatal(err)
		}
		if !approx(m.WeightedYield, base.WeightedYield, 1e-9) {
			t.Errorf("k=%g: WeightedYield %f != %f", k, m.WeightedYield, base.WeightedYield)
		}
		if !approx(m.WeightedDuration, base.WeightedDuration, 1e-9) {
			t.Errorf("k=%g: WeightedDuration %f != %f", k, m.WeightedDuration, base.WeightedDuration)
		}
	}
}

func TestComputeMetrics_Convexity(t *testing.T) {
	bonds := samplePortfolio()
	bonds[0].Convexity = 0.3
	// bonds[1] has no convexity and counts as 0.
	m, err := ComputeMetrics(bonds)
	if err != nil {
		t.Fatal(err)
	}
	want := 0.3 * 1_000_000 / 1_500_000
	if !approx(m.Convexity, want, eps) {
		t.Errorf("Convexity: got %f, want %f", m.Convexity, want)
	}
}

func TestComputeMetrics_Errors(t *testing.T) {
	tests := []struct {
		name  string
		bonds []models.BondRecord
		want  error
	}{
		{"nil portfolio", nil, models.ErrEmptyPortfolio},
		{"empty portfolio", []models.BondRecord{}, models.ErrEmptyPortfolio},
		{"zero market value", []models.BondRecord{{ISIN: "A", Duration: 5}, {ISIN: "B", Duration: 3}}, models.ErrZeroMarketValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ComputeMetrics(tt.bonds)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got err %v, want %v", err, tt.want)
			}
			if !errors.Is(err, models.ErrInvalidInput) {
				t.Errorf("error should match ErrInvalidInput")
			}
			if math.IsNaN(m.WeightedYield) || math.IsInf(m.DV01, 0) {
				t.Error("metrics must not carry NaN/Inf on error")
			}
		})
	}
}

// ════════════════════════════════════════════════════════════════════
// SimulateShocks
// ════════════════════════════════════════════════════════════════════

func TestSimulateShocks_PlusOnePercent(t *testing.T) {
	results, err := SimulateShocks(samplePortfolio(), []float64{1})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	r := results[0]
	if !approx(r.ValueChange, -72_500, 1e-6) {
		t.Errorf("ValueChange: got %f, want -72500", r.ValueChange)
	}
	if !approx(r.PercentImpact, -4.8333, 1e-4) {
		t.Errorf("PercentImpact: got %f, want ~-4.8333", r.PercentImpact)
	}
	if r.RiskLevel != models.RiskHigh {
		t.Errorf("RiskLevel: got %s, want High", r.RiskLevel)
	}
	if r.Label != "+1.0%" {
		t.Errorf("Label: got %q, want %q", r.Label, "+1.0%")
	}
}

func TestSimulateShocks_PreservesOrderAndSign(t *testing.T) {
	shocks := []float64{2, -2, 1, -1}
	results, err := SimulateShocks(samplePortfolio(), shocks)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != len(shocks) {
		t.Fatalf("got %d results, want %d", len(results), len(shocks))
	}
	for i, r := range results {
		if r.ShockPercent != shocks[i] {
			t.Errorf("result %d: ShockPercent %f, want %f", i, r.ShockPercent, shocks[i])
		}
		if (shocks[i] > 0) != (r.ValueChange < 0) {
			t.Errorf("result %d: shock %+.0f should move value the other way, got %f", i, shocks[i], r.ValueChange)
		}
	}
	if results[1].Label != "-2.0%" {
		t.Errorf("Label: got %q, want -2.0%%", results[1].Label)
	}
}

func TestSimulateShocks_ZeroShock(t *testing.T) {
	results, err := SimulateShocks(samplePortfolio(), []float64{0})
	if err != nil {
		t.Fatal(err)
	}
	r := results[0]
	if r.ValueChange != 0 || r.PercentImpact != 0 {
		t.Errorf("zero shock: got change %f impact %f", r.ValueChange, r.PercentImpact)
	}
	if r.RiskLevel != models.RiskLow {
		t.Errorf("zero shock: RiskLevel %s, want Low", r.RiskLevel)
	}
}

func TestSimulateShocks_LowAndModerate(t *testing.T) {
	// Duration 1.5 → a 0.5% shock moves 0.75%, a 1% shock moves 1.5%.
	bonds := []models.BondRecord{{ISIN: "A", MarketValue: 100, Duration: 1.5}}
	results, err := SimulateShocks(bonds, []float64{0.5, 1})
	if err != nil {
		t.Fatal(err)
	}
	if results[0].RiskLevel != models.RiskLow {
		t.Errorf("0.75%% impact: got %s, want Low", results[0].RiskLevel)
	}
	if results[1].RiskLevel != models.RiskModerate {
		t.Errorf("1.5%% impact: got %s, want Moderate", results[1].RiskLevel)
	}
}

func TestSimulateShocks_Errors(t *testing.T) {
	if _, err := SimulateShocks(nil, []float64{1}); !errors.Is(err, models.ErrEmptyPortfolio) {
		t.Errorf("empty portfolio: got %v", err)
	}
	zero := []models.BondRecord{{ISIN: "A", Duration: 4}}
	if _, err := SimulateShocks(zero, []float64{1}); !errors.Is(err, models.ErrZeroMarketValue) {
		t.Errorf("zero market value: got %v", err)
	}
	if _, err := SimulateShocks(samplePortfolio(), []float64{math.NaN()}); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("NaN shock: got %v", err)
	}
}

func TestSimulateShocks_NoShocks(t *testing.T) {
	results, err := SimulateShocks(samplePortfolio(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

// ════════════════════════════════════════════════════════════════════
// ClassifyRisk
// ════════════════════════════════════════════════════════════════════

func TestClassifyRiskBoundaries(t *testing.T) {
	tests := []struct {
		impact float64
		want   models.RiskLevel
	}{
		{0, models.RiskLow},
		{0.999, models.RiskLow},
		{-0.999, models.RiskLow},
		{1.0, models.RiskModerate},
		{-1.0, models.RiskModerate},
		{2.999, models.RiskModerate},
		{3.0, models.RiskHigh},
		{-3.0, models.RiskHigh},
		{-4.8333, models.RiskHigh},
		{250, models.RiskHigh},
	}
	for _, tt := range tests {
		if got := ClassifyRisk(tt.impact); got != tt.want {
			t.Errorf("ClassifyRisk(%v) = %s, want %s", tt.impact, got, tt.want)
		}
	}
}

func TestShockLabel(t *testing.T) {
	tests := map[float64]string{
		-2:   "-2.0%",
		-1:   "-1.0%",
		0:    "+0.0%",
		1:    "+1.0%",
		2:    "+2.0%",
		0.5:  "+0.5%",
	}
	for in, want := range tests {
		if got := ShockLabel(in); got != want {
			t.Errorf("ShockLabel(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestDefaultShocks(t *testing.T) {
	got := DefaultShocks()
	want := []float64{-2, -1, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("DefaultShocks: got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("DefaultShocks[%d]: got %v, want %v", i, got[i], want[i])
		}
	}
}

package decision

import (
	"strings"
	"testing"

	"github.com/seenimoa/treasuryrisk/internal/analysis/curve"
	"github.com/seenimoa/treasuryrisk/pkg/models"
)

func boolPtr(b bool) *bool { return &b }

func TestRecommend_NoAction(t *testing.T) {
	recs := Recommend(models.PortfolioMetrics{WeightedDuration: 4.83, WeightedYield: 2.83}, nil)
	if len(recs) != 1 || recs[0] != NoAction {
		t.Errorf("got %v, want [%q]", recs, NoAction)
	}
}

func TestRecommend_HighDuration(t *testing.T) {
	m := models.PortfolioMetrics{WeightedDuration: 6.1, WeightedYield: 3.1, DV01: 305}
	recs := Recommend(m, nil)
	if len(recs) != 1 {
		t.Fatalf("got %d recommendations, want 1: %v", len(recs), recs)
	}
	if !strings.Contains(recs[0], "duration is high (6.10)") {
		t.Errorf("unexpected text %q", recs[0])
	}
	if !strings.Contains(recs[0], "estimated loss = 30500.00") {
		t.Errorf("loss estimate should be DV01*100, got %q", recs[0])
	}
}

func TestRecommend_DurationThresholdIsStrict(t *testing.T) {
	recs := Recommend(models.PortfolioMetrics{WeightedDuration: 5, WeightedYield: 3}, nil)
	if recs[0] != NoAction {
		t.Errorf("duration of exactly 5 should not fire, got %v", recs)
	}
}

func TestRecommend_LowYield(t *testing.T) {
	recs := Recommend(models.PortfolioMetrics{WeightedDuration: 2, WeightedYield: 1.5}, nil)
	if len(recs) != 1 || !strings.Contains(recs[0], "higher-yielding") {
		t.Errorf("got %v", recs)
	}
	recs = Recommend(models.PortfolioMetrics{WeightedDuration: 2, WeightedYield: 2}, nil)
	if recs[0] != NoAction {
		t.Errorf("yield of exactly 2 should not fire, got %v", recs)
	}
}

func TestRecommend_Curve(t *testing.T) {
	m := models.PortfolioMetrics{WeightedDuration: 3, WeightedYield: 3}

	steep := &models.CurveAnalysis{HasData: true, Steepening: boolPtr(true)}
	recs := Recommend(m, steep)
	if len(recs) != 1 || !strings.Contains(recs[0], "steepening detected") {
		t.Errorf("steepening: got %v", recs)
	}

	flat := &models.CurveAnalysis{HasData: true, Steepening: boolPtr(false)}
	recs = Recommend(m, flat)
	if len(recs) != 1 || !strings.Contains(recs[0], "flattening detected") {
		t.Errorf("flattening: got %v", recs)
	}

	unknown := &models.CurveAnalysis{HasData: true}
	recs = Recommend(m, unknown)
	if len(recs) != 1 || !strings.Contains(recs[0], "flattening detected") {
		t.Errorf("undefined flag should read as flattening, got %v", recs)
	}

	empty := &models.CurveAnalysis{HasData: false, Steepening: boolPtr(true)}
	recs = Recommend(m, empty)
	if recs[0] != NoAction {
		t.Errorf("curve without data should not fire, got %v", recs)
	}
}

func TestRecommend_CurveWithoutShortEnd(t *testing.T) {
	m := models.PortfolioMetrics{WeightedDuration: 4, WeightedYield: 3}
	a := curve.Analyze(models.YieldCurve{models.Tenor3M: 5.0, models.Tenor10Y: 5.5})
	if !a.HasData || a.Steepening != nil {
		t.Fatalf("setup: has_data=%v steepening=%v", a.HasData, a.Steepening)
	}
	recs := Recommend(m, &a)
	want := "Yield curve flattening detected. Consider short duration positioning."
	if len(recs) != 1 || recs[0] != want {
		t.Errorf("got %v, want [%q]", recs, want)
	}
}

func TestRecommend_AllRulesInOrder(t *testing.T) {
	m := models.PortfolioMetrics{WeightedDuration: 7, WeightedYield: 1, DV01: 10}
	recs := Recommend(m, &models.CurveAnalysis{HasData: true, Steepening: boolPtr(false)})
	if len(recs) != 3 {
		t.Fatalf("got %d recommendations, want 3: %v", len(recs), recs)
	}
	if !strings.Contains(recs[0], "duration") || !strings.Contains(recs[1], "yield is low") || !strings.Contains(recs[2], "flattening") {
		t.Errorf("unexpected order: %v", recs)
	}
}

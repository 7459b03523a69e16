package ta

import (
	"math"
	"testing"
)

func TestEMASeedsWithFirstValue(t *testing.T) {
	vals := []float64{10, 11, 12}
	got := EMA(vals, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 values, got %d", len(got))
	}
	// alpha = 0.5
	want := []float64{10, 10.5, 11.25}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("EMA[%d] = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestEMASpanTen(t *testing.T) {
	vals := []float64{100, 110}
	got := EMA(vals, 10)
	// alpha = 2/11
	want := 100 + (2.0/11.0)*10
	if math.Abs(got[1]-want) > 1e-9 {
		t.Errorf("EMA[1] = %f, want %f", got[1], want)
	}
}

func TestEMAConstantSeries(t *testing.T) {
	vals := []float64{50, 50, 50, 50, 50}
	for i, v := range EMA(vals, 10) {
		if v != 50 {
			t.Errorf("EMA[%d] = %f, want 50", i, v)
		}
	}
}

func TestEMAEmpty(t *testing.T) {
	if EMA(nil, 10) != nil {
		t.Error("expected nil for empty input")
	}
	if EMA([]float64{1}, 0) != nil {
		t.Error("expected nil for non-positive span")
	}
}

func TestMinFloatAndMean(t *testing.T) {
	if got := MinFloat([]float64{3, 1, 2, 1}); got != 1 {
		t.Errorf("MinFloat = %f, want 1", got)
	}
	if got := Mean([]float64{1, 2, 3, 4}); got != 2.5 {
		t.Errorf("Mean = %f, want 2.5", got)
	}
	if !math.IsNaN(MinFloat(nil)) || !math.IsNaN(Mean(nil)) {
		t.Error("expected NaN for empty input")
	}
}

package transform

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
)

func TestFitLinearAffine_Example(t *testing.T) {
	tr, err := FitLinearAffine([]float64{1.0, 2.0, 3.0, 4.0})
	if err != nil {
		t.Fatalf("FitLinearAffine failed: %v", err)
	}

	if tr.Slope() != 1.0 || tr.Intercept() != 1.0 {
		t.Errorf("got slope %v intercept %v, want 1 and 1", tr.Slope(), tr.Intercept())
	}
	if got := tr.Forward(2.5); got != 3.5 {
		t.Errorf("Forward(2.5): got %v, want 3.5", got)
	}
	got, err := tr.Backward(3.5)
	if err != nil {
		t.Fatalf("Backward failed: %v", err)
	}
	if got != 2.5 {
		t.Errorf("Backward(3.5): got %v, want 2.5", got)
	}
}

func TestFitLinearAffine_UsesExtremaNotOrder(t *testing.T) {
	tests := []struct {
		name          string
		samples       []float64
		wantSlope     float64
		wantIntercept float64
	}{
		{"ascending", []float64{10, 12, 14, 16, 18}, 2, 10},
		{"descending", []float64{18, 16, 14, 12, 10}, 2, 10},
		{"shuffled", []float64{14, 18, 10, 16, 12}, 2, 10},
		{"two samples", []float64{-3, 5}, 8, -3},
		{"negative range", []float64{-1, -5, -9}, 4, -9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := FitLinearAffine(tt.samples)
			if err != nil {
				t.Fatalf("FitLinearAffine failed: %v", err)
			}
			if tr.Slope() != tt.wantSlope {
				t.Errorf("slope: got %v, want %v", tr.Slope(), tt.wantSlope)
			}
			if tr.Intercept() != tt.wantIntercept {
				t.Errorf("intercept: got %v, want %v", tr.Intercept(), tt.wantIntercept)
			}
		})
	}
}

func TestFitLinearAffine_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
	}{
		{"nil", nil},
		{"one sample", []float64{7}},
		{"NaN", []float64{1, math.NaN(), 3}},
		{"infinite", []float64{1, math.Inf(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FitLinearAffine(tt.samples)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("got %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestFitLinearAffine_SinglePrecisionAgrees(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	f64 := make([]float64, 257)
	f32 := make([]float32, len(f64))
	for i := range f64 {
		f32[i] = float32(r.NormFloat64() * 100)
		f64[i] = float64(f32[i])
	}

	a, err := FitLinearAffine(f64)
	if err != nil {
		t.Fatalf("float64 fit failed: %v", err)
	}
	b, err := FitLinearAffine(f32)
	if err != nil {
		t.Fatalf("float32 fit failed: %v", err)
	}

	if float32(a.Slope()) != b.Slope() {
		t.Errorf("slope: float64 fit %v, float32 fit %v", a.Slope(), b.Slope())
	}
	if float32(a.Intercept()) != b.Intercept() {
		t.Errorf("intercept: float64 fit %v, float32 fit %v", a.Intercept(), b.Intercept())
	}
}

func TestLinearAffine_RoundTrip(t *testing.T) {
	transforms := []LinearAffine[float64]{
		Identity[float64](),
		NewLinearAffine(2.5, -4.0),
		NewLinearAffine(-0.001, 1e6),
		NewLinearAffine(1e-3, 0.5),
	}
	r := rand.New(rand.NewSource(1))

	for _, tr := range transforms {
		t.Run(tr.String(), func(t *testing.T) {
			for i := 0; i < 1000; i++ {
				v := (r.Float64() - 0.5) * 1e4
				got, err := tr.Backward(tr.Forward(v))
				if err != nil {
					t.Fatalf("Backward failed: %v", err)
				}
				if math.Abs(got-v) > 1e-6*math.Max(1, math.Abs(v)) {
					t.Fatalf("round trip of %v gave %v", v, got)
				}
			}
		})
	}
}

func TestLinearAffine_ZeroSlope(t *testing.T) {
	tr, err := FitLinearAffine([]float64{3, 3, 3})
	if err != nil {
		t.Fatalf("FitLinearAffine failed: %v", err)
	}
	if tr.Slope() != 0 {
		t.Fatalf("slope: got %v, want 0", tr.Slope())
	}
	if got := tr.Forward(10); got != 3 {
		t.Errorf("Forward(10): got %v, want 3", got)
	}
	if _, err := tr.Backward(3); !errors.Is(err, ErrDivisionByZero) {
		t.Errorf("Backward: got %v, want ErrDivisionByZero", err)
	}
}

func TestIdentity(t *testing.T) {
	id := Identity[float32]()
	if id.Slope() != 1 || id.Intercept() != 0 {
		t.Errorf("Identity: got slope %v intercept %v", id.Slope(), id.Intercept())
	}
	if got := id.Forward(42.5); got != 42.5 {
		t.Errorf("Forward(42.5): got %v", got)
	}
}

func TestCoordinateTransformation_Interface(t *testing.T) {
	var tr CoordinateTransformation[float64] = NewLinearAffine(0.5, 100.0)

	if got := tr.Forward(10); got != 105 {
		t.Errorf("Forward(10): got %v, want 105", got)
	}
	got, err := tr.Backward(105)
	if err != nil || got != 10 {
		t.Errorf("Backward(105): got %v, %v; want 10", got, err)
	}
}

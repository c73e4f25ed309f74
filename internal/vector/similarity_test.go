package vector

import (
	"errors"
	"math"
	"testing"
)

const tolerance = 1e-9

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"scaled", []float32{1, 2, 3}, []float32{2, 4, 6}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"diagonal", []float32{1, 0}, []float32{1, 1}, 1 / math.Sqrt2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Cosine(tt.a, tt.b)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("Cosine = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosine_Symmetric(t *testing.T) {
	pairs := [][2][]float32{
		{{0.1, 0.7, -0.2}, {0.5, -0.3, 0.9}},
		{{3, 1, 4, 1, 5}, {9, 2, 6, 5, 3}},
		{{-1, -1}, {1, 0.5}},
	}
	for _, p := range pairs {
		ab, err := Cosine(p[0], p[1])
		if err != nil {
			t.Fatal(err)
		}
		ba, err := Cosine(p[1], p[0])
		if err != nil {
			t.Fatal(err)
		}
		if ab != ba {
			t.Errorf("Cosine(%v, %v) = %v but reversed = %v", p[0], p[1], ab, ba)
		}
	}
}

func TestCosine_SelfIsOne(t *testing.T) {
	for _, v := range [][]float32{{0.3}, {1e-3, 2e-3, 7e-4}, {12, -5, 0, 8}} {
		got, err := Cosine(v, v)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(got-1) > tolerance {
			t.Errorf("Cosine(v, v) = %v, want 1", got)
		}
	}
}

func TestCosine_DimensionMismatch(t *testing.T) {
	_, err := Cosine([]float32{1, 2}, []float32{1, 2, 3})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestCosine_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
	}{
		{"zero left", []float32{0, 0, 0}, []float32{1, 2, 3}},
		{"zero right", []float32{1, 2, 3}, []float32{0, 0, 0}},
		{"empty", []float32{}, []float32{}},
		{"nil", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Cosine(tt.a, tt.b)
			if !errors.Is(err, ErrDegenerateVector) {
				t.Errorf("expected ErrDegenerateVector, got %v", err)
			}
			if math.IsNaN(got) {
				t.Error("Cosine must not return NaN")
			}
		})
	}
}

func TestL2Norm(t *testing.T) {
	if got := L2Norm([]float32{3, 4}); got != 5 {
		t.Errorf("L2Norm = %v, want 5", got)
	}
	if got := L2Norm(nil); got != 0 {
		t.Errorf("L2Norm(nil) = %v, want 0", got)
	}
}

func TestInnerProduct(t *testing.T) {
	if got := InnerProduct([]float32{1, 2, 3}, []float32{4, 5, 6}); got != 32 {
		t.Errorf("InnerProduct = %v, want 32", got)
	}
	if got := InnerProduct([]float32{1}, []float32{1, 2}); got != 0 {
		t.Errorf("InnerProduct of mismatched = %v, want 0", got)
	}
}

func BenchmarkCosine(b *testing.B) {
	const dim = 1536
	x := make([]float32, dim)
	y := make([]float32, dim)
	for i := range x {
		x[i] = float32(i%7) + 1
		y[i] = float32(i%5) + 1
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Cosine(x, y); err != nil {
			b.Fatal(err)
		}
	}
}

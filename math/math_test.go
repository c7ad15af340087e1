package math

import (
	"math"
	"testing"
)

func TestVec4Operations(t *testing.T) {
	v1 := NewVec4(1, 2, 3, 4)
	v2 := NewVec4(4, 5, 6, 7)

	// Addition
	result := v1.Add(v2)
	expected := NewVec4(5, 7, 9, 11)
	if result != expected {
		t.Errorf("Add: expected %v, got %v", expected, result)
	}

	// Subtraction
	result = v2.Sub(v1)
	expected = NewVec4(3, 3, 3, 3)
	if result != expected {
		t.Errorf("Sub: expected %v, got %v", expected, result)
	}

	// Scalar multiplication
	result = v1.Mul(2)
	expected = NewVec4(2, 4, 6, 8)
	if result != expected {
		t.Errorf("Mul: expected %v, got %v", expected, result)
	}
}

func TestVec4SliceRoundTrip(t *testing.T) {
	for n := 1; n <= 4; n++ {
		src := []float32{0.1, 0.2, 0.3, 0.4}[:n]
		v := Vec4FromSlice(src)

		dst := make([]float32, n)
		v.Store(dst)
		for i := range dst {
			if dst[i] != src[i] {
				t.Errorf("%d channels: component %d expected %v, got %v", n, i, src[i], dst[i])
			}
		}
	}

	// Missing channels stay zero
	v := Vec4FromSlice([]float32{1, 2})
	if v.Z != 0 || v.W != 0 {
		t.Errorf("Vec4FromSlice: expected zero Z/W, got (%v,%v)", v.Z, v.W)
	}
}

func TestVec2FloorFract(t *testing.T) {
	v := NewVec2(1.25, -0.25)

	floor := v.Floor()
	if floor != NewVec2(1, -1) {
		t.Errorf("Floor: expected (1,-1), got %v", floor)
	}

	fract := v.Fract()
	tolerance := 0.0001
	if math.Abs(float64(fract.X-0.25)) > tolerance || math.Abs(float64(fract.Y-0.75)) > tolerance {
		t.Errorf("Fract: expected (0.25,0.75), got %v", fract)
	}

	scaled := NewVec2(2, 3).MulVec(NewVec2(0.5, 2))
	if scaled != NewVec2(1, 6) {
		t.Errorf("MulVec: expected (1,6), got %v", scaled)
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(1.5, 0, 1); got != 1 {
		t.Errorf("Clamp: expected 1, got %v", got)
	}
	if got := Clamp(-0.5, 0, 1); got != 0 {
		t.Errorf("Clamp: expected 0, got %v", got)
	}
	if got := ClampInt(-1, 0, 7); got != 0 {
		t.Errorf("ClampInt: expected 0, got %v", got)
	}
	if got := ClampInt(8, 0, 7); got != 7 {
		t.Errorf("ClampInt: expected 7, got %v", got)
	}
}

func TestQuantize(t *testing.T) {
	cases := []struct {
		in    float32
		steps float32
		want  float32
	}{
		{0, 255, 0},
		{1, 255, 255},
		{0.5, 255, 128},
		{128.0 / 255.0, 255, 128},
		{1.2, 255, 255},
		{-0.1, 65535, 0},
	}
	for _, c := range cases {
		if got := Quantize(c.in, c.steps); got != c.want {
			t.Errorf("Quantize(%v, %v): expected %v, got %v", c.in, c.steps, c.want, got)
		}
	}
}

func BenchmarkVec4Add(b *testing.B) {
	v1 := NewVec4(1, 2, 3, 4)
	v2 := NewVec4(4, 5, 6, 7)

	for i := 0; i < b.N; i++ {
		_ = v1.Add(v2)
	}
}

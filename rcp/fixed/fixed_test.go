package fixed_test

import (
	"testing"

	"github.com/clktmr/n64squares/rcp/fixed"
)

func TestInt16_16(t *testing.T) {
	tests := []struct {
		f           float32
		floor, ceil int
	}{
		{0, 0, 0},
		{1, 1, 1},
		{1.5, 1, 2},
		{-1.5, -2, -1},
		{-0.25, -1, 0},
		{200.75, 200, 201},
	}
	for _, tt := range tests {
		x := fixed.Int16_16F(tt.f)
		if x.Float() != tt.f {
			t.Errorf("%v: Float() = %v", tt.f, x.Float())
		}
		if x.Floor() != tt.floor {
			t.Errorf("%v: Floor() = %v, expected %v", tt.f, x.Floor(), tt.floor)
		}
		if x.Ceil() != tt.ceil {
			t.Errorf("%v: Ceil() = %v, expected %v", tt.f, x.Ceil(), tt.ceil)
		}
		if got := fixed.Int16_16Parts(x.Int(), x.Frac()); got != x {
			t.Errorf("%v: split into %d/%d reassembles to %v", tt.f, x.Int(), x.Frac(), got)
		}
	}

	a, b := fixed.Int16_16F(1.5), fixed.Int16_16F(-2)
	if got := a.Mul(b).Float(); got != -3 {
		t.Errorf("1.5*-2 = %v", got)
	}
	if got := b.Div(a).Float(); got < -1.3334 || got > -1.3333 {
		t.Errorf("-2/1.5 = %v", got)
	}
}

func TestUInt14_2(t *testing.T) {
	x := fixed.UInt14_2U(319)
	if x != 319<<2 {
		t.Fatalf("UInt14_2U(319) = %d", x)
	}
	if x.Floor() != 319 || x.Ceil() != 319 {
		t.Errorf("unexpected rounding %d %d", x.Floor(), x.Ceil())
	}
	if y := fixed.UInt14_2F(10.25); y.Floor() != 10 || y.Ceil() != 11 {
		t.Errorf("unexpected rounding of %v: %d %d", y, y.Floor(), y.Ceil())
	}
}

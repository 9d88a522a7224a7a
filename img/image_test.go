package img

import (
	"image/color"
	"testing"

	"github.com/Jonatan4444/proto-neural-zkp/num"
)

func TestHeatmap(t *testing.T) {
	a := num.FromSlice([]float32{0, 1, 2, 3}, 1, 2, 2)
	m := Heatmap(a, 0)
	if m == nil {
		t.Fatal("nil image")
	}
	if b := m.Bounds(); b.Dx() != 2 || b.Dy() != 2 {
		t.Error("bounds:", b)
	}
	// min maps to the start of the scale, max to the end
	lo := color.NRGBA{R: 0, G: 0, B: 127, A: 255}
	hi := color.NRGBA{R: 127, G: 0, B: 0, A: 255}
	if c := m.NRGBAAt(0, 0); c != lo {
		t.Error("min color:", c)
	}
	if c := m.NRGBAAt(1, 1); c != hi {
		t.Error("max color:", c)
	}
	if Heatmap(a, 1) != nil {
		t.Error("expect nil for channel out of range")
	}
	if Heatmap(num.NewArray(4), 0) != nil {
		t.Error("expect nil for rank 1 input")
	}
}

func TestStrip(t *testing.T) {
	m := Strip(num.FromSlice([]float32{1, 2, 3}, 3))
	if m == nil {
		t.Fatal("nil image")
	}
	if b := m.Bounds(); b.Dx() != 3 || b.Dy() != 1 {
		t.Error("bounds:", b)
	}
}

func TestScale(t *testing.T) {
	m := Heatmap(num.FromSlice([]float32{0, 1, 2, 3}, 1, 2, 2), 0)
	big := Scale(m, 3)
	if b := big.Bounds(); b.Dx() != 6 || b.Dy() != 6 {
		t.Error("bounds:", b)
	}
	if big.NRGBAAt(0, 0) != m.NRGBAAt(0, 0) || big.NRGBAAt(5, 5) != m.NRGBAAt(1, 1) {
		t.Error("pixels not replicated")
	}
}

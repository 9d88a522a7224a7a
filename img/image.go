// Package img renders tensors as images for inspection tooling.
package img

import (
	"image"
	"image/color"

	"github.com/Jonatan4444/proto-neural-zkp/num"
)

// color map definition
var cmap = [][3]float32{{0, 0, .5}, {0, 0, 1}, {0, .5, 1}, {0, 1, 1}, {.5, 1, .5}, {1, 1, 0}, {1, .5, 0}, {1, 0, 0}, {.5, 0, 0}}

// mapColor interpolates the color map for a value scaled to the range 0-1.
func mapColor(val float32) color.NRGBA {
	if val < 0 {
		val = 0
	}
	if val > 1 {
		val = 1
	}
	pos := val * float32(len(cmap)-1)
	ix := int(pos)
	if ix >= len(cmap)-1 {
		ix = len(cmap) - 2
	}
	frac := pos - float32(ix)
	c0, c1 := cmap[ix], cmap[ix+1]
	return color.NRGBA{
		R: uint8(255 * (c0[0] + frac*(c1[0]-c0[0]))),
		G: uint8(255 * (c0[1] + frac*(c1[1]-c0[1]))),
		B: uint8(255 * (c0[2] + frac*(c1[2]-c0[2]))),
		A: 255,
	}
}

// Heatmap renders one channel of a [c, h, w] tensor as an image, scaling
// values to the full range of the color map. A constant channel renders at
// the bottom of the scale. Returns nil if the tensor is not rank 3 or the
// channel is out of range.
func Heatmap(a *num.Array, channel int) *image.NRGBA {
	dims := a.Dims()
	if len(dims) != 3 || channel < 0 || channel >= dims[0] {
		return nil
	}
	h, w := dims[1], dims[2]
	lo, hi := a.At(channel, 0, 0), a.At(channel, 0, 0)
	for i := 0; i < h; i++ {
		for j := 0; j < w; j++ {
			v := a.At(channel, i, j)
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	scale := float32(0)
	if hi > lo {
		scale = 1 / (hi - lo)
	}
	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < h; i++ {
		for j := 0; j < w; j++ {
			m.SetNRGBA(j, i, mapColor((a.At(channel, i, j)-lo)*scale))
		}
	}
	return m
}

// Strip renders a rank 1 tensor as a single row heatmap.
func Strip(a *num.Array) *image.NRGBA {
	if a.Rank() != 1 {
		return nil
	}
	return Heatmap(a.Reshape(1, 1, a.Size()), 0)
}

// Scale returns the image resized by an integer factor using nearest
// neighbour sampling.
func Scale(src *image.NRGBA, factor int) *image.NRGBA {
	if factor <= 1 {
		return src
	}
	b := src.Bounds()
	m := image.NewNRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	for y := 0; y < b.Dy()*factor; y++ {
		for x := 0; x < b.Dx()*factor; x++ {
			m.SetNRGBA(x, y, src.NRGBAAt(b.Min.X+x/factor, b.Min.Y+y/factor))
		}
	}
	return m
}

package nnet

import (
	"fmt"

	"github.com/Jonatan4444/proto-neural-zkp/num"
)

// Convolution layer applies a bank of 2D kernels to a [c, h, w] input with
// no padding and unit stride. The kernel has shape [features, kh, kw] and
// each output feature sums the kernel response over every input channel,
// giving a [features, h-kh+1, w-kw+1] output. The kernel tensor is held by
// reference and is never modified, so it may be shared between layer
// instances.
type Convolution struct {
	kernel *num.Array
}

func NewConvolution(kernel *num.Array) (*Convolution, error) {
	if kernel == nil || kernel.Rank() != 3 {
		return nil, fmt.Errorf("nnet: convolution kernel must have rank 3")
	}
	k := kernel.Dims()
	if k[0] < 1 || k[1] < 1 || k[2] < 1 {
		return nil, fmt.Errorf("nnet: invalid convolution kernel shape %v", k)
	}
	return &Convolution{kernel: kernel}, nil
}

// Kernel returns the shared kernel tensor.
func (l *Convolution) Kernel() *num.Array { return l.kernel }

func (l *Convolution) Name() string { return string(TagConvolution) }

func (l *Convolution) InShape() []int { return nil }

func (l *Convolution) OutShape(inShape []int) []int {
	k := l.kernel.Dims()
	if len(inShape) != 3 || inShape[1] < k[1] || inShape[2] < k[2] {
		return nil
	}
	return []int{k[0], inShape[1] - k[1] + 1, inShape[2] - k[2] + 1}
}

func (l *Convolution) NumParams() int { return l.kernel.Size() }

func (l *Convolution) NumMuls(inShape []int) int {
	out := l.OutShape(inShape)
	if out == nil {
		return 0
	}
	return out[0] * out[1] * out[2] * l.kernel.Dims()[1] * l.kernel.Dims()[2] * inShape[0]
}

func (l *Convolution) Apply(in *num.Array) (*num.Array, error) {
	shape := in.Dims()
	oshape := l.OutShape(shape)
	if oshape == nil {
		return nil, fmt.Errorf("nnet: convolution input %v does not fit kernel %v", shape, l.kernel.Dims())
	}
	k := l.kernel.Dims()
	out := num.NewArray(oshape...)
	for o := 0; o < oshape[0]; o++ {
		for i := 0; i < oshape[1]; i++ {
			for j := 0; j < oshape[2]; j++ {
				var sum float32
				for di := 0; di < k[1]; di++ {
					for dj := 0; dj < k[2]; dj++ {
						w := l.kernel.At(o, di, dj)
						for c := 0; c < shape[0]; c++ {
							sum += w * in.At(c, i+di, j+dj)
						}
					}
				}
				out.Set(sum, o, i, j)
			}
		}
	}
	return out, nil
}

func (l *Convolution) Marshal() LayerConfig {
	return LayerConfig{Type: string(TagConvolution), Data: marshal(convData{Kernel: l.kernel})}
}

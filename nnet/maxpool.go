package nnet

import (
	"fmt"

	"github.com/Jonatan4444/proto-neural-zkp/num"
)

// MaxPool layer reduces each non overlapping window x window patch of the
// two spatial dims of a [c, h, w] input to its maximum, per channel. Both
// spatial dims must be a multiple of the window size.
type MaxPool struct {
	window int
}

func NewMaxPool(window int) (*MaxPool, error) {
	if window < 1 {
		return nil, fmt.Errorf("nnet: max pool window must be >= 1, got %d", window)
	}
	return &MaxPool{window: window}, nil
}

// Window returns the pooling window size.
func (l *MaxPool) Window() int { return l.window }

func (l *MaxPool) Name() string { return string(TagMaxPool) }

func (l *MaxPool) InShape() []int { return nil }

func (l *MaxPool) OutShape(inShape []int) []int {
	if len(inShape) != 3 || inShape[1]%l.window != 0 || inShape[2]%l.window != 0 {
		return nil
	}
	return []int{inShape[0], inShape[1] / l.window, inShape[2] / l.window}
}

func (l *MaxPool) NumParams() int { return 0 }

func (l *MaxPool) NumMuls(inShape []int) int { return 0 }

func (l *MaxPool) Apply(in *num.Array) (*num.Array, error) {
	shape := in.Dims()
	oshape := l.OutShape(shape)
	if oshape == nil {
		return nil, fmt.Errorf("nnet: max pool window %d does not divide input %v", l.window, shape)
	}
	out := num.NewArray(oshape...)
	for c := 0; c < oshape[0]; c++ {
		for i := 0; i < oshape[1]; i++ {
			for j := 0; j < oshape[2]; j++ {
				best := in.At(c, i*l.window, j*l.window)
				for di := 0; di < l.window; di++ {
					for dj := 0; dj < l.window; dj++ {
						if v := in.At(c, i*l.window+di, j*l.window+dj); v > best {
							best = v
						}
					}
				}
				out.Set(best, c, i, j)
			}
		}
	}
	return out, nil
}

func (l *MaxPool) Marshal() LayerConfig {
	return LayerConfig{Type: string(TagMaxPool), Data: marshal(poolData{Window: l.window})}
}

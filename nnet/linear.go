package nnet

import (
	"fmt"

	"github.com/Jonatan4444/proto-neural-zkp/num"
)

// FullyConnected is a dense layer computing weights.x + biases on a rank 1
// input. Weights have shape [nout, nin] and biases [nout]. The parameter
// tensors are held by reference and never modified.
type FullyConnected struct {
	weights *num.Array
	biases  *num.Array
}

func NewFullyConnected(weights, biases *num.Array) (*FullyConnected, error) {
	if weights == nil || weights.Rank() != 2 {
		return nil, fmt.Errorf("nnet: fully connected weights must have rank 2")
	}
	if biases == nil || biases.Rank() != 1 {
		return nil, fmt.Errorf("nnet: fully connected biases must have rank 1")
	}
	if weights.Dims()[0] != biases.Dims()[0] {
		return nil, fmt.Errorf("nnet: weights shape %v does not match biases shape %v",
			weights.Dims(), biases.Dims())
	}
	return &FullyConnected{weights: weights, biases: biases}, nil
}

// Params returns the shared weights and biases tensors.
func (l *FullyConnected) Params() (W, B *num.Array) { return l.weights, l.biases }

func (l *FullyConnected) Name() string { return string(TagFullyConnected) }

func (l *FullyConnected) InShape() []int { return []int{l.weights.Dims()[1]} }

func (l *FullyConnected) OutShape(inShape []int) []int {
	if len(inShape) != 1 || inShape[0] != l.weights.Dims()[1] {
		return nil
	}
	return []int{l.weights.Dims()[0]}
}

func (l *FullyConnected) NumParams() int { return l.weights.Size() + l.biases.Size() }

func (l *FullyConnected) NumMuls(inShape []int) int { return l.weights.Size() }

func (l *FullyConnected) Apply(in *num.Array) (*num.Array, error) {
	if l.OutShape(in.Dims()) == nil {
		return nil, fmt.Errorf("nnet: fully connected expects input shape %v, got %v",
			l.InShape(), in.Dims())
	}
	nout, nin := l.weights.Dims()[0], l.weights.Dims()[1]
	out := num.NewArray(nout)
	for o := 0; o < nout; o++ {
		sum := l.biases.At(o)
		for i := 0; i < nin; i++ {
			sum += l.weights.At(o, i) * in.At(i)
		}
		out.Set(sum, o)
	}
	return out, nil
}

func (l *FullyConnected) Marshal() LayerConfig {
	return LayerConfig{Type: string(TagFullyConnected), Data: marshal(linearData{Weights: l.weights, Biases: l.biases})}
}

package nnet

import (
	"github.com/Jonatan4444/proto-neural-zkp/num"
)

// Flatten layer reshapes any input to rank 1, preserving element order.
type Flatten struct{}

func (l Flatten) Name() string { return string(TagFlatten) }

func (l Flatten) InShape() []int { return nil }

func (l Flatten) OutShape(inShape []int) []int { return []int{num.Prod(inShape)} }

func (l Flatten) NumParams() int { return 0 }

func (l Flatten) NumMuls(inShape []int) int { return 0 }

func (l Flatten) Apply(in *num.Array) (*num.Array, error) {
	return in.Clone().Reshape(-1), nil
}

func (l Flatten) Marshal() LayerConfig {
	return LayerConfig{Type: string(TagFlatten)}
}

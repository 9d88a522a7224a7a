package nnet

import (
	"math"

	"github.com/Jonatan4444/proto-neural-zkp/num"
)

// Relu activation layer, elementwise max(0, x) on an input of any shape.
type Relu struct{}

func (l Relu) Name() string { return string(TagRelu) }

func (l Relu) InShape() []int { return nil }

func (l Relu) OutShape(inShape []int) []int { return append([]int{}, inShape...) }

func (l Relu) NumParams() int { return 0 }

func (l Relu) NumMuls(inShape []int) int { return 0 }

func (l Relu) Apply(in *num.Array) (*num.Array, error) {
	out := in.Clone()
	data := out.Data()
	for i, v := range data {
		if v < 0 {
			data[i] = 0
		}
	}
	return out, nil
}

func (l Relu) Marshal() LayerConfig {
	return LayerConfig{Type: string(TagRelu)}
}

// Normalize layer standardises the whole tensor: subtract the mean and
// divide by the population standard deviation. A constant input is passed
// through after mean subtraction.
type Normalize struct{}

func (l Normalize) Name() string { return string(TagNormalize) }

func (l Normalize) InShape() []int { return nil }

func (l Normalize) OutShape(inShape []int) []int { return append([]int{}, inShape...) }

func (l Normalize) NumParams() int { return 0 }

// one multiply per element, by the reciprocal std deviation
func (l Normalize) NumMuls(inShape []int) int { return num.Prod(inShape) }

func (l Normalize) Apply(in *num.Array) (*num.Array, error) {
	out := in.Clone()
	data := out.Data()
	if len(data) == 0 {
		return out, nil
	}
	var mean, vari float64
	for _, v := range data {
		mean += float64(v)
	}
	mean /= float64(len(data))
	for _, v := range data {
		d := float64(v) - mean
		vari += d * d
	}
	std := math.Sqrt(vari / float64(len(data)))
	scale := 1.0
	if std > 0 {
		scale = 1 / std
	}
	for i, v := range data {
		data[i] = float32((float64(v) - mean) * scale)
	}
	return out, nil
}

func (l Normalize) Marshal() LayerConfig {
	return LayerConfig{Type: string(TagNormalize)}
}

// Package nnet contains routines for constructing, serialising and running
// feed forward neural networks.
package nnet

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Jonatan4444/proto-neural-zkp/num"
)

// SupportedRank is the input tensor rank accepted by the forward pass.
const SupportedRank = 3

// ErrUnsupportedRank is returned by Apply when the input tensor rank is not
// SupportedRank.
var ErrUnsupportedRank = errors.New("nnet: unsupported input rank")

// ErrDeserialize is returned when a network cannot be rebuilt from its
// serialised form. No partially built network is returned.
var ErrDeserialize = errors.New("nnet: network deserialization failed")

// ShapeError reports a disagreement between the shape of the tensor flowing
// through the network and the shape a layer requires.
type ShapeError struct {
	Layer int
	Name  string
	Want  []int
	Got   []int
}

func (e *ShapeError) Error() string {
	if e.Want == nil {
		return fmt.Sprintf("nnet: shape mismatch at layer %d (%s): input shape %v does not conform",
			e.Layer, e.Name, e.Got)
	}
	return fmt.Sprintf("nnet: shape mismatch at layer %d (%s): expect %v, got %v",
		e.Layer, e.Name, e.Want, e.Got)
}

// Network type represents a feed forward network as an ordered sequence of
// layers. The layer order defines the composition order of the forward pass.
type Network struct {
	Layers []Layer
	// Diag, if set, receives one diagnostic record per layer applied.
	Diag func(LayerInfo)
}

// New function creates an empty network.
func New() *Network {
	return &Network{}
}

// AddLayer appends a layer to the end of the sequence. No shape validation
// is done here, mismatches are reported by Apply.
func (n *Network) AddLayer(layer Layer) {
	n.Layers = append(n.Layers, layer)
}

// Tags returns the compact kind manifest of the network.
func (n *Network) Tags() []LayerTag {
	tags := make([]LayerTag, len(n.Layers))
	for i, l := range n.Layers {
		tags[i] = LayerTag(l.Name())
	}
	return tags
}

// Apply feeds the input tensor through each layer in order and returns the
// final output. rank must equal SupportedRank and match the input tensor,
// otherwise the call fails with ErrUnsupportedRank before any layer runs.
// Adjacent layers with incompatible shapes fail with a ShapeError before
// the offending layer is invoked. The input is never modified.
func (n *Network) Apply(input *num.Array, rank int) (*num.Array, error) {
	if rank != SupportedRank {
		return nil, fmt.Errorf("%w: rank %d, supported %d", ErrUnsupportedRank, rank, SupportedRank)
	}
	if input.Rank() != rank {
		return nil, fmt.Errorf("%w: input has rank %d, supported %d", ErrUnsupportedRank, input.Rank(), SupportedRank)
	}
	output := input.Clone()
	shape := output.Dims()
	for i, layer := range n.Layers {
		if want := layer.InShape(); want != nil && !num.SameShape(want, shape) {
			return nil, &ShapeError{Layer: i, Name: layer.Name(), Want: want, Got: shape}
		}
		if layer.OutShape(shape) == nil {
			return nil, &ShapeError{Layer: i, Name: layer.Name(), Want: layer.InShape(), Got: shape}
		}
		inShape := shape
		start := time.Now()
		out, err := layer.Apply(output)
		if err != nil {
			return nil, fmt.Errorf("nnet: layer %d (%s): %w", i, layer.Name(), err)
		}
		output = out
		shape = output.Dims()
		if n.Diag != nil {
			n.Diag(LayerInfo{
				Name:     layer.Name(),
				OutShape: shape,
				Params:   layer.NumParams(),
				Muls:     layer.NumMuls(inShape),
				Elapsed:  time.Since(start),
			})
		}
	}
	return output, nil
}

// Infos returns the diagnostic rows for a forward pass over an input with
// the given shape, without running any layer. Returns an error if the shape
// chain does not conform.
func (n *Network) Infos(inShape []int) ([]LayerInfo, error) {
	shape := append([]int{}, inShape...)
	infos := make([]LayerInfo, 0, len(n.Layers))
	for i, layer := range n.Layers {
		if want := layer.InShape(); want != nil && !num.SameShape(want, shape) {
			return nil, &ShapeError{Layer: i, Name: layer.Name(), Want: want, Got: shape}
		}
		out := layer.OutShape(shape)
		if out == nil {
			return nil, &ShapeError{Layer: i, Name: layer.Name(), Want: layer.InShape(), Got: shape}
		}
		infos = append(infos, LayerInfo{
			Name:     layer.Name(),
			OutShape: out,
			Params:   layer.NumParams(),
			Muls:     layer.NumMuls(shape),
		})
		shape = out
	}
	return infos, nil
}

// NumParams is the total learnable parameter count over all layers.
func (n *Network) NumParams() int {
	total := 0
	for _, l := range n.Layers {
		total += l.NumParams()
	}
	return total
}

// Summary renders the network as a fixed width table for an input with the
// given shape.
func (n *Network) Summary(inShape []int) string {
	infos, err := n.Infos(inShape)
	if err != nil {
		return err.Error()
	}
	rows := []string{InfoHeader()}
	for _, info := range infos {
		rows = append(rows, info.String())
	}
	return strings.Join(rows, "\n")
}

// Network description as the list of layer tags.
func (n *Network) String() string {
	tags := n.Tags()
	s := make([]string, len(tags))
	for i, t := range tags {
		s[i] = string(t)
	}
	return "[" + strings.Join(s, " ") + "]"
}

package nnet

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Jonatan4444/proto-neural-zkp/num"
)

// ErrUnknownLayerKind is returned when a layer record carries a type tag
// which the factory does not recognise.
var ErrUnknownLayerKind = errors.New("nnet: unknown layer kind")

// Layer interface type represents one layer of the neural net. Layers are
// immutable once constructed and Apply never modifies its input, so a layer
// may be shared between networks.
type Layer interface {
	// Apply the layer transform to the input tensor and return the output.
	Apply(in *num.Array) (*num.Array, error)
	// InShape is the input shape the layer requires, or nil if the layer
	// accepts any conforming input.
	InShape() []int
	// OutShape is the shape Apply will produce for an input with the given
	// shape, or nil if that input does not conform.
	OutShape(inShape []int) []int
	// Name is a stable identifier, equal to the serialised type tag.
	Name() string
	// NumParams is the number of learnable scalar parameters in the layer.
	NumParams() int
	// NumMuls is the number of multiply ops for one Apply call on an input
	// with the given shape.
	NumMuls(inShape []int) int
	// Marshal converts the layer to its serialisable record.
	Marshal() LayerConfig
}

// LayerTag identifies a layer variant without carrying its parameters.
type LayerTag string

const (
	TagConvolution    LayerTag = "convolution"
	TagMaxPool        LayerTag = "max_pool"
	TagFullyConnected LayerTag = "fully_connected"
	TagRelu           LayerTag = "relu"
	TagFlatten        LayerTag = "flatten"
	TagNormalize      LayerTag = "normalize"
)

// LayerConfig is the serialisable record for a single layer: the type tag
// plus the fields needed to reconstruct the layer exactly.
type LayerConfig struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ConfigLayer is anything which can be converted to a layer record.
type ConfigLayer interface {
	Marshal() LayerConfig
}

// per variant payloads
type convData struct {
	Kernel *num.Array `json:"kernel"`
}

type poolData struct {
	Window int `json:"window"`
}

type linearData struct {
	Weights *num.Array `json:"weights"`
	Biases  *num.Array `json:"biases"`
}

// Unmarshal builds the live layer described by the record. A record with an
// unrecognised type tag fails with ErrUnknownLayerKind.
func (l LayerConfig) Unmarshal() (Layer, error) {
	switch LayerTag(l.Type) {
	case TagConvolution:
		cfg := new(convData)
		if err := unmarshal(l.Data, cfg); err != nil {
			return nil, err
		}
		return NewConvolution(cfg.Kernel)
	case TagMaxPool:
		cfg := new(poolData)
		if err := unmarshal(l.Data, cfg); err != nil {
			return nil, err
		}
		return NewMaxPool(cfg.Window)
	case TagFullyConnected:
		cfg := new(linearData)
		if err := unmarshal(l.Data, cfg); err != nil {
			return nil, err
		}
		return NewFullyConnected(cfg.Weights, cfg.Biases)
	case TagRelu:
		return Relu{}, nil
	case TagFlatten:
		return Flatten{}, nil
	case TagNormalize:
		return Normalize{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayerKind, l.Type)
	}
}

func (l LayerConfig) String() string {
	layer, err := l.Unmarshal()
	if err != nil {
		return l.Type + " <invalid>"
	}
	return fmt.Sprintf("%s params=%d", layer.Name(), layer.NumParams())
}

// LayerInfo is the diagnostic record emitted for each layer applied in a
// forward pass.
type LayerInfo struct {
	Name     string        `json:"name"`
	OutShape []int         `json:"out_shape"`
	Params   int           `json:"params"`
	Muls     int           `json:"muls"`
	Elapsed  time.Duration `json:"elapsed"`
}

// String formats the record as a fixed width table row.
func (s LayerInfo) String() string {
	return fmt.Sprintf("%-20s | %-16s | %8d | %12d", s.Name, fmt.Sprint(s.OutShape), s.Params, s.Muls)
}

// InfoHeader is the table heading matching LayerInfo.String.
func InfoHeader() string {
	return fmt.Sprintf("%-20s | %-16s | %8s | %12s", "layer", "output shape", "params", "muls")
}

func marshal(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

func unmarshal(data json.RawMessage, v interface{}) error {
	if len(data) == 0 {
		return errors.New("nnet: missing layer record payload")
	}
	return json.Unmarshal(data, v)
}

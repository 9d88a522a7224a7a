package nnet

import (
	"errors"
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"github.com/Jonatan4444/proto-neural-zkp/num"
)

func randArray(t *testing.T, rng *rand.Rand, dims ...int) *num.Array {
	t.Helper()
	data := make([]float32, num.Prod(dims))
	for i := range data {
		data[i] = rng.Float32()*2 - 1
	}
	return num.FromSlice(data, dims...)
}

func TestConvolution(t *testing.T) {
	// 1 feature, 2x2 kernel of ones sums each window
	kernel := num.FromSlice([]float32{1, 1, 1, 1}, 1, 2, 2)
	layer, err := NewConvolution(kernel)
	if err != nil {
		t.Fatal(err)
	}
	in := num.FromSlice([]float32{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	}, 1, 3, 3)
	out, err := layer.Apply(in)
	if err != nil {
		t.Fatal(err)
	}
	expect := num.FromSlice([]float32{12, 16, 24, 28}, 1, 2, 2)
	if !out.Equal(expect) {
		t.Error("got", out, "expect", expect)
	}
	if muls := layer.NumMuls([]int{1, 3, 3}); muls != 16 {
		t.Error("muls: got", muls)
	}
	if np := layer.NumParams(); np != 4 {
		t.Error("params: got", np)
	}
	if shape := layer.OutShape([]int{1, 2, 2}); !reflect.DeepEqual(shape, []int{1, 1, 1}) {
		t.Error("out shape: got", shape)
	}
	if shape := layer.OutShape([]int{1, 1, 1}); shape != nil {
		t.Error("expect nil shape for input smaller than kernel, got", shape)
	}
	if _, err = NewConvolution(num.NewArray(2, 2)); err == nil {
		t.Error("expect error for rank 2 kernel")
	}
}

func TestConvolutionChannels(t *testing.T) {
	// 2 input channels summed under a 1x1 kernel
	kernel := num.FromSlice([]float32{2}, 1, 1, 1)
	layer, err := NewConvolution(kernel)
	if err != nil {
		t.Fatal(err)
	}
	in := num.FromSlice([]float32{
		1, 2,
		3, 4,

		10, 20,
		30, 40,
	}, 2, 2, 2)
	out, err := layer.Apply(in)
	if err != nil {
		t.Fatal(err)
	}
	expect := num.FromSlice([]float32{22, 44, 66, 88}, 1, 2, 2)
	if !out.Equal(expect) {
		t.Error("got", out, "expect", expect)
	}
}

func TestMaxPool(t *testing.T) {
	layer, err := NewMaxPool(2)
	if err != nil {
		t.Fatal(err)
	}
	in := num.FromSlice([]float32{
		1, 5, 2, 0,
		3, 2, 1, 4,
		0, 0, 9, 8,
		1, 2, 7, 6,
	}, 1, 4, 4)
	out, err := layer.Apply(in)
	if err != nil {
		t.Fatal(err)
	}
	expect := num.FromSlice([]float32{5, 4, 2, 9}, 1, 2, 2)
	if !out.Equal(expect) {
		t.Error("got", out, "expect", expect)
	}
	if _, err = layer.Apply(num.NewArray(1, 3, 4)); err == nil {
		t.Error("expect error for non divisible input")
	}
	if _, err = NewMaxPool(0); err == nil {
		t.Error("expect error for zero window")
	}
}

func TestRelu(t *testing.T) {
	in := num.FromSlice([]float32{-1, 0, 2, -3, 4, -5}, 1, 2, 3)
	out, err := Relu{}.Apply(in)
	if err != nil {
		t.Fatal(err)
	}
	expect := num.FromSlice([]float32{0, 0, 2, 0, 4, 0}, 1, 2, 3)
	if !out.Equal(expect) {
		t.Error("got", out, "expect", expect)
	}
	// input is not modified
	if in.At(0, 0, 0) != -1 {
		t.Error("input modified")
	}
}

func TestNormalize(t *testing.T) {
	in := num.FromSlice([]float32{1, 3, 1, 3}, 1, 2, 2)
	out, err := Normalize{}.Apply(in)
	if err != nil {
		t.Fatal(err)
	}
	expect := num.FromSlice([]float32{-1, 1, -1, 1}, 1, 2, 2)
	if !out.Equal(expect) {
		t.Error("got", out, "expect", expect)
	}
	// constant input maps to zeros
	out, err = Normalize{}.Apply(num.FromSlice([]float32{7, 7}, 2))
	if err != nil {
		t.Fatal(err)
	}
	if !out.Equal(num.NewArray(2)) {
		t.Error("got", out)
	}
}

func TestFlatten(t *testing.T) {
	in := randArray(t, rand.New(rand.NewSource(1)), 2, 3, 4)
	out, err := Flatten{}.Apply(in)
	if err != nil {
		t.Fatal(err)
	}
	if dims := out.Dims(); !reflect.DeepEqual(dims, []int{24}) {
		t.Error("got shape", dims)
	}
	if !reflect.DeepEqual(out.Data(), in.Data()) {
		t.Error("element order changed")
	}
}

func TestFullyConnected(t *testing.T) {
	weights := num.FromSlice([]float32{1, 2, 3, 4, 5, 6}, 2, 3)
	biases := num.FromSlice([]float32{10, 20}, 2)
	layer, err := NewFullyConnected(weights, biases)
	if err != nil {
		t.Fatal(err)
	}
	out, err := layer.Apply(num.FromSlice([]float32{1, 1, 1}, 3))
	if err != nil {
		t.Fatal(err)
	}
	expect := num.FromSlice([]float32{16, 35}, 2)
	if !out.Equal(expect) {
		t.Error("got", out, "expect", expect)
	}
	if shape := layer.InShape(); !reflect.DeepEqual(shape, []int{3}) {
		t.Error("in shape: got", shape)
	}
	if muls := layer.NumMuls([]int{3}); muls != 6 {
		t.Error("muls: got", muls)
	}
	if np := layer.NumParams(); np != 8 {
		t.Error("params: got", np)
	}
	if _, err = layer.Apply(num.FromSlice([]float32{1, 1}, 2)); err == nil {
		t.Error("expect error for wrong input size")
	}
	if _, err = NewFullyConnected(weights, num.NewArray(3)); err == nil {
		t.Error("expect error for mismatched biases")
	}
}

func TestUnknownLayerKind(t *testing.T) {
	_, err := LayerConfig{Type: "softmax"}.Unmarshal()
	if !errors.Is(err, ErrUnknownLayerKind) {
		t.Error("got", err)
	}
}

func TestLayerRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	conv, err := NewConvolution(randArray(t, rng, 4, 3, 3))
	if err != nil {
		t.Fatal(err)
	}
	pool, err := NewMaxPool(2)
	if err != nil {
		t.Fatal(err)
	}
	fc, err := NewFullyConnected(randArray(t, rng, 5, 12), randArray(t, rng, 5))
	if err != nil {
		t.Fatal(err)
	}
	layers := []Layer{conv, pool, Relu{}, Flatten{}, fc, Normalize{}}
	for _, layer := range layers {
		cfg := layer.Marshal()
		if cfg.Type != layer.Name() {
			t.Errorf("%s: tag mismatch %q", layer.Name(), cfg.Type)
		}
		got, err := cfg.Unmarshal()
		if err != nil {
			t.Fatalf("%s: %v", layer.Name(), err)
		}
		if got.Name() != layer.Name() {
			t.Errorf("%s: rebuilt as %s", layer.Name(), got.Name())
		}
		if got.NumParams() != layer.NumParams() {
			t.Errorf("%s: params %d != %d", layer.Name(), got.NumParams(), layer.NumParams())
		}
	}
	// the rebuilt convolution kernel is numerically identical
	cfg := conv.Marshal()
	rebuilt, err := cfg.Unmarshal()
	if err != nil {
		t.Fatal(err)
	}
	if !rebuilt.(*Convolution).Kernel().Equal(conv.Kernel()) {
		t.Error("kernel changed in round trip")
	}
}

// Reconstructing a fully connected layer must keep the weights and biases
// from the record rather than building a default initialised layer.
func TestFullyConnectedRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	fc, err := NewFullyConnected(randArray(t, rng, 4, 6), randArray(t, rng, 4))
	if err != nil {
		t.Fatal(err)
	}
	rebuilt, err := fc.Marshal().Unmarshal()
	if err != nil {
		t.Fatal(err)
	}
	w1, b1 := fc.Params()
	w2, b2 := rebuilt.(*FullyConnected).Params()
	if !w2.Equal(w1) || !b2.Equal(b1) {
		t.Error("parameters lost in round trip")
	}
	in := randArray(t, rng, 6)
	out1, err := fc.Apply(in)
	if err != nil {
		t.Fatal(err)
	}
	out2, err := rebuilt.Apply(in)
	if err != nil {
		t.Fatal(err)
	}
	if !out1.Equal(out2) {
		t.Error("rebuilt layer output differs")
	}
}

func TestLayerInfoString(t *testing.T) {
	info := LayerInfo{Name: "max_pool", OutShape: []int{8, 12, 12}, Params: 0, Muls: 0}
	row := info.String()
	if !strings.HasPrefix(row, "max_pool ") {
		t.Error("got", row)
	}
	if len(row) != len(InfoHeader()) {
		t.Errorf("row width %d != header width %d", len(row), len(InfoHeader()))
	}
}

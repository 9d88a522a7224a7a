// Package num implements a dense n dimensional float32 tensor similar to a numpy ndarray.
package num

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Parameters for array printing
var (
	PrintThreshold = 12
	PrintEdgeitems = 4
)

// Array is an n dimensional tensor. Data is stored in a flat slice in row
// major order. The zero value is an empty rank 0 array.
type Array struct {
	dims []int
	data []float32
}

// NewArray creates a zero filled array with the given shape.
func NewArray(dims ...int) *Array {
	return &Array{dims: append([]int{}, dims...), data: make([]float32, Prod(dims))}
}

// FromSlice creates an array with the given shape copying the data.
func FromSlice(data []float32, dims ...int) *Array {
	if len(data) != Prod(dims) {
		panic(fmt.Sprintf("num: data length %d does not match shape %v", len(data), dims))
	}
	a := NewArray(dims...)
	copy(a.data, data)
	return a
}

// Dims returns the shape of the array in outermost first order.
func (a *Array) Dims() []int { return append([]int{}, a.dims...) }

// Rank is the number of dimensions.
func (a *Array) Rank() int { return len(a.dims) }

// Size is the total number of elements.
func (a *Array) Size() int { return len(a.data) }

// Data returns a reference to the raw data.
func (a *Array) Data() []float32 { return a.data }

func (a *Array) index(ix []int) int {
	if len(ix) != len(a.dims) {
		panic(fmt.Sprintf("num: got %d indices for rank %d array", len(ix), len(a.dims)))
	}
	pos := 0
	for i, x := range ix {
		if x < 0 || x >= a.dims[i] {
			panic(fmt.Sprintf("num: index %d out of range for dim %d size %d", x, i, a.dims[i]))
		}
		pos = pos*a.dims[i] + x
	}
	return pos
}

// At returns the element at the given indices.
func (a *Array) At(ix ...int) float32 { return a.data[a.index(ix)] }

// Set updates the element at the given indices.
func (a *Array) Set(val float32, ix ...int) { a.data[a.index(ix)] = val }

// Reshape returns a new array of the same size with a view on the same data
// but with a different shape. At most one of the dims may be -1 in which case
// it is inferred from the size.
func (a *Array) Reshape(dims ...int) *Array {
	shape := append([]int{}, dims...)
	wild, known := -1, 1
	for i, d := range shape {
		if d == -1 {
			if wild >= 0 {
				panic("num: multiple -1 dims in reshape")
			}
			wild = i
		} else {
			known *= d
		}
	}
	if wild >= 0 {
		shape[wild] = len(a.data) / known
	}
	if Prod(shape) != len(a.data) {
		panic(fmt.Sprintf("num: cannot reshape %v array to %v", a.dims, dims))
	}
	return &Array{dims: shape, data: a.data}
}

// Clone returns a deep copy of the array.
func (a *Array) Clone() *Array {
	return FromSlice(a.data, a.dims...)
}

// Equal compares shape and contents for exact equality.
func (a *Array) Equal(b *Array) bool {
	if b == nil || !SameShape(a.dims, b.dims) {
		return false
	}
	for i, v := range a.data {
		if b.data[i] != v {
			return false
		}
	}
	return true
}

// Formatted output, larger arrays are truncated with edge items.
func (a *Array) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%v ", a.dims)
	if len(a.data) <= PrintThreshold {
		fmt.Fprintf(&sb, "%v", a.data)
	} else {
		sb.WriteByte('[')
		for i := 0; i < PrintEdgeitems; i++ {
			fmt.Fprintf(&sb, "%v ", a.data[i])
		}
		sb.WriteString("... ")
		for i := len(a.data) - PrintEdgeitems; i < len(a.data); i++ {
			fmt.Fprintf(&sb, " %v", a.data[i])
		}
		sb.WriteByte(']')
	}
	return sb.String()
}

// persisted tensor form
type arrayJSON struct {
	Shape []int     `json:"shape"`
	Data  []float32 `json:"data"`
}

func (a *Array) MarshalJSON() ([]byte, error) {
	return json.Marshal(arrayJSON{Shape: a.dims, Data: a.data})
}

func (a *Array) UnmarshalJSON(data []byte) error {
	var v arrayJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if len(v.Data) != Prod(v.Shape) {
		return fmt.Errorf("num: tensor data length %d does not match shape %v", len(v.Data), v.Shape)
	}
	a.dims, a.data = v.Shape, v.Data
	return nil
}

// Prod is the product of the dims, by convention 1 for an empty shape.
func Prod(dims []int) int {
	n := 1
	for _, d := range dims {
		n *= d
	}
	return n
}

// SameShape compares two shapes for equality.
func SameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i, d := range a {
		if b[i] != d {
			return false
		}
	}
	return true
}

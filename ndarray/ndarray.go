// Package ndarray provides the in-memory N-dimensional array type consumed
// by the FITS writer, along with its attached key/value metadata.
package ndarray

import (
	"fmt"
	"reflect"
	"strings"
	"unsafe"
)

// DType is the semantic element type of an array's pixel buffer.
type DType int

// The eight recognized element types.
const (
	Int8 DType = iota
	UInt8
	Int16
	UInt16
	Int32
	UInt32
	Float32
	Float64
)

var dtypeNames = map[DType]string{
	Int8:    "int8",
	UInt8:   "uint8",
	Int16:   "int16",
	UInt16:  "uint16",
	Int32:   "int32",
	UInt32:  "uint32",
	Float32: "float32",
	Float64: "float64",
}

var dtypeSizes = map[DType]int{
	Int8:    1,
	UInt8:   1,
	Int16:   2,
	UInt16:  2,
	Int32:   4,
	UInt32:  4,
	Float32: 4,
	Float64: 8,
}

func (d DType) String() string {
	if s, ok := dtypeNames[d]; ok {
		return s
	}
	return fmt.Sprintf("DType(%d)", int(d))
}

// Size returns the element width in bytes, or 0 for an unrecognized DType.
func (d DType) Size() int {
	return dtypeSizes[d]
}

// ParseDType converts a string such as "uint16" to a DType.  Matching is
// case insensitive.
func ParseDType(s string) (DType, error) {
	s = strings.ToLower(s)
	for d, name := range dtypeNames {
		if s == name {
			return d, nil
		}
	}
	return 0, fmt.Errorf("ndarray: unknown dtype %q", s)
}

// Array is a contiguous N-dimensional numeric array.  Data holds the raw
// pixel buffer in native byte order; Dims is ordered fastest-varying first,
// so Dims[0] is the width of a 2D image.  Attrs is the ordered metadata
// attached to the array, which may be nil.
//
// An Array is owned by the caller; the FITS writer never retains one past
// the call it was passed to.
type Array struct {
	DType DType
	Dims  []int
	Data  []byte
	Attrs []Attr
}

// NumElems returns the product of all dimension extents.
func (a *Array) NumElems() int {
	n := 1
	for _, d := range a.Dims {
		n *= d
	}
	return n
}

// Validate checks the internal consistency of the array: a recognized
// dtype, rank of at least one, positive extents, and a buffer whose length
// is exactly the element count times the element size.
func (a *Array) Validate() error {
	esize := a.DType.Size()
	if esize == 0 {
		return fmt.Errorf("ndarray: unrecognized dtype %v", a.DType)
	}
	if len(a.Dims) == 0 {
		return fmt.Errorf("ndarray: array has no dimensions")
	}
	for i, d := range a.Dims {
		if d < 1 {
			return fmt.Errorf("ndarray: dimension %d has non-positive extent %d", i, d)
		}
	}
	if want := a.NumElems() * esize; len(a.Data) != want {
		return fmt.Errorf("ndarray: buffer is %d bytes, dims %v of %v require %d", len(a.Data), a.Dims, a.DType, want)
	}
	return nil
}

// New allocates a zero-filled array of the given dtype and dimensions.
func New(dt DType, dims ...int) (*Array, error) {
	a := &Array{DType: dt, Dims: dims}
	esize := dt.Size()
	if esize == 0 {
		return nil, fmt.Errorf("ndarray: unrecognized dtype %v", dt)
	}
	a.Data = make([]byte, a.NumElems()*esize)
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// rawBytes reinterprets count*esize bytes at p as a byte slice without
// copying.  The caller must keep the backing storage alive.
func rawBytes(p unsafe.Pointer, count, esize int) []byte {
	var b []byte
	hdr := (*reflect.SliceHeader)(unsafe.Pointer(&b))
	hdr.Data = uintptr(p)
	hdr.Len = count * esize
	hdr.Cap = count * esize
	return b
}

func errEmpty(dt DType) error {
	return fmt.Errorf("ndarray: empty %v buffer", dt)
}

func fromSlice(dt DType, p unsafe.Pointer, count int, dims []int) (*Array, error) {
	a := &Array{DType: dt, Dims: dims, Data: rawBytes(p, count, dt.Size())}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// FromInt8 wraps a typed slice as an array without copying.
func FromInt8(data []int8, dims ...int) (*Array, error) {
	if len(data) == 0 {
		return nil, errEmpty(Int8)
	}
	return fromSlice(Int8, unsafe.Pointer(&data[0]), len(data), dims)
}

// FromUint8 wraps a typed slice as an array without copying.
func FromUint8(data []uint8, dims ...int) (*Array, error) {
	if len(data) == 0 {
		return nil, errEmpty(UInt8)
	}
	return fromSlice(UInt8, unsafe.Pointer(&data[0]), len(data), dims)
}

// FromInt16 wraps a typed slice as an array without copying.
func FromInt16(data []int16, dims ...int) (*Array, error) {
	if len(data) == 0 {
		return nil, errEmpty(Int16)
	}
	return fromSlice(Int16, unsafe.Pointer(&data[0]), len(data), dims)
}

// FromUint16 wraps a typed slice as an array without copying.
func FromUint16(data []uint16, dims ...int) (*Array, error) {
	if len(data) == 0 {
		return nil, errEmpty(UInt16)
	}
	return fromSlice(UInt16, unsafe.Pointer(&data[0]), len(data), dims)
}

// FromInt32 wraps a typed slice as an array without copying.
func FromInt32(data []int32, dims ...int) (*Array, error) {
	if len(data) == 0 {
		return nil, errEmpty(Int32)
	}
	return fromSlice(Int32, unsafe.Pointer(&data[0]), len(data), dims)
}

// FromUint32 wraps a typed slice as an array without copying.
func FromUint32(data []uint32, dims ...int) (*Array, error) {
	if len(data) == 0 {
		return nil, errEmpty(UInt32)
	}
	return fromSlice(UInt32, unsafe.Pointer(&data[0]), len(data), dims)
}

// FromFloat32 wraps a typed slice as an array without copying.
func FromFloat32(data []float32, dims ...int) (*Array, error) {
	if len(data) == 0 {
		return nil, errEmpty(Float32)
	}
	return fromSlice(Float32, unsafe.Pointer(&data[0]), len(data), dims)
}

// FromFloat64 wraps a typed slice as an array without copying.
func FromFloat64(data []float64, dims ...int) (*Array, error) {
	if len(data) == 0 {
		return nil, errEmpty(Float64)
	}
	return fromSlice(Float64, unsafe.Pointer(&data[0]), len(data), dims)
}

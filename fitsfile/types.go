package fitsfile

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.jpl.nasa.gov/bdube/ndfits/ndarray"
)

// imageFormat describes how one element type is stored in a FITS image:
// the BITPIX header value, the BZERO offset that implements unsigned and
// signed-byte images on top of FITS's signed storage types, and the
// transfer conversion producing the slice handed to fitsio.
//
// The BZERO values follow the cfitsio convention: physical = BZERO + stored.
type imageFormat struct {
	bitpix int
	bzero  int64

	// xfer converts a raw native-order pixel buffer into a pointer to a
	// typed slice matching bitpix, applying the bzero offset.
	xfer func(raw []byte) interface{}
}

var imageFormats = map[ndarray.DType]imageFormat{
	ndarray.Int8:    {bitpix: 8, bzero: -128, xfer: xferInt8},
	ndarray.UInt8:   {bitpix: 8, bzero: 0, xfer: xferUint8},
	ndarray.Int16:   {bitpix: 16, bzero: 0, xfer: xferInt16},
	ndarray.UInt16:  {bitpix: 16, bzero: 32768, xfer: xferUint16},
	ndarray.Int32:   {bitpix: 32, bzero: 0, xfer: xferInt32},
	ndarray.UInt32:  {bitpix: 32, bzero: 1 << 31, xfer: xferUint32},
	ndarray.Float32: {bitpix: -32, bzero: 0, xfer: xferFloat32},
	ndarray.Float64: {bitpix: -64, bzero: 0, xfer: xferFloat64},
}

// pixelFormat resolves the image format for a dtype.
func pixelFormat(dt ndarray.DType) (imageFormat, error) {
	ifmt, ok := imageFormats[dt]
	if !ok {
		return imageFormat{}, fmt.Errorf("%w: %v", ErrUnsupportedPixelType, dt)
	}
	return ifmt, nil
}

// reinterpret points the slice header at out to b's storage, reinterpreted
// as elements of width esize, without copying.  b must outlive the result.
func reinterpret(b []byte, esize int, out unsafe.Pointer) {
	hdr := (*reflect.SliceHeader)(out)
	hdr.Data = uintptr(unsafe.Pointer(&b[0]))
	hdr.Len = len(b) / esize
	hdr.Cap = cap(b) / esize
}

func asInt16s(b []byte) []int16 {
	var s []int16
	reinterpret(b, 2, unsafe.Pointer(&s))
	return s
}

func asUint16s(b []byte) []uint16 {
	var s []uint16
	reinterpret(b, 2, unsafe.Pointer(&s))
	return s
}

func asInt32s(b []byte) []int32 {
	var s []int32
	reinterpret(b, 4, unsafe.Pointer(&s))
	return s
}

func asUint32s(b []byte) []uint32 {
	var s []uint32
	reinterpret(b, 4, unsafe.Pointer(&s))
	return s
}

func asFloat32s(b []byte) []float32 {
	var s []float32
	reinterpret(b, 4, unsafe.Pointer(&s))
	return s
}

func asFloat64s(b []byte) []float64 {
	var s []float64
	reinterpret(b, 8, unsafe.Pointer(&s))
	return s
}

// stored = physical + 128, expressed on the raw bits as flipping the sign
// bit.  Pairs with BZERO = -128.
func xferInt8(raw []byte) interface{} {
	out := make([]int8, len(raw))
	for i := 0; i < len(raw); i++ {
		out[i] = int8(raw[i] ^ 0x80)
	}
	return &out
}

func xferUint8(raw []byte) interface{} {
	out := make([]int8, len(raw))
	for i := 0; i < len(raw); i++ {
		out[i] = int8(raw[i])
	}
	return &out
}

func xferInt16(raw []byte) interface{} {
	out := asInt16s(raw)
	return &out
}

// stored = physical - 32768.  Pairs with BZERO = 32768.
func xferUint16(raw []byte) interface{} {
	in := asUint16s(raw)
	out := make([]int16, len(in))
	for i := 0; i < len(in); i++ {
		out[i] = int16(in[i] - 32768)
	}
	return &out
}

func xferInt32(raw []byte) interface{} {
	out := asInt32s(raw)
	return &out
}

// stored = physical - 2^31.  Pairs with BZERO = 2147483648.
func xferUint32(raw []byte) interface{} {
	in := asUint32s(raw)
	out := make([]int32, len(in))
	for i := 0; i < len(in); i++ {
		out[i] = int32(in[i] - 1<<31)
	}
	return &out
}

func xferFloat32(raw []byte) interface{} {
	out := asFloat32s(raw)
	return &out
}

func xferFloat64(raw []byte) interface{} {
	out := asFloat64s(raw)
	return &out
}

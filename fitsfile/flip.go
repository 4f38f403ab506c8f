package fitsfile

import "fmt"

// flipRows returns a fresh copy of src in which every 2D slice is flipped
// vertically:
//
//	dst[z*(w*h) + (h-1-y)*w + x] = src[z*(w*h) + y*w + x]
//
// in element coordinates, for elements of width esize bytes.  FITS stores
// the first image row at the bottom while the in-memory convention puts it
// at the top; the flip reconciles the two.  The move is bit-exact for any
// element width since whole rows are copied without interpretation.
//
// Bytes past the w*h*d transposable prefix are copied through unchanged,
// which makes the flip an identity copy when the planner degenerates to
// (1, 1, 1) for ranks above three.
func flipRows(src []byte, esize, w, h, d int) ([]byte, error) {
	if esize < 1 || w < 1 || h < 1 || d < 1 {
		return nil, fmt.Errorf("fitsfile: non-positive flip geometry %dx%dx%d esize %d", w, h, d, esize)
	}
	rowBytes := w * esize
	sliceBytes := rowBytes * h
	need := sliceBytes * d
	if need > len(src) {
		return nil, fmt.Errorf("fitsfile: buffer is %d bytes, flip of %dx%dx%d elements of %d bytes requires %d", len(src), w, h, d, esize, need)
	}
	dst := make([]byte, len(src))
	copy(dst[need:], src[need:])
	for z := 0; z < d; z++ {
		base := z * sliceBytes
		for y := 0; y < h; y++ {
			srow := base + y*rowBytes
			drow := base + (h-1-y)*rowBytes
			copy(dst[drow:drow+rowBytes], src[srow:srow+rowBytes])
		}
	}
	return dst, nil
}

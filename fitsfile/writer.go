package fitsfile

import (
	"fmt"
	"os"

	"github.com/astrogo/fitsio"

	"github.jpl.nasa.gov/bdube/ndfits/ndarray"
)

// ImageFileWriter is the capability exposed to the layer that produces
// arrays and decides when files begin and end.  There is exactly one
// implementation in this package; consumers hold the interface so that
// sequencing and retry policy stay out of the serialization core.
type ImageFileWriter interface {
	// Open begins a new file at path.  The reference array fixes the
	// dimensionality and element type for the session and supplies the
	// attributes serialized into the header.
	Open(path string, mode Mode, ref *ndarray.Array) error

	// Write appends the array's pixels to the file.
	Write(arr *ndarray.Array) error

	// Read is not implemented.
	Read() (*ndarray.Array, error)

	// Close releases the file handle.  It is idempotent.
	Close() error
}

type state int

const (
	stClosed state = iota
	stOpen

	// stAbandoned means Open failed after the file was created; the
	// handle is retained until the caller closes the session, and the
	// partial file is not deleted.
	stAbandoned
)

// Writer owns one FITS file through an open/write/close cycle.  The zero
// value is a closed session, ready to Open.  Not safe for concurrent use;
// distinct Writers are fully independent.
type Writer struct {
	st    state
	f     *os.File
	fits  *fitsio.File
	dtype ndarray.DType
	dims  []int
	ifmt  imageFormat
	cards []fitsio.Card
	wrote bool
}

var _ ImageFileWriter = (*Writer)(nil)

// Open creates (or truncates) the file at path and freezes the session's
// dimensionality and element type from ref.  Modes requesting read or
// append fail with ErrUnsupportedMode before any file is touched, as does
// a zero-rank reference array with ErrInvalidDimensions.  If header
// serialization fails after the file exists, the session keeps the handle
// so that Close can release it; the partial file is left on disk.
func (w *Writer) Open(path string, mode Mode, ref *ndarray.Array) error {
	if w.st != stClosed {
		return fmt.Errorf("fitsfile: session already has an open file")
	}
	if mode&(ModeRead|ModeAppend) != 0 {
		return ErrUnsupportedMode
	}
	if ref == nil || len(ref.Dims) == 0 {
		return ErrInvalidDimensions
	}
	for i, d := range ref.Dims {
		if d < 1 {
			return fmt.Errorf("%w: dimension %d has extent %d", ErrInvalidDimensions, i, d)
		}
	}
	ifmt, err := pixelFormat(ref.DType)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("fitsfile: create %s: %w", path, err)
	}
	fits, err := fitsio.Create(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("fitsfile: create FITS stream: %w", err)
	}

	w.f = f
	w.fits = fits
	cards, err := attrCards(ref.Attrs)
	if err != nil {
		w.st = stAbandoned
		return fmt.Errorf("fitsfile: serialize attributes: %w", err)
	}
	if ifmt.bzero != 0 {
		cards = append(cards,
			fitsio.Card{Name: "BZERO", Value: int(ifmt.bzero), Comment: "physical = BZERO + BSCALE*stored"},
			fitsio.Card{Name: "BSCALE", Value: 1.0})
	}

	w.dtype = ref.DType
	w.dims = append([]int(nil), ref.Dims...)
	w.ifmt = ifmt
	w.cards = cards
	w.wrote = false
	w.st = stOpen
	return nil
}

// Write flips the array vertically per 2D slice and appends it to the file
// as an image HDU.  The array must match the dtype and dimensions of the
// open-time reference; a mismatch fails with ErrShapeMismatch rather than
// silently reinterpreting the buffer.
func (w *Writer) Write(arr *ndarray.Array) error {
	if w.st != stOpen {
		return ErrClosed
	}
	if err := arr.Validate(); err != nil {
		return fmt.Errorf("fitsfile: %w", err)
	}
	if arr.DType != w.dtype || !dimsEqual(arr.Dims, w.dims) {
		return fmt.Errorf("%w: got %v %v, opened with %v %v", ErrShapeMismatch, arr.DType, arr.Dims, w.dtype, w.dims)
	}
	// resolved per write, not assumed from the session
	ifmt, err := pixelFormat(arr.DType)
	if err != nil {
		return err
	}
	width, height, depth := planDims(arr.Dims)
	flipped, err := flipRows(arr.Data, arr.DType.Size(), width, height, depth)
	if err != nil {
		return err
	}
	return w.writeImage(ifmt, arr.Dims, flipped)
}

func (w *Writer) writeImage(ifmt imageFormat, dims []int, raw []byte) error {
	img := fitsio.NewImage(ifmt.bitpix, dims)
	defer img.Close()
	if err := img.Header().Append(w.cards...); err != nil {
		return fmt.Errorf("fitsfile: append header cards: %w", err)
	}
	if err := img.Write(ifmt.xfer(raw)); err != nil {
		return fmt.Errorf("fitsfile: transfer pixels: %w", err)
	}
	if err := w.fits.Write(img); err != nil {
		return fmt.Errorf("fitsfile: write HDU: %w", err)
	}
	w.wrote = true
	return nil
}

// Read is not implemented; reading FITS files back into arrays is out of
// scope for this version.
func (w *Writer) Read() (*ndarray.Array, error) {
	return nil, ErrNotImplemented
}

// Close releases the file handle unconditionally.  Closing an already
// closed session is a no-op success.  If the session was opened but never
// written, a zero-filled image is emitted first so the file still carries
// a valid primary HDU.
func (w *Writer) Close() error {
	if w.st == stClosed && w.f == nil {
		return nil
	}
	var err error
	if w.st == stOpen {
		if !w.wrote {
			esize := w.dtype.Size()
			err = w.writeImage(w.ifmt, w.dims, make([]byte, numElems(w.dims)*esize))
		}
		if cerr := w.fits.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("fitsfile: close FITS stream: %w", cerr)
		}
	} else if w.fits != nil {
		// abandoned session; flush whatever fitsio buffered before the
		// failure, the file is already declared partial
		w.fits.Close()
	}
	if w.f != nil {
		if cerr := w.f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("fitsfile: close file: %w", cerr)
		}
	}
	*w = Writer{}
	return err
}

func dimsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

/*Package fitsfile serializes ndarray.Array values to FITS image files.

The package is organized around a small set of pure pieces and one stateful
one.  The pure pieces map the eight recognized element types to FITS pixel
encodings, plan the (width, height, depth) triple used for the row flip,
flip the pixel buffer vertically per 2D slice to reconcile top-down
row-major memory with FITS's bottom-up storage convention, and turn array
attributes into header cards.  The stateful piece, Writer, owns the file
handle through an open/write/close cycle:

	w := &fitsfile.Writer{}
	err := w.Open("frame.fits", fitsfile.ModeWrite, arr)
	if err != nil {
		return err
	}
	defer w.Close()
	err = w.Write(arr)

A Writer is not safe for concurrent use; callers serialize access to a
single session, typically with one worker per output file.  Distinct
Writers share no state and may run in parallel.
*/
package fitsfile

import "errors"

// Sentinel errors returned by the package.  Underlying fitsio failures are
// wrapped with the sub-step that failed and can be unwrapped with
// errors.Is/As.
var (
	// ErrUnsupportedMode is returned by Open when the mode requests
	// reading or appending, neither of which is supported.
	ErrUnsupportedMode = errors.New("fitsfile: read and append modes are not supported")

	// ErrInvalidDimensions is returned by Open when the reference array
	// has no dimensions.
	ErrInvalidDimensions = errors.New("fitsfile: array must have at least one dimension")

	// ErrUnsupportedPixelType is returned when an array's element type is
	// not one of the eight recognized numeric kinds.
	ErrUnsupportedPixelType = errors.New("fitsfile: unsupported pixel data type")

	// ErrUnsupportedAttributeType is returned when an attribute's value
	// type is not recognized.
	ErrUnsupportedAttributeType = errors.New("fitsfile: unsupported attribute data type")

	// ErrNotImplemented is returned by Read; reading FITS files back into
	// arrays is out of scope for this version.
	ErrNotImplemented = errors.New("fitsfile: not implemented")

	// ErrClosed is returned by Write when the session has no open file.
	ErrClosed = errors.New("fitsfile: session is not open")

	// ErrShapeMismatch is returned by Write when the array's dtype or
	// dimensions differ from the reference array the session was opened
	// with.
	ErrShapeMismatch = errors.New("fitsfile: array shape or dtype differs from the open-time reference")
)

// Mode is a bitmask of open-mode flags.
type Mode uint8

// Open-mode flags.  ModeRead and ModeAppend are consumed only to be
// rejected.  ModeMultiple is accepted, but a session still writes one file
// per open/close cycle; multi-file sequencing belongs to the caller.
const (
	ModeRead Mode = 1 << iota
	ModeWrite
	ModeAppend
	ModeMultiple
)

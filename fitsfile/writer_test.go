package fitsfile_test

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/astrogo/fitsio"

	"github.jpl.nasa.gov/bdube/ndfits/fitsfile"
	"github.jpl.nasa.gov/bdube/ndfits/ndarray"
)

func tempDir(t *testing.T) string {
	t.Helper()
	dir, err := ioutil.TempDir("", "fitsfile")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

// pixelCount is the flattened element count of a decoded image; Read
// requires a preallocated destination slice of exactly this length.
func pixelCount(axes []int) int {
	n := 1
	for _, a := range axes {
		n *= a
	}
	return n
}

// decode reopens a written file and returns the primary image HDU and a
// closer for the underlying resources.
func decode(t *testing.T, path string) (fitsio.Image, func()) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	fits, err := fitsio.Open(f)
	if err != nil {
		f.Close()
		t.Fatal(err)
	}
	img, ok := fits.HDU(0).(fitsio.Image)
	if !ok {
		fits.Close()
		f.Close()
		t.Fatal("expected the primary HDU to be an image")
	}
	return img, func() {
		fits.Close()
		f.Close()
	}
}

func TestOpenRejectsReadMode(t *testing.T) {
	dir := tempDir(t)
	path := filepath.Join(dir, "nope.fits")
	arr, _ := ndarray.New(ndarray.UInt16, 2, 2)
	w := &fitsfile.Writer{}
	err := w.Open(path, fitsfile.ModeRead, arr)
	if !errors.Is(err, fitsfile.ErrUnsupportedMode) {
		t.Fatalf("expected ErrUnsupportedMode, got %v", err)
	}
	if _, serr := os.Stat(path); !os.IsNotExist(serr) {
		t.Error("expected no file to be created for a rejected mode")
	}
}

func TestOpenRejectsAppendMode(t *testing.T) {
	dir := tempDir(t)
	arr, _ := ndarray.New(ndarray.UInt16, 2, 2)
	w := &fitsfile.Writer{}
	err := w.Open(filepath.Join(dir, "nope.fits"), fitsfile.ModeWrite|fitsfile.ModeAppend, arr)
	if !errors.Is(err, fitsfile.ErrUnsupportedMode) {
		t.Fatalf("expected ErrUnsupportedMode, got %v", err)
	}
}

func TestOpenRejectsZeroRank(t *testing.T) {
	dir := tempDir(t)
	path := filepath.Join(dir, "nope.fits")
	arr := &ndarray.Array{DType: ndarray.UInt16}
	w := &fitsfile.Writer{}
	err := w.Open(path, fitsfile.ModeWrite, arr)
	if !errors.Is(err, fitsfile.ErrInvalidDimensions) {
		t.Fatalf("expected ErrInvalidDimensions, got %v", err)
	}
	if _, serr := os.Stat(path); !os.IsNotExist(serr) {
		t.Error("expected no file to be created for a zero-rank array")
	}
}

func TestOpenRejectsUnknownDType(t *testing.T) {
	dir := tempDir(t)
	arr := &ndarray.Array{DType: ndarray.DType(99), Dims: []int{2}}
	w := &fitsfile.Writer{}
	err := w.Open(filepath.Join(dir, "nope.fits"), fitsfile.ModeWrite, arr)
	if !errors.Is(err, fitsfile.ErrUnsupportedPixelType) {
		t.Fatalf("expected ErrUnsupportedPixelType, got %v", err)
	}
}

func TestWriteOnClosedSession(t *testing.T) {
	arr, _ := ndarray.New(ndarray.UInt16, 2, 2)
	w := &fitsfile.Writer{}
	err := w.Write(arr)
	if !errors.Is(err, fitsfile.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestReadNotImplemented(t *testing.T) {
	w := &fitsfile.Writer{}
	_, err := w.Read()
	if !errors.Is(err, fitsfile.ErrNotImplemented) {
		t.Fatalf("expected ErrNotImplemented, got %v", err)
	}
}

func TestCloseIdempotent(t *testing.T) {
	w := &fitsfile.Writer{}
	if err := w.Close(); err != nil {
		t.Fatalf("close of a never-opened session: %v", err)
	}
	dir := tempDir(t)
	arr, _ := ndarray.New(ndarray.Int16, 2, 2)
	if err := w.Open(filepath.Join(dir, "a.fits"), fitsfile.ModeWrite, arr); err != nil {
		t.Fatal(err)
	}
	if err := w.Write(arr); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second close must be a no-op success, got %v", err)
	}
}

func TestWriteShapeMismatch(t *testing.T) {
	dir := tempDir(t)
	ref, _ := ndarray.New(ndarray.UInt16, 3, 2)
	w := &fitsfile.Writer{}
	if err := w.Open(filepath.Join(dir, "a.fits"), fitsfile.ModeWrite, ref); err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	wrongDims, _ := ndarray.New(ndarray.UInt16, 2, 3)
	if err := w.Write(wrongDims); !errors.Is(err, fitsfile.ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch for different dims, got %v", err)
	}
	wrongType, _ := ndarray.New(ndarray.Int16, 3, 2)
	if err := w.Write(wrongType); !errors.Is(err, fitsfile.ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch for a different dtype, got %v", err)
	}
}

// TestUint16RoundTrip opens a 3 wide by 2 tall uint16 session with an
// EXPTIME attribute, writes rows [1 2 3] then [4 5 6], and checks that the
// file decodes with the rows flipped, the unsigned offset applied, and the
// header card present.
func TestUint16RoundTrip(t *testing.T) {
	dir := tempDir(t)
	path := filepath.Join(dir, "frame.fits")
	arr, err := ndarray.FromUint16([]uint16{1, 2, 3, 4, 5, 6}, 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	arr.Attrs = []ndarray.Attr{ndarray.Float64Attr("EXPTIME", "exposure time", 1.5)}

	w := &fitsfile.Writer{}
	if err := w.Open(path, fitsfile.ModeWrite, arr); err != nil {
		t.Fatal(err)
	}
	if err := w.Write(arr); err != nil {
		w.Close()
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	img, done := decode(t, path)
	defer done()
	hdr := img.Header()
	if axes := hdr.Axes(); len(axes) != 2 || axes[0] != 3 || axes[1] != 2 {
		t.Errorf("expected axes [3 2], got %v", axes)
	}
	card := hdr.Get("EXPTIME")
	if card == nil {
		t.Fatal("expected an EXPTIME card")
	}
	if v, ok := card.Value.(float64); !ok || v != 1.5 {
		t.Errorf("expected EXPTIME=1.5, got %v", card.Value)
	}
	if card := hdr.Get("BZERO"); card == nil {
		t.Error("expected a BZERO card for an unsigned image")
	}

	// Read fills a preallocated slice sized from the axes
	data := make([]int16, pixelCount(hdr.Axes()))
	if err := img.Read(&data); err != nil {
		t.Fatal(err)
	}
	// rows flipped, then stored = physical - 32768
	physical := []uint16{4, 5, 6, 1, 2, 3}
	if len(data) != len(physical) {
		t.Fatalf("expected %d pixels, got %d", len(physical), len(data))
	}
	for i, p := range physical {
		if expected := int16(p - 32768); data[i] != expected {
			t.Errorf("pixel %d: expected stored %d, got %d", i, expected, data[i])
		}
	}
}

func TestFloat64OneDee(t *testing.T) {
	dir := tempDir(t)
	path := filepath.Join(dir, "spectrum.fits")
	vals := []float64{0.25, -1.5, 3.75, 1e10}
	arr, err := ndarray.FromFloat64(vals, 4)
	if err != nil {
		t.Fatal(err)
	}
	w := &fitsfile.Writer{}
	if err := w.Open(path, fitsfile.ModeWrite, arr); err != nil {
		t.Fatal(err)
	}
	if err := w.Write(arr); err != nil {
		w.Close()
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	img, done := decode(t, path)
	defer done()
	if card := img.Header().Get("BZERO"); card != nil {
		t.Error("expected no BZERO card for a float image")
	}
	data := make([]float64, pixelCount(img.Header().Axes()))
	if err := img.Read(&data); err != nil {
		t.Fatal(err)
	}
	// a single row flips onto itself
	for i, v := range vals {
		if data[i] != v {
			t.Errorf("pixel %d: expected %g bit-exact, got %g", i, v, data[i])
		}
	}
}

func TestInt32CubeRoundTrip(t *testing.T) {
	dir := tempDir(t)
	path := filepath.Join(dir, "cube.fits")
	// two 2x2 slices; each flips independently
	arr, err := ndarray.FromInt32([]int32{1, 2, 3, 4, 5, 6, 7, 8}, 2, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	w := &fitsfile.Writer{}
	if err := w.Open(path, fitsfile.ModeWrite, arr); err != nil {
		t.Fatal(err)
	}
	if err := w.Write(arr); err != nil {
		w.Close()
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	img, done := decode(t, path)
	defer done()
	data := make([]int32, pixelCount(img.Header().Axes()))
	if err := img.Read(&data); err != nil {
		t.Fatal(err)
	}
	expected := []int32{3, 4, 1, 2, 7, 8, 5, 6}
	for i := range expected {
		if data[i] != expected[i] {
			t.Errorf("pixel %d: expected %d, got %d", i, expected[i], data[i])
		}
	}
}

func TestUnwrittenSessionStillProducesAnImage(t *testing.T) {
	dir := tempDir(t)
	path := filepath.Join(dir, "empty.fits")
	arr, _ := ndarray.New(ndarray.Int16, 2, 2)
	w := &fitsfile.Writer{}
	if err := w.Open(path, fitsfile.ModeWrite, arr); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	img, done := decode(t, path)
	defer done()
	data := make([]int16, pixelCount(img.Header().Axes()))
	if err := img.Read(&data); err != nil {
		t.Fatal(err)
	}
	if len(data) != 4 {
		t.Fatalf("expected 4 pixels, got %d", len(data))
	}
	for i, v := range data {
		if v != 0 {
			t.Errorf("pixel %d: expected zero fill, got %d", i, v)
		}
	}
}

func TestOpenAttributeFailureKeepsHandleForClose(t *testing.T) {
	dir := tempDir(t)
	path := filepath.Join(dir, "partial.fits")
	arr, _ := ndarray.New(ndarray.Int16, 2, 2)
	arr.Attrs = []ndarray.Attr{{Name: "BAD", Type: ndarray.AttrType(42)}}
	w := &fitsfile.Writer{}
	err := w.Open(path, fitsfile.ModeWrite, arr)
	if !errors.Is(err, fitsfile.ErrUnsupportedAttributeType) {
		t.Fatalf("expected ErrUnsupportedAttributeType, got %v", err)
	}
	// the partial file exists and is not deleted; close releases the handle
	if _, serr := os.Stat(path); serr != nil {
		t.Error("expected the partial file to remain on disk")
	}
	if cerr := w.Close(); cerr != nil {
		t.Errorf("expected close after a failed open to succeed, got %v", cerr)
	}
	// the abandoned session cannot be written
	if werr := w.Write(arr); !errors.Is(werr, fitsfile.ErrClosed) {
		t.Errorf("expected ErrClosed after abandonment, got %v", werr)
	}
	// close fully releases the session; it can open a fresh file
	arr.Attrs = nil
	if oerr := w.Open(filepath.Join(dir, "retry.fits"), fitsfile.ModeWrite, arr); oerr != nil {
		t.Errorf("expected the session to be reusable after close, got %v", oerr)
	}
	w.Close()
}

// Package imgrec allocates sequentially numbered FITS output paths in
// dated subfolders and records arrays to them.
package imgrec

import (
	"fmt"
	"io/ioutil"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff"

	"github.jpl.nasa.gov/bdube/ndfits/fitsfile"
	"github.jpl.nasa.gov/bdube/ndfits/ndarray"
)

// Recorder hands out incrementing filenames in yyyy-mm-dd subfolders and
// writes arrays to them.  It is not thread safe.
type Recorder struct {
	// counter is the internally incrementing counter
	counter int

	// Root is the root path
	Root string

	// Prefix is the prefix for the filenames
	Prefix string

	// timeFldr is the subfolder with yyyy-mm-dd format.
	timeFldr string

	// Enabled is a flag unused by this struct that allows consumers to
	// disable its use in their code
	Enabled bool
}

// updateFolder checks the current time and updates the folder as needed
func (r *Recorder) updateFolder() {
	now := time.Now()
	y, m, d := now.Year(), now.Month(), now.Day()
	r.timeFldr = fmt.Sprintf("%04d-%02d-%02d", y, m, d)
}

// mkDir makes the dated folder and returns it.  Creation is retried with
// an exponential backoff; the recorders run against network filesystems
// that drop the occasional call.
func (r *Recorder) mkDir() (string, error) {
	fldr := path.Join(r.Root, r.timeFldr)
	op := func() error {
		return os.MkdirAll(fldr, 0777)
	}
	err := backoff.Retry(op, &backoff.ExponentialBackOff{
		InitialInterval:     25 * time.Millisecond,
		RandomizationFactor: 0.,
		Multiplier:          2.,
		MaxInterval:         1 * time.Second,
		MaxElapsedTime:      3 * time.Second,
		Clock:               backoff.SystemClock})
	return fldr, err
}

// NextPath allocates the next <prefix>NNNNNN.fits path, creating the dated
// folder if needed, and increments the counter.
func (r *Recorder) NextPath() (string, error) {
	r.updateFolder()
	fldr, err := r.mkDir()
	if err != nil {
		return "", err
	}
	fn := fmt.Sprintf("%s%06d.fits", r.Prefix, r.counter)
	r.counter++
	return path.Join(fldr, fn), nil
}

// Record writes arr to the next numbered file and returns the path it was
// written to.
func (r *Recorder) Record(arr *ndarray.Array) (string, error) {
	p, err := r.NextPath()
	if err != nil {
		return "", err
	}
	w := &fitsfile.Writer{}
	if err := w.Open(p, fitsfile.ModeWrite, arr); err != nil {
		w.Close()
		return p, err
	}
	if err := w.Write(arr); err != nil {
		w.Close()
		return p, err
	}
	return p, w.Close()
}

// Incr resynchronizes the filename counter by scanning the folder for the
// highest existing index.  If there is an error, the counter is unchanged.
func (r *Recorder) Incr() {
	r.updateFolder()
	dn, _ := r.mkDir()
	files, err := ioutil.ReadDir(dn)
	if err != nil {
		return
	}
	count := 0
	for _, file := range files {
		// skip directories, non-fits, and wrong prefix
		if file.IsDir() {
			continue
		}
		fn := file.Name()
		if !strings.HasSuffix(fn, ".fits") || !strings.HasPrefix(fn, r.Prefix) {
			continue
		}
		bit := strings.TrimSuffix(strings.TrimPrefix(fn, r.Prefix), ".fits")
		n, err := strconv.Atoi(bit)
		if err != nil {
			return
		}
		if count < n {
			count = n
		}
	}
	r.counter = count + 1
}

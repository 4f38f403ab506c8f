package main

import (
	"fmt"
	"io/ioutil"
	"log"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/theckman/yacspin"
	"golang.org/x/sync/errgroup"

	"github.jpl.nasa.gov/bdube/ndfits/fitsfile"
	"github.jpl.nasa.gov/bdube/ndfits/imgrec"
	"github.jpl.nasa.gov/bdube/ndfits/ndarray"
)

// loadArray reads a raw dump and wraps it as an array per the config.
func loadArray(c Config, path string) (*ndarray.Array, error) {
	dt, err := ndarray.ParseDType(c.DType)
	if err != nil {
		return nil, err
	}
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	arr := &ndarray.Array{
		DType: dt,
		Dims:  c.Dims,
		Data:  data,
		Attrs: configAttrs(c)}
	if err := arr.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return arr, nil
}

// configAttrs converts the Attrs map to attributes, sorted by name so the
// header card order is stable run to run.
func configAttrs(c Config) []ndarray.Attr {
	names := make([]string, 0, len(c.Attrs))
	for name := range c.Attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	attrs := make([]ndarray.Attr, 0, len(names))
	for _, name := range names {
		switch v := c.Attrs[name].(type) {
		case int:
			attrs = append(attrs, ndarray.Int32Attr(name, "", int32(v)))
		case float64:
			attrs = append(attrs, ndarray.Float64Attr(name, "", v))
		case string:
			attrs = append(attrs, ndarray.StringAttr(name, "", v))
		default:
			log.Printf("attribute %s has unusable type %T, skipped", name, v)
		}
	}
	return attrs
}

// attrArgs converts trailing KEY=VAL command line arguments to attributes.
// Values parse as integer, then float, then fall back to string.
func attrArgs(args []string) ([]ndarray.Attr, error) {
	attrs := make([]ndarray.Attr, 0, len(args))
	for _, arg := range args {
		idx := strings.Index(arg, "=")
		if idx < 1 {
			return nil, fmt.Errorf("attribute %q is not of the form KEY=VAL", arg)
		}
		name, val := arg[:idx], arg[idx+1:]
		if i, err := strconv.ParseInt(val, 10, 32); err == nil {
			attrs = append(attrs, ndarray.Int32Attr(name, "", int32(i)))
		} else if f, err := strconv.ParseFloat(val, 64); err == nil {
			attrs = append(attrs, ndarray.Float64Attr(name, "", f))
		} else {
			attrs = append(attrs, ndarray.StringAttr(name, "", val))
		}
	}
	return attrs, nil
}

func newRecorder(c Config) *imgrec.Recorder {
	rec := &imgrec.Recorder{Root: c.Root, Prefix: c.Prefix, Enabled: true}
	rec.Incr()
	return rec
}

func write(in, out string, extra []string) {
	c := Config{}
	if err := k.Unmarshal("", &c); err != nil {
		log.Fatal(err)
	}
	arr, err := loadArray(c, in)
	if err != nil {
		log.Fatal(err)
	}
	attrs, err := attrArgs(extra)
	if err != nil {
		log.Fatal(err)
	}
	arr.Attrs = append(arr.Attrs, attrs...)
	if out == "" {
		out, err = newRecorder(c).Record(arr)
		if err != nil {
			log.Fatal(err)
		}
		log.Println("wrote", out)
		return
	}
	w := &fitsfile.Writer{}
	if err = w.Open(out, fitsfile.ModeWrite, arr); err != nil {
		w.Close()
		log.Fatal(err)
	}
	if err = w.Write(arr); err != nil {
		w.Close()
		log.Fatal(err)
	}
	if err = w.Close(); err != nil {
		log.Fatal(err)
	}
	log.Println("wrote", out)
}

func batch(folder string) {
	c := Config{}
	if err := k.Unmarshal("", &c); err != nil {
		log.Fatal(err)
	}
	matches, err := filepath.Glob(filepath.Join(folder, "*.raw"))
	if err != nil {
		log.Fatal(err)
	}
	if len(matches) == 0 {
		log.Fatalf("no .raw files in %s", folder)
	}
	sort.Strings(matches)

	spinner, err := yacspin.New(yacspin.Config{
		Frequency: 100 * time.Millisecond,
		CharSet:   yacspin.CharSets[59],
		Suffix:    " converting"})
	if err == nil {
		spinner.Start()
		defer spinner.Stop()
	}

	// paths are allocated serially, the recorder is not thread safe;
	// the sessions themselves are independent and run concurrently
	rec := newRecorder(c)
	paths := make([]string, len(matches))
	for i := range matches {
		paths[i], err = rec.NextPath()
		if err != nil {
			log.Fatal(err)
		}
	}
	jobs := c.Jobs
	if jobs < 1 {
		jobs = 1
	}
	sem := make(chan struct{}, jobs)
	var g errgroup.Group
	for i := range matches {
		in, out := matches[i], paths[i]
		g.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()
			if spinner != nil {
				spinner.Message(filepath.Base(in))
			}
			arr, err := loadArray(c, in)
			if err != nil {
				return err
			}
			w := &fitsfile.Writer{}
			if err = w.Open(out, fitsfile.ModeWrite, arr); err != nil {
				w.Close()
				return err
			}
			if err = w.Write(arr); err != nil {
				w.Close()
				return err
			}
			return w.Close()
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
	log.Printf("converted %d files to %s", len(matches), filepath.Dir(paths[0]))
}

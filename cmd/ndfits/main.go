package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"

	yml "gopkg.in/yaml.v2"
)

var (
	// Version is the version number.  Typically injected via ldflags with git build
	Version = "1"

	// ConfigFileName is what it sounds like
	ConfigFileName = "ndfits.yml"
	k              = koanf.New(".")
)

// Config holds the conversion defaults.  Attrs values may be integers,
// floats, or strings; each becomes one header card in every output file.
type Config struct {
	// Root is the recorder root folder; output lands in dated subfolders
	// beneath it when no explicit output path is given
	Root string `yaml:"Root"`

	// Prefix is the filename prefix for recorded files
	Prefix string `yaml:"Prefix"`

	// DType is the element type of the raw input, e.g. uint16
	DType string `yaml:"DType"`

	// Dims are the dimension extents, fastest-varying first
	Dims []int `yaml:"Dims"`

	// Jobs caps how many files batch converts at once
	Jobs int `yaml:"Jobs"`

	// Attrs maps header card names to values
	Attrs map[string]interface{} `yaml:"Attrs"`
}

func setupconfig() {
	k.Load(structs.Provider(Config{
		Root:   "output",
		Prefix: "frame-",
		DType:  "uint16",
		Jobs:   4}, "koanf"), nil)
	if err := k.Load(file.Provider(ConfigFileName), yaml.Parser()); err != nil {
		errtxt := err.Error()
		if !strings.Contains(errtxt, "no such") { // file missing, who cares
			log.Fatalf("error loading config: %v", err)
		}
	}
}

func root() {
	str := `ndfits converts raw N-dimensional array dumps into FITS files,
the standard container for scientific imaging data.  Output files are
row-flipped so that image row zero lands at the bottom of the frame per
the FITS convention, and carry one header card per configured attribute.

Usage:
	ndfits <command>

Commands:
	write <input.raw> [output.fits] [KEY=VAL ...]
	batch <folder>
	help
	mkconf
	conf
	version`
	fmt.Println(str)
}

func help() {
	str := `ndfits is amenable to configuration via its .yml file.  For a primer on YAML, see
https://yaml.org/start.html

DType must be one of int8, uint8, int16, uint16, int32, uint32, float32,
float64.  Dims is the extent of each axis, fastest-varying first; a 640x480
frame is [640, 480] and a cube of 100 such frames is [640, 480, 100].  The
raw input must be exactly the product of the extents times the element
size, in native byte order.

write converts a single file.  With no output argument the file is
recorded under Root/yyyy-mm-dd/ with an incrementing counter.

batch converts every .raw file in a folder, Jobs at a time.  Batch output
always goes through the recorder.

Attrs entries become FITS header cards, e.g.

	Attrs:
	  EXPTIME: 1.5
	  ORIGIN: lab3

write also accepts trailing KEY=VAL arguments, which become cards for that
invocation only and follow the configured Attrs:

	ndfits write dark.raw EXPTIME=30 FRAMETYP=dark`
	fmt.Println(str)
}

func mkconf() {
	c := Config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	f, err := os.Create(ConfigFileName)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	err = yml.NewEncoder(f).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func printconf() {
	c := Config{}
	k.Unmarshal("", &c)
	err := yml.NewEncoder(os.Stdout).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func pversion() {
	fmt.Printf("ndfits version %v\n", Version)
}

func main() {
	args := os.Args
	if len(args) == 1 {
		root()
		return
	}
	setupconfig()
	cmd := strings.ToLower(args[1])
	switch cmd {
	case "write":
		if len(args) < 3 {
			log.Fatal("write requires an input file")
		}
		// an output path may precede the KEY=VAL attribute arguments
		out := ""
		rest := args[3:]
		if len(rest) > 0 && !strings.Contains(rest[0], "=") {
			out = rest[0]
			rest = rest[1:]
		}
		write(args[2], out, rest)
	case "batch":
		if len(args) < 3 {
			log.Fatal("batch requires a folder")
		}
		batch(args[2])
	case "help":
		help()
	case "mkconf":
		mkconf()
	case "conf":
		printconf()
	case "version":
		pversion()
	default:
		root()
	}
}

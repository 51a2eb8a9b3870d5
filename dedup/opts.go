package dedup

import (
	"fmt"

	"github.com/sciseq/scidedup/encoding/bamio"
)

// Opts for a deduplication run.
type Opts struct {
	// Commandline options.
	BamFile      string
	OutputPath   string
	InputFormat  string
	Format       string
	MetricsFile  string
	UmiFile      string
	SkipUnmapped bool
	Parallelism  int

	// Data derived from commandline options.
	KnownUmis []byte
	// NewSeen overrides the per-position set. Nil means one-substitution
	// neighborhoods.
	NewSeen func() Seen
}

func validate(opts *Opts) error {
	if opts.BamFile == "" {
		return fmt.Errorf("you must specify an input file with --bam")
	}
	if opts.OutputPath == "" {
		return fmt.Errorf("you must specify an output file with --output-bam")
	}
	if opts.BamFile == opts.OutputPath && opts.BamFile != "-" {
		return fmt.Errorf("input and output are the same file: %s", opts.BamFile)
	}
	if opts.InputFormat != "" && bamio.ParseFileType(opts.InputFormat) == bamio.Unknown {
		return fmt.Errorf("unknown input format %s", opts.InputFormat)
	}
	if opts.Format != "" {
		switch bamio.ParseFileType(opts.Format) {
		case bamio.BAM, bamio.SAM:
		default:
			return fmt.Errorf("unknown output format %s", opts.Format)
		}
	}
	if opts.Parallelism < 0 {
		return fmt.Errorf("parallelism must be non-negative")
	}
	if opts.Parallelism == 0 {
		opts.Parallelism = 1
	}
	return nil
}

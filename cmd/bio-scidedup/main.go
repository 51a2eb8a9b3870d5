package main

import (
	"flag"
	"fmt"
	"runtime"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/sciseq/scidedup/dedup"
)

var (
	bamFile      = flag.String("bam", "", "Input BAM, SAM or SAM.gz filename, '-' for stdin")
	outputPath   = flag.String("output-bam", "", "Output filename, '-' for stdout")
	inputFormat  = flag.String("input-format", "", "Input format, one of 'bam', 'sam' or 'sam.gz'. By default, guessed from the input filename.")
	format       = flag.String("format", "", "Output format, either 'bam' or 'sam'. By default, guessed from the output filename.")
	metricsFile  = flag.String("metrics", "", "Output metrics file")
	umiFile      = flag.String("umi-file", "", "snap each UMI to the closest of the known UMIs in this file before deduplicating")
	skipUnmapped = flag.Bool("skip-unmapped", false, "drop unmapped records instead of deduplicating them")
	parallelism  = flag.Int("parallelism", runtime.NumCPU(), "Number of goroutines used for BGZF compression and decompression")
)

// newOpts builds the run options from the flags and the positional arguments.
// Positional arguments are <input> <output> and may only be given when the
// corresponding flags are empty.
func newOpts(args []string) (dedup.Opts, error) {
	opts := dedup.Opts{
		BamFile:      *bamFile,
		OutputPath:   *outputPath,
		InputFormat:  *inputFormat,
		Format:       *format,
		MetricsFile:  *metricsFile,
		UmiFile:      *umiFile,
		SkipUnmapped: *skipUnmapped,
		Parallelism:  *parallelism,
	}
	switch len(args) {
	case 0:
	case 2:
		if opts.BamFile != "" || opts.OutputPath != "" {
			return opts, fmt.Errorf("positional arguments '%s' conflict with -bam and -output-bam", strings.Join(args, " "))
		}
		opts.BamFile, opts.OutputPath = args[0], args[1]
	default:
		return opts, fmt.Errorf("unparsed flags, please check flag syntax: '%s'", strings.Join(args, " "))
	}
	return opts, nil
}

func main() {
	shutdown := grail.Init()
	defer shutdown()

	opts, err := newOpts(flag.Args())
	if err != nil {
		log.Fatalf(err.Error())
	}
	ctx := vcontext.Background()
	if _, err := dedup.SetupAndDedup(ctx, &opts); err != nil {
		log.Fatalf(err.Error())
	}
	log.Debug.Printf("exiting")
}

package dedup

import (
	"context"
	"io/ioutil"
	"time"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/sciseq/scidedup/encoding/bamio"
	"github.com/sciseq/scidedup/umi"
)

// SetupAndDedup validates opts, opens the input and output named there, runs
// an Engine over the input and writes the metrics file if one was requested.
func SetupAndDedup(ctx context.Context, opts *Opts) (*Metrics, error) {
	if err := validate(opts); err != nil {
		return nil, err
	}

	var corrector *umi.SnapCorrector
	if opts.UmiFile != "" {
		if err := loadKnownUmis(ctx, opts); err != nil {
			return nil, err
		}
	}
	if opts.KnownUmis != nil {
		var err error
		if corrector, err = umi.NewSnapCorrector(opts.KnownUmis); err != nil {
			return nil, errors.E(err, "umi file", opts.UmiFile)
		}
	}

	in, err := bamio.NewReader(ctx, opts.BamFile, bamio.ParseFileType(opts.InputFormat), opts.Parallelism)
	if err != nil {
		return nil, err
	}
	defer in.Close(ctx) // nolint: errcheck

	out, err := bamio.NewWriter(ctx, opts.OutputPath, in.Header(), bamio.ParseFileType(opts.Format), opts.Parallelism)
	if err != nil {
		return nil, err
	}

	engine := NewEngine(EngineOpts{
		NewSeen:      opts.NewSeen,
		Corrector:    corrector,
		SkipUnmapped: opts.SkipUnmapped,
	})
	t0 := time.Now()
	if err := engine.Run(ctx, in, out); err != nil {
		if cerr := out.Close(ctx); cerr != nil {
			log.Error.Printf("%s: %v", opts.OutputPath, cerr)
		}
		return nil, errors.E(err, "deduplicating", opts.BamFile)
	}
	if err := out.Close(ctx); err != nil {
		return nil, err
	}
	if err := in.Close(ctx); err != nil {
		return nil, err
	}
	metrics := engine.Metrics()
	log.Printf("%s: %v in %v", opts.BamFile, &metrics, time.Since(t0))

	if opts.MetricsFile != "" {
		if err := writeMetrics(ctx, opts.MetricsFile, &metrics); err != nil {
			return nil, err
		}
	}
	return &metrics, nil
}

func loadKnownUmis(ctx context.Context, opts *Opts) error {
	umiReader, err := file.Open(ctx, opts.UmiFile)
	if err != nil {
		log.Debug.Printf("Could not read umi file %s: %s", opts.UmiFile, err)
		return err
	}
	defer umiReader.Close(ctx) // nolint: errcheck
	opts.KnownUmis, err = ioutil.ReadAll(umiReader.Reader(ctx))
	if err != nil {
		log.Debug.Printf("Could not read umi file %s: %s", opts.UmiFile, err)
		return err
	}
	if len(opts.KnownUmis) == 0 {
		return errors.E(errors.Invalid, "umi list is empty:", opts.UmiFile)
	}
	return nil
}

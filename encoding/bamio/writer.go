package bamio

import (
	"context"
	"io"
	"os"

	"github.com/grailbio/base/file"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"github.com/pkg/errors"
)

// Writer writes records to a BAM or SAM file in submission order.
type Writer struct {
	path string
	out  file.File
	bam  *bam.Writer
	sam  *sam.Writer
	n    int64
}

// NewWriter creates path and writes header to it. The format is taken from
// typ, or guessed from the path when typ is Unknown, falling back to BAM.
// Parallelism is the number of BGZF compression goroutines used for BAM.
func NewWriter(ctx context.Context, path string, header *sam.Header, typ FileType, parallelism int) (_ *Writer, err error) {
	w := &Writer{path: path}
	var out io.Writer
	if path == "-" {
		out = os.Stdout
	} else {
		if w.out, err = file.Create(ctx, path); err != nil {
			return nil, errors.Wrapf(err, "%v: create", path)
		}
		out = w.out.Writer(ctx)
	}
	defer func() {
		if err != nil && w.out != nil {
			w.out.Close(ctx) // nolint: errcheck
		}
	}()
	if parallelism < 1 {
		parallelism = 1
	}
	switch t := resolve(path, typ); t {
	case SAM:
		if w.sam, err = sam.NewWriter(out, header, sam.FlagDecimal); err != nil {
			return nil, errors.Wrapf(err, "%v: failed to write SAM header", path)
		}
	case BAM:
		if w.bam, err = bam.NewWriter(out, header, parallelism); err != nil {
			return nil, errors.Wrapf(err, "%v: failed to write BAM header", path)
		}
	default:
		return nil, errors.Errorf("%v: cannot write %v output", path, t)
	}
	return w, nil
}

// Write appends r to the output. The record is not modified.
func (w *Writer) Write(r *sam.Record) error {
	var err error
	if w.bam != nil {
		err = w.bam.Write(r)
	} else {
		err = w.sam.Write(r)
	}
	if err != nil {
		return errors.Wrapf(err, "%v: failed to write record %s", w.path, r.Name)
	}
	w.n++
	return nil
}

// Count returns the number of records written so far.
func (w *Writer) Count() int64 { return w.n }

// Close flushes the output and closes the file.
func (w *Writer) Close(ctx context.Context) error {
	var err error
	if w.bam != nil {
		if e := w.bam.Close(); e != nil {
			err = errors.Wrapf(e, "%v: close", w.path)
		}
		w.bam = nil
	}
	if w.out != nil {
		if e := w.out.Close(ctx); e != nil && err == nil {
			err = errors.Wrapf(e, "%v: close", w.path)
		}
		w.out = nil
	}
	return err
}

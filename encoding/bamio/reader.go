package bamio

import (
	"context"
	"io"
	"os"

	"github.com/grailbio/base/file"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// recordReader is implemented by both sam.Reader and bam.Reader.
type recordReader interface {
	Header() *sam.Header
	Read() (*sam.Record, error)
}

// Reader yields the records of one file in file order. Thread compatible.
type Reader struct {
	path string
	in   file.File
	gz   *gzip.Reader
	bam  *bam.Reader
	rr   recordReader
	n    int64
}

// NewReader opens path for reading. The format is taken from typ, or guessed
// from the path when typ is Unknown, falling back to BAM. Parallelism is the
// number of BGZF decompression goroutines used for BAM input.
func NewReader(ctx context.Context, path string, typ FileType, parallelism int) (_ *Reader, err error) {
	r := &Reader{path: path}
	defer func() {
		if err != nil {
			r.Close(ctx) // nolint: errcheck
		}
	}()
	var in io.Reader
	if path == "-" {
		in = os.Stdin
	} else {
		if r.in, err = file.Open(ctx, path); err != nil {
			return nil, errors.Wrapf(err, "%v: open", path)
		}
		in = r.in.Reader(ctx)
	}
	if parallelism < 1 {
		parallelism = 1
	}
	switch resolve(path, typ) {
	case SAM:
		if r.rr, err = sam.NewReader(in); err != nil {
			return nil, errors.Wrapf(err, "%v: failed to open SAM", path)
		}
	case SAMGzip:
		if r.gz, err = gzip.NewReader(in); err != nil {
			return nil, errors.Wrapf(err, "%v: failed to open gzip stream", path)
		}
		if r.rr, err = sam.NewReader(r.gz); err != nil {
			return nil, errors.Wrapf(err, "%v: failed to open SAM", path)
		}
	default:
		if r.bam, err = bam.NewReader(in, parallelism); err != nil {
			return nil, errors.Wrapf(err, "%v: failed to open BAM", path)
		}
		r.rr = r.bam
	}
	return r, nil
}

// Header returns the header of the file. The caller must not modify it.
func (r *Reader) Header() *sam.Header {
	return r.rr.Header()
}

// Next returns the next record, or io.EOF once the file is exhausted.
func (r *Reader) Next() (*sam.Record, error) {
	rec, err := r.rr.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, errors.Wrapf(err, "%v: failed to read record %d", r.path, r.n)
	}
	r.n++
	return rec, nil
}

// Count returns the number of records returned so far.
func (r *Reader) Count() int64 { return r.n }

// Close releases the underlying file.
func (r *Reader) Close(ctx context.Context) error {
	var err error
	if r.bam != nil {
		if e := r.bam.Close(); e != nil {
			err = errors.Wrapf(e, "%v: close", r.path)
		}
		r.bam = nil
	}
	if r.gz != nil {
		if e := r.gz.Close(); e != nil && err == nil {
			err = errors.Wrapf(e, "%v: close", r.path)
		}
		r.gz = nil
	}
	if r.in != nil {
		if e := r.in.Close(ctx); e != nil && err == nil {
			err = errors.Wrapf(e, "%v: close", r.path)
		}
		r.in = nil
	}
	return err
}

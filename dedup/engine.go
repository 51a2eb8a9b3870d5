package dedup

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash"
	"io"

	"blainsmith.com/go/seahash"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/hts/sam"
	"github.com/sciseq/scidedup/readname"
	"github.com/sciseq/scidedup/umi"
)

// RecordSource yields records in file order. Next returns io.EOF once the
// source is exhausted.
type RecordSource interface {
	Next() (*sam.Record, error)
}

// RecordSink receives accepted records in the order they are accepted.
type RecordSink interface {
	Write(r *sam.Record) error
}

// Decision is the outcome of processing one record.
type Decision uint8

const (
	// Accepted records are forwarded to the sink.
	Accepted Decision = iota
	// ExactDuplicate records share cell and UMI with an accepted record at
	// the same position.
	ExactDuplicate
	// MismatchDuplicate records are one substitution away from an accepted
	// UMI of the same cell at the same position.
	MismatchDuplicate
	// Skipped records are dropped before identity checks (see
	// EngineOpts.SkipUnmapped).
	Skipped
)

func (d Decision) String() string {
	switch d {
	case Accepted:
		return "accepted"
	case ExactDuplicate:
		return "exact-duplicate"
	case MismatchDuplicate:
		return "mismatch-duplicate"
	case Skipped:
		return "skipped"
	}
	return "invalid"
}

// position is either unset or a concrete coordinate. Coordinate 0 is a
// regular position.
type position struct {
	valid bool
	pos   int
}

func (p position) at(pos int) bool { return p.valid && p.pos == pos }

// EngineOpts configures an Engine.
type EngineOpts struct {
	// NewSeen creates the per-position set. Nil means a NeighborhoodSet with
	// one-substitution expansion.
	NewSeen func() Seen
	// Corrector, if set, snaps each UMI to a known UMI before keying.
	Corrector *umi.SnapCorrector
	// SkipUnmapped drops records flagged unmapped without touching state.
	SkipUnmapped bool
}

// Engine is the position-scoped UMI deduplicator. It makes one decision per
// record in input order and assumes coordinate-sorted input. Thread
// compatible.
type Engine struct {
	opts    EngineOpts
	current position
	seen    Seen
	digest  hash.Hash64
	metrics Metrics
	buf     [8]byte
}

// NewEngine creates an engine in the initial state: no position, empty set.
func NewEngine(opts EngineOpts) *Engine {
	newSeen := opts.NewSeen
	if newSeen == nil {
		newSeen = func() Seen { return NewNeighborhoodSet(OneSubstitution) }
	}
	return &Engine{
		opts:   opts,
		seen:   newSeen(),
		digest: seahash.New(),
	}
}

// Process decides whether r is a duplicate and updates the seen state. It
// never modifies r. A read name that does not carry cell and UMI fields is
// returned as an errors.Invalid error and leaves the state untouched.
func (e *Engine) Process(r *sam.Record) (Decision, error) {
	e.metrics.RecordsExamined++
	if e.opts.SkipUnmapped && r.Flags&sam.Unmapped != 0 {
		e.metrics.Skipped++
		return Skipped, nil
	}
	key, err := readname.Parse(r.Name)
	if err != nil {
		return 0, errors.E(err, fmt.Sprintf("record %d", e.metrics.RecordsExamined-1))
	}
	if !e.current.at(r.Pos) {
		e.enterPosition(r.Pos)
	}
	if e.opts.Corrector != nil {
		if corrected, _, ok := e.opts.Corrector.CorrectUMI(key.UMI); ok {
			key.UMI = corrected
			e.metrics.CorrectedUMIs++
		}
	}
	switch e.seen.Match(key) {
	case ExactMatch:
		e.metrics.ExactDuplicates++
		if log.At(log.Debug) {
			log.Debug.Printf("%s at %d: duplicate of %v", r.Name, r.Pos, key)
		}
		return ExactDuplicate, nil
	case NeighborMatch:
		e.metrics.MismatchDuplicates++
		if log.At(log.Debug) {
			log.Debug.Printf("%s at %d: within one substitution of an accepted umi for %v", r.Name, r.Pos, key)
		}
		return MismatchDuplicate, nil
	}
	e.seen.InsertWithNeighborhood(key)
	e.accept(r)
	return Accepted, nil
}

func (e *Engine) enterPosition(pos int) {
	e.closePosition()
	e.seen.Reset()
	e.current = position{valid: true, pos: pos}
	e.metrics.Positions++
}

func (e *Engine) closePosition() {
	if n := e.seen.Len(); n > e.metrics.MaxSeenAtPosition {
		e.metrics.MaxSeenAtPosition = n
	}
}

func (e *Engine) accept(r *sam.Record) {
	e.metrics.Accepted++
	binary.LittleEndian.PutUint64(e.buf[:], uint64(r.Pos))
	e.digest.Write(e.buf[:])
	e.digest.Write([]byte(r.Name))
	e.digest.Write([]byte{0})
	e.metrics.Digest = e.digest.Sum64()
}

// Metrics returns the counters accumulated so far.
func (e *Engine) Metrics() Metrics {
	m := e.metrics
	if n := e.seen.Len(); n > m.MaxSeenAtPosition {
		m.MaxSeenAtPosition = n
	}
	return m
}

// Run pulls every record from src, forwarding accepted ones to sink. It
// stops at the first error from src, sink or Process, or when ctx is done.
func (e *Engine) Run(ctx context.Context, src RecordSource, sink RecordSink) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		r, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		d, err := e.Process(r)
		if err != nil {
			return err
		}
		if d != Accepted {
			continue
		}
		if err := sink.Write(r); err != nil {
			return err
		}
	}
	e.closePosition()
	e.seen.Reset()
	e.current = position{}
	return nil
}

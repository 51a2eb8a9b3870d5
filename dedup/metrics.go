package dedup

import (
	"context"
	"fmt"
	"strconv"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
)

// Metrics contains counters from one deduplication run.
type Metrics struct {
	// RecordsExamined is the number of records pulled from the source.
	RecordsExamined int64
	// Skipped is the number of records dropped before identity checks.
	Skipped int64
	// Accepted is the number of records written to the sink.
	Accepted int64
	// ExactDuplicates is the number of records whose cell and UMI matched an
	// accepted record at the same position.
	ExactDuplicates int64
	// MismatchDuplicates is the number of records whose UMI was one
	// substitution away from an accepted UMI of the same cell and position.
	MismatchDuplicates int64
	// CorrectedUMIs is the number of UMIs changed by snap correction.
	CorrectedUMIs int64
	// Positions is the number of position runs in the input.
	Positions int64
	// MaxSeenAtPosition is the largest seen set held at one position,
	// neighborhood entries included.
	MaxSeenAtPosition int
	// Digest is a seahash chained over the position and name of each
	// accepted record, in output order.
	Digest uint64
}

// Duplicates returns the number of rejected records.
func (m *Metrics) Duplicates() int64 {
	return m.ExactDuplicates + m.MismatchDuplicates
}

// PercentDuplication returns the share of examined, non-skipped records
// rejected as duplicates.
func (m *Metrics) PercentDuplication() float64 {
	n := m.RecordsExamined - m.Skipped
	if n <= 0 {
		return 0
	}
	return 100 * float64(m.Duplicates()) / float64(n)
}

// Add adds the counters in other to m. Digest and MaxSeenAtPosition are not
// additive; the larger MaxSeenAtPosition is kept and Digest is left as is.
func (m *Metrics) Add(other *Metrics) {
	m.RecordsExamined += other.RecordsExamined
	m.Skipped += other.Skipped
	m.Accepted += other.Accepted
	m.ExactDuplicates += other.ExactDuplicates
	m.MismatchDuplicates += other.MismatchDuplicates
	m.CorrectedUMIs += other.CorrectedUMIs
	m.Positions += other.Positions
	if other.MaxSeenAtPosition > m.MaxSeenAtPosition {
		m.MaxSeenAtPosition = other.MaxSeenAtPosition
	}
}

// String returns a one line summary.
func (m *Metrics) String() string {
	return fmt.Sprintf("examined %d, accepted %d, exact duplicates %d, 1-mismatch duplicates %d, skipped %d, positions %d, %.4f%% duplication, digest %016x",
		m.RecordsExamined, m.Accepted, m.ExactDuplicates, m.MismatchDuplicates, m.Skipped, m.Positions,
		m.PercentDuplication(), m.Digest)
}

var metricsHeader = []string{
	"RECORDS_EXAMINED", "RECORDS_ACCEPTED", "EXACT_DUPLICATES", "MISMATCH_DUPLICATES",
	"SKIPPED", "CORRECTED_UMIS", "POSITIONS", "MAX_SEEN_AT_POSITION", "PERCENT_DUPLICATION", "DIGEST",
}

func writeMetrics(ctx context.Context, path string, m *Metrics) (err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return errors.E(err, "couldn't create metrics file:", path)
	}
	defer file.CloseAndReport(ctx, out, &err)

	w := tsv.NewWriter(out.Writer(ctx))
	w.WriteString("# bio-scidedup")
	if err = w.EndLine(); err != nil {
		return errors.E(err, "error writing to metrics file:", path)
	}
	for _, col := range metricsHeader {
		w.WriteString(col)
	}
	if err = w.EndLine(); err != nil {
		return errors.E(err, "error writing to metrics file:", path)
	}
	w.WriteInt64(m.RecordsExamined)
	w.WriteInt64(m.Accepted)
	w.WriteInt64(m.ExactDuplicates)
	w.WriteInt64(m.MismatchDuplicates)
	w.WriteInt64(m.Skipped)
	w.WriteInt64(m.CorrectedUMIs)
	w.WriteInt64(m.Positions)
	w.WriteInt64(int64(m.MaxSeenAtPosition))
	w.WriteString(strconv.FormatFloat(m.PercentDuplication(), 'f', 6, 64))
	w.WriteString(fmt.Sprintf("%016x", m.Digest))
	if err = w.EndLine(); err != nil {
		return errors.E(err, "error writing to metrics file:", path)
	}
	if err = w.Flush(); err != nil {
		return errors.E(err, "error writing to metrics file:", path)
	}
	return nil
}

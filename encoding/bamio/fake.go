package bamio

import (
	"io"

	"github.com/grailbio/hts/sam"
)

// FakeSource is only for unittests. It yields the given records in order.
type FakeSource struct {
	header *sam.Header
	recs   []*sam.Record
}

// NewFakeSource creates a source that returns header from Header() and recs,
// in order, from Next().
func NewFakeSource(header *sam.Header, recs []*sam.Record) *FakeSource {
	return &FakeSource{header: header, recs: recs}
}

// Header returns the header passed to the constructor.
func (s *FakeSource) Header() *sam.Header { return s.header }

// Next returns a copy of the next record so that the code under test cannot
// alter the original test input data.
func (s *FakeSource) Next() (*sam.Record, error) {
	if len(s.recs) == 0 {
		return nil, io.EOF
	}
	rec := s.recs[0]
	s.recs = s.recs[1:]
	copy := sam.GetFromFreePool()
	*copy = *rec
	return copy, nil
}

// FakeSink collects written records in memory.
type FakeSink struct {
	Records []*sam.Record
	// Err, when set, is returned by every Write.
	Err error
}

// Write implements the record sink contract.
func (s *FakeSink) Write(r *sam.Record) error {
	if s.Err != nil {
		return s.Err
	}
	s.Records = append(s.Records, r)
	return nil
}

// Names returns the names of the collected records, in write order.
func (s *FakeSink) Names() []string {
	names := make([]string, len(s.Records))
	for i, r := range s.Records {
		names[i] = r.Name
	}
	return names
}

// ErrorSource yields a fixed list of records and then fails.
type ErrorSource struct {
	recs []*sam.Record
	err  error
}

// Next returns the remaining records, then the configured error.
func (s *ErrorSource) Next() (*sam.Record, error) {
	if len(s.recs) > 0 {
		r := s.recs[0]
		s.recs = s.recs[1:]
		return r, nil
	}
	return nil, s.err
}

// NewErrorSource creates a source that yields recs and then fails with err
// instead of reaching the end of the stream.
func NewErrorSource(err error, recs ...*sam.Record) *ErrorSource {
	return &ErrorSource{recs: recs, err: err}
}

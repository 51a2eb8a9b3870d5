package dedup

import (
	"context"
	"fmt"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/hts/sam"
	"github.com/sciseq/scidedup/encoding/bamio"
	"github.com/sciseq/scidedup/umi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenario(t *testing.T) {
	first := NewSciRecord("r1", 1000, "AAAA")
	neighbor := NewSciRecord("r2", 1000, "AAAT")
	distinct := NewSciRecord("r3", 1000, "TTTT")
	nextPos := NewSciRecord("r4", 1001, "AAAA")

	accepted, m := runEngine(t, EngineOpts{}, []*sam.Record{first, neighbor, distinct, nextPos})
	assert.Equal(t, names(first, distinct, nextPos), accepted)
	assert.EqualValues(t, 4, m.RecordsExamined)
	assert.EqualValues(t, 3, m.Accepted)
	assert.EqualValues(t, 0, m.ExactDuplicates)
	assert.EqualValues(t, 1, m.MismatchDuplicates)
	assert.EqualValues(t, 2, m.Positions)
	assert.Equal(t, 2*(4*4+1), m.MaxSeenAtPosition)
}

func TestProcessDecisions(t *testing.T) {
	tests := []struct {
		name string
		recs []*sam.Record
		want []Decision
	}{
		{
			"exact duplicate",
			[]*sam.Record{NewSciRecord("a", 5, "ACGT"), NewSciRecord("b", 5, "ACGT")},
			[]Decision{Accepted, ExactDuplicate},
		},
		{
			"neighbor in every position",
			[]*sam.Record{
				NewSciRecord("a", 5, "ACGT"),
				NewSciRecord("b", 5, "TCGT"),
				NewSciRecord("c", 5, "AGGT"),
				NewSciRecord("d", 5, "ACCT"),
				NewSciRecord("e", 5, "ACGN"),
			},
			[]Decision{Accepted, MismatchDuplicate, MismatchDuplicate, MismatchDuplicate, MismatchDuplicate},
		},
		{
			"two substitutions away",
			[]*sam.Record{NewSciRecord("a", 5, "ACGT"), NewSciRecord("b", 5, "TTGT")},
			[]Decision{Accepted, Accepted},
		},
		{
			"matching is not transitive",
			[]*sam.Record{
				NewSciRecord("a", 5, "AAAA"),
				NewSciRecord("b", 5, "AAAT"),
				NewSciRecord("c", 5, "AATT"),
				NewSciRecord("d", 5, "AGTT"),
			},
			[]Decision{Accepted, MismatchDuplicate, Accepted, MismatchDuplicate},
		},
		{
			"different cells",
			[]*sam.Record{
				NewRecord(sciName("a", "X", "Y", "Z", "AAAA"), chr1, 5, 0),
				NewRecord(sciName("b", "X", "Y", "W", "AAAA"), chr1, 5, 0),
				NewRecord(sciName("c", "X", "Y", "W", "AAAC"), chr1, 5, 0),
			},
			[]Decision{Accepted, Accepted, MismatchDuplicate},
		},
		{
			"position scoping",
			[]*sam.Record{NewSciRecord("a", 5, "AAAA"), NewSciRecord("b", 6, "AAAA"), NewSciRecord("c", 6, "AAAA")},
			[]Decision{Accepted, Accepted, ExactDuplicate},
		},
		{
			"no memory across an interleaved position",
			[]*sam.Record{NewSciRecord("a", 5, "AAAA"), NewSciRecord("b", 6, "CCCC"), NewSciRecord("c", 5, "AAAA")},
			[]Decision{Accepted, Accepted, Accepted},
		},
		{
			"position zero is a real position",
			[]*sam.Record{NewSciRecord("a", 0, "AAAA"), NewSciRecord("b", 0, "AAAA"), NewSciRecord("c", 0, "AAAG")},
			[]Decision{Accepted, ExactDuplicate, MismatchDuplicate},
		},
		{
			"reference is ignored",
			[]*sam.Record{
				NewRecord(sciName("a", "X", "Y", "Z", "AAAA"), chr1, 7, 0),
				NewRecord(sciName("b", "X", "Y", "Z", "AAAA"), chr2, 7, 0),
			},
			[]Decision{Accepted, ExactDuplicate},
		},
		{
			"unmapped records are processed by default",
			[]*sam.Record{
				NewRecord(sciName("a", "X", "Y", "Z", "AAAA"), nil, -1, sam.Unmapped),
				NewRecord(sciName("b", "X", "Y", "Z", "AAAA"), nil, -1, sam.Unmapped),
			},
			[]Decision{Accepted, ExactDuplicate},
		},
	}
	for _, test := range tests {
		e := NewEngine(EngineOpts{})
		for i, r := range test.recs {
			d, err := e.Process(r)
			require.NoError(t, err, test.name)
			assert.Equal(t, test.want[i], d, "%s: record %d (%s)", test.name, i, r.Name)
		}
	}
}

func TestProcessDoesNotModifyRecord(t *testing.T) {
	r := NewSciRecord("a", 42, "ACGT")
	before := *r
	e := NewEngine(EngineOpts{})
	_, err := e.Process(r)
	require.NoError(t, err)
	assert.Equal(t, before, *r)
}

func TestSkipUnmapped(t *testing.T) {
	mapped := NewSciRecord("a", 3, "AAAA")
	unmapped := NewRecord(sciName("u", "X", "Y", "Z", "AAAA"), chr1, 3, sam.Unmapped)
	dup := NewSciRecord("b", 3, "AAAA")

	accepted, m := runEngine(t, EngineOpts{SkipUnmapped: true}, []*sam.Record{mapped, unmapped, dup})
	assert.Equal(t, names(mapped), accepted)
	assert.EqualValues(t, 1, m.Skipped)
	assert.EqualValues(t, 1, m.ExactDuplicates)
	assert.EqualValues(t, 1, m.Positions)
}

func TestSnapCorrection(t *testing.T) {
	c, err := umi.NewSnapCorrector([]byte("AAAA\nCCCC\nGGGG\nTTTT"))
	require.NoError(t, err)
	recs := []*sam.Record{
		NewSciRecord("a", 1, "AANN"), // snaps to AAAA
		NewSciRecord("b", 1, "AAAA"),
		NewSciRecord("c", 1, "CCCC"),
	}
	accepted, m := runEngine(t, EngineOpts{Corrector: c}, recs)
	assert.Equal(t, names(recs[0], recs[2]), accepted)
	assert.EqualValues(t, 1, m.CorrectedUMIs)
	assert.EqualValues(t, 1, m.ExactDuplicates)

	// Without correction AANN and AAAA are two substitutions apart.
	accepted, _ = runEngine(t, EngineOpts{}, recs)
	assert.Equal(t, names(recs...), accepted)
}

func TestCustomSeen(t *testing.T) {
	recs := []*sam.Record{NewSciRecord("a", 1, "AAAA"), NewSciRecord("b", 1, "AAAT")}
	accepted, _ := runEngine(t, EngineOpts{NewSeen: func() Seen { return NewNeighborhoodSet(ExactOnly) }}, recs)
	assert.Equal(t, names(recs...), accepted)
}

func TestMalformedName(t *testing.T) {
	good := NewSciRecord("a", 1, "AAAA")
	bad := NewRecord("a|b|c|d", chr1, 1, 0)
	after := NewSciRecord("c", 1, "CCCC")

	e := NewEngine(EngineOpts{})
	sink := &bamio.FakeSink{}
	err := e.Run(vcontext.Background(), bamio.NewFakeSource(header, []*sam.Record{good, bad, after}), sink)
	require.Error(t, err)
	assert.True(t, errors.Is(errors.Invalid, err), "%v", err)
	assert.Contains(t, err.Error(), "a|b|c|d")
	assert.Equal(t, names(good), sink.Names())
}

func TestSourceAndSinkErrors(t *testing.T) {
	boom := fmt.Errorf("boom")

	e := NewEngine(EngineOpts{})
	sink := &bamio.FakeSink{}
	err := e.Run(vcontext.Background(), bamio.NewErrorSource(boom, NewSciRecord("a", 1, "AAAA")), sink)
	assert.Equal(t, boom, err)
	assert.Equal(t, []string{NewSciRecord("a", 1, "AAAA").Name}, sink.Names())

	e = NewEngine(EngineOpts{})
	err = e.Run(vcontext.Background(), bamio.NewFakeSource(header, []*sam.Record{NewSciRecord("a", 1, "AAAA")}), &bamio.FakeSink{Err: boom})
	assert.Equal(t, boom, err)
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(vcontext.Background())
	cancel()
	e := NewEngine(EngineOpts{})
	err := e.Run(ctx, bamio.NewFakeSource(header, []*sam.Record{NewSciRecord("a", 1, "AAAA")}), &bamio.FakeSink{})
	assert.Equal(t, context.Canceled, err)
}

func TestDeterminism(t *testing.T) {
	umis := []string{"AAAA", "AAAT", "CCCC", "CCCA", "GGGG", "AAAA", "TTTT", "GGGC", "ACGT"}
	build := func() []*sam.Record {
		var recs []*sam.Record
		for pos := 0; pos < 20; pos++ {
			for i, u := range umis {
				cell := []string{"A", "B"}[(pos+i)%2]
				recs = append(recs, NewRecord(sciName("r", cell, "Y", "Z", u), chr1, pos/3, 0))
			}
		}
		return recs
	}
	a, ma := runEngine(t, EngineOpts{}, build())
	b, mb := runEngine(t, EngineOpts{}, build())
	assert.Equal(t, a, b)
	assert.Equal(t, ma, mb)
	assert.NotZero(t, ma.Digest)

	// The digest depends on which records were accepted.
	_, mc := runEngine(t, EngineOpts{NewSeen: func() Seen { return NewNeighborhoodSet(ExactOnly) }}, build())
	assert.NotEqual(t, ma.Digest, mc.Digest)
}

func TestOrderPreserved(t *testing.T) {
	recs := []*sam.Record{
		NewSciRecord("r0", 10, "GGGG"),
		NewSciRecord("r1", 10, "AAAA"),
		NewSciRecord("r2", 10, "GGGA"),
		NewSciRecord("r3", 10, "CCCC"),
		NewSciRecord("r4", 11, "CCCC"),
		NewSciRecord("r5", 11, "GGGG"),
	}
	accepted, _ := runEngine(t, EngineOpts{}, recs)
	assert.Equal(t, names(recs[0], recs[1], recs[3], recs[4], recs[5]), accepted)
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "accepted", Accepted.String())
	assert.Equal(t, "exact-duplicate", ExactDuplicate.String())
	assert.Equal(t, "mismatch-duplicate", MismatchDuplicate.String())
	assert.Equal(t, "skipped", Skipped.String())
}

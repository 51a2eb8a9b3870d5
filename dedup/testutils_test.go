package dedup

import (
	"fmt"
	"io"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/hts/sam"
	"github.com/sciseq/scidedup/encoding/bamio"
	"github.com/stretchr/testify/require"
)

var (
	chr1, _   = sam.NewReference("chr1", "", "", 100000, nil, nil)
	chr2, _   = sam.NewReference("chr2", "", "", 200000, nil, nil)
	header, _ = sam.NewHeader(nil, []*sam.Reference{chr1, chr2})

	cigar10M = []sam.CigarOp{sam.NewCigarOp(sam.CigarMatch, 10)}
)

// sciName builds a read name in the sciRNA layout with cell components
// c0, c1, c2 and the given UMI.
func sciName(id, c0, c1, c2, umi string) string {
	return fmt.Sprintf("%s|sample|%s|%s|%s|%s", id, c0, c1, c2, umi)
}

func NewRecord(name string, ref *sam.Reference, pos int, flags sam.Flags) *sam.Record {
	r := sam.GetFromFreePool()
	r.Name = name
	r.Ref = ref
	r.Pos = pos
	r.MateRef = nil
	r.MatePos = -1
	r.Flags = flags
	r.MapQ = 60
	r.TempLen = 0
	r.Cigar = cigar10M
	r.Seq = sam.NewSeq([]byte("ACGTACGTAC"))
	r.Qual = []byte{30, 30, 30, 30, 30, 30, 30, 30, 30, 30}
	r.AuxFields = nil
	return r
}

// NewSciRecord creates a mapped record on chr1 for cell X_Y_Z.
func NewSciRecord(id string, pos int, umi string) *sam.Record {
	return NewRecord(sciName(id, "X", "Y", "Z", umi), chr1, pos, 0)
}

// runEngine runs a fresh engine over recs and returns the accepted names.
func runEngine(t *testing.T, opts EngineOpts, recs []*sam.Record) ([]string, Metrics) {
	e := NewEngine(opts)
	sink := &bamio.FakeSink{}
	require.NoError(t, e.Run(vcontext.Background(), bamio.NewFakeSource(header, recs), sink))
	return sink.Names(), e.Metrics()
}

func names(recs ...*sam.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Name
	}
	return out
}

// readNames returns the names of all records in path, in order.
func readNames(t *testing.T, path string) []string {
	ctx := vcontext.Background()
	r, err := bamio.NewReader(ctx, path, bamio.Unknown, 1)
	require.NoError(t, err)
	defer func() { require.NoError(t, r.Close(ctx)) }()
	var out []string
	for {
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		out = append(out, rec.Name)
	}
	return out
}

func writeRecords(t *testing.T, path string, recs []*sam.Record) {
	ctx := vcontext.Background()
	w, err := bamio.NewWriter(ctx, path, header, bamio.Unknown, 1)
	require.NoError(t, err)
	for _, r := range recs {
		require.NoError(t, w.Write(r))
	}
	require.NoError(t, w.Close(ctx))
}

package dedup

import (
	"github.com/sciseq/scidedup/readname"
	"github.com/sciseq/scidedup/umi"
)

// Match describes how a key relates to the contents of a Seen set.
type Match uint8

const (
	// NoMatch means the key has not been seen.
	NoMatch Match = iota
	// ExactMatch means the key was inserted as an accepted identity.
	ExactMatch
	// NeighborMatch means the key is in the neighborhood of an accepted
	// identity, but was not itself accepted.
	NeighborMatch
)

func (m Match) String() string {
	switch m {
	case NoMatch:
		return "none"
	case ExactMatch:
		return "exact"
	case NeighborMatch:
		return "neighbor"
	}
	return "invalid"
}

// Seen is the set of identities observed at one genomic position.
type Seen interface {
	// Contains reports whether k, or a neighbor inserted on behalf of an
	// earlier key, is in the set.
	Contains(k readname.Key) bool
	// Match is like Contains but also tells exact hits from neighborhood hits.
	Match(k readname.Key) Match
	// InsertWithNeighborhood inserts k and every key in its UMI neighborhood
	// for the same cell.
	InsertWithNeighborhood(k readname.Key)
	// Len returns the number of keys held, neighbors included.
	Len() int
	// Reset discards every key.
	Reset()
}

// Expander appends the neighborhood of umi to dst and returns it.
type Expander func(dst []string, umi string) []string

// OneSubstitution expands a UMI into all strings one substitution away over
// umi.Bases.
func OneSubstitution(dst []string, u string) []string {
	return umi.AppendMismatches(dst, u, umi.Bases)
}

// ExactOnly expands nothing, so only identical UMIs collide.
func ExactOnly(dst []string, u string) []string { return dst }

// NeighborhoodSet is a map backed Seen whose neighborhood policy is given by
// an Expander. Thread compatible.
type NeighborhoodSet struct {
	expand  Expander
	keys    map[readname.Key]Match
	scratch []string
}

// NewNeighborhoodSet creates an empty set. A nil expand means
// OneSubstitution.
func NewNeighborhoodSet(expand Expander) *NeighborhoodSet {
	if expand == nil {
		expand = OneSubstitution
	}
	return &NeighborhoodSet{
		expand: expand,
		keys:   make(map[readname.Key]Match),
	}
}

// Contains implements Seen.
func (s *NeighborhoodSet) Contains(k readname.Key) bool {
	_, ok := s.keys[k]
	return ok
}

// Match implements Seen.
func (s *NeighborhoodSet) Match(k readname.Key) Match {
	return s.keys[k]
}

// InsertWithNeighborhood implements Seen. An exact entry is never demoted to
// a neighbor entry.
func (s *NeighborhoodSet) InsertWithNeighborhood(k readname.Key) {
	s.keys[k] = ExactMatch
	s.scratch = s.expand(s.scratch[:0], k.UMI)
	for _, m := range s.scratch {
		nk := k.WithUMI(m)
		if _, ok := s.keys[nk]; !ok {
			s.keys[nk] = NeighborMatch
		}
	}
}

// Len implements Seen.
func (s *NeighborhoodSet) Len() int { return len(s.keys) }

// Reset implements Seen by replacing the backing map.
func (s *NeighborhoodSet) Reset() {
	if len(s.keys) > 0 {
		s.keys = make(map[readname.Key]Match)
	}
}

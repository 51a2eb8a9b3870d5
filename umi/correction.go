package umi

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/antzucaro/matchr"
	"github.com/grailbio/base/log"
)

var (
	alphabetMap = map[byte]bool{
		'A': true,
		'C': true,
		'G': true,
		'T': true,
	}

	alphabetWithN    = []byte{'A', 'C', 'G', 'T', 'N'}
	alphabetWithNMap = map[byte]bool{
		'A': true,
		'C': true,
		'G': true,
		'T': true,
		'N': true,
	}
)

type snapCorrectorEntry struct {
	knownUMI string
	edits    int
}

// SnapCorrector implements "snap" correction of UMIs. A umi U is snappable if
// there is a known umi U1 that is closer to U than all other known umis, in
// terms of Levenshtein edit distance.
type SnapCorrector struct {
	knownUMIs []string
	k         int

	// correctionTable maps every snappable k-mer over ACGTN to the known UMI
	// it snaps to.
	correctionTable map[string]snapCorrectorEntry
}

// NewSnapCorrector builds a corrector from a newline separated list of known
// UMIs. All UMIs must have the same length and consist of ACGT. Blank lines
// are ignored.
func NewSnapCorrector(knownUMIs []byte) (*SnapCorrector, error) {
	log.Debug.Printf("building snappable UMI correction table")
	scanner := bufio.NewScanner(bytes.NewReader(knownUMIs))
	var known []string
	k := -1
	for scanner.Scan() {
		umi := strings.ToUpper(strings.TrimSpace(scanner.Text()))
		if umi == "" {
			continue
		}
		if k < 0 {
			k = len(umi)
		}
		if len(umi) != k {
			return nil, fmt.Errorf("umi %s has length %d, other umis have length %d", umi, len(umi), k)
		}
		if err := validateUMI(umi, false); err != nil {
			return nil, err
		}
		known = append(known, umi)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if k < 0 {
		return nil, fmt.Errorf("no umis in input")
	}

	correctionTable := map[string]snapCorrectorEntry{}
	for _, umi := range allKmers(k, alphabetWithN) {
		best, bestCost, ties := "", k+1, 0
		for _, knownUMI := range known {
			cost := matchr.Levenshtein(umi, knownUMI)
			switch {
			case cost < bestCost:
				best, bestCost, ties = knownUMI, cost, 1
			case cost == bestCost:
				ties++
			}
		}
		if ties == 1 {
			correctionTable[umi] = snapCorrectorEntry{best, bestCost}
		}
	}
	log.Debug.Printf("built UMI correction table: %d known, %d snappable", len(known), len(correctionTable))

	return &SnapCorrector{
		knownUMIs:       known,
		k:               k,
		correctionTable: correctionTable,
	}, nil
}

// Len returns the length of the known UMIs.
func (c *SnapCorrector) Len() int { return c.k }

// CorrectUMI returns a corrected umi, the number of edits to the corrected
// umi, and true if there is exactly one known UMI closest to umi and it
// differs from umi. A umi that cannot be snapped, or that contains bases
// outside ACGTN, is returned unchanged with edits -1.
func (c *SnapCorrector) CorrectUMI(umi string) (correctedUMI string, edits int, corrected bool) {
	umi = strings.ToUpper(umi)
	if validateUMI(umi, true) != nil {
		return umi, -1, false
	}
	entry, found := c.correctionTable[umi]
	if found {
		return entry.knownUMI, entry.edits, entry.knownUMI != umi
	}
	return umi, -1, false
}

func validateUMI(umi string, allowN bool) error {
	for i := 0; i < len(umi); i++ {
		c := umi[i]
		if (allowN && !alphabetWithNMap[c]) || (!allowN && !alphabetMap[c]) {
			return fmt.Errorf("invalid base %c in umi %v", c, umi)
		}
	}
	return nil
}

// allKmers returns all kmers of length k over the given alphabet.
func allKmers(k int, alphabet []byte) []string {
	kmers := []string{""}
	for i := 0; i < k; i++ {
		next := make([]string, 0, len(kmers)*len(alphabet))
		for _, partial := range kmers {
			for _, c := range alphabet {
				next = append(next, partial+string(c))
			}
		}
		kmers = next
	}
	return kmers
}

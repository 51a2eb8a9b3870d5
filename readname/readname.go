// Package readname extracts cell barcode and UMI identity from sciRNA-seq
// read names.
//
// Upstream demultiplexing encodes the identity of each read in its query
// name as a '|' separated list of fields:
//
//	<name>|<...>|<rt>|<ligation>|<pcr>|<umi>[|...]
//
// Fields 2, 3 and 4 (zero based) are the three cell barcode components and
// are joined with '_' to form the cell barcode. Field 5 is the UMI. Fields
// past index 5 are ignored. The field layout is a contract with the read
// naming step and is not otherwise validated here.
package readname

import (
	"fmt"
	"strings"

	"github.com/grailbio/base/errors"
)

const (
	// Delimiter separates the fields of a read name.
	Delimiter = "|"
	// CellSeparator joins the cell barcode components.
	CellSeparator = "_"

	cellField0 = 2
	umiField   = 5
	minFields  = umiField + 1
)

// Key is the identity of a read: the cell it came from and its UMI.
type Key struct {
	Cell string
	UMI  string
}

// String returns "cell:umi".
func (k Key) String() string {
	return k.Cell + ":" + k.UMI
}

// WithUMI returns a copy of k with the UMI replaced.
func (k Key) WithUMI(umi string) Key {
	return Key{Cell: k.Cell, UMI: umi}
}

// Parse computes the identity key of a read name. It returns an
// errors.Invalid error if the name has fewer than six fields.
func Parse(name string) (Key, error) {
	parts := strings.SplitN(name, Delimiter, minFields+1)
	if len(parts) < minFields {
		return Key{}, errors.E(errors.Invalid, fmt.Sprintf(
			"read name %q has %d fields separated by %q, want at least %d", name, len(parts), Delimiter, minFields))
	}
	cell := strings.Join(parts[cellField0:cellField0+3], CellSeparator)
	return Key{Cell: cell, UMI: parts[umiField]}, nil
}

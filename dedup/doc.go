/*Package dedup removes UMI duplicates from coordinate-sorted sciRNA-seq
  alignments.

  Duplicate Concepts:

  Every read carries its cell barcode and UMI in its read name (see package
  readname). Two reads A and B are duplicates if their
    1) alignment start positions
    2) cell barcodes
  are identical, and their UMIs are identical or differ by a single
  substitution. The reference sequence is not part of the comparison; only
  the start coordinate is.

  Position scoping:

  Input must be sorted by coordinate. The engine keeps a set of the
  (cell, UMI) identities accepted at the current position, and drops the set
  as soon as a record arrives at a different position. Two reads at the same
  position that are separated by a read at another position are therefore
  never compared. Sortedness is not checked.

  Fuzzy matching:

  When a read is accepted, its identity is inserted together with every
  identity obtained by substituting one UMI base with another of A, T, G, C
  or N. A later read is a duplicate if its identity is in the set, so a read
  whose UMI is one substitution away from an accepted UMI is dropped, while a
  read two substitutions away from every accepted UMI is kept. Because only
  accepted UMIs are expanded, matching is not transitive: with AAAA
  accepted, AAAT is dropped, and a later AATT is kept.

  The first read in file order wins. Accepted reads are written in input
  order and are never modified.

  Memory:

  Each accepted read of UMI length L adds up to 4L+1 entries to the set, and
  the set never outlives its position. Memory is bounded by the number of
  distinct identities at the most crowded position, not by the file size.
*/
package dedup

/*
bio-scidedup removes PCR duplicates from coordinate-sorted sciRNA-seq
alignments. Two reads are duplicates when they start at the same position,
carry the same cell barcode, and their UMIs are equal or one substitution
apart. The first read in file order is kept.

Usage:

  bio-scidedup -bam input.bam -output-bam output.bam
  bio-scidedup input.bam output.bam

Cell barcode and UMI are taken from the read name, which must have at least
six '|' separated fields: fields 2, 3 and 4 form the cell barcode and field 5
is the UMI.

For more information, see github.com/sciseq/scidedup/dedup/doc.go
*/
package main

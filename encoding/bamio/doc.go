// Package bamio streams sam.Records out of BAM, SAM or gzipped SAM files and
// writes them back out as BAM or SAM, carrying the input header over to the
// output. Paths are opened through grailbio/base/file, so any registered
// filesystem works; "-" means stdin or stdout.
package bamio

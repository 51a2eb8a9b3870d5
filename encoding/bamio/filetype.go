package bamio

import (
	"strings"

	"v.io/x/lib/vlog"
)

// FileType represents the container format of a read file.
type FileType int

const (
	// Unknown is a sentinel.
	Unknown FileType = iota
	// BAM file
	BAM
	// SAM text file
	SAM
	// SAMGzip is a gzip compressed SAM text file. Only readable.
	SAMGzip
)

// String returns the name accepted by ParseFileType.
func (t FileType) String() string {
	switch t {
	case BAM:
		return "bam"
	case SAM:
		return "sam"
	case SAMGzip:
		return "sam.gz"
	default:
		return "unknown"
	}
}

// ParseFileType parses the file type string. "bam" returns BAM, for example.
// On error, it returns Unknown.
func ParseFileType(name string) FileType {
	switch strings.ToLower(name) {
	case "bam":
		return BAM
	case "sam":
		return SAM
	case "sam.gz", "samgz":
		return SAMGzip
	default:
		return Unknown
	}
}

// GuessFileType returns the file type implied by the pathname suffix, or
// Unknown.
func GuessFileType(path string) FileType {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".bam"):
		return BAM
	case strings.HasSuffix(lower, ".sam.gz"):
		return SAMGzip
	case strings.HasSuffix(lower, ".sam"):
		return SAM
	}
	vlog.VI(1).Infof("%v: could not detect file type from the path.", path)
	return Unknown
}

// resolve picks the format for path: an explicit type wins, then the path
// suffix, then BAM.
func resolve(path string, explicit FileType) FileType {
	if explicit != Unknown {
		return explicit
	}
	if t := GuessFileType(path); t != Unknown {
		return t
	}
	return BAM
}

package umi

// Bases is the substitution alphabet used when expanding a UMI into its
// 1-substitution neighborhood.
var Bases = []byte{'A', 'T', 'G', 'C', 'N'}

// Mismatches returns every string that differs from umi by exactly one
// substitution drawn from Bases. The byte already present at a position is
// skipped, so a UMI over Bases of length L yields 4*L strings. A byte outside
// Bases is not skipped and contributes all five substitutions at its
// position. The result is not deduplicated.
func Mismatches(umi string) []string {
	return AppendMismatches(nil, umi, Bases)
}

// AppendMismatches appends the 1-substitution neighborhood of umi over the
// given alphabet to dst and returns the extended slice.
func AppendMismatches(dst []string, umi string, alphabet []byte) []string {
	if len(umi) == 0 {
		return dst
	}
	buf := []byte(umi)
	for i := range buf {
		orig := buf[i]
		for _, b := range alphabet {
			if b == orig {
				continue
			}
			buf[i] = b
			dst = append(dst, string(buf))
		}
		buf[i] = orig
	}
	return dst
}

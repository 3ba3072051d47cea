package hash

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint renders the xxHash64 of data as 16 lower-case hex digits.
func Fingerprint(data []byte) string {
	s := strconv.FormatUint(xxhash.Sum64(data), 16)
	for len(s) < 16 {
		s = "0" + s
	}
	return s
}

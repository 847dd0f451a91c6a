package prime

import (
	"encoding/binary"
	"fmt"
)

// Count decodes little-endian uint64 words from buf and returns how many of
// them satisfy check. The buffer length must be a multiple of 8.
func Count(buf []byte, check func(uint64) bool) (int64, error) {
	if len(buf)%8 != 0 {
		return 0, fmt.Errorf("segment length %d is not a multiple of 8", len(buf))
	}
	var count int64
	for off := 0; off < len(buf); off += 8 {
		if check(binary.LittleEndian.Uint64(buf[off : off+8])) {
			count++
		}
	}
	return count, nil
}

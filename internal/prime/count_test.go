package prime

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeValues(values ...uint64) []byte {
	buf := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[i*8:], v)
	}
	return buf
}

func TestCount(t *testing.T) {
	buf := encodeValues(2, 3, 4, 5, 9, 91, 97)
	count, err := Count(buf, IsPrimeUint64)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count) // 2, 3, 5, 97
}

func TestCount_Empty(t *testing.T) {
	count, err := Count(nil, IsPrimeUint64)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestCount_MisalignedBuffer(t *testing.T) {
	buf := encodeValues(2, 3)
	_, err := Count(buf[:11], IsPrimeUint64)
	assert.Error(t, err)
}

func TestCount_CustomChecker(t *testing.T) {
	buf := encodeValues(1, 2, 3, 4)
	count, err := Count(buf, func(n uint64) bool { return n%2 == 0 })
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

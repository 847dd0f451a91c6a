package datafile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteValues_ReadAll_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nums.bin")
	values := []uint64{0, 1, 2, 97, 1 << 40, ^uint64(0)}
	require.NoError(t, WriteValues(path, values))

	got, err := ReadAll(path)
	require.NoError(t, err)
	assert.Equal(t, values, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(8*len(values)), info.Size())
}

func TestGenerate_Deterministic(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.bin")
	b := filepath.Join(dir, "b.bin")

	require.NoError(t, Generate(a, 256, 1_000_000, 42))
	require.NoError(t, Generate(b, 256, 1_000_000, 42))

	va, err := ReadAll(a)
	require.NoError(t, err)
	vb, err := ReadAll(b)
	require.NoError(t, err)

	assert.Equal(t, va, vb)
	assert.Len(t, va, 256)
	for _, v := range va {
		assert.Less(t, v, uint64(1_000_000))
	}
}

func TestGenerate_RejectsNonPositiveCount(t *testing.T) {
	assert.Error(t, Generate(filepath.Join(t.TempDir(), "x.bin"), 0, 10, 1))
}

func TestReadAll_MisalignedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.bin")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0644))

	_, err := ReadAll(path)
	assert.ErrorContains(t, err, "multiple of 8")
}

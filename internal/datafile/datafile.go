// Package datafile writes and reads the little-endian uint64 datasets the
// pipeline crunches.
package datafile

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"
	"os"
)

// Generate writes count pseudo-random uint64 values to path. Values are
// drawn below max when max is positive. The same seed reproduces the same
// file.
func Generate(path string, count int64, max uint64, seed int64) error {
	if count <= 0 {
		return fmt.Errorf("count must be positive")
	}
	rng := rand.New(rand.NewSource(seed))
	values := make([]uint64, count)
	for i := range values {
		v := rng.Uint64()
		if max > 0 {
			v %= max
		}
		values[i] = v
	}
	return WriteValues(path, values)
}

// WriteValues writes the given values to path in little-endian order.
func WriteValues(path string, values []uint64) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create data file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	buf := make([]byte, 8)
	for _, v := range values {
		binary.LittleEndian.PutUint64(buf, v)
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("write data file: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush data file: %w", err)
	}
	return nil
}

// ReadAll reads every value from path. The file size must be a multiple
// of 8.
func ReadAll(path string) ([]uint64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat data file: %w", err)
	}
	if info.Size()%8 != 0 {
		return nil, fmt.Errorf("data file size %d is not a multiple of 8", info.Size())
	}

	values := make([]uint64, 0, info.Size()/8)
	r := bufio.NewReader(file)
	buf := make([]byte, 8)
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			if err == io.EOF {
				return values, nil
			}
			return nil, fmt.Errorf("read data file: %w", err)
		}
		values = append(values, binary.LittleEndian.Uint64(buf))
	}
}

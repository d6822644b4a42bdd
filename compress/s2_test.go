package compress

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestS2Backend_Levels(t *testing.T) {
	b, err := NewS2Backend(WithStatsManager(newStatsForTest()))
	require.NoError(t, err)

	data := generateTestData(48<<10, "text")
	sizes := make(map[int]int)
	for level := MinS2Level; level <= MaxS2Level; level++ {
		require.NoError(t, b.SetCompressionLevel(level))

		compressed, err := b.Compress(data)
		require.NoError(t, err)
		sizes[level] = len(compressed)

		decompressed, err := b.Decompress(compressed)
		require.NoError(t, err)
		require.Equal(t, data, decompressed)
	}
	require.LessOrEqual(t, sizes[9], sizes[0])

	require.ErrorIs(t, b.SetCompressionLevel(-1), ErrInvalidConfiguration)
	require.ErrorIs(t, b.SetCompressionLevel(10), ErrInvalidConfiguration)
}

func TestS2Backend_DecompressErrors(t *testing.T) {
	b, err := NewS2Backend(WithStatsManager(newStatsForTest()))
	require.NoError(t, err)

	_, err = b.Decompress([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF})
	require.ErrorIs(t, err, ErrInvalidFrame)

	valid, err := b.Compress(generateTestData(4096, "text"))
	require.NoError(t, err)
	_, err = b.Decompress(valid[:len(valid)/2])
	require.ErrorIs(t, err, ErrCorruptData)
}

func TestS2Backend_RejectsOversizedHeader(t *testing.T) {
	b, err := NewS2Backend(WithStatsManager(newStatsForTest()))
	require.NoError(t, err)

	tests := []struct {
		name string
		size uint64
		body []byte
	}{
		{"beyond block expansion", 1 << 31, []byte{0x00}},
		{"beyond input limit", 1 << 31, bytes.Repeat([]byte{0x00}, 1<<10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := append(binary.AppendUvarint(nil, tt.size), tt.body...)

			var derr error
			allocated := allocatedBytes(func() {
				_, derr = b.Decompress(data)
			})
			require.ErrorIs(t, derr, ErrInvalidFrame)
			require.Less(t, allocated, uint64(1<<20))
		})
	}

	t.Run("highly compressible accepted", func(t *testing.T) {
		zeros := make([]byte, 1<<20)
		compressed, err := b.Compress(zeros)
		require.NoError(t, err)

		out, err := b.Decompress(compressed)
		require.NoError(t, err)
		require.Equal(t, zeros, out)
	})
}

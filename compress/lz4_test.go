package compress

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLZ4Backend_Levels(t *testing.T) {
	b, err := NewLZ4Backend(WithStatsManager(newStatsForTest()))
	require.NoError(t, err)
	require.Equal(t, DefaultLevel, b.CompressionLevel())

	data := generateTestData(64<<10, "text")
	for level := MinLZ4Level; level <= MaxLZ4Level; level++ {
		require.NoError(t, b.SetCompressionLevel(level))

		compressed, err := b.Compress(data)
		require.NoError(t, err)
		require.Equal(t, lz4ModeBlock, compressed[0])
		require.Less(t, len(compressed), len(data))

		decompressed, err := b.Decompress(compressed)
		require.NoError(t, err)
		require.Equal(t, data, decompressed)
	}

	require.ErrorIs(t, b.SetCompressionLevel(-1), ErrInvalidConfiguration)
	require.ErrorIs(t, b.SetCompressionLevel(10), ErrInvalidConfiguration)
	require.ErrorIs(t, b.SetOptions(Options{Level: 12}), ErrInvalidConfiguration)
	require.Equal(t, MaxLZ4Level, b.CompressionLevel())
}

func TestLZ4Backend_StoresIncompressible(t *testing.T) {
	b, err := NewLZ4Backend(WithStatsManager(newStatsForTest()))
	require.NoError(t, err)

	data := []byte{0x01, 0x7F, 0x33}
	compressed, err := b.Compress(data)
	require.NoError(t, err)
	require.Equal(t, []byte{lz4ModeStored, 0x03, 0x01, 0x7F, 0x33}, compressed)

	decompressed, err := b.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, decompressed)
}

func TestLZ4Backend_DecompressErrors(t *testing.T) {
	b, err := NewLZ4Backend(WithStatsManager(newStatsForTest()))
	require.NoError(t, err)

	valid, err := b.Compress(generateTestData(4096, "text"))
	require.NoError(t, err)

	wrongSize := append([]byte(nil), valid...)
	hn := binary.PutUvarint(wrongSize[1:], 4000)
	require.Equal(t, 2, hn)

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"unknown mode", []byte{0x07, 0x01, 0xAA}, ErrInvalidFrame},
		{"missing length", []byte{lz4ModeBlock}, ErrInvalidFrame},
		{"stored length mismatch", []byte{lz4ModeStored, 0x05, 0x01}, ErrSizeMismatch},
		{"declared length mismatch", wrongSize, ErrCorruptData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Decompress(tt.data)
			require.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("truncated block", func(t *testing.T) {
		_, err := b.Decompress(valid[:len(valid)/2])
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrCorruptData) || errors.Is(err, ErrSizeMismatch), err)
	})
}

func TestLZ4Backend_RejectsOversizedHeader(t *testing.T) {
	b, err := NewLZ4Backend(WithStatsManager(newStatsForTest()))
	require.NoError(t, err)

	header := binary.AppendUvarint([]byte{lz4ModeBlock}, 1<<30)
	data := append(header, 0x00)

	var derr error
	allocated := allocatedBytes(func() {
		_, derr = b.Decompress(data)
	})
	require.ErrorIs(t, derr, ErrInvalidFrame)
	require.Less(t, allocated, uint64(1<<20))

	t.Run("largest expansion accepted", func(t *testing.T) {
		zeros := make([]byte, 300<<10)
		compressed, err := b.Compress(zeros)
		require.NoError(t, err)
		require.Equal(t, lz4ModeBlock, compressed[0])

		out, err := b.Decompress(compressed)
		require.NoError(t, err)
		require.Equal(t, zeros, out)
	})
}

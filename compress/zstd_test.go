package compress

import (
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func newZstdForTest(t *testing.T, opts ...BackendOption) *ZstdBackend {
	t.Helper()

	opts = append([]BackendOption{WithStatsManager(newStatsForTest())}, opts...)
	b, err := NewZstdBackend(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, b.Close()) })

	return b
}

func TestZstdCompressBound(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 64},
		{1, 64},
		{1000, 1066},
		{128 << 10, 131584},
		{1 << 20, 1<<20 + 1<<12},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, ZstdCompressBound(tt.n), "n=%d", tt.n)
	}
}

func TestZstdBackend_Sequence1000(t *testing.T) {
	b := newZstdForTest(t)
	require.Equal(t, DefaultLevel, b.CompressionLevel())

	data := generateTestData(1000, "sequence")
	compressed, err := b.Compress(data)
	require.NoError(t, err)
	require.Less(t, len(compressed), 1000)

	decompressed, err := b.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, decompressed)
}

func TestZstdBackend_SizeBound(t *testing.T) {
	b := newZstdForTest(t)

	for _, kind := range []string{"zeros", "text", "sequence", "random"} {
		for _, size := range []int{1, 16, 255, 4096, 200 << 10} {
			compressed, err := b.Compress(generateTestData(size, kind))
			require.NoError(t, err)
			require.LessOrEqual(t, len(compressed), ZstdCompressBound(size), "%s/%d", kind, size)
		}
	}
}

func TestZstdBackend_Levels(t *testing.T) {
	b := newZstdForTest(t)
	data := generateTestData(32<<10, "text")

	for _, level := range []int{MinZstdLevel, -5, 1, 3, 6, 9, 15, MaxZstdLevel} {
		t.Run(fmt.Sprintf("level_%d", level), func(t *testing.T) {
			require.NoError(t, b.SetCompressionLevel(level))
			require.Equal(t, level, b.CompressionLevel())
			require.Equal(t, level, b.Options().Level)

			compressed, err := b.Compress(data)
			require.NoError(t, err)
			decompressed, err := b.Decompress(compressed)
			require.NoError(t, err)
			require.Equal(t, data, decompressed)
		})
	}

	for _, level := range []int{MinZstdLevel - 1, MaxZstdLevel + 1} {
		err := b.SetCompressionLevel(level)
		require.ErrorIs(t, err, ErrInvalidConfiguration)
	}
	require.Equal(t, MaxZstdLevel, b.CompressionLevel())
}

func TestZstdBackend_InvalidInitialOptions(t *testing.T) {
	_, err := NewZstdBackend(WithStatsManager(newStatsForTest()), WithLevel(100))
	require.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = NewZstdBackend(WithStatsManager(newStatsForTest()), WithOptions(Options{Level: 3, WindowLog: 5}))
	require.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestZstdBackend_WindowLog(t *testing.T) {
	b := newZstdForTest(t)
	data := generateTestData(100<<10, "text")

	for _, wl := range []int{0, MinZstdWindowLog, 17, 24} {
		require.NoError(t, b.SetWindowLog(wl))
		require.Equal(t, wl, b.Options().WindowLog)

		compressed, err := b.Compress(data)
		require.NoError(t, err)
		decompressed, err := b.Decompress(compressed)
		require.NoError(t, err)
		require.Equal(t, data, decompressed)
	}

	for _, wl := range []int{-1, 1, MinZstdWindowLog - 1, MaxZstdWindowLog + 1} {
		require.ErrorIs(t, b.SetWindowLog(wl), ErrInvalidConfiguration, "window log %d", wl)
	}
}

func TestZstdBackend_Strategy(t *testing.T) {
	b := newZstdForTest(t)
	data := generateTestData(16<<10, "text")

	for s := 0; s <= MaxZstdStrategy; s++ {
		require.NoError(t, b.SetStrategy(s))
		require.Equal(t, s, b.Options().Strategy)

		compressed, err := b.Compress(data)
		require.NoError(t, err)
		decompressed, err := b.Decompress(compressed)
		require.NoError(t, err)
		require.Equal(t, data, decompressed)
	}

	require.ErrorIs(t, b.SetStrategy(-1), ErrInvalidConfiguration)
	require.ErrorIs(t, b.SetStrategy(MaxZstdStrategy+1), ErrInvalidConfiguration)
}

func TestZstdBackend_Dictionary(t *testing.T) {
	dict := []byte("NPC: Greetings, traveler. NPC: Farewell, traveler. Player: Tell me about the quest. ")
	data := []byte("NPC: Greetings, traveler. Player: Tell me about the quest.")

	b := newZstdForTest(t)
	require.NoError(t, b.SetDictionary(dict))
	require.True(t, b.Options().DictionaryMode)
	require.Equal(t, dict, b.Options().Dictionary)

	compressed, err := b.Compress(data)
	require.NoError(t, err)
	decompressed, err := b.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, decompressed)

	t.Run("missing dictionary fails", func(t *testing.T) {
		plain := newZstdForTest(t)
		_, err := plain.Decompress(compressed)
		require.Error(t, err)
	})

	t.Run("options carry dictionary", func(t *testing.T) {
		other := newZstdForTest(t, WithOptions(b.Options()))
		out, err := other.Decompress(compressed)
		require.NoError(t, err)
		require.Equal(t, data, out)
	})

	t.Run("clear", func(t *testing.T) {
		require.NoError(t, b.ClearDictionary())
		o := b.Options()
		require.False(t, o.DictionaryMode)
		require.Empty(t, o.Dictionary)

		c, err := b.Compress(data)
		require.NoError(t, err)
		out, err := newZstdForTest(t).Decompress(c)
		require.NoError(t, err)
		require.Equal(t, data, out)
	})

	t.Run("empty dictionary disables mode", func(t *testing.T) {
		require.NoError(t, b.SetDictionary(nil))
		require.False(t, b.Options().DictionaryMode)
	})
}

func TestZstdBackend_DecompressErrors(t *testing.T) {
	b := newZstdForTest(t)

	frame := func(data []byte) []byte {
		c, err := b.Compress(data)
		require.NoError(t, err)

		return c
	}

	first := generateTestData(500, "text")
	second := generateTestData(300, "sequence")
	valid := frame(first)

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"not a frame", []byte("definitely not zstd"), ErrInvalidFrame},
		{"short", []byte{0x28, 0xB5}, ErrInvalidFrame},
		{"skippable", []byte{0x50, 0x2A, 0x4D, 0x18, 0x04, 0x00, 0x00, 0x00, 'a', 'b', 'c', 'd'}, ErrInvalidFrame},
		{"no content size", []byte{0x28, 0xB5, 0x2F, 0xFD, 0x00, 0x00, 0x01, 0x00, 0x00}, ErrInvalidFrame},
		{"truncated", valid[:len(valid)-5], ErrCorruptData},
		{"concatenated frames", append(append([]byte(nil), valid...), frame(second)...), ErrSizeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := b.Decompress(tt.data)
			require.ErrorIs(t, err, tt.want)
			require.Nil(t, out)
		})
	}

	// the backend stays usable after failures
	out, err := b.Decompress(valid)
	require.NoError(t, err)
	require.Equal(t, first, out)

	s := b.Statistics()
	require.Equal(t, uint64(len(tests)+1), s.TotalDecompressions)
	require.Equal(t, uint64(len(tests)), s.FailedDecompressions)
}

func TestZstdBackend_Close(t *testing.T) {
	b, err := NewZstdBackend(WithStatsManager(newStatsForTest()))
	require.NoError(t, err)
	require.True(t, b.IsAvailable())
	require.Equal(t, zstdEngineVersion, b.Version())

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())
	require.False(t, b.IsAvailable())

	_, err = b.Compress([]byte("data"))
	require.ErrorIs(t, err, ErrBackendUnavailable)
	_, err = b.Decompress([]byte("data"))
	require.ErrorIs(t, err, ErrBackendUnavailable)
	require.ErrorIs(t, b.SetCompressionLevel(3), ErrBackendUnavailable)
}

func TestZstdBackend_RejectsOversizedContentSize(t *testing.T) {
	b := newZstdForTest(t)

	// single segment frame with an 8 byte content size, then one empty last RLE block
	data := []byte{0x28, 0xB5, 0x2F, 0xFD, 0xE0}
	data = binary.LittleEndian.AppendUint64(data, 1<<30)
	data = append(data, 0x03, 0x00, 0x00, 0x00)

	var derr error
	allocated := allocatedBytes(func() {
		_, derr = b.Decompress(data)
	})
	require.ErrorIs(t, derr, ErrInvalidFrame)
	require.Less(t, allocated, uint64(1<<20))

	t.Run("highly compressible accepted", func(t *testing.T) {
		zeros := make([]byte, 1<<20)
		compressed, err := b.Compress(zeros)
		require.NoError(t, err)

		out, err := b.Decompress(compressed)
		require.NoError(t, err)
		require.Equal(t, zeros, out)
	})
}

package goethe

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/goethe/compress"
	"github.com/arloliu/goethe/stats"
)

func TestDefault(t *testing.T) {
	m := Default()
	require.Same(t, m, Default())
	require.Same(t, stats.Default(), m.Stats())
}

func TestPackageCompressDecompress(t *testing.T) {
	t.Cleanup(func() { require.NoError(t, Default().Close()) })

	data := sequence(2048)
	compressed, err := Compress(data, compress.NameZstd)
	require.NoError(t, err)
	require.Equal(t, compress.NameZstd, Default().BackendName())

	// backend argument only matters on first use
	decompressed, err := Decompress(compressed, compress.NameNull)
	require.NoError(t, err)
	require.Equal(t, data, decompressed)
	require.Equal(t, compress.NameZstd, Default().BackendName())
}

func TestPackageCompress_UnknownBackend(t *testing.T) {
	require.NoError(t, Default().Close())

	_, err := Compress([]byte("data"), "missing")
	require.ErrorIs(t, err, compress.ErrUnknownBackend)
	require.False(t, Default().IsInitialized())
}

package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimer(t *testing.T) {
	t.Run("never started", func(t *testing.T) {
		var timer Timer
		require.False(t, timer.Running())
		require.Zero(t, timer.Elapsed())
		require.Zero(t, timer.Stop())
	})

	t.Run("measures and freezes", func(t *testing.T) {
		timer := StartTimer()
		require.True(t, timer.Running())
		time.Sleep(2 * time.Millisecond)

		d := timer.Stop()
		require.False(t, timer.Running())
		require.GreaterOrEqual(t, d, 2*time.Millisecond)
		require.Equal(t, d, timer.Elapsed())
		require.Equal(t, d, timer.Stop())
	})

	t.Run("restart resets", func(t *testing.T) {
		timer := StartTimer()
		time.Sleep(time.Millisecond)
		timer.Stop()

		timer.Start()
		require.True(t, timer.Running())
		require.Less(t, timer.Elapsed(), time.Second)
	})
}

func TestRecordingScope_Success(t *testing.T) {
	m := NewManager()

	scope := m.NewScope("zstd", "1.5.6", OpCompress)
	scope.SetSizes(1000, 120)
	scope.SetSuccess(true, "")
	scope.Close()

	bs := m.BackendStats("zstd")
	require.Equal(t, uint64(1), bs.TotalCompressions)
	require.Equal(t, uint64(1), bs.SuccessfulCompressions)
	require.Equal(t, uint64(1000), bs.TotalInputSize)
	require.Equal(t, uint64(120), bs.TotalCompressedSize)
	require.True(t, scope.Recorded())
}

func TestRecordingScope_RecordsOnce(t *testing.T) {
	m := NewManager()

	scope := m.NewScope("null", "1.0.0", OpDecompress)
	scope.SetSizes(10, 10)
	scope.SetSuccess(true, "")
	scope.SetSuccess(false, "ignored")
	scope.Close()

	bs := m.BackendStats("null")
	require.Equal(t, uint64(1), bs.TotalDecompressions)
	require.Equal(t, uint64(1), bs.SuccessfulDecompressions)
	require.Zero(t, bs.FailedDecompressions)
}

func TestRecordingScope_CloseWithoutOutcome(t *testing.T) {
	m := NewManager()

	func() {
		scope := m.NewScope("zstd", "1.5.6", OpCompress)
		defer scope.Close()
		scope.SetSizes(64, 0)
	}()

	bs := m.BackendStats("zstd")
	require.Equal(t, uint64(1), bs.TotalCompressions)
	require.Equal(t, uint64(1), bs.FailedCompressions)
	require.Equal(t, uint64(64), bs.TotalInputSize)
}

func TestRecordingScope_PanicStillRecordsOnce(t *testing.T) {
	m := NewManager()

	require.Panics(t, func() {
		scope := m.NewScope("zstd", "1.5.6", OpDecompress)
		defer scope.Close()
		panic("codec exploded")
	})

	bs := m.BackendStats("zstd")
	require.Equal(t, uint64(1), bs.TotalDecompressions)
	require.Equal(t, uint64(1), bs.FailedDecompressions)
	require.Equal(t, uint64(1), m.GlobalStats().TotalDecompressions)
}

func TestRecordingScope_FailureWithMessage(t *testing.T) {
	m := NewManager()

	scope := m.NewScope("zstd", "1.5.6", OpDecompress)
	scope.SetSizes(12, 0)
	scope.SetSuccess(false, "invalid frame")
	scope.Close()

	bs := m.BackendStats("zstd")
	require.Equal(t, uint64(1), bs.FailedDecompressions)
	require.Zero(t, bs.TotalDecompressedSize)
}

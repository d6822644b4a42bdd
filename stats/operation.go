package stats

import "time"

const bytesPerMiB = 1024.0 * 1024.0

// Operation identifies the kind of codec call being recorded.
type Operation uint8

const (
	OpCompress   Operation = 0x1 // OpCompress records a compression call.
	OpDecompress Operation = 0x2 // OpDecompress records a decompression call.
)

func (o Operation) String() string {
	switch o {
	case OpCompress:
		return "compress"
	case OpDecompress:
		return "decompress"
	default:
		return "unknown"
	}
}

// OperationStats describes a single compress or decompress call.
type OperationStats struct {
	// InputSize is the number of bytes handed to the codec.
	InputSize uint64
	// OutputSize is the number of bytes the codec produced (0 on failure).
	OutputSize uint64
	// Duration is the wall time spent in the call.
	Duration time.Duration
	// Success reports whether the call returned without error.
	Success bool
	// ErrorMessage holds the failure text; empty on success.
	ErrorMessage string
}

// CompressionRatio returns OutputSize / InputSize, or 0 when InputSize is zero.
func (s OperationStats) CompressionRatio() float64 {
	if s.InputSize == 0 {
		return 0.0
	}

	return float64(s.OutputSize) / float64(s.InputSize)
}

// CompressionRate returns the space saved as a percentage: (1 - ratio) * 100.
func (s OperationStats) CompressionRate() float64 {
	return (1.0 - s.CompressionRatio()) * 100.0
}

// ThroughputMBps returns the input processed per second in MiB, or 0 when no
// time was recorded.
func (s OperationStats) ThroughputMBps() float64 {
	return throughput(s.InputSize, uint64(s.Duration.Nanoseconds()))
}

// ThroughputMiBps is an alias of ThroughputMBps kept for tooling that names the
// unit explicitly.
func (s OperationStats) ThroughputMiBps() float64 {
	return s.ThroughputMBps()
}

func throughput(size, ns uint64) float64 {
	if ns == 0 {
		return 0.0
	}

	return (float64(size) / bytesPerMiB) / (float64(ns) / 1e9)
}

package stats

// GlobalName is the backend name carried by the global aggregate.
const GlobalName = "global"

// BackendStats holds monotonically increasing counters for one backend name.
//
// For each operation kind Total* == Successful* + Failed* at all times.
// BackendStats is a plain value: copying it yields an independent snapshot.
type BackendStats struct {
	BackendName    string
	BackendVersion string

	TotalCompressions        uint64
	TotalDecompressions      uint64
	SuccessfulCompressions   uint64
	SuccessfulDecompressions uint64
	FailedCompressions       uint64
	FailedDecompressions     uint64

	// TotalInputSize and TotalOutputSize count every attempt, successful or not.
	TotalInputSize  uint64
	TotalOutputSize uint64
	// TotalCompressedSize counts compression output of successful calls only.
	TotalCompressedSize uint64
	// TotalDecompressedSize counts decompression output of successful calls only.
	TotalDecompressedSize uint64

	TotalCompressionTimeNs   uint64
	TotalDecompressionTimeNs uint64
}

// AverageCompressionRatio returns TotalCompressedSize / TotalInputSize, or 0
// when there were no successful compressions or no input.
func (s BackendStats) AverageCompressionRatio() float64 {
	if s.SuccessfulCompressions == 0 || s.TotalInputSize == 0 {
		return 0.0
	}

	return float64(s.TotalCompressedSize) / float64(s.TotalInputSize)
}

// AverageCompressionRate returns (1 - AverageCompressionRatio) * 100.
func (s BackendStats) AverageCompressionRate() float64 {
	return (1.0 - s.AverageCompressionRatio()) * 100.0
}

// AverageCompressionThroughputMBps returns MiB of input compressed per second
// of recorded compression time.
func (s BackendStats) AverageCompressionThroughputMBps() float64 {
	if s.SuccessfulCompressions == 0 {
		return 0.0
	}

	return throughput(s.TotalInputSize, s.TotalCompressionTimeNs)
}

// AverageDecompressionThroughputMBps returns MiB of output produced per second
// of recorded decompression time.
func (s BackendStats) AverageDecompressionThroughputMBps() float64 {
	if s.SuccessfulDecompressions == 0 {
		return 0.0
	}

	return throughput(s.TotalDecompressedSize, s.TotalDecompressionTimeNs)
}

// SuccessRate returns the percentage of successful calls across compressions
// and decompressions. It is 100 when nothing has been attempted.
func (s BackendStats) SuccessRate() float64 {
	total := s.TotalCompressions + s.TotalDecompressions
	if total == 0 {
		return 100.0
	}
	ok := s.SuccessfulCompressions + s.SuccessfulDecompressions

	return float64(ok) / float64(total) * 100.0
}

// Reset zeroes every counter while keeping the name and version.
func (s *BackendStats) Reset() {
	*s = BackendStats{BackendName: s.BackendName, BackendVersion: s.BackendVersion}
}

func (s *BackendStats) record(op Operation, rec OperationStats) {
	s.TotalInputSize += rec.InputSize
	s.TotalOutputSize += rec.OutputSize
	ns := uint64(rec.Duration.Nanoseconds())

	switch op {
	case OpCompress:
		s.TotalCompressions++
		s.TotalCompressionTimeNs += ns
		if rec.Success {
			s.SuccessfulCompressions++
			s.TotalCompressedSize += rec.OutputSize
		} else {
			s.FailedCompressions++
		}
	case OpDecompress:
		s.TotalDecompressions++
		s.TotalDecompressionTimeNs += ns
		if rec.Success {
			s.SuccessfulDecompressions++
			s.TotalDecompressedSize += rec.OutputSize
		} else {
			s.FailedDecompressions++
		}
	}
}

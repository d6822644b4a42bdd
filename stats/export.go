package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// CSVHeader lists the export columns in order.
var CSVHeader = []string{
	"Backend", "Version",
	"Total_Compressions", "Total_Decompressions",
	"Successful_Compressions", "Successful_Decompressions",
	"Failed_Compressions", "Failed_Decompressions",
	"Total_Input_Size", "Total_Output_Size",
	"Total_Compressed_Size", "Total_Decompressed_Size",
	"Total_Compression_Time_ns", "Total_Decompression_Time_ns",
	"Average_Compression_Ratio", "Average_Compression_Rate",
	"Average_Compression_Throughput_MBps", "Average_Decompression_Throughput_MBps",
	"Success_Rate",
}

// csvGlobalRow is the Backend column value of the aggregate row.
const csvGlobalRow = "GLOBAL"

type statsJSON struct {
	BackendName    string `json:"backend_name"`
	BackendVersion string `json:"backend_version"`

	TotalCompressions        uint64 `json:"total_compressions"`
	TotalDecompressions      uint64 `json:"total_decompressions"`
	SuccessfulCompressions   uint64 `json:"successful_compressions"`
	SuccessfulDecompressions uint64 `json:"successful_decompressions"`
	FailedCompressions       uint64 `json:"failed_compressions"`
	FailedDecompressions     uint64 `json:"failed_decompressions"`

	TotalInputSize        uint64 `json:"total_input_size"`
	TotalOutputSize       uint64 `json:"total_output_size"`
	TotalCompressedSize   uint64 `json:"total_compressed_size"`
	TotalDecompressedSize uint64 `json:"total_decompressed_size"`

	TotalCompressionTimeNs   uint64 `json:"total_compression_time_ns"`
	TotalDecompressionTimeNs uint64 `json:"total_decompression_time_ns"`

	AverageCompressionRatio            float64 `json:"average_compression_ratio"`
	AverageCompressionRate             float64 `json:"average_compression_rate"`
	AverageCompressionThroughputMBps   float64 `json:"average_compression_throughput_mbps"`
	AverageDecompressionThroughputMBps float64 `json:"average_decompression_throughput_mbps"`
	SuccessRate                        float64 `json:"success_rate"`
}

type exportJSON struct {
	StatisticsEnabled bool                 `json:"statistics_enabled"`
	GlobalStats       statsJSON            `json:"global_stats"`
	BackendStats      map[string]statsJSON `json:"backend_stats"`
}

func newStatsJSON(s BackendStats) statsJSON {
	return statsJSON{
		BackendName:                        s.BackendName,
		BackendVersion:                     s.BackendVersion,
		TotalCompressions:                  s.TotalCompressions,
		TotalDecompressions:                s.TotalDecompressions,
		SuccessfulCompressions:             s.SuccessfulCompressions,
		SuccessfulDecompressions:           s.SuccessfulDecompressions,
		FailedCompressions:                 s.FailedCompressions,
		FailedDecompressions:               s.FailedDecompressions,
		TotalInputSize:                     s.TotalInputSize,
		TotalOutputSize:                    s.TotalOutputSize,
		TotalCompressedSize:                s.TotalCompressedSize,
		TotalDecompressedSize:              s.TotalDecompressedSize,
		TotalCompressionTimeNs:             s.TotalCompressionTimeNs,
		TotalDecompressionTimeNs:           s.TotalDecompressionTimeNs,
		AverageCompressionRatio:            round2(s.AverageCompressionRatio()),
		AverageCompressionRate:             round2(s.AverageCompressionRate()),
		AverageCompressionThroughputMBps:   round2(s.AverageCompressionThroughputMBps()),
		AverageDecompressionThroughputMBps: round2(s.AverageDecompressionThroughputMBps()),
		SuccessRate:                        round2(s.SuccessRate()),
	}
}

// round2 matches the two-decimal precision of the CSV export.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// WriteJSON writes the snapshot as an indented JSON document.
func (s Snapshot) WriteJSON(w io.Writer) error {
	doc := exportJSON{
		StatisticsEnabled: s.Enabled,
		GlobalStats:       newStatsJSON(s.Global),
		BackendStats:      make(map[string]statsJSON, len(s.Backends)),
	}
	for _, bs := range s.Backends {
		doc.BackendStats[bs.BackendName] = newStatsJSON(bs)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode statistics json: %w", err)
	}

	return nil
}

// WriteCSV writes the header, the GLOBAL row and one row per backend.
func (s Snapshot) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write statistics csv header: %w", err)
	}
	if err := cw.Write(csvRow(csvGlobalRow, "", s.Global)); err != nil {
		return fmt.Errorf("write statistics csv row: %w", err)
	}
	for _, bs := range s.Backends {
		if err := cw.Write(csvRow(bs.BackendName, bs.BackendVersion, bs)); err != nil {
			return fmt.Errorf("write statistics csv row: %w", err)
		}
	}
	cw.Flush()

	return cw.Error()
}

func csvRow(name, version string, s BackendStats) []string {
	u := func(v uint64) string { return strconv.FormatUint(v, 10) }
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

	return []string{
		name, version,
		u(s.TotalCompressions), u(s.TotalDecompressions),
		u(s.SuccessfulCompressions), u(s.SuccessfulDecompressions),
		u(s.FailedCompressions), u(s.FailedDecompressions),
		u(s.TotalInputSize), u(s.TotalOutputSize),
		u(s.TotalCompressedSize), u(s.TotalDecompressedSize),
		u(s.TotalCompressionTimeNs), u(s.TotalDecompressionTimeNs),
		f(s.AverageCompressionRatio()), f(s.AverageCompressionRate()),
		f(s.AverageCompressionThroughputMBps()), f(s.AverageDecompressionThroughputMBps()),
		f(s.SuccessRate()),
	}
}

// ExportJSON renders a consistent snapshot of all statistics as JSON.
func (m *Manager) ExportJSON() (string, error) {
	var sb strings.Builder
	if err := m.Snapshot().WriteJSON(&sb); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// ExportCSV renders a consistent snapshot of all statistics as CSV.
func (m *Manager) ExportCSV() (string, error) {
	var sb strings.Builder
	if err := m.Snapshot().WriteCSV(&sb); err != nil {
		return "", err
	}

	return sb.String(), nil
}

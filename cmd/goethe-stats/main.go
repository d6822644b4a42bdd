// Command goethe-stats exercises the compression manager and prints its statistics.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/zap"

	"github.com/arloliu/goethe"
	"github.com/arloliu/goethe/stats"
)

const usage = `Usage: goethe-stats [flags] <command> [argument]

Commands:
  info                    Show current backend information
  stats                   Show current backend statistics
  global                  Show global statistics
  enable                  Enable statistics collection
  disable                 Disable statistics collection
  reset                   Reset all statistics
  export-json <file>      Export statistics to a JSON file
  export-csv <file>       Export statistics to a CSV file
  metrics                 Print statistics in Prometheus text format
  benchmark <size>        Run a compression benchmark on <size> bytes
  stress-test <count>     Run <count> compress/decompress round trips
  switch <backend>        Switch to the named backend
  backends                List available backends
  help                    Show this help message

Flags:
`

var stressSizes = []int{1 << 10, 10 << 10, 100 << 10, 1 << 20}

var errUsage = errors.New("usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("goethe-stats", flag.ContinueOnError)
	fs.SetOutput(stderr)
	backend := fs.String("backend", "", "backend name (default: best available)")
	configPath := fs.String("config", "", "YAML configuration file")
	verbose := fs.Bool("v", false, "verbose logging")
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return 1
	}

	logger, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	m, err := setup(*backend, *configPath, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer m.Close()

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	if err := dispatch(m, cmd, rest, stdout); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if errors.Is(err, errUsage) {
			fs.Usage()
		}
		return 1
	}

	return 0
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)

	return cfg.Build()
}

func setup(backend, configPath string, logger *zap.Logger) (*goethe.Manager, error) {
	m, err := goethe.NewManager(goethe.WithStats(stats.NewManager()), goethe.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	cfg := goethe.Config{}
	if configPath != "" {
		if cfg, err = goethe.LoadConfig(configPath); err != nil {
			return nil, err
		}
	}
	if backend != "" {
		cfg.Backend = backend
	}
	if err := m.ApplyConfig(cfg); err != nil {
		return nil, err
	}

	return m, nil
}

func argument(rest []string, what string) (string, error) {
	if len(rest) < 1 {
		return "", fmt.Errorf("%w: please specify %s", errUsage, what)
	}

	return rest[0], nil
}

func dispatch(m *goethe.Manager, cmd string, rest []string, w io.Writer) error {
	switch cmd {
	case "help", "-h", "--help":
		fmt.Fprint(w, usage)
	case "info":
		printBackendInfo(w, m)
	case "stats":
		printStatistics(w, m.Statistics(), "Current Backend Statistics")
	case "global":
		printStatistics(w, m.GlobalStatistics(), "Global Statistics")
	case "enable":
		m.EnableStatistics(true)
		fmt.Fprintln(w, "Statistics collection enabled.")
	case "disable":
		m.EnableStatistics(false)
		fmt.Fprintln(w, "Statistics collection disabled.")
	case "reset":
		m.ResetGlobalStatistics()
		fmt.Fprintln(w, "All statistics have been reset.")
	case "export-json", "export-csv":
		path, err := argument(rest, "output file")
		if err != nil {
			return err
		}
		return exportStatistics(w, m, cmd == "export-json", path)
	case "metrics":
		return writeMetrics(w, m.Stats())
	case "benchmark":
		arg, err := argument(rest, "data size in bytes")
		if err != nil {
			return err
		}
		size, err := strconv.Atoi(arg)
		if err != nil || size <= 0 {
			return fmt.Errorf("%w: invalid size %q", errUsage, arg)
		}
		return runBenchmark(w, m, size)
	case "stress-test":
		arg, err := argument(rest, "number of operations")
		if err != nil {
			return err
		}
		count, err := strconv.Atoi(arg)
		if err != nil || count <= 0 {
			return fmt.Errorf("%w: invalid count %q", errUsage, arg)
		}
		return runStressTest(w, m, count)
	case "switch":
		name, err := argument(rest, "backend name")
		if err != nil {
			return err
		}
		m.SwitchBackend(name)
		fmt.Fprintf(w, "Switched to backend: %s\n", m.BackendName())
	case "backends":
		fmt.Fprintf(w, "Available backends: %s\n", strings.Join(m.AvailableBackends(), ", "))
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}

	return nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func printBackendInfo(w io.Writer, m *goethe.Manager) {
	fmt.Fprintln(w, "Backend Information:")
	fmt.Fprintln(w, "===================")
	fmt.Fprintf(w, "Name: %s\n", m.BackendName())
	fmt.Fprintf(w, "Version: %s\n", m.BackendVersion())
	fmt.Fprintf(w, "Initialized: %s\n", yesNo(m.IsInitialized()))
	fmt.Fprintf(w, "Statistics Enabled: %s\n", yesNo(m.StatisticsEnabled()))
}

func printStatistics(w io.Writer, s stats.BackendStats, title string) {
	fmt.Fprintf(w, "\n%s:\n%s\n", title, strings.Repeat("=", len(title)+1))
	fmt.Fprintf(w, "Backend: %s v%s\n\n", s.BackendName, s.BackendVersion)

	fmt.Fprintln(w, "Operations:")
	fmt.Fprintf(w, "  Total Compressions: %d\n", s.TotalCompressions)
	fmt.Fprintf(w, "  Successful Compressions: %d\n", s.SuccessfulCompressions)
	fmt.Fprintf(w, "  Failed Compressions: %d\n", s.FailedCompressions)
	fmt.Fprintf(w, "  Total Decompressions: %d\n", s.TotalDecompressions)
	fmt.Fprintf(w, "  Successful Decompressions: %d\n", s.SuccessfulDecompressions)
	fmt.Fprintf(w, "  Failed Decompressions: %d\n", s.FailedDecompressions)
	fmt.Fprintf(w, "  Success Rate: %.2f%%\n\n", s.SuccessRate())

	fmt.Fprintln(w, "Data Sizes:")
	fmt.Fprintf(w, "  Total Input: %d bytes\n", s.TotalInputSize)
	fmt.Fprintf(w, "  Total Output: %d bytes\n", s.TotalOutputSize)
	fmt.Fprintf(w, "  Total Compressed: %d bytes\n", s.TotalCompressedSize)
	fmt.Fprintf(w, "  Total Decompressed: %d bytes\n\n", s.TotalDecompressedSize)

	fmt.Fprintln(w, "Performance Metrics:")
	fmt.Fprintf(w, "  Average Compression Ratio: %.2f\n", s.AverageCompressionRatio())
	fmt.Fprintf(w, "  Average Compression Rate: %.2f%%\n", s.AverageCompressionRate())
	fmt.Fprintf(w, "  Average Compression Throughput: %.2f MB/s\n", s.AverageCompressionThroughputMBps())
	fmt.Fprintf(w, "  Average Decompression Throughput: %.2f MB/s\n", s.AverageDecompressionThroughputMBps())
}

func exportStatistics(w io.Writer, m *goethe.Manager, asJSON bool, path string) error {
	var (
		data string
		err  error
	)
	if asJSON {
		data, err = m.ExportStatisticsJSON()
	} else {
		data, err = m.ExportStatisticsCSV()
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return fmt.Errorf("could not write to file %s: %w", path, err)
	}
	fmt.Fprintf(w, "Statistics exported to %s\n", path)

	return nil
}

func writeMetrics(w io.Writer, sm *stats.Manager) error {
	reg := prometheus.NewPedanticRegistry()
	if err := reg.Register(stats.NewCollector(sm, "goethe")); err != nil {
		return err
	}
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}

	return nil
}

// generateTestData returns size bytes drawn from a small alphabet so the
// payload compresses.
func generateTestData(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(rand.IntN(20))
	}

	return data
}

func runBenchmark(w io.Writer, m *goethe.Manager, size int) error {
	fmt.Fprintf(w, "Running benchmark with %d bytes of data...\n", size)
	data := generateTestData(size)

	timer := stats.StartTimer()
	compressed, err := m.Compress(data)
	if err != nil {
		return err
	}
	comp := timer.Stop()

	timer.Start()
	decompressed, err := m.Decompress(compressed)
	if err != nil {
		return err
	}
	decomp := timer.Stop()

	cs := stats.OperationStats{InputSize: uint64(len(data)), OutputSize: uint64(len(compressed)), Duration: comp}
	ds := stats.OperationStats{InputSize: uint64(len(decompressed)), Duration: decomp}
	integrity := "FAILED"
	if bytes.Equal(data, decompressed) {
		integrity = "OK"
	}

	fmt.Fprintln(w, "Results:")
	fmt.Fprintf(w, "  Compression: %d µs, %.2f MB/s\n", comp.Microseconds(), cs.ThroughputMBps())
	fmt.Fprintf(w, "  Decompression: %d µs, %.2f MB/s\n", decomp.Microseconds(), ds.ThroughputMBps())
	fmt.Fprintf(w, "  Compression rate: %.2f%%\n", cs.CompressionRate())
	fmt.Fprintf(w, "  Data integrity: %s\n", integrity)

	printStatistics(w, m.Statistics(), "Current Backend Statistics")
	if integrity != "OK" {
		return errors.New("data integrity check failed")
	}

	return nil
}

func runStressTest(w io.Writer, m *goethe.Manager, count int) error {
	fmt.Fprintf(w, "Running stress test with %d operations...\n", count)

	start := time.Now()
	for i := range count {
		data := generateTestData(stressSizes[rand.IntN(len(stressSizes))])

		compressed, err := m.Compress(data)
		if err != nil {
			return fmt.Errorf("operation %d: %w", i, err)
		}
		decompressed, err := m.Decompress(compressed)
		if err != nil {
			return fmt.Errorf("operation %d: %w", i, err)
		}
		if !bytes.Equal(data, decompressed) {
			return fmt.Errorf("data integrity check failed at operation %d", i)
		}
		if (i+1)%100 == 0 {
			fmt.Fprintf(w, "Completed %d operations...\n", i+1)
		}
	}
	elapsed := time.Since(start)

	fmt.Fprintln(w, "Stress test completed successfully!")
	fmt.Fprintf(w, "Total time: %d ms\n", elapsed.Milliseconds())
	fmt.Fprintf(w, "Average time per operation: %.2f ms\n", float64(elapsed.Milliseconds())/float64(count))
	printStatistics(w, m.Statistics(), "Current Backend Statistics")

	return nil
}

package stats

import "github.com/prometheus/client_golang/prometheus"

const collectorSubsystem = "compression"

// Collector exposes a Manager's counters as Prometheus metrics.
//
// Each scrape takes one Snapshot, so all series of a scrape are consistent
// with each other. The global aggregate is exported with backend="global"; a
// backend recorded under that name is left out, its calls are already counted
// in the aggregate.
type Collector struct {
	manager *Manager

	operations  *prometheus.Desc
	bytes       *prometheus.Desc
	seconds     *prometheus.Desc
	ratio       *prometheus.Desc
	rate        *prometheus.Desc
	throughput  *prometheus.Desc
	successRate *prometheus.Desc
	enabled     *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a Collector for m. An empty namespace omits the prefix.
func NewCollector(m *Manager, namespace string) *Collector {
	fq := func(name string) string {
		return prometheus.BuildFQName(namespace, collectorSubsystem, name)
	}

	return &Collector{
		manager: m,
		operations: prometheus.NewDesc(fq("operations_total"),
			"Compression and decompression calls by outcome.",
			[]string{"backend", "operation", "result"}, nil),
		bytes: prometheus.NewDesc(fq("bytes_total"),
			"Bytes handled, split by counter kind (input, output, compressed, decompressed).",
			[]string{"backend", "kind"}, nil),
		seconds: prometheus.NewDesc(fq("duration_seconds_total"),
			"Total time spent in codec calls.",
			[]string{"backend", "operation"}, nil),
		ratio: prometheus.NewDesc(fq("ratio"),
			"Average compressed size divided by input size.",
			[]string{"backend"}, nil),
		rate: prometheus.NewDesc(fq("rate_percent"),
			"Average space savings in percent.",
			[]string{"backend"}, nil),
		throughput: prometheus.NewDesc(fq("throughput_mbps"),
			"Average throughput in MiB per second.",
			[]string{"backend", "operation"}, nil),
		successRate: prometheus.NewDesc(fq("success_rate_percent"),
			"Successful calls over all calls in percent.",
			[]string{"backend"}, nil),
		enabled: prometheus.NewDesc(fq("statistics_enabled"),
			"1 when statistics recording is enabled.",
			nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.operations
	ch <- c.bytes
	ch <- c.seconds
	ch <- c.ratio
	ch <- c.rate
	ch <- c.throughput
	ch <- c.successRate
	ch <- c.enabled
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.manager.Snapshot()

	enabled := 0.0
	if snap.Enabled {
		enabled = 1.0
	}
	ch <- prometheus.MustNewConstMetric(c.enabled, prometheus.GaugeValue, enabled)

	c.collectBackend(ch, GlobalName, snap.Global)
	for _, bs := range snap.Backends {
		if bs.BackendName == GlobalName {
			continue
		}
		c.collectBackend(ch, bs.BackendName, bs)
	}
}

func (c *Collector) collectBackend(ch chan<- prometheus.Metric, name string, s BackendStats) {
	counter := func(desc *prometheus.Desc, v uint64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, float64(v), labels...)
	}
	gauge := func(desc *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, v, labels...)
	}

	compress, decompress := OpCompress.String(), OpDecompress.String()

	counter(c.operations, s.SuccessfulCompressions, name, compress, "success")
	counter(c.operations, s.FailedCompressions, name, compress, "failure")
	counter(c.operations, s.SuccessfulDecompressions, name, decompress, "success")
	counter(c.operations, s.FailedDecompressions, name, decompress, "failure")

	counter(c.bytes, s.TotalInputSize, name, "input")
	counter(c.bytes, s.TotalOutputSize, name, "output")
	counter(c.bytes, s.TotalCompressedSize, name, "compressed")
	counter(c.bytes, s.TotalDecompressedSize, name, "decompressed")

	ch <- prometheus.MustNewConstMetric(c.seconds, prometheus.CounterValue,
		float64(s.TotalCompressionTimeNs)/1e9, name, compress)
	ch <- prometheus.MustNewConstMetric(c.seconds, prometheus.CounterValue,
		float64(s.TotalDecompressionTimeNs)/1e9, name, decompress)

	gauge(c.ratio, s.AverageCompressionRatio(), name)
	gauge(c.rate, s.AverageCompressionRate(), name)
	gauge(c.throughput, s.AverageCompressionThroughputMBps(), name, compress)
	gauge(c.throughput, s.AverageDecompressionThroughputMBps(), name, decompress)
	gauge(c.successRate, s.SuccessRate(), name)
}

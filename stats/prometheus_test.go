package stats

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func findMetric(t *testing.T, families []*dto.MetricFamily, name string, labels map[string]string) *dto.Metric {
	t.Helper()

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, metric := range mf.GetMetric() {
			got := make(map[string]string)
			for _, lp := range metric.GetLabel() {
				got[lp.GetName()] = lp.GetValue()
			}
			for k, v := range labels {
				if got[k] != v {
					continue next
				}
			}

			return metric
		}
	}
	t.Fatalf("metric %s %v not found", name, labels)

	return nil
}

func TestCollector(t *testing.T) {
	m := NewManager()
	m.RecordCompression("zstd", "1.5.6", OperationStats{InputSize: 1000, OutputSize: 200, Duration: time.Second, Success: true})
	m.RecordCompression("zstd", "1.5.6", OperationStats{InputSize: 10, ErrorMessage: "boom"})

	c := NewCollector(m, "goethe")

	// 1 enabled gauge + 15 series for global + 15 for zstd
	require.Equal(t, 31, testutil.CollectAndCount(c))
	require.Equal(t, 8, testutil.CollectAndCount(c, "goethe_compression_operations_total"))

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(c))
	families, err := reg.Gather()
	require.NoError(t, err)

	ok := findMetric(t, families, "goethe_compression_operations_total",
		map[string]string{"backend": "zstd", "operation": "compress", "result": "success"})
	require.InDelta(t, 1.0, ok.GetCounter().GetValue(), 1e-9)

	failed := findMetric(t, families, "goethe_compression_operations_total",
		map[string]string{"backend": "global", "operation": "compress", "result": "failure"})
	require.InDelta(t, 1.0, failed.GetCounter().GetValue(), 1e-9)

	ratio := findMetric(t, families, "goethe_compression_ratio", map[string]string{"backend": "zstd"})
	require.InDelta(t, 200.0/1010.0, ratio.GetGauge().GetValue(), 1e-9)

	enabled := findMetric(t, families, "goethe_compression_statistics_enabled", nil)
	require.InDelta(t, 1.0, enabled.GetGauge().GetValue(), 1e-9)
}

func TestCollector_EmptyNamespace(t *testing.T) {
	c := NewCollector(NewManager(), "")
	require.Equal(t, 1, testutil.CollectAndCount(c, "compression_statistics_enabled"))
}

func TestCollector_BackendNamedGlobal(t *testing.T) {
	m := NewManager()
	m.RecordCompression("zstd", "1.5.6", OperationStats{InputSize: 100, OutputSize: 40, Success: true})
	m.RecordCompression(GlobalName, "1.0.0", OperationStats{InputSize: 100, OutputSize: 50, Success: true})

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(NewCollector(m, "goethe")))
	families, err := reg.Gather()
	require.NoError(t, err)

	// 1 enabled gauge + 15 series for global + 15 for zstd
	require.Equal(t, 31, testutil.CollectAndCount(NewCollector(m, "goethe")))

	global := findMetric(t, families, "goethe_compression_operations_total",
		map[string]string{"backend": GlobalName, "operation": "compress", "result": "success"})
	require.InDelta(t, 2.0, global.GetCounter().GetValue(), 1e-9)
}

package assembler

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"
)

// counter is a monotonic uint64 counter safe for concurrent Add/Load,
// avoiding a sprinkling of atomic.AddUint64(&x, ...) call sites.
type counter struct{ v uint64 }

func (c *counter) Add(n uint64) { atomic.AddUint64(&c.v, n) }
func (c *counter) Load() uint64 { return atomic.LoadUint64(&c.v) }

// Metrics holds the cumulative counters described in §3. It implements
// prometheus.Collector directly, the same pattern the sockstats exporter
// uses for per-connection state: each field is surfaced as its own
// constant metric on Collect rather than being registered as a standalone
// prometheus.Counter, so the zero value requires no registration step.
type Metrics struct {
	uniqueFrameIndexCount  counter
	finishedFrameCount     counter
	completeFrameCount     counter
	skippedFrameCount      counter
	totalExpectedFrameSize counter
	totalReceivedFrameSize counter
	totalPacketsReceived   counter
	totalPacketsAccepted   counter
	totalPacketsIgnored    counter
	invalidPacketCount     counter
}

// NewMetrics returns a zeroed Metrics ready for use.
func NewMetrics() *Metrics { return &Metrics{} }

// Summary is a point-in-time snapshot of every counter, handy for logging
// and for the `cmd/arislog record` status line.
type Summary struct {
	UniqueFrameIndexCount  uint64
	FinishedFrameCount     uint64
	CompleteFrameCount     uint64
	SkippedFrameCount      uint64
	TotalExpectedFrameSize uint64
	TotalReceivedFrameSize uint64
	TotalPacketsReceived   uint64
	TotalPacketsAccepted   uint64
	TotalPacketsIgnored    uint64
	InvalidPacketCount     uint64
}

// Snapshot reads every counter into a Summary.
func (m *Metrics) Snapshot() Summary {
	return Summary{
		UniqueFrameIndexCount:  m.uniqueFrameIndexCount.Load(),
		FinishedFrameCount:     m.finishedFrameCount.Load(),
		CompleteFrameCount:     m.completeFrameCount.Load(),
		SkippedFrameCount:      m.skippedFrameCount.Load(),
		TotalExpectedFrameSize: m.totalExpectedFrameSize.Load(),
		TotalReceivedFrameSize: m.totalReceivedFrameSize.Load(),
		TotalPacketsReceived:   m.totalPacketsReceived.Load(),
		TotalPacketsAccepted:   m.totalPacketsAccepted.Load(),
		TotalPacketsIgnored:    m.totalPacketsIgnored.Load(),
		InvalidPacketCount:     m.invalidPacketCount.Load(),
	}
}

// CompletionRatio returns CompleteFrameCount/FinishedFrameCount, using
// lo.Max to avoid a divide-by-zero before the first frame finishes.
func (s Summary) CompletionRatio() float64 {
	denom := lo.Max([]uint64{s.FinishedFrameCount, 1})
	return float64(s.CompleteFrameCount) / float64(denom)
}

var (
	descUniqueFrameIndexCount = prometheus.NewDesc(
		"aris_assembler_unique_frame_index_count", "Distinct frame indices retired.", nil, nil)
	descFinishedFrameCount = prometheus.NewDesc(
		"aris_assembler_finished_frame_count", "Frames retired, complete or not.", nil, nil)
	descCompleteFrameCount = prometheus.NewDesc(
		"aris_assembler_complete_frame_count", "Frames retired with all bytes received.", nil, nil)
	descSkippedFrameCount = prometheus.NewDesc(
		"aris_assembler_skipped_frame_count", "Frame indices that never produced a single packet.", nil, nil)
	descTotalExpectedFrameSize = prometheus.NewDesc(
		"aris_assembler_total_expected_frame_size_bytes", "Sum of declared frame sizes across retired frames.", nil, nil)
	descTotalReceivedFrameSize = prometheus.NewDesc(
		"aris_assembler_total_received_frame_size_bytes", "Sum of bytes actually received across retired frames.", nil, nil)
	descTotalPacketsReceived = prometheus.NewDesc(
		"aris_assembler_packets_received_total", "Frame-part datagrams seen, including malformed ones.", nil, nil)
	descTotalPacketsAccepted = prometheus.NewDesc(
		"aris_assembler_packets_accepted_total", "Frame-part datagrams appended to a frame builder.", nil, nil)
	descTotalPacketsIgnored = prometheus.NewDesc(
		"aris_assembler_packets_ignored_total", "Frame-part datagrams dropped as duplicate, late or out-of-order.", nil, nil)
	descInvalidPacketCount = prometheus.NewDesc(
		"aris_assembler_invalid_packet_count", "Datagrams that failed to decode as a frame-part, or whose first part was malformed.", nil, nil)
)

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	ch <- descUniqueFrameIndexCount
	ch <- descFinishedFrameCount
	ch <- descCompleteFrameCount
	ch <- descSkippedFrameCount
	ch <- descTotalExpectedFrameSize
	ch <- descTotalReceivedFrameSize
	ch <- descTotalPacketsReceived
	ch <- descTotalPacketsAccepted
	ch <- descTotalPacketsIgnored
	ch <- descInvalidPacketCount
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	s := m.Snapshot()
	ch <- prometheus.MustNewConstMetric(descUniqueFrameIndexCount, prometheus.CounterValue, float64(s.UniqueFrameIndexCount))
	ch <- prometheus.MustNewConstMetric(descFinishedFrameCount, prometheus.CounterValue, float64(s.FinishedFrameCount))
	ch <- prometheus.MustNewConstMetric(descCompleteFrameCount, prometheus.CounterValue, float64(s.CompleteFrameCount))
	ch <- prometheus.MustNewConstMetric(descSkippedFrameCount, prometheus.CounterValue, float64(s.SkippedFrameCount))
	ch <- prometheus.MustNewConstMetric(descTotalExpectedFrameSize, prometheus.CounterValue, float64(s.TotalExpectedFrameSize))
	ch <- prometheus.MustNewConstMetric(descTotalReceivedFrameSize, prometheus.CounterValue, float64(s.TotalReceivedFrameSize))
	ch <- prometheus.MustNewConstMetric(descTotalPacketsReceived, prometheus.CounterValue, float64(s.TotalPacketsReceived))
	ch <- prometheus.MustNewConstMetric(descTotalPacketsAccepted, prometheus.CounterValue, float64(s.TotalPacketsAccepted))
	ch <- prometheus.MustNewConstMetric(descTotalPacketsIgnored, prometheus.CounterValue, float64(s.TotalPacketsIgnored))
	ch <- prometheus.MustNewConstMetric(descInvalidPacketCount, prometheus.CounterValue, float64(s.InvalidPacketCount))
}

package bm25s

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SummarySource is anything that can report corpus counters. Both Index and
// SyncIndex qualify; use SyncIndex when the collector may be scraped while
// the index is being written.
type SummarySource interface {
	Summary() Summary
}

// Collector exports index counters as Prometheus gauges. The values are read
// from the index at scrape time.
//
// Register it with the host's registry:
//
//	prometheus.MustRegister(bm25s.NewCollector("notes", idx))
type Collector struct {
	source SummarySource

	documents      *prometheus.Desc
	terms          *prometheus.Desc
	totalDocLength *prometheus.Desc
	avgDocLength   *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a collector for source. name is attached to every
// metric as the "index" label.
func NewCollector(name string, source SummarySource) *Collector {
	labels := prometheus.Labels{"index": name}
	return &Collector{
		source: source,
		documents: prometheus.NewDesc(
			"bm25s_documents",
			"Number of indexed documents.",
			nil, labels,
		),
		terms: prometheus.NewDesc(
			"bm25s_terms",
			"Number of distinct terms with a non-empty posting list.",
			nil, labels,
		),
		totalDocLength: prometheus.NewDesc(
			"bm25s_total_document_length",
			"Sum of the token counts of all indexed documents.",
			nil, labels,
		),
		avgDocLength: prometheus.NewDesc(
			"bm25s_average_document_length",
			"Average token count per indexed document.",
			nil, labels,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.documents
	ch <- c.terms
	ch <- c.totalDocLength
	ch <- c.avgDocLength
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.source.Summary()
	ch <- prometheus.MustNewConstMetric(c.documents, prometheus.GaugeValue, float64(s.Documents))
	ch <- prometheus.MustNewConstMetric(c.terms, prometheus.GaugeValue, float64(s.Terms))
	ch <- prometheus.MustNewConstMetric(c.totalDocLength, prometheus.GaugeValue, float64(s.TotalDocLength))
	ch <- prometheus.MustNewConstMetric(c.avgDocLength, prometheus.GaugeValue, s.AvgDocLength)
}

package session

// Metric is a top-level business category selecting which cleaning
// endpoint and payload shape applies.
type Metric string

const (
	MetricSales          Metric = "sales"
	MetricPEX            Metric = "pex"
	MetricOE             Metric = "oe"
	MetricWorkingCapital Metric = "working-capital"
	MetricInference      Metric = "inference"
	MetricPipeline       Metric = "processing-pipeline"
)

// WCKind selects the working-capital processing mode.
type WCKind string

const (
	WCDso      WCKind = "dso"
	WCOverhead WCKind = "overhead"
)

// VendorAnalysisType selects the PEX vendor comparison window.
type VendorAnalysisType string

const (
	VendorMoM VendorAnalysisType = "mom"
	VendorQTD VendorAnalysisType = "qtd"
)

// PEX sub-metrics understood by the server.
const (
	SubMetricPEXBI     = "pex-bi"
	SubMetricPEXVendor = "pex-vendor"
)

// subOptions lists each metric's sub-metrics in display order. Selecting
// a metric resets the sub-metric to the first entry, or clears it when
// the metric has none.
var subOptions = map[Metric][]string{
	MetricPEX:            {SubMetricPEXBI, SubMetricPEXVendor},
	MetricWorkingCapital: {string(WCDso), string(WCOverhead)},
}

// SubOptions returns the sub-metrics defined for a metric, nil if none.
func SubOptions(m Metric) []string {
	return subOptions[m]
}

// AllMetrics returns every metric in display order.
func AllMetrics() []Metric {
	return []Metric{
		MetricSales,
		MetricPEX,
		MetricOE,
		MetricWorkingCapital,
		MetricInference,
		MetricPipeline,
	}
}

// IsCleaningMetric reports whether the metric routes to one of the
// session-based cleaning endpoints (as opposed to the pipeline or
// inference flows, which carry their own uploads).
func IsCleaningMetric(m Metric) bool {
	switch m {
	case MetricSales, MetricPEX, MetricOE, MetricWorkingCapital:
		return true
	}
	return false
}

// MetricSelection holds the active metric and its qualifiers.
type MetricSelection struct {
	Metric    Metric
	SubMetric string // empty when the metric has no sub-options
}

// WorkingCapitalKind derives the WC processing mode from the selection.
// The sub-metric is canonical; dso is the fallback for anything else,
// so the two can never disagree.
func (s MetricSelection) WorkingCapitalKind() WCKind {
	switch s.SubMetric {
	case string(WCOverhead):
		return WCOverhead
	default:
		return WCDso
	}
}

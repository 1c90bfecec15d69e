// Package workflow orchestrates the upload -> configure -> invoke ->
// progress -> download flows against the cleaning server. Controllers
// own their transient run state; durable selections live in the
// session store.
package workflow

import (
	"errors"
	"fmt"

	"cleandesk/internal/api"
	"cleandesk/internal/session"
)

// Precondition errors, caught before any network call.
var (
	ErrNoSession  = errors.New("no upload session: upload files first")
	ErrNoFiles    = errors.New("no files selected")
	ErrNoEndpoint = errors.New("selected metric has no cleaning endpoint")
	// ErrStaleRun marks a response that arrived after the session store
	// moved on (new upload, cleared selection, metric switch).
	ErrStaleRun = errors.New("run superseded by a newer session state")
)

// EndpointFor maps a metric selection to its cleaning endpoint. Pure
// function; metrics outside the cleaning family (inference, pipeline)
// return ErrNoEndpoint.
func EndpointFor(sel session.MetricSelection) (string, error) {
	switch sel.Metric {
	case session.MetricSales:
		return "clean_sales", nil
	case session.MetricOE:
		return "clean_oe", nil
	case session.MetricPEX:
		return "clean_pex", nil
	case session.MetricWorkingCapital:
		return "clean_wc", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrNoEndpoint, sel.Metric)
	}
}

// BuildCleanRequest assembles the request body for the selected
// metric: rule flags plus bulk_mode, with the metric-specific extras
// from the endpoint table.
func BuildCleanRequest(store *session.Store) api.CleanRequest {
	sel := store.Selection()
	req := api.CleanRequest{
		Rules:    store.Rules(),
		BulkMode: store.BulkMode(),
	}

	switch sel.Metric {
	case session.MetricPEX:
		req.SubMetric = sel.SubMetric
		req.VendorAnalysisType = string(store.VendorAnalysisType())
	case session.MetricWorkingCapital:
		req.Metric = string(sel.WorkingCapitalKind())
	}

	return req
}

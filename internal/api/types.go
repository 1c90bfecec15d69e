package api

import "encoding/json"

// UploadResponse is returned by POST /upload.
type UploadResponse struct {
	SessionID string `json:"session_id"`
}

// CleanRequest is the JSON body for the clean_* endpoints: the rule
// flags spread at the top level together with bulk_mode and any
// metric-specific fields.
type CleanRequest struct {
	Rules    map[string]bool
	BulkMode bool

	// PEX only
	SubMetric          string
	VendorAnalysisType string

	// Working capital only: "dso" or "overhead"
	Metric string
}

// MarshalJSON spreads the rule flags into the top-level object, the
// same wire shape the dashboard always sent.
func (r CleanRequest) MarshalJSON() ([]byte, error) {
	body := make(map[string]interface{}, len(r.Rules)+4)
	for name, on := range r.Rules {
		body[name] = on
	}
	body["bulk_mode"] = r.BulkMode
	if r.SubMetric != "" {
		body["sub_metric"] = r.SubMetric
	}
	if r.VendorAnalysisType != "" {
		body["vendorAnalysisType"] = r.VendorAnalysisType
	}
	if r.Metric != "" {
		body["metric"] = r.Metric
	}
	return json.Marshal(body)
}

// CleanResponse is returned by the clean_* endpoints.
type CleanResponse struct {
	CleanedFiles []string `json:"cleaned_files"`
	SessionID    string   `json:"session_id"`
	Type         string   `json:"type"`
	// Logs carries a warning when an optional post-step (grouping,
	// validation) failed but files were still produced.
	Logs string `json:"logs,omitempty"`
}

// TokenStats reports estimated token usage for one inference call.
type TokenStats struct {
	InputTokens  int `json:"input_tokens"`
	PromptTokens int `json:"prompt_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// ResultPayload is the mode-specific body of one ProcessResult.
type ResultPayload struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	// Pipeline and inference: generated document
	DocxFilename string `json:"docx_filename,omitempty"`
	DocxBase64   string `json:"docx_base64,omitempty"`

	// Inference only
	Response string      `json:"response,omitempty"`
	Stats    *TokenStats `json:"stats,omitempty"`
}

// ProcessResult is the per-file outcome record returned by the
// pipeline and inference endpoints. Immutable once received.
type ProcessResult struct {
	Filename string        `json:"filename"`
	Result   ResultPayload `json:"result"`
	Logs     string        `json:"logs"`
}

// BulkResponse wraps the bulk variants' result list.
type BulkResponse struct {
	BulkResults []ProcessResult `json:"bulk_results"`
}

// PreviewResponse is returned by GET /preview/{sid}.
type PreviewResponse struct {
	Filename       string                   `json:"filename"`
	Data           []map[string]interface{} `json:"data"`
	TotalRows      int                      `json:"total_rows"`
	PreviewType    string                   `json:"preview_type"`
	ProcessingType string                   `json:"processing_type"`
	SheetName      string                   `json:"sheet_name"`
}

// DedupeResponse is returned by POST /remove_duplicates/{sid}.
type DedupeResponse struct {
	Message      string   `json:"message"`
	CleanedFiles []string `json:"cleaned_files"`
	SessionID    string   `json:"session_id"`
	Type         string   `json:"type"`
}

// errorEnvelope is the server's error shape: {"error": "..."} with a
// non-2xx status. The message is surfaced verbatim.
type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

package pipeline

// Status classifies how a pipeline run ended. It is a tagged variant
// rather than an error code so callers can tell "succeeded but low
// confidence" apart from "succeeded cleanly".
type Status string

const (
	// StatusSuccess means direct extraction (or post-OCR re-extraction)
	// cleared the quality threshold.
	StatusSuccess Status = "success"

	// StatusLowConfidenceSuccess means OCR ran and a text artifact was
	// produced, but the result is still below the threshold. The text
	// is returned anyway; OCR having run is the best achievable result.
	StatusLowConfidenceSuccess Status = "low_confidence_success"

	// StatusToolMissing means direct extraction was insufficient and no
	// OCR backend was available to fall back to.
	StatusToolMissing Status = "tool_missing"

	// StatusOCRFailed means every available OCR backend was attempted
	// and failed.
	StatusOCRFailed Status = "ocr_failed"

	// StatusExtractionFailed means re-extraction from the OCR'd PDF
	// failed to produce an artifact.
	StatusExtractionFailed Status = "extraction_failed"
)

// OK reports whether the status represents a usable text artifact.
func (s Status) OK() bool {
	return s == StatusSuccess || s == StatusLowConfidenceSuccess
}

// Request describes one extraction job. Immutable during processing.
type Request struct {
	SourcePDF  string // PDF to extract from
	DestText   string // final text artifact path
	Lang       string // OCR language hint (empty = backend default)
	Threshold  int    // min trimmed chars; zero means extract.DefaultThreshold
	KeepOCRPDF bool   // retain the intermediate OCR PDF next to DestText
}

// Outcome is produced exactly once per Request.
type Outcome struct {
	Status     Status `json:"status" yaml:"status"`
	TextLen    int    `json:"text_len" yaml:"text_len"` // trimmed char count of the final text
	TextPath   string `json:"text_path" yaml:"text_path"`
	OCRPDFPath string `json:"ocr_pdf_path,omitempty" yaml:"ocr_pdf_path,omitempty"` // set only when retention was requested and OCR ran
	OCRBackend string `json:"ocr_backend,omitempty" yaml:"ocr_backend,omitempty"`   // backend that produced the artifact, empty when no OCR ran
	Pages      int    `json:"pages,omitempty" yaml:"pages,omitempty"`               // advisory page count, 0 when preflight unavailable
	RunID      string `json:"run_id" yaml:"run_id"`
}

// Package pipeline sequences direct extraction, the quality gate, OCR
// fallback, and re-extraction, and decides the final per-item outcome.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/textsift/textsift/internal/extract"
	"github.com/textsift/textsift/internal/ocr"
	"github.com/textsift/textsift/internal/pdfinfo"
	"github.com/textsift/textsift/internal/tools"
)

// ErrSourceMissing means the source PDF does not exist. This is rejected
// before any extraction attempt and classified as a usage error, not a
// processing failure.
var ErrSourceMissing = errors.New("source PDF does not exist")

// Orchestrator drives one Request through the fallback pipeline.
type Orchestrator struct {
	Extractor extract.Extractor
	Selector  ocr.Selector
	Prober    tools.Prober                   // nil means tools.PathProber
	Pages     func(path string) (int, error) // nil means pdfinfo.PageCount; advisory only
	Logger    *slog.Logger
}

func (o Orchestrator) prober() tools.Prober {
	if o.Prober == nil {
		return tools.PathProber{}
	}
	return o.Prober
}

func (o Orchestrator) threshold(req Request) int {
	if req.Threshold <= 0 {
		return extract.DefaultThreshold
	}
	return req.Threshold
}

// Process runs the pipeline for one request. An error is returned only
// for usage-class problems (missing source, unusable destination);
// processing failures are reported through Outcome.Status.
func (o Orchestrator) Process(ctx context.Context, req Request) (*Outcome, error) {
	log := o.Logger
	if log == nil {
		log = slog.Default()
	}

	runID := uuid.New().String()
	log = log.With("run_id", runID, "file", filepath.Base(req.SourcePDF))

	if _, err := os.Stat(req.SourcePDF); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSourceMissing, req.SourcePDF)
	}
	if err := os.MkdirAll(filepath.Dir(req.DestText), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	out := &Outcome{TextPath: req.DestText, RunID: runID}

	// Advisory preflight. Never gates extraction.
	pages := o.Pages
	if pages == nil {
		pages = pdfinfo.PageCount
	}
	if n, err := pages(req.SourcePDF); err != nil {
		log.Debug("page count preflight failed", "error", err)
	} else {
		out.Pages = n
		log.Debug("page count", "pages", n)
	}

	// Direct pass. Failure to even produce an artifact is evidence that
	// OCR is needed, so it is logged and treated as empty text.
	text := ""
	if err := o.Extractor.Extract(ctx, req.SourcePDF, req.DestText); err != nil {
		log.Warn("direct extraction failed, will try OCR", "error", err)
	} else if t, err := extract.ReadArtifact(req.DestText); err != nil {
		log.Warn("could not read extracted text, will try OCR", "error", err)
	} else {
		text = t
	}

	threshold := o.threshold(req)
	if extract.Sufficient(text, threshold) {
		out.Status = StatusSuccess
		out.TextLen = extract.TrimmedLen(text)
		log.Info("direct extraction sufficient", "chars", out.TextLen)
		return out, nil
	}
	log.Info("direct extraction insufficient, falling back to OCR",
		"chars", extract.TrimmedLen(text), "threshold", threshold)

	if !o.Selector.AnyAvailable(o.prober()) {
		out.Status = StatusToolMissing
		out.TextLen = extract.TrimmedLen(text)
		log.Error("no OCR backend available")
		return out, nil
	}

	ocrPDF, cleanup, err := o.ocrTarget(req)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	backend, err := o.Selector.Run(ctx, o.prober(), req.SourcePDF, ocrPDF, req.Lang)
	if err != nil {
		if errors.Is(err, ocr.ErrNoBackends) {
			// Backends disappeared between the probe and the attempt.
			out.Status = StatusToolMissing
		} else {
			out.Status = StatusOCRFailed
		}
		out.TextLen = extract.TrimmedLen(text)
		log.Error("ocr failed", "error", err)
		return out, nil
	}
	out.OCRBackend = backend
	if req.KeepOCRPDF {
		out.OCRPDFPath = ocrPDF
	}

	// Re-extract from the OCR'd PDF, overwriting the low-quality first pass.
	if err := o.Extractor.Extract(ctx, ocrPDF, req.DestText); err != nil {
		out.Status = StatusExtractionFailed
		log.Error("extraction failed after OCR", "error", err)
		return out, nil
	}

	text, err = extract.ReadArtifact(req.DestText)
	if err != nil {
		out.Status = StatusExtractionFailed
		log.Error("could not read text after OCR", "error", err)
		return out, nil
	}

	out.TextLen = extract.TrimmedLen(text)
	if extract.Sufficient(text, threshold) {
		out.Status = StatusSuccess
		log.Info("ocr extraction sufficient", "backend", backend, "chars", out.TextLen)
	} else {
		out.Status = StatusLowConfidenceSuccess
		log.Warn("text still below threshold after OCR",
			"backend", backend, "chars", out.TextLen, "threshold", threshold)
	}
	return out, nil
}

// ocrTarget picks where the OCR'd PDF goes. With retention requested it
// is written directly to its retained sibling path; otherwise it lives
// in a fresh private temp dir that cleanup removes.
func (o Orchestrator) ocrTarget(req Request) (path string, cleanup func(), err error) {
	if req.KeepOCRPDF {
		stem := strings.TrimSuffix(req.DestText, filepath.Ext(req.DestText))
		return stem + ".ocr.pdf", func() {}, nil
	}

	tmpDir, err := os.MkdirTemp("", "textsift-ocr-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	return filepath.Join(tmpDir, "ocr.pdf"), func() { _ = os.RemoveAll(tmpDir) }, nil
}

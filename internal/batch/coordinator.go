package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/textsift/textsift/internal/pipeline"
)

// Options carries per-run extraction settings shared by every item.
type Options struct {
	Lang       string
	Threshold  int
	KeepOCRPDF bool
}

// ItemResult records one item's outcome for the batch report.
type ItemResult struct {
	Input   string          `json:"input" yaml:"input"`
	Output  string          `json:"output" yaml:"output"`
	Status  pipeline.Status `json:"status" yaml:"status"`
	TextLen int             `json:"text_len" yaml:"text_len"`
	Pages   int             `json:"pages,omitempty" yaml:"pages,omitempty"`
	Error   string          `json:"error,omitempty" yaml:"error,omitempty"`
}

// Summary aggregates a batch run.
type Summary struct {
	Total    int          `json:"total" yaml:"total"`
	Failures int          `json:"failures" yaml:"failures"`
	Items    []ItemResult `json:"items" yaml:"items"`
}

// Coordinator drives the pipeline over a resolved working set, one item
// at a time in input order. Per-item failures are logged with the
// offending file and folded into the failure tally; one bad PDF must
// not block the rest.
type Coordinator struct {
	Orchestrator pipeline.Orchestrator
	Logger       *slog.Logger
}

// Run processes files sequentially, writing <stem>.txt for each into
// outDir (created if missing). Context cancellation stops the batch
// between items.
func (c Coordinator) Run(ctx context.Context, files []string, outDir string, opts Options) (*Summary, error) {
	log := c.Logger
	if log == nil {
		log = slog.Default()
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	sum := &Summary{Total: len(files)}
	for i, pdf := range files {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		outPath := TextPath(pdf, outDir)
		log.Info("processing", "file", filepath.Base(pdf), "item", i+1, "of", len(files))

		item := ItemResult{Input: pdf, Output: outPath}
		outcome, err := c.Orchestrator.Process(ctx, pipeline.Request{
			SourcePDF:  pdf,
			DestText:   outPath,
			Lang:       opts.Lang,
			Threshold:  opts.Threshold,
			KeepOCRPDF: opts.KeepOCRPDF,
		})
		switch {
		case err != nil:
			item.Error = err.Error()
			sum.Failures++
			log.Error("item failed", "file", filepath.Base(pdf), "error", err)
		case !outcome.Status.OK():
			item.Status = outcome.Status
			item.TextLen = outcome.TextLen
			item.Pages = outcome.Pages
			sum.Failures++
			log.Error("item failed", "file", filepath.Base(pdf), "status", outcome.Status)
		default:
			item.Status = outcome.Status
			item.TextLen = outcome.TextLen
			item.Pages = outcome.Pages
		}
		sum.Items = append(sum.Items, item)
	}

	if sum.Failures > 0 {
		log.Warn("completed with failures", "failures", sum.Failures, "total", sum.Total)
	}
	return sum, nil
}

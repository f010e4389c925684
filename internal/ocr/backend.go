// Package ocr drives external OCR tools that produce a searchable PDF
// from a scanned one. Two backends are supported: ocrmypdf (preferred)
// and a direct tesseract invocation as fallback.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/textsift/textsift/internal/runner"
	"github.com/textsift/textsift/internal/tools"
)

// Default executable names, overridable via config.
const (
	DefaultOCRmyPDFBin  = "ocrmypdf"
	DefaultTesseractBin = "tesseract"
)

// DefaultOptimize is the ocrmypdf --optimize level used when none is configured.
const DefaultOptimize = 3

// Backend turns a scanned PDF into one with a text layer.
type Backend interface {
	// Name identifies the backend in logs and outcomes.
	Name() string

	// Available reports whether the backend's executable resolves.
	Available(p tools.Prober) bool

	// Run OCRs src into dst, honoring an optional language hint.
	// Success means the process exited zero AND dst exists.
	Run(ctx context.Context, src, dst, lang string) error
}

// OCRmyPDF is the primary backend. It forces OCR over any pre-existing
// text layer, since reaching this point means that layer was unusable.
type OCRmyPDF struct {
	Bin      string        // executable name or path; empty means ocrmypdf
	Optimize int           // --optimize level; zero means DefaultOptimize
	Exec     runner.Runner // nil means runner.Exec
	Logger   *slog.Logger
}

func (o OCRmyPDF) bin() string {
	if o.Bin == "" {
		return DefaultOCRmyPDFBin
	}
	return o.Bin
}

func (o OCRmyPDF) Name() string { return "ocrmypdf" }

func (o OCRmyPDF) Available(p tools.Prober) bool {
	return tools.Available(p, o.bin())
}

func (o OCRmyPDF) Run(ctx context.Context, src, dst, lang string) error {
	optimize := o.Optimize
	if optimize == 0 {
		optimize = DefaultOptimize
	}

	args := []string{
		"--force-ocr",
		"--optimize", strconv.Itoa(optimize),
		"--output-type", "pdf",
	}
	if lang != "" {
		args = append(args, "-l", lang)
	}
	args = append(args, src, dst)

	run := o.Exec
	if run == nil {
		run = runner.Exec{Logger: o.Logger}
	}
	if _, _, err := run.Run(ctx, o.bin(), args...); err != nil {
		return fmt.Errorf("%s failed: %w", o.bin(), err)
	}
	return checkArtifact(o.bin(), dst)
}

// Tesseract is the secondary backend, invoking the OCR engine directly
// in its native PDF-output mode.
type Tesseract struct {
	Bin    string        // executable name or path; empty means tesseract
	Exec   runner.Runner // nil means runner.Exec
	Logger *slog.Logger
}

func (t Tesseract) bin() string {
	if t.Bin == "" {
		return DefaultTesseractBin
	}
	return t.Bin
}

func (t Tesseract) Name() string { return "tesseract" }

func (t Tesseract) Available(p tools.Prober) bool {
	return tools.Available(p, t.bin())
}

func (t Tesseract) Run(ctx context.Context, src, dst, lang string) error {
	// tesseract appends .pdf to the output base itself.
	outBase := strings.TrimSuffix(dst, ".pdf")

	args := []string{src, outBase}
	if lang != "" {
		args = append(args, "-l", lang)
	}
	args = append(args, "pdf")

	run := t.Exec
	if run == nil {
		run = runner.Exec{Logger: t.Logger}
	}
	if _, _, err := run.Run(ctx, t.bin(), args...); err != nil {
		return fmt.Errorf("%s failed: %w", t.bin(), err)
	}
	return checkArtifact(t.bin(), dst)
}

func checkArtifact(bin, dst string) error {
	if _, err := os.Stat(dst); err != nil {
		return fmt.Errorf("%s did not create expected output: %w", bin, err)
	}
	return nil
}

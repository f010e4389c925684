// Package extract runs direct PDF text extraction via an external tool
// and judges whether the result carries enough content.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/textsift/textsift/internal/runner"
)

// DefaultBin is the direct-extraction executable used when none is configured.
const DefaultBin = "pdftotext"

// Extractor invokes the direct-extraction tool against a PDF.
type Extractor struct {
	Bin    string        // executable name or path; empty means pdftotext
	Run    runner.Runner // nil means runner.Exec
	Logger *slog.Logger
}

func (e Extractor) bin() string {
	if e.Bin == "" {
		return DefaultBin
	}
	return e.Bin
}

func (e Extractor) runner() runner.Runner {
	if e.Run == nil {
		return runner.Exec{Logger: e.Logger}
	}
	return e.Run
}

// Extract writes the PDF's embedded text to outTxt. Success means the
// process exited zero AND the artifact exists; content quality is judged
// separately by Sufficient. The parent directory of outTxt must exist.
func (e Extractor) Extract(ctx context.Context, pdfPath, outTxt string) error {
	if _, _, err := e.runner().Run(ctx, e.bin(), pdfPath, outTxt); err != nil {
		return fmt.Errorf("%s failed: %w", e.bin(), err)
	}
	if _, err := os.Stat(outTxt); err != nil {
		return fmt.Errorf("%s did not create expected output: %w", e.bin(), err)
	}
	return nil
}

// ReadArtifact reads an extracted text file, dropping invalid UTF-8 bytes
// the way a lossy decode would.
func ReadArtifact(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read extracted text: %w", err)
	}
	return strings.ToValidUTF8(string(data), ""), nil
}

// Package batch resolves a working set of PDFs and drives the fallback
// pipeline over it sequentially, tallying per-item outcomes.
package batch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrEmptyBatch means no PDFs matched the directory or glob. A usage
// error, not a no-op success.
var ErrEmptyBatch = errors.New("no PDFs found to process")

// Resolve builds the working set: the directory listing filtered by
// case-insensitive .pdf suffix in lexicographic order, then glob matches,
// deduplicated preserving first-seen order.
func Resolve(inputDir, glob string) ([]string, error) {
	var pdfs []string

	if inputDir != "" {
		entries, err := os.ReadDir(inputDir)
		if err != nil {
			return nil, fmt.Errorf("failed to read input directory: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if strings.HasSuffix(strings.ToLower(e.Name()), ".pdf") {
				pdfs = append(pdfs, filepath.Join(inputDir, e.Name()))
			}
		}
	}

	if glob != "" {
		matches, err := filepath.Glob(glob)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", glob, err)
		}
		pdfs = append(pdfs, matches...)
	}

	pdfs = Dedupe(pdfs)
	if len(pdfs) == 0 {
		return nil, ErrEmptyBatch
	}
	return pdfs, nil
}

// Dedupe removes duplicates, preserving first-seen order.
func Dedupe(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	ordered := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		ordered = append(ordered, p)
	}
	return ordered
}

// OutputDir picks the directory for text outputs: the explicit choice,
// else the input directory, else the current working directory.
func OutputDir(explicit, inputDir string) string {
	if explicit != "" {
		return explicit
	}
	if inputDir != "" {
		return inputDir
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// TextPath derives the output text path for a PDF inside outDir.
func TextPath(pdf, outDir string) string {
	base := filepath.Base(pdf)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outDir, stem+".txt")
}

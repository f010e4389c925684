package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/textsift/textsift/internal/tools"
)

// ErrNoBackends means no OCR backend was available to attempt. Callers
// distinguish this capability-missing case from backends that were
// available but failed (a processing failure).
var ErrNoBackends = errors.New("no OCR backend available")

// Selector tries backends in a fixed preference order.
type Selector struct {
	Backends []Backend
	Logger   *slog.Logger
}

// NewSelector returns a Selector with the standard order: ocrmypdf first,
// tesseract as fallback.
func NewSelector(primary OCRmyPDF, secondary Tesseract, log *slog.Logger) Selector {
	return Selector{
		Backends: []Backend{primary, secondary},
		Logger:   log,
	}
}

// Run OCRs src into dst with the first backend that is available and
// succeeds. Returns the name of the backend that produced the artifact.
// Returns ErrNoBackends when no backend was available; otherwise the
// last attempted backend's error.
func (s Selector) Run(ctx context.Context, p tools.Prober, src, dst, lang string) (string, error) {
	log := s.Logger
	if log == nil {
		log = slog.Default()
	}

	var lastErr error
	attempted := 0

	for _, b := range s.Backends {
		if !b.Available(p) {
			log.Debug("ocr backend unavailable", "backend", b.Name())
			continue
		}
		attempted++

		log.Info("running ocr", "backend", b.Name(), "src", src)
		if err := b.Run(ctx, src, dst, lang); err != nil {
			log.Warn("ocr backend failed", "backend", b.Name(), "error", err)
			lastErr = err
			continue
		}
		return b.Name(), nil
	}

	if attempted == 0 {
		return "", ErrNoBackends
	}
	return "", fmt.Errorf("all attempted OCR backends failed: %w", lastErr)
}

// AnyAvailable reports whether at least one backend could be attempted.
func (s Selector) AnyAvailable(p tools.Prober) bool {
	for _, b := range s.Backends {
		if b.Available(p) {
			return true
		}
	}
	return false
}

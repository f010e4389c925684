// Package watch feeds newly arriving PDFs from a directory into the
// fallback pipeline. Events are debounced and each file is polled for
// size stability before processing, so half-copied scans are not picked
// up mid-write.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/textsift/textsift/internal/batch"
	"github.com/textsift/textsift/internal/pipeline"
)

// Defaults used when the corresponding field is zero.
const (
	DefaultDebounce          = 500 * time.Millisecond
	DefaultStabilityInterval = 1 * time.Second
	DefaultStabilityAttempts = 10
)

// Watcher processes PDFs as they appear in Dir, sequentially in arrival
// order. Item failures are logged and tallied, never stop the watcher.
type Watcher struct {
	Dir          string
	OutDir       string
	Opts         batch.Options
	Orchestrator pipeline.Orchestrator

	Debounce          time.Duration // coalesce bursts of fs events
	StabilityInterval time.Duration // spacing between size polls
	StabilityAttempts uint          // size polls before giving up
	InitialScan       bool          // also process PDFs already present

	Logger *slog.Logger

	mu sync.Mutex // guards Opts and Orchestrator against Reconfigure
}

// Reconfigure swaps the extraction settings and pipeline wiring while
// the watcher is running. Intended for config hot-reload callbacks.
func (w *Watcher) Reconfigure(opts batch.Options, orch pipeline.Orchestrator) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Opts = opts
	w.Orchestrator = orch
}

func (w *Watcher) snapshot() (batch.Options, pipeline.Orchestrator) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.Opts, w.Orchestrator
}

func (w *Watcher) debounce() time.Duration {
	if w.Debounce <= 0 {
		return DefaultDebounce
	}
	return w.Debounce
}

func (w *Watcher) stabilityInterval() time.Duration {
	if w.StabilityInterval <= 0 {
		return DefaultStabilityInterval
	}
	return w.StabilityInterval
}

func (w *Watcher) stabilityAttempts() uint {
	if w.StabilityAttempts == 0 {
		return DefaultStabilityAttempts
	}
	return w.StabilityAttempts
}

// Run watches until ctx is cancelled, then returns the tally of
// everything processed so far.
func (w *Watcher) Run(ctx context.Context) (*batch.Summary, error) {
	log := w.Logger
	if log == nil {
		log = slog.Default()
	}

	if err := os.MkdirAll(w.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.Dir); err != nil {
		return nil, fmt.Errorf("failed to watch %s: %w", w.Dir, err)
	}

	arrivals := make(chan string, 256)
	go w.eventLoop(ctx, fw, arrivals, log)

	sum := &batch.Summary{}

	if w.InitialScan {
		existing, err := batch.Resolve(w.Dir, "")
		if err != nil && !errors.Is(err, batch.ErrEmptyBatch) {
			return nil, err
		}
		for _, p := range existing {
			if isRetainedArtifact(p) {
				continue
			}
			w.processOne(ctx, p, sum, log)
		}
	}

	log.Info("watching for PDFs", "dir", w.Dir, "out", w.OutDir)
	for {
		select {
		case <-ctx.Done():
			log.Info("watcher stopping", "processed", sum.Total, "failures", sum.Failures)
			return sum, nil
		case path := <-arrivals:
			if err := w.waitStable(ctx, path); err != nil {
				if ctx.Err() != nil {
					continue
				}
				log.Warn("file never stabilized, skipping", "file", filepath.Base(path), "error", err)
				continue
			}
			w.processOne(ctx, path, sum, log)
		}
	}
}

// eventLoop turns raw fsnotify events into debounced arrival paths. The
// pending set and the debounce timer are owned by this goroutine alone;
// flushing happens via the timer's channel in the same select loop.
func (w *Watcher) eventLoop(ctx context.Context, fw *fsnotify.Watcher, arrivals chan<- string, log *slog.Logger) {
	pending := make(map[string]struct{})

	timer := time.NewTimer(w.debounce())
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	flush := func() {
		for p := range pending {
			select {
			case arrivals <- p:
			default:
				log.Warn("arrival queue full, dropping event", "file", p)
			}
			delete(pending, p)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if !isPDF(ev.Name) || isRetainedArtifact(ev.Name) ||
				ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			pending[ev.Name] = struct{}{}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce())
		case <-timer.C:
			flush()
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			log.Error("watcher error", "error", err)
		}
	}
}

// waitStable polls the file's size until two consecutive polls agree.
func (w *Watcher) waitStable(ctx context.Context, path string) error {
	var lastSize int64 = -1
	return retry.Do(
		func() error {
			fi, err := os.Stat(path)
			if err != nil {
				return err
			}
			if fi.Size() != lastSize {
				lastSize = fi.Size()
				return fmt.Errorf("size still changing: %d", fi.Size())
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(w.stabilityAttempts()),
		retry.Delay(w.stabilityInterval()),
		retry.DelayType(retry.FixedDelay),
	)
}

func (w *Watcher) processOne(ctx context.Context, pdf string, sum *batch.Summary, log *slog.Logger) {
	opts, orch := w.snapshot()
	outPath := batch.TextPath(pdf, w.OutDir)
	log.Info("processing", "file", filepath.Base(pdf))

	sum.Total++
	item := batch.ItemResult{Input: pdf, Output: outPath}
	outcome, err := orch.Process(ctx, pipeline.Request{
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
		sum.Failures++
		log.Error("item failed", "file", filepath.Base(pdf), "status", outcome.Status)
	default:
		item.Status = outcome.Status
		item.TextLen = outcome.TextLen
		item.Pages = outcome.Pages
	}
	sum.Items = append(sum.Items, item)
}

func isPDF(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".pdf")
}

// isRetainedArtifact reports whether path looks like a retained OCR
// output. These are skipped so a watcher whose output directory is the
// watched directory does not feed on its own artifacts.
func isRetainedArtifact(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".ocr.pdf")
}

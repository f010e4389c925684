package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/textsift/textsift/internal/batch"
	"github.com/textsift/textsift/internal/extract"
	"github.com/textsift/textsift/internal/ocr"
	"github.com/textsift/textsift/internal/pipeline"
	"github.com/textsift/textsift/internal/runner"
	"github.com/textsift/textsift/internal/tools"
)

func TestIsPDF(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"scan.pdf", true},
		{"SCAN.PDF", true},
		{"dir/scan.Pdf", true},
		{"scan.pdf.part", false},
		{"notes.txt", false},
	}
	for _, tt := range tests {
		if got := isPDF(tt.path); got != tt.want {
			t.Errorf("isPDF(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestIsRetainedArtifact(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"scan.ocr.pdf", true},
		{"dir/SCAN.OCR.PDF", true},
		{"scan.pdf", false},
		{"ocr.pdf", false},
	}
	for _, tt := range tests {
		if got := isRetainedArtifact(tt.path); got != tt.want {
			t.Errorf("isRetainedArtifact(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

// newTestWatcher wires a watcher around one mock runner with fast
// debounce and stability settings.
func newTestWatcher(inDir, outDir string, mock *runner.Mock) *Watcher {
	return &Watcher{
		Dir:    inDir,
		OutDir: outDir,
		Orchestrator: pipeline.Orchestrator{
			Extractor: extract.Extractor{Run: mock},
			Selector:  ocr.NewSelector(ocr.OCRmyPDF{Exec: mock}, ocr.Tesseract{Exec: mock}, nil),
			Prober:    tools.MockProber{Present: map[string]string{"pdftotext": "/usr/bin/pdftotext"}},
			Pages:     func(string) (int, error) { return 0, errors.New("skip") },
		},
		Debounce:          20 * time.Millisecond,
		StabilityInterval: 20 * time.Millisecond,
		StabilityAttempts: 5,
	}
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, d time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(25 * time.Millisecond)
	}
	return cond()
}

func TestWaitStable(t *testing.T) {
	t.Run("settles once size stops changing", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "f.pdf")
		if err := os.WriteFile(path, []byte("stable"), 0644); err != nil {
			t.Fatal(err)
		}

		w := Watcher{StabilityInterval: 10 * time.Millisecond, StabilityAttempts: 5}
		if err := w.waitStable(context.Background(), path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("gives up on a missing file", func(t *testing.T) {
		w := Watcher{StabilityInterval: 5 * time.Millisecond, StabilityAttempts: 3}
		err := w.waitStable(context.Background(), filepath.Join(t.TempDir(), "ghost.pdf"))
		if err == nil {
			t.Fatal("expected error for missing file")
		}
	})
}

func TestWatcher_ProcessesArrivingPDF(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	longText := strings.Repeat("page text ", 30)

	mock := &runner.Mock{
		Handle: func(ctx context.Context, name string, args []string) ([]byte, []byte, error) {
			return nil, nil, os.WriteFile(args[1], []byte(longText), 0644)
		},
	}
	w := Watcher{
		Dir:    inDir,
		OutDir: outDir,
		Orchestrator: pipeline.Orchestrator{
			Extractor: extract.Extractor{Run: mock},
			Selector:  ocr.NewSelector(ocr.OCRmyPDF{Exec: mock}, ocr.Tesseract{Exec: mock}, nil),
			Prober:    tools.MockProber{Present: map[string]string{"pdftotext": "/usr/bin/pdftotext"}},
			Pages:     func(string) (int, error) { return 0, errors.New("skip") },
		},
		Debounce:          20 * time.Millisecond,
		StabilityInterval: 20 * time.Millisecond,
		StabilityAttempts: 5,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan *struct {
		total, failures int
	})
	go func() {
		sum, err := w.Run(ctx)
		if err != nil {
			t.Errorf("watcher error: %v", err)
			done <- nil
			return
		}
		done <- &struct{ total, failures int }{sum.Total, sum.Failures}
	}()

	// Give the watcher a moment to register, then drop a PDF in.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(inDir, "scan.pdf"), []byte("%PDF-1.4"), 0644); err != nil {
		t.Fatal(err)
	}

	// Wait for the output artifact to show up.
	outPath := filepath.Join(outDir, "scan.txt")
	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(outPath); err == nil {
			break
		}
		if time.Now().After(deadline) {
			cancel()
			t.Fatal("output artifact never appeared")
		}
		time.Sleep(25 * time.Millisecond)
	}

	cancel()
	sum := <-done
	if sum == nil {
		return
	}
	if sum.total != 1 || sum.failures != 0 {
		t.Errorf("summary = %d/%d failures, want 1/0", sum.total, sum.failures)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if string(data) != longText {
		t.Error("output content mismatch")
	}
}

func TestWatcher_InitialScan(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	longText := strings.Repeat("page text ", 30)

	if err := os.WriteFile(filepath.Join(inDir, "old.pdf"), []byte("%PDF-1.4"), 0644); err != nil {
		t.Fatal(err)
	}

	mock := &runner.Mock{
		Handle: func(ctx context.Context, name string, args []string) ([]byte, []byte, error) {
			return nil, nil, os.WriteFile(args[1], []byte(longText), 0644)
		},
	}
	w := Watcher{
		Dir:    inDir,
		OutDir: outDir,
		Orchestrator: pipeline.Orchestrator{
			Extractor: extract.Extractor{Run: mock},
			Selector:  ocr.NewSelector(ocr.OCRmyPDF{Exec: mock}, ocr.Tesseract{Exec: mock}, nil),
			Prober:    tools.MockProber{Present: map[string]string{"pdftotext": "/usr/bin/pdftotext"}},
			Pages:     func(string) (int, error) { return 0, errors.New("skip") },
		},
		Debounce:          20 * time.Millisecond,
		StabilityInterval: 20 * time.Millisecond,
		StabilityAttempts: 5,
		InitialScan:       true,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	outPath := filepath.Join(outDir, "old.txt")
	go func() {
		for {
			if _, err := os.Stat(outPath); err == nil {
				cancel()
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(25 * time.Millisecond):
			}
		}
	}()

	sum, err := w.Run(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Total != 1 {
		t.Errorf("Total = %d, want 1", sum.Total)
	}
	if _, err := os.Stat(outPath); err != nil {
		t.Errorf("initial-scan output missing: %v", err)
	}
}

// Rapid bursts of create/write events across many files must coalesce
// cleanly; run with -race to verify the debounce flush never touches
// the pending set from another goroutine.
func TestWatcher_EventBursts(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	longText := strings.Repeat("page text ", 30)

	mock := &runner.Mock{
		Handle: func(ctx context.Context, name string, args []string) ([]byte, []byte, error) {
			return nil, nil, os.WriteFile(args[1], []byte(longText), 0644)
		},
	}
	w := newTestWatcher(inDir, outDir, mock)
	w.Debounce = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := w.Run(ctx); err != nil {
			t.Errorf("watcher error: %v", err)
		}
	}()

	time.Sleep(100 * time.Millisecond)

	const files = 20
	for round := 0; round < 10; round++ {
		for i := 0; i < files; i++ {
			name := filepath.Join(inDir, fmt.Sprintf("burst%02d.pdf", i))
			if err := os.WriteFile(name, []byte(strings.Repeat("%PDF-1.4", round+1)), 0644); err != nil {
				t.Fatal(err)
			}
		}
		time.Sleep(2 * time.Millisecond)
	}

	ok := waitFor(t, 10*time.Second, func() bool {
		for i := 0; i < files; i++ {
			out := filepath.Join(outDir, fmt.Sprintf("burst%02d.txt", i))
			if _, err := os.Stat(out); err != nil {
				return false
			}
		}
		return true
	})
	cancel()
	<-done

	if !ok {
		t.Fatal("not every burst file produced an output")
	}
}

// A PDF overwritten after it was already processed must be picked up
// again; the watcher keeps no permanent memory of past arrivals.
func TestWatcher_ReprocessesRewrittenPDF(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	firstText := strings.Repeat("first version ", 20)
	secondText := strings.Repeat("second version ", 20)

	var content atomic.Value
	content.Store(firstText)
	mock := &runner.Mock{
		Handle: func(ctx context.Context, name string, args []string) ([]byte, []byte, error) {
			return nil, nil, os.WriteFile(args[1], []byte(content.Load().(string)), 0644)
		},
	}
	w := newTestWatcher(inDir, outDir, mock)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan *batch.Summary)
	go func() {
		sum, err := w.Run(ctx)
		if err != nil {
			t.Errorf("watcher error: %v", err)
		}
		done <- sum
	}()

	time.Sleep(100 * time.Millisecond)
	pdf := filepath.Join(inDir, "scan.pdf")
	outPath := filepath.Join(outDir, "scan.txt")

	if err := os.WriteFile(pdf, []byte("%PDF-1.4 v1"), 0644); err != nil {
		t.Fatal(err)
	}
	if !waitFor(t, 5*time.Second, func() bool {
		data, err := os.ReadFile(outPath)
		return err == nil && string(data) == firstText
	}) {
		cancel()
		t.Fatal("first pass output never appeared")
	}

	// Rescan arrives: same name, new bytes.
	content.Store(secondText)
	if err := os.WriteFile(pdf, []byte("%PDF-1.4 v2 rescanned"), 0644); err != nil {
		t.Fatal(err)
	}
	if !waitFor(t, 5*time.Second, func() bool {
		data, err := os.ReadFile(outPath)
		return err == nil && string(data) == secondText
	}) {
		cancel()
		t.Fatal("rewritten PDF was never reprocessed")
	}

	cancel()
	sum := <-done
	if sum != nil && sum.Total < 2 {
		t.Errorf("Total = %d, want at least 2 (initial + rescan)", sum.Total)
	}
}

// Reconfigure mid-run swaps the pipeline wiring for later items, the
// way a config hot-reload does.
func TestWatcher_Reconfigure(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	oldText := strings.Repeat("old tool ", 30)
	newText := strings.Repeat("new tool ", 30)

	oldMock := &runner.Mock{
		Handle: func(ctx context.Context, name string, args []string) ([]byte, []byte, error) {
			return nil, nil, os.WriteFile(args[1], []byte(oldText), 0644)
		},
	}
	newMock := &runner.Mock{
		Handle: func(ctx context.Context, name string, args []string) ([]byte, []byte, error) {
			return nil, nil, os.WriteFile(args[1], []byte(newText), 0644)
		},
	}
	w := newTestWatcher(inDir, outDir, oldMock)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := w.Run(ctx); err != nil {
			t.Errorf("watcher error: %v", err)
		}
	}()

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(inDir, "before.pdf"), []byte("%PDF-1.4"), 0644); err != nil {
		t.Fatal(err)
	}
	if !waitFor(t, 5*time.Second, func() bool {
		data, err := os.ReadFile(filepath.Join(outDir, "before.txt"))
		return err == nil && string(data) == oldText
	}) {
		cancel()
		t.Fatal("pre-reconfigure output never appeared")
	}

	w.Reconfigure(batch.Options{Lang: "deu"}, pipeline.Orchestrator{
		Extractor: extract.Extractor{Run: newMock},
		Selector:  ocr.NewSelector(ocr.OCRmyPDF{Exec: newMock}, ocr.Tesseract{Exec: newMock}, nil),
		Prober:    tools.MockProber{Present: map[string]string{"pdftotext": "/usr/bin/pdftotext"}},
		Pages:     func(string) (int, error) { return 0, errors.New("skip") },
	})

	if err := os.WriteFile(filepath.Join(inDir, "after.pdf"), []byte("%PDF-1.4"), 0644); err != nil {
		t.Fatal(err)
	}
	if !waitFor(t, 5*time.Second, func() bool {
		data, err := os.ReadFile(filepath.Join(outDir, "after.txt"))
		return err == nil && string(data) == newText
	}) {
		cancel()
		t.Fatal("post-reconfigure output never appeared")
	}

	cancel()
	<-done

	if oldMock.CallCount("pdftotext") != 1 {
		t.Errorf("old runner invoked %d times after swap, want 1", oldMock.CallCount("pdftotext"))
	}
	if newMock.CallCount("pdftotext") != 1 {
		t.Errorf("new runner invoked %d times, want 1", newMock.CallCount("pdftotext"))
	}
}

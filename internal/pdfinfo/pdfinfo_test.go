package pdfinfo

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPageCount(t *testing.T) {
	testPDF := filepath.Join("..", "..", "testdata", "sample.pdf")
	if _, err := os.Stat(testPDF); os.IsNotExist(err) {
		t.Skip("test fixture not found")
	}

	count, err := PageCount(testPDF)
	if err != nil {
		t.Fatalf("PageCount failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 page, got %d", count)
	}
}

func TestPageCount_MissingFile(t *testing.T) {
	_, err := PageCount(filepath.Join(t.TempDir(), "nope.pdf"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestPageCount_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.pdf")
	if err := os.WriteFile(path, []byte("not a pdf at all"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := PageCount(path); err == nil {
		t.Fatal("expected error for non-PDF content")
	}
}

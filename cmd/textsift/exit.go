package main

import "fmt"

// Process exit codes.
const (
	exitOK         = 0 // all items succeeded (low-confidence included)
	exitUsage      = 1 // bad arguments, missing input, empty batch
	exitToolsMiss  = 2 // pdftotext absent, or no OCR backend when OCR was needed
	exitProcessing = 3 // OCR or post-OCR extraction failed on an item
)

// exitError carries the process exit code alongside the message cobra
// prints.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func usageErr(format string, a ...any) error {
	return &exitError{code: exitUsage, err: fmt.Errorf(format, a...)}
}

func toolsErr(format string, a ...any) error {
	return &exitError{code: exitToolsMiss, err: fmt.Errorf(format, a...)}
}

func processingErr(format string, a ...any) error {
	return &exitError{code: exitProcessing, err: fmt.Errorf(format, a...)}
}

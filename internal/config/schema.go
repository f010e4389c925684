package config

import (
	"time"

	"github.com/textsift/textsift/internal/extract"
)

// Config holds textsift configuration.
// Loaded from (in order): ./config.yaml, ~/.textsift/config.yaml, TEXTSIFT_* env vars.
type Config struct {
	Defaults DefaultsCfg `mapstructure:"defaults" yaml:"defaults"`
	Tools    ToolsCfg    `mapstructure:"tools" yaml:"tools"`
	OCR      OCRCfg      `mapstructure:"ocr" yaml:"ocr"`
	Watch    WatchCfg    `mapstructure:"watch" yaml:"watch"`
}

// DefaultsCfg specifies per-run extraction defaults. Command-line flags
// override these when explicitly set.
type DefaultsCfg struct {
	Lang       string `mapstructure:"lang" yaml:"lang"`                 // OCR language hint (empty = backend default)
	Threshold  int    `mapstructure:"threshold" yaml:"threshold"`       // Min trimmed character count for direct extraction
	KeepOCRPDF bool   `mapstructure:"keep_ocr_pdf" yaml:"keep_ocr_pdf"` // Retain the intermediate OCR PDF next to the text output
}

// ToolsCfg overrides external executable names or absolute paths.
// Values support ${ENV_VAR} syntax.
type ToolsCfg struct {
	PDFToText string `mapstructure:"pdftotext" yaml:"pdftotext"`
	OCRmyPDF  string `mapstructure:"ocrmypdf" yaml:"ocrmypdf"`
	Tesseract string `mapstructure:"tesseract" yaml:"tesseract"`
}

// Resolved returns a copy with ${ENV_VAR} references expanded.
func (t ToolsCfg) Resolved() ToolsCfg {
	return ToolsCfg{
		PDFToText: ResolveEnvVars(t.PDFToText),
		OCRmyPDF:  ResolveEnvVars(t.OCRmyPDF),
		Tesseract: ResolveEnvVars(t.Tesseract),
	}
}

// OCRCfg tunes OCR backend invocation.
type OCRCfg struct {
	Optimize int `mapstructure:"optimize" yaml:"optimize"` // ocrmypdf --optimize level
}

// WatchCfg tunes the directory watcher.
type WatchCfg struct {
	DebounceMS          int  `mapstructure:"debounce_ms" yaml:"debounce_ms"`                     // Coalesce bursts of fs events
	StabilityIntervalMS int  `mapstructure:"stability_interval_ms" yaml:"stability_interval_ms"` // Spacing between size polls
	StabilityAttempts   uint `mapstructure:"stability_attempts" yaml:"stability_attempts"`       // Size polls before giving up
}

// Debounce returns the event debounce window.
func (w WatchCfg) Debounce() time.Duration {
	return time.Duration(w.DebounceMS) * time.Millisecond
}

// StabilityInterval returns the spacing between file-size polls.
func (w WatchCfg) StabilityInterval() time.Duration {
	return time.Duration(w.StabilityIntervalMS) * time.Millisecond
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Defaults: DefaultsCfg{
			Lang:       "",
			Threshold:  extract.DefaultThreshold,
			KeepOCRPDF: false,
		},
		Tools: ToolsCfg{
			PDFToText: "pdftotext",
			OCRmyPDF:  "ocrmypdf",
			Tesseract: "tesseract",
		},
		OCR: OCRCfg{
			Optimize: 3,
		},
		Watch: WatchCfg{
			DebounceMS:          500,
			StabilityIntervalMS: 1000,
			StabilityAttempts:   10,
		},
	}
}

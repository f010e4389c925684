package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/textsift/textsift/internal/batch"
	"github.com/textsift/textsift/internal/config"
	"github.com/textsift/textsift/internal/extract"
	"github.com/textsift/textsift/internal/ocr"
	"github.com/textsift/textsift/internal/output"
	"github.com/textsift/textsift/internal/pipeline"
	"github.com/textsift/textsift/internal/runner"
	"github.com/textsift/textsift/internal/tools"
	"github.com/textsift/textsift/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
	verbose      bool

	flagInputDir  string
	flagOutputDir string
	flagGlob      string
	flagLang      string
	flagThreshold int
	flagKeep      bool
	flagReport    bool

	cfgManager *config.Manager
	logger     *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "textsift [input.pdf output.txt]",
	Short: "Extract text from PDFs with OCR fallback",
	Long: `Textsift pulls embedded text out of PDF documents with pdftotext and
falls back to OCR when the result is too thin to be real content, as it
is for scanned or image-only files.

The fallback chain:
  - pdftotext for direct extraction
  - ocrmypdf (preferred) or tesseract to produce a searchable PDF
  - re-extraction from the OCR'd copy

Single file: textsift scan.pdf scan.txt
Batch:       textsift --input-dir ./scans --output-dir ./text`,
	Version:      version.GitRelease,
	Args:         cobra.MaximumNArgs(2),
	SilenceUsage: true,
	RunE:         runRoot,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.textsift/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "textsift home directory (default: ~/.textsift)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "enable debug logging",
	)

	rootCmd.Flags().StringVar(&flagInputDir, "input-dir", "", "directory of PDFs to process (batch mode)")
	rootCmd.Flags().StringVar(&flagOutputDir, "output-dir", "", "directory for .txt outputs (default: input dir)")
	rootCmd.Flags().StringVar(&flagGlob, "glob", "", "glob pattern of PDFs to process (e.g. 'data/*.pdf')")
	rootCmd.Flags().StringVar(&flagLang, "lang", "", "OCR language code (e.g. 'eng', 'deu')")
	rootCmd.Flags().IntVar(&flagThreshold, "threshold", extract.DefaultThreshold, "min trimmed chars to consider extraction successful")
	rootCmd.Flags().BoolVar(&flagKeep, "keep-ocr-pdf", false, "keep the OCR'd PDF alongside the text output")
	rootCmd.Flags().BoolVar(&flagReport, "report", false, "print a structured batch summary on stdout")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		output.SetFormat(outputFormat)

		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)

		cm, err := config.NewManager(cfgFile)
		if err != nil {
			return usageErr("failed to load config: %v", err)
		}
		cfgManager = cm
		return nil
	}

	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// runOptions resolves flag > config > default precedence for the
// extraction settings shared by root and watch.
func runOptions(cmd *cobra.Command, cfg *config.Config) batch.Options {
	opts := batch.Options{
		Lang:       cfg.Defaults.Lang,
		Threshold:  cfg.Defaults.Threshold,
		KeepOCRPDF: cfg.Defaults.KeepOCRPDF,
	}
	if cmd.Flags().Changed("lang") {
		opts.Lang = flagLang
	}
	if cmd.Flags().Changed("threshold") {
		opts.Threshold = flagThreshold
	}
	if cmd.Flags().Changed("keep-ocr-pdf") {
		opts.KeepOCRPDF = flagKeep
	}
	return opts
}

// newOrchestrator assembles the pipeline from config.
func newOrchestrator(cfg *config.Config, log *slog.Logger) pipeline.Orchestrator {
	bins := cfg.Tools.Resolved()
	run := runner.Exec{Logger: log}
	return pipeline.Orchestrator{
		Extractor: extract.Extractor{Bin: bins.PDFToText, Run: run, Logger: log},
		Selector: ocr.NewSelector(
			ocr.OCRmyPDF{Bin: bins.OCRmyPDF, Optimize: cfg.OCR.Optimize, Exec: run, Logger: log},
			ocr.Tesseract{Bin: bins.Tesseract, Exec: run, Logger: log},
			log,
		),
		Logger: log,
	}
}

// requireDirectExtraction checks pdftotext up front; nothing works
// without it.
func requireDirectExtraction(cfg *config.Config) error {
	bin := cfg.Tools.Resolved().PDFToText
	if bin == "" {
		bin = extract.DefaultBin
	}
	if !tools.Available(tools.PathProber{}, bin) {
		return toolsErr("missing required tool: %s (poppler-utils)", bin)
	}
	return nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg := cfgManager.Get()
	batchMode := flagInputDir != "" || flagGlob != ""

	switch {
	case batchMode && len(args) > 0:
		return usageErr("positional arguments are mutually exclusive with --input-dir/--glob")
	case !batchMode && len(args) == 0:
		return usageErr("no input specified: provide input.pdf output.txt or use --input-dir/--glob")
	case !batchMode && len(args) == 1:
		return usageErr("single-file mode needs both input.pdf and output.txt")
	}

	if err := requireDirectExtraction(cfg); err != nil {
		return err
	}

	opts := runOptions(cmd, cfg)
	orch := newOrchestrator(cfg, logger)

	if !batchMode {
		return runSingle(cmd, orch, args[0], args[1], opts)
	}
	return runBatch(cmd, orch, opts)
}

func runSingle(cmd *cobra.Command, orch pipeline.Orchestrator, inPDF, outTxt string, opts batch.Options) error {
	outcome, err := orch.Process(cmd.Context(), pipeline.Request{
		SourcePDF:  inPDF,
		DestText:   outTxt,
		Lang:       opts.Lang,
		Threshold:  opts.Threshold,
		KeepOCRPDF: opts.KeepOCRPDF,
	})
	if err != nil {
		if errors.Is(err, pipeline.ErrSourceMissing) {
			return usageErr("%v", err)
		}
		return processingErr("%v", err)
	}

	switch outcome.Status {
	case pipeline.StatusToolMissing:
		return toolsErr("no OCR backend on PATH: need either ocrmypdf or tesseract")
	case pipeline.StatusOCRFailed:
		return processingErr("OCR failed with available tools")
	case pipeline.StatusExtractionFailed:
		return processingErr("failed to extract text after OCR")
	}

	if flagReport {
		return output.Print(outcome)
	}
	return nil
}

func runBatch(cmd *cobra.Command, orch pipeline.Orchestrator, opts batch.Options) error {
	files, err := batch.Resolve(flagInputDir, flagGlob)
	if err != nil {
		if errors.Is(err, batch.ErrEmptyBatch) {
			return usageErr("%v", err)
		}
		return usageErr("failed to resolve inputs: %v", err)
	}

	outDir := batch.OutputDir(flagOutputDir, flagInputDir)
	coord := batch.Coordinator{Orchestrator: orch, Logger: logger}

	sum, err := coord.Run(cmd.Context(), files, outDir, opts)
	if err != nil {
		return processingErr("batch aborted: %v", err)
	}

	if flagReport {
		if err := output.Print(sum); err != nil {
			return err
		}
	}
	if sum.Failures > 0 {
		return processingErr("completed with %d failures out of %d PDFs", sum.Failures, sum.Total)
	}
	return nil
}

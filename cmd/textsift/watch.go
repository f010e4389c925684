package main

import (
	"github.com/spf13/cobra"

	"github.com/textsift/textsift/internal/batch"
	"github.com/textsift/textsift/internal/config"
	"github.com/textsift/textsift/internal/output"
	"github.com/textsift/textsift/internal/watch"
)

var flagExisting bool

var watchCmd = &cobra.Command{
	Use:   "watch --input-dir DIR",
	Short: "Watch a directory and extract text from PDFs as they arrive",
	Long: `Watch runs the extraction pipeline continuously over a directory,
picking up PDFs as they are created or modified. Each file is waited on
until its size is stable so half-copied scans are not processed.

Stops on SIGINT/SIGTERM and reports a summary of everything processed.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&flagInputDir, "input-dir", "", "directory to watch for PDFs")
	watchCmd.Flags().StringVar(&flagOutputDir, "output-dir", "", "directory for .txt outputs (default: input dir)")
	watchCmd.Flags().StringVar(&flagLang, "lang", "", "OCR language code (e.g. 'eng', 'deu')")
	watchCmd.Flags().IntVar(&flagThreshold, "threshold", 0, "min trimmed chars to consider extraction successful")
	watchCmd.Flags().BoolVar(&flagKeep, "keep-ocr-pdf", false, "keep the OCR'd PDF alongside the text output")
	watchCmd.Flags().BoolVar(&flagReport, "report", false, "print a structured summary on stdout when stopping")
	watchCmd.Flags().BoolVar(&flagExisting, "existing", false, "also process PDFs already in the directory")
	_ = watchCmd.MarkFlagRequired("input-dir")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := cfgManager.Get()
	if err := requireDirectExtraction(cfg); err != nil {
		return err
	}

	w := &watch.Watcher{
		Dir:               flagInputDir,
		OutDir:            batch.OutputDir(flagOutputDir, flagInputDir),
		Opts:              runOptions(cmd, cfg),
		Orchestrator:      newOrchestrator(cfg, logger),
		Debounce:          cfg.Watch.Debounce(),
		StabilityInterval: cfg.Watch.StabilityInterval(),
		StabilityAttempts: cfg.Watch.StabilityAttempts,
		InitialScan:       flagExisting,
		Logger:            logger,
	}

	// Hot-reload: pick up new defaults and tool paths without a restart.
	// Explicitly set flags keep their precedence over the reloaded file.
	cfgManager.OnChange(func(next *config.Config) {
		logger.Info("config reloaded, applying new settings")
		w.Reconfigure(runOptions(cmd, next), newOrchestrator(next, logger))
	})
	cfgManager.WatchConfig()

	sum, err := w.Run(cmd.Context())
	if err != nil {
		return processingErr("watch failed: %v", err)
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

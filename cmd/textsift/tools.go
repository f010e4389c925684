package main

import (
	"github.com/spf13/cobra"

	"github.com/textsift/textsift/internal/extract"
	"github.com/textsift/textsift/internal/ocr"
	"github.com/textsift/textsift/internal/output"
	"github.com/textsift/textsift/internal/tools"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Show which external tools are available",
	Long: `Tools probes PATH for the executables textsift delegates to:
pdftotext for direct extraction, ocrmypdf and tesseract for OCR.
Executable names honor the tools section of the config file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		bins := cfgManager.Get().Tools.Resolved()
		report := tools.Report(tools.PathProber{}, []tools.Tool{
			{Capability: tools.CapDirectExtract, Executable: orDefault(bins.PDFToText, extract.DefaultBin)},
			{Capability: tools.CapOCRPrimary, Executable: orDefault(bins.OCRmyPDF, ocr.DefaultOCRmyPDFBin)},
			{Capability: tools.CapOCRSecondary, Executable: orDefault(bins.Tesseract, ocr.DefaultTesseractBin)},
		})
		return output.Print(report)
	},
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

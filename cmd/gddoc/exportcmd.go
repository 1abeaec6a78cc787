package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"gddoc/internal/export"
)

var (
	exportOutput string
	exportLevel  int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Bundle generated documentation into a tar.zst archive",
	Long: `Packs the rendered documentation directory into a zstd-compressed tar
archive, for publishing as a single build artifact.

Run 'gddoc generate' first; export only bundles what is already on disk.

Examples:
  gddoc export
  gddoc export --output site-docs.tar.zst --level 19`,
	Run: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Archive path (default: <project>/docs.tar.zst)")
	exportCmd.Flags().IntVar(&exportLevel, "level", 0, "Zstd compression level 1-22 (default: from config)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) {
	start := time.Now()

	cfg, err := loadProjectConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger := newLogger(cfg)

	srcDir := filepath.Join(cfg.ProjectRoot, cfg.Paths.Output)
	if _, statErr := os.Stat(srcDir); os.IsNotExist(statErr) {
		fmt.Fprintf(os.Stderr, "Error: no generated documentation at %s\n", srcDir)
		fmt.Fprintln(os.Stderr, "Run 'gddoc generate' first.")
		os.Exit(1)
	}

	outPath := exportOutput
	if outPath == "" {
		outPath = filepath.Join(cfg.ProjectRoot, "docs.tar.zst")
	}
	level := cfg.Export.Level
	if exportLevel != 0 {
		level = exportLevel
	}

	count, err := export.Bundle(srcDir, outPath, level, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Exported %d files to %s in %s\n",
		count, outPath, time.Since(start).Round(time.Millisecond))
}

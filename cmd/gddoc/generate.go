package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"gddoc/internal/project"
)

var (
	generateForce bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate RST documentation for the project",
	Long: `Parses the engine XML class docs and the project's .tscn scenes, binds
scripts to their documented classes, and renders one RST page per class
and per scene plus a toctree index.

A YAML report with page counts and diagnostic totals is written next to
the output. The command exits non-zero when any diagnostic error was
reported, so it can gate CI.

Examples:
  gddoc generate
  gddoc generate --project ~/games/tanks
  gddoc generate --log-format json`,
	Run: runGenerate,
}

func init() {
	generateCmd.Flags().BoolVar(&generateForce, "force", false, "Regenerate even if no inputs changed")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) {
	start := time.Now()

	cfg, err := loadProjectConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger := newLogger(cfg)

	runner := project.NewRunner(cfg, logger)
	runner.Force = generateForce
	rep, err := runner.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating documentation: %v\n", err)
		os.Exit(1)
	}

	if rep.Pages == 0 && rep.FilesChanged == 0 {
		fmt.Println("Documentation is current. Nothing to do. Use --force to regenerate.")
		return
	}
	fmt.Printf("Generated %d pages (%d classes, %d scenes) in %s\n",
		rep.Pages, rep.Classes, rep.Scenes, time.Since(start).Round(time.Millisecond))
	if rep.Diagnostics.Warnings > 0 {
		fmt.Printf("Warnings: %d\n", rep.Diagnostics.Warnings)
	}
	if rep.Diagnostics.DroppedEndpoints > 0 {
		fmt.Printf("Dropped connection endpoints: %d\n", rep.Diagnostics.DroppedEndpoints)
	}
	if !rep.Succeeded() {
		fmt.Fprintf(os.Stderr, "Errors: %d (see report at %s)\n",
			rep.Diagnostics.Errors, cfg.Paths.Report)
		os.Exit(1)
	}
}

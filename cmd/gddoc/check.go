package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gddoc/internal/project"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate docs and scenes without writing output",
	Long: `Runs the full pipeline, including page rendering, but discards every
page instead of writing it. All markup, scene, and binding diagnostics
still fire, so this is the dry-run to wire into a pre-commit hook or CI
gate.

Examples:
  gddoc check
  gddoc check --project ~/games/tanks`,
	Run: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) {
	cfg, err := loadProjectConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger := newLogger(cfg)

	rep, err := project.NewRunner(cfg, logger).Check()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error checking project: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Checked %d classes and %d scenes\n", rep.Classes, rep.Scenes)
	if rep.Diagnostics.Warnings > 0 {
		fmt.Printf("Warnings: %d\n", rep.Diagnostics.Warnings)
	}
	if !rep.Succeeded() {
		fmt.Fprintf(os.Stderr, "Errors: %d\n", rep.Diagnostics.Errors)
		os.Exit(1)
	}
	fmt.Println("No errors found.")
}

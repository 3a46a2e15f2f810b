package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Check the scripts for consistency",
	Long: `Compiles every script in the directory and reports broken references,
duplicate ids and missing start lines. --lint adds advisory warnings for
unreachable lines, dead ends and shadowed choices.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(cmd, args); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().String("script", "", "Validate a single script instead of the whole directory")
	validateCmd.Flags().Bool("lint", false, "Report advisory authoring warnings")
}

func runValidate(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	if !cmd.Flags().Changed("dir") && len(args) > 0 {
		dir = args[0]
	}
	scriptName, _ := cmd.Flags().GetString("script")
	lint, _ := cmd.Flags().GetBool("lint")

	engine, err := parley.New(dir)
	if err != nil {
		return fmt.Errorf("failed to init engine: %w", err)
	}

	names := []string{scriptName}
	if scriptName == "" {
		names, err = engine.Scripts()
		if err != nil {
			return fmt.Errorf("failed to list scripts: %w", err)
		}
		if len(names) == 0 {
			return fmt.Errorf("no scripts found in %s", dir)
		}
	}

	failed := 0
	warned := 0
	for _, name := range names {
		conv, err := engine.Open(name)
		if err != nil {
			failed++
			fmt.Printf("✗ %s: %v\n", name, err)
			continue
		}
		fmt.Printf("✓ %s (%d lines, %d transitions)\n", name, conv.NodeCount(), conv.EdgeCount())

		if lint {
			for _, w := range validator.Lint(conv) {
				warned++
				fmt.Printf("  warning: %s\n", w)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d scripts failed to compile", failed, len(names))
	}
	if warned > 0 {
		fmt.Printf("Scripts compile, with %d warning(s).\n", warned)
		return nil
	}
	fmt.Println("All scripts are valid! ✅")
	return nil
}

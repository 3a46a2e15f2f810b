package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/cli"
	"github.com/aretw0/parley/internal/presentation/graph"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [dir]",
	Short: "Export the script graph visualization",
	Long: `Compiles a script and outputs a Mermaid diagram (graph TD) representing
its flow. --current and --visited overlay session state onto the chart.`,
	Run: func(cmd *cobra.Command, args []string) {
		dir, _ := cmd.Flags().GetString("dir")
		if !cmd.Flags().Changed("dir") && len(args) > 0 {
			dir = args[0]
		}

		scriptName, _ := cmd.Flags().GetString("script")
		if scriptName == "" {
			scriptName = cli.DetermineScript(dir)
		}

		engine, err := parley.New(dir)
		if err != nil {
			fmt.Printf("Error initializing engine: %v\n", err)
			os.Exit(1)
		}

		conv, err := engine.Open(scriptName)
		if err != nil {
			fmt.Printf("Error opening script: %v\n", err)
			os.Exit(1)
		}

		var overlay *graph.Overlay
		visited, _ := cmd.Flags().GetIntSlice("visited")
		if cmd.Flags().Changed("current") || len(visited) > 0 {
			overlay = &graph.Overlay{VisitedLines: visited}
			if cmd.Flags().Changed("current") {
				current, _ := cmd.Flags().GetInt("current")
				overlay.Current = &current
			}
		}

		fmt.Print(graph.GenerateMermaid(conv, overlay))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().String("script", "", "Script to chart (defaults to start, main or index)")
	graphCmd.Flags().Int("current", 0, "Line id to highlight as the current position")
	graphCmd.Flags().IntSlice("visited", nil, "Line ids to mark as visited")
}

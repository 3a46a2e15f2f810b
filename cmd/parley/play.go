package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/parley/internal/cli"
)

// playCmd represents the play command
var playCmd = &cobra.Command{
	Use:   "play [dir]",
	Short: "Play a dialogue script interactively",
	Long:  `Starts the interactive dialogue loop with the scripts from the given directory.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := cli.Execute(playOptions(cmd, args)); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func playOptions(cmd *cobra.Command, args []string) cli.RunOptions {
	dir, _ := cmd.Flags().GetString("dir")
	if !cmd.Flags().Changed("dir") && len(args) > 0 {
		dir = args[0]
	}

	script, _ := cmd.Flags().GetString("script")
	headless, _ := cmd.Flags().GetBool("headless")
	jsonMode, _ := cmd.Flags().GetBool("json")
	watchMode, _ := cmd.Flags().GetBool("watch")
	debug, _ := cmd.Flags().GetBool("debug")
	sessionID, _ := cmd.Flags().GetString("session")
	fresh, _ := cmd.Flags().GetBool("fresh")
	redisURL, _ := cmd.Flags().GetString("redis-url")

	return cli.RunOptions{
		Path:      dir,
		Script:    script,
		Headless:  headless,
		JSON:      jsonMode,
		Watch:     watchMode,
		Debug:     debug,
		SessionID: sessionID,
		Fresh:     fresh,
		RedisURL:  redisURL,
	}
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().String("script", "", "Script to play (defaults to start, main or index)")
	playCmd.Flags().Bool("headless", false, "Run in headless mode (no prompts, strict IO)")
	playCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	playCmd.Flags().BoolP("watch", "w", false, "Run in development mode with hot-reload")
	playCmd.Flags().Bool("debug", false, "Enable debug logging")
	playCmd.Flags().String("session", "", "Session ID for a resumable playthrough")
	playCmd.Flags().Bool("fresh", false, "Reset the session before playing")
	playCmd.Flags().String("redis-url", "", "Redis URL for session storage (overrides PARLEY_REDIS_URL)")

	// Bare 'parley' plays the default script.
	rootCmd.Run = playCmd.Run
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/parley/internal/cli"
)

var serveCmd = &cobra.Command{
	Use:   "serve [dir]",
	Short: "Start the HTTP server",
	Long: `Starts the engine in server mode, exposing scripts and server-side
sessions as a JSON API over HTTP, with SSE streams and Prometheus metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		dir, _ := cmd.Flags().GetString("dir")
		if !cmd.Flags().Changed("dir") && len(args) > 0 {
			dir = args[0]
		}
		addr, _ := cmd.Flags().GetString("addr")
		redisURL, _ := cmd.Flags().GetString("redis-url")
		debug, _ := cmd.Flags().GetBool("debug")

		err := cli.RunServe(cli.ServeOptions{
			Path:     dir,
			Addr:     addr,
			RedisURL: redisURL,
			Debug:    debug,
		})
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("addr", "a", "", "Address to listen on (overrides PARLEY_ADDR, default :8080)")
	serveCmd.Flags().String("redis-url", "", "Redis URL for session storage (overrides PARLEY_REDIS_URL)")
	serveCmd.Flags().Bool("debug", false, "Enable debug logging")
}

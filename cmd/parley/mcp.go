package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/adapters/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp [dir]",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the engine as an MCP server so AI agents can list, render and
traverse dialogue scripts as tools.

Supported transports:
- stdio (default): standard input/output, for local process integration.
- sse: Server-Sent Events over HTTP, for remote agents or debuggers.`,
	Run: func(cmd *cobra.Command, args []string) {
		dir, _ := cmd.Flags().GetString("dir")
		if !cmd.Flags().Changed("dir") && len(args) > 0 {
			dir = args[0]
		}
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		debug, _ := cmd.Flags().GetBool("debug")

		// Logs go to stderr so they cannot corrupt JSON-RPC on stdout.
		level := slog.LevelInfo
		if debug {
			level = slog.LevelDebug
		}
		logger := logging.New(logging.Options{Level: level})

		engine, err := parley.New(dir, parley.WithLogger(logger))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing engine: %v\n", err)
			os.Exit(1)
		}

		srv := mcp.NewServer(engine, engine.Loader(), mcp.WithLogger(logger))

		switch transport {
		case "stdio":
			logger.Info("starting mcp server (stdio)", "dir", dir)
			if err := srv.ServeStdio(); err != nil {
				logger.Error("mcp server execution failed", "err", err)
				os.Exit(1)
			}
		case "sse":
			logger.Info("starting mcp server (sse)", "port", port, "dir", dir)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.ServeSSE(ctx, port); err != nil && err != http.ErrServerClosed {
				logger.Error("mcp server execution failed", "err", err)
				os.Exit(1)
			}
			logger.Info("mcp server stopped")
		default:
			fmt.Fprintf(os.Stderr, "Unknown transport: %s. Supported: stdio, sse\n", transport)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
	mcpCmd.Flags().Bool("debug", false, "Enable debug logging")
}

/*
Package runner implements the interactive play loop for Parley conversations.

It bridges the compiled dialogue graph and the outside world: it renders the
current line, reads traversal commands, keeps durable sessions saved after
every move, and shuts down cleanly on interrupt. IO goes through pluggable
handlers so the same loop serves a terminal, a TUI and machine-readable
JSON-Lines.

# Key Components

  - Runner: the loop orchestrator, configured with functional options.
  - IOHandler: decouples how lines are shown and commands read.
  - TextHandler: interactive CLI usage, one prompt per line.
  - JSONHandler: structured NDJSON for host processes.
  - View: the presentation snapshot handlers and rich clients consume.

# Usage

	r := runner.NewRunner(
		runner.WithStore(store),
		runner.WithSessionID("user-1"),
	)

	if err := r.Run(ctx, engine, "intro"); err != nil {
		log.Fatal(err)
	}
*/
package runner

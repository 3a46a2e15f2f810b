/*
Package parley is a branching dialogue engine for games, interactive fiction,
and any host that walks scripted conversations.

It compiles a declarative script (talkers plus lines with next-links and
choices) into a validated directed graph with a single cursor, then exposes
two mutating operations (advance, jump) and a read-only query surface.

# Concept

Parley treats a conversation as a graph of lines. The compiler validates the
whole script up front; traversal can then never dangle. The engine owns the
graph and the cursor, while your application ("Host") owns rendering, input,
and persistence. This hexagonal architecture allows Parley to be embedded in
any interface: CLI, HTTP server, or game loop.

# Key Features

  - Fail-fast compilation: unknown talkers, duplicate ids, dangling links and
    start-line problems surface before the first line is shown.
  - Deterministic traversal: given the same cursor and operation, the result
    is always reproducible, and failed operations never move the cursor.
  - Hexagonal architecture: script sources and session stores are ports with
    filesystem, in-memory and Redis adapters.
  - Session snapshots: a playthrough persists as a tiny record (script name,
    line id, history) and reattaches to a freshly compiled graph.

# Usage

Initialize the engine with a directory of script documents, or inject a
custom loader.

	package main

	import (
		"context"
		"errors"
		"fmt"
		"log"

		"github.com/aretw0/parley"
		"github.com/aretw0/parley/pkg/conversation"
	)

	func main() {
		eng, err := parley.New("./scripts")
		if err != nil {
			log.Fatal(err)
		}

		conv, err := eng.Open("intro")
		if err != nil {
			log.Fatal(err)
		}

		// Main loop: read the current line, then advance or jump.
		ctx := context.Background()
		for {
			fmt.Println(conv.CurrentText())

			if choices := conv.CurrentChoices(); len(choices) > 0 {
				// Pick the first branch for brevity.
				if err := eng.Jump(ctx, conv, choices[0].Next); err != nil {
					log.Fatal(err)
				}
				continue
			}

			err := eng.Advance(ctx, conv)
			if errors.Is(err, conversation.ErrNoNextAction) {
				break // terminal line
			}
			if err != nil {
				log.Fatal(err)
			}
		}
	}
*/
package parley

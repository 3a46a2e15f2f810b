package cli

import (
	"fmt"
)

// RunOptions contains all the configuration for the play command.
type RunOptions struct {
	Path      string // directory holding script documents
	Script    string // script name to play
	Headless  bool
	Watch     bool
	JSON      bool
	Debug     bool
	SessionID string
	Fresh     bool
	RedisURL  string
}

// Execute handles the 'play' command logic, dispatching to Session or Watch
// mode.
func Execute(opts RunOptions) error {
	if opts.Script == "" {
		opts.Script = DetermineScript(opts.Path)
	}

	if opts.Watch {
		if opts.Headless {
			return fmt.Errorf("--watch and --headless cannot be used together")
		}
		if opts.JSON {
			return fmt.Errorf("--watch and --json cannot be used together")
		}
		return RunWatch(opts)
	}

	// Session mode. Handle the fresh reset here to mirror watch mode.
	if opts.Fresh {
		if err := ResetSession(opts); err != nil {
			return err
		}
	}

	return RunSession(opts)
}

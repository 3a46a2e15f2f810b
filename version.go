package parley

import (
	_ "embed"
)

// Version is the current release, read from the VERSION file at the
// repository root.
//
//go:embed VERSION
var Version string

package cli

import (
	"flag"
	"io"
)

// CLIArgs are the command-line arguments for a server run or a one-shot
// scan.
type CLIArgs struct {
	// ConfigPath is an optional YAML config file.
	ConfigPath string

	// Listen overrides the configured bind address when non-empty.
	Listen string

	// ScanURL, when non-empty, runs a single scan, prints the snapshot as
	// JSON and exits instead of serving.
	ScanURL string

	// RawArgs is the original args slice (useful for debugging/tests).
	RawArgs []string
}

// ParseArgs parses a slice of args and returns CLIArgs. Use in tests by
// passing arbitrary slices. The function is deterministic and does not
// read os.Args.
func ParseArgs(args []string) (*CLIArgs, error) {
	fs := flag.NewFlagSet("roboscan", flag.ContinueOnError)
	var (
		configPath = fs.String("config", "", "Path to YAML config file (optional)")
		listen     = fs.String("listen", "", "HTTP bind address override (e.g. :8080)")
		scanURL    = fs.String("scan", "", "Scan a single URL, print JSON and exit")
	)

	// Ensure Parse doesn't write to stdout/stderr in tests
	fs.SetOutput(io.Discard)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return &CLIArgs{
		ConfigPath: *configPath,
		Listen:     *listen,
		ScanURL:    *scanURL,
		RawArgs:    args,
	}, nil
}

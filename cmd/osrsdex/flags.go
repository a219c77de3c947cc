// ABOUTME: CLI flag parsing using stdlib flag package
// ABOUTME: Defines cliArgs struct and parseFlags() for the osrsdex entry point

package main

import "flag"

type cliArgs struct {
	dataDir string
	width   int
	verbose bool
	version bool
}

func parseFlags() cliArgs {
	var args cliArgs

	flag.StringVar(&args.dataDir, "data-dir", "", "Override the reference data directory")
	flag.IntVar(&args.width, "width", 0, "Render width for wiki output (default: terminal width)")
	flag.BoolVar(&args.verbose, "verbose", false, "Enable debug logging")
	flag.BoolVar(&args.version, "version", false, "Show version information and exit")

	flag.Parse()

	return args
}

// remaining returns positional arguments after flags: the subcommand and
// its operands.
func (a cliArgs) remaining() []string {
	return flag.Args()
}

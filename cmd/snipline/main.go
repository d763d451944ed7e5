// Package main is the entry point for the snipline editor.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tidwall/pretty"

	"github.com/snipline/snipline/internal/app"
	"github.com/snipline/snipline/internal/expand"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts, dumpCatalog := parseFlags()

	if dumpCatalog != "" {
		return dumpRules(dumpCatalog)
	}

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Shutdown()

	// Handle signals for graceful shutdown
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		application.RequestQuit()
	}()

	if err := application.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// dumpRules prints a builtin catalog in the rule pack format, as a
// starting point for user packs.
func dumpRules(catalog string) int {
	rules, err := expand.Catalog(catalog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	data, err := expand.Export(catalog, rules)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	os.Stdout.Write(pretty.Pretty(data))
	return 0
}

func parseFlags() (app.Options, string) {
	var opts app.Options
	var dumpCatalog string
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.Catalog, "catalog", "", "Rule catalog (extended or classic)")
	flag.StringVar(&opts.RulesDir, "rules", "", "Directory of JSON rule packs")
	flag.StringVar(&opts.Script, "script", "", "Lua rule script")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.LogFile, "log-file", "", "Log to a file instead of stderr")
	flag.BoolVar(&opts.ReadOnly, "readonly", false, "Open files in read-only mode")
	flag.BoolVar(&opts.ReadOnly, "R", false, "Open files in read-only mode (shorthand)")
	flag.StringVar(&dumpCatalog, "dump-rules", "", "Print a catalog as pack JSON and exit")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Snipline - text editor with trigger expansion\n\n")
		fmt.Fprintf(os.Stderr, "Usage: snipline [options] [files...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  snipline                       Open a scratch document\n")
		fmt.Fprintf(os.Stderr, "  snipline notes.md              Open a file\n")
		fmt.Fprintf(os.Stderr, "  snipline -c snipline.toml      Run with a config file\n")
		fmt.Fprintf(os.Stderr, "  snipline -catalog classic      Use the classic rule set\n")
		fmt.Fprintf(os.Stderr, "  snipline -dump-rules extended  Print the extended rules\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("Snipline %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if opts.LogLevel != "" {
		switch opts.LogLevel {
		case "debug", "info", "warn", "error":
		default:
			fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
			os.Exit(1)
		}
	}

	opts.Files = flag.Args()
	return opts, dumpCatalog
}

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/EpicWink/pypub/internal/cmd"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "publish":
		if err := cmd.Publish(os.Args[2:], os.Stdout, os.Stderr); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	case "build":
		if err := cmd.Build(os.Args[2:], os.Stdout, os.Stderr); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	case "toolboxes":
		if err := cmd.Toolboxes(os.Args[2:], os.Stdout, os.Stderr); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			if errors.Is(err, cmd.ErrToolboxMissing) {
				os.Exit(3)
			}
			os.Exit(1)
		}
	case "init":
		if err := cmd.Init(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: pypub <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  init [--reinit]                        Initialize (or reinitialize) .pypub/ configuration")
	fmt.Fprintln(os.Stderr, "  build [--dir <path>]                   Build distributions into the output directory")
	fmt.Fprintln(os.Stderr, "  publish [--dir <path>]                 Build and upload distributions to the configured index")
	fmt.Fprintln(os.Stderr, "  toolboxes [--json] [--require <list>]  Report MATLAB Mapping/Aerospace toolbox availability")
}

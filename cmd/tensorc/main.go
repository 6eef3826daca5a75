// cmd/tensorc/main.go
package main

import (
	"fmt"
	"log"
	"os"

	"tensorc/cmd/tensorc/commands"
)

const VERSION = "0.1.0"

// Command aliases mapping, in the same shape as the teacher's dispatcher.
var commandAliases = map[string]string{
	"c": "compile",
	"w": "watch",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		os.Exit(1)
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	if cmd == "--help" || cmd == "-h" || cmd == "help" {
		showUsage()
		return
	}

	if cmd == "--version" || cmd == "-v" || cmd == "version" {
		fmt.Println("tensorc " + VERSION)
		return
	}

	switch cmd {
	case "compile":
		if err := commands.CompileCommand(args[1:]); err != nil {
			log.Fatalf("Error: %v", err)
		}
	case "watch":
		if err := commands.WatchCommand(args[1:]); err != nil {
			log.Fatalf("Error: %v", err)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		showUsage()
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`tensorc - ahead-of-time tensor graph compiler

Usage:
  tensorc compile <manifest.json> [--test] [--run] [--cache-dsn <dsn>] [--out <dir>]
  tensorc watch <manifest.json> [--addr <host:port>]

Aliases: c=compile, w=watch`)
}

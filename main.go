package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/vzahradnik/garden/internal/app"
	"github.com/vzahradnik/garden/internal/grammar"

	tea "github.com/charmbracelet/bubbletea"
)

var version = "dev"

func main() {
	args := os.Args[1:]
	if len(args) > 0 {
		switch args[0] {
		case "-h", "--help":
			printHelp()
			return
		case "--version":
			fmt.Println("garden", version)
			return
		}
	}

	program := "."
	var seed int64
	threads := 0

	if len(args) > 0 {
		program = args[0]
	}
	if len(args) > 1 {
		s, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "garden: invalid seed %q\n", args[1])
			os.Exit(1)
		}
		seed = s
	}
	if len(args) > 2 {
		t, err := strconv.Atoi(args[2])
		if err != nil || t < 0 {
			fmt.Fprintf(os.Stderr, "garden: invalid max-threads %q\n", args[2])
			os.Exit(1)
		}
		threads = t
	}

	m, err := app.NewModel(program, seed, threads)
	if err != nil {
		var nf grammar.ErrNotFound
		if errors.As(err, &nf) {
			fmt.Fprintf(os.Stderr, "garden: program %s not found, exiting.\n", program)
		} else {
			fmt.Fprintf(os.Stderr, "garden: %v\n", err)
		}
		os.Exit(1)
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "garden: %v\n", err)
		os.Exit(1)
	}
	if fm, ok := final.(app.Model); ok && fm.LoadErr != nil {
		fmt.Fprintf(os.Stderr, "garden: %v\n", fm.LoadErr)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Printf(`garden — two-dimensional grammar interpreter (%s)

Usage:
  garden [program] [seed] [max-threads]

Arguments:
  program      Program file, directory or name (default ".").
               Resolved as name, name.gz, name/index.cfg, name/index.cfg.gz.
  seed         RNG seed; 0 (default) seeds from the clock.
  max-threads  Matcher threads; 0 (default) uses all cores, 1 disables
               parallel matching.

Keys:
  space        pause / resume
  x            restart the scene
  q            quit (while paused after a failed step)
  esc          quit
Programs may remap space, x and q through their dictionary.

Options:
  -h, --help   Show this help
  --version    Show version
`, version)
}

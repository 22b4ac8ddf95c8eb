package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/handiism/memefetch/internal/catalog"
	"github.com/handiism/memefetch/internal/config"
	"github.com/handiism/memefetch/internal/download"
	memelog "github.com/handiism/memefetch/internal/log"
	"github.com/handiism/memefetch/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	settings, err := config.Load(config.DefaultPath())
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	memes, err := catalog.Load(settings.CatalogPath)
	if err != nil {
		return err
	}

	// The alt screen owns the terminal; logs go to a file only when asked for.
	var logOut io.Writer = io.Discard
	if os.Getenv("MEMEFETCH_DEBUG") != "" {
		f, err := tea.LogToFile("memefetch-debug.log", "memefetch")
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	logger := memelog.New(logOut, true)

	return tui.Run(settings, memes, download.WithLogger(logger))
}

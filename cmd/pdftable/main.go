// Command pdftable renders paginated tables described in JSON, YAML,
// Markdown or HTML to PDF.
//
// # Installation
//
//	go install github.com/lvillar/pdftable/cmd/pdftable@latest
//
// # Usage
//
//	pdftable render -o invoice.pdf invoice.yaml
//	pdftable layout stock.md
//	pdftable measure --width 120 --overflow ellipsize "A long product name"
//	pdftable examples invoice > invoice.yaml
//	pdftable mcp
//
// The --config flag, or PDFTABLE_CONFIG, names a YAML file with the default
// page, fonts and logging settings. See package config.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand(os.Stdin, os.Stdout, os.Stderr).Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "pdftable: %v\n", err)
		os.Exit(1)
	}
}

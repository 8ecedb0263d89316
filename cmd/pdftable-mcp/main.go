// Command pdftable-mcp is an MCP (Model Context Protocol) server that exposes
// table layout and rendering to AI assistants.
//
// # Installation
//
//	go install github.com/lvillar/pdftable/cmd/pdftable-mcp@latest
//
// # Configuration for Claude Desktop
//
// Add to ~/.config/claude/claude_desktop_config.json:
//
//	{
//	  "mcpServers": {
//	    "pdftable": {
//	      "command": "pdftable-mcp",
//	      "env": {"PDFTABLE_CONFIG": "/etc/pdftable.yaml"}
//	    }
//	  }
//	}
//
// # Available Tools
//
//   - render_table: Render a table definition to PDF
//   - layout_table: Report column widths and page breaks
//   - measure_text: Fit text into a width like a table cell
//
// # Available Resources
//
//   - table://examples/{name} : Bundled example definitions
//   - table://defaults : Default page, style and frame
//
// Logs go to standard error; standard output carries the protocol.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lvillar/pdftable/config"
	"github.com/lvillar/pdftable/mcp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pdftable-mcp: %v\n", err)
		os.Exit(1)
	}
	logger, err := cfg.Logger(os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pdftable-mcp: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := mcp.NewServer(os.Stdin, os.Stdout, logger)
	mcp.RegisterDefaultTools(server, cfg)
	mcp.RegisterDefaultResources(server, cfg)

	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

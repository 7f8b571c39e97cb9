package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/peterkuimelis/vale/internal/config"
	"github.com/peterkuimelis/vale/internal/content"
	"github.com/peterkuimelis/vale/internal/logging"
	valemcp "github.com/peterkuimelis/vale/internal/mcp"
	"github.com/peterkuimelis/vale/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	contentFile := flag.String("content", cfg.Content, "content YAML file (default: built-in)")
	flag.Parse()

	logger := logging.Must(cfg.LogLevel, cfg.LogFormat)
	defer logger.Sync()

	catalog, err := content.Load(*contentFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	s := server.NewMCPServer("vale", "1.0.0")
	valemcp.NewTools(session.NewManager(catalog, logger), logger).Register(s)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

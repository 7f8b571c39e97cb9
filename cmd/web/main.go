package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/peterkuimelis/vale/internal/config"
	"github.com/peterkuimelis/vale/internal/content"
	"github.com/peterkuimelis/vale/internal/logging"
	"github.com/peterkuimelis/vale/internal/session"
	"github.com/peterkuimelis/vale/internal/web"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	addr := flag.String("addr", cfg.Addr, "HTTP listen address")
	contentFile := flag.String("content", cfg.Content, "content YAML file (default: built-in)")
	flag.Parse()

	logger := logging.Must(cfg.LogLevel, cfg.LogFormat)
	defer logger.Sync()

	catalog, err := content.Load(*contentFile)
	if err != nil {
		logger.Fatal("load content", zap.Error(err))
	}

	srv := web.NewServer(session.NewManager(catalog, logger), logger)
	logger.Info("vale web listening", zap.String("addr", *addr))
	if err := srv.ListenAndServe(*addr); err != nil {
		logger.Fatal("serve", zap.Error(err))
	}
}

package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/EpicWink/pypub/internal/auth"
	"github.com/EpicWink/pypub/internal/config"
	"github.com/EpicWink/pypub/internal/index"
	"github.com/EpicWink/pypub/internal/observability"
)

func main() {
	cfgPath := flag.String("config", "/etc/pypubd/config.yaml", "Path to daemon config")
	flag.Parse()

	cfg, err := config.LoadServerConfig(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "error creating data dir: %v\n", err)
		os.Exit(1)
	}

	logger := observability.InitLogger("pypubd")

	srv := &server{
		store:     index.NewStore(cfg.DataDir),
		log:       logger,
		maxUpload: defaultMaxUpload,
	}

	mux := http.NewServeMux()
	mux.Handle("/legacy/", auth.Middleware(cfg.Token, http.HandlerFunc(srv.handleUpload)))
	mux.Handle("/packages", auth.Middleware(cfg.Token, http.HandlerFunc(srv.handleList)))

	logger.Info().Str("listen", cfg.Listen).Str("data_dir", cfg.DataDir).Msg("pypubd starting")
	if err := http.ListenAndServe(cfg.Listen, mux); err != nil {
		logger.Error().Err(err).Msg("server error")
		os.Exit(1)
	}
}

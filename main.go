package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deepwiki-go/mcpbridge/internal/config"
	"github.com/deepwiki-go/mcpbridge/internal/server"
	"github.com/deepwiki-go/mcpbridge/internal/tools"
	"github.com/deepwiki-go/mcpbridge/internal/wiki"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: mcpbridge <command> [flags]")
		fmt.Fprintln(os.Stderr, "Commands: serve, check")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		os.Exit(cmdServe())
	case "check":
		os.Exit(cmdCheck())
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		fmt.Fprintln(os.Stderr, "Commands: serve, check")
		os.Exit(1)
	}
}

func cmdServe() int {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfg := config.DefaultFromEnv()

	fs.StringVar(&cfg.Host, "host", cfg.Host, "Bind host")
	fs.IntVar(&cfg.Port, "port", cfg.Port, "Listen port")
	fs.StringVar(&cfg.UpstreamURL, "deepwiki-api", cfg.UpstreamURL, "DeepWiki API base URL")
	fs.DurationVar(&cfg.UpstreamTimeout, "timeout", cfg.UpstreamTimeout, "Upstream request timeout, covering the whole streamed answer")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Enable verbose logging")
	fs.Parse(os.Args[2:])

	client := wiki.NewClient(cfg.UpstreamURL, &http.Client{Timeout: cfg.UpstreamTimeout}, cfg.Verbose)

	registry := tools.NewRegistry()
	if err := tools.RegisterDeepWiki(registry, client); err != nil {
		slog.Error("failed to build tool surface", "error", err)
		return 1
	}

	// A failed probe is logged, not fatal: the upstream may come up after
	// the gateway, and /health keeps reporting the live state.
	probeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	status, err := client.Health(probeCtx)
	cancel()
	if status == wiki.StatusHealthy {
		slog.Info("deepwiki api reachable", "url", cfg.UpstreamURL)
	} else {
		slog.Warn("deepwiki api not reachable at startup", "url", cfg.UpstreamURL, "status", status, "error", err)
	}

	srv := server.New(cfg, client, registry)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	registry.SetReady()
	slog.Info("mcpbridge starting", "host", cfg.Host, "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		return 1
	}
	return 0
}

// cmdCheck probes the configured upstream once and exits 0 only when it is
// healthy, for use in container health checks and deploy gates.
func cmdCheck() int {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	cfg := config.DefaultFromEnv()

	fs.StringVar(&cfg.UpstreamURL, "deepwiki-api", cfg.UpstreamURL, "DeepWiki API base URL")
	jsonOut := fs.Bool("json", false, "Output the probe result as JSON")
	fs.Parse(os.Args[2:])

	client := wiki.NewClient(cfg.UpstreamURL, &http.Client{Timeout: 10 * time.Second}, false)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	status, err := client.Health(ctx)

	if *jsonOut {
		payload := map[string]string{"status": string(status), "deepwiki_api": cfg.UpstreamURL}
		if err != nil {
			payload["error"] = err.Error()
		}
		data, _ := json.MarshalIndent(payload, "", "  ")
		fmt.Println(string(data))
	} else if err != nil {
		fmt.Printf("%s: %s (%v)\n", cfg.UpstreamURL, status, err)
	} else {
		fmt.Printf("%s: %s\n", cfg.UpstreamURL, status)
	}

	if status != wiki.StatusHealthy {
		return 1
	}
	return 0
}

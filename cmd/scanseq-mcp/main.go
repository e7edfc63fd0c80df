package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ironsheep/scanseq-mcp/internal/config"
	"github.com/ironsheep/scanseq-mcp/internal/imaging"
	"github.com/ironsheep/scanseq-mcp/internal/logger"
	"github.com/ironsheep/scanseq-mcp/internal/sequence"
	"github.com/ironsheep/scanseq-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime)

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("scanseq-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		}
	}

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	if len(os.Args) > 1 && os.Args[1] == "info" {
		if len(os.Args) != 3 {
			fmt.Fprintln(os.Stderr, "Usage: scanseq-mcp info <folder>")
			os.Exit(2)
		}
		if err := info(cfg, os.Args[2]); err != nil {
			log.Fatalf("info: %v", err)
		}
		return
	}

	lg := logger.New(cfg.LogLevel)
	lg.Debugf("scanseq-mcp %s (built %s, commit %s)", Version, BuildTime, GitCommit)

	reg := prometheus.NewRegistry()
	metrics := sequence.NewMetrics(reg)
	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, reg, lg)
	}

	srv := server.New(
		server.WithConfig(cfg),
		server.WithLogger(lg),
		server.WithMetrics(metrics),
		server.WithVersion(Version),
	)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func printHelp() {
	fmt.Println("scanseq-mcp - MCP server for band image sequences")
	fmt.Println()
	fmt.Println("Usage: scanseq-mcp [options]")
	fmt.Println("       scanseq-mcp info <folder>")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  info <folder>    Print the shape and bands of a folder sequence as JSON")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Printf("  %s=debug|info|error    Log level (default info)\n", config.EnvLogLevel)
	fmt.Printf("  %s=N                  Decoded bands kept per sequence (default %d)\n", config.EnvCacheBands, sequence.DefaultCacheSize)
	fmt.Printf("  %s=N                Concurrent header reads on open (default %d)\n", config.EnvProbeWorkers, sequence.DefaultProbeConcurrency)
	fmt.Printf("  %s=host:port         Serve Prometheus metrics on /metrics\n", config.EnvMetricsAddr)
	fmt.Println()
	fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}

// info prints a folder sequence's shape and bands without decoding any band.
func info(cfg config.Config, folder string) error {
	opts := append(cfg.SequenceOptions(), sequence.WithLoader(imaging.NewDecoder()))
	seq, err := sequence.OpenFolder(context.Background(), folder, opts...)
	if err != nil {
		return err
	}
	defer seq.Close()

	bands, err := imaging.DescribeBands(seq)
	if err != nil {
		return err
	}
	shape := seq.Shape()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]interface{}{
		"folder":   folder,
		"width":    shape.Width,
		"height":   shape.Height,
		"channels": shape.Channels,
		"bands":    bands,
	})
}

func serveMetrics(addr string, reg *prometheus.Registry, lg logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	lg.Infof("serving metrics on %s/metrics", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		lg.Errorf("metrics endpoint stopped: %v", err)
	}
}

// Command trustsum summarizes documents by ranking their word bigrams.
//
// Usage:
//
//	trustsum run     [-config path] [-files a.json,b.json] [-exclude c.json] [-quiet]
//	trustsum serve   [-config path] [-http-addr :9191]
//	trustsum mcp     [-config path]
//	trustsum version
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sanonone/trustsum/internal/batch"
	"github.com/sanonone/trustsum/internal/config"
	mcpserver "github.com/sanonone/trustsum/internal/mcp"
	"github.com/sanonone/trustsum/internal/output"
	"github.com/sanonone/trustsum/internal/server"
	"github.com/sanonone/trustsum/pkg/cache"
	"github.com/sanonone/trustsum/pkg/engine"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "run":
		err = runCmd(ctx, args)
	case "serve":
		err = serveCmd(ctx, args)
	case "mcp":
		err = mcpCmd(ctx, args)
	case "version":
		fmt.Println("trustsum", version)
	case "-h", "-help", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		usage()
		os.Exit(2)
	}
	if err != nil {
		slog.Error("trustsum failed", "error", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: trustsum <command> [flags]

Commands:
  run      summarize the dataset directory and write the artifacts
  serve    start the HTTP API
  mcp      serve MCP tools over stdio
  version  print the version

Run "trustsum <command> -h" for the flags of a command.`)
}

// setup loads the configuration, installs the logger and builds the engine.
func setup(configPath string) (*config.Config, *engine.Engine, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	level, _ := config.ParseLevel(cfg.Log.Level)
	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, handlerOpts)
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(handler))

	opts := engine.Options{
		Params:     cfg.EngineParams(),
		Preprocess: cfg.Preprocess,
	}
	if cfg.Options.UseCache {
		c, err := cache.Open(cfg.Path.CachedDir)
		if err != nil {
			return nil, nil, err
		}
		opts.Cache = c
	}
	eng, err := engine.New(opts)
	if err != nil {
		return nil, nil, err
	}
	return cfg, eng, nil
}

func newRunner(cfg *config.Config, eng *engine.Engine) *batch.Runner {
	return batch.NewRunner(eng, output.NewWriter(cfg.Path.OutputDir, cfg.Options.OutputGraph), batch.Options{
		DatasetDir:     cfg.Path.DatasetDir,
		ValidationFile: cfg.Path.ValidationFile,
		TargetKey:      cfg.TargetKey(),
		StopOnError:    cfg.Options.StopOnError,
		Workers:        cfg.Options.Workers,
	})
}

func runCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to the YAML configuration file")
	files := fs.String("files", "", "Comma-separated dataset files to summarize (default: all)")
	exclude := fs.String("exclude", "", "Comma-separated dataset files to skip")
	quiet := fs.Bool("quiet", false, "Do not print the result table")
	fs.Parse(args)

	cfg, eng, err := setup(*configPath)
	if err != nil {
		return err
	}

	report, runErr := newRunner(cfg, eng).Run(ctx, batch.Selection{
		Files:   splitList(*files),
		Exclude: splitList(*exclude),
	})
	if report != nil {
		if err := output.WriteJSON(filepath.Join(cfg.Path.OutputDir, "report.json"), report); err != nil {
			slog.Warn("Failed to write run report", "error", err)
		}
		if !*quiet {
			if err := report.WriteTable(os.Stdout); err != nil {
				return err
			}
		}
	}
	return runErr
}

func serveCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to the YAML configuration file")
	httpAddr := fs.String("http-addr", "", "Address for the HTTP API (overrides server.http_addr)")
	fs.Parse(args)

	cfg, eng, err := setup(*configPath)
	if err != nil {
		return err
	}
	if *httpAddr != "" {
		cfg.Server.HTTPAddr = *httpAddr
	}

	srv := server.NewServer(eng, newRunner(cfg, eng), cfg.Server.HTTPAddr, cfg.Server.AuthToken)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	srv.Shutdown()
	return <-errCh
}

func mcpCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to the YAML configuration file")
	fs.Parse(args)

	_, eng, err := setup(*configPath)
	if err != nil {
		return err
	}

	s := mcpserver.NewMCPServer(eng, version)
	if err := s.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

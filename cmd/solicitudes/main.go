package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/inkacorp/solicitudes/internal/config"
	"github.com/inkacorp/solicitudes/internal/dashboard"
	"github.com/inkacorp/solicitudes/internal/logger"
	"github.com/inkacorp/solicitudes/internal/metrics"
	"github.com/inkacorp/solicitudes/internal/server"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `Usage: solicitudes [flags] <command>

Commands:
  serve            Run the back office HTTP API (default)
  list             Print the solicitudes grouped by status
  pdf -id ID       Write the report of one solicitud

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	var (
		configPath string
		envFile    string
		demo       bool
	)

	flag.StringVar(&configPath, "config", "", "YAML config file")
	flag.StringVar(&envFile, "env", ".env", "Environment file loaded before the config")
	flag.BoolVar(&demo, "demo", false, "Use an in-memory store seeded with sample solicitudes")
	flag.Usage = usage
	flag.Parse()

	command := flag.Arg(0)
	if command == "" {
		command = "serve"
	}
	if demo {
		os.Setenv("STORE_DRIVER", config.DriverMemory)
	}

	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Options{
		Level:        cfg.Logging.Level,
		Pretty:       cfg.Logging.Pretty,
		File:         cfg.Logging.File,
		MaxSizeMB:    cfg.Logging.MaxSizeMB,
		MaxBackups:   cfg.Logging.MaxBackups,
		MaxAgeDays:   cfg.Logging.MaxAgeDays,
		Compress:     cfg.Logging.Compress,
		SendToAxiom:  cfg.Axiom.Send && cfg.Axiom.APIKey != "",
		AxiomAPIKey:  cfg.Axiom.APIKey,
		AxiomOrgID:   cfg.Axiom.OrgID,
		AxiomDataset: cfg.Axiom.Dataset,
		AxiomFlush:   cfg.Axiom.FlushInterval,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	a, err := newApp(ctx, cfg, demo)
	if err == nil {
		switch command {
		case "serve":
			err = a.serve(ctx)
		case "list":
			err = a.list(ctx, os.Stdout)
		case "pdf":
			err = a.pdf(ctx, flag.Args()[1:], os.Stdout)
		default:
			err = fmt.Errorf("unknown command %q", command)
		}
		a.Close()
	}
	stop()

	if err != nil {
		log.Error().Err(err).Str("command", command).Msg("command failed")
		logger.Close()
		os.Exit(1)
	}
	logger.Close()
}

func (a *app) serve(ctx context.Context) error {
	srv := server.New(server.Deps{
		Store:     a.store,
		Gate:      a.gate,
		Generator: a.gen,
		Archive:   a.archive,
		Status:    a.cfg.Status,
	})

	httpServer := &http.Server{
		Addr:         ":" + strconv.Itoa(a.cfg.Server.Port),
		Handler:      srv.Handler(),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", httpServer.Addr).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info().Msg("shutting down")
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (a *app) list(ctx context.Context, out io.Writer) error {
	records, err := a.store.List(ctx)
	if err != nil {
		return err
	}
	view := dashboard.NewListView(a.cfg.Status)
	view.Load(records)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, g := range view.Groups() {
		fmt.Fprintf(tw, "%s (%d)\n", g.Status, g.Count)
		for _, r := range g.Rows {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n", r.ID, r.Name, r.NationalID, r.Amount, r.Date)
		}
	}
	fmt.Fprintf(tw, "Total: %d\n", view.Total())
	return tw.Flush()
}

func (a *app) pdf(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("pdf", flag.ContinueOnError)
	id := fs.String("id", "", "Solicitud identifier")
	dir := fs.String("out", ".", "Output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		fs.Usage()
		return errors.New("pdf: -id is required")
	}

	rec, err := a.store.Get(ctx, *id)
	if err != nil {
		return err
	}
	path, err := a.gen.GenerateToFile(ctx, rec, *dir)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, path)

	if a.archive != nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		url, err := a.archive.Put(ctx, a.gen.FileName(rec), data)
		if err != nil {
			log.Warn().Err(err).Str("solicitud", rec.ID).Msg("failed to archive report")
			return nil
		}
		fmt.Fprintln(out, url)
	}
	return nil
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"unicode/utf8"

	"go.opentelemetry.io/otel"

	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/config"
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/dataprocessing"
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/exporter"
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/infrastructure"
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/services"
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/validation"
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/pkg/contracts/domain"
)

// options holds the parsed command line
type options struct {
	In        string
	Out       string
	Delimiter string
	Format    exporter.Format
	Rate      *float64
}

// report is what the processor prints on stdout
type report struct {
	Summary  domain.DataSummary `json:"summary"`
	Overview domain.Overview    `json:"overview"`
	Exports  []string           `json:"exports"`
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		slog.Error("Invalid arguments", slog.String("error", err.Error()))
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", slog.String("error", err.Error()))
		cfg = config.Default()
	}

	// stdout carries the JSON report, so logs go to stderr
	logger := infrastructure.NewLogger(os.Stderr, cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, os.Stdout, logger); err != nil {
		logger.Error("Processing failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("processor", flag.ContinueOnError)
	fs.SetOutput(stderr)

	in := fs.String("in", "", "input CSV file (required)")
	out := fs.String("out", ".", "output directory for the exports")
	delimiter := fs.String("delimiter", "", "field delimiter, defaults to the configured one (\"tab\" for tabs)")
	format := fs.String("format", "csv", "export format: csv or xlsx")
	rate := fs.Float64("rate", 0, "capture rate in percent, defaults to the configured one")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	opts := options{In: *in, Out: *out, Delimiter: *delimiter}
	if opts.In == "" {
		return options{}, errors.New("-in is required")
	}

	f, err := exporter.ParseFormat(*format)
	if err != nil {
		return options{}, err
	}
	opts.Format = f

	fs.Visit(func(fl *flag.Flag) {
		if fl.Name == "rate" {
			opts.Rate = rate
		}
	})
	if opts.Rate != nil && *opts.Rate < 0 {
		return options{}, fmt.Errorf("-rate must not be negative, got %g", *opts.Rate)
	}

	if opts.Delimiter != "" {
		if _, err := delimiterRune(opts.Delimiter); err != nil {
			return options{}, err
		}
	}

	return opts, nil
}

// delimiterRune accepts a single character or the word "tab"
func delimiterRune(s string) (rune, error) {
	if s == "tab" || s == `\t` {
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("-delimiter must be a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == '"' || r == '\n' || r == '\r' {
		return 0, fmt.Errorf("-delimiter %q is not allowed", s)
	}
	return r, nil
}

func run(ctx context.Context, cfg *config.Config, opts options, stdout io.Writer, logger *slog.Logger) error {
	metrics, err := infrastructure.NewPipelineMetrics(otel.Meter(infrastructure.MeterName))
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	pipeline := dataprocessing.NewPipeline(cfg.Ingestion, logger, metrics)
	exp := exporter.NewExporter(cfg.Ingestion.DelimiterRune(), logger)
	session := services.NewSessionService(pipeline, exp, cfg.Analytics, metrics, logger)

	logger.InfoContext(ctx, "Processing file",
		slog.String("in", opts.In),
		slog.String("out", opts.Out),
		slog.String("format", string(opts.Format)))

	var delim rune
	if opts.Delimiter != "" {
		if delim, err = delimiterRune(opts.Delimiter); err != nil {
			return err
		}
	}

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateSourceFile(opts.In, cfg.Ingestion.MaxUploadBytes); err != nil {
		return err
	}
	if err := validator.ValidateOutputDirectory(opts.Out); err != nil {
		return err
	}

	file, err := os.Open(opts.In)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer file.Close()

	summary, err := session.Load(ctx, filepath.Base(opts.In), file, delim)
	if err != nil {
		return err
	}

	overview, err := session.Overview(ctx)
	if err != nil {
		return err
	}

	rep := report{Summary: summary, Overview: overview}

	recordsPath, err := writeExport(opts.Out, func(w io.Writer) (string, error) {
		return session.ExportRecords(ctx, w, opts.Format)
	})
	if err != nil {
		return fmt.Errorf("records export failed: %w", err)
	}
	rep.Exports = append(rep.Exports, recordsPath)

	simulationPath, err := writeExport(opts.Out, func(w io.Writer) (string, error) {
		return session.ExportSimulation(ctx, w, opts.Format, services.SimulationRequest{CaptureRate: opts.Rate})
	})
	if err != nil {
		return fmt.Errorf("simulation export failed: %w", err)
	}
	rep.Exports = append(rep.Exports, simulationPath)

	logger.InfoContext(ctx, "Processing complete",
		slog.Int("rows", summary.RowCount),
		slog.Any("exports", rep.Exports))

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// writeExport renders into memory and writes the file only on success
func writeExport(dir string, render func(io.Writer) (string, error)) (string, error) {
	var buf bytes.Buffer
	name, err := render(&buf)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/sync/errgroup"

	"gradesheet/internal/config"
	"gradesheet/internal/dataprocessing"
	"gradesheet/internal/exporter"
	"gradesheet/internal/infrastructure"
	"gradesheet/internal/validation"
	"gradesheet/pkg/contracts/domain"
)

const (
	exitOK      = 0
	exitFailed  = 1
	exitUsage   = 2
	outputTrail = "-grades"
)

type options struct {
	configPath string
	format     string
	outDir     string
	abcID      string
	workers    int
}

// fileResult is the outcome of processing one input file.
type fileResult struct {
	input  string
	output string
	sheet  *domain.GradeSheet
	err    error
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, inputs, code := parseFlags(args, stderr)
	if code >= 0 {
		return code
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "configuration error: %v\n", err)
		return exitUsage
	}

	logger, err := newLogger(cfg.Logging, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "logger error: %v\n", err)
		return exitFailed
	}
	defer infrastructure.CloseLogFile()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runID := uuid.NewString()
	ctx = infrastructure.WithTraceID(ctx, runID)

	// Metrics have no scrape endpoint in a one-shot run.
	telemetry := cfg.Telemetry
	telemetry.MetricExporter = "none"
	providers, err := infrastructure.InitializeOTel(telemetry, logger)
	if err != nil {
		fmt.Fprintf(stderr, "telemetry error: %v\n", err)
		return exitFailed
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = providers.Shutdown(shutdownCtx)
	}()

	validator := validation.NewFileValidator(logger)
	files, err := validator.ExpandInputs(inputs)
	if err != nil {
		printError(stderr, "%v", err)
		return exitFailed
	}
	if len(files) == 0 {
		printError(stderr, "no CSV or XLSX exports found")
		return exitFailed
	}
	if err := validator.ValidateOutputDirectory(cfg.Report.OutputDir); err != nil {
		printError(stderr, "%v", err)
		return exitFailed
	}

	logger.InfoContext(ctx, "processing exports",
		slog.String("run_id", runID),
		slog.Int("files", len(files)),
		slog.String("format", cfg.Report.Format),
		slog.String("output_dir", cfg.Report.OutputDir))

	results := processAll(ctx, files, cfg, logger, providers, opts.workers)

	failed := 0
	for _, res := range results {
		if res.err != nil {
			failed++
			printError(stderr, "%s: %v", res.input, res.err)
			continue
		}
		printSuccess(stdout, "%s -> %s (%d students, %d rows rejected)",
			res.input, res.output, res.sheet.Stats.Students, res.sheet.Stats.RowsRejected)
	}
	printSummary(stdout, results)

	if failed > 0 {
		return exitFailed
	}
	return exitOK
}

// parseFlags returns the options and positional inputs. A non-negative
// code means the process should exit with it.
func parseFlags(args []string, stderr io.Writer) (options, []string, int) {
	var opts options
	fs := flag.NewFlagSet(config.AppName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&opts.format, "format", "", "output format: json, csv or xlsx (default from config)")
	fs.StringVar(&opts.outDir, "out", "", "output directory (default from config)")
	fs.StringVar(&opts.abcID, "abc-id", "", "abc_id placeholder written to every student")
	fs.IntVar(&opts.workers, "workers", 4, "number of exports processed concurrently")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [flags] <export.csv|export.xlsx|dir>...\n", config.AppName)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return opts, nil, exitOK
		}
		return opts, nil, exitUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return opts, nil, exitUsage
	}
	if opts.workers < 1 {
		opts.workers = 1
	}
	return opts, fs.Args(), -1
}

// loadConfig layers the command line flags over the configuration file
// and environment.
func loadConfig(opts options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFrom(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if opts.format != "" {
		cfg.Report.Format = strings.ToLower(opts.format)
	}
	if opts.outDir != "" {
		cfg.Report.OutputDir = opts.outDir
	}
	if opts.abcID != "" {
		cfg.Report.ABCID = opts.abcID
	}
	if !slices.Contains(config.ReportFormats, cfg.Report.Format) {
		return nil, fmt.Errorf("unsupported format %q, want one of %s",
			cfg.Report.Format, strings.Join(config.ReportFormats, ", "))
	}
	return cfg, nil
}

// newLogger writes console logs to stderr so stdout carries only the
// report summary.
func newLogger(cfg config.LoggingConfig, stderr io.Writer) (*slog.Logger, error) {
	if cfg.Output == "console" {
		return infrastructure.NewLogger(cfg, stderr), nil
	}
	return infrastructure.InitializeLogger(cfg)
}

// processAll runs every file through its own reader and pipeline. A failed
// file does not stop the others.
func processAll(ctx context.Context, files []string, cfg *config.Config, logger *slog.Logger, providers *infrastructure.OTelProviders, workers int) []fileResult {
	names := outputNames(files)
	results := make([]fileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range files {
		g.Go(func() error {
			results[i] = processFile(gctx, path, names[i], cfg, logger, providers)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func processFile(ctx context.Context, path, name string, cfg *config.Config, logger *slog.Logger, providers *infrastructure.OTelProviders) fileResult {
	res := fileResult{input: path}
	fileLogger := logger.With(slog.String("file", filepath.Base(path)))

	if err := ctx.Err(); err != nil {
		res.err = err
		return res
	}

	writer, err := exporter.New(cfg.Report.Format, fileLogger)
	if err != nil {
		res.err = err
		return res
	}

	table, err := dataprocessing.NewReader(fileLogger).ReadFile(path)
	if err != nil {
		res.err = err
		return res
	}

	pipeline := dataprocessing.NewPipeline(fileLogger,
		dataprocessing.WithTracer(providers.Tracer),
		dataprocessing.WithProcessingOptions(dataprocessing.ProcessingOptions{ABCID: cfg.Report.ABCID}),
	)
	renderer := exporter.NewFileRenderer(cfg.Report.OutputDir, name, writer, fileLogger)

	res.sheet, res.err = pipeline.RunAndRender(ctx, table, renderer)
	res.output = renderer.Path()
	return res
}

// outputNames derives "<base>-grades" for every input, adding a numeric
// suffix when two inputs share a base name.
func outputNames(files []string) []string {
	names := make([]string, len(files))
	seen := make(map[string]int, len(files))
	for i, path := range files {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + outputTrail
		key := strings.ToLower(base)
		seen[key]++
		if n := seen[key]; n > 1 {
			base += "-" + strconv.Itoa(n)
		}
		names[i] = base
	}
	return names
}

// printSummary prints one row per student semester of every processed file.
func printSummary(w io.Writer, results []fileResult) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"File", "Roll No", "Name", "Semester", "SGPA", "Grade"})

	rows := 0
	for _, res := range results {
		if res.err != nil || res.sheet == nil {
			continue
		}
		file := filepath.Base(res.input)
		for _, s := range res.sheet.Students {
			for _, r := range s.Results {
				table.Append([]string{
					file,
					s.RollNo,
					s.Name,
					strconv.Itoa(r.Semester),
					formatSGPA(r.SGPA),
					r.SemGrade,
				})
				rows++
			}
		}
	}
	if rows == 0 {
		return
	}

	color.New(color.FgCyan).Fprintln(w, "\nSemester results")
	table.Render()
}

func formatSGPA(sgpa float64) string {
	if math.IsNaN(sgpa) || math.IsInf(sgpa, 0) {
		return "-"
	}
	return strconv.FormatFloat(sgpa, 'f', 2, 64)
}

func printSuccess(w io.Writer, format string, args ...any) {
	color.New(color.FgGreen).Fprintf(w, "OK    "+format+"\n", args...)
}

func printError(w io.Writer, format string, args ...any) {
	color.New(color.FgRed).Fprintf(w, "ERROR "+format+"\n", args...)
}

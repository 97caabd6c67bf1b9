package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/banshee-data/steering.dataset/internal/config"
	"github.com/banshee-data/steering.dataset/internal/dataset"
	"github.com/banshee-data/steering.dataset/internal/fsutil"
	"github.com/banshee-data/steering.dataset/internal/manifest"
	"github.com/banshee-data/steering.dataset/internal/report"
	"github.com/banshee-data/steering.dataset/internal/telemetry"
	"github.com/banshee-data/steering.dataset/internal/video"
)

type buildOptions struct {
	configPath string
	variants   []dataset.Variant
	dataDir    string
	dbPath     string
	reportDir  string
	samples    int
	workers    int
	trace      bool
	quiet      bool
}

func parseBuildFlags(args []string, stderr io.Writer) (*buildOptions, error) {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &buildOptions{}
	variant := fs.String("variant", "train-native", "Variant to build: train-native, train-yuv, eval-native, eval-yuv or all")
	fs.StringVar(&opts.configPath, "config", "", "Dataset config JSON (default "+config.DefaultConfigPath+" when present)")
	fs.StringVar(&opts.dataDir, "data-dir", "", "Override the session directory")
	fs.StringVar(&opts.dbPath, "db", defaultDBPath, "Manifest database path; empty disables the manifest")
	fs.StringVar(&opts.reportDir, "report", "", "Write histogram, trace and samples under this directory")
	fs.IntVar(&opts.samples, "samples", 0, "Number of normalised frames to save as PNG (needs -report)")
	fs.IntVar(&opts.workers, "workers", 0, "Override the number of transform workers")
	fs.BoolVar(&opts.trace, "trace", false, "Log every decoded frame")
	fs.BoolVar(&opts.quiet, "quiet", false, "Only log data-loss events")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if *variant == "all" {
		opts.variants = []dataset.Variant{
			dataset.VariantTrainNative, dataset.VariantTrainLumaChroma,
			dataset.VariantEvalNative, dataset.VariantEvalLumaChroma,
		}
	} else {
		v, err := dataset.ParseVariant(*variant)
		if err != nil {
			return nil, err
		}
		opts.variants = []dataset.Variant{v}
	}
	if opts.samples < 0 {
		return nil, fmt.Errorf("-samples must not be negative")
	}
	if opts.samples > 0 && opts.reportDir == "" {
		return nil, fmt.Errorf("-samples requires -report")
	}
	return opts, nil
}

// loadConfig reads path, or the defaults file when path is empty and the
// file exists, or the built-in defaults otherwise.
func loadConfig(path string) (*config.DatasetConfig, error) {
	if path == "" {
		if _, err := os.Stat(config.DefaultConfigPath); err != nil {
			return config.DefaultDatasetConfig(), nil
		}
		path = config.DefaultConfigPath
	}
	return config.LoadDatasetConfig(path)
}

// builderConfig maps the file config onto the Builder settings.
func builderConfig(cfg *config.DatasetConfig) (dataset.Config, error) {
	policy, err := dataset.ParseCountPolicy(cfg.GetCountPolicy())
	if err != nil {
		return dataset.Config{}, err
	}
	return dataset.Config{
		TargetHeight:    cfg.GetTargetHeight(),
		TargetWidth:     cfg.GetTargetWidth(),
		TrainEpochs:     cfg.GetTrainEpochs(),
		EvalEpochs:      cfg.GetEvalEpochs(),
		TelemetryColumn: cfg.GetTelemetryColumn(),
		CountPolicy:     policy,
		Workers:         cfg.GetWorkers(),
	}, nil
}

func applyOverrides(cfg *config.DatasetConfig, opts *buildOptions) error {
	if opts.dataDir != "" {
		cfg.DataDir = &opts.dataDir
	}
	if opts.workers != 0 {
		cfg.Workers = &opts.workers
	}
	return cfg.Validate()
}

func configureLogging(stderr io.Writer, opts *buildOptions) {
	diag := stderr
	if opts.quiet {
		diag = nil
	}
	var trace io.Writer
	if opts.trace {
		trace = stderr
	}
	dataset.SetLogWriters(stderr, diag, trace)
	video.SetLogWriters(stderr, diag, trace)
}

func runBuild(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseBuildFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if err := applyOverrides(cfg, opts); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	bcfg, err := builderConfig(cfg)
	if err != nil {
		return err
	}
	configureLogging(stderr, opts)

	resolver := dataset.EpochResolver{
		BaseDir:      cfg.GetDataDir(),
		VideoExt:     cfg.GetVideoExt(),
		TelemetryExt: cfg.GetTelemetryExt(),
	}
	videos := video.FFmpegOpener{FFmpegPath: cfg.GetFFmpegPath(), FFprobePath: cfg.GetFFprobePath()}
	b := dataset.NewBuilder(bcfg, resolver, videos, telemetry.CSVOpener{})

	var store *manifest.Store
	if opts.dbPath != "" {
		store, err = manifest.Open(opts.dbPath)
		if err != nil {
			return fmt.Errorf("open manifest: %w", err)
		}
		defer store.Close()
	}
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return err
	}

	for _, v := range opts.variants {
		run := manifest.NewRun(v, cfg.GetDataDir(), b.Config())
		run.ConfigJSON = cfgJSON

		log.Printf("building %s from %s", v, cfg.GetDataDir())
		ds, buildErr := b.BuildVariant(ctx, v)
		run.Finish(ds, buildErr)

		if store != nil {
			if err := store.InsertRun(run); err != nil {
				log.Printf("failed to record run %s: %v", run.RunID, err)
			}
		}
		if buildErr != nil {
			return fmt.Errorf("%s: %w", v, buildErr)
		}

		fmt.Fprintf(stdout, "%s run=%s\n", v, run.RunID)
		if err := report.WriteSummary(stdout, ds); err != nil {
			return err
		}
		fmt.Fprintln(stdout)

		if opts.reportDir != "" {
			if err := writeReport(fsutil.OSFileSystem{}, filepath.Join(opts.reportDir, v.String()), v, ds, opts.samples); err != nil {
				return fmt.Errorf("%s report: %w", v, err)
			}
		}
	}
	return nil
}

func writeReport(fsys fsutil.FileSystem, dir string, v dataset.Variant, ds *dataset.Dataset, samples int) error {
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if ds.Len() == 0 {
		log.Printf("%s: empty dataset, skipping report", v)
		return nil
	}

	var buf bytes.Buffer
	if err := report.Histogram(&buf, v.String()+" steering", ds.Labels, report.DefaultBins); err != nil {
		return err
	}
	if err := fsys.WriteFile(filepath.Join(dir, "labels.png"), buf.Bytes(), 0644); err != nil {
		return err
	}

	buf.Reset()
	if err := report.Trace(&buf, v.String(), ds); err != nil {
		return err
	}
	if err := fsys.WriteFile(filepath.Join(dir, "trace.html"), buf.Bytes(), 0644); err != nil {
		return err
	}

	paths, err := report.WriteSamples(fsys, filepath.Join(dir, "samples"), ds, samples)
	if err != nil {
		return err
	}
	log.Printf("%s: report written to %s (%d samples)", v, dir, len(paths))
	return nil
}

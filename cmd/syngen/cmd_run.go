package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"syngen/internal/augment"
	"syngen/internal/collab"
	"syngen/internal/config"
	"syngen/internal/imagestore"
	"syngen/internal/logging"
	"syngen/internal/pipeline"
)

var runFlags struct {
	entity          string
	contextLimit    int
	inputFolder     string
	outputFolder    string
	discardFolder   string
	augmentImages   bool
	transforms      []string
	seed            int64
	parallel        int
	contextParallel int
	callTimeout     time.Duration
	maxAttempts     int
	retryPause      time.Duration
	partialReport   bool
	configFile      string
	logLevel        string
	logFormat       string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process one input folder for one entity and emit the run report",
	Long: `Run drives the full pipeline over every image in the input folder:
plan placement contexts, synthesize the entity per context with bounded
retries, judge each candidate, persist accepted and discarded results,
augment accepted images, and write report.json.`,
	RunE: runRun,
}

func init() {
	d := config.Default()
	f := runCmd.Flags()
	f.StringVarP(&runFlags.entity, "entity", "e", "", "Entity to insert into the images (required)")
	f.IntVarP(&runFlags.contextLimit, "context-limit", "c", d.ContextLimit, "Max placement contexts per image")
	f.StringVar(&runFlags.inputFolder, "input-folder", d.InputFolder, "Folder with source photographs")
	f.StringVar(&runFlags.outputFolder, "output-folder", d.OutputFolder, "Root folder for accepted images and the report")
	f.StringVar(&runFlags.discardFolder, "discard-folder", d.DiscardFolder, "Root folder for rejected candidates")
	f.BoolVar(&runFlags.augmentImages, "augment", false, "Derive augmented variants from accepted images")
	f.StringSliceVar(&runFlags.transforms, "transforms", d.Transforms, "Augmentation transforms (mirror, rotate180, jitter)")
	f.Int64Var(&runFlags.seed, "seed", 0, "Seed for stochastic transforms")
	f.IntVar(&runFlags.parallel, "parallel", d.Parallel, "Number of parallel image workers")
	f.IntVar(&runFlags.contextParallel, "context-parallel", d.ContextParallel, "Concurrent context chains per image")
	f.DurationVar(&runFlags.callTimeout, "timeout", time.Duration(d.CallTimeout), "Per collaborator-call timeout")
	f.IntVar(&runFlags.maxAttempts, "max-attempts", d.MaxAttempts, "Total synthesis attempts per context")
	f.DurationVar(&runFlags.retryPause, "retry-pause", time.Duration(d.RetryPause), "Pause between synthesis retries")
	f.BoolVar(&runFlags.partialReport, "partial-report", d.PartialReport, "Emit a report even when the run is cancelled")
	f.StringVar(&runFlags.configFile, "config", "", "Optional YAML run file; flags override it")
	f.StringVar(&runFlags.logLevel, "log-level", d.LogLevel, "Log level (debug, info, warn, error)")
	f.StringVar(&runFlags.logFormat, "log-format", d.LogFormat, "Log format (text, json)")
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logging.Init(level, cfg.LogFormat)

	if err := cfg.LoadCredential(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	models, err := collab.NewGemini(ctx, collab.GeminiConfig{
		APIKey:         cfg.APIKey,
		DescribeModel:  cfg.DescribeModel,
		SynthesisModel: cfg.SynthesisModel,
		JudgeModel:     cfg.JudgeModel,
	})
	if err != nil {
		return err
	}

	store, err := imagestore.New(cfg.InputFolder, cfg.OutputFolder, cfg.DiscardFolder, cfg.Entity)
	if err != nil {
		return err
	}

	var transforms []augment.Transform
	if cfg.Augment {
		transforms, err = augment.BuildTransforms(cfg.Transforms, cfg.Seed)
		if err != nil {
			return err
		}
	}

	runner, err := pipeline.NewRunner(pipeline.Options{
		Entity:          cfg.Entity,
		ContextLimit:    cfg.ContextLimit,
		Parallel:        cfg.Parallel,
		ContextParallel: cfg.ContextParallel,
		CallTimeout:     time.Duration(cfg.CallTimeout),
		MaxAttempts:     cfg.MaxAttempts,
		RetryPause:      time.Duration(cfg.RetryPause),
		PartialReport:   cfg.PartialReport,
	}, models, store, augment.NewEngine(transforms...))
	if err != nil {
		return err
	}

	rep, _, runErr := runner.Run(ctx)
	if runErr != nil && !pipeline.IsCancelled(runErr) {
		return runErr
	}

	fmt.Printf("Entity:            %s\n", rep.Entity)
	fmt.Printf("Images processed:  %d\n", rep.TotalImages)
	fmt.Printf("API successes:     %d\n", rep.APISuccess)
	fmt.Printf("API failures:      %d\n", rep.APIFailures)
	fmt.Printf("Discarded:         %d\n", rep.Discarded)
	fmt.Printf("Augmented images:  %d\n", rep.AugmentedImages)
	fmt.Printf("Processing time:   %s\n", rep.ProcessingTime)
	if pipeline.IsCancelled(runErr) {
		fmt.Println("Run cancelled; results above cover what completed.")
		return runErr
	}
	fmt.Printf("Report: %s\n", filepath.Join(store.AcceptDir(), imagestore.ReportName))
	return nil
}

// resolveConfig layers the optional run file under any explicitly set flags.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if runFlags.configFile != "" {
		loaded, err := config.LoadFile(runFlags.configFile)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	set := cmd.Flags().Changed
	if set("entity") {
		cfg.Entity = runFlags.entity
	}
	if set("context-limit") {
		cfg.ContextLimit = runFlags.contextLimit
	}
	if set("input-folder") {
		cfg.InputFolder = runFlags.inputFolder
	}
	if set("output-folder") {
		cfg.OutputFolder = runFlags.outputFolder
	}
	if set("discard-folder") {
		cfg.DiscardFolder = runFlags.discardFolder
	}
	if set("augment") {
		cfg.Augment = runFlags.augmentImages
	}
	if set("transforms") {
		cfg.Transforms = runFlags.transforms
	}
	if set("seed") {
		cfg.Seed = runFlags.seed
	}
	if set("parallel") {
		cfg.Parallel = runFlags.parallel
	}
	if set("context-parallel") {
		cfg.ContextParallel = runFlags.contextParallel
	}
	if set("timeout") {
		cfg.CallTimeout = config.Duration(runFlags.callTimeout)
	}
	if set("max-attempts") {
		cfg.MaxAttempts = runFlags.maxAttempts
	}
	if set("retry-pause") {
		cfg.RetryPause = config.Duration(runFlags.retryPause)
	}
	if set("partial-report") {
		cfg.PartialReport = runFlags.partialReport
	}
	if set("log-level") {
		cfg.LogLevel = runFlags.logLevel
	}
	if set("log-format") {
		cfg.LogFormat = runFlags.logFormat
	}
	return cfg, nil
}

// Package pipeline orchestrates one entity run: per image it plans placement
// contexts, synthesizes candidates under a bounded-retry policy, routes each
// candidate through the authenticity judge, persists and augments accepted
// results, and aggregates everything into the run report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"syngen/internal/augment"
	"syngen/internal/collab"
	"syngen/internal/imagestore"
	"syngen/internal/logging"
	"syngen/internal/report"
)

// Options tunes one run. Zero values are normalized by NewRunner.
type Options struct {
	Entity          string
	ContextLimit    int           // max contexts planned per image, >= 1
	Parallel        int           // image workers, >= 1
	ContextParallel int           // concurrent context chains per image, >= 1
	CallTimeout     time.Duration // per collaborator call; 0 = no timeout
	MaxAttempts     int           // total synthesis attempts per context
	RetryPause      time.Duration // pause between synthesis attempts
	PartialReport   bool          // emit a report even when the run is cancelled
}

// Runner owns one per-entity run over one input folder.
type Runner struct {
	opts   Options
	models collab.Collaborator
	store  *imagestore.Store
	engine *augment.Engine
	agg    *report.Aggregator
	log    *slog.Logger
}

// NewRunner wires a run controller. engine may have zero transforms, which
// disables augmentation.
func NewRunner(opts Options, models collab.Collaborator, store *imagestore.Store, engine *augment.Engine) (*Runner, error) {
	if opts.Entity == "" {
		return nil, fmt.Errorf("pipeline: entity is required")
	}
	if opts.ContextLimit < 1 {
		return nil, fmt.Errorf("pipeline: context limit must be >= 1, got %d", opts.ContextLimit)
	}
	if opts.Parallel < 1 {
		opts.Parallel = 1
	}
	if opts.ContextParallel < 1 {
		opts.ContextParallel = 1
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 3
	}
	return &Runner{
		opts:   opts,
		models: models,
		store:  store,
		engine: engine,
		agg:    report.NewAggregator(opts.Entity),
		log:    logging.New("pipeline"),
	}, nil
}

// Run processes every input image and emits the report. Per-image and
// per-context failures become outcome records, never run failures; Run
// returns an error only for pre-start problems, a suppressed report, or a
// failed report write.
func (r *Runner) Run(ctx context.Context) (*report.Report, []ImageRecord, error) {
	start := time.Now()

	names, err := r.store.ListInputs()
	if err != nil {
		return nil, nil, err
	}
	r.log.Info("run started", "entity", r.opts.Entity, "images", len(names), "workers", r.opts.Parallel)

	records := make([]ImageRecord, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Parallel)
	for i, name := range names {
		// Enumerated images count toward total_images no matter what
		// happens to them afterwards.
		r.agg.AddImage(name)
		g.Go(func() error {
			records[i] = r.processImage(gctx, name)
			return nil
		})
	}
	_ = g.Wait() // per-image failures live in records

	rep := r.agg.Snapshot(time.Since(start))
	if ctx.Err() != nil && !r.opts.PartialReport {
		r.log.Warn("run cancelled, partial report suppressed")
		return rep, records, ctx.Err()
	}
	data, err := rep.Marshal()
	if err != nil {
		return rep, records, err
	}
	path, err := r.store.SaveReport(data)
	if err != nil {
		return rep, records, err
	}
	r.log.Info("run finished",
		"report", path,
		"total_images", rep.TotalImages,
		"api_success", rep.APISuccess,
		"api_failures", rep.APIFailures,
		"discarded", rep.Discarded,
		"augmented_images", rep.AugmentedImages,
		"processing_time", rep.ProcessingTime)
	return rep, records, ctx.Err()
}

// processImage plans contexts for one image and runs its context chains.
// Planning failures are recorded and leave the image with zero contexts.
func (r *Runner) processImage(ctx context.Context, name string) ImageRecord {
	rec := ImageRecord{Source: name}

	img, err := r.store.ReadInput(name)
	if err != nil {
		r.log.Error("read input failed", "image", name, "error", err)
		rec.PlanErr = err
		return rec
	}

	if ctx.Err() != nil {
		rec.PlanErr = ctx.Err()
		return rec
	}
	callCtx, cancel := r.callContext(ctx)
	contexts, err := r.models.GenerateContexts(callCtx, img, r.opts.Entity, r.opts.ContextLimit)
	cancel()
	if err != nil {
		r.log.Warn("context planning failed, image proceeds with zero contexts", "image", name, "error", err)
		rec.PlanErr = err
		return rec
	}
	rec.Contexts = contexts
	r.agg.SetContexts(name, contexts)
	r.log.Debug("contexts planned", "image", name, "count", len(contexts))

	rec.Outcomes = make([]ContextOutcome, len(contexts))
	g := new(errgroup.Group)
	g.SetLimit(r.opts.ContextParallel)
	for i, desc := range contexts {
		g.Go(func() error {
			rec.Outcomes[i] = r.processContext(ctx, img, i+1, desc)
			return nil
		})
	}
	_ = g.Wait()
	return rec
}

// processContext runs one strictly sequential chain:
// synthesize (with retry) -> judge -> persist -> augment.
func (r *Runner) processContext(ctx context.Context, img collab.Image, idx int, desc string) ContextOutcome {
	out := ContextOutcome{Index: idx, Description: desc}

	if ctx.Err() != nil {
		out.SynthesisErr = ctx.Err()
		return out
	}

	retrier := NewRetrier(r.opts.MaxAttempts, r.opts.RetryPause)
	artifact, err := retrier.Do(ctx, func() (*collab.Artifact, error) {
		callCtx, cancel := r.callContext(ctx)
		defer cancel()
		return r.models.SynthesizeEntity(callCtx, img, r.opts.Entity, desc)
	})
	out.Attempts = retrier.Attempts()
	if err != nil {
		out.SynthesisErr = err
		r.agg.CallFailed()
		r.log.Warn("synthesis failed", "image", img.Name, "context", idx, "attempts", out.Attempts, "error", err)
		return out
	}
	out.Synthesized = true
	r.agg.CallSucceeded()

	if ctx.Err() != nil {
		// Cancelled between stages: the candidate was never judged, so it
		// must not reach either tree.
		out.SynthesisErr = ctx.Err()
		return out
	}

	callCtx, cancel := r.callContext(ctx)
	authentic, err := r.models.JudgeAuthenticity(callCtx, artifact, r.opts.Entity, desc)
	cancel()
	if err != nil {
		// Fail closed: an unverifiable insertion never reaches curated output.
		out.Verdict = VerdictDiscard
		out.JudgeErr = err
		r.agg.CallFailed()
	} else {
		r.agg.CallSucceeded()
		if authentic {
			out.Verdict = VerdictAccept
		} else {
			out.Verdict = VerdictDiscard
		}
	}

	if out.Verdict == VerdictDiscard {
		r.agg.Discarded()
		path, err := r.store.SaveDiscarded(img.Name, idx, artifact)
		if err != nil {
			r.log.Error("persist discarded failed", "image", img.Name, "context", idx, "error", err)
			return out
		}
		out.Artifacts = append(out.Artifacts, path)
		r.log.Info("candidate discarded", "image", img.Name, "context", idx, "judge_error", out.JudgeErr != nil)
		return out
	}

	path, err := r.store.SaveAccepted(img.Name, idx, artifact)
	if err != nil {
		r.log.Error("persist accepted failed", "image", img.Name, "context", idx, "error", err)
		out.AugmentErr = err
		return out
	}
	out.Artifacts = append(out.Artifacts, path)
	r.log.Info("candidate accepted", "image", img.Name, "context", idx)

	if r.engine == nil || r.engine.Count() == 0 {
		return out
	}
	variants, err := r.engine.Derive(artifact.Data)
	if err != nil {
		// Variants are lost; the accepted original stays.
		out.AugmentErr = err
		r.log.Error("augmentation failed", "image", img.Name, "context", idx, "error", err)
		return out
	}
	for _, v := range variants {
		vpath, err := r.store.SaveVariant(img.Name, idx, v)
		if err != nil {
			out.AugmentErr = err
			r.log.Error("persist variant failed", "image", img.Name, "context", idx, "kind", v.Kind, "error", err)
			break
		}
		out.Artifacts = append(out.Artifacts, vpath)
		r.agg.Augmented(1)
	}
	return out
}

// callContext builds the context handed to a collaborator call: detached
// from run cancellation so in-flight calls finish or time out naturally,
// bounded by the configured per-call timeout.
func (r *Runner) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	base := context.WithoutCancel(ctx)
	if r.opts.CallTimeout > 0 {
		return context.WithTimeout(base, r.opts.CallTimeout)
	}
	return context.WithCancel(base)
}

// IsCancelled reports whether err is run cancellation rather than a pipeline
// failure.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

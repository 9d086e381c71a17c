// Package report accumulates run-wide counters and per-image context records
// and serializes the final run report. The Aggregator is the only shared
// mutable state between pipeline workers.
package report

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"
)

// Report is the run's terminal machine-readable artifact. Field names are
// the wire schema; do not rename.
type Report struct {
	Entity          string                       `json:"entity"`
	TotalImages     int                          `json:"total_images"`
	APISuccess      int                          `json:"api_success"`
	APIFailures     int                          `json:"api_failures"`
	AugmentedImages int                          `json:"augmented_images"`
	Discarded       int                          `json:"discarded"`
	Contexts        map[string]map[string]string `json:"contexts"`
	ProcessingTime  string                       `json:"processing_time"`
}

// Marshal serializes the report for persistence.
func (r *Report) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("report: marshal: %w", err)
	}
	return data, nil
}

// Aggregator is a mutex-guarded accumulator shared by all pipeline workers.
// api_success/api_failures fold synthesis and judge calls into one pair of
// counters: each synthesis chain contributes exactly one of the two no matter
// how many retries it consumed, and each judge call contributes one more.
type Aggregator struct {
	mu        sync.Mutex
	entity    string
	total     int
	success   int
	failures  int
	augmented int
	discarded int
	contexts  map[string]map[string]string
}

// NewAggregator creates an empty aggregator for one entity run.
func NewAggregator(entity string) *Aggregator {
	return &Aggregator{
		entity:   entity,
		contexts: make(map[string]map[string]string),
	}
}

// AddImage registers one enumerated input image. Every image counts toward
// total_images even when everything after enumeration fails.
func (a *Aggregator) AddImage(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.total++
	if _, ok := a.contexts[name]; !ok {
		a.contexts[name] = make(map[string]string)
	}
}

// SetContexts records the planned contexts of an image, keyed by 1-based
// index strings as the schema requires.
func (a *Aggregator) SetContexts(image string, contexts []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	m := make(map[string]string, len(contexts))
	for i, desc := range contexts {
		m[strconv.Itoa(i+1)] = desc
	}
	a.contexts[image] = m
}

// CallSucceeded counts one successful collaborator call (a synthesis chain
// that eventually produced an artifact, or a judge call that returned a
// verdict).
func (a *Aggregator) CallSucceeded() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.success++
}

// CallFailed counts one failed collaborator call (a synthesis chain that
// exhausted its attempts or failed permanently, or a judge call that produced
// no verdict).
func (a *Aggregator) CallFailed() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failures++
}

// Discarded counts one candidate routed to the discard tree.
func (a *Aggregator) Discarded() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.discarded++
}

// Augmented counts n derived variants written to the accepted tree.
func (a *Aggregator) Augmented(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.augmented += n
}

// Snapshot derives the immutable report from the counters. The contexts map
// is deep-copied so later mutation cannot leak into an emitted report.
func (a *Aggregator) Snapshot(elapsed time.Duration) *Report {
	a.mu.Lock()
	defer a.mu.Unlock()
	contexts := make(map[string]map[string]string, len(a.contexts))
	for image, m := range a.contexts {
		c := make(map[string]string, len(m))
		for k, v := range m {
			c[k] = v
		}
		contexts[image] = c
	}
	return &Report{
		Entity:          a.entity,
		TotalImages:     a.total,
		APISuccess:      a.success,
		APIFailures:     a.failures,
		AugmentedImages: a.augmented,
		Discarded:       a.discarded,
		Contexts:        contexts,
		ProcessingTime:  FormatDuration(elapsed),
	}
}

// FormatDuration renders elapsed time as "%dh %dm %ds".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}

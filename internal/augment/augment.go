// Package augment derives deterministic training variants from accepted
// artifacts. Transforms run strictly post-acceptance; variants are never
// re-judged.
package augment

import (
	"bytes"
	"fmt"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"

	"syngen/internal/logging"
)

// Error marks a failed augmentation. It is fatal only to the variants of the
// artifact being augmented; the accepted original is kept.
type Error struct {
	Kind string // transform kind, empty when decoding the source failed
	Err  error
}

func (e *Error) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("augment: decode source: %v", e.Err)
	}
	return fmt.Sprintf("augment: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Transform derives one variant image from an accepted original.
// Implementations must be pure: the same input image always yields the same
// output. A stochastic transform owns a fixed seed and reports it so runs
// remain reproducible.
type Transform interface {
	Kind() string
	Stochastic() bool
	Seed() int64 // meaningful only when Stochastic
	Apply(img image.Image) image.Image
}

// Variant is one derived image plus the metadata tying it to its transform.
type Variant struct {
	Kind string
	Seed int64 // recorded for stochastic transforms, 0 otherwise
	MIME string
	Data []byte
}

// Engine applies a fixed transform set to accepted artifacts.
type Engine struct {
	transforms []Transform
	log        *slog.Logger
}

// NewEngine creates an engine over the given transforms. An engine with no
// transforms derives nothing, which disables augmentation.
func NewEngine(transforms ...Transform) *Engine {
	return &Engine{transforms: transforms, log: logging.New("augment")}
}

// Count returns the number of configured transforms.
func (e *Engine) Count() int { return len(e.transforms) }

// Derive decodes the accepted artifact and produces one variant per
// configured transform. Variants are always PNG-encoded, which keeps
// repeated runs byte-identical.
func (e *Engine) Derive(data []byte) ([]Variant, error) {
	if len(e.transforms) == 0 {
		return nil, nil
	}
	src, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &Error{Err: err}
	}

	variants := make([]Variant, 0, len(e.transforms))
	for _, tr := range e.transforms {
		out := tr.Apply(src)
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, out, imaging.PNG); err != nil {
			return nil, &Error{Kind: tr.Kind(), Err: err}
		}
		v := Variant{Kind: tr.Kind(), MIME: "image/png", Data: buf.Bytes()}
		if tr.Stochastic() {
			v.Seed = tr.Seed()
		}
		variants = append(variants, v)
		e.log.Debug("variant derived", "kind", tr.Kind(), "bytes", buf.Len())
	}
	return variants, nil
}

package augment

import (
	"fmt"
	"image"
	"math/rand"

	"github.com/disintegration/imaging"
)

// Mirror flips the image horizontally. This is the baseline transform every
// augmented dataset gets.
type Mirror struct{}

func (Mirror) Kind() string                  { return "mirror" }
func (Mirror) Stochastic() bool              { return false }
func (Mirror) Seed() int64                   { return 0 }
func (Mirror) Apply(img image.Image) image.Image { return imaging.FlipH(img) }

// Rotate180 turns the image upside down.
type Rotate180 struct{}

func (Rotate180) Kind() string                  { return "rotate180" }
func (Rotate180) Stochastic() bool              { return false }
func (Rotate180) Seed() int64                   { return 0 }
func (Rotate180) Apply(img image.Image) image.Image { return imaging.Rotate180(img) }

// BrightnessJitter shifts brightness by a seeded random percentage in
// [-maxShift, +maxShift]. The shift is fixed at construction so the transform
// stays pure and the seed alone reproduces the output.
type BrightnessJitter struct {
	seed  int64
	shift float64
}

// NewBrightnessJitter derives the brightness shift from seed. maxShift is a
// percentage; 15 gives shifts in [-15%, +15%].
func NewBrightnessJitter(seed int64, maxShift float64) *BrightnessJitter {
	rng := rand.New(rand.NewSource(seed))
	return &BrightnessJitter{
		seed:  seed,
		shift: (rng.Float64()*2 - 1) * maxShift,
	}
}

func (b *BrightnessJitter) Kind() string     { return "jitter" }
func (b *BrightnessJitter) Stochastic() bool { return true }
func (b *BrightnessJitter) Seed() int64      { return b.seed }
func (b *BrightnessJitter) Apply(img image.Image) image.Image {
	return imaging.AdjustBrightness(img, b.shift)
}

// BuildTransforms maps configured transform names to Transform values.
// seed feeds the stochastic transforms.
func BuildTransforms(names []string, seed int64) ([]Transform, error) {
	var transforms []Transform
	for _, name := range names {
		switch name {
		case "mirror":
			transforms = append(transforms, Mirror{})
		case "rotate180":
			transforms = append(transforms, Rotate180{})
		case "jitter":
			transforms = append(transforms, NewBrightnessJitter(seed, 15))
		default:
			return nil, fmt.Errorf("augment: unknown transform %q", name)
		}
	}
	return transforms, nil
}

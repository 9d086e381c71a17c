package augment

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// testPNG renders a small asymmetric image so flips are observable.
func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{B: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestDerive_MirrorSwapsPixels(t *testing.T) {
	engine := NewEngine(Mirror{})
	variants, err := engine.Derive(testPNG(t))
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if len(variants) != 1 {
		t.Fatalf("len(variants) = %d, want 1", len(variants))
	}
	v := variants[0]
	if v.Kind != "mirror" {
		t.Errorf("Kind = %q, want mirror", v.Kind)
	}
	if v.Seed != 0 {
		t.Errorf("Seed = %d, deterministic transform must record none", v.Seed)
	}

	out, err := png.Decode(bytes.NewReader(v.Data))
	if err != nil {
		t.Fatalf("decode variant: %v", err)
	}
	left := color.NRGBAModel.Convert(out.At(0, 0)).(color.NRGBA)
	right := color.NRGBAModel.Convert(out.At(1, 0)).(color.NRGBA)
	if left.B != 255 || right.R != 255 {
		t.Errorf("mirror did not swap pixels: left=%+v right=%+v", left, right)
	}
}

func TestDerive_Idempotent(t *testing.T) {
	src := testPNG(t)
	engine := NewEngine(Mirror{}, Rotate180{}, NewBrightnessJitter(42, 15))

	first, err := engine.Derive(src)
	if err != nil {
		t.Fatalf("first Derive: %v", err)
	}
	second, err := engine.Derive(src)
	if err != nil {
		t.Fatalf("second Derive: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("variant counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !bytes.Equal(first[i].Data, second[i].Data) {
			t.Errorf("variant %q not byte-identical across runs", first[i].Kind)
		}
	}
}

func TestDerive_StochasticSeedRecorded(t *testing.T) {
	engine := NewEngine(NewBrightnessJitter(7, 15))
	variants, err := engine.Derive(testPNG(t))
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if variants[0].Seed != 7 {
		t.Errorf("Seed = %d, want 7", variants[0].Seed)
	}

	// Same seed reproduces the same bytes; a different seed is free to differ.
	again, err := NewEngine(NewBrightnessJitter(7, 15)).Derive(testPNG(t))
	if err != nil {
		t.Fatalf("Derive with same seed: %v", err)
	}
	if !bytes.Equal(variants[0].Data, again[0].Data) {
		t.Error("same seed must reproduce identical variant bytes")
	}
}

func TestDerive_NoTransforms(t *testing.T) {
	variants, err := NewEngine().Derive(testPNG(t))
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if variants != nil {
		t.Errorf("expected no variants, got %d", len(variants))
	}
}

func TestDerive_BadSource(t *testing.T) {
	_, err := NewEngine(Mirror{}).Derive([]byte("not an image"))
	if err == nil {
		t.Fatal("Derive should fail on undecodable source")
	}
}

func TestBuildTransforms(t *testing.T) {
	transforms, err := BuildTransforms([]string{"mirror", "rotate180", "jitter"}, 99)
	if err != nil {
		t.Fatalf("BuildTransforms: %v", err)
	}
	if len(transforms) != 3 {
		t.Fatalf("len = %d, want 3", len(transforms))
	}
	if transforms[2].Seed() != 99 {
		t.Errorf("jitter seed = %d, want 99", transforms[2].Seed())
	}

	if _, err := BuildTransforms([]string{"sharpen"}, 0); err == nil {
		t.Error("unknown transform name should fail")
	}
}

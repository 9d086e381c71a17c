// Package imagestore is the filesystem collaborator: it enumerates input
// photographs and persists accepted, discarded and augmented artifacts under
// entity-named folders.
package imagestore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"syngen/internal/augment"
	"syngen/internal/collab"
)

// ReportName is the fixed filename of the run report inside the accept dir.
const ReportName = "report.json"

// Store lays out one run's files on disk.
type Store struct {
	inputDir   string
	acceptDir  string // <output_root>/<entity>
	discardDir string // <discard_root>/<entity>
}

// New prepares the on-disk layout for a run: the accept dir is created if
// missing, the discard dir is cleared and recreated so a run never mixes its
// rejects with a previous run's.
func New(inputDir, outputRoot, discardRoot, entity string) (*Store, error) {
	s := &Store{
		inputDir:   inputDir,
		acceptDir:  filepath.Join(outputRoot, entity),
		discardDir: filepath.Join(discardRoot, entity),
	}
	if err := os.MkdirAll(s.acceptDir, 0o755); err != nil {
		return nil, fmt.Errorf("imagestore: create accept dir: %w", err)
	}
	if err := os.RemoveAll(s.discardDir); err != nil {
		return nil, fmt.Errorf("imagestore: clear discard dir: %w", err)
	}
	if err := os.MkdirAll(s.discardDir, 0o755); err != nil {
		return nil, fmt.Errorf("imagestore: create discard dir: %w", err)
	}
	return s, nil
}

// AcceptDir returns the directory holding accepted artifacts and the report.
func (s *Store) AcceptDir() string { return s.acceptDir }

// DiscardDir returns the directory holding discarded candidates.
func (s *Store) DiscardDir() string { return s.discardDir }

// ListInputs returns the sorted filenames of all images in the input folder.
// A missing input folder is an empty run, not an error.
func (s *Store) ListInputs() ([]string, error) {
	entries, err := os.ReadDir(s.inputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("imagestore: list inputs: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !isImageName(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// ReadInput loads one input image with its MIME type.
func (s *Store) ReadInput(name string) (collab.Image, error) {
	data, err := os.ReadFile(filepath.Join(s.inputDir, name))
	if err != nil {
		return collab.Image{}, fmt.Errorf("imagestore: read %q: %w", name, err)
	}
	return collab.Image{Name: name, MIME: mimeForName(name), Data: data}, nil
}

// SaveAccepted writes an accepted candidate as <base>_ctx<idx><ext> in the
// accept dir and returns its path. idx is the 1-based context index.
func (s *Store) SaveAccepted(source string, idx int, a *collab.Artifact) (string, error) {
	path := filepath.Join(s.acceptDir, candidateName(source, idx, a.MIME))
	if err := os.WriteFile(path, a.Data, 0o644); err != nil {
		return "", fmt.Errorf("imagestore: write accepted %q: %w", path, err)
	}
	return path, nil
}

// SaveDiscarded writes a rejected candidate into the discard dir.
func (s *Store) SaveDiscarded(source string, idx int, a *collab.Artifact) (string, error) {
	path := filepath.Join(s.discardDir, candidateName(source, idx, a.MIME))
	if err := os.WriteFile(path, a.Data, 0o644); err != nil {
		return "", fmt.Errorf("imagestore: write discarded %q: %w", path, err)
	}
	return path, nil
}

// SaveVariant writes an augmented variant next to its accepted original as
// <base>_ctx<idx>_aug_<kind><ext>, tying it to both source and transform.
func (s *Store) SaveVariant(source string, idx int, v augment.Variant) (string, error) {
	base := strings.TrimSuffix(source, filepath.Ext(source))
	name := fmt.Sprintf("%s_ctx%d_aug_%s%s", base, idx, v.Kind, extForMIME(v.MIME))
	path := filepath.Join(s.acceptDir, name)
	if err := os.WriteFile(path, v.Data, 0o644); err != nil {
		return "", fmt.Errorf("imagestore: write variant %q: %w", path, err)
	}
	return path, nil
}

// SaveReport writes the serialized run report into the accept dir.
func (s *Store) SaveReport(data []byte) (string, error) {
	path := filepath.Join(s.acceptDir, ReportName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("imagestore: write report: %w", err)
	}
	return path, nil
}

func candidateName(source string, idx int, mime string) string {
	base := strings.TrimSuffix(source, filepath.Ext(source))
	return fmt.Sprintf("%s_ctx%d%s", base, idx, extForMIME(mime))
}

func isImageName(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}

func mimeForName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	}
	return "image/png"
}

func extForMIME(mime string) string {
	if mime == "image/jpeg" {
		return ".jpg"
	}
	return ".png"
}

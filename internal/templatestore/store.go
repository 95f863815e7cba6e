// Package templatestore persists enrolled fingerprint templates and their
// preview images on the local filesystem, keyed by biometric ID. The data
// directory lives under the media root and is never routed publicly.
package templatestore

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	templateExt = ".template"
	imageExt    = ".png"
)

var ErrNotFound = errors.New("no template stored for biometric id")

type Store struct {
	dataDir string
}

// New creates the biometric data directory if needed.
func New(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating biometric data directory: %w", err)
	}
	return &Store{dataDir: dataDir}, nil
}

func (s *Store) templatePath(biometricID string) string {
	return filepath.Join(s.dataDir, biometricID+templateExt)
}

func (s *Store) imagePath(biometricID string) string {
	return filepath.Join(s.dataDir, biometricID+imageExt)
}

// Save overwrites any previous enrollment for the same biometric ID.
// image is the raw grayscale frame and may be empty; it is converted to PNG
// for review in the enrollment UI. The preview is written before the
// template so a crash mid-save can at worst leave an orphan preview, never
// a matchable identity without a template.
func (s *Store) Save(biometricID string, template, image []byte) error {
	if biometricID == "" || len(template) == 0 {
		return errors.New("biometric id and template must not be empty")
	}

	if len(image) > 0 {
		var png, err = EncodePreview(image)
		if err != nil {
			log.Printf("!!! preview conversion failed for %s: %v", biometricID, err)
		} else if err := os.WriteFile(s.imagePath(biometricID), png, 0600); err != nil {
			return fmt.Errorf("writing preview image: %w", err)
		}
	}

	if err := os.WriteFile(s.templatePath(biometricID), template, 0600); err != nil {
		return fmt.Errorf("writing template: %w", err)
	}
	return nil
}

func (s *Store) LoadTemplate(biometricID string) ([]byte, error) {
	var template, err = os.ReadFile(s.templatePath(biometricID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return template, nil
}

func (s *Store) LoadImage(biometricID string) ([]byte, error) {
	var image, err = os.ReadFile(s.imagePath(biometricID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return image, nil
}

// Delete removes both files and is idempotent.
func (s *Store) Delete(biometricID string) error {
	for _, path := range []string{s.templatePath(biometricID), s.imagePath(biometricID)} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// ListEnrolled returns the biometric IDs with a stored template, sorted so
// the 1:N scan order is deterministic.
func (s *Store) ListEnrolled() ([]string, error) {
	var entries, err = os.ReadDir(s.dataDir)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), templateExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(entry.Name(), templateExt))
	}
	sort.Strings(ids)
	return ids, nil
}

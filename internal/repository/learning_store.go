package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/timmy/reelsearch/internal/domain"
)

// ErrStoreCorrupt is returned when persisted learning data cannot be decoded.
var ErrStoreCorrupt = errors.New("learning store corrupt")

// LearningStore persists the learner's document between runs.
type LearningStore interface {
	// Load returns the persisted document, or an empty one when nothing
	// has been saved yet.
	Load(ctx context.Context) (*domain.LearningDocument, error)
	// Save replaces the persisted document with doc.
	Save(ctx context.Context, doc *domain.LearningDocument) error
}

// FileLearningStore keeps the learning document in a single JSON file.
type FileLearningStore struct {
	path string
}

// NewFileLearningStore creates a file-backed store.
// Parameters:
//   - path: JSON file location; parent directories are created on save.
// Returns:
//   - *FileLearningStore: store bound to path.
func NewFileLearningStore(path string) *FileLearningStore {
	return &FileLearningStore{path: path}
}

// Path returns the backing file location.
func (s *FileLearningStore) Path() string {
	return s.path
}

// Load reads the document. A missing file yields an empty document.
func (s *FileLearningStore) Load(ctx context.Context) (*domain.LearningDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.NewLearningDocument(), nil
		}
		return nil, fmt.Errorf("failed to read learning data: %w", err)
	}

	return DecodeDocument(data)
}

// Save writes the document atomically: a temp file in the same directory is
// synced and renamed over the target, so readers never see a partial file.
func (s *FileLearningStore) Save(ctx context.Context, doc *domain.LearningDocument) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := EncodeDocument(doc)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create learning data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".learning-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write learning data: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync learning data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close learning data: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace learning data: %w", err)
	}
	return nil
}

// EncodeDocument serializes a document in the on-disk JSON format.
func EncodeDocument(doc *domain.LearningDocument) ([]byte, error) {
	if doc == nil {
		doc = domain.NewLearningDocument()
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode learning data: %w", err)
	}
	return data, nil
}

// DecodeDocument parses the on-disk JSON format. Empty input is an empty
// document; undecodable input wraps ErrStoreCorrupt.
func DecodeDocument(data []byte) (*domain.LearningDocument, error) {
	doc := domain.NewLearningDocument()
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreCorrupt, err)
	}
	doc.Normalize()
	return doc, nil
}

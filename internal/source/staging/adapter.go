package staging

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/timmy/reelsearch/internal/domain"
	"github.com/timmy/reelsearch/internal/lexicon"
	"github.com/timmy/reelsearch/internal/source"
)

const (
	// ManifestFileName is the JSONL manifest file name in staging catalogs.
	ManifestFileName = "manifest.jsonl"
)

// ManifestItem represents one media record in manifest.jsonl.
type ManifestItem struct {
	ID           string             `json:"id"`
	Kind         string             `json:"kind"`
	Width        int                `json:"width"`
	Height       int                `json:"height"`
	Duration     float64            `json:"duration"`
	Quality      string             `json:"quality"`
	URL          string             `json:"url"`
	Links        []domain.MediaLink `json:"links"`
	Thumbnail    string             `json:"thumbnail"`
	AvgColor     string             `json:"avg_color"`
	Tags         []string           `json:"tags"`
	FileSize     int64              `json:"file_size"`
	Photographer string             `json:"photographer"`
	Alt          string             `json:"alt"`
}

// Adapter implements source.Source over a local manifest. It lets the
// search pipeline run offline against a curated catalog.
type Adapter struct {
	basePath string
	sourceID string

	once    sync.Once
	loadErr error
	items   []indexedItem
}

type indexedItem struct {
	candidate domain.MediaCandidate
	words     lexicon.Set
}

// NewAdapter creates a new staging adapter.
// Parameters:
//   - basePath: base path to the staging directory.
//   - sourceID: catalog directory name under basePath.
// Returns:
//   - *Adapter: initialized staging adapter.
func NewAdapter(basePath, sourceID string) *Adapter {
	return &Adapter{
		basePath: basePath,
		sourceID: sourceID,
	}
}

// GetSourceID returns the unique identifier for this source.
func (a *Adapter) GetSourceID() string {
	return "staging:" + a.sourceID
}

// GetDisplayName returns a human-readable name for this source.
func (a *Adapter) GetDisplayName() string {
	return fmt.Sprintf("Staging (%s)", a.sourceID)
}

// Search returns catalog items of the requested kind whose tags or alt text
// share a word with the query, best overlap first. Orientation and size
// filters are honored; color is ignored.
func (a *Adapter) Search(ctx context.Context, q source.Query) ([]domain.MediaCandidate, error) {
	a.once.Do(func() { a.loadErr = a.loadItems() })
	if a.loadErr != nil {
		return nil, fmt.Errorf("%w: %v", source.ErrUnavailable, a.loadErr)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", source.ErrUnavailable, err)
	}

	queryWords := lexicon.Words(strings.ToLower(q.Text))

	type hit struct {
		candidate domain.MediaCandidate
		overlap   int
	}
	var hits []hit
	for _, item := range a.items {
		c := item.candidate
		if c.Kind != q.Kind || !matchesParams(c, q.Params) {
			continue
		}
		overlap := 0
		for _, w := range queryWords {
			if item.words.Has(w) || item.words.Has(strings.TrimSuffix(w, "s")) {
				overlap++
			}
		}
		if overlap > 0 {
			hits = append(hits, hit{candidate: c, overlap: overlap})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].overlap > hits[j].overlap
	})

	limit := q.PerPage
	if limit <= 0 || limit > len(hits) {
		limit = len(hits)
	}
	out := make([]domain.MediaCandidate, 0, limit)
	for _, h := range hits[:limit] {
		out = append(out, h.candidate)
	}
	return out, nil
}

// GetTotalCount returns the number of well-formed catalog items.
func (a *Adapter) GetTotalCount() (int, error) {
	a.once.Do(func() { a.loadErr = a.loadItems() })
	if a.loadErr != nil {
		return 0, a.loadErr
	}
	return len(a.items), nil
}

func matchesParams(c domain.MediaCandidate, params map[string]string) bool {
	switch params["orientation"] {
	case "portrait":
		if c.Height <= c.Width {
			return false
		}
	case "landscape":
		if c.Width < c.Height {
			return false
		}
	}
	if params["size"] == "large" && c.Width*c.Height < 1920*1080 {
		return false
	}
	return true
}

// loadItems loads all items from the manifest file.
func (a *Adapter) loadItems() error {
	manifestPath := filepath.Join(a.basePath, a.sourceID, ManifestFileName)

	file, err := os.Open(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("manifest file not found: %s", manifestPath)
		}
		return fmt.Errorf("failed to open manifest: %w", err)
	}
	defer file.Close()

	a.items = nil

	// Read line by line (JSON Lines format)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var item ManifestItem
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			// Skip malformed lines
			continue
		}

		kind := domain.MediaKind(item.Kind)
		if item.ID == "" || item.URL == "" || !kind.Valid() {
			continue
		}

		words := lexicon.NewSet(lexicon.Words(strings.ToLower(item.Alt))...)
		for _, tag := range item.Tags {
			for _, w := range lexicon.Words(strings.ToLower(tag)) {
				words[w] = struct{}{}
			}
		}

		a.items = append(a.items, indexedItem{
			candidate: domain.MediaCandidate{
				ID:           item.ID,
				Kind:         kind,
				Width:        item.Width,
				Height:       item.Height,
				Duration:     item.Duration,
				Quality:      item.Quality,
				URL:          item.URL,
				Links:        item.Links,
				Thumbnail:    item.Thumbnail,
				AvgColor:     item.AvgColor,
				Tags:         item.Tags,
				Size:         item.FileSize,
				Photographer: item.Photographer,
				Alt:          item.Alt,
			},
			words: words,
		})
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading manifest: %w", err)
	}

	// Sort items by ID for consistent ordering
	sort.Slice(a.items, func(i, j int) bool {
		return a.items[i].candidate.ID < a.items[j].candidate.ID
	})

	return nil
}

// ListStagingSources lists all available staging catalogs.
// Parameters:
//   - basePath: base path to the staging directory.
// Returns:
//   - []string: list of catalog IDs.
//   - error: non-nil if reading the directory fails.
func ListStagingSources(basePath string) ([]string, error) {
	entries, err := os.ReadDir(basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	var sources []string
	for _, entry := range entries {
		if entry.IsDir() {
			manifestPath := filepath.Join(basePath, entry.Name(), ManifestFileName)
			if _, err := os.Stat(manifestPath); err == nil {
				sources = append(sources, entry.Name())
			}
		}
	}

	return sources, nil
}

package domain

import "math"

// MediaKind distinguishes the two searchable media types.
type MediaKind string

const (
	MediaKindVideo MediaKind = "video"
	MediaKindImage MediaKind = "image"
)

// Valid reports whether k is a known media kind.
func (k MediaKind) Valid() bool {
	return k == MediaKindVideo || k == MediaKindImage
}

// WidescreenRatio is the aspect ratio ranking prefers.
const WidescreenRatio = 16.0 / 9.0

// MediaLink is one downloadable rendition of a candidate.
type MediaLink struct {
	Quality string `json:"quality"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Link    string `json:"link"`
	Size    int64  `json:"size,omitempty"`
}

// MediaCandidate is one image or video returned by a stock media provider.
// Candidates are created per search call and never mutated after ranking.
type MediaCandidate struct {
	ID           string      `json:"id"`
	Kind         MediaKind   `json:"kind"`
	Width        int         `json:"width"`
	Height       int         `json:"height"`
	Duration     float64     `json:"duration"`
	Quality      string      `json:"quality,omitempty"`
	URL          string      `json:"url"`
	Links        []MediaLink `json:"links,omitempty"`
	Thumbnail    string      `json:"thumbnail,omitempty"`
	AvgColor     string      `json:"avg_color,omitempty"`
	Tags         []string    `json:"tags,omitempty"`
	Size         int64       `json:"file_size,omitempty"`
	Photographer string      `json:"photographer,omitempty"`
	Alt          string      `json:"alt,omitempty"`
	PageURL      string      `json:"page_url,omitempty"`

	// Set during ranking.
	Score    float64 `json:"relevance_score"`
	Strategy string  `json:"strategy,omitempty"`
}

// Area returns the pixel area of the candidate.
func (c MediaCandidate) Area() int {
	return c.Width * c.Height
}

// AspectRatio returns width/height, or 0 when height is unknown.
func (c MediaCandidate) AspectRatio() float64 {
	if c.Height <= 0 {
		return 0
	}
	return float64(c.Width) / float64(c.Height)
}

// AspectDeviation returns how far the candidate is from 16:9.
func (c MediaCandidate) AspectDeviation() float64 {
	ratio := c.AspectRatio()
	if ratio == 0 {
		return math.Inf(1)
	}
	return math.Abs(ratio - WidescreenRatio)
}

package pexels

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/timmy/reelsearch/internal/domain"
	"github.com/timmy/reelsearch/internal/logger"
	"github.com/timmy/reelsearch/internal/source"
)

const (
	// DefaultBaseURL is the public Pexels API endpoint.
	DefaultBaseURL = "https://api.pexels.com"
	// MaxPerPage is the largest page size the API accepts.
	MaxPerPage = 80

	videoSearchPath = "/videos/search"
	photoSearchPath = "/v1/search"
)

// Config holds Pexels client configuration.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Adapter implements source.Source against the Pexels REST API.
type Adapter struct {
	client *resty.Client
}

// NewAdapter creates a Pexels adapter.
// Parameters:
//   - cfg: API key, base URL and per-request timeout.
// Returns:
//   - *Adapter: initialized adapter.
func NewAdapter(cfg *Config) *Adapter {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("Authorization", cfg.APIKey)
	client.SetHeader("Accept", "application/json")
	client.SetTimeout(timeout)

	return &Adapter{client: client}
}

// GetSourceID returns the unique identifier for this source.
func (a *Adapter) GetSourceID() string {
	return "pexels"
}

// GetDisplayName returns a human-readable name for this source.
func (a *Adapter) GetDisplayName() string {
	return "Pexels"
}

// Search implements source.Source.
func (a *Adapter) Search(ctx context.Context, q source.Query) ([]domain.MediaCandidate, error) {
	perPage := q.PerPage
	if perPage <= 0 || perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	params := map[string]string{
		"query":       q.Text,
		"per_page":    strconv.Itoa(perPage),
		"orientation": "landscape",
	}
	if q.Kind == domain.MediaKindVideo {
		params["size"] = "medium"
	}
	for k, v := range q.Params {
		params[k] = v
	}

	if q.Kind == domain.MediaKindImage {
		var resp photoSearchResponse
		if err := a.get(ctx, photoSearchPath, params, &resp); err != nil {
			return nil, err
		}
		return convertPhotos(ctx, resp.Photos), nil
	}

	var resp videoSearchResponse
	if err := a.get(ctx, videoSearchPath, params, &resp); err != nil {
		return nil, err
	}
	return convertVideos(ctx, resp.Videos), nil
}

func (a *Adapter) get(ctx context.Context, path string, params map[string]string, result interface{}) error {
	httpResp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		ForceContentType("application/json").
		SetResult(result).
		Get(path)
	if err != nil {
		return fmt.Errorf("%w: pexels request failed: %v", source.ErrUnavailable, err)
	}
	if httpResp.StatusCode() != http.StatusOK {
		return fmt.Errorf("%w: pexels API error: status %d", source.ErrUnavailable, httpResp.StatusCode())
	}
	return nil
}

type videoSearchResponse struct {
	Page         int     `json:"page"`
	PerPage      int     `json:"per_page"`
	TotalResults int     `json:"total_results"`
	Videos       []video `json:"videos"`
}

type video struct {
	ID       int64    `json:"id"`
	Width    int      `json:"width"`
	Height   int      `json:"height"`
	Duration float64  `json:"duration"`
	URL      string   `json:"url"`
	Image    string   `json:"image"`
	AvgColor *string  `json:"avg_color"`
	Tags     []string `json:"tags"`
	User     struct {
		Name string `json:"name"`
	} `json:"user"`
	VideoFiles []struct {
		Quality  string `json:"quality"`
		FileType string `json:"file_type"`
		Width    int    `json:"width"`
		Height   int    `json:"height"`
		Link     string `json:"link"`
		Size     int64  `json:"size"`
		FileSize int64  `json:"file_size"`
	} `json:"video_files"`
	VideoPictures []struct {
		Picture string `json:"picture"`
	} `json:"video_pictures"`
}

type photoSearchResponse struct {
	Page         int     `json:"page"`
	PerPage      int     `json:"per_page"`
	TotalResults int     `json:"total_results"`
	Photos       []photo `json:"photos"`
}

type photo struct {
	ID           int64  `json:"id"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	URL          string `json:"url"`
	Photographer string `json:"photographer"`
	AvgColor     string `json:"avg_color"`
	Alt          string `json:"alt"`
	Src          struct {
		Original string `json:"original"`
		Large2x  string `json:"large2x"`
		Large    string `json:"large"`
		Medium   string `json:"medium"`
	} `json:"src"`
}

// convertVideos maps API records to candidates, skipping records without an
// id or a usable link.
func convertVideos(ctx context.Context, videos []video) []domain.MediaCandidate {
	out := make([]domain.MediaCandidate, 0, len(videos))
	skipped := 0
	for _, v := range videos {
		if v.ID == 0 || len(v.VideoFiles) == 0 {
			skipped++
			continue
		}

		links := make([]domain.MediaLink, 0, len(v.VideoFiles))
		for _, f := range v.VideoFiles {
			if f.Link == "" {
				continue
			}
			size := f.Size
			if size == 0 {
				size = f.FileSize
			}
			links = append(links, domain.MediaLink{
				Quality: f.Quality,
				Width:   f.Width,
				Height:  f.Height,
				Link:    f.Link,
				Size:    size,
			})
		}
		fast, ok := FastLink(links)
		if !ok {
			skipped++
			continue
		}

		width, height := v.Width, v.Height
		if width == 0 || height == 0 {
			width, height = fast.Width, fast.Height
		}

		thumbnail := v.Image
		if thumbnail == "" && len(v.VideoPictures) > 0 {
			thumbnail = v.VideoPictures[0].Picture
		}

		c := domain.MediaCandidate{
			ID:           strconv.FormatInt(v.ID, 10),
			Kind:         domain.MediaKindVideo,
			Width:        width,
			Height:       height,
			Duration:     v.Duration,
			Quality:      fast.Quality,
			URL:          fast.Link,
			Links:        links,
			Thumbnail:    thumbnail,
			Tags:         v.Tags,
			Size:         fast.Size,
			Photographer: v.User.Name,
			PageURL:      v.URL,
		}
		if v.AvgColor != nil {
			c.AvgColor = *v.AvgColor
		}
		out = append(out, c)
	}

	if skipped > 0 {
		logger.With(logger.Fields{
			logger.FieldProvider: "pexels",
			logger.FieldCount:    skipped,
		}).Debug(ctx, "Skipped malformed video records")
	}
	return out
}

func convertPhotos(ctx context.Context, photos []photo) []domain.MediaCandidate {
	out := make([]domain.MediaCandidate, 0, len(photos))
	skipped := 0
	for _, p := range photos {
		link := p.Src.Large
		if link == "" {
			link = p.Src.Original
		}
		if p.ID == 0 || link == "" {
			skipped++
			continue
		}
		out = append(out, domain.MediaCandidate{
			ID:           strconv.FormatInt(p.ID, 10),
			Kind:         domain.MediaKindImage,
			Width:        p.Width,
			Height:       p.Height,
			URL:          link,
			Thumbnail:    p.Src.Medium,
			AvgColor:     p.AvgColor,
			Photographer: p.Photographer,
			Alt:          p.Alt,
			PageURL:      p.URL,
		})
	}

	if skipped > 0 {
		logger.With(logger.Fields{
			logger.FieldProvider: "pexels",
			logger.FieldCount:    skipped,
		}).Debug(ctx, "Skipped malformed photo records")
	}
	return out
}

// FastLink picks the quickest-loading rendition: the first SD file, else
// the last file in the list, which the API orders smallest last.
func FastLink(links []domain.MediaLink) (domain.MediaLink, bool) {
	if len(links) == 0 {
		return domain.MediaLink{}, false
	}
	for _, l := range links {
		if strings.EqualFold(l.Quality, "sd") {
			return l, true
		}
	}
	return links[len(links)-1], true
}

// Package flickr implements photo search against the Flickr REST API.
package flickr

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/morozkin/Point2Image/internal/core/domain"
	"github.com/morozkin/Point2Image/internal/pkg/metrics"
)

// Client searches Flickr for geotagged photos. It implements ports.PhotoSearcher.
type Client struct {
	urls       URLComposer
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a Client. A zero timeout leaves requests bounded only by
// the caller's context.
func NewClient(baseURL, apiKey string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		urls:       NewURLComposer(baseURL, apiKey),
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

type photosResponse struct {
	Stat    string `json:"stat"`
	Message string `json:"message,omitempty"`
	Photos  *struct {
		Page  int     `json:"page"`
		Pages int     `json:"pages"`
		Total int     `json:"total"`
		Photo []photo `json:"photo"`
	} `json:"photos"`
}

type photo struct {
	ID        string     `json:"id"`
	Secret    string     `json:"secret"`
	Server    string     `json:"server"`
	Latitude  coordinate `json:"latitude"`
	Longitude coordinate `json:"longitude"`
}

// coordinate accepts both "12.34" and 12.34; Flickr has returned either.
type coordinate float64

func (c *coordinate) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*c = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("coordinate %q: %w", s, err)
		}
		*c = coordinate(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*c = coordinate(f)
	return nil
}

// Search returns up to ten photos taken within 3 km of the given point, in
// the order Flickr ranks them.
func (c *Client) Search(ctx context.Context, latitude, longitude float64) (candidates []domain.PhotoCandidate, err error) {
	start := time.Now()
	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
			err = fmt.Errorf("%w: %w", domain.ErrPhotoSearchFailed, err)
		}
		metrics.PhotoSearchDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
	}()

	log := c.log.With().Float64("lat", latitude).Float64("lon", longitude).Logger()
	log.Debug().Msg("searching photos")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.urls.GeoSearchURL(latitude, longitude), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("photo search request failed")
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search failed with status %d: %s", resp.StatusCode, string(body))
	}
	if mt, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); mt != "application/json" {
		return nil, fmt.Errorf("unexpected content type %q", resp.Header.Get("Content-Type"))
	}

	var decoded photosResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		log.Error().Err(err).Msg("unable to parse photo search response")
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}
	if decoded.Stat != "ok" {
		return nil, fmt.Errorf("flickr stat %q: %s", decoded.Stat, decoded.Message)
	}
	if decoded.Photos == nil {
		return nil, nil
	}

	candidates = make([]domain.PhotoCandidate, 0, len(decoded.Photos.Photo))
	for _, p := range decoded.Photos.Photo {
		candidates = append(candidates, domain.PhotoCandidate{
			ID:        p.ID,
			ServerID:  p.Server,
			Secret:    p.Secret,
			Latitude:  float64(p.Latitude),
			Longitude: float64(p.Longitude),
		})
	}
	log.Debug().Int("count", len(candidates)).Msg("photo search finished")
	return candidates, nil
}

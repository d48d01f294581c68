package domain

import (
	"errors"
	"fmt"
	"strconv"
)

var ErrPhotoSearchFailed = errors.New("photo search failed")

// PhotoCandidate is a geotagged photo returned by the search capability.
type PhotoCandidate struct {
	ID        string
	ServerID  string
	Secret    string
	Latitude  float64
	Longitude float64
}

// URL is the medium-size (800px) static image address.
func (p PhotoCandidate) URL() string {
	return fmt.Sprintf("https://live.staticflickr.com/%s/%s_%s_c.jpg", p.ServerID, p.ID, p.Secret)
}

// Caption renders the photo coordinates, e.g. "37.330248, -122.027243".
func (p PhotoCandidate) Caption() string {
	return strconv.FormatFloat(p.Latitude, 'f', -1, 64) + ", " + strconv.FormatFloat(p.Longitude, 'f', -1, 64)
}

// CaptionedImage is the display form of an accepted photo.
type CaptionedImage struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	Caption string `json:"caption"`
}

// NewCaptionedImage derives the display form of a candidate.
func NewCaptionedImage(p PhotoCandidate) CaptionedImage {
	return CaptionedImage{
		ID:      p.ID,
		URL:     p.URL(),
		Caption: p.Caption(),
	}
}

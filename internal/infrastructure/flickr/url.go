package flickr

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultBaseURL is the public Flickr API host.
const DefaultBaseURL = "https://www.flickr.com"

const (
	searchMethod   = "flickr.photos.search"
	searchAccuracy = "16" // street level
	searchRadius   = "3"
	searchPerPage  = "10"
)

// URLComposer builds Flickr REST request URLs.
type URLComposer struct {
	baseURL string
	apiKey  string
}

func NewURLComposer(baseURL, apiKey string) URLComposer {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return URLComposer{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey}
}

// GeoSearchURL returns the photos.search URL for geotagged photos near a point.
func (c URLComposer) GeoSearchURL(latitude, longitude float64) string {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("method", searchMethod)
	q.Set("accuracy", searchAccuracy)
	q.Set("lat", strconv.FormatFloat(latitude, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(longitude, 'f', -1, 64))
	q.Set("radius", searchRadius)
	q.Set("radius_units", "km")
	q.Set("per_page", searchPerPage)
	q.Set("extras", "geo")
	q.Set("format", "json")
	q.Set("nojsoncallback", "1")

	return c.baseURL + "/services/rest?" + q.Encode()
}

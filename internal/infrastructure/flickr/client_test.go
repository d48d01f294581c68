package flickr

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/morozkin/Point2Image/internal/core/domain"
)

const samplePhotos = `{
  "photos": {
    "page": 1, "pages": 12, "total": 118,
    "photo": [
      {"id": "5377", "secret": "abc", "server": "65535", "latitude": "52.5163", "longitude": "13.3777"},
      {"id": "5378", "secret": "def", "server": "7", "latitude": 52.52, "longitude": 13.4}
    ]
  },
  "stat": "ok"
}`

func newTestServer(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "key-123", 0, zerolog.Nop()), srv
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestURLComposer_GeoSearchURL(t *testing.T) {
	raw := NewURLComposer("", "key-123").GeoSearchURL(52.5163, -13.25)
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("unparseable url %q: %v", raw, err)
	}
	if u.Scheme+"://"+u.Host != DefaultBaseURL || u.Path != "/services/rest" {
		t.Fatalf("unexpected endpoint %q", raw)
	}

	want := map[string]string{
		"api_key":        "key-123",
		"method":         "flickr.photos.search",
		"accuracy":       "16",
		"lat":            "52.5163",
		"lon":            "-13.25",
		"radius":         "3",
		"radius_units":   "km",
		"per_page":       "10",
		"extras":         "geo",
		"format":         "json",
		"nojsoncallback": "1",
	}
	q := u.Query()
	for k, v := range want {
		if got := q.Get(k); got != v {
			t.Errorf("%s: expected %q, got %q", k, v, got)
		}
	}
}

func TestURLComposer_TrimsTrailingSlash(t *testing.T) {
	u, _ := url.Parse(NewURLComposer("http://localhost:9000/", "k").GeoSearchURL(0, 0))
	if u.Path != "/services/rest" {
		t.Fatalf("expected /services/rest, got %q", u.Path)
	}
}

func TestClient_Search_DecodesPhotosInOrder(t *testing.T) {
	var gotQuery url.Values
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		jsonHandler(http.StatusOK, samplePhotos)(w, r)
	})

	photos, err := c.Search(context.Background(), 52.5, 13.4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery.Get("lat") != "52.5" || gotQuery.Get("lon") != "13.4" {
		t.Fatalf("coordinates not forwarded: %v", gotQuery)
	}
	if len(photos) != 2 {
		t.Fatalf("expected 2 photos, got %d", len(photos))
	}
	want := domain.PhotoCandidate{ID: "5377", ServerID: "65535", Secret: "abc", Latitude: 52.5163, Longitude: 13.3777}
	if photos[0] != want {
		t.Fatalf("expected %+v, got %+v", want, photos[0])
	}
	if photos[1].ID != "5378" || photos[1].Latitude != 52.52 || photos[1].Longitude != 13.4 {
		t.Fatalf("numeric coordinates not decoded: %+v", photos[1])
	}
}

func TestClient_Search_EmptyResult(t *testing.T) {
	c, _ := newTestServer(t, jsonHandler(http.StatusOK, `{"photos":{"page":1,"pages":0,"total":0,"photo":[]},"stat":"ok"}`))

	photos, err := c.Search(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(photos) != 0 {
		t.Fatalf("expected no photos, got %d", len(photos))
	}
}

func TestClient_Search_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"non-200", jsonHandler(http.StatusInternalServerError, `{"stat":"fail"}`)},
		{"not json", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html></html>"))
		}},
		{"stat fail", jsonHandler(http.StatusOK, `{"stat":"fail","code":100,"message":"Invalid API Key"}`)},
		{"malformed", jsonHandler(http.StatusOK, `{"photos":`)},
		{"bad coordinate", jsonHandler(http.StatusOK, `{"photos":{"photo":[{"id":"1","latitude":"north"}]},"stat":"ok"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestServer(t, tt.handler)
			photos, err := c.Search(context.Background(), 1, 2)
			if !errors.Is(err, domain.ErrPhotoSearchFailed) {
				t.Fatalf("expected ErrPhotoSearchFailed, got %v", err)
			}
			if photos != nil {
				t.Fatalf("expected no photos on failure, got %v", photos)
			}
		})
	}
}

func TestClient_Search_HonoursContext(t *testing.T) {
	release := make(chan struct{})
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Search(ctx, 0, 0)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if !errors.Is(err, domain.ErrPhotoSearchFailed) {
		t.Fatalf("expected ErrPhotoSearchFailed wrap, got %v", err)
	}
}

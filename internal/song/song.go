package song

import (
	"fmt"
	"net/url"
	"regexp"
)

// Song is a raw song record as returned by the metadata provider.
type Song struct {
	ID           string   `json:"videoId"`
	Name         string   `json:"name"`
	Artist       string   `json:"artist"`
	Album        *string  `json:"album,omitempty"`
	Duration     *int     `json:"duration,omitempty"` // seconds
	ThumbnailURL string   `json:"thumbnailUrl,omitempty"`
	Lyrics       []string `json:"-"`
}

// Thumbnails holds proxied thumbnail URLs at the fixed resolutions the
// clients use.
type Thumbnails struct {
	Small  string `json:"small"`  // 60x60 - player, queue items
	Medium string `json:"medium"` // 120x120 - search results
	Large  string `json:"large"`  // 240x240 - song pages
	XLarge string `json:"xlarge"` // 480x480 - mobile player
	Full   string `json:"full"`   // original size
}

// EnhancedSong is a Song augmented with derived thumbnail URLs. Enhanced
// songs are immutable once built and are what gets queued, persisted and
// broadcast.
type EnhancedSong struct {
	ID        string     `json:"videoId"`
	Name      string     `json:"name"`
	Artist    string     `json:"artist"`
	Album     *string    `json:"album,omitempty"`
	Duration  *int       `json:"duration,omitempty"`
	Thumbnail Thumbnails `json:"thumbnail"`
}

// sizeSuffix matches the size/quality suffix the CDN appends to thumbnail
// URLs, e.g. "=w120-h120-l90-rj".
var sizeSuffix = regexp.MustCompile(`=w\d+-h\d+(-[a-z](\d+)?)*-rj`)

// Enhance derives an EnhancedSong from a raw provider record. The derivation
// is deterministic: the CDN size suffix is stripped from the raw thumbnail
// URL and proxied URLs are built for each preset resolution.
func Enhance(s Song) EnhancedSong {
	clean := sizeSuffix.ReplaceAllString(s.ThumbnailURL, "")

	return EnhancedSong{
		ID:       s.ID,
		Name:     s.Name,
		Artist:   s.Artist,
		Album:    s.Album,
		Duration: s.Duration,
		Thumbnail: Thumbnails{
			Small:  thumbnailURL(clean, 60, 60),
			Medium: thumbnailURL(clean, 120, 120),
			Large:  thumbnailURL(clean, 240, 240),
			XLarge: thumbnailURL(clean, 480, 480),
			Full:   thumbnailURL(clean, 0, 0),
		},
	}
}

// thumbnailURL builds a proxied thumbnail URL. Zero width/height requests the
// original size.
func thumbnailURL(originalURL string, width, height int) string {
	if originalURL == "" {
		return ""
	}
	params := url.Values{}
	params.Set("url", originalURL)
	if width > 0 {
		params.Set("w", fmt.Sprint(width))
	}
	if height > 0 {
		params.Set("h", fmt.Sprint(height))
	}
	return "/api/thumbnail?" + params.Encode()
}

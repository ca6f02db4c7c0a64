package song

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ErrNotFound is returned when the provider does not know the requested song
// or has no lyrics for it. Callers must treat it as a normal outcome, not a
// fault.
var ErrNotFound = errors.New("song: not found")

// Client talks to the music metadata provider over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// GetSong fetches a single song by its provider id.
func (c *Client) GetSong(ctx context.Context, id string) (Song, error) {
	if id == "" {
		return Song{}, ErrNotFound
	}

	reqURL := c.baseURL + "/songs/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Song{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Song{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return Song{}, ErrNotFound
	default:
		return Song{}, fmt.Errorf("provider status %d", resp.StatusCode)
	}

	var s Song
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return Song{}, err
	}
	return s, nil
}

// SearchSongs runs a free-text search against the provider.
func (c *Client) SearchSongs(ctx context.Context, query string, limit int) ([]Song, error) {
	if limit <= 0 || limit > 25 {
		limit = 10
	}

	val := url.Values{}
	val.Set("q", query)
	val.Set("limit", fmt.Sprint(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+val.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider status %d", resp.StatusCode)
	}

	var body struct {
		Items []Song `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	return body.Items, nil
}

// GetLyrics fetches lyrics lines for a song. Songs without lyrics surface as
// ErrNotFound.
func (c *Client) GetLyrics(ctx context.Context, id string) ([]string, error) {
	if id == "" {
		return nil, ErrNotFound
	}

	reqURL := c.baseURL + "/songs/" + url.PathEscape(id) + "/lyrics"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("provider status %d", resp.StatusCode)
	}

	var body struct {
		Lyrics []string `json:"lyrics"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	if len(body.Lyrics) == 0 {
		return nil, ErrNotFound
	}
	return body.Lyrics, nil
}

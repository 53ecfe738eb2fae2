// Package googlebooks is a typed client for the Google Books volumes API,
// used to resolve ISBNs into bibliographic metadata.
package googlebooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// ErrNoResults is returned when the provider has no volume for the
// queried ISBN. It is a legitimate outcome, not a transport failure.
var ErrNoResults = errors.New("no volumes found")

const maxCoverBytes = 5 << 20

type Client struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
	limiter    *rate.Limiter
	maxRetries int
}

func NewClient(userAgent string, rps int, maxRetries int) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		userAgent:  userAgent,
		baseURL:    "https://www.googleapis.com",
		limiter:    rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), 1),
		maxRetries: maxRetries,
	}
}

// Volume is the subset of volumeInfo the catalog cares about. Optional
// fields stay empty when the provider omits them.
type Volume struct {
	Title         string
	Authors       []string
	Publisher     string
	PublishedDate string
	ThumbnailURL  string
}

// volumesResponse matches /books/v1/volumes.
type volumesResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo struct {
			Title         string   `json:"title"`
			Authors       []string `json:"authors"`
			Publisher     string   `json:"publisher"`
			PublishedDate string   `json:"publishedDate"`
			ImageLinks    struct {
				Thumbnail string `json:"thumbnail"`
			} `json:"imageLinks"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// LookupISBN queries the volumes endpoint for a single ISBN. The first
// matching item wins, mirroring how the API ranks exact ISBN queries.
func (c *Client) LookupISBN(ctx context.Context, isbn string) (*Volume, error) {
	u := fmt.Sprintf("%s/books/v1/volumes?q=%s", c.baseURL, url.QueryEscape("isbn:"+isbn))

	var res volumesResponse
	if err := c.get(ctx, u, &res); err != nil {
		return nil, err
	}
	if len(res.Items) == 0 {
		return nil, ErrNoResults
	}

	info := res.Items[0].VolumeInfo
	return &Volume{
		Title:         info.Title,
		Authors:       info.Authors,
		Publisher:     info.Publisher,
		PublishedDate: info.PublishedDate,
		ThumbnailURL:  info.ImageLinks.Thumbnail,
	}, nil
}

// DownloadCover fetches a cover image. The body is capped so a
// misbehaving provider cannot balloon memory.
func (c *Client) DownloadCover(ctx context.Context, coverURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, coverURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCoverBytes))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("empty cover response")
	}
	return data, nil
}

func (c *Client) get(ctx context.Context, url string, target any) error {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			// Backoff: 1s, 2s, 4s...
			backoff := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
				continue
			}
			return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}

		err = json.NewDecoder(resp.Body).Decode(target)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("malformed response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}

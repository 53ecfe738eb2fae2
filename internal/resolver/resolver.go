// Package resolver turns raw ISBNs into catalog candidates by querying
// an external metadata provider and caching cover art locally.
package resolver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"bookshelf/internal/catalog"
	"bookshelf/internal/covers"
	"bookshelf/internal/platform/googlebooks"
)

const (
	unknownTitle   = "Unknown Title"
	unknownAuthors = "Unknown"

	coverTimeout = 5 * time.Second
)

// MetadataClient is the slice of the Google Books client the resolver
// needs.
type MetadataClient interface {
	LookupISBN(ctx context.Context, isbn string) (*googlebooks.Volume, error)
	DownloadCover(ctx context.Context, coverURL string) ([]byte, error)
}

// Service resolves ISBNs into candidates.
type Service struct {
	client MetadataClient
	covers *covers.Store
	log    *zap.Logger
}

// NewService creates a new resolver service.
func NewService(client MetadataClient, coverStore *covers.Store, log *zap.Logger) *Service {
	return &Service{client: client, covers: coverStore, log: log}
}

// Resolve queries the provider for an ISBN and normalizes the response
// into a candidate. A missing volume maps to catalog.ErrUpstreamNotFound;
// transport and malformed-payload failures are returned as-is. Cover
// download failure never fails the resolve: the candidate comes back
// without a cover path and Resolution.CoverErr records why.
func (s *Service) Resolve(ctx context.Context, isbn string) (catalog.Resolution, error) {
	vol, err := s.client.LookupISBN(ctx, isbn)
	if err != nil {
		if errors.Is(err, googlebooks.ErrNoResults) {
			return catalog.Resolution{}, catalog.ErrUpstreamNotFound
		}
		return catalog.Resolution{}, fmt.Errorf("lookup isbn %s: %w", isbn, err)
	}

	res := catalog.Resolution{Candidate: normalize(isbn, vol)}
	if vol.ThumbnailURL == "" {
		return res, nil
	}

	name, err := s.fetchCover(ctx, isbn, vol.ThumbnailURL)
	if err != nil {
		// Cosmetic, not structural. The record is still created.
		s.log.Warn("cover download failed",
			zap.String("isbn", isbn),
			zap.Error(err),
		)
		res.CoverErr = err
		return res, nil
	}
	res.Candidate.CoverPath = &name
	return res, nil
}

func (s *Service) fetchCover(ctx context.Context, isbn, coverURL string) (string, error) {
	coverCtx, cancel := context.WithTimeout(ctx, coverTimeout)
	defer cancel()

	data, err := s.client.DownloadCover(coverCtx, coverURL)
	if err != nil {
		return "", err
	}
	return s.covers.Save(isbn, bytes.NewReader(data))
}

func normalize(isbn string, vol *googlebooks.Volume) catalog.Candidate {
	title := vol.Title
	if title == "" {
		title = unknownTitle
	}
	authors := strings.Join(vol.Authors, ", ")
	if authors == "" {
		authors = unknownAuthors
	}
	return catalog.Candidate{
		ISBN:          isbn,
		Title:         title,
		Authors:       authors,
		Publisher:     vol.Publisher,
		PublishedDate: vol.PublishedDate,
	}
}

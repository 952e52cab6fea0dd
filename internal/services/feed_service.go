package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anonto42/campus-board/backend/internal/models"
	"github.com/anonto42/campus-board/backend/internal/repositories"
)

// FeedService answers student feed reads against the aggregate store
type FeedService struct {
	store repositories.AdEnvelopeRepository
}

// NewFeedService creates a new FeedService
func NewFeedService(store repositories.AdEnvelopeRepository) *FeedService {
	return &FeedService{store: store}
}

// QueryFeed returns the ads of one university matching the optional search, type and tags,
// newest first. A filter without a university matches nothing.
func (s *FeedService) QueryFeed(ctx context.Context, filter models.FeedFilter) ([]models.AdEnvelope, error) {
	if filter.AdType != "" && !filter.AdType.Valid() {
		return nil, fmt.Errorf("%w: unknown ad type %q", ErrInvalidFilter, filter.AdType)
	}
	if filter.University == "" {
		return []models.AdEnvelope{}, nil
	}
	ads, err := s.store.Query(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return ads, nil
}

// GetByID returns a single aggregate ad
func (s *FeedService) GetByID(ctx context.Context, id string) (*models.AdEnvelope, error) {
	env, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, translateStoreError(err)
	}
	return env, nil
}

// FilterFromParams converts feed query parameters into a filter
func FilterFromParams(p models.FeedQueryParams) models.FeedFilter {
	return models.FeedFilter{
		University: strings.TrimSpace(p.University),
		Search:     strings.TrimSpace(p.Search),
		AdType:     models.AdType(strings.TrimSpace(p.Type)),
		Tags:       ParseTags(p.Tags),
	}
}

// ParseTags splits a comma-separated tag list, dropping blanks and duplicates
func ParseTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	seen := make(map[string]struct{})
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	return tags
}

// translateStoreError maps repository lookups onto the service error taxonomy
func translateStoreError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return ErrEnvelopeNotFound
	case errors.Is(err, repositories.ErrInvalidID):
		return err
	}
	return fmt.Errorf("%w: %v", ErrQueryFailed, err)
}

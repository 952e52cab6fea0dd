package services

import (
	"context"
	"fmt"

	"github.com/anonto42/campus-board/backend/internal/models"
	"github.com/anonto42/campus-board/backend/internal/repositories"
)

// EngagementService maintains likes, interests and share counts on aggregate ads
type EngagementService struct {
	store repositories.AdEnvelopeRepository
}

// NewEngagementService creates a new EngagementService
func NewEngagementService(store repositories.AdEnvelopeRepository) *EngagementService {
	return &EngagementService{store: store}
}

// ToggleLike adds userID to the ad's likes, or removes it if already present
func (s *EngagementService) ToggleLike(ctx context.Context, adID, userID string) (*models.AdEnvelope, error) {
	return s.toggle(ctx, adID, models.FieldLikes, userID)
}

// ToggleInterest adds userID to the ad's interests, or removes it if already present
func (s *EngagementService) ToggleInterest(ctx context.Context, adID, userID string) (*models.AdEnvelope, error) {
	return s.toggle(ctx, adID, models.FieldInterests, userID)
}

// IncrementShare records one share of the ad
func (s *EngagementService) IncrementShare(ctx context.Context, adID string) (*models.AdEnvelope, error) {
	env, err := s.store.IncrementShare(ctx, adID)
	if err != nil {
		return nil, translateStoreError(err)
	}
	return env, nil
}

// ListLiked returns the ads userID likes, newest first
func (s *EngagementService) ListLiked(ctx context.Context, userID string) ([]models.AdEnvelope, error) {
	return s.list(ctx, models.FieldLikes, userID)
}

// ListInterested returns the ads userID is interested in, newest first
func (s *EngagementService) ListInterested(ctx context.Context, userID string) ([]models.AdEnvelope, error) {
	return s.list(ctx, models.FieldInterests, userID)
}

func (s *EngagementService) toggle(ctx context.Context, adID, field, userID string) (*models.AdEnvelope, error) {
	if userID == "" {
		return nil, ErrInvalidUser
	}
	env, err := s.store.ToggleMember(ctx, adID, field, userID)
	if err != nil {
		return nil, translateStoreError(err)
	}
	return env, nil
}

func (s *EngagementService) list(ctx context.Context, field, userID string) ([]models.AdEnvelope, error) {
	if userID == "" {
		return nil, ErrInvalidUser
	}
	ads, err := s.store.ListByMember(ctx, field, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return ads, nil
}

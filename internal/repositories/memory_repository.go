package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/anonto42/campus-board/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryAdEnvelopeRepository is an in-process AdEnvelopeRepository.
// It backs the memory storage driver and tests; every method is safe for concurrent use.
type MemoryAdEnvelopeRepository struct {
	mu        sync.Mutex
	envelopes map[primitive.ObjectID]*models.AdEnvelope
}

// NewMemoryAdEnvelopeRepository creates an empty in-memory aggregate store
func NewMemoryAdEnvelopeRepository() *MemoryAdEnvelopeRepository {
	return &MemoryAdEnvelopeRepository{envelopes: make(map[primitive.ObjectID]*models.AdEnvelope)}
}

type envelopeKey struct {
	adType   models.AdType
	sourceID primitive.ObjectID
}

func (r *MemoryAdEnvelopeRepository) ReplaceAll(_ context.Context, token string, seeds []models.EnvelopeSeed) (ReplaceStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var stats ReplaceStats
	now := time.Now()

	byKey := make(map[envelopeKey]*models.AdEnvelope, len(r.envelopes))
	for _, env := range r.envelopes {
		byKey[envelopeKey{env.AdType, env.SourceID}] = env
	}

	for _, s := range seeds {
		key := envelopeKey{s.AdType, s.SourceID}
		if env, ok := byKey[key]; ok {
			env.AdData = s.AdData
			env.University = s.University
			env.SyncToken = token
			env.UpdatedAt = now
			stats.Updated++
			continue
		}
		createdAt := s.SourceCreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		env := &models.AdEnvelope{
			ID:         primitive.NewObjectID(),
			SourceID:   s.SourceID,
			AdType:     s.AdType,
			AdData:     s.AdData,
			University: s.University,
			Likes:      []string{},
			Interests:  []string{},
			SyncToken:  token,
			CreatedAt:  createdAt,
			UpdatedAt:  now,
		}
		r.envelopes[env.ID] = env
		byKey[key] = env
		stats.Created++
	}
	stats.Written = stats.Created + stats.Updated

	for id, env := range r.envelopes {
		if env.SyncToken != token {
			delete(r.envelopes, id)
			stats.Removed++
		}
	}
	return stats, nil
}

func (r *MemoryAdEnvelopeRepository) Query(_ context.Context, filter models.FeedFilter) ([]models.AdEnvelope, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.collect(func(env *models.AdEnvelope) bool { return matchesFeed(env, filter) }), nil
}

func (r *MemoryAdEnvelopeRepository) GetByID(_ context.Context, id string) (*models.AdEnvelope, error) {
	objID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	env, ok := r.envelopes[objID]
	if !ok {
		return nil, ErrNotFound
	}
	return copyEnvelope(env), nil
}

func (r *MemoryAdEnvelopeRepository) ToggleMember(_ context.Context, id, field, userID string) (*models.AdEnvelope, error) {
	objID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	env, ok := r.envelopes[objID]
	if !ok {
		return nil, ErrNotFound
	}

	var set *[]string
	switch field {
	case models.FieldLikes:
		set = &env.Likes
	case models.FieldInterests:
		set = &env.Interests
	default:
		return nil, fmt.Errorf("unsupported set field %q", field)
	}
	*set = toggle(*set, userID)
	env.UpdatedAt = time.Now()
	return copyEnvelope(env), nil
}

func (r *MemoryAdEnvelopeRepository) IncrementShare(_ context.Context, id string) (*models.AdEnvelope, error) {
	objID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	env, ok := r.envelopes[objID]
	if !ok {
		return nil, ErrNotFound
	}
	env.ShareCount++
	env.UpdatedAt = time.Now()
	return copyEnvelope(env), nil
}

func (r *MemoryAdEnvelopeRepository) ListByMember(_ context.Context, field, userID string) ([]models.AdEnvelope, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch field {
	case models.FieldLikes:
		return r.collect(func(env *models.AdEnvelope) bool { return env.HasLike(userID) }), nil
	case models.FieldInterests:
		return r.collect(func(env *models.AdEnvelope) bool { return env.HasInterest(userID) }), nil
	}
	return nil, fmt.Errorf("unsupported set field %q", field)
}

func (r *MemoryAdEnvelopeRepository) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.envelopes)), nil
}

// collect must be called with r.mu held
func (r *MemoryAdEnvelopeRepository) collect(keep func(*models.AdEnvelope) bool) []models.AdEnvelope {
	out := []models.AdEnvelope{}
	for _, env := range r.envelopes {
		if keep(env) {
			out = append(out, *copyEnvelope(env))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.Hex() > out[j].ID.Hex()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func matchesFeed(env *models.AdEnvelope, f models.FeedFilter) bool {
	if env.University != f.University {
		return false
	}
	if f.AdType != "" && env.AdType != f.AdType {
		return false
	}
	if env.AdData == nil {
		return f.Search == "" && len(f.Tags) == 0
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(env.AdData.Headline()), needle) &&
			!strings.Contains(strings.ToLower(env.AdData.Summary()), needle) {
			return false
		}
	}
	if len(f.Tags) > 0 && !intersects(env.AdData.TagList(), f.Tags) {
		return false
	}
	return true
}

func intersects(a, b []string) bool {
	set := make(map[string]struct{}, len(b))
	for _, s := range b {
		set[s] = struct{}{}
	}
	for _, s := range a {
		if _, ok := set[s]; ok {
			return true
		}
	}
	return false
}

func toggle(set []string, v string) []string {
	out := make([]string, 0, len(set)+1)
	found := false
	for _, s := range set {
		if s == v {
			found = true
			continue
		}
		out = append(out, s)
	}
	if !found {
		out = append(out, v)
	}
	return out
}

func copyEnvelope(env *models.AdEnvelope) *models.AdEnvelope {
	c := *env
	c.Likes = append([]string{}, env.Likes...)
	c.Interests = append([]string{}, env.Interests...)
	return &c
}

// MemoryClubAdRepository is an in-process ClubAdRepository
type MemoryClubAdRepository[T models.AdPayload] struct {
	mu     sync.Mutex
	adType models.AdType
	ads    map[primitive.ObjectID]T
}

// NewMemoryClubAdRepository creates an empty in-memory club ad collection
func NewMemoryClubAdRepository[T models.AdPayload](adType models.AdType) *MemoryClubAdRepository[T] {
	return &MemoryClubAdRepository[T]{adType: adType, ads: make(map[primitive.ObjectID]T)}
}

func (r *MemoryClubAdRepository[T]) AdType() models.AdType {
	return r.adType
}

func (r *MemoryClubAdRepository[T]) Create(_ context.Context, ad T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.ads[ad.SourceID()]; exists {
		return fmt.Errorf("duplicate ad id %s", ad.SourceID().Hex())
	}
	r.ads[ad.SourceID()] = ad
	return nil
}

func (r *MemoryClubAdRepository[T]) GetByID(_ context.Context, id string) (T, error) {
	var zero T
	objID, err := parseObjectID(id)
	if err != nil {
		return zero, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ad, ok := r.ads[objID]
	if !ok {
		return zero, ErrNotFound
	}
	return ad, nil
}

func (r *MemoryClubAdRepository[T]) List(_ context.Context) ([]T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(T) bool { return true }), nil
}

func (r *MemoryClubAdRepository[T]) Replace(_ context.Context, id string, ad T) error {
	objID, err := parseObjectID(id)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ads[objID]; !ok {
		return ErrNotFound
	}
	r.ads[objID] = ad
	return nil
}

func (r *MemoryClubAdRepository[T]) Delete(_ context.Context, id string) error {
	objID, err := parseObjectID(id)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ads[objID]; !ok {
		return ErrNotFound
	}
	delete(r.ads, objID)
	return nil
}

func (r *MemoryClubAdRepository[T]) ListAll(_ context.Context) ([]models.AdPayload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return toPayloads(r.sorted(func(T) bool { return true })), nil
}

func (r *MemoryClubAdRepository[T]) ListActive(_ context.Context) ([]models.AdPayload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return toPayloads(r.sorted(func(ad T) bool { return ad.IsActive() })), nil
}

func (r *MemoryClubAdRepository[T]) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.ads)), nil
}

func (r *MemoryClubAdRepository[T]) sorted(keep func(T) bool) []T {
	out := []T{}
	for _, ad := range r.ads {
		if keep(ad) {
			out = append(out, ad)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Created().After(out[j].Created())
	})
	return out
}

package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/campus-board/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReplaceStats describes what a ReplaceAll call wrote
type ReplaceStats struct {
	Written int // envelopes upserted or refreshed
	Created int
	Updated int
	Removed int
}

// AdEnvelopeRepository defines the operations on the aggregate (student ads) store
type AdEnvelopeRepository interface {
	// ReplaceAll makes the store hold exactly one envelope per seed. Envelopes are matched
	// to seeds by (adType, sourceId) so engagement fields survive; envelopes without a seed
	// are removed only when every seed was written.
	ReplaceAll(ctx context.Context, token string, seeds []models.EnvelopeSeed) (ReplaceStats, error)
	Query(ctx context.Context, filter models.FeedFilter) ([]models.AdEnvelope, error)
	GetByID(ctx context.Context, id string) (*models.AdEnvelope, error)
	ToggleMember(ctx context.Context, id, field, userID string) (*models.AdEnvelope, error)
	IncrementShare(ctx context.Context, id string) (*models.AdEnvelope, error)
	ListByMember(ctx context.Context, field, userID string) ([]models.AdEnvelope, error)
	Count(ctx context.Context) (int64, error)
}

// MongoAdEnvelopeRepository implements AdEnvelopeRepository for MongoDB
type MongoAdEnvelopeRepository struct {
	collection *mongo.Collection
}

// NewMongoAdEnvelopeRepository creates a new MongoAdEnvelopeRepository
func NewMongoAdEnvelopeRepository(db *mongo.Database) *MongoAdEnvelopeRepository {
	return &MongoAdEnvelopeRepository{collection: db.Collection("student_ads")}
}

// EnsureIndexes creates the indexes the feed and the sync engine rely on
func (r *MongoAdEnvelopeRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "university", Value: 1}, {Key: "adType", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "adType", Value: 1}, {Key: "sourceId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: models.FieldLikes, Value: 1}}},
		{Keys: bson.D{{Key: models.FieldInterests, Value: 1}}},
		{Keys: bson.D{{Key: "syncToken", Value: 1}}},
	})
	return err
}

// ReplaceAll upserts every seed in one unordered bulk write, then prunes stale envelopes
func (r *MongoAdEnvelopeRepository) ReplaceAll(ctx context.Context, token string, seeds []models.EnvelopeSeed) (ReplaceStats, error) {
	var stats ReplaceStats
	now := time.Now()

	if len(seeds) > 0 {
		writes := make([]mongo.WriteModel, 0, len(seeds))
		for _, s := range seeds {
			createdAt := s.SourceCreatedAt
			if createdAt.IsZero() {
				createdAt = now
			}
			writes = append(writes, mongo.NewUpdateOneModel().
				SetFilter(bson.M{"adType": s.AdType, "sourceId": s.SourceID}).
				SetUpdate(bson.M{
					"$set": bson.M{
						"adData":     s.AdData,
						"university": s.University,
						"syncToken":  token,
						"updatedAt":  now,
					},
					"$setOnInsert": bson.M{
						models.FieldLikes:     bson.A{},
						models.FieldInterests: bson.A{},
						"shareCount":          0,
						"createdAt":           createdAt,
					},
				}).
				SetUpsert(true))
		}

		res, err := r.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
		if res != nil {
			stats.Created = int(res.UpsertedCount)
			stats.Updated = int(res.MatchedCount)
			stats.Written = stats.Created + stats.Updated
		}
		if err != nil {
			return stats, fmt.Errorf("bulk upsert: %w", err)
		}
	}

	res, err := r.collection.DeleteMany(ctx, bson.M{"syncToken": bson.M{"$ne": token}})
	if err != nil {
		return stats, fmt.Errorf("prune stale envelopes: %w", err)
	}
	stats.Removed = int(res.DeletedCount)
	return stats, nil
}

// Query returns the envelopes matching filter, newest first
func (r *MongoAdEnvelopeRepository) Query(ctx context.Context, filter models.FeedFilter) ([]models.AdEnvelope, error) {
	return r.find(ctx, BuildFeedQuery(filter))
}

// GetByID retrieves an envelope by ID
func (r *MongoAdEnvelopeRepository) GetByID(ctx context.Context, id string) (*models.AdEnvelope, error) {
	objID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	var env models.AdEnvelope
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&env)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &env, nil
}

// ToggleMember adds userID to the named set field if absent and removes it otherwise.
// The membership test and the write happen in one pipeline update on the server,
// so concurrent toggles by different users never overwrite each other.
func (r *MongoAdEnvelopeRepository) ToggleMember(ctx context.Context, id, field, userID string) (*models.AdEnvelope, error) {
	if field != models.FieldLikes && field != models.FieldInterests {
		return nil, fmt.Errorf("unsupported set field %q", field)
	}
	objID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	current := bson.D{{Key: "$ifNull", Value: bson.A{"$" + field, bson.A{}}}}
	member := bson.D{{Key: "$literal", Value: userID}}
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: field, Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$in", Value: bson.A{member, current}}},
				bson.D{{Key: "$filter", Value: bson.D{
					{Key: "input", Value: current},
					{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$this", member}}}},
				}}},
				bson.D{{Key: "$concatArrays", Value: bson.A{current, bson.A{member}}}},
			}}}},
			{Key: "updatedAt", Value: time.Now()},
		}}},
	}
	return r.findOneAndUpdate(ctx, objID, pipeline)
}

// IncrementShare atomically increments the share counter
func (r *MongoAdEnvelopeRepository) IncrementShare(ctx context.Context, id string) (*models.AdEnvelope, error) {
	objID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	update := bson.M{
		"$inc": bson.M{"shareCount": 1},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	return r.findOneAndUpdate(ctx, objID, update)
}

// ListByMember returns the envelopes whose set field contains userID, newest first
func (r *MongoAdEnvelopeRepository) ListByMember(ctx context.Context, field, userID string) ([]models.AdEnvelope, error) {
	if field != models.FieldLikes && field != models.FieldInterests {
		return nil, fmt.Errorf("unsupported set field %q", field)
	}
	return r.find(ctx, bson.M{field: userID})
}

// Count returns the number of envelopes in the store
func (r *MongoAdEnvelopeRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *MongoAdEnvelopeRepository) findOneAndUpdate(ctx context.Context, id interface{}, update interface{}) (*models.AdEnvelope, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var env models.AdEnvelope
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&env)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &env, nil
}

func (r *MongoAdEnvelopeRepository) find(ctx context.Context, filter bson.M) ([]models.AdEnvelope, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	envelopes := []models.AdEnvelope{}
	if err = cursor.All(ctx, &envelopes); err != nil {
		return nil, err
	}
	return envelopes, nil
}

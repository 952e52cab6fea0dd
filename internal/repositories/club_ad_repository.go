package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/campus-board/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SourceAdRepository is the read side of a club ad collection, as seen by the sync engine
type SourceAdRepository interface {
	AdType() models.AdType
	ListAll(ctx context.Context) ([]models.AdPayload, error)
	ListActive(ctx context.Context) ([]models.AdPayload, error)
	Count(ctx context.Context) (int64, error)
}

// ClubAdRepository adds the club-facing CRUD operations on one ad collection
type ClubAdRepository[T models.AdPayload] interface {
	SourceAdRepository
	Create(ctx context.Context, ad T) error
	GetByID(ctx context.Context, id string) (T, error)
	List(ctx context.Context) ([]T, error)
	Replace(ctx context.Context, id string, ad T) error
	Delete(ctx context.Context, id string) error
}

var clubAdCollections = map[models.AdType]string{
	models.AdTypeEvent:   "club_event_ads",
	models.AdTypeProduct: "club_product_ads",
	models.AdTypeOther:   "club_other_ads",
}

// MongoClubAdRepository implements ClubAdRepository for MongoDB
type MongoClubAdRepository[T models.AdPayload] struct {
	collection *mongo.Collection
	adType     models.AdType
	fields     models.AdFields
}

// NewMongoClubAdRepository creates a repository over the collection holding ads of adType
func NewMongoClubAdRepository[T models.AdPayload](db *mongo.Database, adType models.AdType) *MongoClubAdRepository[T] {
	fields, _ := models.FieldsFor(adType)
	return &MongoClubAdRepository[T]{
		collection: db.Collection(clubAdCollections[adType]),
		adType:     adType,
		fields:     fields,
	}
}

// NewMongoEventAdRepository creates the event ad repository
func NewMongoEventAdRepository(db *mongo.Database) *MongoClubAdRepository[models.EventAd] {
	return NewMongoClubAdRepository[models.EventAd](db, models.AdTypeEvent)
}

// NewMongoProductAdRepository creates the product ad repository
func NewMongoProductAdRepository(db *mongo.Database) *MongoClubAdRepository[models.ProductAd] {
	return NewMongoClubAdRepository[models.ProductAd](db, models.AdTypeProduct)
}

// NewMongoOtherAdRepository creates the other ad repository
func NewMongoOtherAdRepository(db *mongo.Database) *MongoClubAdRepository[models.OtherAd] {
	return NewMongoClubAdRepository[models.OtherAd](db, models.AdTypeOther)
}

// AdType returns the type of ad stored in this collection
func (r *MongoClubAdRepository[T]) AdType() models.AdType {
	return r.adType
}

// Create inserts a new club ad. The caller assigns the ID and timestamps.
func (r *MongoClubAdRepository[T]) Create(ctx context.Context, ad T) error {
	_, err := r.collection.InsertOne(ctx, ad)
	return err
}

// GetByID retrieves a club ad by ID
func (r *MongoClubAdRepository[T]) GetByID(ctx context.Context, id string) (T, error) {
	var ad T
	objID, err := parseObjectID(id)
	if err != nil {
		return ad, err
	}
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&ad)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ad, ErrNotFound
		}
		return ad, err
	}
	return ad, nil
}

// List retrieves every ad in the collection, newest first
func (r *MongoClubAdRepository[T]) List(ctx context.Context) ([]T, error) {
	return r.find(ctx, bson.M{})
}

// Replace overwrites an existing club ad
func (r *MongoClubAdRepository[T]) Replace(ctx context.Context, id string, ad T) error {
	objID, err := parseObjectID(id)
	if err != nil {
		return err
	}
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": objID}, ad)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a club ad by ID
func (r *MongoClubAdRepository[T]) Delete(ctx context.Context, id string) error {
	objID, err := parseObjectID(id)
	if err != nil {
		return err
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAll returns every ad regardless of status
func (r *MongoClubAdRepository[T]) ListAll(ctx context.Context) ([]models.AdPayload, error) {
	ads, err := r.find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	return toPayloads(ads), nil
}

// ListActive returns only ads whose status is active
func (r *MongoClubAdRepository[T]) ListActive(ctx context.Context) ([]models.AdPayload, error) {
	ads, err := r.find(ctx, bson.M{r.fields.Status: models.AdStatusActive})
	if err != nil {
		return nil, err
	}
	return toPayloads(ads), nil
}

// Count returns the number of ads in the collection
func (r *MongoClubAdRepository[T]) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *MongoClubAdRepository[T]) find(ctx context.Context, filter bson.M) ([]T, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	ads := []T{}
	if err = cursor.All(ctx, &ads); err != nil {
		return nil, err
	}
	return ads, nil
}

func toPayloads[T models.AdPayload](ads []T) []models.AdPayload {
	out := make([]models.AdPayload, len(ads))
	for i, ad := range ads {
		out[i] = ad
	}
	return out
}

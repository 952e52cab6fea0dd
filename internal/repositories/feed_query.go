package repositories

import (
	"regexp"

	"github.com/anonto42/campus-board/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BuildFeedQuery translates a feed filter into a MongoDB filter on the student ads collection.
// adData is shaped by adType, so search and tag clauses are OR-ed per type using that type's
// field names.
func BuildFeedQuery(f models.FeedFilter) bson.M {
	query := bson.M{"university": f.University}
	if f.AdType != "" {
		query["adType"] = f.AdType
	}

	types := models.AdTypes
	if f.AdType != "" {
		types = []models.AdType{f.AdType}
	}

	var and bson.A
	if f.Search != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		var or bson.A
		for _, t := range types {
			fields, ok := models.FieldsFor(t)
			if !ok {
				continue
			}
			or = append(or,
				bson.M{"adType": t, "adData." + fields.Title: rx},
				bson.M{"adType": t, "adData." + fields.Description: rx},
			)
		}
		and = append(and, bson.M{"$or": or})
	}

	if len(f.Tags) > 0 {
		var or bson.A
		for _, t := range types {
			fields, ok := models.FieldsFor(t)
			if !ok {
				continue
			}
			or = append(or, bson.M{"adType": t, "adData." + fields.Tags: bson.M{"$in": f.Tags}})
		}
		and = append(and, bson.M{"$or": or})
	}

	if len(and) > 0 {
		query["$and"] = and
	}
	return query
}

package repositories

import (
	"testing"

	"github.com/anonto42/campus-board/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuildFeedQuery_UniversityOnly(t *testing.T) {
	q := BuildFeedQuery(models.FeedFilter{University: "ACME U"})
	assert.Equal(t, bson.M{"university": "ACME U"}, q)
}

func TestBuildFeedQuery_SearchCoversEveryType(t *testing.T) {
	q := BuildFeedQuery(models.FeedFilter{University: "ACME U", Search: "c++ (intro)"})

	and, ok := q["$and"].(bson.A)
	require.True(t, ok)
	require.Len(t, and, 1)
	or := and[0].(bson.M)["$or"].(bson.A)
	require.Len(t, or, 2*len(models.AdTypes))

	rx := primitive.Regex{Pattern: `c\+\+ \(intro\)`, Options: "i"}
	assert.Contains(t, or, bson.M{"adType": models.AdTypeEvent, "adData.evntAdTitle": rx})
	assert.Contains(t, or, bson.M{"adType": models.AdTypeEvent, "adData.evntAdDescription": rx})
	assert.Contains(t, or, bson.M{"adType": models.AdTypeProduct, "adData.prodAdName": rx})
	assert.Contains(t, or, bson.M{"adType": models.AdTypeProduct, "adData.prodAdDescription": rx})
	assert.Contains(t, or, bson.M{"adType": models.AdTypeOther, "adData.otherAdTitle": rx})
	assert.Contains(t, or, bson.M{"adType": models.AdTypeOther, "adData.otherAdDescription": rx})
}

func TestBuildFeedQuery_TypeNarrowsClauses(t *testing.T) {
	tags := []string{"books", "math"}
	q := BuildFeedQuery(models.FeedFilter{
		University: "ACME U",
		AdType:     models.AdTypeProduct,
		Search:     "calc",
		Tags:       tags,
	})

	assert.Equal(t, models.AdTypeProduct, q["adType"])
	and := q["$and"].(bson.A)
	require.Len(t, and, 2)

	search := and[0].(bson.M)["$or"].(bson.A)
	assert.Len(t, search, 2)

	tagClauses := and[1].(bson.M)["$or"].(bson.A)
	assert.Equal(t, bson.A{
		bson.M{"adType": models.AdTypeProduct, "adData.prodAdTags": bson.M{"$in": tags}},
	}, tagClauses)
}

func TestAdFieldsResolveForEveryType(t *testing.T) {
	for _, adType := range models.AdTypes {
		fields, ok := models.FieldsFor(adType)
		require.True(t, ok, adType)
		assert.NotEmpty(t, fields.Title)
		assert.NotEmpty(t, fields.Description)
		assert.NotEmpty(t, fields.Tags)
		assert.NotEmpty(t, fields.Status)
	}
	_, ok := models.FieldsFor("job")
	assert.False(t, ok)
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdType discriminates the three kinds of club advertisement
type AdType string

const (
	AdTypeEvent   AdType = "event"
	AdTypeProduct AdType = "product"
	AdTypeOther   AdType = "other"
)

// AdTypes lists every known ad type in a stable order
var AdTypes = []AdType{AdTypeEvent, AdTypeProduct, AdTypeOther}

// Valid reports whether t is one of the known ad types
func (t AdType) Valid() bool {
	switch t {
	case AdTypeEvent, AdTypeProduct, AdTypeOther:
		return true
	}
	return false
}

// Lifecycle status of a club ad
const (
	AdStatusActive   = "active"
	AdStatusInactive = "inactive"
)

// AdFields names the document fields that play the same role in each ad shape.
// Title, Description, Tags and Status are relative to the ad document itself.
type AdFields struct {
	Title       string
	Description string
	Tags        string
	Status      string
}

var adFields = map[AdType]AdFields{
	AdTypeEvent:   {Title: "evntAdTitle", Description: "evntAdDescription", Tags: "evntAdTags", Status: "evntAdStatus"},
	AdTypeProduct: {Title: "prodAdName", Description: "prodAdDescription", Tags: "prodAdTags", Status: "prodAdStatus"},
	AdTypeOther:   {Title: "otherAdTitle", Description: "otherAdDescription", Tags: "otherAdTags", Status: "otherAdStatus"},
}

// FieldsFor returns the field names used by ads of the given type.
// The second result is false for an unknown type.
func FieldsFor(t AdType) (AdFields, bool) {
	f, ok := adFields[t]
	return f, ok
}

// AdPayload is implemented by EventAd, ProductAd and OtherAd. It is the closed set of
// shapes an aggregate envelope can carry in its adData field.
type AdPayload interface {
	Kind() AdType
	SourceID() primitive.ObjectID
	UniversityName() string
	Headline() string
	Summary() string
	TagList() []string
	IsActive() bool
	Created() time.Time
}

package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrUnknownAdType is returned when a stored envelope names an ad type this build does not know
var ErrUnknownAdType = errors.New("unknown ad type")

// Engagement set fields of an envelope
const (
	FieldLikes     = "likes"
	FieldInterests = "interests"
)

// AdEnvelope is the unified, student-facing representation of a club ad.
// AdType, AdData and University are derived from the source ad by the sync engine;
// Likes, Interests and ShareCount are owned by the engagement tracker.
type AdEnvelope struct {
	ID         primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	SourceID   primitive.ObjectID `json:"sourceId" bson:"sourceId"`
	AdType     AdType             `json:"adType" bson:"adType"`
	AdData     AdPayload          `json:"adData" bson:"adData"`
	University string             `json:"university" bson:"university"`
	Likes      []string           `json:"likes" bson:"likes"`
	Interests  []string           `json:"interests" bson:"interests"`
	ShareCount int64              `json:"shareCount" bson:"shareCount"`
	SyncToken  string             `json:"-" bson:"syncToken,omitempty"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// EnvelopeSeed is the part of an envelope that is a pure function of its source ad
type EnvelopeSeed struct {
	AdType          AdType
	AdData          AdPayload
	University      string
	SourceID        primitive.ObjectID
	SourceCreatedAt time.Time
}

// HasLike reports whether userID is in the envelope's likes
func (e *AdEnvelope) HasLike(userID string) bool {
	return contains(e.Likes, userID)
}

// HasInterest reports whether userID is in the envelope's interests
func (e *AdEnvelope) HasInterest(userID string) bool {
	return contains(e.Interests, userID)
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// rawEnvelope mirrors AdEnvelope with the payload left undecoded
type rawEnvelope struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	SourceID   primitive.ObjectID `bson:"sourceId"`
	AdType     AdType             `bson:"adType"`
	AdData     bson.Raw           `bson:"adData"`
	University string             `bson:"university"`
	Likes      []string           `bson:"likes"`
	Interests  []string           `bson:"interests"`
	ShareCount int64              `bson:"shareCount"`
	SyncToken  string             `bson:"syncToken,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

// UnmarshalBSON decodes adData into the concrete payload named by adType
func (e *AdEnvelope) UnmarshalBSON(data []byte) error {
	var raw rawEnvelope
	if err := bson.Unmarshal(data, &raw); err != nil {
		return err
	}
	payload, err := decodePayload(raw.AdType, func(v interface{}) error {
		return bson.Unmarshal(raw.AdData, v)
	})
	if err != nil {
		return err
	}
	*e = AdEnvelope{
		ID:         raw.ID,
		SourceID:   raw.SourceID,
		AdType:     raw.AdType,
		AdData:     payload,
		University: raw.University,
		Likes:      nonNil(raw.Likes),
		Interests:  nonNil(raw.Interests),
		ShareCount: raw.ShareCount,
		SyncToken:  raw.SyncToken,
		CreatedAt:  raw.CreatedAt,
		UpdatedAt:  raw.UpdatedAt,
	}
	return nil
}

// UnmarshalJSON is the JSON counterpart of UnmarshalBSON, used by API clients and tests
func (e *AdEnvelope) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID         primitive.ObjectID `json:"_id"`
		SourceID   primitive.ObjectID `json:"sourceId"`
		AdType     AdType             `json:"adType"`
		AdData     json.RawMessage    `json:"adData"`
		University string             `json:"university"`
		Likes      []string           `json:"likes"`
		Interests  []string           `json:"interests"`
		ShareCount int64              `json:"shareCount"`
		CreatedAt  time.Time          `json:"createdAt"`
		UpdatedAt  time.Time          `json:"updatedAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	payload, err := decodePayload(raw.AdType, func(v interface{}) error {
		return json.Unmarshal(raw.AdData, v)
	})
	if err != nil {
		return err
	}
	*e = AdEnvelope{
		ID:         raw.ID,
		SourceID:   raw.SourceID,
		AdType:     raw.AdType,
		AdData:     payload,
		University: raw.University,
		Likes:      nonNil(raw.Likes),
		Interests:  nonNil(raw.Interests),
		ShareCount: raw.ShareCount,
		CreatedAt:  raw.CreatedAt,
		UpdatedAt:  raw.UpdatedAt,
	}
	return nil
}

func decodePayload(t AdType, decode func(v interface{}) error) (AdPayload, error) {
	switch t {
	case AdTypeEvent:
		var ad EventAd
		if err := decode(&ad); err != nil {
			return nil, fmt.Errorf("decode event ad: %w", err)
		}
		return ad, nil
	case AdTypeProduct:
		var ad ProductAd
		if err := decode(&ad); err != nil {
			return nil, fmt.Errorf("decode product ad: %w", err)
		}
		return ad, nil
	case AdTypeOther:
		var ad OtherAd
		if err := decode(&ad); err != nil {
			return nil, fmt.Errorf("decode other ad: %w", err)
		}
		return ad, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAdType, t)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// FeedFilter narrows a feed query. University is required; the rest are optional.
type FeedFilter struct {
	University string
	Search     string
	AdType     AdType
	Tags       []string
}

// FeedQueryParams is the query string accepted by the feed endpoint
type FeedQueryParams struct {
	University string `query:"university"`
	Search     string `query:"search"`
	Type       string `query:"type" validate:"omitempty,oneof=event product other"`
	Tags       string `query:"tags"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventAd is a club event advertisement stored in MongoDB
type EventAd struct {
	ID            primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Title         string             `json:"evntAdTitle" bson:"evntAdTitle"`
	Date          time.Time          `json:"evntAdDate" bson:"evntAdDate"`
	Time          string             `json:"evntAdTime" bson:"evntAdTime"`
	Description   string             `json:"evntAdDescription" bson:"evntAdDescription"`
	University    string             `json:"university" bson:"university"`
	Location      string             `json:"evntAdLocation,omitempty" bson:"evntAdLocation,omitempty"`
	ContactNumber []string           `json:"contactNumber" bson:"contactNumber"`
	Images        []string           `json:"evntAdImage,omitempty" bson:"evntAdImage,omitempty"`
	Tags          []string           `json:"evntAdTags" bson:"evntAdTags"`
	RelatedLinks  []string           `json:"evntAdRelatedLinks,omitempty" bson:"evntAdRelatedLinks,omitempty"`
	Status        string             `json:"evntAdStatus" bson:"evntAdStatus"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

func (a EventAd) Kind() AdType                 { return AdTypeEvent }
func (a EventAd) SourceID() primitive.ObjectID { return a.ID }
func (a EventAd) UniversityName() string       { return a.University }
func (a EventAd) Headline() string             { return a.Title }
func (a EventAd) Summary() string              { return a.Description }
func (a EventAd) TagList() []string            { return a.Tags }
func (a EventAd) IsActive() bool               { return a.Status == AdStatusActive }
func (a EventAd) Created() time.Time           { return a.CreatedAt }

// ProductAd is a club product advertisement stored in MongoDB
type ProductAd struct {
	ID            primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Name          string             `json:"prodAdName" bson:"prodAdName"`
	Description   string             `json:"prodAdDescription" bson:"prodAdDescription"`
	University    string             `json:"university" bson:"university"`
	Price         float64            `json:"prodAdPrice" bson:"prodAdPrice"`
	ContactNumber []string           `json:"contactNumber" bson:"contactNumber"`
	Images        []string           `json:"prodAdImage,omitempty" bson:"prodAdImage,omitempty"`
	Tags          []string           `json:"prodAdTags" bson:"prodAdTags"`
	RelatedLinks  []string           `json:"prodAdRelatedLinks,omitempty" bson:"prodAdRelatedLinks,omitempty"`
	Status        string             `json:"prodAdStatus" bson:"prodAdStatus"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

func (a ProductAd) Kind() AdType                 { return AdTypeProduct }
func (a ProductAd) SourceID() primitive.ObjectID { return a.ID }
func (a ProductAd) UniversityName() string       { return a.University }
func (a ProductAd) Headline() string             { return a.Name }
func (a ProductAd) Summary() string              { return a.Description }
func (a ProductAd) TagList() []string            { return a.Tags }
func (a ProductAd) IsActive() bool               { return a.Status == AdStatusActive }
func (a ProductAd) Created() time.Time           { return a.CreatedAt }

// OtherAd is any club advertisement that is neither an event nor a product
type OtherAd struct {
	ID            primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Title         string             `json:"otherAdTitle" bson:"otherAdTitle"`
	Date          *time.Time         `json:"otherAdDate,omitempty" bson:"otherAdDate,omitempty"`
	Description   string             `json:"otherAdDescription" bson:"otherAdDescription"`
	University    string             `json:"university" bson:"university"`
	ContactNumber []string           `json:"contactNumber" bson:"contactNumber"`
	Location      string             `json:"otherAdLocation,omitempty" bson:"otherAdLocation,omitempty"`
	Images        []string           `json:"otherAdImage,omitempty" bson:"otherAdImage,omitempty"`
	Tags          []string           `json:"otherAdTags" bson:"otherAdTags"`
	RelatedLinks  []string           `json:"otherAdRelatedLinks,omitempty" bson:"otherAdRelatedLinks,omitempty"`
	Status        string             `json:"otherAdStatus" bson:"otherAdStatus"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

func (a OtherAd) Kind() AdType                 { return AdTypeOther }
func (a OtherAd) SourceID() primitive.ObjectID { return a.ID }
func (a OtherAd) UniversityName() string       { return a.University }
func (a OtherAd) Headline() string             { return a.Title }
func (a OtherAd) Summary() string              { return a.Description }
func (a OtherAd) TagList() []string            { return a.Tags }
func (a OtherAd) IsActive() bool               { return a.Status == AdStatusActive }
func (a OtherAd) Created() time.Time           { return a.CreatedAt }

// EventAdRequest defines the request body for creating or replacing an event ad
type EventAdRequest struct {
	Title         string    `json:"evntAdTitle" validate:"required,max=200"`
	Date          time.Time `json:"evntAdDate" validate:"required"`
	Time          string    `json:"evntAdTime" validate:"required"`
	Description   string    `json:"evntAdDescription" validate:"required"`
	University    string    `json:"university" validate:"required"`
	Location      string    `json:"evntAdLocation,omitempty"`
	ContactNumber []string  `json:"contactNumber" validate:"required,min=1"`
	Images        []string  `json:"evntAdImage,omitempty" validate:"omitempty,dive,url"`
	Tags          []string  `json:"evntAdTags" validate:"required,min=1"`
	RelatedLinks  []string  `json:"evntAdRelatedLinks,omitempty" validate:"omitempty,dive,url"`
	Status        string    `json:"evntAdStatus,omitempty" validate:"omitempty,oneof=active inactive"`
}

// ToAd builds the stored event ad
func (r EventAdRequest) ToAd(id primitive.ObjectID, createdAt, now time.Time) EventAd {
	return EventAd{
		ID:            id,
		Title:         r.Title,
		Date:          r.Date,
		Time:          r.Time,
		Description:   r.Description,
		University:    r.University,
		Location:      r.Location,
		ContactNumber: r.ContactNumber,
		Images:        r.Images,
		Tags:          r.Tags,
		RelatedLinks:  r.RelatedLinks,
		Status:        statusOrDefault(r.Status),
		CreatedAt:     createdAt,
		UpdatedAt:     now,
	}
}

// ProductAdRequest defines the request body for creating or replacing a product ad
type ProductAdRequest struct {
	Name          string   `json:"prodAdName" validate:"required,max=200"`
	Description   string   `json:"prodAdDescription" validate:"required"`
	University    string   `json:"university" validate:"required"`
	Price         *float64 `json:"prodAdPrice" validate:"required,gte=0"`
	ContactNumber []string `json:"contactNumber" validate:"required,min=1"`
	Images        []string `json:"prodAdImage,omitempty" validate:"omitempty,dive,url"`
	Tags          []string `json:"prodAdTags" validate:"required,min=1"`
	RelatedLinks  []string `json:"prodAdRelatedLinks,omitempty" validate:"omitempty,dive,url"`
	Status        string   `json:"prodAdStatus,omitempty" validate:"omitempty,oneof=active inactive"`
}

// ToAd builds the stored product ad
func (r ProductAdRequest) ToAd(id primitive.ObjectID, createdAt, now time.Time) ProductAd {
	var price float64
	if r.Price != nil {
		price = *r.Price
	}
	return ProductAd{
		ID:            id,
		Name:          r.Name,
		Description:   r.Description,
		University:    r.University,
		Price:         price,
		ContactNumber: r.ContactNumber,
		Images:        r.Images,
		Tags:          r.Tags,
		RelatedLinks:  r.RelatedLinks,
		Status:        statusOrDefault(r.Status),
		CreatedAt:     createdAt,
		UpdatedAt:     now,
	}
}

// OtherAdRequest defines the request body for creating or replacing an other ad
type OtherAdRequest struct {
	Title         string     `json:"otherAdTitle" validate:"required,max=200"`
	Date          *time.Time `json:"otherAdDate,omitempty"`
	Description   string     `json:"otherAdDescription" validate:"required"`
	University    string     `json:"university" validate:"required"`
	ContactNumber []string   `json:"contactNumber" validate:"required,min=1"`
	Location      string     `json:"otherAdLocation,omitempty"`
	Images        []string   `json:"otherAdImage,omitempty" validate:"omitempty,dive,url"`
	Tags          []string   `json:"otherAdTags" validate:"required,min=1"`
	RelatedLinks  []string   `json:"otherAdRelatedLinks,omitempty" validate:"omitempty,dive,url"`
	Status        string     `json:"otherAdStatus,omitempty" validate:"omitempty,oneof=active inactive"`
}

// ToAd builds the stored other ad
func (r OtherAdRequest) ToAd(id primitive.ObjectID, createdAt, now time.Time) OtherAd {
	return OtherAd{
		ID:            id,
		Title:         r.Title,
		Date:          r.Date,
		Description:   r.Description,
		University:    r.University,
		ContactNumber: r.ContactNumber,
		Location:      r.Location,
		Images:        r.Images,
		Tags:          r.Tags,
		RelatedLinks:  r.RelatedLinks,
		Status:        statusOrDefault(r.Status),
		CreatedAt:     createdAt,
		UpdatedAt:     now,
	}
}

func statusOrDefault(s string) string {
	if s == "" {
		return AdStatusActive
	}
	return s
}

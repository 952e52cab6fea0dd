package services

import "github.com/anonto42/campus-board/backend/internal/models"

// Normalize turns a club ad into the derived part of an aggregate envelope.
// The ad type comes from the payload's own type, so adType and adData always agree.
func Normalize(ad models.AdPayload) models.EnvelopeSeed {
	return models.EnvelopeSeed{
		AdType:          ad.Kind(),
		AdData:          ad,
		University:      ad.UniversityName(),
		SourceID:        ad.SourceID(),
		SourceCreatedAt: ad.Created(),
	}
}

// NormalizeAll normalizes every ad in order
func NormalizeAll(ads []models.AdPayload) []models.EnvelopeSeed {
	seeds := make([]models.EnvelopeSeed, len(ads))
	for i, ad := range ads {
		seeds[i] = Normalize(ad)
	}
	return seeds
}

package mongodb

import (
	"time"

	"github.com/opulent-living/property-service/internal/listing/domain"
	"go.mongodb.org/mongo-driver/bson"
)

// listingDocument is the stored shape of a listing. _id is the integer
// listing id allocated from the counters collection.
type listingDocument struct {
	ID            int64         `bson:"_id"`
	CreatedAt     time.Time     `bson:"created_at"`
	UpdatedAt     time.Time     `bson:"updated_at"`
	OwnerID       string        `bson:"created_by"`
	Title         string        `bson:"title"`
	Description   string        `bson:"description"`
	PropertyType  string        `bson:"property_type"`
	Price         int64         `bson:"price"`
	NumberOfBeds  int64         `bson:"number_of_beds"`
	NumberOfBaths int64         `bson:"number_of_baths"`
	Sqft          int64         `bson:"sqft"`
	IsFeatured    bool          `bson:"is_featured"`
	IsActive      bool          `bson:"is_active"`
	IsSold        bool          `bson:"is_sold"`
	Image         imageDocument `bson:"image"`
}

type imageDocument struct {
	ObjectID  string `bson:"object_id"`
	Original  string `bson:"original_url"`
	Full      string `bson:"full_url"`
	Thumbnail string `bson:"thumbnail_url"`
}

type counterDocument struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

func fieldsUpdate(f domain.ListingFields, now time.Time) bson.M {
	return bson.M{
		"title":           f.Title,
		"description":     f.Description,
		"property_type":   f.PropertyType,
		"price":           f.Price,
		"number_of_beds":  f.NumberOfBeds,
		"number_of_baths": f.NumberOfBaths,
		"sqft":            f.Sqft,
		"is_featured":     f.IsFeatured,
		"is_active":       f.IsActive,
		"is_sold":         f.IsSold,
		"updated_at":      now,
	}
}

func toListingDocument(id int64, nl domain.NewListing, now time.Time) *listingDocument {
	f := nl.Fields
	return &listingDocument{
		ID:            id,
		CreatedAt:     now,
		UpdatedAt:     now,
		OwnerID:       nl.OwnerID,
		Title:         f.Title,
		Description:   f.Description,
		PropertyType:  f.PropertyType,
		Price:         f.Price,
		NumberOfBeds:  f.NumberOfBeds,
		NumberOfBaths: f.NumberOfBaths,
		Sqft:          f.Sqft,
		IsFeatured:    f.IsFeatured,
		IsActive:      f.IsActive,
		IsSold:        f.IsSold,
		Image: imageDocument{
			ObjectID:  nl.Image.ObjectID,
			Original:  nl.Image.URLs.Original,
			Full:      nl.Image.URLs.Full,
			Thumbnail: nl.Image.URLs.Thumbnail,
		},
	}
}

func toDomainListing(d *listingDocument) *domain.Listing {
	if d == nil {
		return nil
	}
	return &domain.Listing{
		ID:            d.ID,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
		OwnerID:       d.OwnerID,
		Title:         d.Title,
		Description:   d.Description,
		PropertyType:  d.PropertyType,
		Price:         d.Price,
		NumberOfBeds:  d.NumberOfBeds,
		NumberOfBaths: d.NumberOfBaths,
		Sqft:          d.Sqft,
		IsFeatured:    d.IsFeatured,
		IsActive:      d.IsActive,
		IsSold:        d.IsSold,
		Image: domain.ImageRef{
			ObjectID: d.Image.ObjectID,
			URLs: domain.ImageURLs{
				Original:  d.Image.Original,
				Full:      d.Image.Full,
				Thumbnail: d.Image.Thumbnail,
			},
		},
	}
}

func toDomainListings(docs []*listingDocument) []*domain.Listing {
	out := make([]*domain.Listing, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toDomainListing(doc))
	}
	return out
}

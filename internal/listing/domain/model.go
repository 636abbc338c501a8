package domain

import "time"

const (
	SessionStatusActive = "active"
)

// Listing is a property record as persisted by the repository.
type Listing struct {
	ID            int64     `json:"id"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	OwnerID       string    `json:"createdBy"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	PropertyType  string    `json:"propertyType"`
	Price         int64     `json:"price"`
	NumberOfBeds  int64     `json:"numberOfBeds"`
	NumberOfBaths int64     `json:"numberOfBaths"`
	Sqft          int64     `json:"sqft"`
	IsFeatured    bool      `json:"isFeatured"`
	IsActive      bool      `json:"isActive"`
	IsSold        bool      `json:"isSold"`
	Image         ImageRef  `json:"image"`
}

// ImageRef points at the listing image held by the object store.
type ImageRef struct {
	ObjectID string    `json:"objectId"`
	URLs     ImageURLs `json:"imageUrls"`
}

type ImageURLs struct {
	Original  string `json:"original"`
	Full      string `json:"full"`
	Thumbnail string `json:"thumbnail"`
}

// ListingFields holds the validated, client-editable scalar fields.
type ListingFields struct {
	Title         string
	Description   string
	PropertyType  string
	Price         int64
	NumberOfBeds  int64
	NumberOfBaths int64
	Sqft          int64
	IsFeatured    bool
	IsActive      bool
	IsSold        bool
}

// NewListing is what the repository needs to insert a row. ID and
// timestamps are assigned by the repository.
type NewListing struct {
	OwnerID string
	Fields  ListingFields
	Image   ImageRef
}

// Apply copies validated fields onto the listing.
func (l *Listing) Apply(f ListingFields) {
	l.Title = f.Title
	l.Description = f.Description
	l.PropertyType = f.PropertyType
	l.Price = f.Price
	l.NumberOfBeds = f.NumberOfBeds
	l.NumberOfBaths = f.NumberOfBaths
	l.Sqft = f.Sqft
	l.IsFeatured = f.IsFeatured
	l.IsActive = f.IsActive
	l.IsSold = f.IsSold
}

// ImageUpload is the binary part of a create submission.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Session is what the identity provider reports for a session id.
type Session struct {
	ID     string
	UserID string
	Status string
}

func (s *Session) Active() bool {
	return s != nil && s.Status == SessionStatusActive && s.UserID != ""
}

// Event is published on listing lifecycle changes.
type Event struct {
	ListingID  int64     `json:"id"`
	OwnerID    string    `json:"owner_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

const (
	SubjectListingCreated = "listing.created"
	SubjectListingUpdated = "listing.updated"
	SubjectListingDeleted = "listing.deleted"
)

package domain

import "context"

type ListingRepository interface {
	List(ctx context.Context, filter Filter) ([]*Listing, error)
	GetByID(ctx context.Context, id int64) (*Listing, error)
	Insert(ctx context.Context, listing NewListing) (*Listing, error)
	Update(ctx context.Context, id int64, fields ListingFields) (*Listing, error)
	Delete(ctx context.Context, id int64) error
}

// ImageStore uploads and removes listing images in the object store.
type ImageStore interface {
	Upload(ctx context.Context, data []byte, objectName, contentType string) (ImageRef, error)
	Delete(ctx context.Context, objectID string) error
}

// IdentityProvider verifies a session. A nil session with a nil error
// means the provider does not know the session.
type IdentityProvider interface {
	VerifySession(ctx context.Context, sessionID, token string) (*Session, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

type Notifier interface {
	ListingCreated(ctx context.Context, listing *Listing) error
}

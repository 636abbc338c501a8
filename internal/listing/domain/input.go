package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxTextLength caps every free-text field, matching the VARCHAR(255)
// columns and the update payload schema.
const MaxTextLength = 255

type ValidationMode int

const (
	// ModeCreate requires every scalar field; status flags fall back to
	// their column defaults.
	ModeCreate ValidationMode = iota
	// ModeUpdate is a full-field replacement, status flags included.
	ModeUpdate
)

// ListingInput carries client-supplied fields. A nil pointer means the
// field was not submitted, which is different from a zero value.
type ListingInput struct {
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	PropertyType  *string `json:"propertyType"`
	Price         *int64  `json:"price"`
	NumberOfBeds  *int64  `json:"numberOfBeds"`
	NumberOfBaths *int64  `json:"numberOfBaths"`
	Sqft          *int64  `json:"sqft"`
	IsFeatured    *bool   `json:"isFeatured"`
	IsActive      *bool   `json:"isActive"`
	IsSold        *bool   `json:"isSold"`
}

// Validate checks presence and range of every required field and returns
// the concrete field set.
func (in ListingInput) Validate(mode ValidationMode) (ListingFields, error) {
	var f ListingFields

	strs := []struct {
		name string
		val  *string
		dst  *string
	}{
		{"title", in.Title, &f.Title},
		{"description", in.Description, &f.Description},
		{"propertyType", in.PropertyType, &f.PropertyType},
	}
	for _, s := range strs {
		if s.val == nil {
			return ListingFields{}, NewValidationError(s.name, "is required")
		}
		if utf8.RuneCountInString(*s.val) > MaxTextLength {
			return ListingFields{}, NewValidationError(s.name, fmt.Sprintf("must be at most %d characters", MaxTextLength))
		}
		v := strings.TrimSpace(*s.val)
		if v == "" {
			return ListingFields{}, NewValidationError(s.name, "must not be blank")
		}
		*s.dst = v
	}

	ints := []struct {
		name string
		val  *int64
		dst  *int64
	}{
		{"price", in.Price, &f.Price},
		{"numberOfBeds", in.NumberOfBeds, &f.NumberOfBeds},
		{"numberOfBaths", in.NumberOfBaths, &f.NumberOfBaths},
		{"sqft", in.Sqft, &f.Sqft},
	}
	for _, n := range ints {
		if n.val == nil {
			return ListingFields{}, NewValidationError(n.name, "is required")
		}
		if *n.val < 0 {
			return ListingFields{}, NewValidationError(n.name, "must not be negative")
		}
		*n.dst = *n.val
	}

	f.IsActive = true
	flags := []struct {
		name string
		val  *bool
		dst  *bool
	}{
		{"isFeatured", in.IsFeatured, &f.IsFeatured},
		{"isActive", in.IsActive, &f.IsActive},
		{"isSold", in.IsSold, &f.IsSold},
	}
	for _, b := range flags {
		if b.val == nil {
			if mode == ModeUpdate {
				return ListingFields{}, NewValidationError(b.name, "is required")
			}
			continue
		}
		*b.dst = *b.val
	}

	return f, nil
}

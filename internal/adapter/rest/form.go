package rest

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/opulent-living/property-service/internal/listing/domain"
)

const imageFormField = "imageFile"

// sniffLen is how many bytes http.DetectContentType looks at.
const sniffLen = 512

var errBodyTooLarge = errors.New("request body too large")

// parseListingForm reads a multipart create request. A missing image part
// yields a nil upload so validation decides how to report it.
func parseListingForm(w http.ResponseWriter, r *http.Request, maxBytes int64) (domain.ListingInput, *domain.ImageUpload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.ListingInput{}, nil, errBodyTooLarge
		}
		return domain.ListingInput{}, nil, domain.NewValidationError("", "request must be multipart/form-data")
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	in, err := listingInputFromValues(r.MultipartForm.Value)
	if err != nil {
		return domain.ListingInput{}, nil, err
	}

	file, header, err := r.FormFile(imageFormField)
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil, nil
	}
	if err != nil {
		return domain.ListingInput{}, nil, domain.NewValidationError(imageFormField, "could not be read")
	}
	defer file.Close()

	image, err := readImage(file, header)
	if err != nil {
		return domain.ListingInput{}, nil, err
	}
	return in, image, nil
}

func readImage(file multipart.File, header *multipart.FileHeader) (*domain.ImageUpload, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, domain.NewValidationError(imageFormField, "could not be read")
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		n := len(data)
		if n > sniffLen {
			n = sniffLen
		}
		contentType = http.DetectContentType(data[:n])
	}
	return &domain.ImageUpload{Filename: header.Filename, ContentType: contentType, Data: data}, nil
}

func listingInputFromValues(values url.Values) (domain.ListingInput, error) {
	var in domain.ListingInput
	in.Title = formString(values, "title")
	in.Description = formString(values, "description")
	in.PropertyType = formString(values, "propertyType")

	ints := []struct {
		name string
		dst  **int64
	}{
		{"price", &in.Price},
		{"numberOfBeds", &in.NumberOfBeds},
		{"numberOfBaths", &in.NumberOfBaths},
		{"sqft", &in.Sqft},
	}
	for _, f := range ints {
		raw := formString(values, f.name)
		if raw == nil {
			continue
		}
		v, err := strconv.ParseInt(*raw, 10, 64)
		if err != nil {
			return domain.ListingInput{}, domain.NewValidationError(f.name, "must be an integer")
		}
		*f.dst = &v
	}

	flags := []struct {
		name string
		dst  **bool
	}{
		{"isFeatured", &in.IsFeatured},
		{"isActive", &in.IsActive},
		{"isSold", &in.IsSold},
	}
	for _, f := range flags {
		raw := formString(values, f.name)
		if raw == nil {
			continue
		}
		v, err := strconv.ParseBool(*raw)
		if err != nil {
			return domain.ListingInput{}, domain.NewValidationError(f.name, "must be a boolean")
		}
		*f.dst = &v
	}
	return in, nil
}

// formString distinguishes an absent key (nil) from an empty value.
func formString(values url.Values, key string) *string {
	v, ok := values[key]
	if !ok || len(v) == 0 {
		return nil
	}
	s := v[0]
	return &s
}

// parseListFilter reads isFeatured and limit from the query string.
func parseListFilter(q url.Values) (domain.Filter, error) {
	var f domain.Filter
	if raw := q.Get("isFeatured"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return domain.Filter{}, domain.NewValidationError("isFeatured", "must be true or false")
		}
		f.IsFeatured = &v
	}
	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return domain.Filter{}, domain.NewValidationError("limit", "must be a non-negative integer")
		}
		f.Limit = &v
	}
	return f, nil
}

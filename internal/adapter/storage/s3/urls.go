package s3

import (
	"strings"

	"github.com/opulent-living/property-service/internal/listing/domain"
)

const (
	originalTemplate  = "{base}/{bucket}/{id}"
	fullTemplate      = "{base}/{bucket}/{id}?w=1600"
	thumbnailTemplate = "{base}/{bucket}/{id}?w=400"
)

// URLBuilder derives public image URLs from an object id.
type URLBuilder struct {
	base   string
	bucket string
}

func NewURLBuilder(base, bucket string) URLBuilder {
	return URLBuilder{base: strings.TrimRight(base, "/"), bucket: bucket}
}

func (b URLBuilder) URLs(objectID string) domain.ImageURLs {
	r := strings.NewReplacer("{base}", b.base, "{bucket}", b.bucket, "{id}", objectID)
	return domain.ImageURLs{
		Original:  r.Replace(originalTemplate),
		Full:      r.Replace(fullTemplate),
		Thumbnail: r.Replace(thumbnailTemplate),
	}
}

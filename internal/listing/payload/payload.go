// Package payload decodes and schema-checks JSON listing bodies.
package payload

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"strings"

	"github.com/opulent-living/property-service/internal/listing/domain"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed listing_update.schema.json
var updateSchemaSource string

const updateSchemaURL = "listing_update.schema.json"

var updateSchema = jsonschema.MustCompileString(updateSchemaURL, updateSchemaSource)

// DecodeUpdate validates body against the full-update schema and decodes
// it. Failures are reported as *domain.ValidationError.
func DecodeUpdate(body []byte) (domain.ListingInput, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return domain.ListingInput{}, domain.NewValidationError("", "request body is required")
	}

	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return domain.ListingInput{}, domain.NewValidationError("", "request body is not valid JSON")
	}
	if err := updateSchema.Validate(doc); err != nil {
		return domain.ListingInput{}, schemaError(err)
	}

	var in domain.ListingInput
	if err := json.Unmarshal(body, &in); err != nil {
		return domain.ListingInput{}, domain.NewValidationError("", "request body does not match the listing shape")
	}
	return in, nil
}

// schemaError reduces a schema failure to its first leaf cause.
func schemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return domain.NewValidationError("", err.Error())
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	field := strings.TrimPrefix(ve.InstanceLocation, "/")
	return domain.NewValidationError(field, ve.Message)
}

package s3

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/minio/minio-go/v7"
)

type uploadOutcome int

const (
	uploadStored uploadOutcome = iota
	// uploadStoredMalformedAck: the store answered 2xx but its body could
	// not be decoded. The object is in place.
	uploadStoredMalformedAck
	uploadFailed
)

func (o uploadOutcome) String() string {
	switch o {
	case uploadStored:
		return "stored"
	case uploadStoredMalformedAck:
		return "stored_malformed_ack"
	default:
		return "failed"
	}
}

// classifyUpload sorts a PutObject error into one of the three outcomes.
func classifyUpload(err error) uploadOutcome {
	if err == nil {
		return uploadStored
	}
	var resp minio.ErrorResponse
	if !errors.As(err, &resp) {
		return uploadFailed
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return uploadFailed
	}
	if ackUnreadable(resp) {
		return uploadStoredMalformedAck
	}
	return uploadFailed
}

// ackUnreadable reports whether the response body failed to decode. When
// minio-go cannot parse a body it falls back to the HTTP status line as
// the error code.
func ackUnreadable(resp minio.ErrorResponse) bool {
	if resp.Code == "" {
		return true
	}
	return strings.HasPrefix(resp.Code, strconv.Itoa(resp.StatusCode))
}

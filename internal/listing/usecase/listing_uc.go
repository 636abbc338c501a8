package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/opulent-living/property-service/internal/listing/domain"
	"github.com/opulent-living/property-service/internal/listing/payload"
	"github.com/opulent-living/property-service/internal/platform/logger"
	"github.com/opulent-living/property-service/internal/platform/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("property-service/usecase")

const imageObjectPrefix = "properties/"

type ListingUsecase struct {
	repo     domain.ListingRepository
	images   domain.ImageStore
	events   domain.EventPublisher
	notifier domain.Notifier
	metrics  *metrics.Manager
	logger   *logger.Logger

	objectName func(filename string) string
	now        func() time.Time
}

func NewListingUsecase(
	repo domain.ListingRepository,
	images domain.ImageStore,
	events domain.EventPublisher,
	notifier domain.Notifier,
	m *metrics.Manager,
	log *logger.Logger,
) *ListingUsecase {
	return &ListingUsecase{
		repo:       repo,
		images:     images,
		events:     events,
		notifier:   notifier,
		metrics:    m,
		logger:     log,
		objectName: newObjectName,
		now:        time.Now,
	}
}

// newObjectName returns a unique object key that keeps the file extension.
func newObjectName(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return imageObjectPrefix + uuid.New().String() + ext
}

// ParseListingID accepts only positive decimal ids.
func ParseListingID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("id", "must be a positive integer")
	}
	return id, nil
}

func (uc *ListingUsecase) ListListings(ctx context.Context, filter domain.Filter) ([]*domain.Listing, error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.ListListings")
	defer span.End()

	uc.logger.Debug("ListingUsecase.ListListings: listing properties", "filter", describeFilter(filter))
	listings, err := uc.repo.List(ctx, filter)
	if err != nil {
		uc.logger.Error("ListingUsecase.ListListings: repository failed", "filter", describeFilter(filter), "error", err.Error())
		recordSpanError(span, err)
		return nil, err
	}
	if listings == nil {
		listings = []*domain.Listing{}
	}
	span.SetAttributes(attribute.Int("result_count", len(listings)))
	return listings, nil
}

func (uc *ListingUsecase) GetListing(ctx context.Context, rawID string) (*domain.Listing, error) {
	id, err := ParseListingID(rawID)
	if err != nil {
		return nil, err
	}
	ctx, span := tracer.Start(ctx, "ListingUsecase.GetListing", oteltrace.WithAttributes(attribute.Int64("listing_id", id)))
	defer span.End()

	listing, err := uc.load(ctx, id, "GetListing")
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	return listing, nil
}

// CreateListing validates the submission, uploads the image and only then
// inserts the row. The owner always comes from the verified session.
func (uc *ListingUsecase) CreateListing(ctx context.Context, ownerID string, in domain.ListingInput, image *domain.ImageUpload) (*domain.Listing, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	ctx, span := tracer.Start(ctx, "ListingUsecase.CreateListing", oteltrace.WithAttributes(attribute.String("user_id", ownerID)))
	defer span.End()

	fields, err := in.Validate(domain.ModeCreate)
	if err != nil {
		uc.logger.Warn("ListingUsecase.CreateListing: invalid fields", "user_id", ownerID, "error", err.Error())
		return nil, err
	}
	if image == nil || len(image.Data) == 0 {
		uc.logger.Warn("ListingUsecase.CreateListing: image file missing", "user_id", ownerID)
		return nil, domain.NewValidationError("imageFile", "must be a non-empty file")
	}

	objectName := uc.objectName(image.Filename)
	uc.logger.Info("ListingUsecase.CreateListing: uploading image",
		"user_id", ownerID, "object_name", objectName, "size_bytes", len(image.Data))

	uploadCtx, uploadSpan := tracer.Start(ctx, "ImageStore.Upload", oteltrace.WithAttributes(attribute.String("object_name", objectName)))
	ref, err := uc.images.Upload(uploadCtx, image.Data, objectName, image.ContentType)
	if err != nil {
		recordSpanError(uploadSpan, err)
	}
	uploadSpan.End()
	if err != nil {
		uc.metrics.ImageUploadFailures.Inc()
		uc.logger.Error("ListingUsecase.CreateListing: image upload failed", "user_id", ownerID, "object_name", objectName, "error", err.Error())
		recordSpanError(span, err)
		return nil, fmt.Errorf("%w: image upload: %v", domain.ErrUpstream, err)
	}

	listing, err := uc.repo.Insert(ctx, domain.NewListing{OwnerID: ownerID, Fields: fields, Image: ref})
	if err != nil {
		uc.logger.Error("ListingUsecase.CreateListing: insert failed", "user_id", ownerID, "object_id", ref.ObjectID, "error", err.Error())
		recordSpanError(span, err)
		uc.discardOrphanImage(ctx, ref.ObjectID)
		return nil, err
	}

	uc.metrics.ListingsCreatedTotal.Inc()
	span.SetAttributes(attribute.Int64("listing_id", listing.ID))
	uc.logger.Info("ListingUsecase.CreateListing: listing created", "listing_id", listing.ID, "user_id", ownerID)

	uc.publish(ctx, domain.SubjectListingCreated, listing)
	if err := uc.notifier.ListingCreated(ctx, listing); err != nil {
		uc.logger.Warn("ListingUsecase.CreateListing: moderation notification failed", "listing_id", listing.ID, "error", err.Error())
	}
	return listing, nil
}

// UpdateListing replaces every scalar field of a listing owned by userID.
// The image is left untouched.
func (uc *ListingUsecase) UpdateListing(ctx context.Context, userID, rawID string, body []byte) (*domain.Listing, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	id, err := ParseListingID(rawID)
	if err != nil {
		return nil, err
	}
	ctx, span := tracer.Start(ctx, "ListingUsecase.UpdateListing", oteltrace.WithAttributes(
		attribute.Int64("listing_id", id),
		attribute.String("user_id", userID),
	))
	defer span.End()

	if _, err := uc.loadOwned(ctx, id, userID, "UpdateListing"); err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	in, err := payload.DecodeUpdate(body)
	if err != nil {
		uc.logger.Warn("ListingUsecase.UpdateListing: invalid payload", "listing_id", id, "error", err.Error())
		return nil, err
	}
	fields, err := in.Validate(domain.ModeUpdate)
	if err != nil {
		uc.logger.Warn("ListingUsecase.UpdateListing: invalid fields", "listing_id", id, "error", err.Error())
		return nil, err
	}

	updated, err := uc.repo.Update(ctx, id, fields)
	if err != nil {
		uc.logger.Error("ListingUsecase.UpdateListing: repository update failed", "listing_id", id, "error", err.Error())
		recordSpanError(span, err)
		return nil, err
	}

	uc.metrics.ListingsUpdatedTotal.Inc()
	uc.logger.Info("ListingUsecase.UpdateListing: listing updated", "listing_id", id, "user_id", userID)
	uc.publish(ctx, domain.SubjectListingUpdated, updated)
	return updated, nil
}

// DeleteListing removes the remote image first and the row second. A
// failed image removal is logged and does not stop the row removal.
func (uc *ListingUsecase) DeleteListing(ctx context.Context, userID, rawID string) error {
	if userID == "" {
		return domain.ErrUnauthorized
	}
	id, err := ParseListingID(rawID)
	if err != nil {
		return err
	}
	ctx, span := tracer.Start(ctx, "ListingUsecase.DeleteListing", oteltrace.WithAttributes(
		attribute.Int64("listing_id", id),
		attribute.String("user_id", userID),
	))
	defer span.End()

	listing, err := uc.loadOwned(ctx, id, userID, "DeleteListing")
	if err != nil {
		recordSpanError(span, err)
		return err
	}

	if objectID := listing.Image.ObjectID; objectID != "" {
		delCtx, delSpan := tracer.Start(ctx, "ImageStore.Delete", oteltrace.WithAttributes(attribute.String("object_id", objectID)))
		if err := uc.images.Delete(delCtx, objectID); err != nil {
			recordSpanError(delSpan, err)
			uc.metrics.ImageDeleteFailures.Inc()
			uc.logger.Error("ListingUsecase.DeleteListing: remote image delete failed, removing row anyway",
				"listing_id", id, "object_id", objectID, "error", err.Error())
		}
		delSpan.End()
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			uc.logger.Warn("ListingUsecase.DeleteListing: row vanished before delete", "listing_id", id)
		} else {
			uc.logger.Error("ListingUsecase.DeleteListing: repository delete failed", "listing_id", id, "error", err.Error())
		}
		recordSpanError(span, err)
		return err
	}

	uc.metrics.ListingsDeletedTotal.Inc()
	uc.logger.Info("ListingUsecase.DeleteListing: listing deleted", "listing_id", id, "user_id", userID)
	uc.publish(ctx, domain.SubjectListingDeleted, listing)
	return nil
}

func (uc *ListingUsecase) load(ctx context.Context, id int64, op string) (*domain.Listing, error) {
	listing, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			uc.logger.Debug("ListingUsecase."+op+": listing not found", "listing_id", id)
			return nil, domain.ErrListingNotFound
		}
		uc.logger.Error("ListingUsecase."+op+": failed to load listing", "listing_id", id, "error", err.Error())
		return nil, err
	}
	if listing == nil {
		return nil, domain.ErrListingNotFound
	}
	return listing, nil
}

// loadOwned checks existence before ownership so a non-owner cannot tell
// missing ids from foreign ones.
func (uc *ListingUsecase) loadOwned(ctx context.Context, id int64, userID, op string) (*domain.Listing, error) {
	listing, err := uc.load(ctx, id, op)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != userID {
		uc.logger.Warn("ListingUsecase."+op+": caller does not own listing",
			"listing_id", id, "listing_owner_id", listing.OwnerID, "user_id", userID)
		return nil, domain.ErrUnauthorized
	}
	return listing, nil
}

func (uc *ListingUsecase) discardOrphanImage(ctx context.Context, objectID string) {
	if err := uc.images.Delete(context.WithoutCancel(ctx), objectID); err != nil {
		uc.logger.Error("ListingUsecase.CreateListing: failed to remove orphaned image", "object_id", objectID, "error", err.Error())
		return
	}
	uc.logger.Info("ListingUsecase.CreateListing: removed orphaned image", "object_id", objectID)
}

func (uc *ListingUsecase) publish(ctx context.Context, subject string, listing *domain.Listing) {
	event := domain.Event{ListingID: listing.ID, OwnerID: listing.OwnerID, OccurredAt: uc.now().UTC()}
	if err := uc.events.Publish(ctx, subject, event); err != nil {
		uc.logger.Warn("ListingUsecase: event publish failed", "subject", subject, "listing_id", listing.ID, "error", err.Error())
	}
}

func recordSpanError(span oteltrace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func describeFilter(f domain.Filter) string {
	var parts []string
	if f.IsFeatured != nil {
		parts = append(parts, "isFeatured="+strconv.FormatBool(*f.IsFeatured))
	}
	if f.OwnerID != nil {
		parts = append(parts, "ownerId="+*f.OwnerID)
	}
	if f.Limit != nil {
		parts = append(parts, "limit="+strconv.Itoa(*f.Limit))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ",")
}

package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/opulent-living/property-service/internal/adapter/repository/memory"
	"github.com/opulent-living/property-service/internal/listing/domain"
	"github.com/opulent-living/property-service/internal/platform/logger"
	"github.com/opulent-living/property-service/internal/platform/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const fixedObjectName = "properties/fixed.png"

type fixture struct {
	uc       *ListingUsecase
	repo     *memory.ListingRepository
	images   *MockImageStore
	events   *MockEventPublisher
	notifier *MockNotifier
	metrics  *metrics.Manager
}

func newFixture(repo domain.ListingRepository) *fixture {
	images := new(MockImageStore)
	events := new(MockEventPublisher)
	notifier := new(MockNotifier)
	events.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	notifier.On("ListingCreated", mock.Anything, mock.Anything).Return(nil).Maybe()

	m := metrics.NewManager("test")
	uc := NewListingUsecase(repo, images, events, notifier, m, logger.NewNop())
	uc.objectName = func(string) string { return fixedObjectName }

	f := &fixture{uc: uc, images: images, events: events, notifier: notifier, metrics: m}
	if mem, ok := repo.(*memory.ListingRepository); ok {
		f.repo = mem
	}
	return f
}

func ptr[T any](v T) *T { return &v }

func validInput() domain.ListingInput {
	return domain.ListingInput{
		Title:         ptr("Garden Flat"),
		Description:   ptr("Ground floor with a garden"),
		PropertyType:  ptr("apartment"),
		Price:         ptr(int64(420000)),
		NumberOfBeds:  ptr(int64(2)),
		NumberOfBaths: ptr(int64(1)),
		Sqft:          ptr(int64(850)),
	}
}

func pngUpload() *domain.ImageUpload {
	return &domain.ImageUpload{Filename: "flat.png", ContentType: "image/png", Data: []byte("png-bytes")}
}

func storedRef() domain.ImageRef {
	return domain.ImageRef{ObjectID: fixedObjectName, URLs: domain.ImageURLs{Original: "http://cdn/" + fixedObjectName}}
}

const fullUpdateBody = `{"title":"Garden Flat II","description":"Now with a shed","propertyType":"apartment",` +
	`"price":0,"numberOfBeds":2,"numberOfBaths":1,"sqft":850,"isFeatured":true,"isActive":true,"isSold":false}`

func (f *fixture) seed(t *testing.T, owner string) *domain.Listing {
	t.Helper()
	f.images.On("Upload", mock.Anything, mock.Anything, fixedObjectName, "image/png").Return(storedRef(), nil).Once()
	l, err := f.uc.CreateListing(context.Background(), owner, validInput(), pngUpload())
	require.NoError(t, err)
	return l
}

func TestParseListingID(t *testing.T) {
	id, err := ParseListingID(" 17 ")
	require.NoError(t, err)
	assert.Equal(t, int64(17), id)

	for _, raw := range []string{"", "abc", "0", "-3", "1.5", "99999999999999999999"} {
		_, err := ParseListingID(raw)
		assert.ErrorIs(t, err, domain.ErrInvalidListingData, raw)
	}
}

func TestNewObjectName(t *testing.T) {
	a := newObjectName("House.JPG")
	b := newObjectName("House.JPG")
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^properties/[0-9a-f-]{36}\.jpg$`, a)
	assert.Regexp(t, `^properties/[0-9a-f-]{36}$`, newObjectName("noext"))
}

func TestCreateListing_OwnerFromSession(t *testing.T) {
	f := newFixture(memory.NewListingRepository())

	l := f.seed(t, "user_1")

	assert.Equal(t, "user_1", l.OwnerID)
	assert.Equal(t, storedRef(), l.Image)
	assert.True(t, l.IsActive)
	assert.False(t, l.IsFeatured)
	assert.Equal(t, 1, f.repo.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ListingsCreatedTotal))
	f.events.AssertCalled(t, "Publish", mock.Anything, domain.SubjectListingCreated, mock.MatchedBy(func(e domain.Event) bool {
		return e.ListingID == l.ID && e.OwnerID == "user_1"
	}))
	f.notifier.AssertCalled(t, "ListingCreated", mock.Anything, l)
	f.images.AssertExpectations(t)
}

func TestCreateListing_InvalidFieldsNeverUpload(t *testing.T) {
	f := newFixture(memory.NewListingRepository())

	in := validInput()
	in.Title = ptr("   ")
	_, err := f.uc.CreateListing(context.Background(), "user_1", in, pngUpload())

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Field)
	assert.Zero(t, f.repo.Len())
	f.images.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateListing_OverlongTitleRejectedBeforeUpload(t *testing.T) {
	f := newFixture(memory.NewListingRepository())

	in := validInput()
	in.Title = ptr(strings.Repeat("x", domain.MaxTextLength+1))
	_, err := f.uc.CreateListing(context.Background(), "user_1", in, pngUpload())

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Field)
	assert.Zero(t, f.repo.Len())
	f.images.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateListing_KeepsTitleAcceptedOnCreate(t *testing.T) {
	f := newFixture(memory.NewListingRepository())
	title := strings.Repeat("x", domain.MaxTextLength)

	in := validInput()
	in.Title = ptr(title)
	f.images.On("Upload", mock.Anything, mock.Anything, fixedObjectName, "image/png").Return(storedRef(), nil).Once()
	created, err := f.uc.CreateListing(context.Background(), "user_1", in, pngUpload())
	require.NoError(t, err)

	body := strings.Replace(fullUpdateBody, `"Garden Flat II"`, `"`+title+`"`, 1)
	updated, err := f.uc.UpdateListing(context.Background(), "user_1", "1", []byte(body))
	require.NoError(t, err)
	assert.Equal(t, created.Title, updated.Title)
}

func TestCreateListing_ImageRequired(t *testing.T) {
	f := newFixture(memory.NewListingRepository())

	for _, img := range []*domain.ImageUpload{nil, {Filename: "x.png"}} {
		_, err := f.uc.CreateListing(context.Background(), "user_1", validInput(), img)
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "imageFile", verr.Field)
	}
	assert.Zero(t, f.repo.Len())
	f.images.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateListing_RequiresOwner(t *testing.T) {
	f := newFixture(memory.NewListingRepository())

	_, err := f.uc.CreateListing(context.Background(), "", validInput(), pngUpload())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestCreateListing_UploadFailureSkipsInsert(t *testing.T) {
	f := newFixture(memory.NewListingRepository())
	f.images.On("Upload", mock.Anything, mock.Anything, fixedObjectName, "image/png").
		Return(domain.ImageRef{}, errors.New("503 slow down")).Once()

	_, err := f.uc.CreateListing(context.Background(), "user_1", validInput(), pngUpload())

	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Zero(t, f.repo.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ImageUploadFailures))
	f.events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateListing_InsertFailureDiscardsImage(t *testing.T) {
	repo := new(MockListingRepository)
	repo.On("Insert", mock.Anything, mock.Anything).Return(nil, errors.New("disk full")).Once()
	f := newFixture(repo)
	f.images.On("Upload", mock.Anything, mock.Anything, fixedObjectName, "image/png").Return(storedRef(), nil).Once()
	f.images.On("Delete", mock.Anything, fixedObjectName).Return(nil).Once()

	_, err := f.uc.CreateListing(context.Background(), "user_1", validInput(), pngUpload())

	assert.EqualError(t, err, "disk full")
	f.images.AssertExpectations(t)
	repo.AssertExpectations(t)
	f.notifier.AssertNotCalled(t, "ListingCreated", mock.Anything, mock.Anything)
}

func TestCreateListing_SideEffectFailuresIgnored(t *testing.T) {
	images := new(MockImageStore)
	events := new(MockEventPublisher)
	notifier := new(MockNotifier)
	images.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(storedRef(), nil)
	events.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("nats down"))
	notifier.On("ListingCreated", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	uc := NewListingUsecase(memory.NewListingRepository(), images, events, notifier, metrics.NewManager("test"), logger.NewNop())
	l, err := uc.CreateListing(context.Background(), "user_1", validInput(), pngUpload())

	require.NoError(t, err)
	assert.NotZero(t, l.ID)
}

func TestGetListing(t *testing.T) {
	f := newFixture(memory.NewListingRepository())
	created := f.seed(t, "user_1")

	got, err := f.uc.GetListing(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = f.uc.GetListing(context.Background(), "2")
	assert.ErrorIs(t, err, domain.ErrListingNotFound)

	_, err = f.uc.GetListing(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrInvalidListingData)
}

func TestListListings_NonNilOnEmpty(t *testing.T) {
	repo := new(MockListingRepository)
	repo.On("List", mock.Anything, mock.Anything).Return(nil, nil).Once()
	f := newFixture(repo)

	listings, err := f.uc.ListListings(context.Background(), domain.Filter{})
	require.NoError(t, err)
	assert.NotNil(t, listings)
	assert.Empty(t, listings)
}

func TestListListings_FilterAndLimit(t *testing.T) {
	f := newFixture(memory.NewListingRepository())
	for i := 0; i < 3; i++ {
		f.seed(t, "user_1")
	}
	f.seed(t, "user_2")

	owned, err := f.uc.ListListings(context.Background(), domain.Filter{OwnerID: ptr("user_1")})
	require.NoError(t, err)
	assert.Len(t, owned, 3)

	limited, err := f.uc.ListListings(context.Background(), domain.Filter{Limit: ptr(2)})
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, int64(4), limited[0].ID)

	none, err := f.uc.ListListings(context.Background(), domain.Filter{Limit: ptr(0)})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListListings_RepositoryError(t *testing.T) {
	repo := new(MockListingRepository)
	repo.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("timeout")).Once()
	f := newFixture(repo)

	_, err := f.uc.ListListings(context.Background(), domain.Filter{})
	assert.EqualError(t, err, "timeout")
}

func TestUpdateListing_Owner(t *testing.T) {
	f := newFixture(memory.NewListingRepository())
	created := f.seed(t, "user_1")

	updated, err := f.uc.UpdateListing(context.Background(), "user_1", "1", []byte(fullUpdateBody))

	require.NoError(t, err)
	assert.Equal(t, "Garden Flat II", updated.Title)
	assert.Zero(t, updated.Price)
	assert.True(t, updated.IsFeatured)
	assert.Equal(t, created.Image, updated.Image)
	assert.Equal(t, "user_1", updated.OwnerID)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ListingsUpdatedTotal))
	f.events.AssertCalled(t, "Publish", mock.Anything, domain.SubjectListingUpdated, mock.Anything)
}

func TestUpdateListing_NonOwnerLeavesStateUnchanged(t *testing.T) {
	f := newFixture(memory.NewListingRepository())
	f.seed(t, "user_1")

	_, err := f.uc.UpdateListing(context.Background(), "user_2", "1", []byte(fullUpdateBody))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	// ownership is checked before the body is looked at
	_, err = f.uc.UpdateListing(context.Background(), "user_2", "1", []byte(`not json`))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	got, err := f.uc.GetListing(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Garden Flat", got.Title)
}

func TestUpdateListing_Errors(t *testing.T) {
	f := newFixture(memory.NewListingRepository())
	f.seed(t, "user_1")

	_, err := f.uc.UpdateListing(context.Background(), "user_1", "9", []byte(fullUpdateBody))
	assert.ErrorIs(t, err, domain.ErrListingNotFound)

	_, err = f.uc.UpdateListing(context.Background(), "user_1", "abc", []byte(fullUpdateBody))
	assert.ErrorIs(t, err, domain.ErrInvalidListingData)

	_, err = f.uc.UpdateListing(context.Background(), "user_1", "1", []byte(`{"title":"only"}`))
	assert.ErrorIs(t, err, domain.ErrInvalidListingData)

	_, err = f.uc.UpdateListing(context.Background(), "", "1", []byte(fullUpdateBody))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestDeleteListing_RemovesImageThenRow(t *testing.T) {
	f := newFixture(memory.NewListingRepository())
	f.seed(t, "user_1")
	f.images.On("Delete", mock.Anything, fixedObjectName).Return(nil).Once()

	require.NoError(t, f.uc.DeleteListing(context.Background(), "user_1", "1"))
	assert.Zero(t, f.repo.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ListingsDeletedTotal))
	f.images.AssertExpectations(t)

	err := f.uc.DeleteListing(context.Background(), "user_1", "1")
	assert.ErrorIs(t, err, domain.ErrListingNotFound)
}

func TestDeleteListing_ImageFailureStillRemovesRow(t *testing.T) {
	f := newFixture(memory.NewListingRepository())
	f.seed(t, "user_1")
	f.images.On("Delete", mock.Anything, fixedObjectName).Return(errors.New("object store down")).Once()

	require.NoError(t, f.uc.DeleteListing(context.Background(), "user_1", "1"))
	assert.Zero(t, f.repo.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ImageDeleteFailures))
}

func TestDeleteListing_NonOwner(t *testing.T) {
	f := newFixture(memory.NewListingRepository())
	f.seed(t, "user_1")

	err := f.uc.DeleteListing(context.Background(), "user_2", "1")

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, 1, f.repo.Len())
	f.images.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDescribeFilter(t *testing.T) {
	assert.Equal(t, "none", describeFilter(domain.Filter{}))
	assert.Equal(t, "isFeatured=true,ownerId=u,limit=3",
		describeFilter(domain.Filter{IsFeatured: ptr(true), OwnerID: ptr("u"), Limit: ptr(3)}))
}

package rest

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/opulent-living/property-service/internal/adapter/rest/middleware"
	"github.com/opulent-living/property-service/internal/listing/domain"
	"github.com/opulent-living/property-service/internal/listing/usecase"
	"github.com/opulent-living/property-service/internal/platform/logger"
)

const bannerText = "Opulent Living API"

type Handler struct {
	listingUsecase *usecase.ListingUsecase
	maxUploadBytes int64
	logger         *logger.Logger
}

func NewHandler(uc *usecase.ListingUsecase, maxUploadBytes int64, log *logger.Logger) *Handler {
	return &Handler{listingUsecase: uc, maxUploadBytes: maxUploadBytes, logger: log}
}

func (h *Handler) Banner(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, bannerText)
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListListings(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r.URL.Query())
	if err != nil {
		writeError(w, h.logger, "Handler.ListListings", err)
		return
	}
	h.list(w, r, "Handler.ListListings", filter)
}

func (h *Handler) ListOwnerListings(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r.URL.Query())
	if err != nil {
		writeError(w, h.logger, "Handler.ListOwnerListings", err)
		return
	}
	ownerID := chi.URLParam(r, "ownerId")
	filter.OwnerID = &ownerID
	h.list(w, r, "Handler.ListOwnerListings", filter)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, op string, filter domain.Filter) {
	listings, err := h.listingUsecase.ListListings(r.Context(), filter)
	if err != nil {
		writeError(w, h.logger, op, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, listings)
}

func (h *Handler) GetListing(w http.ResponseWriter, r *http.Request) {
	listing, err := h.listingUsecase.GetListing(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, "Handler.GetListing", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, listing)
}

func (h *Handler) CreateListing(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, "Handler.CreateListing", domain.ErrUnauthorized)
		return
	}

	in, image, err := parseListingForm(w, r, h.maxUploadBytes)
	if errors.Is(err, errBodyTooLarge) {
		h.logger.Warn("Handler.CreateListing: upload exceeds limit", "user_id", userID, "limit_bytes", h.maxUploadBytes)
		writeJSON(w, h.logger, http.StatusRequestEntityTooLarge, errorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		writeError(w, h.logger, "Handler.CreateListing", err)
		return
	}

	listing, err := h.listingUsecase.CreateListing(r.Context(), userID, in, image)
	if err != nil {
		writeError(w, h.logger, "Handler.CreateListing", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, listing)
}

func (h *Handler) UpdateListing(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, "Handler.UpdateListing", domain.ErrUnauthorized)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxUploadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, h.logger, http.StatusRequestEntityTooLarge, errorResponse{Error: errBodyTooLarge.Error()})
			return
		}
		writeError(w, h.logger, "Handler.UpdateListing", domain.NewValidationError("", "request body could not be read"))
		return
	}

	listing, err := h.listingUsecase.UpdateListing(r.Context(), userID, chi.URLParam(r, "id"), body)
	if err != nil {
		writeError(w, h.logger, "Handler.UpdateListing", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, listing)
}

func (h *Handler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, "Handler.DeleteListing", domain.ErrUnauthorized)
		return
	}

	if err := h.listingUsecase.DeleteListing(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, "Handler.DeleteListing", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, messageResponse{Message: "Property deleted successfully"})
}

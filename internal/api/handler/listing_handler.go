package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arielspace/listing-board/internal/api/metrics"
	"github.com/arielspace/listing-board/internal/core/domain"
	"github.com/arielspace/listing-board/internal/core/ports"
)

// ListingHandler handles HTTP requests for listing operations.
type ListingHandler struct {
	service ports.ListingService
}

func NewListingHandler(service ports.ListingService) *ListingHandler {
	return &ListingHandler{service: service}
}

// List handles GET /listings.
//
// @Summary      List listings
// @Tags         listings
// @Produce      json
// @Param        q    query     string  false  "Case-insensitive match on title and short description"
// @Success      200  {object}  listingsEnvelope
// @Failure      500  {object}  map[string]string
// @Router       /listings [get]
func (h *ListingHandler) List(c echo.Context) error {
	items, err := h.service.List(c.Request().Context(), ports.ListingFilter{Query: c.QueryParam("q")})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listingsEnvelope{Listings: toListingsResponse(items)})
}

// Get handles GET /listings/:id.
//
// @Summary      Get a listing
// @Tags         listings
// @Produce      json
// @Param        id   path      string  true  "Listing id"
// @Success      200  {object}  listingEnvelope
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /listings/{id} [get]
func (h *ListingHandler) Get(c echo.Context) error {
	l, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listingEnvelope{Listing: toListingDetailResponse(l)})
}

// Create handles POST /listings.
//
// @Summary      Create a listing
// @Tags         listings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      listingRequest  true  "Listing"
// @Success      201   {object}  listingEnvelope
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /listings [post]
func (h *ListingHandler) Create(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	in, err := bindListing(c)
	if err != nil {
		metrics.ListingMutationsTotal.WithLabelValues("create", "invalid").Inc()
		return err
	}

	l, err := h.service.Create(c.Request().Context(), in, p.UserID)
	metrics.ListingMutationsTotal.WithLabelValues("create", mutationOutcome(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, listingEnvelope{Listing: toListingResponse(l)})
}

// Update handles PUT /listings/:id.
//
// @Summary      Update a listing
// @Tags         listings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Listing id"
// @Param        body  body      listingRequest  true  "Listing"
// @Success      200   {object}  listingEnvelope
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /listings/{id} [put]
func (h *ListingHandler) Update(c echo.Context) error {
	in, err := bindListing(c)
	if err != nil {
		metrics.ListingMutationsTotal.WithLabelValues("update", "invalid").Inc()
		return err
	}

	l, err := h.service.Update(c.Request().Context(), c.Param("id"), in)
	metrics.ListingMutationsTotal.WithLabelValues("update", mutationOutcome(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listingEnvelope{Listing: toListingResponse(l)})
}

// Delete handles DELETE /listings/:id.
//
// @Summary      Delete a listing
// @Tags         listings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Listing id"
// @Success      200  {object}  successResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /listings/{id} [delete]
func (h *ListingHandler) Delete(c echo.Context) error {
	err := h.service.Delete(c.Request().Context(), c.Param("id"))
	metrics.ListingMutationsTotal.WithLabelValues("delete", mutationOutcome(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, successResponse{Success: true})
}

// Stats handles GET /admin/stats.
//
// @Summary      Listing counters for the admin dashboard
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  statsResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /admin/stats [get]
func (h *ListingHandler) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	metrics.ListingsStored.Set(float64(stats.Total))
	return c.JSON(http.StatusOK, toStatsResponse(stats))
}

func bindListing(c echo.Context) (ports.ListingInput, error) {
	var req listingRequest
	if err := c.Bind(&req); err != nil {
		return ports.ListingInput{}, err
	}
	if err := c.Validate(&req); err != nil {
		return ports.ListingInput{}, err
	}
	return toListingInput(req)
}

func mutationOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrListingNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrCapacityReached):
		return "capacity"
	default:
		return "error"
	}
}

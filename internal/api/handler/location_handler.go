package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/morozkin/Point2Image/internal/core/domain"
)

// LocationSink is the ingestion side of the location capability.
type LocationSink interface {
	PublishFix(fix domain.LocationFix)
	ReportError(err error)
	SetAuthorization(status domain.AuthorizationStatus)
	CurrentAuthorization() domain.AuthorizationStatus
	Updating() bool
}

// LocationHandler accepts fixes, errors and authorization changes pushed by
// the walker's device.
type LocationHandler struct {
	sink LocationSink
	now  func() time.Time
}

func NewLocationHandler(sink LocationSink) *LocationHandler {
	return &LocationHandler{sink: sink, now: time.Now}
}

// PostFix handles POST /v1/locations.
//
// @Summary      Ingest a single location fix
// @Tags         locations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      locationFixRequest  true  "Location fix"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/locations [post]
func (h *LocationHandler) PostFix(c echo.Context) error {
	var req locationFixRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	h.sink.PublishFix(h.toFix(req))
	return c.JSON(http.StatusAccepted, acceptedResponse{
		Message:  "fix accepted",
		Updating: h.sink.Updating(),
	})
}

// PostBatch handles POST /v1/locations/batch. Fixes are published in order.
//
// @Summary      Ingest a batch of location fixes
// @Tags         locations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      locationBatchRequest  true  "Fixes, oldest first"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/locations/batch [post]
func (h *LocationHandler) PostBatch(c echo.Context) error {
	var req locationBatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	for _, fix := range req.Fixes {
		h.sink.PublishFix(h.toFix(fix))
	}
	return c.JSON(http.StatusAccepted, acceptedResponse{
		Message:  "fixes accepted",
		Count:    len(req.Fixes),
		Updating: h.sink.Updating(),
	})
}

// PostError handles POST /v1/locations/errors.
//
// @Summary      Report a location error
// @Description  permission_denied ends the running session; other kinds are logged.
// @Tags         locations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      locationErrorRequest  true  "Error report"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/locations/errors [post]
func (h *LocationHandler) PostError(c echo.Context) error {
	var req locationErrorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	h.sink.ReportError(toLocationError(req))
	return c.JSON(http.StatusAccepted, acceptedResponse{
		Message:  "error accepted",
		Updating: h.sink.Updating(),
	})
}

// GetAuthorization handles GET /v1/authorization.
//
// @Summary      Current location authorization
// @Tags         locations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  authorizationResponse
// @Router       /v1/authorization [get]
func (h *LocationHandler) GetAuthorization(c echo.Context) error {
	return c.JSON(http.StatusOK, authorizationResponse{Status: string(h.sink.CurrentAuthorization())})
}

// PutAuthorization handles PUT /v1/authorization.
//
// @Summary      Set location authorization
// @Description  Accepts not_determined, authorized, authorized_always, authorized_when_in_use, denied or restricted.
// @Tags         locations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      authorizationRequest  true  "Authorization status"
// @Success      200   {object}  authorizationResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/authorization [put]
func (h *LocationHandler) PutAuthorization(c echo.Context) error {
	var req authorizationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	status, err := domain.ParseAuthorizationStatus(req.Status)
	if err != nil {
		return err
	}
	h.sink.SetAuthorization(status)
	return c.JSON(http.StatusOK, authorizationResponse{Status: string(h.sink.CurrentAuthorization())})
}

func (h *LocationHandler) toFix(r locationFixRequest) domain.LocationFix {
	ts := h.now()
	if r.Timestamp != nil {
		ts = *r.Timestamp
	}
	return domain.LocationFix{Latitude: *r.Latitude, Longitude: *r.Longitude, Timestamp: ts}
}

func toLocationError(r locationErrorRequest) error {
	var base error
	switch r.Kind {
	case errorKindPermissionDenied:
		base = domain.ErrPermissionRevoked
	case errorKindLocationUnknown:
		base = domain.ErrLocationUnknown
	default:
		if r.Message == "" {
			return errors.New("device error")
		}
		return errors.New(r.Message)
	}
	if r.Message == "" {
		return base
	}
	return fmt.Errorf("%s: %w", r.Message, base)
}

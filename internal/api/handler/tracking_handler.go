package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/morozkin/Point2Image/internal/api/stream"
	"github.com/morozkin/Point2Image/internal/core/ports"
)

// StateStreamer serves a websocket of state changes.
type StateStreamer interface {
	Serve(w http.ResponseWriter, r *http.Request) error
}

// TrackingHandler exposes the walk feed.
type TrackingHandler struct {
	service  ports.TrackingService
	streamer StateStreamer
}

func NewTrackingHandler(service ports.TrackingService, streamer StateStreamer) *TrackingHandler {
	return &TrackingHandler{service: service, streamer: streamer}
}

// Get handles GET /v1/tracking.
//
// @Summary      Current walk feed state
// @Tags         tracking
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  stream.StateView
// @Failure      401  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /v1/tracking [get]
func (h *TrackingHandler) Get(c echo.Context) error {
	return h.respondState(c)
}

// Start handles POST /v1/tracking/start.
//
// @Summary      Start recording a walk
// @Description  Requests location permission if needed. A no-op while already recording.
// @Tags         tracking
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  stream.StateView
// @Failure      401  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /v1/tracking/start [post]
func (h *TrackingHandler) Start(c echo.Context) error {
	if err := h.service.Start(c.Request().Context()); err != nil {
		return err
	}
	return h.respondState(c)
}

// Stop handles POST /v1/tracking/stop.
//
// @Summary      Stop recording
// @Description  The feed keeps its distance and photos.
// @Tags         tracking
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  stream.StateView
// @Failure      401  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /v1/tracking/stop [post]
func (h *TrackingHandler) Stop(c echo.Context) error {
	if err := h.service.Stop(c.Request().Context()); err != nil {
		return err
	}
	return h.respondState(c)
}

// Stream handles GET /v1/tracking/stream.
//
// @Summary      Websocket of state changes
// @Description  The current state is sent first, then every change.
// @Tags         tracking
// @Security     BearerAuth
// @Success      101
// @Router       /v1/tracking/stream [get]
func (h *TrackingHandler) Stream(c echo.Context) error {
	return h.streamer.Serve(c.Response(), c.Request())
}

func (h *TrackingHandler) respondState(c echo.Context) error {
	state, err := h.service.State(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stream.NewStateView(state))
}

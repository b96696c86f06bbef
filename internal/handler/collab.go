package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"projectly/internal/model"
	"projectly/internal/service"
)

// CollabHandler serves project events and communications.
type CollabHandler struct{ svc *service.CollabService }

func NewCollabHandler(svc *service.CollabService) *CollabHandler { return &CollabHandler{svc: svc} }

// GET /projects/:id/events/
func (h *CollabHandler) ListEvents(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	events, err := h.svc.ListEvents(c.Request.Context(), caller(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Render(events, model.NewEventResponse))
}

// POST /projects/:id/events/
func (h *CollabHandler) CreateEvent(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req model.EventRequest
	if !bindJSON(c, &req) {
		return
	}
	e, err := h.svc.CreateEvent(c.Request.Context(), caller(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model.NewEventResponse(*e))
}

// GET /projects/:id/communications/
func (h *CollabHandler) ListCommunications(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	msgs, err := h.svc.ListCommunications(c.Request.Context(), caller(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Render(msgs, model.NewCommunicationResponse))
}

// POST /projects/:id/communications/
func (h *CollabHandler) CreateCommunication(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req model.CommunicationRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.svc.CreateCommunication(c.Request.Context(), caller(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model.NewCommunicationResponse(*m))
}

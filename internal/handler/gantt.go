package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"projectly/internal/model"
	"projectly/internal/service"
)

type GanttHandler struct{ svc *service.GanttService }

func NewGanttHandler(svc *service.GanttService) *GanttHandler { return &GanttHandler{svc: svc} }

// GET /projects/:id/gantt-chart/
func (h *GanttHandler) Chart(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	g, err := h.svc.Chart(c.Request.Context(), caller(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewGanttChartResponse(*g))
}

// GET /projects/:id/gantt-tasks/
func (h *GanttHandler) ListTasks(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	tasks, err := h.svc.ListTasks(c.Request.Context(), caller(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Render(tasks, model.NewGanttTaskResponse))
}

// POST /projects/:id/gantt-tasks/
func (h *GanttHandler) CreateTask(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req model.GanttTaskRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.svc.CreateTask(c.Request.Context(), caller(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model.NewGanttTaskResponse(*t))
}

// GET /gantt-tasks/:id/
func (h *GanttHandler) GetTask(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	t, err := h.svc.GetTask(c.Request.Context(), caller(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewGanttTaskResponse(*t))
}

// PUT /gantt-tasks/:id/
func (h *GanttHandler) UpdateTask(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req model.GanttTaskRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.svc.UpdateTask(c.Request.Context(), caller(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewGanttTaskResponse(*t))
}

// DELETE /gantt-tasks/:id/
func (h *GanttHandler) DeleteTask(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteTask(c.Request.Context(), caller(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

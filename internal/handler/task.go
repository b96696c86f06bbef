package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"projectly/internal/model"
	"projectly/internal/service"
)

type TaskHandler struct{ svc *service.TaskService }

func NewTaskHandler(svc *service.TaskService) *TaskHandler { return &TaskHandler{svc: svc} }

// GET /tasks/?project=&status=&assigned_to=
func (h *TaskHandler) List(c *gin.Context) {
	project, ok := queryUint(c, "project")
	if !ok {
		return
	}
	assignee, ok := queryUint(c, "assigned_to")
	if !ok {
		return
	}
	tasks, err := h.svc.List(c.Request.Context(), caller(c), model.TaskFilter{
		Project:    project,
		Status:     c.Query("status"),
		AssignedTo: assignee,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Render(tasks, model.NewTaskResponse))
}

// POST /tasks/
func (h *TaskHandler) Create(c *gin.Context) {
	var req model.TaskRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.svc.Create(c.Request.Context(), caller(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model.NewTaskResponse(*t))
}

// GET /tasks/:id/
func (h *TaskHandler) Get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	t, err := h.svc.Get(c.Request.Context(), caller(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewTaskResponse(*t))
}

// PUT, PATCH /tasks/:id/
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req model.TaskRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.svc.Update(c.Request.Context(), caller(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewTaskResponse(*t))
}

// DELETE /tasks/:id/
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), caller(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /tasks/:id/subtasks/
func (h *TaskHandler) ListSubTasks(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	subs, err := h.svc.ListSubTasks(c.Request.Context(), caller(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Render(subs, model.NewSubTaskResponse))
}

// POST /tasks/:id/subtasks/
func (h *TaskHandler) CreateSubTask(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req model.SubTaskRequest
	if !bindJSON(c, &req) {
		return
	}
	sub, err := h.svc.CreateSubTask(c.Request.Context(), caller(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model.NewSubTaskResponse(*sub))
}

// PUT, PATCH /subtasks/:id/
func (h *TaskHandler) UpdateSubTask(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req model.SubTaskRequest
	if !bindJSON(c, &req) {
		return
	}
	sub, err := h.svc.UpdateSubTask(c.Request.Context(), caller(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSubTaskResponse(*sub))
}

// DELETE /subtasks/:id/
func (h *TaskHandler) DeleteSubTask(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteSubTask(c.Request.Context(), caller(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"projectly/internal/logger"
	"projectly/internal/model"
	"projectly/internal/service"
)

type PermissionHandler struct{ svc *service.PermissionService }

func NewPermissionHandler(svc *service.PermissionService) *PermissionHandler {
	return &PermissionHandler{svc: svc}
}

// GET /access-permissions/?project_id=
func (h *PermissionHandler) List(c *gin.Context) {
	project, ok := queryUint(c, "project_id")
	if !ok {
		return
	}
	perms, err := h.svc.List(c.Request.Context(), caller(c), project)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Render(perms, model.NewAccessPermissionResponse))
}

// POST /access-permissions/
func (h *PermissionHandler) Grant(c *gin.Context) {
	var req model.AccessPermissionRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.svc.Grant(c.Request.Context(), caller(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	logger.Info("permission.grant", "user", req.User, "project", req.Project, "permission", req.Permission)
	c.JSON(http.StatusCreated, model.NewAccessPermissionResponse(*p))
}

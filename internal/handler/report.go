package handler

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"projectly/internal/logger"
	"projectly/internal/model"
	"projectly/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	svc *service.ReportService
	url model.URLFunc
}

func NewReportHandler(svc *service.ReportService, url model.URLFunc) *ReportHandler {
	return &ReportHandler{svc: svc, url: url}
}

func (h *ReportHandler) render(r model.Report) model.ReportResponse {
	return model.NewReportResponse(r, h.url)
}

// GET /reports/
func (h *ReportHandler) List(c *gin.Context) {
	reports, err := h.svc.List(c.Request.Context(), caller(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Render(reports, h.render))
}

// POST /reports/
func (h *ReportHandler) Create(c *gin.Context) {
	h.create(c, nil)
}

// GET /projects/:id/reports/
func (h *ReportHandler) ProjectList(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	reports, err := h.svc.ListForProject(c.Request.Context(), caller(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Render(reports, h.render))
}

// POST /projects/:id/reports/
func (h *ReportHandler) ProjectCreate(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	h.create(c, &id)
}

func (h *ReportHandler) create(c *gin.Context, projectID *uint) {
	var req model.ReportRequest
	if !bindJSON(c, &req) {
		return
	}
	r, err := h.svc.Create(c.Request.Context(), caller(c), projectID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	logger.Info("report.create", "id", r.ID, "uid", r.CreatedByID)
	c.JSON(http.StatusCreated, h.render(*r))
}

// GET /reports/:id/
func (h *ReportHandler) Get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	r, err := h.svc.Get(c.Request.Context(), caller(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.render(*r))
}

// PUT, PATCH /reports/:id/
func (h *ReportHandler) Update(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req model.ReportRequest
	if !bindJSON(c, &req) {
		return
	}
	r, err := h.svc.Update(c.Request.Context(), caller(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.render(*r))
}

// DELETE /reports/:id/
func (h *ReportHandler) Delete(c *gin.Context) {
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

// POST /reports/:id/files/
func (h *ReportHandler) AddFile(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		noFile(c, "file")
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	rf, err := h.svc.AddFile(c.Request.Context(), caller(c), id, service.Upload{Filename: fh.Filename, Reader: f})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model.NewReportFileResponse(*rf, h.url))
}

// GET /reports/export/
func (h *ReportHandler) Export(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.svc.Export(c.Request.Context(), caller(c), &buf); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="reports.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

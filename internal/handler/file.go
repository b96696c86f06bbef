package handler

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"

	"projectly/internal/middleware"
	"projectly/internal/model"
	"projectly/internal/service"
)

// quickUploadFields are the form fields read by POST /upload-files/.
var quickUploadFields = []string{"file_1", "file_2", "file_3"}

type FileHandler struct {
	files *service.FileService
	auth  *service.AuthService
	url   model.URLFunc
}

func NewFileHandler(files *service.FileService, auth *service.AuthService, url model.URLFunc) *FileHandler {
	return &FileHandler{files: files, auth: auth, url: url}
}

func (h *FileHandler) renderShare(f model.FileShare) model.FileShareResponse {
	return model.NewFileShareResponse(f, h.url)
}

// GET /projects/:id/attachments/
func (h *FileHandler) ListAttachments(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	items, err := h.files.ListAttachments(c.Request.Context(), caller(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Render(items, func(a model.Attachment) model.AttachmentResponse {
		return model.NewAttachmentResponse(a, h.url)
	}))
}

// POST /projects/:id/attachments/
func (h *FileHandler) CreateAttachment(c *gin.Context) {
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

	a, err := h.files.CreateAttachment(c.Request.Context(), caller(c), id,
		service.Upload{Filename: fh.Filename, Reader: f}, c.PostForm("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model.NewAttachmentResponse(*a, h.url))
}

// GET /files/ and /files/share/?project_id=
func (h *FileHandler) ListShares(c *gin.Context) {
	project, ok := queryUint(c, "project_id")
	if !ok {
		return
	}
	shares, err := h.files.ListShares(c.Request.Context(), caller(c), project)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Render(shares, h.renderShare))
}

// POST /files/share/
func (h *FileHandler) Share(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		noFile(c, "files")
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		headers = form.File["file"]
	}
	if len(headers) == 0 {
		noFile(c, "files")
		return
	}

	req, verr := shareRequest(form)
	if verr != nil {
		respondError(c, verr)
		return
	}

	uploads, closeAll, err := openUploads(headers)
	if err != nil {
		respondError(c, err)
		return
	}
	defer closeAll()

	shares, err := h.files.Share(c.Request.Context(), caller(c), req, uploads)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model.Render(shares, h.renderShare))
}

// shareRequest reads project, shared_with and description from the form.
// shared_with may repeat or hold comma-separated IDs.
func shareRequest(form *multipart.Form) (model.ShareRequest, error) {
	v := &service.ValidationError{}
	req := model.ShareRequest{Description: first(form.Value["description"])}

	if raw := strings.TrimSpace(first(form.Value["project"])); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			v.Add("project", "Incorrect type. Expected pk value.")
		} else {
			p := uint(id)
			req.Project = &p
		}
	}
	for _, value := range form.Value["shared_with"] {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseUint(part, 10, 64)
			if err != nil {
				v.Add("shared_with", fmt.Sprintf("Incorrect type. Expected pk value, received %q.", part))
				continue
			}
			req.SharedWith = append(req.SharedWith, uint(id))
		}
	}
	return req, v.OrNil()
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// POST /upload-files/
func (h *FileHandler) QuickUpload(c *gin.Context) {
	var headers []*multipart.FileHeader
	for _, field := range quickUploadFields {
		if fh, err := c.FormFile(field); err == nil {
			headers = append(headers, fh)
		}
	}
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files were uploaded."})
		return
	}

	uploader, ok := middleware.UserID(c)
	if !ok {
		u, err := h.auth.FirstUser(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		uploader = u.ID
	}

	uploads, closeAll, err := openUploads(headers)
	if err != nil {
		respondError(c, err)
		return
	}
	defer closeAll()

	stored, err := h.files.QuickUpload(c.Request.Context(), uploader, uploads)
	if err != nil {
		respondError(c, err)
		return
	}
	files := make([]gin.H, 0, len(stored))
	for _, f := range stored {
		files = append(files, gin.H{
			"id":         f.ID,
			"name":       f.Name,
			"size":       f.Size,
			"size_human": humanize.Bytes(uint64(f.Size)),
			"url":        h.url(f.File),
		})
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "files": files})
}

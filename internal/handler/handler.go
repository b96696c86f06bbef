package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"projectly/internal/logger"
	"projectly/internal/middleware"
	"projectly/internal/service"
)

var registerTagNames sync.Once

// useJSONFieldNames makes validator report fields by their json tag, so
// binding errors line up with request bodies.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(func(f reflect.StructField) string {
				name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
				if name == "-" {
					return ""
				}
				return name
			})
		}
	})
}

func respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, verr.Fields)
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"non_field_errors": []string{"Invalid credentials"}})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to perform this action."})
	case errors.Is(err, service.ErrProvider):
		logger.Warn("social.provider_error", "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid token or provider error"})
	case errors.Is(err, service.ErrNoProviderEmail):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email not provided by the provider"})
	default:
		logger.Error("request.failed", "method", c.Request.Method, "path", c.Request.URL.Path, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// bindJSON decodes the body into dst and writes the 400 response itself
// when that fails. An empty body counts as {}.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(dst)
	}
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &verrs):
		fields := map[string][]string{}
		for _, fe := range verrs {
			fields[fe.Field()] = append(fields[fe.Field()], validationMessage(fe))
		}
		c.JSON(http.StatusBadRequest, fields)
	case errors.As(err, &typeErr) && typeErr.Field != "":
		c.JSON(http.StatusBadRequest, gin.H{typeErr.Field: []string{"Incorrect type."}})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
	}
	return false
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	}
	return "Invalid value."
}

// paramID reads a numeric path parameter; anything else is a 404 since
// the route would not have matched.
func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return 0, false
	}
	return uint(id), true
}

// queryUint reads an optional numeric query parameter.
func queryUint(c *gin.Context, key string) (*uint, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{key: []string{"A valid integer is required."}})
		return nil, false
	}
	id := uint(v)
	return &id, true
}

func caller(c *gin.Context) service.Caller {
	uid, _ := middleware.UserID(c)
	return service.Caller{UserID: uid, Email: middleware.UserEmail(c)}
}

// openUploads opens every multipart file header. The returned closer
// releases them all.
func openUploads(headers []*multipart.FileHeader) ([]service.Upload, func(), error) {
	var files []multipart.File
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}
	uploads := make([]service.Upload, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		files = append(files, f)
		uploads = append(uploads, service.Upload{Filename: h.Filename, Reader: f})
	}
	return uploads, closeAll, nil
}

func noFile(c *gin.Context, field string) {
	c.JSON(http.StatusBadRequest, gin.H{field: []string{"No file was submitted."}})
}

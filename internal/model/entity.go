package model

import (
	"bytes"
	"encoding/json"
)

// Optional records whether a JSON key was present at all, so that
// `"assigned_to": null` (clear) differs from an omitted key (keep).
type Optional[T any] struct {
	Set   bool
	Value *T
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// Some returns a set Optional holding v.
func Some[T any](v T) Optional[T] { return Optional[T]{Set: true, Value: &v} }

// Null returns a set Optional holding JSON null.
func Null[T any]() Optional[T] { return Optional[T]{Set: true} }

type RegisterRequest struct {
	Email                string `json:"email"`
	Password             string `json:"password"`
	ConfirmPassword      string `json:"confirm_password"`
	ConfirmPasswordCamel string `json:"confirmPassword"`
	Name                 string `json:"name"`
	Role                 string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SocialAuthRequest struct {
	Provider    string `json:"provider" binding:"required"`
	AccessToken string `json:"access_token" binding:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

type RoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type TokenPair struct {
	Email   string `json:"email"`
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type ProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Members     *[]uint `json:"members"`
}

type BoardRequest struct {
	Name *string `json:"name"`
}

type BoardListRequest struct {
	Name     *string `json:"name"`
	Position *int    `json:"position"`
}

type CardRequest struct {
	List        *uint            `json:"list"`
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Position    *int             `json:"position"`
	DueDate     Optional[string] `json:"due_date"`
}

type EventRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
}

type CommunicationRequest struct {
	Subject    string `json:"subject" binding:"required"`
	Message    string `json:"message" binding:"required"`
	Recipients []uint `json:"recipients"`
}

type TaskRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Status      *string          `json:"status"`
	AssignedTo  Optional[uint]   `json:"assigned_to"`
	DueDate     Optional[string] `json:"due_date"`
	Project     Optional[uint]   `json:"project"`
}

type TaskFilter struct {
	Project    *uint
	Status     string
	AssignedTo *uint
}

type SubTaskRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	AssignedTo  Optional[uint]   `json:"assigned_to"`
	DueDate     Optional[string] `json:"due_date"`
	Completed   *bool            `json:"completed"`
}

type GanttTaskRequest struct {
	Name         *string `json:"name"`
	StartDate    *string `json:"start_date"`
	EndDate      *string `json:"end_date"`
	Progress     *int    `json:"progress"`
	Dependencies *[]uint `json:"dependencies"`
}

type ReportRequest struct {
	Title      *string        `json:"title"`
	ReportType *string        `json:"report_type"`
	Project    Optional[uint] `json:"project"`
	SharedWith *[]uint        `json:"shared_with"`
}

type AccessPermissionRequest struct {
	User       uint   `json:"user" binding:"required"`
	Project    uint   `json:"project" binding:"required"`
	Permission string `json:"permission" binding:"required"`
}

// ShareRequest carries the non-file fields of a multipart share upload.
type ShareRequest struct {
	Project     *uint
	SharedWith  []uint
	Description string
}

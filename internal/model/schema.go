package model

import (
	"time"

	"gorm.io/datatypes"
)

// Response schemas. Each entity is rendered through an explicit struct so
// password hashes and other internal columns never reach the wire.

const DateLayout = "2006-01-02"

// URLFunc maps a stored file path to the URL clients download it from.
type URLFunc func(path string) string

type UserResponse struct {
	ID              uint      `json:"id"`
	Email           string    `json:"email"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Name            string    `json:"name"`
	IsEmailVerified bool      `json:"is_email_verified"`
	Role            string    `json:"role"`
	DateJoined      time.Time `json:"date_joined"`
}

func NewUserResponse(u User) UserResponse {
	r := UserResponse{
		ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName,
		Name: u.FullName(), IsEmailVerified: u.IsEmailVerified, DateJoined: u.DateJoined,
	}
	if u.Profile != nil {
		r.Role = u.Profile.Role
	}
	return r
}

type ProjectResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedBy   uint      `json:"created_by"`
	Members     []uint    `json:"members"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewProjectResponse(p Project) ProjectResponse {
	return ProjectResponse{
		ID: p.ID, Name: p.Name, Description: p.Description, CreatedBy: p.CreatedByID,
		Members: userIDs(p.Members), CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
	}
}

type BoardResponse struct {
	ID      uint   `json:"id"`
	Project uint   `json:"project"`
	Name    string `json:"name"`
}

func NewBoardResponse(b Board) BoardResponse {
	return BoardResponse{ID: b.ID, Project: b.ProjectID, Name: b.Name}
}

type BoardListResponse struct {
	ID       uint           `json:"id"`
	Board    uint           `json:"board"`
	Name     string         `json:"name"`
	Position int            `json:"position"`
	Cards    []CardResponse `json:"cards,omitempty"`
}

func NewBoardListResponse(l BoardList) BoardListResponse {
	return BoardListResponse{ID: l.ID, Board: l.BoardID, Name: l.Name, Position: l.Position}
}

// NewBoardListWithCards renders a list together with its cards, always
// emitting the cards key.
func NewBoardListWithCards(l BoardList) map[string]any {
	cards := make([]CardResponse, 0, len(l.Cards))
	for _, c := range l.Cards {
		cards = append(cards, NewCardResponse(c))
	}
	return map[string]any{
		"id": l.ID, "board": l.BoardID, "name": l.Name, "position": l.Position, "cards": cards,
	}
}

type CardResponse struct {
	ID          uint       `json:"id"`
	List        uint       `json:"list"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Position    int        `json:"position"`
	CreatedBy   uint       `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	DueDate     *time.Time `json:"due_date"`
}

func NewCardResponse(c Card) CardResponse {
	return CardResponse{
		ID: c.ID, List: c.ListID, Title: c.Title, Description: c.Description, Position: c.Position,
		CreatedBy: c.CreatedByID, CreatedAt: c.CreatedAt, DueDate: c.DueDate,
	}
}

type AttachmentResponse struct {
	ID          uint      `json:"id"`
	Project     uint      `json:"project"`
	File        string    `json:"file"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedBy  uint      `json:"uploaded_by"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

func NewAttachmentResponse(a Attachment, url URLFunc) AttachmentResponse {
	return AttachmentResponse{
		ID: a.ID, Project: a.ProjectID, File: url(a.File), Name: a.Name, ContentType: a.ContentType,
		Size: a.Size, UploadedBy: a.UploadedByID, UploadedAt: a.UploadedAt,
	}
}

type EventResponse struct {
	ID          uint      `json:"id"`
	Project     uint      `json:"project"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	CreatedBy   uint      `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewEventResponse(e Event) EventResponse {
	return EventResponse{
		ID: e.ID, Project: e.ProjectID, Title: e.Title, Description: e.Description,
		StartDate: e.StartDate, EndDate: e.EndDate, CreatedBy: e.CreatedByID, CreatedAt: e.CreatedAt,
	}
}

type CommunicationResponse struct {
	ID              uint      `json:"id"`
	Project         uint      `json:"project"`
	Subject         string    `json:"subject"`
	Message         string    `json:"message"`
	Sender          uint      `json:"sender"`
	SenderEmail     string    `json:"sender_email"`
	Recipients      []uint    `json:"recipients"`
	RecipientEmails []string  `json:"recipient_emails"`
	SentAt          time.Time `json:"sent_at"`
}

func NewCommunicationResponse(m Communication) CommunicationResponse {
	return CommunicationResponse{
		ID: m.ID, Project: m.ProjectID, Subject: m.Subject, Message: m.Message,
		Sender: m.SenderID, SenderEmail: m.Sender.Email,
		Recipients: userIDs(m.Recipients), RecipientEmails: userEmails(m.Recipients), SentAt: m.SentAt,
	}
}

type TaskResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	AssignedTo  *uint     `json:"assigned_to"`
	DueDate     *string   `json:"due_date"`
	Project     *uint     `json:"project"`
	CreatedBy   uint      `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewTaskResponse(t Task) TaskResponse {
	return TaskResponse{
		ID: t.ID, Title: t.Title, Description: t.Description, Status: t.Status,
		AssignedTo: t.AssignedToID, DueDate: formatDate(t.DueDate), Project: t.ProjectID,
		CreatedBy: t.CreatedByID, CreatedAt: t.CreatedAt,
	}
}

type SubTaskResponse struct {
	ID              uint      `json:"id"`
	ParentTask      uint      `json:"parent_task"`
	ParentTaskTitle string    `json:"parent_task_title"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	AssignedTo      *uint     `json:"assigned_to"`
	AssignedToEmail *string   `json:"assigned_to_email"`
	DueDate         *string   `json:"due_date"`
	Completed       bool      `json:"completed"`
	CreatedAt       time.Time `json:"created_at"`
}

func NewSubTaskResponse(s SubTask) SubTaskResponse {
	r := SubTaskResponse{
		ID: s.ID, ParentTask: s.ParentTaskID, ParentTaskTitle: s.ParentTask.Title,
		Title: s.Title, Description: s.Description, AssignedTo: s.AssignedToID,
		DueDate: formatDate(s.DueDate), Completed: s.Completed, CreatedAt: s.CreatedAt,
	}
	if s.AssignedTo != nil {
		r.AssignedToEmail = &s.AssignedTo.Email
	}
	return r
}

type NotificationResponse struct {
	ID                 uint      `json:"id"`
	User               uint      `json:"user"`
	NotificationType   string    `json:"notification_type"`
	Message            string    `json:"message"`
	RelatedTask        *uint     `json:"related_task"`
	RelatedTaskTitle   *string   `json:"related_task_title"`
	RelatedProject     *uint     `json:"related_project"`
	RelatedProjectName *string   `json:"related_project_name"`
	IsRead             bool      `json:"is_read"`
	CreatedAt          time.Time `json:"created_at"`
}

func NewNotificationResponse(n Notification) NotificationResponse {
	r := NotificationResponse{
		ID: n.ID, User: n.UserID, NotificationType: n.NotificationType, Message: n.Message,
		RelatedTask: n.RelatedTaskID, RelatedProject: n.RelatedProjectID,
		IsRead: n.IsRead, CreatedAt: n.CreatedAt,
	}
	if n.RelatedTask != nil {
		r.RelatedTaskTitle = &n.RelatedTask.Title
	}
	if n.RelatedProject != nil {
		r.RelatedProjectName = &n.RelatedProject.Name
	}
	return r
}

type GanttChartResponse struct {
	ID        uint      `json:"id"`
	Project   uint      `json:"project"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewGanttChartResponse(g GanttChart) GanttChartResponse {
	return GanttChartResponse{ID: g.ID, Project: g.ProjectID, CreatedAt: g.CreatedAt, UpdatedAt: g.UpdatedAt}
}

type GanttTaskResponse struct {
	ID           uint      `json:"id"`
	GanttChart   uint      `json:"gantt_chart"`
	Name         string    `json:"name"`
	StartDate    string    `json:"start_date"`
	EndDate      string    `json:"end_date"`
	Progress     int       `json:"progress"`
	Dependencies []uint    `json:"dependencies"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewGanttTaskResponse(g GanttTask) GanttTaskResponse {
	deps := make([]uint, 0, len(g.Dependencies))
	for _, d := range g.Dependencies {
		deps = append(deps, d.ID)
	}
	return GanttTaskResponse{
		ID: g.ID, GanttChart: g.GanttChartID, Name: g.Name,
		StartDate: time.Time(g.StartDate).Format(DateLayout), EndDate: time.Time(g.EndDate).Format(DateLayout),
		Progress: g.Progress, Dependencies: deps, CreatedAt: g.CreatedAt,
	}
}

type ReportFileResponse struct {
	ID          uint      `json:"id"`
	File        string    `json:"file"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

func NewReportFileResponse(f ReportFile, url URLFunc) ReportFileResponse {
	return ReportFileResponse{ID: f.ID, File: url(f.File), ContentType: f.ContentType, Size: f.Size, UploadedAt: f.UploadedAt}
}

type ReportResponse struct {
	ID               uint                 `json:"id"`
	Title            string               `json:"title"`
	ReportType       string               `json:"report_type"`
	CreatedBy        uint                 `json:"created_by"`
	CreatedByEmail   string               `json:"created_by_email"`
	CreatedAt        time.Time            `json:"created_at"`
	SharedWith       []uint               `json:"shared_with"`
	SharedWithEmails []string             `json:"shared_with_emails"`
	Project          *uint                `json:"project"`
	Files            []ReportFileResponse `json:"files"`
}

func NewReportResponse(r Report, url URLFunc) ReportResponse {
	files := make([]ReportFileResponse, 0, len(r.Files))
	for _, f := range r.Files {
		files = append(files, NewReportFileResponse(f, url))
	}
	return ReportResponse{
		ID: r.ID, Title: r.Title, ReportType: r.ReportType,
		CreatedBy: r.CreatedByID, CreatedByEmail: r.CreatedBy.Email, CreatedAt: r.CreatedAt,
		SharedWith: userIDs(r.SharedWith), SharedWithEmails: userEmails(r.SharedWith),
		Project: r.ProjectID, Files: files,
	}
}

type FileShareResponse struct {
	ID               uint      `json:"id"`
	File             string    `json:"file"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	ContentType      string    `json:"content_type"`
	Size             int64     `json:"size"`
	UploadedBy       uint      `json:"uploaded_by"`
	UploadedByEmail  string    `json:"uploaded_by_email"`
	UploadedAt       time.Time `json:"uploaded_at"`
	SharedWith       []uint    `json:"shared_with"`
	SharedWithEmails []string  `json:"shared_with_emails"`
	Project          *uint     `json:"project"`
	ProjectName      *string   `json:"project_name"`
}

func NewFileShareResponse(f FileShare, url URLFunc) FileShareResponse {
	r := FileShareResponse{
		ID: f.ID, File: url(f.File), Name: f.Name, Description: f.Description,
		ContentType: f.ContentType, Size: f.Size,
		UploadedBy: f.UploadedByID, UploadedByEmail: f.UploadedBy.Email, UploadedAt: f.UploadedAt,
		SharedWith: userIDs(f.SharedWith), SharedWithEmails: userEmails(f.SharedWith),
		Project: f.ProjectID,
	}
	if f.Project != nil {
		r.ProjectName = &f.Project.Name
	}
	return r
}

type AccessPermissionResponse struct {
	ID             uint      `json:"id"`
	User           uint      `json:"user"`
	UserEmail      string    `json:"user_email"`
	Project        uint      `json:"project"`
	ProjectName    string    `json:"project_name"`
	Permission     string    `json:"permission"`
	GrantedBy      uint      `json:"granted_by"`
	GrantedByEmail string    `json:"granted_by_email"`
	GrantedAt      time.Time `json:"granted_at"`
}

func NewAccessPermissionResponse(p AccessPermission) AccessPermissionResponse {
	return AccessPermissionResponse{
		ID: p.ID, User: p.UserID, UserEmail: p.User.Email,
		Project: p.ProjectID, ProjectName: p.Project.Name, Permission: p.Permission,
		GrantedBy: p.GrantedByID, GrantedByEmail: p.GrantedBy.Email, GrantedAt: p.GrantedAt,
	}
}

// Render maps a slice of entities through fn, never returning nil so
// empty collections encode as [] rather than null.
func Render[T, R any](items []T, fn func(T) R) []R {
	out := make([]R, 0, len(items))
	for _, it := range items {
		out = append(out, fn(it))
	}
	return out
}

func formatDate(d *datatypes.Date) *string {
	if d == nil {
		return nil
	}
	s := time.Time(*d).Format(DateLayout)
	return &s
}

func userIDs(users []User) []uint {
	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}

func userEmails(users []User) []string {
	emails := make([]string, 0, len(users))
	for _, u := range users {
		emails = append(emails, u.Email)
	}
	return emails
}

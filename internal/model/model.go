package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	RoleHead            = "head"
	RoleProgramManager  = "program_manager"
	RoleCommitteeMember = "committee_member"
)

const (
	ProviderGoogle    = "google"
	ProviderApple     = "apple"
	ProviderMicrosoft = "microsoft"
)

const (
	TaskToDo       = "to_do"
	TaskInProgress = "in_progress"
	TaskDone       = "done"
)

const (
	NotifyTaskAssigned = "task_assigned"
	NotifyTaskDue      = "task_due"
	NotifyMention      = "mention"
	NotifyUpdate       = "update"
)

const (
	ReportProgress  = "progress"
	ReportFinancial = "financial"
	ReportSummary   = "summary"
	ReportStandard  = "standard"
)

const (
	PermissionView  = "view"
	PermissionEdit  = "edit"
	PermissionAdmin = "admin"
)

type User struct {
	ID              uint      `gorm:"primaryKey"`
	Email           string    `gorm:"size:254;uniqueIndex;not null"`
	Password        string    `gorm:"size:128"`
	FirstName       string    `gorm:"size:150"`
	LastName        string    `gorm:"size:150"`
	IsEmailVerified bool      `gorm:"not null"`
	IsStaff         bool      `gorm:"not null"`
	IsSuperuser     bool      `gorm:"not null"`
	DateJoined      time.Time `gorm:"autoCreateTime"`
	Profile         *Profile  `gorm:"constraint:OnDelete:CASCADE"`
}

// FullName joins first and last name the way they were split on registration.
func (u User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

type Profile struct {
	ID     uint   `gorm:"primaryKey"`
	UserID uint   `gorm:"uniqueIndex;not null"`
	Role   string `gorm:"size:20"`
}

type SocialAccount struct {
	ID         uint   `gorm:"primaryKey"`
	UserID     uint   `gorm:"not null;index"`
	User       User   `gorm:"constraint:OnDelete:CASCADE"`
	Provider   string `gorm:"size:50;not null;uniqueIndex:uk_provider_subject"`
	ProviderID string `gorm:"size:255;not null;uniqueIndex:uk_provider_subject"`
	CreatedAt  time.Time
}

type Project struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:255;not null"`
	Description string `gorm:"type:text"`
	CreatedByID uint   `gorm:"not null;index"`
	CreatedBy   User   `gorm:"constraint:OnDelete:CASCADE"`
	Members     []User `gorm:"many2many:project_members;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Board struct {
	ID        uint    `gorm:"primaryKey"`
	ProjectID uint    `gorm:"not null;index"`
	Project   Project `gorm:"constraint:OnDelete:CASCADE"`
	Name      string  `gorm:"size:255;not null"`
}

type BoardList struct {
	ID       uint   `gorm:"primaryKey"`
	BoardID  uint   `gorm:"not null;index"`
	Board    Board  `gorm:"constraint:OnDelete:CASCADE"`
	Name     string `gorm:"size:100;not null"`
	Position int    `gorm:"not null;default:0"`
	Cards    []Card `gorm:"foreignKey:ListID;constraint:OnDelete:CASCADE"`
}

type Card struct {
	ID          uint      `gorm:"primaryKey"`
	ListID      uint      `gorm:"not null;index"`
	List        BoardList `gorm:"foreignKey:ListID;constraint:OnDelete:CASCADE"`
	Title       string    `gorm:"size:255;not null"`
	Description string    `gorm:"type:text"`
	Position    int       `gorm:"not null;default:0"`
	CreatedByID uint      `gorm:"not null;index"`
	CreatedBy   User      `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	DueDate     *time.Time
}

type Attachment struct {
	ID           uint    `gorm:"primaryKey"`
	ProjectID    uint    `gorm:"not null;index"`
	Project      Project `gorm:"constraint:OnDelete:CASCADE"`
	File         string  `gorm:"size:255;not null"`
	Name         string  `gorm:"size:255"`
	ContentType  string  `gorm:"size:127"`
	Size         int64
	UploadedByID uint      `gorm:"not null;index"`
	UploadedBy   User      `gorm:"constraint:OnDelete:CASCADE"`
	UploadedAt   time.Time `gorm:"autoCreateTime"`
}

type Event struct {
	ID          uint    `gorm:"primaryKey"`
	ProjectID   uint    `gorm:"not null;index"`
	Project     Project `gorm:"constraint:OnDelete:CASCADE"`
	Title       string  `gorm:"size:255;not null"`
	Description string  `gorm:"type:text"`
	StartDate   time.Time
	EndDate     time.Time
	CreatedByID uint `gorm:"not null;index"`
	CreatedBy   User `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
}

type Communication struct {
	ID         uint      `gorm:"primaryKey"`
	ProjectID  uint      `gorm:"not null;index"`
	Project    Project   `gorm:"constraint:OnDelete:CASCADE"`
	Subject    string    `gorm:"size:255;not null"`
	Message    string    `gorm:"type:text;not null"`
	SenderID   uint      `gorm:"not null;index"`
	Sender     User      `gorm:"constraint:OnDelete:CASCADE"`
	Recipients []User    `gorm:"many2many:communication_recipients;constraint:OnDelete:CASCADE"`
	SentAt     time.Time `gorm:"autoCreateTime"`
}

type Task struct {
	ID           uint   `gorm:"primaryKey"`
	Title        string `gorm:"size:200;not null"`
	Description  string `gorm:"type:text"`
	Status       string `gorm:"size:20;not null;default:to_do"`
	AssignedToID *uint  `gorm:"index"`
	AssignedTo   *User  `gorm:"constraint:OnDelete:SET NULL"`
	DueDate      *datatypes.Date
	ProjectID    *uint     `gorm:"index"`
	Project      *Project  `gorm:"constraint:OnDelete:CASCADE"`
	CreatedByID  uint      `gorm:"not null;index"`
	CreatedBy    User      `gorm:"constraint:OnDelete:CASCADE"`
	SubTasks     []SubTask `gorm:"foreignKey:ParentTaskID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time
}

type SubTask struct {
	ID           uint   `gorm:"primaryKey"`
	ParentTaskID uint   `gorm:"not null;index"`
	ParentTask   Task   `gorm:"constraint:OnDelete:CASCADE"`
	Title        string `gorm:"size:255;not null"`
	Description  string `gorm:"type:text"`
	AssignedToID *uint  `gorm:"index"`
	AssignedTo   *User  `gorm:"constraint:OnDelete:SET NULL"`
	DueDate      *datatypes.Date
	Completed    bool `gorm:"not null"`
	CreatedAt    time.Time
}

type Notification struct {
	ID               uint     `gorm:"primaryKey"`
	UserID           uint     `gorm:"not null;index"`
	User             User     `gorm:"constraint:OnDelete:CASCADE"`
	NotificationType string   `gorm:"size:20;not null"`
	Message          string   `gorm:"type:text;not null"`
	RelatedTaskID    *uint    `gorm:"index"`
	RelatedTask      *Task    `gorm:"constraint:OnDelete:CASCADE"`
	RelatedProjectID *uint    `gorm:"index"`
	RelatedProject   *Project `gorm:"constraint:OnDelete:CASCADE"`
	IsRead           bool     `gorm:"not null;index"`
	CreatedAt        time.Time
}

type GanttChart struct {
	ID        uint    `gorm:"primaryKey"`
	ProjectID uint    `gorm:"uniqueIndex;not null"`
	Project   Project `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type GanttTask struct {
	ID           uint           `gorm:"primaryKey"`
	GanttChartID uint           `gorm:"not null;index"`
	GanttChart   GanttChart     `gorm:"constraint:OnDelete:CASCADE"`
	Name         string         `gorm:"size:255;not null"`
	StartDate    datatypes.Date `gorm:"not null"`
	EndDate      datatypes.Date `gorm:"not null"`
	Progress     int            `gorm:"not null;default:0"`
	Dependencies []GanttTask    `gorm:"many2many:gantt_task_dependencies;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time
}

type Report struct {
	ID          uint         `gorm:"primaryKey"`
	Title       string       `gorm:"size:255;not null"`
	ReportType  string       `gorm:"size:20;not null;default:standard"`
	CreatedByID uint         `gorm:"not null;index"`
	CreatedBy   User         `gorm:"constraint:OnDelete:CASCADE"`
	SharedWith  []User       `gorm:"many2many:report_shared_with;constraint:OnDelete:CASCADE"`
	ProjectID   *uint        `gorm:"index"`
	Project     *Project     `gorm:"constraint:OnDelete:CASCADE"`
	Files       []ReportFile `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
}

type ReportFile struct {
	ID          uint   `gorm:"primaryKey"`
	ReportID    uint   `gorm:"not null;index"`
	Report      Report `gorm:"constraint:OnDelete:CASCADE"`
	File        string `gorm:"size:255;not null"`
	ContentType string `gorm:"size:127"`
	Size        int64
	UploadedAt  time.Time `gorm:"autoCreateTime"`
}

type FileShare struct {
	ID           uint   `gorm:"primaryKey"`
	File         string `gorm:"size:255;not null"`
	Name         string `gorm:"size:255"`
	Description  string `gorm:"type:text"`
	ContentType  string `gorm:"size:127"`
	Size         int64
	UploadedByID uint      `gorm:"not null;index"`
	UploadedBy   User      `gorm:"constraint:OnDelete:CASCADE"`
	UploadedAt   time.Time `gorm:"autoCreateTime"`
	SharedWith   []User    `gorm:"many2many:file_share_shared_with;constraint:OnDelete:CASCADE"`
	ProjectID    *uint     `gorm:"index"`
	Project      *Project  `gorm:"constraint:OnDelete:CASCADE"`
}

type AccessPermission struct {
	ID          uint      `gorm:"primaryKey"`
	UserID      uint      `gorm:"not null;uniqueIndex:uk_user_project"`
	User        User      `gorm:"constraint:OnDelete:CASCADE"`
	ProjectID   uint      `gorm:"not null;uniqueIndex:uk_user_project"`
	Project     Project   `gorm:"constraint:OnDelete:CASCADE"`
	Permission  string    `gorm:"size:20;not null"`
	GrantedByID uint      `gorm:"not null;index"`
	GrantedBy   User      `gorm:"constraint:OnDelete:CASCADE"`
	GrantedAt   time.Time `gorm:"autoCreateTime"`
}

func (User) TableName() string             { return "users" }
func (Profile) TableName() string          { return "profiles" }
func (SocialAccount) TableName() string    { return "social_accounts" }
func (Project) TableName() string          { return "projects" }
func (Board) TableName() string            { return "boards" }
func (BoardList) TableName() string        { return "board_lists" }
func (Card) TableName() string             { return "cards" }
func (Attachment) TableName() string       { return "attachments" }
func (Event) TableName() string            { return "events" }
func (Communication) TableName() string    { return "communications" }
func (Task) TableName() string             { return "tasks" }
func (SubTask) TableName() string          { return "sub_tasks" }
func (Notification) TableName() string     { return "notifications" }
func (GanttChart) TableName() string       { return "gantt_charts" }
func (GanttTask) TableName() string        { return "gantt_tasks" }
func (Report) TableName() string           { return "reports" }
func (ReportFile) TableName() string       { return "report_files" }
func (FileShare) TableName() string        { return "file_shares" }
func (AccessPermission) TableName() string { return "access_permissions" }

// All lists every persisted entity in dependency order for migrations.
func All() []any {
	return []any{
		&User{}, &Profile{}, &SocialAccount{},
		&Project{}, &Board{}, &BoardList{}, &Card{},
		&Attachment{}, &Event{}, &Communication{},
		&Task{}, &SubTask{}, &Notification{},
		&GanttChart{}, &GanttTask{},
		&Report{}, &ReportFile{}, &FileShare{}, &AccessPermission{},
	}
}

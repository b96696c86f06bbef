package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"projectly/internal/middleware"
	"projectly/internal/service"
	"projectly/internal/storage"
)

// Deps are the long-lived collaborators the HTTP layer is built from.
type Deps struct {
	DB       *gorm.DB
	Tokens   *middleware.Tokens
	Store    *storage.Store
	Identity service.IdentityProvider
}

// Server owns one handler per resource.
type Server struct {
	tokens        *middleware.Tokens
	auth          *AuthHandler
	projects      *ProjectHandler
	boards        *BoardHandler
	tasks         *TaskHandler
	notifications *NotificationHandler
	gantt         *GanttHandler
	collab        *CollabHandler
	reports       *ReportHandler
	files         *FileHandler
	permissions   *PermissionHandler
}

func New(d Deps) *Server {
	useJSONFieldNames()
	authSvc := service.NewAuthService(d.DB, d.Tokens, d.Identity)
	return &Server{
		tokens:        d.Tokens,
		auth:          NewAuthHandler(authSvc),
		projects:      NewProjectHandler(service.NewProjectService(d.DB)),
		boards:        NewBoardHandler(service.NewBoardService(d.DB), authSvc),
		tasks:         NewTaskHandler(service.NewTaskService(d.DB)),
		notifications: NewNotificationHandler(service.NewNotificationService(d.DB)),
		gantt:         NewGanttHandler(service.NewGanttService(d.DB)),
		collab:        NewCollabHandler(service.NewCollabService(d.DB)),
		reports:       NewReportHandler(service.NewReportService(d.DB, d.Store), d.Store.URL),
		files:         NewFileHandler(service.NewFileService(d.DB, d.Store), authSvc, d.Store.URL),
		permissions:   NewPermissionHandler(service.NewPermissionService(d.DB)),
	}
}

// Routes mounts the API at the root and again under /api, plus the
// unauthenticated board endpoints under /api/public.
func (s *Server) Routes(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	s.mount(r.Group(""))
	s.mount(r.Group("/api"))

	public := r.Group("/api/public", middleware.OptionalAuth(s.tokens))
	public.GET("/boards/:id/lists/", s.boards.PublicLists)
	public.POST("/lists/:id/cards/", s.boards.PublicCreateCard)
}

func (s *Server) mount(g *gin.RouterGroup) {
	for _, prefix := range []string{"", "/auth"} {
		g.POST(prefix+"/register/", s.auth.Register)
		g.POST(prefix+"/login/", s.auth.Login)
		g.GET(prefix+"/csrf/", s.auth.CSRF)
	}
	g.POST("/social-auth/", s.auth.SocialAuth)
	g.POST("/token/refresh/", s.auth.Refresh)
	g.POST("/upload-files/", middleware.OptionalAuth(s.tokens), s.files.QuickUpload)

	a := g.Group("", middleware.JWTAuth(s.tokens))
	a.GET("/me/", s.auth.Me)
	a.GET("/role/", s.auth.GetRole)
	a.POST("/role/", s.auth.SetRole)

	a.GET("/projects/", s.projects.List)
	a.POST("/projects/", s.projects.Create)
	a.GET("/projects/:id/", s.projects.Get)
	a.PUT("/projects/:id/", s.projects.Update)
	a.PATCH("/projects/:id/", s.projects.Update)
	a.DELETE("/projects/:id/", s.projects.Delete)

	a.GET("/projects/:id/boards/", s.boards.ListBoards)
	a.POST("/projects/:id/boards/", s.boards.CreateBoard)
	a.GET("/projects/:id/board/", s.boards.DefaultBoard)
	a.GET("/boards/:id/", s.boards.GetBoard)
	a.PUT("/boards/:id/", s.boards.UpdateBoard)
	a.DELETE("/boards/:id/", s.boards.DeleteBoard)
	a.GET("/boards/:id/lists/", s.boards.ListLists)
	a.POST("/boards/:id/lists/", s.boards.CreateList)
	a.GET("/lists/:id/", s.boards.GetList)
	a.PUT("/lists/:id/", s.boards.UpdateList)
	a.DELETE("/lists/:id/", s.boards.DeleteList)
	a.GET("/lists/:id/cards/", s.boards.ListCards)
	a.POST("/lists/:id/cards/", s.boards.CreateCard)
	a.GET("/cards/:id/", s.boards.GetCard)
	a.PUT("/cards/:id/", s.boards.UpdateCard)
	a.PATCH("/cards/:id/", s.boards.UpdateCard)
	a.DELETE("/cards/:id/", s.boards.DeleteCard)

	a.GET("/projects/:id/attachments/", s.files.ListAttachments)
	a.POST("/projects/:id/attachments/", s.files.CreateAttachment)
	a.GET("/projects/:id/events/", s.collab.ListEvents)
	a.POST("/projects/:id/events/", s.collab.CreateEvent)
	a.GET("/projects/:id/communications/", s.collab.ListCommunications)
	a.POST("/projects/:id/communications/", s.collab.CreateCommunication)
	a.GET("/projects/:id/reports/", s.reports.ProjectList)
	a.POST("/projects/:id/reports/", s.reports.ProjectCreate)

	a.GET("/tasks/", s.tasks.List)
	a.POST("/tasks/", s.tasks.Create)
	a.GET("/tasks/:id/", s.tasks.Get)
	a.PUT("/tasks/:id/", s.tasks.Update)
	a.PATCH("/tasks/:id/", s.tasks.Update)
	a.DELETE("/tasks/:id/", s.tasks.Delete)
	a.GET("/tasks/:id/subtasks/", s.tasks.ListSubTasks)
	a.POST("/tasks/:id/subtasks/", s.tasks.CreateSubTask)
	a.PUT("/subtasks/:id/", s.tasks.UpdateSubTask)
	a.PATCH("/subtasks/:id/", s.tasks.UpdateSubTask)
	a.DELETE("/subtasks/:id/", s.tasks.DeleteSubTask)

	a.GET("/notifications/", s.notifications.List)
	a.GET("/notifications/unread-count/", s.notifications.UnreadCount)
	a.PUT("/notifications/mark-as-read/", s.notifications.MarkAllRead)
	a.PATCH("/notifications/mark-as-read/", s.notifications.MarkAllRead)

	a.GET("/projects/:id/gantt-chart/", s.gantt.Chart)
	a.GET("/projects/:id/gantt-tasks/", s.gantt.ListTasks)
	a.POST("/projects/:id/gantt-tasks/", s.gantt.CreateTask)
	a.GET("/gantt-tasks/:id/", s.gantt.GetTask)
	a.PUT("/gantt-tasks/:id/", s.gantt.UpdateTask)
	a.DELETE("/gantt-tasks/:id/", s.gantt.DeleteTask)

	a.GET("/reports/", s.reports.List)
	a.POST("/reports/", s.reports.Create)
	a.GET("/reports/export/", s.reports.Export)
	a.GET("/reports/:id/", s.reports.Get)
	a.PUT("/reports/:id/", s.reports.Update)
	a.PATCH("/reports/:id/", s.reports.Update)
	a.DELETE("/reports/:id/", s.reports.Delete)
	a.POST("/reports/:id/files/", s.reports.AddFile)

	a.GET("/files/", s.files.ListShares)
	a.GET("/files/share/", s.files.ListShares)
	a.POST("/files/share/", s.files.Share)

	a.GET("/access-permissions/", s.permissions.List)
	a.POST("/access-permissions/", s.permissions.Grant)
}

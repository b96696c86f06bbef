package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"projectly/internal/config"
	"projectly/internal/middleware"
	"projectly/internal/model"
	"projectly/internal/service"
	"projectly/internal/storage"
	"projectly/internal/testutil"
)

type stubIdentity struct{ identity *service.Identity }

func (s stubIdentity) UserInfo(context.Context, string, string) (*service.Identity, error) {
	if s.identity == nil {
		return nil, fmt.Errorf("%w: rejected", service.ErrProvider)
	}
	return s.identity, nil
}

type testEnv struct {
	db     *gorm.DB
	tokens *middleware.Tokens
	router *gin.Engine
}

func newEnv(t *testing.T) *testEnv {
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	tokens := middleware.NewTokens(config.AuthConfig{
		JWTSecret: "handler-test", AccessTTL: 5 * time.Minute, RefreshTTL: time.Hour,
	})
	r := gin.New()
	New(Deps{
		DB:       db,
		Tokens:   tokens,
		Store:    storage.New(t.TempDir(), "/media"),
		Identity: stubIdentity{identity: &service.Identity{ID: "g-1", Email: "social@x.com", Name: "So Cial"}},
	}).Routes(r)
	return &testEnv{db: db, tokens: tokens, router: r}
}

func (e *testEnv) token(t *testing.T, u model.User) string {
	pair, err := e.tokens.Issue(u.ID, u.Email)
	require.NoError(t, err)
	return pair.Access
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return e.send(req, token)
}

func (e *testEnv) send(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// multipartRequest builds a form with one file per entry in files and the
// given plain fields.
func multipartRequest(t *testing.T, path string, files map[string]string, fields map[string][]string) *http.Request {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for field, content := range files {
		fw, err := mw.CreateFormFile(field, field+".txt")
		require.NoError(t, err)
		fw.Write([]byte(content))
	}
	for k, values := range fields {
		for _, v := range values {
			require.NoError(t, mw.WriteField(k, v))
		}
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestRegisterLoginAndMe(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, "/register/", "", gin.H{
		"name": "Jane Doe", "email": "jane@x.com",
		"password": "Abcd1234", "confirmPassword": "Abcd1234", "role": "head",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	reg := decode[map[string]any](t, w)
	assert.Equal(t, "head", reg["role"])
	assert.Equal(t, "jane@x.com", reg["email"])
	assert.Equal(t, "User registered successfully", reg["message"])

	w = e.do(http.MethodPost, "/api/auth/login/", "", gin.H{"email": "jane@x.com", "password": "Abcd1234"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	pair := decode[model.TokenPair](t, w)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)

	w = e.do(http.MethodGet, "/api/me/", pair.Access, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[model.UserResponse](t, w)
	assert.Equal(t, "Jane Doe", me.Name)
	assert.Equal(t, "head", me.Role)

	w = e.do(http.MethodPost, "/token/refresh/", "", gin.H{"refresh": pair.Refresh})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode[map[string]string](t, w)["access"])

	w = e.do(http.MethodPost, "/token/refresh/", "", gin.H{"refresh": pair.Access})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterAndLoginErrors(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, "/register/", "", gin.H{
		"name": "Jane Doe", "email": "jane@x.com",
		"password": "abcd1234", "confirm_password": "abcd1234", "role": "head",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[map[string][]string](t, w), "password")

	var users int64
	e.db.Model(&model.User{}).Count(&users)
	assert.Zero(t, users)

	w = e.do(http.MethodPost, "/login/", "", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := decode[map[string][]string](t, w)
	assert.Equal(t, []string{"This field is required."}, fields["email"])
	assert.Equal(t, []string{"This field is required."}, fields["password"])

	w = e.do(http.MethodPost, "/login/", "", gin.H{"email": "nobody@x.com", "password": "Abcd1234"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[map[string][]string](t, w), "non_field_errors")
}

func TestSocialAuthAndRole(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, "/social-auth/", "", gin.H{"provider": "Google", "access_token": "tok"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	pair := decode[model.TokenPair](t, w)
	assert.Equal(t, "social@x.com", pair.Email)

	w = e.do(http.MethodPost, "/social-auth/", "", gin.H{"provider": "myspace", "access_token": "tok"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPost, "/role/", pair.Access, gin.H{"role": "program_manager"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = e.do(http.MethodGet, "/role/", pair.Access, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"role":"program_manager"}`, w.Body.String())

	w = e.do(http.MethodPost, "/role/", pair.Access, gin.H{"role": "janitor"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthRequired(t *testing.T) {
	e := newEnv(t)
	w := e.do(http.MethodGet, "/projects/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Authentication credentials were not provided."}`, w.Body.String())

	w = e.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodGet, "/csrf/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[map[string]string](t, w)["csrfToken"], 32)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "csrftoken=")
}

func TestProjectMembershipScoping(t *testing.T) {
	e := newEnv(t)
	owner := testutil.CreateUser(t, e.db, "owner@x.com")
	member := testutil.CreateUser(t, e.db, "member@x.com")
	outsider := testutil.CreateUser(t, e.db, "outsider@x.com")

	w := e.do(http.MethodPost, "/api/projects/", e.token(t, owner), gin.H{
		"name": "Apollo", "description": "moon", "members": []uint{member.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	p := decode[model.ProjectResponse](t, w)
	assert.ElementsMatch(t, []uint{owner.ID, member.ID}, p.Members)

	path := fmt.Sprintf("/api/projects/%d/", p.ID)
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, path, e.token(t, member), nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, path, e.token(t, outsider), nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/projects/abc/", e.token(t, owner), nil).Code)

	w = e.do(http.MethodGet, "/projects/", e.token(t, outsider), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = e.do(http.MethodPatch, path, e.token(t, owner), gin.H{"name": "Artemis"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Artemis", decode[model.ProjectResponse](t, w).Name)

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodDelete, path, e.token(t, outsider), nil).Code)
	assert.Equal(t, http.StatusNoContent, e.do(http.MethodDelete, path, e.token(t, owner), nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, path, e.token(t, owner), nil).Code)
}

func TestBoardListsOrderedByPosition(t *testing.T) {
	e := newEnv(t)
	owner := testutil.CreateUser(t, e.db, "owner@x.com")
	p := testutil.CreateProject(t, e.db, "Apollo", owner)
	tok := e.token(t, owner)

	w := e.do(http.MethodGet, fmt.Sprintf("/projects/%d/board/", p.ID), tok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	board := decode[model.BoardResponse](t, w)
	assert.Equal(t, "Default Board", board.Name)

	for _, l := range []struct {
		name string
		pos  int
	}{{"Done", 2}, {"Todo", 0}, {"Doing", 1}} {
		w = e.do(http.MethodPost, fmt.Sprintf("/boards/%d/lists/", board.ID), tok, gin.H{"name": l.name, "position": l.pos})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w = e.do(http.MethodGet, fmt.Sprintf("/boards/%d/lists/", board.ID), tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	lists := decode[[]model.BoardListResponse](t, w)
	require.Len(t, lists, 3)
	assert.Equal(t, "Todo", lists[0].Name)
	assert.Equal(t, "Doing", lists[1].Name)
	assert.Equal(t, "Done", lists[2].Name)

	w = e.do(http.MethodPost, fmt.Sprintf("/lists/%d/cards/", lists[0].ID), tok, gin.H{"title": "Write docs", "position": 0})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = e.do(http.MethodGet, fmt.Sprintf("/api/public/boards/%d/lists/", board.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	public := decode[[]map[string]any](t, w)
	require.Len(t, public, 3)
	assert.Len(t, public[0]["cards"], 1)
	assert.Len(t, public[1]["cards"], 0)
}

func TestPublicCreateCard(t *testing.T) {
	e := newEnv(t)
	owner := testutil.CreateUser(t, e.db, "owner@x.com")
	p := testutil.CreateProject(t, e.db, "Apollo", owner)
	board := model.Board{ProjectID: p.ID, Name: "Main"}
	require.NoError(t, e.db.Omit("Project").Create(&board).Error)
	list := model.BoardList{BoardID: board.ID, Name: "Inbox"}
	require.NoError(t, e.db.Omit("Board").Create(&list).Error)

	w := e.do(http.MethodPost, fmt.Sprintf("/api/public/lists/%d/cards/", list.ID), "", gin.H{"title": "From outside"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	card := decode[model.CardResponse](t, w)
	assert.Equal(t, owner.ID, card.CreatedBy)
	assert.Equal(t, list.ID, card.List)

	w = e.do(http.MethodPost, "/api/public/lists/9999/cards/", "", gin.H{"title": "Lost"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"list":["Invalid board list ID."]}`, w.Body.String())
}

func TestTaskAssignmentNotifiesAssignee(t *testing.T) {
	e := newEnv(t)
	u1 := testutil.CreateUser(t, e.db, "u1@x.com")
	u2 := testutil.CreateUser(t, e.db, "u2@x.com")

	w := e.do(http.MethodPost, "/tasks/", e.token(t, u1), gin.H{"title": "Fix bug", "assigned_to": u2.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	task := decode[model.TaskResponse](t, w)
	require.NotNil(t, task.AssignedTo)
	assert.Equal(t, u2.ID, *task.AssignedTo)

	w = e.do(http.MethodGet, "/notifications/", e.token(t, u2), nil)
	require.Equal(t, http.StatusOK, w.Code)
	notes := decode[[]model.NotificationResponse](t, w)
	require.Len(t, notes, 1)
	assert.Equal(t, model.NotifyTaskAssigned, notes[0].NotificationType)
	require.NotNil(t, notes[0].RelatedTask)
	assert.Equal(t, task.ID, *notes[0].RelatedTask)
	assert.Equal(t, "You have been assigned a new task: Fix bug", notes[0].Message)

	w = e.do(http.MethodGet, "/notifications/", e.token(t, u1), nil)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = e.do(http.MethodGet, "/notifications/unread-count/", e.token(t, u2), nil)
	assert.JSONEq(t, `{"unread_count":1}`, w.Body.String())

	w = e.do(http.MethodPut, "/notifications/mark-as-read/", e.token(t, u2), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"notifications marked as read","updated":1}`, w.Body.String())

	w = e.do(http.MethodGet, "/notifications/?is_read=false", e.token(t, u2), nil)
	assert.JSONEq(t, `[]`, w.Body.String())
	w = e.do(http.MethodGet, "/notifications/?is_read=true", e.token(t, u2), nil)
	assert.Len(t, decode[[]model.NotificationResponse](t, w), 1)
}

func TestTaskFiltersAndSubtasks(t *testing.T) {
	e := newEnv(t)
	u := testutil.CreateUser(t, e.db, "u@x.com")
	tok := e.token(t, u)

	e.do(http.MethodPost, "/tasks/", tok, gin.H{"title": "A", "status": "done"})
	w := e.do(http.MethodPost, "/tasks/", tok, gin.H{"title": "B", "due_date": "2026-03-01"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	b := decode[model.TaskResponse](t, w)
	require.NotNil(t, b.DueDate)
	assert.Equal(t, "2026-03-01", *b.DueDate)

	w = e.do(http.MethodGet, "/tasks/?status=done", tok, nil)
	done := decode[[]model.TaskResponse](t, w)
	require.Len(t, done, 1)
	assert.Equal(t, "A", done[0].Title)

	w = e.do(http.MethodGet, "/tasks/?project=x", tok, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPost, fmt.Sprintf("/tasks/%d/subtasks/", b.ID), tok, gin.H{"title": "B.1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sub := decode[model.SubTaskResponse](t, w)
	assert.Equal(t, "B", sub.ParentTaskTitle)

	w = e.do(http.MethodPatch, fmt.Sprintf("/subtasks/%d/", sub.ID), tok, gin.H{"completed": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decode[model.SubTaskResponse](t, w).Completed)

	assert.Equal(t, http.StatusNoContent, e.do(http.MethodDelete, fmt.Sprintf("/subtasks/%d/", sub.ID), tok, nil).Code)
}

func TestDuplicateAccessPermission(t *testing.T) {
	e := newEnv(t)
	owner := testutil.CreateUser(t, e.db, "owner@x.com")
	viewer := testutil.CreateUser(t, e.db, "viewer@x.com")
	p := testutil.CreateProject(t, e.db, "Apollo", owner)
	body := gin.H{"user": viewer.ID, "project": p.ID, "permission": "view"}

	w := e.do(http.MethodPost, "/access-permissions/", e.token(t, owner), body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	perm := decode[model.AccessPermissionResponse](t, w)
	assert.Equal(t, "viewer@x.com", perm.UserEmail)
	assert.Equal(t, "Apollo", perm.ProjectName)

	w = e.do(http.MethodPost, "/access-permissions/", e.token(t, owner), body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"non_field_errors":["The fields user, project must make a unique set."]}`, w.Body.String())

	w = e.do(http.MethodGet, fmt.Sprintf("/access-permissions/?project_id=%d", p.ID), e.token(t, owner), nil)
	assert.Len(t, decode[[]model.AccessPermissionResponse](t, w), 1)
}

func TestGanttEndpoints(t *testing.T) {
	e := newEnv(t)
	owner := testutil.CreateUser(t, e.db, "owner@x.com")
	p := testutil.CreateProject(t, e.db, "Apollo", owner)
	tok := e.token(t, owner)

	w := e.do(http.MethodGet, fmt.Sprintf("/projects/%d/gantt-tasks/", p.ID), tok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(http.MethodGet, fmt.Sprintf("/projects/%d/gantt-chart/", p.ID), tok, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodPost, fmt.Sprintf("/projects/%d/gantt-tasks/", p.ID), tok, gin.H{
		"name": "Design", "start_date": "2026-01-01", "end_date": "2026-01-10", "progress": 50,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	design := decode[model.GanttTaskResponse](t, w)

	w = e.do(http.MethodPost, fmt.Sprintf("/projects/%d/gantt-tasks/", p.ID), tok, gin.H{
		"name": "Build", "start_date": "2026-01-11", "end_date": "2026-01-20", "dependencies": []uint{design.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, []uint{design.ID}, decode[model.GanttTaskResponse](t, w).Dependencies)

	w = e.do(http.MethodPost, fmt.Sprintf("/projects/%d/gantt-tasks/", p.ID), tok, gin.H{
		"name": "Broken", "start_date": "2026-01-11", "end_date": "2026-01-20", "dependencies": []uint{9999},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[map[string][]string](t, w), "dependencies")
}

func TestEventsAndCommunications(t *testing.T) {
	e := newEnv(t)
	owner := testutil.CreateUser(t, e.db, "owner@x.com")
	member := testutil.CreateUser(t, e.db, "member@x.com")
	p := testutil.CreateProject(t, e.db, "Apollo", owner, member)
	tok := e.token(t, owner)

	w := e.do(http.MethodPost, fmt.Sprintf("/projects/%d/events/", p.ID), tok, gin.H{
		"title": "Kickoff", "start_date": "2026-02-01T09:00:00Z", "end_date": "2026-02-01T10:00:00Z",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = e.do(http.MethodPost, fmt.Sprintf("/projects/%d/events/", p.ID), tok, gin.H{})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[map[string][]string](t, w), "title")

	w = e.do(http.MethodPost, fmt.Sprintf("/projects/%d/communications/", p.ID), tok, gin.H{
		"subject": "Hello", "message": "Welcome aboard", "recipients": []uint{member.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	msg := decode[model.CommunicationResponse](t, w)
	assert.Equal(t, []string{"member@x.com"}, msg.RecipientEmails)

	w = e.do(http.MethodGet, fmt.Sprintf("/projects/%d/communications/", p.ID), e.token(t, member), nil)
	assert.Len(t, decode[[]model.CommunicationResponse](t, w), 1)
}

func TestMalformedDatesAreFieldErrors(t *testing.T) {
	e := newEnv(t)
	owner := testutil.CreateUser(t, e.db, "owner@x.com")
	p := testutil.CreateProject(t, e.db, "Apollo", owner)
	tok := e.token(t, owner)

	w := e.do(http.MethodPost, fmt.Sprintf("/projects/%d/events/", p.ID), tok, gin.H{
		"title": "Kickoff", "start_date": "2025-01-01", "end_date": "2025-01-02",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := decode[map[string][]string](t, w)
	assert.Contains(t, fields, "start_date")
	assert.Contains(t, fields, "end_date")

	w = e.do(http.MethodGet, fmt.Sprintf("/projects/%d/board/", p.ID), tok, nil)
	board := decode[model.BoardResponse](t, w)
	w = e.do(http.MethodPost, fmt.Sprintf("/boards/%d/lists/", board.ID), tok, gin.H{"name": "Todo"})
	list := decode[model.BoardListResponse](t, w)

	w = e.do(http.MethodPost, fmt.Sprintf("/lists/%d/cards/", list.ID), tok, gin.H{"title": "Due", "due_date": "2025-01-01"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[map[string][]string](t, w), "due_date")

	w = e.do(http.MethodPost, fmt.Sprintf("/lists/%d/cards/", list.ID), tok, gin.H{"title": "Due", "due_date": "2025-01-01T12:00:00Z"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	card := decode[model.CardResponse](t, w)

	w = e.do(http.MethodPatch, fmt.Sprintf("/cards/%d/", card.ID), tok, gin.H{"due_date": "soon"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[map[string][]string](t, w), "due_date")
}

func TestUploadFilesWithoutToken(t *testing.T) {
	e := newEnv(t)
	first := testutil.CreateUser(t, e.db, "first@x.com")

	req := multipartRequest(t, "/upload-files/", map[string]string{"file_1": "hello", "file_2": "world!"}, nil)
	w := e.send(req, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Status string `json:"status"`
		Files  []struct {
			ID        uint   `json:"id"`
			Name      string `json:"name"`
			Size      int64  `json:"size"`
			SizeHuman string `json:"size_human"`
			URL       string `json:"url"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	require.Len(t, resp.Files, 2)
	for _, f := range resp.Files {
		assert.Contains(t, []int64{5, 6}, f.Size)
		assert.Contains(t, f.SizeHuman, "B")
		assert.Contains(t, f.URL, "/media/uploads/")
	}

	var share model.FileShare
	require.NoError(t, e.db.First(&share, resp.Files[0].ID).Error)
	assert.Equal(t, first.ID, share.UploadedByID)

	w = e.send(multipartRequest(t, "/upload-files/", nil, map[string][]string{"x": {"y"}}), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShareFiles(t *testing.T) {
	e := newEnv(t)
	owner := testutil.CreateUser(t, e.db, "owner@x.com")
	a := testutil.CreateUser(t, e.db, "a@x.com")
	b := testutil.CreateUser(t, e.db, "b@x.com")
	p := testutil.CreateProject(t, e.db, "Apollo", owner)

	req := multipartRequest(t, "/files/share/", map[string]string{"files": "spec sheet"}, map[string][]string{
		"project":     {fmt.Sprint(p.ID)},
		"shared_with": {fmt.Sprintf("%d,%d", a.ID, b.ID)},
		"description": {"for review"},
	})
	w := e.send(req, e.token(t, owner))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	shares := decode[[]model.FileShareResponse](t, w)
	require.Len(t, shares, 1)
	assert.ElementsMatch(t, []string{"a@x.com", "b@x.com"}, shares[0].SharedWithEmails)
	require.NotNil(t, shares[0].ProjectName)
	assert.Equal(t, "Apollo", *shares[0].ProjectName)
	assert.Equal(t, "for review", shares[0].Description)

	w = e.do(http.MethodGet, "/files/", e.token(t, b), nil)
	assert.Len(t, decode[[]model.FileShareResponse](t, w), 1)

	req = multipartRequest(t, "/files/share/", map[string]string{"files": "x"}, map[string][]string{
		"shared_with": {"abc"},
	})
	w = e.send(req, e.token(t, owner))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[map[string][]string](t, w), "shared_with")
}

func TestReportsAndExport(t *testing.T) {
	e := newEnv(t)
	owner := testutil.CreateUser(t, e.db, "owner@x.com")
	reader := testutil.CreateUser(t, e.db, "reader@x.com")
	p := testutil.CreateProject(t, e.db, "Apollo", owner)

	w := e.do(http.MethodPost, fmt.Sprintf("/projects/%d/reports/", p.ID), e.token(t, owner), gin.H{
		"title": "Q1", "report_type": "progress", "shared_with": []uint{reader.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	report := decode[model.ReportResponse](t, w)
	require.NotNil(t, report.Project)
	assert.Equal(t, p.ID, *report.Project)

	path := fmt.Sprintf("/reports/%d/", report.ID)
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, path, e.token(t, reader), nil).Code)

	w = e.send(multipartRequest(t, path+"files/", map[string]string{"file": "numbers"}, nil), e.token(t, reader))
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = e.send(multipartRequest(t, path+"files/", map[string]string{"file": "numbers"}, nil), e.token(t, owner))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, decode[model.ReportFileResponse](t, w).File, "/media/reports/")

	w = e.do(http.MethodGet, "/reports/export/", e.token(t, reader), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "reports.xlsx")
	assert.Equal(t, "PK", w.Body.String()[:2])
}

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/taskbot/internal/constants"
	"github.com/yukikurage/taskbot/internal/database"
	"github.com/yukikurage/taskbot/internal/dto"
	apierrors "github.com/yukikurage/taskbot/internal/errors"
	"github.com/yukikurage/taskbot/internal/repository"
	"github.com/yukikurage/taskbot/internal/scheduler"
	"github.com/yukikurage/taskbot/internal/services"
	"github.com/yukikurage/taskbot/internal/surface"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type WorkspaceHandlerTestSuite struct {
	suite.Suite
	db       *gorm.DB
	sched    *scheduler.Scheduler
	registry *services.Registry
	router   *gin.Engine
	cookies  []*http.Cookie
}

func (suite *WorkspaceHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	var err error
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	suite.Require().NoError(err)
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	suite.Require().NoError(database.AutoMigrate(suite.db))

	tasks := repository.NewTaskRepository(suite.db)
	outbox := surface.NewOutbox()
	suite.sched = scheduler.New(scheduler.WithAfter(func(time.Duration) <-chan time.Time {
		return nil
	}))
	suite.registry = services.NewRegistry(services.RegistryConfig{
		Tasks:      tasks,
		Workspaces: repository.NewWorkspaceRepository(suite.db),
		Surfaces:   outbox,
		Scheduler:  suite.sched,
	})

	suite.router = gin.New()
	suite.router.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	RegisterRoutes(suite.router,
		NewAuthHandler(newAuthService(suite.T())),
		NewWorkspaceHandler(suite.registry, outbox, tasks),
		suite.registry,
	)

	w := postJSON(suite.T(), suite.router, "/api/auth/login", map[string]string{
		"username": "bridge",
		"password": "supersecret",
	})
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.cookies = w.Result().Cookies()
}

func (suite *WorkspaceHandlerTestSuite) TearDownTest() {
	suite.registry.DetachAll()
	suite.sched.Stop()
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *WorkspaceHandlerTestSuite) post(path string, payload any) *httptest.ResponseRecorder {
	return postJSON(suite.T(), suite.router, path, payload, suite.cookies...)
}

func (suite *WorkspaceHandlerTestSuite) do(method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for _, c := range suite.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *WorkspaceHandlerTestSuite) attach() {
	w := suite.post("/api/workspaces/ws/attach", dto.AttachRequest{NotificationChannelID: "notify"})
	suite.Require().Equal(http.StatusOK, w.Code)
}

func (suite *WorkspaceHandlerTestSuite) command(name string, args ...string) *httptest.ResponseRecorder {
	return suite.post("/api/workspaces/ws/commands", dto.CommandRequest{
		Name:      name,
		Args:      args,
		ChannelID: "chan",
		UserID:    "u1",
	})
}

func (suite *WorkspaceHandlerTestSuite) events() []surface.Event {
	w := suite.do(http.MethodGet, "/api/workspaces/ws/events")
	suite.Require().Equal(http.StatusOK, w.Code)
	var response dto.EventsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	return response.Events
}

func (suite *WorkspaceHandlerTestSuite) assertError(w *httptest.ResponseRecorder, status int, code string) {
	suite.Equal(status, w.Code)
	var response apierrors.APIError
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Equal(code, response.Code)
}

func (suite *WorkspaceHandlerTestSuite) TestRequiresSession() {
	suite.cookies = nil

	w := suite.command("task")

	suite.assertError(w, http.StatusUnauthorized, apierrors.ErrCodeUnauthorized)
}

func (suite *WorkspaceHandlerTestSuite) TestUnattachedWorkspace() {
	suite.assertError(suite.command("task"), http.StatusNotFound, apierrors.ErrCodeNotFound)
	suite.assertError(suite.do(http.MethodDelete, "/api/workspaces/ws"), http.StatusNotFound, apierrors.ErrCodeNotFound)
}

func (suite *WorkspaceHandlerTestSuite) TestCreateTaskThroughGateway() {
	suite.attach()

	suite.Equal(http.StatusAccepted, suite.command("task").Code)
	events := suite.events()
	suite.Require().Len(events, 1)
	suite.Equal(surface.KindMenu, events[0].Prompt.Kind)

	w := suite.post("/api/workspaces/ws/interactions", dto.InteractionRequest{
		MessageID: events[0].ID,
		ChannelID: "chan",
		UserID:    "u1",
		Action:    surface.ActionCreate,
	})
	suite.Equal(http.StatusAccepted, w.Code)
	events = suite.events()
	suite.Require().Len(events, 2)
	suite.Equal(surface.EventDelete, events[0].Kind)
	suite.Equal(surface.KindForm, events[1].Prompt.Kind)

	w = suite.post("/api/workspaces/ws/interactions", dto.InteractionRequest{
		MessageID: events[1].ID,
		ChannelID: "chan",
		UserID:    "u1",
		Action:    surface.ActionSubmit,
		Fields:    map[string]string{"title": "Write report", "end_date": "31/12/2024"},
	})
	suite.Equal(http.StatusAccepted, w.Code)

	w = suite.do(http.MethodGet, "/api/workspaces/ws/tasks?page=1&limit=10")
	suite.Require().Equal(http.StatusOK, w.Code)
	var list dto.TaskListResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &list))
	suite.Equal(int64(1), list.Pagination.Total)
	suite.Require().Len(list.Tasks, 1)
	suite.Equal("Write report", list.Tasks[0].Title)
	suite.Equal("31/12/2024", list.Tasks[0].EndDate)
	suite.Require().Len(list.Tasks[0].Assignees, 1)
	suite.Equal("u1", list.Tasks[0].Assignees[0].Ref)

	w = suite.do(http.MethodGet, "/api/workspaces/ws/tasks?done=true")
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &list))
	suite.Empty(list.Tasks)
}

func (suite *WorkspaceHandlerTestSuite) TestErrorMapping() {
	suite.attach()

	suite.assertError(suite.command("notify_every", "0", "hours"), http.StatusBadRequest, apierrors.ErrCodeInvalidInput)
	suite.assertError(suite.command("dance"), http.StatusBadRequest, apierrors.ErrCodeInvalidInput)
	suite.assertError(suite.command("sync_local"), http.StatusConflict, apierrors.ErrCodeConflict)
	suite.assertError(suite.command("generate_tasks", "plan"), http.StatusServiceUnavailable, apierrors.ErrCodeServiceUnavailable)

	w := suite.post("/api/workspaces/ws/interactions", dto.InteractionRequest{
		MessageID: "missing",
		ChannelID: "chan",
		Action:    surface.ActionSelect,
	})
	suite.assertError(w, http.StatusNotFound, apierrors.ErrCodeNotFound)

	w = suite.post("/api/workspaces/ws/interactions", dto.InteractionRequest{
		MessageID: "missing",
		ChannelID: "chan",
		Action:    "dance",
	})
	suite.assertError(w, http.StatusBadRequest, apierrors.ErrCodeInvalidInput)

	w = suite.do(http.MethodGet, "/api/workspaces/ws/tasks?done=maybe")
	suite.assertError(w, http.StatusBadRequest, apierrors.ErrCodeInvalidInput)
}

func (suite *WorkspaceHandlerTestSuite) TestDetach() {
	suite.attach()

	suite.Equal(http.StatusNoContent, suite.do(http.MethodDelete, "/api/workspaces/ws").Code)

	suite.assertError(suite.command("task"), http.StatusNotFound, apierrors.ErrCodeNotFound)
}

func TestWorkspaceHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(WorkspaceHandlerTestSuite))
}

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskbot/internal/constants"
	apierrors "github.com/yukikurage/taskbot/internal/errors"
	"github.com/yukikurage/taskbot/internal/middleware"
	"github.com/yukikurage/taskbot/internal/services"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(t *testing.T) *services.AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("supersecret"), bcrypt.MinCost)
	require.NoError(t, err)
	return services.NewAuthService("bridge", string(hash))
}

func setupAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	handler := NewAuthHandler(newAuthService(t))
	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))
	r.POST("/api/auth/login", handler.Login)
	r.POST("/api/auth/logout", handler.Logout)
	r.GET("/api/auth/me", middleware.RequireAuth(), handler.Me)
	return r
}

func postJSON(t *testing.T, r http.Handler, path string, payload any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Login(t *testing.T) {
	r := setupAuthRouter(t)

	w := postJSON(t, r, "/api/auth/login", map[string]string{
		"username": "bridge",
		"password": "supersecret",
	})

	require.Equal(t, http.StatusOK, w.Code)
	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "bridge", response["username"])
	require.NotEmpty(t, w.Result().Cookies())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	me := httptest.NewRecorder()
	r.ServeHTTP(me, req)
	assert.Equal(t, http.StatusOK, me.Code)
}

func TestAuthHandler_LoginRejectsBadCredentials(t *testing.T) {
	r := setupAuthRouter(t)

	w := postJSON(t, r, "/api/auth/login", map[string]string{
		"username": "bridge",
		"password": "wrongpass",
	})

	require.Equal(t, http.StatusUnauthorized, w.Code)
	var response apierrors.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, apierrors.ErrCodeInvalidCredentials, response.Code)
}

func TestAuthHandler_LoginRequiresBody(t *testing.T) {
	r := setupAuthRouter(t)

	w := postJSON(t, r, "/api/auth/login", map[string]string{"username": "bridge"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_MeWithoutSession(t *testing.T) {
	r := setupAuthRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

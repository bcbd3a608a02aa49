package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"huntboard/internal/config"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuth() *Authenticator {
	return NewAuthenticator(config.AuthConfig{
		JWTSecret:  testSecret,
		Issuer:     "huntboard",
		AdminEmail: "Boss@Example.com",
		TokenTTL:   1,
	})
}

func protectedRouter(a *Authenticator) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/user", a.Authenticate(), func(c *gin.Context) {
		c.String(http.StatusOK, GetIdentity(c).Subject)
	})
	r.GET("/admin", a.Authenticate(), a.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func doGet(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate_MissingAndInvalidToken(t *testing.T) {
	r := protectedRouter(newAuth())

	w := doGet(r, "/user", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"UNAUTHORIZED"`)

	w = doGet(r, "/user", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	other := NewAuthenticator(config.AuthConfig{JWTSecret: "other", TokenTTL: 1})
	forged, err := other.Issue("u1", "", "admin")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/user", forged).Code)
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, doGet(protectedRouter(newAuth()), "/user", token).Code)
}

func TestRequireAdmin_ForbiddenVsAllowed(t *testing.T) {
	a := newAuth()
	r := protectedRouter(a)

	user, err := a.Issue("u1", "someone@example.com", "")
	require.NoError(t, err)
	w := doGet(r, "/user", user)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())

	w = doGet(r, "/admin", user)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Forbidden: Admin access required")

	admin, err := a.Issue("u2", "", RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, doGet(r, "/admin", admin).Code)

	byEmail, err := a.Issue("u3", "boss@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, doGet(r, "/admin", byEmail).Code)
}

func TestValidateToken_MetadataRoles(t *testing.T) {
	a := newAuth()
	claims := &Claims{
		AppMetadata:  &RoleMetadata{Role: "admin"},
		UserMetadata: &RoleMetadata{Role: "editor"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u9",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	id, err := a.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "editor"}, id.Roles)
	assert.True(t, a.IsAdmin(id))
}

func TestRequestID_EchoesOrGenerates(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		assert.Equal(t, GetRequestID(c), RequestIDFromContext(c.Request.Context()))
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Header().Get(HeaderRequestID), 36)
}

func TestRecovery_ReturnsEnvelope(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery(zap.NewNop()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"INTERNAL_ERROR"`)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/access"
	"github.com/qbic/datamanager/internal/domain/identity"
	"github.com/qbic/datamanager/internal/domain/shared"
	"github.com/qbic/datamanager/internal/infrastructure/auth"
	"github.com/qbic/datamanager/internal/infrastructure/config"
	"github.com/qbic/datamanager/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	r.Use(handlers...)
	r.Any("/*path", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(UserIDKey)})
	})
	return r
}

func serve(r http.Handler, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.False(t, resp.Success)
	return resp.Error.Code
}

func TestRequestID(t *testing.T) {
	r := newEngine()

	w := serve(r, http.MethodGet, "/x", nil)
	assert.Len(t, w.Header().Get(RequestIDHeader), 32)

	w = serve(r, http.MethodGet, "/x", http.Header{RequestIDHeader: {"abc-123"}})
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	w = serve(r, http.MethodGet, "/x", http.Header{RequestIDHeader: {strings.Repeat("a", 200)}})
	assert.Len(t, w.Header().Get(RequestIDHeader), 32)
}

func TestCORS(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"https://portal.example.org"}
	r := newEngine(CORS(cfg))

	w := serve(r, http.MethodOptions, "/x", http.Header{"Origin": {"https://portal.example.org"}})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://portal.example.org", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Link")

	w = serve(r, http.MethodGet, "/x", http.Header{"Origin": {"https://evil.example.com"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSecure(t *testing.T) {
	cfg := DefaultSecurityConfig()
	cfg.HSTSEnabled = true
	r := newEngine(Secure(cfg))

	w := serve(r, http.MethodGet, "/api/v1/projects", nil)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "max-age=31536000; includeSubDomains", w.Header().Get("Strict-Transport-Security"))

	w = serve(r, http.MethodGet, "/swagger/index.html", nil)
	assert.Empty(t, w.Header().Get("Content-Security-Policy"))
}

func TestBodyLimit(t *testing.T) {
	r := newEngine(BodyLimit(10))

	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(strings.Repeat("x", 11)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, dto.ErrCodeTooLarge, errorCode(t, w))

	req = httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("small"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiter_Window(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	ok, remaining := rl.Allow("a")
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)
	ok, _ = rl.Allow("a")
	assert.True(t, ok)
	ok, remaining = rl.Allow("a")
	assert.False(t, ok)
	assert.Equal(t, 0, remaining)

	ok, _ = rl.Allow("b")
	assert.True(t, ok, "keys are counted separately")

	now = now.Add(time.Minute)
	ok, _ = rl.Allow("a")
	assert.True(t, ok, "a new window starts after the period")

	now = now.Add(5 * time.Minute)
	rl.cleanup()
	assert.Empty(t, rl.clients)
}

func TestRateLimit_Middleware(t *testing.T) {
	r := newEngine(RateLimit(NewRateLimiter(1, time.Hour)))

	w := serve(r, http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = serve(r, http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "3600", w.Header().Get("Retry-After"))
	assert.Equal(t, dto.ErrCodeRateLimited, errorCode(t, w))
}

type fakeTokens struct {
	user *identity.User
	err  error
}

func (f fakeTokens) AuthenticateToken(context.Context, string) (*identity.User, error) {
	return f.user, f.err
}

func newJWT() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-with-enough-length-123",
		RefreshSecret:          "refresh-secret-with-enough-length",
		AccessTokenExpiration:  time.Hour,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "datamanager-test",
		MaxRefreshCount:        3,
	})
}

func bearer(token string) http.Header {
	return http.Header{"Authorization": {"Bearer " + token}}
}

func TestAuthenticate(t *testing.T) {
	jwtService := newJWT()
	userID := uuid.New()
	pair, err := jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID: userID, Username: "jdoe", Authorities: []string{"ROLE_USER"},
	})
	require.NoError(t, err)

	cfg := DefaultAuthConfig(jwtService)
	cfg.Revocations = auth.NewMemoryRevocations()
	tokenUser := &identity.User{BaseAggregateRoot: shared.BaseAggregateRoot{BaseEntity: shared.BaseEntity{ID: uuid.New()}}}
	cfg.Tokens = fakeTokens{user: tokenUser}
	r := newEngine(Authenticate(cfg))

	t.Run("public path", func(t *testing.T) {
		w := serve(r, http.MethodPost, "/api/v1/auth/login", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing header", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/api/v1/projects", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeUnauthorized, errorCode(t, w))
	})

	t.Run("valid jwt", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/api/v1/projects", bearer(pair.AccessToken))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), userID.String())
	})

	t.Run("refresh token rejected", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/api/v1/projects", bearer(pair.RefreshToken))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeTokenInvalid, errorCode(t, w))
	})

	t.Run("personal access token", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/api/v1/projects", bearer(identity.TokenPrefix+"abc"))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), tokenUser.ID.String())
	})

	t.Run("revoked jwt", func(t *testing.T) {
		claims, err := jwtService.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)
		require.NoError(t, cfg.Revocations.RevokeToken(context.Background(), claims.ID, time.Hour))

		w := serve(r, http.MethodGet, "/api/v1/projects", bearer(pair.AccessToken))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeTokenInvalid, errorCode(t, w))
	})
}

func TestAuthenticate_ExpiredPersonalToken(t *testing.T) {
	cfg := DefaultAuthConfig(newJWT())
	cfg.Tokens = fakeTokens{err: identity.ErrTokenExpired}
	r := newEngine(Authenticate(cfg))

	w := serve(r, http.MethodGet, "/api/v1/projects", bearer(identity.TokenPrefix+"old"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeTokenExpired, errorCode(t, w))
}

type fakeChecker struct {
	allowed bool
	err     error
	got     access.Permission
}

func (f *fakeChecker) HasPermission(_ context.Context, _ access.Subject, _ uuid.UUID, permission access.Permission) (bool, error) {
	f.got = permission
	return f.allowed, f.err
}

func guardedEngine(checker PermissionChecker, userID string) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), func(c *gin.Context) {
		if userID != "" {
			c.Set(UserIDKey, userID)
		}
		c.Next()
	})
	guard := NewProjectGuard(checker, zap.NewNop())
	r.GET("/projects/:id", guard.Require(access.PermissionWrite), func(c *gin.Context) {
		id, _ := GetProjectID(c)
		c.String(http.StatusOK, id.String())
	})
	return r
}

func TestProjectGuard(t *testing.T) {
	projectID := uuid.New()
	user := uuid.NewString()

	t.Run("allowed", func(t *testing.T) {
		checker := &fakeChecker{allowed: true}
		w := serve(guardedEngine(checker, user), http.MethodGet, "/projects/"+projectID.String(), nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, projectID.String(), w.Body.String())
		assert.Equal(t, access.PermissionWrite, checker.got)
	})

	t.Run("denied", func(t *testing.T) {
		w := serve(guardedEngine(&fakeChecker{}, user), http.MethodGet, "/projects/"+projectID.String(), nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, dto.ErrCodeForbidden, errorCode(t, w))
	})

	t.Run("anonymous", func(t *testing.T) {
		w := serve(guardedEngine(&fakeChecker{allowed: true}, ""), http.MethodGet, "/projects/"+projectID.String(), nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		w := serve(guardedEngine(&fakeChecker{allowed: true}, user), http.MethodGet, "/projects/nope", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("checker failure", func(t *testing.T) {
		w := serve(guardedEngine(&fakeChecker{err: errors.New("db down")}, user), http.MethodGet, "/projects/"+projectID.String(), nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestRequireAuthority(t *testing.T) {
	r := gin.New()
	r.GET("/admin", func(c *gin.Context) {
		c.Set(AuthoritiesKey, strings.Split(c.Query("roles"), ","))
		c.Next()
	}, RequireAuthority(access.AdminAuthority), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodGet, "/admin?roles=ROLE_USER,ROLE_ADMIN", nil).Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/admin?roles=ROLE_USER", nil).Code)
}

func TestSwaggerProtection(t *testing.T) {
	deny := func(c *gin.Context) {
		abortWithError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
	}

	r := newEngine(SwaggerProtection(SwaggerConfig{Enabled: false}, nil))
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/swagger/index.html", nil).Code)

	r = newEngine(SwaggerProtection(SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.0/8"}}, nil))
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/swagger/index.html", nil).Code)

	r = newEngine(SwaggerProtection(SwaggerConfig{Enabled: true, AllowedIPs: []string{"192.0.2.1"}}, nil))
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/swagger/index.html", nil).Code)

	r = newEngine(SwaggerProtection(SwaggerConfig{Enabled: true, RequireAuth: true}, deny))
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/swagger/index.html", nil).Code)
}

type createRequest struct {
	Title string `json:"title" binding:"required,max=5"`
}

func TestHandleValidationError(t *testing.T) {
	SetupValidator()
	r := gin.New()
	r.Use(RequestID())
	r.POST("/x", func(c *gin.Context) {
		var req createRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})

	send := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := send(`{"title":"too long"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "title", resp.Error.Details[0].Field)
	assert.Equal(t, "Must be at most 5 characters", resp.Error.Details[0].Message)

	w = send(`{`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidJSON, errorCode(t, w))

	assert.Equal(t, http.StatusOK, send(`{"title":"ok"}`).Code)
}

type identifiersRequest struct {
	Code   string   `json:"code" binding:"omitempty,project_code"`
	ROR    string   `json:"ror" binding:"omitempty,ror"`
	Levels []string `json:"levels" binding:"omitempty,min=2"`
}

func TestSetupValidator_DomainTags(t *testing.T) {
	SetupValidator()
	bind := func(body string) []dto.ValidationDetail {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		var req identifiersRequest
		return ValidationDetails(c.ShouldBindJSON(&req))
	}

	assert.Nil(t, bind(`{"code":"Q2ABCD","ror":"https://ror.org/03a1kwz48","levels":["a","b"]}`))
	assert.Nil(t, bind(`{"ror":"03a1kwz48"}`))

	details := bind(`{"code":"X1ABCD"}`)
	require.Len(t, details, 1)
	assert.Equal(t, dto.ValidationDetail{Field: "code", Message: "Invalid project code"}, details[0])

	details = bind(`{"ror":"https://example.org/tuebingen"}`)
	require.Len(t, details, 1)
	assert.Equal(t, "ror", details[0].Field)

	details = bind(`{"levels":["a"]}`)
	require.Len(t, details, 1)
	assert.Equal(t, "Must contain at least 2 entries", details[0].Message)
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", StatusClass(204))
	assert.Equal(t, "4xx", StatusClass(404))
	assert.Equal(t, "5xx", StatusClass(503))
}

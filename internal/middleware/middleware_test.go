package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-workforce/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env.Error.Code
}

func withIdentity(companyID, employeeID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("company_id", companyID)
		c.Set("employee_id", employeeID)
		c.Set("role", role)
		c.Next()
	}
}

func TestAuthMiddleware(t *testing.T) {
	router := gin.New()
	router.GET("/me", AuthMiddleware(testSecret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"company_id":  c.GetString("company_id"),
			"employee_id": c.GetString("employee_id"),
			"role":        c.GetString("role"),
		})
	})

	valid := jwt.MapClaims{
		"user_id":     "user-1",
		"company_id":  "company-1",
		"employee_id": "emp-1",
		"role":        "manager",
		"exp":         time.Now().Add(time.Hour).Unix(),
	}

	tests := []struct {
		name   string
		header string
		cookie string
		status int
		code   string
	}{
		{name: "bearer token", header: "Bearer " + signToken(t, testSecret, valid), status: http.StatusOK},
		{name: "cookie token", cookie: signToken(t, testSecret, valid), status: http.StatusOK},
		{name: "missing token", status: http.StatusUnauthorized, code: "UNAUTHORIZED"},
		{name: "wrong secret", header: "Bearer " + signToken(t, "other", valid), status: http.StatusUnauthorized, code: "INVALID_TOKEN"},
		{
			name: "expired",
			header: "Bearer " + signToken(t, testSecret, jwt.MapClaims{
				"company_id":  "company-1",
				"employee_id": "emp-1",
				"exp":         time.Now().Add(-time.Minute).Unix(),
			}),
			status: http.StatusUnauthorized,
			code:   "TOKEN_EXPIRED",
		},
		{
			name:   "missing tenant claim",
			header: "Bearer " + signToken(t, testSecret, jwt.MapClaims{"employee_id": "emp-1"}),
			status: http.StatusUnauthorized,
			code:   "INVALID_TOKEN",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "access_token", Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, errorCode(t, w))
				return
			}
			var got map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, "company-1", got["company_id"])
			assert.Equal(t, "emp-1", got["employee_id"])
			assert.Equal(t, "manager", got["role"])
		})
	}
}

type fakeEnforcer struct {
	got     rbac.EnforceRequest
	allowed bool
	err     error
}

func (f *fakeEnforcer) Enforce(req rbac.EnforceRequest) (bool, error) {
	f.got = req
	return f.allowed, f.err
}

func TestRBACAuthorize(t *testing.T) {
	serve := func(enforcer *fakeEnforcer, identity gin.HandlerFunc) *httptest.ResponseRecorder {
		router := gin.New()
		router.POST("/approvals/:kind/:id/approve", identity, RBACAuthorize(enforcer, "approval", "approve"), func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/approvals/leave/1/approve", nil))
		return w
	}

	t.Run("allowed passes role through", func(t *testing.T) {
		enforcer := &fakeEnforcer{allowed: true}
		w := serve(enforcer, withIdentity("company-1", "emp-1", "hr"))

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, rbac.EnforceRequest{
			EmployeeID: "emp-1",
			Role:       "hr",
			CompanyID:  "company-1",
			Resource:   "approval",
			Action:     "approve",
		}, enforcer.got)
	})

	t.Run("denied", func(t *testing.T) {
		w := serve(&fakeEnforcer{}, withIdentity("company-1", "emp-1", "employee"))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "FORBIDDEN", errorCode(t, w))
	})

	t.Run("missing identity", func(t *testing.T) {
		w := serve(&fakeEnforcer{allowed: true}, func(c *gin.Context) { c.Next() })

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("enforcer error is hidden", func(t *testing.T) {
		w := serve(&fakeEnforcer{err: errors.New("casbin: bad matcher")}, withIdentity("company-1", "emp-1", "hr"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "casbin")
	})
}

func TestRateLimitByUser(t *testing.T) {
	router := gin.New()
	router.POST("/bulk", withIdentity("company-1", "emp-1", "manager"), RateLimitByUser(rate.Every(time.Hour), 1), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/bulk", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/bulk", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "TOO_MANY_REQUESTS", errorCode(t, w))
}

type redismockClient struct {
	redismock.ClientMock
	db *redis.Client
}

func newRedismock() *redismockClient {
	db, mock := redismock.NewClientMock()
	return &redismockClient{ClientMock: mock, db: db}
}

func TestIdempotency(t *testing.T) {
	const (
		path = "/approvals/bulk/approve"
		key  = "abc-123"
	)
	ttl := 24 * time.Hour
	cacheKey := idempotencyKey(path, "company-1", "emp-1", key)

	newRouter := func(mock *redismockClient, calls *int) *gin.Engine {
		router := gin.New()
		router.POST(path, withIdentity("company-1", "emp-1", "manager"), Idempotency(mock.db, ttl), func(c *gin.Context) {
			*calls++
			c.Data(http.StatusOK, "application/json", []byte(`{"ok":true}`))
		})
		return router
	}
	post := func(router *gin.Engine) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set("Idempotency-Key", key)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("first call stores response", func(t *testing.T) {
		mock := newRedismock()
		calls := 0
		payload, _ := json.Marshal(cachedResponse{Status: http.StatusOK, Body: `{"ok":true}`})

		mock.ExpectGet(cacheKey).RedisNil()
		mock.ExpectSetNX(cacheKey+":lock", "1", idempotencyLock).SetVal(true)
		mock.ExpectSet(cacheKey, payload, ttl).SetVal("OK")
		mock.ExpectDel(cacheKey + ":lock").SetVal(1)

		w := post(newRouter(mock, &calls))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("replay skips handler", func(t *testing.T) {
		mock := newRedismock()
		calls := 0
		payload, _ := json.Marshal(cachedResponse{Status: http.StatusOK, Body: `{"ok":true,"replayed":1}`})

		mock.ExpectGet(cacheKey).SetVal(string(payload))

		w := post(newRouter(mock, &calls))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 0, calls)
		assert.Equal(t, "true", w.Header().Get("Idempotent-Replayed"))
		assert.JSONEq(t, `{"ok":true,"replayed":1}`, w.Body.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate in flight", func(t *testing.T) {
		mock := newRedismock()
		calls := 0

		mock.ExpectGet(cacheKey).RedisNil()
		mock.ExpectSetNX(cacheKey+":lock", "1", idempotencyLock).SetVal(false)

		w := post(newRouter(mock, &calls))

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "PROCESSING", errorCode(t, w))
		assert.Equal(t, 0, calls)
	})

	t.Run("no key passes through", func(t *testing.T) {
		mock := newRedismock()
		calls := 0
		router := newRouter(mock, &calls)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

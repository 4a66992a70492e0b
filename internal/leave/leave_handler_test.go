package leave_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-workforce/internal/conflict"
	"go-workforce/internal/leave"
	leaveerrors "go-workforce/internal/leave/errors"
	"go-workforce/internal/request"
	"go-workforce/internal/tenant"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Ok       bool            `json:"ok"`
	Data     json.RawMessage `json:"data"`
	Warnings []string        `json:"warnings"`
	Error    *apiError       `json:"error"`
}

func decodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	err := json.Unmarshal(body, &env)
	assert.NoError(t, err)
	return env
}

type fakeLeaveService struct {
	createFn         func(ctx context.Context, tc tenant.Context, req leave.CreateLeaveRequest) (leave.SubmitLeaveResponse, error)
	getByIDFn        func(ctx context.Context, tc tenant.Context, id string) (leave.LeaveResponse, error)
	listMineFn       func(ctx context.Context, tc tenant.Context) ([]leave.LeaveResponse, error)
	checkConflictsFn func(ctx context.Context, tc tenant.Context, q leave.ConflictQuery) (conflict.Report, error)
}

func (f *fakeLeaveService) Create(ctx context.Context, tc tenant.Context, req leave.CreateLeaveRequest) (leave.SubmitLeaveResponse, error) {
	return f.createFn(ctx, tc, req)
}
func (f *fakeLeaveService) GetByID(ctx context.Context, tc tenant.Context, id string) (leave.LeaveResponse, error) {
	return f.getByIDFn(ctx, tc, id)
}
func (f *fakeLeaveService) ListMine(ctx context.Context, tc tenant.Context) ([]leave.LeaveResponse, error) {
	return f.listMineFn(ctx, tc)
}
func (f *fakeLeaveService) CheckConflicts(ctx context.Context, tc tenant.Context, q leave.ConflictQuery) (conflict.Report, error) {
	return f.checkConflictsFn(ctx, tc, q)
}
func (f *fakeLeaveService) Advise(ctx context.Context, r request.Request) []string {
	return nil
}

func newLeaveTestContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestLeaveHandler_Create(t *testing.T) {
	t.Run("success carries warnings", func(t *testing.T) {
		companyID := uuid.NewString()
		actorID := uuid.NewString()

		svc := &fakeLeaveService{
			createFn: func(ctx context.Context, tc tenant.Context, req leave.CreateLeaveRequest) (leave.SubmitLeaveResponse, error) {
				assert.Equal(t, companyID, tc.CompanyID)
				assert.Equal(t, actorID, tc.ActorID)
				assert.Equal(t, tenant.RoleEmployee, tc.Role)
				return leave.SubmitLeaveResponse{
					Leave: leave.LeaveResponse{
						ID:         uuid.NewString(),
						Reference:  "LV-000001",
						EmployeeID: tc.ActorID,
						LeaveType:  req.LeaveType,
						TotalDays:  decimal.NewFromInt(2),
						Status:     leave.StatusPending,
					},
					Warnings: []string{"insufficient ANNUAL balance"},
				}, nil
			},
		}

		h := leave.NewHandler(svc)
		c, w := newLeaveTestContext(http.MethodPost, "/leaves",
			`{"leave_type":"ANNUAL","start_date":"2026-03-10","end_date":"2026-03-11","reason":"Family matters"}`)
		c.Set("company_id", companyID)
		c.Set("employee_id", actorID)
		c.Set("role", "employee")

		h.Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		assert.Equal(t, []string{"insufficient ANNUAL balance"}, env.Warnings)

		var got leave.SubmitLeaveResponse
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, "LV-000001", got.Leave.Reference)
		assert.True(t, decimal.NewFromInt(2).Equal(got.Leave.TotalDays))
	})

	t.Run("validation error", func(t *testing.T) {
		h := leave.NewHandler(&fakeLeaveService{})
		c, w := newLeaveTestContext(http.MethodPost, "/leaves", `{}`)

		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		require.NotNil(t, env.Error)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})

	t.Run("overlap maps to conflict", func(t *testing.T) {
		svc := &fakeLeaveService{
			createFn: func(ctx context.Context, tc tenant.Context, req leave.CreateLeaveRequest) (leave.SubmitLeaveResponse, error) {
				return leave.SubmitLeaveResponse{}, leaveerrors.ErrLeaveOverlap
			},
		}
		h := leave.NewHandler(svc)
		c, w := newLeaveTestContext(http.MethodPost, "/leaves",
			`{"leave_type":"ANNUAL","start_date":"2026-03-10","end_date":"2026-03-11"}`)

		h.Create(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unexpected error is hidden", func(t *testing.T) {
		svc := &fakeLeaveService{
			createFn: func(ctx context.Context, tc tenant.Context, req leave.CreateLeaveRequest) (leave.SubmitLeaveResponse, error) {
				return leave.SubmitLeaveResponse{}, errors.New("pq: connection reset")
			},
		}
		h := leave.NewHandler(svc)
		c, w := newLeaveTestContext(http.MethodPost, "/leaves",
			`{"leave_type":"ANNUAL","start_date":"2026-03-10","end_date":"2026-03-11"}`)

		h.Create(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		require.NotNil(t, env.Error)
		assert.NotContains(t, env.Error.Message, "pq")
	})
}

func TestLeaveHandler_GetByID(t *testing.T) {
	id := uuid.NewString()
	svc := &fakeLeaveService{
		getByIDFn: func(ctx context.Context, tc tenant.Context, got string) (leave.LeaveResponse, error) {
			if got != id {
				return leave.LeaveResponse{}, leaveerrors.ErrLeaveNotFound
			}
			return leave.LeaveResponse{ID: id}, nil
		},
	}
	h := leave.NewHandler(svc)

	t.Run("found", func(t *testing.T) {
		c, w := newLeaveTestContext(http.MethodGet, "/leaves/"+id, "")
		c.Params = gin.Params{{Key: "id", Value: id}}

		h.GetByID(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		c, w := newLeaveTestContext(http.MethodGet, "/leaves/x", "")
		c.Params = gin.Params{{Key: "id", Value: "x"}}

		h.GetByID(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestLeaveHandler_CheckConflicts(t *testing.T) {
	t.Run("binds query", func(t *testing.T) {
		svc := &fakeLeaveService{
			checkConflictsFn: func(ctx context.Context, tc tenant.Context, q leave.ConflictQuery) (conflict.Report, error) {
				assert.Equal(t, "2026-01-11", q.StartDate)
				assert.Equal(t, "2026-01-13", q.EndDate)
				return conflict.Report{HasConflict: true, Level: conflict.LevelWarning}, nil
			},
		}
		h := leave.NewHandler(svc)
		c, w := newLeaveTestContext(http.MethodGet, "/leaves/conflicts?start_date=2026-01-11&end_date=2026-01-13", "")

		h.CheckConflicts(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		var report conflict.Report
		require.NoError(t, json.Unmarshal(env.Data, &report))
		assert.Equal(t, conflict.LevelWarning, report.Level)
	})

	t.Run("missing dates", func(t *testing.T) {
		h := leave.NewHandler(&fakeLeaveService{})
		c, w := newLeaveTestContext(http.MethodGet, "/leaves/conflicts", "")

		h.CheckConflicts(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

package approval_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-workforce/internal/approval"
	approvalerrors "go-workforce/internal/approval/errors"
	"go-workforce/internal/request"
	"go-workforce/internal/tenant"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeApprovalService struct {
	approval.Service
	approveFn     func(ctx context.Context, tc tenant.Context, kind, id string, comment *string) (approval.Result, error)
	bulkApproveFn func(ctx context.Context, tc tenant.Context, items []approval.BulkItem, comment *string) (approval.BulkApproveResult, error)
}

func (f *fakeApprovalService) Approve(ctx context.Context, tc tenant.Context, kind, id string, comment *string) (approval.Result, error) {
	return f.approveFn(ctx, tc, kind, id, comment)
}

func (f *fakeApprovalService) BulkApprove(ctx context.Context, tc tenant.Context, items []approval.BulkItem, comment *string) (approval.BulkApproveResult, error) {
	return f.bulkApproveFn(ctx, tc, items, comment)
}

type envelope struct {
	Ok       bool            `json:"ok"`
	Data     json.RawMessage `json:"data"`
	Warnings []string        `json:"warnings"`
	Error    *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func newApprovalTestContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("company_id", uuid.NewString())
	c.Set("employee_id", uuid.NewString())
	c.Set("role", "manager")
	return c, w
}

func TestApprovalHandler_Approve(t *testing.T) {
	id := uuid.NewString()

	t.Run("empty body and warnings", func(t *testing.T) {
		svc := &fakeApprovalService{
			approveFn: func(ctx context.Context, tc tenant.Context, kind, got string, comment *string) (approval.Result, error) {
				assert.Equal(t, "leave", kind)
				assert.Equal(t, id, got)
				assert.Nil(t, comment)
				assert.Equal(t, tenant.RoleManager, tc.Role)
				return approval.Result{Kind: request.KindLeave, ID: got, Status: "APPROVED", Final: true, Warnings: []string{"team overlap"}}, nil
			},
		}
		h := approval.NewHandler(svc)
		c, w := newApprovalTestContext(http.MethodPost, "/approvals/leave/"+id+"/approve", "")
		c.Params = gin.Params{{Key: "kind", Value: "leave"}, {Key: "id", Value: id}}

		h.Approve(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var env envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.True(t, env.Ok)
		assert.Equal(t, []string{"team overlap"}, env.Warnings)
	})

	t.Run("comment is passed through", func(t *testing.T) {
		svc := &fakeApprovalService{
			approveFn: func(ctx context.Context, tc tenant.Context, kind, got string, comment *string) (approval.Result, error) {
				require.NotNil(t, comment)
				assert.Equal(t, "ok by me", *comment)
				return approval.Result{}, nil
			},
		}
		h := approval.NewHandler(svc)
		c, w := newApprovalTestContext(http.MethodPost, "/approvals/leave/"+id+"/approve", `{"comment":"ok by me"}`)
		c.Params = gin.Params{{Key: "kind", Value: "leave"}, {Key: "id", Value: id}}

		h.Approve(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("self approval", func(t *testing.T) {
		svc := &fakeApprovalService{
			approveFn: func(ctx context.Context, tc tenant.Context, kind, got string, comment *string) (approval.Result, error) {
				return approval.Result{}, approvalerrors.ErrSelfApproval
			},
		}
		h := approval.NewHandler(svc)
		c, w := newApprovalTestContext(http.MethodPost, "/approvals/leave/"+id+"/approve", "")
		c.Params = gin.Params{{Key: "kind", Value: "leave"}, {Key: "id", Value: id}}

		h.Approve(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
		var env envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		require.NotNil(t, env.Error)
		assert.Equal(t, "FORBIDDEN_SELF_APPROVAL", env.Error.Code)
	})

	t.Run("invalid state", func(t *testing.T) {
		svc := &fakeApprovalService{
			approveFn: func(ctx context.Context, tc tenant.Context, kind, got string, comment *string) (approval.Result, error) {
				return approval.Result{}, approvalerrors.ErrInvalidState
			},
		}
		h := approval.NewHandler(svc)
		c, w := newApprovalTestContext(http.MethodPost, "/approvals/leave/"+id+"/approve", "")
		c.Params = gin.Params{{Key: "kind", Value: "leave"}, {Key: "id", Value: id}}

		h.Approve(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestApprovalHandler_BulkApprove(t *testing.T) {
	t.Run("binds items", func(t *testing.T) {
		svc := &fakeApprovalService{
			bulkApproveFn: func(ctx context.Context, tc tenant.Context, items []approval.BulkItem, comment *string) (approval.BulkApproveResult, error) {
				require.Len(t, items, 2)
				assert.Equal(t, "expense", items[1].Type)
				return approval.BulkApproveResult{Approved: 1, Failed: 1, Errors: []string{"expense:x - request not found"}}, nil
			},
		}
		h := approval.NewHandler(svc)
		c, w := newApprovalTestContext(http.MethodPost, "/approvals/bulk/approve",
			`{"items":[{"type":"leave","id":"a"},{"type":"expense","id":"x"}]}`)

		h.BulkApprove(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var env envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		var res approval.BulkApproveResult
		require.NoError(t, json.Unmarshal(env.Data, &res))
		assert.Equal(t, 1, res.Approved)
		assert.Equal(t, 1, res.Failed)
	})

	t.Run("missing items", func(t *testing.T) {
		h := approval.NewHandler(&fakeApprovalService{})
		c, w := newApprovalTestContext(http.MethodPost, "/approvals/bulk/approve", `{"items":[]}`)

		h.BulkApprove(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

package tenant_test

import (
	"net/http/httptest"
	"testing"

	"go-workforce/internal/shared/apperror"
	"go-workforce/internal/tenant"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRole_AtLeast(t *testing.T) {
	tests := []struct {
		role tenant.Role
		min  tenant.Role
		want bool
	}{
		{tenant.RoleEmployee, tenant.RoleManager, false},
		{tenant.RoleManager, tenant.RoleManager, true},
		{tenant.RoleHR, tenant.RoleManager, true},
		{tenant.RoleAdmin, tenant.RoleHR, true},
		{tenant.RoleManager, tenant.RoleHR, false},
		{tenant.Role("ghost"), tenant.RoleEmployee, false},
		{tenant.RoleAdmin, tenant.Role("ghost"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+">="+string(tt.min), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.AtLeast(tt.min))
		})
	}
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, tenant.RoleHR, tenant.ParseRole(" HR "))
	assert.Equal(t, tenant.RoleEmployee, tenant.ParseRole("superuser"))
}

func TestContext_RequireRole(t *testing.T) {
	tc := tenant.New(uuid.NewString(), uuid.NewString(), tenant.RoleEmployee)
	assert.ErrorIs(t, tc.RequireRole(tenant.RoleManager), apperror.ErrForbidden)
	assert.NoError(t, tc.RequireRole(tenant.RoleEmployee))
}

func TestContext_Validate(t *testing.T) {
	assert.NoError(t, tenant.New(uuid.NewString(), uuid.NewString(), tenant.RoleAdmin).Validate())
	assert.Error(t, tenant.New("acme", uuid.NewString(), tenant.RoleAdmin).Validate())
}

func TestFromGin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set("company_id", "c-1")
	c.Set("user_id", "u-1")
	c.Set("role", "manager")

	tc := tenant.FromGin(c)

	assert.Equal(t, "c-1", tc.CompanyID)
	assert.Equal(t, "u-1", tc.ActorID)
	assert.Equal(t, tenant.RoleManager, tc.Role)
}

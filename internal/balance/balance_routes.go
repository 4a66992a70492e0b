package balance

import (
	"go-workforce/internal/middleware"
	"go-workforce/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
) {
	balances := r.Group("/leaves/balance")
	{
		balances.GET("", middleware.RBACAuthorize(rbacService, "leave_balance", "read"), handler.GetBalance)
		balances.GET("/:employee_id", middleware.RBACAuthorize(rbacService, "leave_balance", "read"), handler.GetBalance)
	}

	policies := r.Group("/leave-policies")
	{
		policies.GET("", middleware.RBACAuthorize(rbacService, "leave_policy", "read"), handler.ListPolicies)
		policies.POST("", middleware.RBACAuthorize(rbacService, "leave_policy", "manage"), handler.CreatePolicy)
		policies.PUT("/:id", middleware.RBACAuthorize(rbacService, "leave_policy", "manage"), handler.UpdatePolicy)
		policies.POST("/:id/assign", middleware.RBACAuthorize(rbacService, "leave_policy", "manage"), handler.AssignPolicy)
	}
}

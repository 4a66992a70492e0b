package expense

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
	expenses := r.Group("/expenses")
	{
		expenses.GET("", middleware.RBACAuthorize(rbacService, "expense", "read"), handler.ListMine)
		expenses.POST("", middleware.RBACAuthorize(rbacService, "expense", "create"), handler.Create)
		expenses.GET("/:id", middleware.RBACAuthorize(rbacService, "expense", "read"), handler.GetByID)
	}
}

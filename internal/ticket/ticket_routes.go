package ticket

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
	tickets := r.Group("/tickets")
	{
		tickets.GET("", middleware.RBACAuthorize(rbacService, "ticket", "read"), handler.ListMine)
		tickets.POST("", middleware.RBACAuthorize(rbacService, "ticket", "create"), handler.Create)
		tickets.GET("/:id", middleware.RBACAuthorize(rbacService, "ticket", "read"), handler.GetByID)
	}
}

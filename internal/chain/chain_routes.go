package chain

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
	chains := r.Group("/approval-chains")
	{
		chains.GET("", middleware.RBACAuthorize(rbacService, "approval_chain", "read"), handler.List)
		chains.POST("", middleware.RBACAuthorize(rbacService, "approval_chain", "create"), handler.Create)
		chains.GET("/:id", middleware.RBACAuthorize(rbacService, "approval_chain", "read"), handler.GetByID)
		chains.PUT("/:id", middleware.RBACAuthorize(rbacService, "approval_chain", "update"), handler.Update)
		chains.DELETE("/:id", middleware.RBACAuthorize(rbacService, "approval_chain", "delete"), handler.Delete)
	}
}

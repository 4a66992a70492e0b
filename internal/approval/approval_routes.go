package approval

import (
	"go-workforce/internal/middleware"
	"go-workforce/internal/rbac"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the approval inbox and transitions. bulk is applied
// to the bulk endpoints only, typically idempotency and a per-user rate
// limit.
func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	bulk ...gin.HandlerFunc,
) {
	approvals := r.Group("/approvals")
	{
		approvals.GET("/pending", middleware.RBACAuthorize(rbacService, "approval", "read"), handler.ListPending)
		approvals.GET("/counts", middleware.RBACAuthorize(rbacService, "approval", "read"), handler.Counts)

		bulkGroup := approvals.Group("/bulk", bulk...)
		bulkGroup.POST("/approve", middleware.RBACAuthorize(rbacService, "approval", "bulk"), handler.BulkApprove)
		bulkGroup.POST("/reject", middleware.RBACAuthorize(rbacService, "approval", "bulk"), handler.BulkReject)

		approvals.POST("/expense/:id/reimburse", middleware.RBACAuthorize(rbacService, "expense", "reimburse"), handler.Reimburse)

		approvals.POST("/:kind/:id/approve", middleware.RBACAuthorize(rbacService, "approval", "approve"), handler.Approve)
		approvals.POST("/:kind/:id/reject", middleware.RBACAuthorize(rbacService, "approval", "approve"), handler.Reject)
		approvals.POST("/:kind/:id/cancel", handler.Cancel)
	}

	r.POST("/tickets/:id/start", middleware.RBACAuthorize(rbacService, "ticket", "start"), handler.StartProgress)
}

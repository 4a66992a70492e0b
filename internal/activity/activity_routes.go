package activity

import (
	"go-workforce/internal/middleware"
	"go-workforce/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService rbac.Service) {
	r.GET("/activities/:entity_type/:entity_id",
		middleware.RBACAuthorize(rbacService, "activity", "read"),
		handler.ListByEntity,
	)
}

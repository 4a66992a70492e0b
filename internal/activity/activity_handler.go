package activity

import (
	"net/http"

	"go-workforce/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("activity.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("activity.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) ListByEntity(c *gin.Context) {
	resp, err := h.service.ListByEntity(
		c.Request.Context(),
		c.GetString("company_id"),
		c.Param("entity_type"),
		c.Param("entity_id"),
	)
	if err != nil {
		httpErr := response.FromError(c, err)
		h.logger.Warn("list activity failed", zap.Int("status", httpErr.Status), zap.Error(err))
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

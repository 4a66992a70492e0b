package approval

import (
	"net/http"

	"go-workforce/internal/shared/apperror"
	"go-workforce/internal/shared/response"
	"go-workforce/internal/tenant"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("approval.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("approval.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := response.FromError(c, err)
	h.logger.Warn("approval request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
}

// bindComment accepts an empty body.
func bindComment(c *gin.Context) (*string, error) {
	var req ActionRequest
	if c.Request.ContentLength == 0 {
		return nil, nil
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, apperror.MapValidationError(err)
	}
	return req.Comment, nil
}

func (h *Handler) writeResult(c *gin.Context, res Result) {
	response.SuccessWithWarnings(c, http.StatusOK, res, res.Warnings)
}

func (h *Handler) Approve(c *gin.Context) {
	comment, err := bindComment(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	res, err := h.service.Approve(c.Request.Context(), tenant.FromGin(c), c.Param("kind"), c.Param("id"), comment)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	h.writeResult(c, res)
}

func (h *Handler) Reject(c *gin.Context) {
	comment, err := bindComment(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	res, err := h.service.Reject(c.Request.Context(), tenant.FromGin(c), c.Param("kind"), c.Param("id"), comment)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	h.writeResult(c, res)
}

func (h *Handler) Cancel(c *gin.Context) {
	res, err := h.service.Cancel(c.Request.Context(), tenant.FromGin(c), c.Param("kind"), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	h.writeResult(c, res)
}

func (h *Handler) Reimburse(c *gin.Context) {
	res, err := h.service.Reimburse(c.Request.Context(), tenant.FromGin(c), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	h.writeResult(c, res)
}

func (h *Handler) StartProgress(c *gin.Context) {
	res, err := h.service.StartProgress(c.Request.Context(), tenant.FromGin(c), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	h.writeResult(c, res)
}

func (h *Handler) BulkApprove(c *gin.Context) {
	var req BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}
	res, err := h.service.BulkApprove(c.Request.Context(), tenant.FromGin(c), req.Items, req.Comment)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res, nil)
}

func (h *Handler) BulkReject(c *gin.Context) {
	var req BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}
	res, err := h.service.BulkReject(c.Request.Context(), tenant.FromGin(c), req.Items, req.Comment)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res, nil)
}

func (h *Handler) ListPending(c *gin.Context) {
	items, err := h.service.ListPending(c.Request.Context(), tenant.FromGin(c))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items, nil)
}

func (h *Handler) Counts(c *gin.Context) {
	counts, err := h.service.Counts(c.Request.Context(), tenant.FromGin(c))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, counts, nil)
}

package notification

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medisched/scheduler-api/internal/service/notification"
	apperrors "github.com/medisched/scheduler-api/pkg/errors"
	"github.com/medisched/scheduler-api/pkg/httputil"
	"github.com/medisched/scheduler-api/pkg/identity"
)

type Handler struct {
	service *notification.Service
}

func NewHandler(service *notification.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	notifications := r.Group("/notifications")
	{
		notifications.GET("", h.ListNotifications)
	}
}

// RegisterSharedRoutes mounts endpoints usable by both signed-in doctors
// and patient portal visitors identified by their patient ID.
func (h *Handler) RegisterSharedRoutes(r *gin.RouterGroup) {
	r.POST("/notifications/:id/read", h.MarkRead)
}

func (h *Handler) ListNotifications(c *gin.Context) {
	caller := identity.FromContext(c.Request.Context())
	notifications, err := h.service.ListForDoctor(c.Request.Context(), caller)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, notifications)
}

func (h *Handler) MarkRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Invalid("invalid notification ID"))
		return
	}

	caller := identity.FromContext(c.Request.Context())
	patientID := c.Query("patient_id")
	if err := h.service.MarkRead(c.Request.Context(), caller, id, patientID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"read": true})
}

package patient

import (
	"github.com/gin-gonic/gin"

	"github.com/medisched/scheduler-api/internal/model"
	"github.com/medisched/scheduler-api/internal/service/appointment"
	"github.com/medisched/scheduler-api/internal/service/notification"
	"github.com/medisched/scheduler-api/internal/service/patient"
	"github.com/medisched/scheduler-api/pkg/httputil"
	"github.com/medisched/scheduler-api/pkg/identity"
)

type Handler struct {
	service       *patient.Service
	appointments  *appointment.Service
	notifications *notification.Service
}

func NewHandler(service *patient.Service, appointments *appointment.Service, notifications *notification.Service) *Handler {
	return &Handler{
		service:       service,
		appointments:  appointments,
		notifications: notifications,
	}
}

// RegisterRoutes registers the doctor-facing patient operations.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("", h.CreatePatient)
		patients.GET("", h.ListPatients)
		patients.PUT("/:patientId", h.UpdatePatient)
		patients.DELETE("/:patientId", h.DeletePatient)
	}
}

// RegisterPublicRoutes registers the patient-portal reads. They carry no
// account identity; the public patient ID is the only credential.
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	portal := r.Group("/portal/patients/:patientId")
	{
		portal.GET("", h.GetPatient)
		portal.GET("/appointments", h.ListPatientAppointments)
		portal.GET("/notifications", h.ListPatientNotifications)
	}
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindingError(c, err)
		return
	}

	caller := identity.FromContext(c.Request.Context())
	created, err := h.service.Create(c.Request.Context(), caller, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, created)
}

func (h *Handler) ListPatients(c *gin.Context) {
	caller := identity.FromContext(c.Request.Context())
	patients, err := h.service.ListForDoctor(c.Request.Context(), caller)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, patients)
}

func (h *Handler) GetPatient(c *gin.Context) {
	found, err := h.service.GetByPublicID(c.Request.Context(), c.Param("patientId"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, found)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	var req model.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindingError(c, err)
		return
	}

	caller := identity.FromContext(c.Request.Context())
	updated, err := h.service.Update(c.Request.Context(), caller, c.Param("patientId"), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, updated)
}

func (h *Handler) DeletePatient(c *gin.Context) {
	caller := identity.FromContext(c.Request.Context())
	if err := h.service.Delete(c.Request.Context(), caller, c.Param("patientId")); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}

func (h *Handler) ListPatientAppointments(c *gin.Context) {
	history, err := h.appointments.ListForPatient(c.Request.Context(), c.Param("patientId"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, history)
}

func (h *Handler) ListPatientNotifications(c *gin.Context) {
	notifications, err := h.notifications.ListForPatient(c.Request.Context(), c.Param("patientId"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, notifications)
}

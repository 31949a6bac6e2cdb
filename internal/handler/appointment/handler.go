package appointment

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/scheduler-api/internal/handler"
	"github.com/jwalitptl/scheduler-api/internal/model"
	"github.com/jwalitptl/scheduler-api/internal/service/appointment"
)

type Handler struct {
	service *appointment.Service
}

func NewHandler(service *appointment.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) BookAppointment(c *gin.Context) {
	var req model.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	apt, err := h.service.Book(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(apt))
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	apt, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(apt))
}

func (h *Handler) ListAppointments(c *gin.Context) {
	dentistID, err := uuid.Parse(c.Query("dentist_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid dentist ID"))
		return
	}

	var from, to *time.Time
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid from timestamp"))
			return
		}
		from = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid to timestamp"))
			return
		}
		to = &t
	}

	appointments, err := h.service.ListByDentist(c.Request.Context(), dentistID, from, to)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) RescheduleAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	var req model.RescheduleAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	apt, err := h.service.Reschedule(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(apt))
}

func (h *Handler) UpdateAppointmentStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	var req model.UpdateAppointmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	apt, err := h.service.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(apt))
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	if err := h.service.Cancel(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) GetAvailability(c *gin.Context) {
	dentistID, err := uuid.Parse(c.Query("dentist_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid dentist ID"))
		return
	}

	start, err := time.Parse(time.RFC3339, c.Query("start_time"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid start_time"))
		return
	}

	minutes, err := strconv.Atoi(c.Query("duration_minutes"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid duration_minutes"))
		return
	}

	available, err := h.service.CheckAvailability(c.Request.Context(), dentistID, start, minutes)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"available": available}))
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.GET("/availability", h.GetAvailability)
		appointments.POST("", h.BookAppointment)
		appointments.GET("", h.ListAppointments)
		appointments.GET("/:id", h.GetAppointment)
		appointments.PUT("/:id", h.RescheduleAppointment)
		appointments.PATCH("/:id/status", h.UpdateAppointmentStatus)
		appointments.POST("/:id/cancel", h.CancelAppointment)
		appointments.DELETE("/:id", h.DeleteAppointment)
	}
}

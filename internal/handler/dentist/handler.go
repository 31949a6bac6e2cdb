package dentist

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/scheduler-api/internal/handler"
	"github.com/jwalitptl/scheduler-api/internal/model"
	"github.com/jwalitptl/scheduler-api/internal/service/dentist"
)

type Handler struct {
	service *dentist.Service
}

func NewHandler(service *dentist.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CreateDentist(c *gin.Context) {
	var req model.CreateDentistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	d, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(d))
}

func (h *Handler) GetDentist(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid dentist ID"))
		return
	}

	d, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(d))
}

func (h *Handler) ListDentists(c *gin.Context) {
	dentists, err := h.service.List(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(dentists))
}

func (h *Handler) UpdateDentist(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid dentist ID"))
		return
	}

	var req model.UpdateDentistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	d, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(d))
}

func (h *Handler) DeleteDentist(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid dentist ID"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	dentists := r.Group("/dentists")
	{
		dentists.POST("", h.CreateDentist)
		dentists.GET("", h.ListDentists)
		dentists.GET("/:id", h.GetDentist)
		dentists.PUT("/:id", h.UpdateDentist)
		dentists.DELETE("/:id", h.DeleteDentist)
	}
}

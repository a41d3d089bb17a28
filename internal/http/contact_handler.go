package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"contact-book/internal/domain"
	"contact-book/internal/service"
)

// ContactHandler expone la libreta del usuario autenticado bajo /api/contacts.
type ContactHandler struct {
	logger      *zap.Logger
	contactServ *service.ContactService
}

func NewContactHandler(logger *zap.Logger, contactServ *service.ContactService) *ContactHandler {
	return &ContactHandler{logger: logger, contactServ: contactServ}
}

type createContactRequest struct {
	FirstName      string       `json:"first_name" binding:"required"`
	LastName       string       `json:"last_name" binding:"required"`
	Email          string       `json:"email" binding:"required"`
	Phone          string       `json:"phone" binding:"required"`
	Birthday       *domain.Date `json:"birthday"`
	AdditionalInfo *string      `json:"additional_info"`
}

// Create maneja POST /api/contacts/.
func (h *ContactHandler) Create(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	var req createContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, h.logger, "create contact", err)
		return
	}

	contact, err := h.contactServ.Create(c.Request.Context(), caller.ID, service.ContactInput{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		Birthday:       req.Birthday,
		AdditionalInfo: req.AdditionalInfo,
	})
	if err != nil {
		writeServiceError(c, h.logger, "create contact", err)
		return
	}
	c.JSON(http.StatusCreated, contact)
}

// List maneja GET /api/contacts/?skip=&limit=.
func (h *ContactHandler) List(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	var q struct {
		Skip  int `form:"skip,default=0" binding:"gte=0"`
		Limit int `form:"limit,default=10" binding:"gte=0"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, h.logger, "list contacts", err)
		return
	}

	contacts, err := h.contactServ.List(c.Request.Context(), caller.ID, q.Skip, q.Limit)
	if err != nil {
		writeServiceError(c, h.logger, "list contacts", err)
		return
	}
	c.JSON(http.StatusOK, contacts)
}

// Get maneja GET /api/contacts/:id.
func (h *ContactHandler) Get(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	contact, err := h.contactServ.GetByID(c.Request.Context(), caller.ID, c.Param("id"))
	if err != nil {
		writeServiceError(c, h.logger, "get contact", err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

// Update maneja PUT /api/contacts/:id; los campos ausentes no cambian y null limpia birthday o additional_info.
func (h *ContactHandler) Update(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	var patch domain.ContactPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		writeBindError(c, h.logger, "update contact", err)
		return
	}

	contact, err := h.contactServ.Update(c.Request.Context(), caller.ID, c.Param("id"), patch)
	if err != nil {
		writeServiceError(c, h.logger, "update contact", err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

// Delete maneja DELETE /api/contacts/:id.
func (h *ContactHandler) Delete(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	if err := h.contactServ.Delete(c.Request.Context(), caller.ID, c.Param("id")); err != nil {
		writeServiceError(c, h.logger, "delete contact", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Search maneja GET /api/contacts/search/?query=.
func (h *ContactHandler) Search(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	query := c.Query("query")
	if strings.TrimSpace(query) == "" {
		abortWithDetail(c, http.StatusUnprocessableEntity, "query: must be at least 1 character")
		return
	}

	contacts, err := h.contactServ.Search(c.Request.Context(), caller.ID, query)
	if err != nil {
		writeServiceError(c, h.logger, "search contacts", err)
		return
	}
	c.JSON(http.StatusOK, contacts)
}

// UpcomingBirthdays maneja GET /api/contacts/birthdays/upcoming.
func (h *ContactHandler) UpcomingBirthdays(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	contacts, err := h.contactServ.UpcomingBirthdays(c.Request.Context(), caller.ID)
	if err != nil {
		writeServiceError(c, h.logger, "upcoming birthdays", err)
		return
	}
	c.JSON(http.StatusOK, contacts)
}

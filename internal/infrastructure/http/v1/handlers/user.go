package handlers

import (
	"github.com/gin-gonic/gin"

	"backoffice/internal/domain/catalogs/user"
	"backoffice/internal/infrastructure/http/v1/dto"
)

// UserHandler handles HTTP requests for customer accounts.
type UserHandler struct {
	*BaseHandler
	service *user.Service
}

// NewUserHandler creates a new user handler.
func NewUserHandler(base *BaseHandler, service *user.Service) *UserHandler {
	return &UserHandler{BaseHandler: base, service: service}
}

// Create handles POST /catalog/users
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	u := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), u); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, u.ID.String())
}

// Get handles GET /catalog/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	userID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	u, err := h.service.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromUser(u))
}

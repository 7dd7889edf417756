package handlers

import (
	"github.com/gin-gonic/gin"

	"backoffice/internal/domain/catalogs/user"
	"backoffice/internal/domain/documents/waybill"
	"backoffice/internal/infrastructure/http/v1/dto"
)

// IntegrationHandler serves read-only data to the document printer.
type IntegrationHandler struct {
	*BaseHandler
	waybills *waybill.Service
	users    *user.Service
}

// NewIntegrationHandler creates a new integration handler.
func NewIntegrationHandler(base *BaseHandler, waybills *waybill.Service, users *user.Service) *IntegrationHandler {
	return &IntegrationHandler{BaseHandler: base, waybills: waybills, users: users}
}

// PrintableWaybill is a waybill with its customer, ready for rendering.
type PrintableWaybill struct {
	dto.WaybillResponse
	Customer dto.UserResponse `json:"customer"`
}

// Waybill handles GET /integration/waybills/:id
func (h *IntegrationHandler) Waybill(c *gin.Context) {
	waybillID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	w, err := h.waybills.GetByID(ctx, waybillID)
	if err != nil {
		h.Error(c, err)
		return
	}
	customer, err := h.users.GetByID(ctx, w.CustomerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, PrintableWaybill{
		WaybillResponse: dto.FromWaybill(w),
		Customer:        dto.FromUser(customer),
	})
}

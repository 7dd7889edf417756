package handlers

import (
	"github.com/gin-gonic/gin"

	"backoffice/internal/domain/registers/stock"
	"backoffice/internal/infrastructure/http/v1/dto"
)

// StockHandler handles stock register reports.
type StockHandler struct {
	*BaseHandler
	service *stock.Service
}

// NewStockHandler creates a new stock register handler.
func NewStockHandler(base *BaseHandler, service *stock.Service) *StockHandler {
	return &StockHandler{BaseHandler: base, service: service}
}

// Turnover handles GET /register/stock/turnover
func (h *StockHandler) Turnover(c *gin.Context) {
	var q dto.TurnoverQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	turnover, err := h.service.GetTurnover(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, turnover)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"backoffice/internal/domain/registers/balance"
	"backoffice/internal/infrastructure/http/v1/dto"
)

// BalanceHandler handles balance adjustments and history.
type BalanceHandler struct {
	*BaseHandler
	service *balance.Service
}

// NewBalanceHandler creates a new balance handler.
func NewBalanceHandler(base *BaseHandler, service *balance.Service) *BalanceHandler {
	return &BalanceHandler{BaseHandler: base, service: service}
}

// Adjust handles POST /balance/adjust/:userId
func (h *BalanceHandler) Adjust(c *gin.Context) {
	userID, ok := h.ParamID(c, "userId")
	if !ok {
		return
	}
	actorID, ok := h.ActingUserID(c)
	if !ok {
		return
	}

	var req dto.AdjustBalanceRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput(userID, &actorID)
	if err != nil {
		h.Error(c, err)
		return
	}

	entry, err := h.service.Adjust(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// History handles GET /balance/history/:userId
func (h *BalanceHandler) History(c *gin.Context) {
	userID, ok := h.ParamID(c, "userId")
	if !ok {
		return
	}

	var q dto.BalanceHistoryQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.History(c.Request.Context(), userID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

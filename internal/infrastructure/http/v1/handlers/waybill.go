package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"backoffice/internal/domain/documents/waybill"
	"backoffice/internal/domain/posting"
	"backoffice/internal/domain/registers/stock"
	"backoffice/internal/infrastructure/http/v1/dto"
)

// WaybillHandler handles HTTP requests for waybills.
type WaybillHandler struct {
	*BaseHandler
	service *waybill.Service
	engine  *posting.Engine
	stock   *stock.Service
}

// NewWaybillHandler creates a new waybill handler.
func NewWaybillHandler(
	base *BaseHandler,
	service *waybill.Service,
	engine *posting.Engine,
	stockService *stock.Service,
) *WaybillHandler {
	return &WaybillHandler{
		BaseHandler: base,
		service:     service,
		engine:      engine,
		stock:       stockService,
	}
}

// List handles GET /document/waybills
func (h *WaybillHandler) List(c *gin.Context) {
	var q dto.WaybillListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.MapList(result, dto.FromWaybill))
}

// Create handles POST /document/waybills
func (h *WaybillHandler) Create(c *gin.Context) {
	authorID, ok := h.ActingUserID(c)
	if !ok {
		return
	}

	var req dto.CreateWaybillRequest
	if !h.BindJSON(c, &req) {
		return
	}

	w, err := req.ToEntity(authorID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if err := h.service.Create(c.Request.Context(), w); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, w.ID.String())
}

// CreateWithLines handles POST /document/waybills/with-lines
func (h *WaybillHandler) CreateWithLines(c *gin.Context) {
	authorID, ok := h.ActingUserID(c)
	if !ok {
		return
	}

	var req dto.CreateWaybillWithLinesRequest
	if !h.BindJSON(c, &req) {
		return
	}

	w, err := req.ToEntity(authorID)
	if err != nil {
		h.Error(c, err)
		return
	}
	lines := make([]waybill.AddLineInput, 0, len(req.Lines))
	for i := range req.Lines {
		in, err := req.Lines[i].ToInput()
		if err != nil {
			h.Error(c, err)
			return
		}
		lines = append(lines, in)
	}

	created, err := h.service.CreateWithLines(c.Request.Context(), w, lines)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromWaybill(created))
}

// Get handles GET /document/waybills/:id
func (h *WaybillHandler) Get(c *gin.Context) {
	waybillID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	w, err := h.service.GetByID(c.Request.Context(), waybillID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromWaybill(w))
}

// AddLine handles POST /document/waybills/:id/lines
func (h *WaybillHandler) AddLine(c *gin.Context) {
	waybillID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.AddLineRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	line, err := h.service.AddLine(c.Request.Context(), waybillID, in)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromLine(*line))
}

// RemoveLine handles DELETE /document/waybills/:id/lines/:lineId
func (h *WaybillHandler) RemoveLine(c *gin.Context) {
	waybillID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.ParamID(c, "lineId")
	if !ok {
		return
	}

	if err := h.service.RemoveLine(c.Request.Context(), waybillID, lineID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// Commit handles POST /document/waybills/:id/commit
func (h *WaybillHandler) Commit(c *gin.Context) {
	waybillID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	actingUserID, ok := h.ActingUserID(c)
	if !ok {
		return
	}

	w, err := h.engine.Commit(c.Request.Context(), waybillID, actingUserID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromWaybill(w))
}

// Movements handles GET /document/waybills/:id/movements
func (h *WaybillHandler) Movements(c *gin.Context) {
	waybillID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	movements, err := h.stock.GetByWaybill(c.Request.Context(), waybillID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": movements})
}

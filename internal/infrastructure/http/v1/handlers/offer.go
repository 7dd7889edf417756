package handlers

import (
	"github.com/gin-gonic/gin"

	"backoffice/internal/domain/catalogs/offer"
	"backoffice/internal/domain/registers/stock"
	"backoffice/internal/infrastructure/http/v1/dto"
)

// OfferHandler handles HTTP requests for the offer catalog.
type OfferHandler struct {
	*BaseHandler
	service *offer.Service
	stock   *stock.Service
}

// NewOfferHandler creates a new offer handler.
func NewOfferHandler(base *BaseHandler, service *offer.Service, stockService *stock.Service) *OfferHandler {
	return &OfferHandler{
		BaseHandler: base,
		service:     service,
		stock:       stockService,
	}
}

type offerListQuery struct {
	dto.PageQuery
	Brand          string `form:"brand"`
	IncludeDeleted bool   `form:"includeDeleted"`
}

// List handles GET /catalog/offers
func (h *OfferHandler) List(c *gin.Context) {
	var q offerListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	result, err := h.service.List(c.Request.Context(), offer.ListFilter{
		ListFilter:     q.ToListFilter(),
		Brand:          q.Brand,
		IncludeDeleted: q.IncludeDeleted,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.MapList(result, dto.FromOffer))
}

// Create handles POST /catalog/offers
func (h *OfferHandler) Create(c *gin.Context) {
	var req dto.CreateOfferRequest
	if !h.BindJSON(c, &req) {
		return
	}

	o := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), o); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, o.ID.String())
}

// Get handles GET /catalog/offers/:id
func (h *OfferHandler) Get(c *gin.Context) {
	offerID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	o, err := h.service.GetByID(c.Request.Context(), offerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromOffer(o))
}

// Update handles PUT /catalog/offers/:id
func (h *OfferHandler) Update(c *gin.Context) {
	offerID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateOfferRequest
	if !h.BindJSON(c, &req) {
		return
	}

	o, err := h.service.Update(c.Request.Context(), offerID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromOffer(o))
}

// Movements handles GET /catalog/offers/:id/movements
func (h *OfferHandler) Movements(c *gin.Context) {
	offerID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var q dto.MovementQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	movements, err := h.stock.GetHistory(c.Request.Context(), offerID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": movements})
}

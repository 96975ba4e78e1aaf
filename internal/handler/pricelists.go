package handler

import (
	"errors"
	"net/http"

	"steelpricing/internal/apierror"
	"steelpricing/internal/dto"
	"steelpricing/internal/middleware"
	"steelpricing/internal/pricing"
	"steelpricing/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PriceListsHandler struct{ svc service.PriceListService }

func NewPriceListsHandler(svc service.PriceListService) *PriceListsHandler {
	return &PriceListsHandler{svc: svc}
}

// List godoc
// @Summary      List price lists
// @Description  Returns price list headers (items omitted), newest first, with pagination.
// @Tags         pricelists
// @Security     BearerAuth
// @Param        currency query string false "Filter by ISO currency code"
// @Param        active   query bool   false "Filter by active state"
// @Param        page     query int    false "Page (default 1)"
// @Param        limit    query int    false "Rows per page (default 20, max 100)"
// @Success      200 {object} dto.PriceListListResponse
// @Router       /v1/pricelists [get]
func (h *PriceListsHandler) List(c *gin.Context) {
	var filter dto.PriceListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to list price lists"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Get a price list with its items
// @Tags         pricelists
// @Security     BearerAuth
// @Param        id path string true "Price list UUID"
// @Success      200 {object} dto.GetPriceListResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/pricelists/{id} [get]
func (h *PriceListsHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Price list not found"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Create godoc
// @Summary      Create a price list
// @Description  Persists the header and items atomically; a blank name is rejected with 422.
// @Tags         pricelists
// @Security     BearerAuth
// @Param        request body dto.SavePriceListRequest true "Price list"
// @Success      201 {object} dto.PriceListResponse
// @Failure      422 {object} apierror.APIError
// @Router       /v1/pricelists [post]
func (h *PriceListsHandler) Create(c *gin.Context) {
	var req dto.SavePriceListRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req, middleware.Username(c))
	if err != nil {
		writeSaveError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Update godoc
// @Summary      Update a price list
// @Description  Replaces the header and full item set; item-level changes are recorded in history.
// @Tags         pricelists
// @Security     BearerAuth
// @Param        id      path string                   true "Price list UUID"
// @Param        request body dto.SavePriceListRequest true "Price list"
// @Success      200 {object} dto.PriceListResponse
// @Failure      404 {object} apierror.APIError
// @Failure      422 {object} apierror.APIError
// @Router       /v1/pricelists/{id} [put]
func (h *PriceListsHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	var req dto.SavePriceListRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req, middleware.Username(c))
	if err != nil {
		writeSaveError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SaveAsNew godoc
// @Summary      Save the submitted form as a brand-new list
// @Description  The new list is never the default, regardless of the submitted flag.
// @Tags         pricelists
// @Security     BearerAuth
// @Param        request body dto.SavePriceListRequest true "Price list"
// @Success      201 {object} dto.PriceListResponse
// @Failure      422 {object} apierror.APIError
// @Router       /v1/pricelists/save-as-new [post]
func (h *PriceListsHandler) SaveAsNew(c *gin.Context) {
	var req dto.SavePriceListRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SaveAsNew(c.Request.Context(), req, middleware.Username(c))
	if err != nil {
		writeSaveError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Deactivate godoc
// @Summary      Soft-delete a price list
// @Tags         pricelists
// @Security     BearerAuth
// @Param        id path string true "Price list UUID"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /v1/pricelists/{id} [delete]
func (h *PriceListsHandler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	if err := h.svc.Deactivate(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Price list not found"))
		return
	}
	c.Status(http.StatusNoContent)
}

// Copy godoc
// @Summary      Build an unsaved copy of a price list
// @Description  Returns a draft named "{source} (Copy)" with the source's currency and items. Nothing is persisted.
// @Tags         pricelists
// @Security     BearerAuth
// @Param        id path string true "Source price list UUID"
// @Success      200 {object} dto.PriceListResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/pricelists/{id}/copy [post]
func (h *PriceListsHandler) Copy(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	resp, err := h.svc.CopyFromSource(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Price list not found"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SeedItems godoc
// @Summary      Default seed items for a new price list
// @Description  Returns the default list's items. Always 200 — failures yield an empty seed.
// @Tags         pricelists
// @Security     BearerAuth
// @Success      200 {object} dto.SeedItemsResponse
// @Router       /v1/pricelists/seed-items [get]
func (h *PriceListsHandler) SeedItems(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.DefaultSeedItems(c.Request.Context()))
}

// SetItemPrice godoc
// @Summary      Set one item's selling price from a raw form value
// @Description  Parsing is permissive: the longest numeric prefix is used and garbage becomes 0. Missing products are appended with min quantity 1.
// @Tags         pricelists
// @Security     BearerAuth
// @Param        id        path string                  true "Price list UUID"
// @Param        productId path string                  true "Product UUID"
// @Param        request   body dto.SetItemPriceRequest true "Raw price value"
// @Success      200 {object} dto.PriceListItemResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/pricelists/{id}/items/{productId}/price [put]
func (h *PriceListsHandler) SetItemPrice(c *gin.Context) {
	listID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid price list ID"))
		return
	}
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid product ID"))
		return
	}
	var req dto.SetItemPriceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SetItemPrice(c.Request.Context(), listID, productID, req.Value, middleware.Username(c))
	if err != nil {
		if errors.Is(err, service.ErrPriceListNotFound) || errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("Price list or product not found"))
			return
		}
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ResetToDefaults godoc
// @Summary      Reset all item prices to catalog defaults
// @Description  Overwrites the entire item set from the product catalog. Every price change is recorded.
// @Tags         pricelists
// @Security     BearerAuth
// @Param        id path string true "Price list UUID"
// @Success      200 {object} dto.GetPriceListResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/pricelists/{id}/reset [post]
func (h *PriceListsHandler) ResetToDefaults(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	resp, err := h.svc.ResetToDefaults(c.Request.Context(), id, middleware.Username(c))
	if err != nil {
		if errors.Is(err, service.ErrPriceListNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("Price list not found"))
			return
		}
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// BulkAdjust godoc
// @Summary      Apply a percentage adjustment to every item
// @Description  type=increase raises all selling prices by the percentage, type=decrease lowers them. Results are rounded to 2 decimals half away from zero.
// @Tags         pricelists
// @Security     BearerAuth
// @Param        id      path string                true "Price list UUID"
// @Param        request body dto.BulkAdjustRequest true "Adjustment"
// @Success      200 {object} dto.BulkAdjustResponse
// @Failure      404 {object} apierror.APIError
// @Failure      422 {object} apierror.ValidationError
// @Router       /v1/pricelists/{id}/bulk-adjust [post]
func (h *PriceListsHandler) BulkAdjust(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	var req dto.BulkAdjustRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.BulkAdjust(c.Request.Context(), id, req, middleware.Username(c))
	if err != nil {
		if errors.Is(err, service.ErrPriceListNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("Price list not found"))
			return
		}
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// writeSaveError maps domain validation failures to 422 and missing rows to
// 404; anything else is a 400 with the raw message.
func writeSaveError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pricing.ErrNameRequired):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
	case errors.Is(err, service.ErrPriceListNotFound):
		c.JSON(http.StatusNotFound, apierror.New("Price list not found"))
	default:
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	}
}

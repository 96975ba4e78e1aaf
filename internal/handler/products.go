package handler

import (
	"errors"
	"net/http"
	"strings"

	"steelpricing/internal/apierror"
	"steelpricing/internal/dto"
	"steelpricing/internal/pricing"
	"steelpricing/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProductsHandler struct{ svc service.ProductService }

func NewProductsHandler(svc service.ProductService) *ProductsHandler {
	return &ProductsHandler{svc: svc}
}

// Create godoc
// @Summary      Create a catalog product
// @Description  The pricing basis is validated against the category's allowed set; weight-based bases require a unit weight.
// @Tags         products
// @Security     BearerAuth
// @Param        request body dto.SaveProductRequest true "Product"
// @Success      201 {object} dto.ProductResponse
// @Failure      422 {object} apierror.ValidationError
// @Router       /v1/products [post]
func (h *ProductsHandler) Create(c *gin.Context) {
	var req dto.SaveProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      List catalog products
// @Tags         products
// @Security     BearerAuth
// @Param        name     query string false "Name substring (case-insensitive)"
// @Param        category query string false "Category"
// @Param        active   query bool   false "Filter by active state"
// @Success      200 {object} dto.ProductListResponse
// @Router       /v1/products [get]
func (h *ProductsHandler) List(c *gin.Context) {
	var filter dto.ProductFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to list products"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Get a product by ID
// @Tags         products
// @Security     BearerAuth
// @Param        id path string true "Product UUID"
// @Success      200 {object} dto.ProductResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/products/{id} [get]
func (h *ProductsHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	resp, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Product not found"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary      Update a product
// @Tags         products
// @Security     BearerAuth
// @Param        id      path string                 true "Product UUID"
// @Param        request body dto.SaveProductRequest true "Product"
// @Success      200 {object} dto.ProductResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/products/{id} [put]
func (h *ProductsHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	var req dto.SaveProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("Product not found"))
			return
		}
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Deactivate godoc
// @Summary      Soft-delete a product
// @Tags         products
// @Security     BearerAuth
// @Param        id path string true "Product UUID"
// @Success      204
// @Router       /v1/products/{id} [delete]
func (h *ProductsHandler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	if err := h.svc.Deactivate(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("Product not found"))
			return
		}
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// BasisRules godoc
// @Summary      Pricing basis rules for a category
// @Description  Returns the allowed bases, the default basis, and display labels. Unknown categories fall back to all bases with PER_MT as default.
// @Tags         products
// @Param        category path string true "Product category"
// @Success      200 {object} dto.BasisRulesResponse
// @Router       /v1/basis/{category} [get]
func BasisRules(c *gin.Context) {
	category := c.Param("category")

	allowed := pricing.AllowedBases(category)
	bases := make([]string, 0, len(allowed))
	labels := make(map[string]string, len(allowed))
	for _, b := range allowed {
		bases = append(bases, string(b))
		labels[string(b)] = pricing.BasisLabel(b)
	}

	c.JSON(http.StatusOK, dto.BasisRulesResponse{
		Category:     strings.ToUpper(strings.TrimSpace(category)),
		AllowedBases: bases,
		DefaultBasis: string(pricing.DefaultBasis(category)),
		Labels:       labels,
	})
}

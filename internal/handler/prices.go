package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"steelpricing/internal/apierror"
	"steelpricing/internal/dto"
	"steelpricing/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const priceCacheTTL = 4 * time.Hour

// PricesHandler serves the public price check endpoint.
// No authentication required — no side effects whatsoever.
type PricesHandler struct {
	productRepo  repository.ProductRepository
	listRepo     repository.PriceListRepository
	rdb          *redis.Client
	baseCurrency string
}

func NewPricesHandler(productRepo repository.ProductRepository, listRepo repository.PriceListRepository, rdb *redis.Client, baseCurrency string) *PricesHandler {
	return &PricesHandler{productRepo: productRepo, listRepo: listRepo, rdb: rdb, baseCurrency: baseCurrency}
}

// GetPrice godoc
// @Summary      Public price check for a product (no authentication)
// @Description  Resolves the selling price from the default price list of the base currency, falling back to the catalog price when the product is not on the list. Responses are cached for 4h.
// @Tags         prices
// @Produce      json
// @Param        productId path string true "Product UUID"
// @Success      200 {object} dto.PriceCheckResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/prices/{productId} [get]
func (h *PricesHandler) GetPrice(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid product ID"))
		return
	}

	ctx := c.Request.Context()
	cacheKey := "price:" + productID.String()

	// 1. Try Redis cache
	if cached, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
		var resp dto.PriceCheckResponse
		if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
			c.JSON(http.StatusOK, resp)
			return
		}
	}

	// 2. Cache miss — query DB
	product, err := h.productRepo.FindByID(ctx, productID)
	if err != nil || !product.Active {
		c.JSON(http.StatusNotFound, apierror.New("Product not found"))
		return
	}

	resp := dto.PriceCheckResponse{
		ProductID:    product.ID.String(),
		Name:         product.Name,
		Category:     product.Category,
		SellingPrice: product.SellingPrice,
		MinQuantity:  1,
		Currency:     h.baseCurrency,
	}

	// Prefer the default price list of the base currency when the product
	// is on it; the catalog price above is the fallback.
	if list, err := h.listRepo.FindDefault(ctx, h.baseCurrency); err == nil {
		for _, item := range list.Items {
			if item.ProductID == productID {
				resp.SellingPrice = item.SellingPrice
				resp.MinQuantity = item.MinQuantity
				resp.PriceListID = list.ID.String()
				break
			}
		}
	}

	// 3. Populate cache — best effort, ignore errors
	if b, jsonErr := json.Marshal(resp); jsonErr == nil {
		_ = h.rdb.Set(context.Background(), cacheKey, b, priceCacheTTL).Err()
	}

	c.JSON(http.StatusOK, resp)
}

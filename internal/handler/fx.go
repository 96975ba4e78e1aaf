package handler

import (
	"net/http"
	"time"

	"steelpricing/internal/apierror"
	"steelpricing/internal/dto"
	"steelpricing/internal/infra"

	"github.com/gin-gonic/gin"
)

// FXHandler exposes cached exchange-rate lookups for cross-currency
// price comparisons.
type FXHandler struct{ client *infra.FXClient }

func NewFXHandler(client *infra.FXClient) *FXHandler {
	return &FXHandler{client: client}
}

// GetRate godoc
// @Summary      Exchange rate between two currencies
// @Description  Rates are cached for 4h; upstream calls go through a circuit breaker. 503 when the breaker is open or the provider is down.
// @Tags         fx
// @Security     BearerAuth
// @Param        base  path string true "Base currency, e.g. USD"
// @Param        quote path string true "Quote currency, e.g. EUR"
// @Success      200 {object} dto.FXRateResponse
// @Failure      503 {object} apierror.APIError
// @Router       /v1/fx/{base}/{quote} [get]
func (h *FXHandler) GetRate(c *gin.Context) {
	base := c.Param("base")
	quote := c.Param("quote")
	if len(base) != 3 || len(quote) != 3 {
		c.JSON(http.StatusBadRequest, apierror.New("Currency codes must be 3 letters"))
		return
	}

	rate, err := h.client.GetRate(c.Request.Context(), base, quote)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, apierror.New("Exchange rates are temporarily unavailable"))
		return
	}

	c.JSON(http.StatusOK, dto.FXRateResponse{
		Base:      base,
		Quote:     quote,
		Rate:      rate,
		FetchedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

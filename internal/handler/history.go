package handler

import (
	"errors"
	"net/http"

	"steelpricing/internal/apierror"
	"steelpricing/internal/dto"
	"steelpricing/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type HistoryHandler struct{ svc service.HistoryService }

func NewHistoryHandler(svc service.HistoryService) *HistoryHandler {
	return &HistoryHandler{svc: svc}
}

// List godoc
// @Summary      Price change history of a price list
// @Description  Append-only change log, newest first. changeType/date filters run server-side; the product filter applies within the returned page only.
// @Tags         history
// @Security     BearerAuth
// @Param        id         path  string true  "Price list UUID"
// @Param        changeType query string false "INSERT | UPDATE | DELETE"
// @Param        fromDate   query string false "YYYY-MM-DD"
// @Param        toDate     query string false "YYYY-MM-DD (inclusive)"
// @Param        product    query string false "Product name substring"
// @Param        limit      query int    false "Rows per page (default 50, max 200)"
// @Param        offset     query int    false "Offset (default 0)"
// @Success      200 {object} dto.HistoryListResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/pricelists/{id}/history [get]
func (h *HistoryHandler) List(c *gin.Context) {
	listID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}

	var filter dto.HistoryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	if err := validate.Struct(&filter); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return
	}

	resp, err := h.svc.List(c.Request.Context(), listID, filter)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Price list not found"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ExportCSV godoc
// @Summary      Download the full change history as CSV
// @Description  Streams a quoted CSV with UTC timestamps and 2-decimal prices. File name: pricelist_history_{id}_{date}.csv
// @Tags         history
// @Security     BearerAuth
// @Param        id path string true "Price list UUID"
// @Produce      text/csv
// @Success      200
// @Failure      404 {object} apierror.APIError
// @Router       /v1/pricelists/{id}/history/export.csv [get]
func (h *HistoryHandler) ExportCSV(c *gin.Context) {
	listID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}

	fileName, data, err := h.svc.ExportCSV(c.Request.Context(), listID)
	if err != nil {
		if errors.Is(err, service.ErrPriceListNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("Price list not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to export history"))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// EnqueueExport godoc
// @Summary      Queue an async history export
// @Description  The worker writes the CSV and a PDF summary to export storage and emails the CSV when an address is configured.
// @Tags         history
// @Security     BearerAuth
// @Param        id path string true "Price list UUID"
// @Success      202 {object} dto.ExportJobResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/pricelists/{id}/history/export [post]
func (h *HistoryHandler) EnqueueExport(c *gin.Context) {
	listID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}

	resp, err := h.svc.EnqueueExport(c.Request.Context(), listID, c.Query("email"))
	if err != nil {
		if errors.Is(err, service.ErrPriceListNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("Price list not found"))
			return
		}
		c.JSON(http.StatusServiceUnavailable, apierror.New("Export queue unavailable"))
		return
	}
	c.JSON(http.StatusAccepted, resp)
}

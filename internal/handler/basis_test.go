package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"steelpricing/internal/dto"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getBasisRules(t *testing.T, category string) dto.BasisRulesResponse {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/v1/basis/:category", BasisRules)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/basis/"+category, nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.BasisRulesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestBasisRules_KnownCategory(t *testing.T) {
	resp := getBasisRules(t, "pipe")

	assert.Equal(t, "PIPE", resp.Category)
	assert.Equal(t, []string{"PER_PCS", "PER_METER"}, resp.AllowedBases)
	assert.Equal(t, "PER_PCS", resp.DefaultBasis)
	assert.Equal(t, map[string]string{
		"PER_PCS":   "Per Piece",
		"PER_METER": "Per Meter",
	}, resp.Labels)
}

func TestBasisRules_UnknownCategoryFallsBack(t *testing.T) {
	resp := getBasisRules(t, "WIRE")

	assert.Equal(t, "WIRE", resp.Category)
	assert.Len(t, resp.AllowedBases, 5)
	assert.Equal(t, "PER_MT", resp.DefaultBasis)
	assert.Equal(t, "Per Metric Ton", resp.Labels["PER_MT"])
	assert.Equal(t, "Per Lot", resp.Labels["PER_LOT"])
}

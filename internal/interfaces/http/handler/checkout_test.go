package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/storesync/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCheckoutRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/v1/checkout/quote", NewCheckoutHandler().Quote)
	return r
}

func getQuote(t *testing.T, r *gin.Engine, query string) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/checkout/quote?"+query, nil)
	r.ServeHTTP(w, req)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestQuote_DoublePackage(t *testing.T) {
	r := newCheckoutRouter()

	w, resp := getQuote(t, r, "package=2x&base_price=10.00")
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "2x", data["package"])
	assert.Equal(t, float64(20), data["quantity"])
	assert.Equal(t, "190.00", data["total"])
}

func TestQuote_QuadPackage(t *testing.T) {
	r := newCheckoutRouter()

	w, resp := getQuote(t, r, "package=4x&base_price=10.00")
	require.Equal(t, http.StatusOK, w.Code)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(40), data["quantity"])
	assert.Equal(t, "340.00", data["total"])
}

func TestQuote_MalformedPackageRejected(t *testing.T) {
	r := newCheckoutRouter()

	for _, pkg := range []string{"4xl", "5x", "x4", "40"} {
		w, resp := getQuote(t, r, "package="+pkg+"&base_price=10.00")
		assert.Equal(t, http.StatusBadRequest, w.Code, pkg)
		assert.False(t, resp.Success, pkg)
	}
}

func TestQuote_MissingParamsRejected(t *testing.T) {
	r := newCheckoutRouter()

	w, _ := getQuote(t, r, "package=2x")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuote_NonPositiveBasePriceRejected(t *testing.T) {
	r := newCheckoutRouter()

	w, _ := getQuote(t, r, "package=2x&base_price=-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

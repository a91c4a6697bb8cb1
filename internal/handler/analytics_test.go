package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"telegramdw/internal/models"
)

type fakeAnalyticsRepo struct {
	products []models.TopProduct
	activity []models.ActivityPoint
	results  []models.MessageResult
	err      error
}

func (f *fakeAnalyticsRepo) TopProducts(ctx context.Context, limit int) ([]models.TopProduct, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.products) {
		return f.products[:limit], nil
	}
	return f.products, nil
}

func (f *fakeAnalyticsRepo) ChannelActivity(ctx context.Context, channel string) ([]models.ActivityPoint, error) {
	return f.activity, f.err
}

func (f *fakeAnalyticsRepo) SearchMessages(ctx context.Context, query string, limit int) ([]models.MessageResult, error) {
	return f.results, f.err
}

func newRouter(repo *fakeAnalyticsRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAnalyticsHandler(repo, zap.NewNop())

	router := gin.New()
	router.GET("/api/reports/top-products", h.TopProducts)
	router.GET("/api/channels/:name/activity", h.ChannelActivity)
	router.GET("/api/search/messages", h.SearchMessages)
	return router
}

func TestTopProducts(t *testing.T) {
	repo := &fakeAnalyticsRepo{products: []models.TopProduct{
		{Product: "bottle", Mentions: 42},
		{Product: "person", Mentions: 7},
	}}
	router := newRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/reports/top-products?limit=1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Items []models.TopProduct `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Items, 1)
	assert.Equal(t, "bottle", body.Items[0].Product)
}

func TestTopProducts_BadLimit(t *testing.T) {
	router := newRouter(&fakeAnalyticsRepo{})

	for _, limit := range []string{"0", "-3", "101", "abc"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/reports/top-products?limit="+limit, nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, "limit=%s", limit)
	}
}

func TestTopProducts_EmptyIsNotNull(t *testing.T) {
	router := newRouter(&fakeAnalyticsRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/reports/top-products", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items": []}`, w.Body.String())
}

func TestChannelActivity(t *testing.T) {
	day := time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC)
	repo := &fakeAnalyticsRepo{activity: []models.ActivityPoint{{Date: day, Messages: 12}}}
	router := newRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/channels/CheMed123/activity", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Channel string                 `json:"channel"`
		Points  []models.ActivityPoint `json:"points"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "CheMed123", body.Channel)
	require.Len(t, body.Points, 1)
	assert.Equal(t, int64(12), body.Points[0].Messages)
}

func TestChannelActivity_NotFound(t *testing.T) {
	router := newRouter(&fakeAnalyticsRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/channels/unknown/activity", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchMessages(t *testing.T) {
	repo := &fakeAnalyticsRepo{results: []models.MessageResult{
		{MessageID: 2, Channel: "CheMed123", Text: "paracetamol in stock"},
	}}
	router := newRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/search/messages?query=paracetamol", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Query   string                 `json:"query"`
		Results []models.MessageResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "paracetamol", body.Query)
	require.Len(t, body.Results, 1)
	assert.Equal(t, int64(2), body.Results[0].MessageID)
}

func TestSearchMessages_QueryLengthBounds(t *testing.T) {
	router := newRouter(&fakeAnalyticsRepo{})

	tooLong := strings.Repeat("x", 101)
	for _, q := range []string{"", "a", tooLong} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/search/messages?query="+q, nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, "query=%q", q)
	}

	// 100 characters is still accepted.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/search/messages?query="+strings.Repeat("x", 100), nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

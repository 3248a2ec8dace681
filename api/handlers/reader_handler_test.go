package handlers

import (
	"net/http"
	"testing"

	"highlights-app-api/core/domain"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetReaderView(t *testing.T) {
	_, api := humatest.New(t)
	NewReaderHandler(fakeReader{}).RegisterRoutes(api)

	resp := api.Post("/getreaderview", map[string]any{
		"urls": []string{"https://example.com/a", "  ", "https://example.com/b"},
	})

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	views := decode[[]domain.ReaderView](t, resp.Body.Bytes())
	require.Len(t, views, 2)
	assert.Equal(t, "https://example.com/a", views[0].URL)
	assert.Equal(t, "https://example.com/b", views[1].URL)
}

func TestGetReaderView_NoURLs(t *testing.T) {
	_, api := humatest.New(t)
	NewReaderHandler(fakeReader{}).RegisterRoutes(api)

	resp := api.Post("/getreaderview", map[string]any{"urls": []string{}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	resp = api.Post("/getreaderview", map[string]any{"urls": []string{" "}})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/chartmarkers/pkg/markerfile"
)

const previewFrame = `{
  "width": 200, "height": 100,
  "items": [
    {"x": 50, "y": 50, "size": 20, "shape": "circle", "id": 1, "externalId": "a"},
    {"x": 150, "y": 50, "size": 20, "shape": "square", "id": 2}
  ]
}`

func newTestPreview(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	f, err := markerfile.Parse([]byte(previewFrame), markerfile.FormatJSON)
	require.NoError(t, err)
	p, err := newPreview(f, markerfile.DefaultOptions())
	require.NoError(t, err)
	return p.routes()
}

func get(r http.Handler, url string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))
	return w
}

func TestPreviewHit(t *testing.T) {
	r := newTestPreview(t)

	w := get(r, "/hit?x=50&y=50")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1.0, body["hover"])
	assert.Equal(t, "a", body["externalId"])

	w = get(r, "/hit?x=100&y=100")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Nil(t, body["hover"])

	w = get(r, "/hit?x=oops")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreviewFrames(t *testing.T) {
	r := newTestPreview(t)

	w := get(r, "/frame.svg")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "<svg"))

	w = get(r, "/frame.png")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	// The latched hover is painted last.
	get(r, "/hit?x=50&y=50")
	w = get(r, "/frame.trace")
	require.Equal(t, http.StatusOK, w.Code)
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	var lastArc string
	for _, l := range lines {
		if strings.HasPrefix(l, "Arc(") {
			lastArc = l
		}
	}
	assert.True(t, strings.HasPrefix(lastArc, "Arc(50, 50,"), lastArc)

	w = get(r, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "markers_render_total")
	assert.Contains(t, w.Body.String(), "markers_hit_test_total")
}

func TestPreviewReplaceFrame(t *testing.T) {
	r := newTestPreview(t)

	w := httptest.NewRecorder()
	body := `{"width": 100, "height": 100, "items": [{"x": 10, "y": 10, "size": 20, "shape": "arrowUp", "id": 9}]}`
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/frame", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code)

	w = get(r, "/hit?x=10&y=10")
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 9.0, got["hover"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/frame", strings.NewReader(`{"items": [{"shape": "line"}]}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreviewReplaceFrameMalformed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f, err := markerfile.Parse([]byte(previewFrame), markerfile.FormatJSON)
	require.NoError(t, err)
	p, err := newPreview(f, markerfile.DefaultOptions())
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/frame", strings.NewReader(`{"items": [`))
	c.Request.Header.Set("Content-Type", "application/json")
	p.replaceFrame(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, c.Errors, "the handler writes the error response itself")
	assert.False(t, c.IsAborted())

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])
	// The old frame is kept.
	assert.Same(t, f, p.frame)
}

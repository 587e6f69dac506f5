package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"bouquet-studio-backend/internal/handlers"
	"bouquet-studio-backend/internal/render"
)

func TestProxyImage(t *testing.T) {
	gin.SetMode(gin.TestMode)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write([]byte("png-data"))
		case "/elsewhere.png":
			http.Redirect(w, r, "http://169.254.169.254/latest/meta-data", http.StatusFound)
		case "/page":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte("<html>"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer upstream.Close()

	u, _ := url.Parse(upstream.URL)

	router := gin.New()
	router.GET("/proxy-image", handlers.NewProxyHandler(upstream.Client(), render.NewHostAllowlist(u.Hostname())).ProxyImage)

	get := func(target string) *httptest.ResponseRecorder {
		req, _ := http.NewRequest("GET", "/proxy-image?url="+url.QueryEscape(target), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := get(upstream.URL + "/ok.png")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png-data", w.Body.String())
	assert.Equal(t, "public, max-age=86400", w.Header().Get("Cache-Control"))

	assert.Equal(t, http.StatusBadGateway, get(upstream.URL+"/missing.png").Code)
	assert.Equal(t, http.StatusBadGateway, get(upstream.URL+"/page").Code)
	assert.Equal(t, http.StatusForbidden, get("https://example.com/x.png").Code)
	assert.Equal(t, http.StatusForbidden, get(upstream.URL+"/elsewhere.png").Code)
	assert.Equal(t, http.StatusBadRequest, get("ftp://example.com/x.png").Code)

	req, _ := http.NewRequest("GET", "/proxy-image", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

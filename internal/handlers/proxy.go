package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"bouquet-studio-backend/internal/render"
)

// maxProxyBytes caps the size of a proxied image.
const maxProxyBytes = 25 << 20

// ProxyHandler streams remote images to the browser so that generated
// results can be drawn and downloaded without cross-origin restrictions.
type ProxyHandler struct {
	client  render.Doer
	allowed render.HostAllowlist
}

// NewProxyHandler allows only the given hosts. A plain *http.Client is
// limited to redirects within them.
func NewProxyHandler(client render.Doer, allowed render.HostAllowlist) *ProxyHandler {
	if hc, ok := client.(*http.Client); ok {
		client = allowed.Restrict(hc)
	}
	return &ProxyHandler{client: client, allowed: allowed}
}

// ProxyImage godoc
// @Summary     Image proxy
// @Description Fetches an image from an allowed host and returns it with caching headers
// @Tags        images
// @Produce     image/png
// @Param       url query string true "Image URL"
// @Success     200 {file} binary
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /proxy-image [get]
func (h *ProxyHandler) ProxyImage(c *gin.Context) {
	raw := c.Query("url")
	if raw == "" {
		respondError(c, http.StatusBadRequest, "missing url", nil)
		return
	}
	target, err := url.Parse(raw)
	if err != nil || (target.Scheme != "https" && target.Scheme != "http") || target.Host == "" {
		respondError(c, http.StatusBadRequest, "invalid url", err)
		return
	}
	if !h.allowed.Allows(target.Hostname()) {
		respondError(c, http.StatusForbidden, "host not allowed", fmt.Errorf("%s", target.Hostname()))
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, target.String(), nil)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid url", err)
		return
	}
	resp, err := h.client.Do(req)
	if errors.Is(err, render.ErrHostNotAllowed) {
		respondError(c, http.StatusForbidden, "host not allowed", err)
		return
	}
	if err != nil {
		log.Printf("Proxy fetch of %s failed: %v", target.Host, err)
		respondError(c, http.StatusBadGateway, "proxy error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respondError(c, http.StatusBadGateway, "proxy error", fmt.Errorf("upstream status %d", resp.StatusCode))
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	if !strings.HasPrefix(contentType, "image/") {
		respondError(c, http.StatusBadGateway, "proxy error", fmt.Errorf("unexpected content type %s", contentType))
		return
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxProxyBytes+1))
	if err != nil {
		respondError(c, http.StatusBadGateway, "proxy error", err)
		return
	}
	if len(data) > maxProxyBytes {
		respondError(c, http.StatusBadGateway, "proxy error", fmt.Errorf("image larger than %d bytes", maxProxyBytes))
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.Header("Content-Disposition", "inline; filename=image.png")
	c.Data(http.StatusOK, contentType, data)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bouquet-studio-backend/internal/catalog"
)

type CatalogHandler struct {
	catalog *catalog.Catalog
}

func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: cat}
}

// GetCatalog godoc
// @Summary     Asset catalog
// @Description Returns the palette of sleeves, backgrounds and flowers grouped by category
// @Tags        catalog
// @Produce     json
// @Success     200 {object} catalog.Catalog
// @Router      /catalog [get]
func (h *CatalogHandler) GetCatalog(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=300")
	c.JSON(http.StatusOK, h.catalog)
}

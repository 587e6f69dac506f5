package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bouquet-studio-backend/internal/editor"
	"bouquet-studio-backend/internal/flux"
	"bouquet-studio-backend/internal/middleware"
	"bouquet-studio-backend/internal/models"
	"bouquet-studio-backend/internal/services"
)

type DesignsHandler struct {
	designs    *services.DesignService
	generation *services.GenerationService
	store      *editor.Store
}

func NewDesignsHandler(designs *services.DesignService, generation *services.GenerationService, store *editor.Store) *DesignsHandler {
	return &DesignsHandler{
		designs:    designs,
		generation: generation,
		store:      store,
	}
}

// Generate godoc
// @Summary     Generate a design
// @Description Renders the session's canvas, sends it with the assembled prompt to the image model and stores the result. Requires a saved draft.
// @Tags        designs
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.GenerateRequest true "Session to render"
// @Success     201 {object} models.GenerateResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Failure     504 {object} models.ErrorResponse
// @Router      /designs/generate [post]
func (h *DesignsHandler) Generate(c *gin.Context) {
	if h.generation == nil {
		unavailable(c, "generation")
		return
	}
	var req models.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	sess, ok := sessionFor(c, h.store, req.SessionID)
	if !ok {
		return
	}

	snap := sess.Snapshot()
	snap.UserID = middleware.UserID(c)

	design, err := h.generation.Generate(c.Request.Context(), snap)
	if err != nil {
		status := http.StatusBadGateway
		code := "generation_failed"
		var genErr *services.GenerationError
		switch {
		case errors.Is(err, services.ErrNotAuthenticated):
			status, code = http.StatusUnauthorized, middleware.ErrorAuthRequired
		case errors.Is(err, services.ErrDraftRequired):
			status, code = http.StatusBadRequest, "draft_required"
		case c.Request.Context().Err() != nil:
			status, code = http.StatusRequestTimeout, "cancelled"
		case errors.Is(err, flux.ErrPollingExhausted):
			status = http.StatusGatewayTimeout
		case errors.As(err, &genErr) && (genErr.Stage == services.StageRasterize || genErr.Stage == services.StagePersist):
			status = http.StatusInternalServerError
		}
		c.JSON(status, models.ErrorResponse{Error: code, Message: services.UserMessage(err)})
		return
	}
	c.JSON(http.StatusCreated, models.GenerateResponse{Design: design})
}

// ListDesigns godoc
// @Summary     List generated designs
// @Tags        designs
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.DesignListResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /designs [get]
func (h *DesignsHandler) ListDesigns(c *gin.Context) {
	if h.designs == nil {
		unavailable(c, "database")
		return
	}
	designs, err := h.designs.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		serviceError(c, "failed to list designs", err)
		return
	}
	c.JSON(http.StatusOK, models.DesignListResponse{Designs: designs})
}

// DeleteDesign godoc
// @Summary     Delete a design
// @Description Deletes the design and its stored image
// @Tags        designs
// @Produce     json
// @Security    Bearer
// @Param       design_id path string true "Design ID (UUID)"
// @Success     200 {object} models.MessageResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /designs/{design_id} [delete]
func (h *DesignsHandler) DeleteDesign(c *gin.Context) {
	if h.designs == nil {
		unavailable(c, "database")
		return
	}
	designID, ok := pathUUID(c, "design_id")
	if !ok {
		return
	}
	if err := h.designs.Delete(c.Request.Context(), middleware.UserID(c), designID); err != nil {
		serviceError(c, "failed to delete design", err)
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{Message: "design deleted"})
}

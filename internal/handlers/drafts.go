package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bouquet-studio-backend/internal/catalog"
	"bouquet-studio-backend/internal/editor"
	"bouquet-studio-backend/internal/middleware"
	"bouquet-studio-backend/internal/models"
	"bouquet-studio-backend/internal/services"
)

type DraftsHandler struct {
	drafts  *services.DraftService
	store   *editor.Store
	catalog *catalog.Catalog
	sizer   editor.Sizer
}

func NewDraftsHandler(drafts *services.DraftService, store *editor.Store, cat *catalog.Catalog, sizer editor.Sizer) *DraftsHandler {
	return &DraftsHandler{
		drafts:  drafts,
		store:   store,
		catalog: cat,
		sizer:   sizer,
	}
}

// LoadDraftResponse is the canvas after loading a draft, plus the items
// whose catalog data could not be restored unambiguously and the stored
// elements that were left out.
type LoadDraftResponse struct {
	State       editor.State        `json:"state"`
	Ambiguities []catalog.Ambiguity `json:"ambiguities,omitempty"`
	Dropped     []editor.Dropped    `json:"dropped,omitempty"`
}

// SaveDraft godoc
// @Summary     Save the canvas as a draft
// @Description Inserts a new draft, or updates the session's current draft. A blank title saves as "Untitled" and keeps the stored title on update.
// @Tags        drafts
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.SaveDraftRequest true "Session and title"
// @Success     200 {object} services.SaveDraftResult
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /drafts [post]
func (h *DraftsHandler) SaveDraft(c *gin.Context) {
	if h.drafts == nil {
		unavailable(c, "database")
		return
	}
	var req models.SaveDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	sess, ok := sessionFor(c, h.store, req.SessionID)
	if !ok {
		return
	}

	snap := sess.Current()
	res, err := h.drafts.Save(c.Request.Context(), services.SaveDraftInput{
		UserID:     middleware.UserID(c),
		DraftID:    snap.DraftID,
		Title:      req.Title,
		Elements:   snap.Elements(),
		Sleeve:     snap.SleeveSrc(),
		Background: snap.BackgroundRef,
	})
	if err != nil {
		serviceError(c, "failed to save draft", err)
		return
	}
	sess.SetDraft(res.DraftID, res.Title)
	c.JSON(http.StatusOK, res)
}

// ListDrafts godoc
// @Summary     List drafts
// @Tags        drafts
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.DraftListResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /drafts [get]
func (h *DraftsHandler) ListDrafts(c *gin.Context) {
	if h.drafts == nil {
		unavailable(c, "database")
		return
	}
	drafts, err := h.drafts.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		serviceError(c, "failed to list drafts", err)
		return
	}
	c.JSON(http.StatusOK, models.DraftListResponse{Drafts: drafts})
}

// GetDraft godoc
// @Summary     Get a draft
// @Tags        drafts
// @Produce     json
// @Security    Bearer
// @Param       draft_id path string true "Draft ID (UUID)"
// @Success     200 {object} models.Draft
// @Failure     404 {object} models.ErrorResponse
// @Router      /drafts/{draft_id} [get]
func (h *DraftsHandler) GetDraft(c *gin.Context) {
	if h.drafts == nil {
		unavailable(c, "database")
		return
	}
	draftID, ok := pathUUID(c, "draft_id")
	if !ok {
		return
	}
	draft, err := h.drafts.Get(c.Request.Context(), middleware.UserID(c), draftID)
	if err != nil {
		serviceError(c, "failed to get draft", err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

// LoadDraft godoc
// @Summary     Load a draft into a session
// @Description Replaces the canvas with the draft. Prompt data is restored from the catalog and unfitted items are auto-fitted.
// @Tags        drafts
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       draft_id path string true "Draft ID (UUID)"
// @Param       request body models.LoadDraftRequest true "Target session"
// @Success     200 {object} LoadDraftResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /drafts/{draft_id}/load [post]
func (h *DraftsHandler) LoadDraft(c *gin.Context) {
	if h.drafts == nil {
		unavailable(c, "database")
		return
	}
	draftID, ok := pathUUID(c, "draft_id")
	if !ok {
		return
	}
	var req models.LoadDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	sess, ok := sessionFor(c, h.store, req.SessionID)
	if !ok {
		return
	}

	draft, err := h.drafts.Get(c.Request.Context(), middleware.UserID(c), draftID)
	if err != nil {
		serviceError(c, "failed to get draft", err)
		return
	}

	restored := editor.Restore(c.Request.Context(), draft, h.catalog, h.sizer)
	if err := sess.Load(restored, draft.ID, draft.Title); err != nil {
		if errors.Is(err, editor.ErrSessionClosed) {
			canvasError(c, err)
			return
		}
		respondError(c, http.StatusUnprocessableEntity, "invalid draft", err)
		return
	}
	c.JSON(http.StatusOK, LoadDraftResponse{
		State:       sess.State(),
		Ambiguities: restored.Ambiguities,
		Dropped:     restored.Dropped,
	})
}

// RenameDraft godoc
// @Summary     Rename a draft
// @Tags        drafts
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       draft_id path string true "Draft ID (UUID)"
// @Param       request body models.RenameDraftRequest true "New title"
// @Success     200 {object} models.MessageResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /drafts/{draft_id} [patch]
func (h *DraftsHandler) RenameDraft(c *gin.Context) {
	if h.drafts == nil {
		unavailable(c, "database")
		return
	}
	draftID, ok := pathUUID(c, "draft_id")
	if !ok {
		return
	}
	var req models.RenameDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.drafts.Rename(c.Request.Context(), middleware.UserID(c), draftID, req.Title); err != nil {
		serviceError(c, "failed to rename draft", err)
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{Message: "draft renamed"})
}

// DeleteDraft godoc
// @Summary     Delete a draft
// @Description Sessions that have this draft loaded are reset to the default sleeve
// @Tags        drafts
// @Produce     json
// @Security    Bearer
// @Param       draft_id path string true "Draft ID (UUID)"
// @Success     200 {object} models.MessageResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /drafts/{draft_id} [delete]
func (h *DraftsHandler) DeleteDraft(c *gin.Context) {
	if h.drafts == nil {
		unavailable(c, "database")
		return
	}
	draftID, ok := pathUUID(c, "draft_id")
	if !ok {
		return
	}
	if err := h.drafts.Delete(c.Request.Context(), middleware.UserID(c), draftID); err != nil {
		serviceError(c, "failed to delete draft", err)
		return
	}
	h.store.DraftDeleted(draftID)
	c.JSON(http.StatusOK, models.MessageResponse{Message: "draft deleted"})
}

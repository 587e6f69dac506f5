package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"bouquet-studio-backend/internal/canvas"
	"bouquet-studio-backend/internal/catalog"
	"bouquet-studio-backend/internal/editor"
	"bouquet-studio-backend/internal/models"
	"bouquet-studio-backend/internal/prompt"
	"bouquet-studio-backend/internal/services"
)

// SessionsHandler exposes the editor. Every request is one dispatched
// interaction; the response is the resulting canvas state.
type SessionsHandler struct {
	store      *editor.Store
	catalog    *catalog.Catalog
	sizer      editor.Sizer
	rasterizer services.Rasterizer
}

func NewSessionsHandler(store *editor.Store, cat *catalog.Catalog, sizer editor.Sizer, rasterizer services.Rasterizer) *SessionsHandler {
	return &SessionsHandler{
		store:      store,
		catalog:    cat,
		sizer:      sizer,
		rasterizer: rasterizer,
	}
}

// update runs fn on the session named in the path and answers with the
// new state.
func (h *SessionsHandler) update(c *gin.Context, fn func(ctrl *canvas.Controller) error) {
	sess, ok := sessionFor(c, h.store, c.Param("id"))
	if !ok {
		return
	}
	if err := sess.Update(fn); err != nil {
		canvasError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.State())
}

// CreateSession godoc
// @Summary     Open an editor session
// @Description Creates a canvas holding the default sleeve
// @Tags        sessions
// @Produce     json
// @Success     201 {object} editor.State
// @Router      /sessions [post]
func (h *SessionsHandler) CreateSession(c *gin.Context) {
	sess := h.store.Create()
	if _, ok := sessionFor(c, h.store, sess.ID()); !ok {
		return
	}
	c.JSON(http.StatusCreated, sess.State())
}

// GetSession godoc
// @Summary     Get canvas state
// @Tags        sessions
// @Produce     json
// @Param       id path string true "Session ID"
// @Success     200 {object} editor.State
// @Failure     404 {object} models.ErrorResponse
// @Router      /sessions/{id} [get]
func (h *SessionsHandler) GetSession(c *gin.Context) {
	sess, ok := sessionFor(c, h.store, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.State())
}

// CloseSession godoc
// @Summary     Close an editor session
// @Tags        sessions
// @Param       id path string true "Session ID"
// @Success     204
// @Failure     404 {object} models.ErrorResponse
// @Router      /sessions/{id} [delete]
func (h *SessionsHandler) CloseSession(c *gin.Context) {
	if _, ok := sessionFor(c, h.store, c.Param("id")); !ok {
		return
	}
	h.store.Close(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// Resize godoc
// @Summary     Report viewport size
// @Description Recomputes the logical-to-viewport transform
// @Tags        sessions
// @Accept      json
// @Produce     json
// @Param       id path string true "Session ID"
// @Param       request body models.ViewportRequest true "Measured size"
// @Success     200 {object} editor.State
// @Failure     400 {object} models.ErrorResponse
// @Router      /sessions/{id}/viewport [put]
func (h *SessionsHandler) Resize(c *gin.Context) {
	var req models.ViewportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	h.update(c, func(ctrl *canvas.Controller) error {
		ctrl.Resize(req.Width, req.Height)
		return nil
	})
}

// DropAsset godoc
// @Summary     Drop an asset onto the canvas
// @Description Loads the asset image, fits it and centres it under the pointer
// @Tags        sessions
// @Accept      json
// @Produce     json
// @Param       id path string true "Session ID"
// @Param       request body models.DropRequest true "Asset and pointer position"
// @Success     201 {object} editor.State
// @Failure     400 {object} models.ErrorResponse
// @Failure     422 {object} models.ErrorResponse
// @Router      /sessions/{id}/items [post]
func (h *SessionsHandler) DropAsset(c *gin.Context) {
	var req models.DropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	kind, err := canvas.ParseKind(req.Type)
	if err != nil {
		bindError(c, err)
		return
	}
	if kind.Structural() {
		bindError(c, canvas.ErrStructuralItem)
		return
	}
	entry, err := h.catalog.Lookup(req.Src, kind)
	if err != nil {
		bindError(c, err)
		return
	}

	sess, ok := sessionFor(c, h.store, c.Param("id"))
	if !ok {
		return
	}

	// measured outside the session lock
	width, height, err := h.sizer.Size(c.Request.Context(), entry.Src)
	if err != nil {
		log.Printf("Failed to load asset %s: %v", entry.Src, err)
		respondError(c, http.StatusUnprocessableEntity, "asset_load_failed", err)
		return
	}

	err = sess.Update(func(ctrl *canvas.Controller) error {
		_, err := ctrl.PlaceDropped(entry.Asset(), req.X, req.Y, width, height)
		return err
	})
	if errors.Is(err, canvas.ErrEmptyImage) {
		respondError(c, http.StatusUnprocessableEntity, "asset_load_failed", err)
		return
	}
	if err != nil {
		canvasError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess.State())
}

// RemoveItem godoc
// @Summary     Remove an item
// @Description Deletes an item from the layer list. The sleeve cannot be removed.
// @Tags        sessions
// @Produce     json
// @Param       id path string true "Session ID"
// @Param       item_id path string true "Item ID"
// @Success     200 {object} editor.State
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /sessions/{id}/items/{item_id} [delete]
func (h *SessionsHandler) RemoveItem(c *gin.Context) {
	h.update(c, func(ctrl *canvas.Controller) error {
		return ctrl.Remove(c.Param("item_id"))
	})
}

// DuplicateItem godoc
// @Summary     Duplicate an item
// @Description Copies an item on top of the stack, offset by 20 units, and selects the copy
// @Tags        sessions
// @Produce     json
// @Param       id path string true "Session ID"
// @Param       item_id path string true "Item ID"
// @Success     200 {object} editor.State
// @Failure     404 {object} models.ErrorResponse
// @Router      /sessions/{id}/items/{item_id}/duplicate [post]
func (h *SessionsHandler) DuplicateItem(c *gin.Context) {
	h.update(c, func(ctrl *canvas.Controller) error {
		_, err := ctrl.Duplicate(c.Param("item_id"))
		return err
	})
}

// Select godoc
// @Summary     Select an item
// @Description An empty id, a click on empty space or on the sleeve clears the selection
// @Tags        sessions
// @Accept      json
// @Produce     json
// @Param       id path string true "Session ID"
// @Param       request body models.SelectRequest true "Item to select"
// @Success     200 {object} editor.State
// @Failure     404 {object} models.ErrorResponse
// @Router      /sessions/{id}/select [post]
func (h *SessionsHandler) Select(c *gin.Context) {
	var req models.SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	h.update(c, func(ctrl *canvas.Controller) error {
		return ctrl.Select(req.ID)
	})
}

// Hover godoc
// @Summary     Hover an item
// @Tags        sessions
// @Accept      json
// @Produce     json
// @Param       id path string true "Session ID"
// @Param       request body models.HoverRequest true "Item under the pointer"
// @Success     200 {object} editor.State
// @Router      /sessions/{id}/hover [post]
func (h *SessionsHandler) Hover(c *gin.Context) {
	var req models.HoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	h.update(c, func(ctrl *canvas.Controller) error {
		if req.ID == "" {
			ctrl.Unhover()
			return nil
		}
		return ctrl.Hover(req.ID)
	})
}

// KeyDown godoc
// @Summary     Keyboard shortcut
// @Description Delete or Backspace removes the selected item. Other keys are ignored.
// @Tags        sessions
// @Accept      json
// @Produce     json
// @Param       id path string true "Session ID"
// @Param       request body models.KeyRequest true "Pressed key"
// @Success     200 {object} models.KeyResponse
// @Router      /sessions/{id}/keys [post]
func (h *SessionsHandler) KeyDown(c *gin.Context) {
	var req models.KeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	sess, ok := sessionFor(c, h.store, c.Param("id"))
	if !ok {
		return
	}
	var removed string
	err := sess.Update(func(ctrl *canvas.Controller) error {
		removed = ctrl.KeyDown(req.Key)
		return nil
	})
	if err != nil {
		canvasError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.KeyResponse{Removed: removed})
}

// Drag godoc
// @Summary     Drag an item
// @Description Phase "start" begins the gesture; phase "end" commits the final top-left position in logical units
// @Tags        sessions
// @Accept      json
// @Produce     json
// @Param       id path string true "Session ID"
// @Param       item_id path string true "Item ID"
// @Param       request body models.DragRequest true "Gesture phase and position"
// @Success     200 {object} editor.State
// @Failure     404 {object} models.ErrorResponse
// @Router      /sessions/{id}/items/{item_id}/drag [post]
func (h *SessionsHandler) Drag(c *gin.Context) {
	var req models.DragRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	id := c.Param("item_id")
	h.update(c, func(ctrl *canvas.Controller) error {
		if req.Phase == models.PhaseStart {
			return ctrl.BeginDrag(id)
		}
		_, err := ctrl.EndDrag(id, req.X, req.Y)
		return err
	})
}

// Transform godoc
// @Summary     Rotate and scale an item
// @Description Phase "start" requires the item to show transform handles; phase "end" commits rotation (degrees) and uniform scale
// @Tags        sessions
// @Accept      json
// @Produce     json
// @Param       id path string true "Session ID"
// @Param       item_id path string true "Item ID"
// @Param       request body models.TransformRequest true "Gesture phase and values"
// @Success     200 {object} editor.State
// @Failure     400 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /sessions/{id}/items/{item_id}/transform [post]
func (h *SessionsHandler) Transform(c *gin.Context) {
	var req models.TransformRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	id := c.Param("item_id")
	h.update(c, func(ctrl *canvas.Controller) error {
		if req.Phase == models.PhaseStart {
			return ctrl.BeginTransform(id)
		}
		_, err := ctrl.EndTransform(id, req.Rotation, req.Scale)
		return err
	})
}

// Layers godoc
// @Summary     Layer list
// @Description Orderable items, top-most first. The sleeve is never listed.
// @Tags        sessions
// @Produce     json
// @Param       id path string true "Session ID"
// @Success     200 {array} canvas.Layer
// @Router      /sessions/{id}/layers [get]
func (h *SessionsHandler) Layers(c *gin.Context) {
	sess, ok := sessionFor(c, h.store, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.State().Layers)
}

// MoveLayer godoc
// @Summary     Move a layer
// @Description Moves active_id to the position of over_id in the layer list
// @Tags        sessions
// @Accept      json
// @Produce     json
// @Param       id path string true "Session ID"
// @Param       request body models.MoveLayerRequest true "Drag-and-drop result"
// @Success     200 {object} editor.State
// @Failure     404 {object} models.ErrorResponse
// @Router      /sessions/{id}/layers/move [post]
func (h *SessionsHandler) MoveLayer(c *gin.Context) {
	var req models.MoveLayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	h.update(c, func(ctrl *canvas.Controller) error {
		return ctrl.MoveLayer(req.ActiveID, req.OverID)
	})
}

// SetLayerOrder godoc
// @Summary     Replace the layer order
// @Tags        sessions
// @Accept      json
// @Produce     json
// @Param       id path string true "Session ID"
// @Param       request body models.LayerOrderRequest true "Every layer id, top-most first"
// @Success     200 {object} editor.State
// @Failure     400 {object} models.ErrorResponse
// @Router      /sessions/{id}/layers [put]
func (h *SessionsHandler) SetLayerOrder(c *gin.Context) {
	var req models.LayerOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	h.update(c, func(ctrl *canvas.Controller) error {
		return ctrl.ApplyLayerOrder(req.IDs)
	})
}

// Reset godoc
// @Summary     Reset the canvas
// @Description Removes every item except the sleeve. The background is kept.
// @Tags        sessions
// @Produce     json
// @Param       id path string true "Session ID"
// @Success     200 {object} editor.State
// @Router      /sessions/{id}/reset [post]
func (h *SessionsHandler) Reset(c *gin.Context) {
	h.update(c, func(ctrl *canvas.Controller) error {
		ctrl.Reset()
		return nil
	})
}

// SetSleeve godoc
// @Summary     Change the sleeve
// @Tags        sessions
// @Accept      json
// @Produce     json
// @Param       id path string true "Session ID"
// @Param       request body models.SleeveRequest true "Sleeve image"
// @Success     200 {object} editor.State
// @Failure     400 {object} models.ErrorResponse
// @Router      /sessions/{id}/sleeve [put]
func (h *SessionsHandler) SetSleeve(c *gin.Context) {
	var req models.SleeveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	sess, ok := sessionFor(c, h.store, c.Param("id"))
	if !ok {
		return
	}
	if _, err := sess.SetSleeve(req.Src); err != nil {
		canvasError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.State())
}

// SetBackground godoc
// @Summary     Change the background
// @Description The background is not drawn into the export; it only adds its prompt snippet
// @Tags        sessions
// @Accept      json
// @Produce     json
// @Param       id path string true "Session ID"
// @Param       request body models.BackgroundRequest true "Background image, empty to remove"
// @Success     200 {object} editor.State
// @Failure     400 {object} models.ErrorResponse
// @Router      /sessions/{id}/background [put]
func (h *SessionsHandler) SetBackground(c *gin.Context) {
	var req models.BackgroundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	sess, ok := sessionFor(c, h.store, c.Param("id"))
	if !ok {
		return
	}
	if err := sess.SetBackground(req.Src); err != nil {
		canvasError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.State())
}

// Prompt godoc
// @Summary     Generation prompt preview
// @Tags        sessions
// @Produce     json
// @Param       id path string true "Session ID"
// @Success     200 {object} map[string]string "prompt and materials"
// @Router      /sessions/{id}/prompt [get]
func (h *SessionsHandler) Prompt(c *gin.Context) {
	sess, ok := sessionFor(c, h.store, c.Param("id"))
	if !ok {
		return
	}
	st := sess.State()
	c.JSON(http.StatusOK, gin.H{
		"prompt":    st.Prompt,
		"materials": prompt.Materials(st.Items),
	})
}

// Snapshot godoc
// @Summary     Export the canvas
// @Description Deselects everything and renders the composition as PNG, the same image that is sent for generation
// @Tags        sessions
// @Produce     png
// @Param       id path string true "Session ID"
// @Success     200 {file} binary
// @Failure     500 {object} models.ErrorResponse
// @Router      /sessions/{id}/snapshot.png [get]
func (h *SessionsHandler) Snapshot(c *gin.Context) {
	sess, ok := sessionFor(c, h.store, c.Param("id"))
	if !ok {
		return
	}
	png, err := h.rasterizer.Rasterize(c.Request.Context(), sess.Snapshot().Items)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "export failed", err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}

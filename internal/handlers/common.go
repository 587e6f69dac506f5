package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bouquet-studio-backend/internal/canvas"
	"bouquet-studio-backend/internal/editor"
	"bouquet-studio-backend/internal/middleware"
	"bouquet-studio-backend/internal/models"
	"bouquet-studio-backend/internal/services"
	"bouquet-studio-backend/internal/supabase"
)

func respondError(c *gin.Context, status int, code string, err error) {
	resp := models.ErrorResponse{Error: code}
	if err != nil {
		resp.Message = err.Error()
	}
	c.JSON(status, resp)
}

func bindError(c *gin.Context, err error) {
	respondError(c, http.StatusBadRequest, "invalid request", err)
}

// sessionFor loads the session named in the path and writes the error
// response when it cannot be used.
func sessionFor(c *gin.Context, store *editor.Store, id string) (*editor.Session, bool) {
	sess, err := store.Get(id, middleware.UserID(c))
	switch {
	case errors.Is(err, editor.ErrSessionNotFound):
		respondError(c, http.StatusNotFound, "session not found", nil)
		return nil, false
	case errors.Is(err, editor.ErrSessionForbidden):
		respondError(c, http.StatusForbidden, "forbidden", err)
		return nil, false
	case err != nil:
		respondError(c, http.StatusInternalServerError, "failed to load session", err)
		return nil, false
	}
	return sess, true
}

// canvasError maps controller and registry errors onto HTTP responses.
func canvasError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, canvas.ErrItemNotFound):
		respondError(c, http.StatusNotFound, "item not found", err)
	case errors.Is(err, editor.ErrSessionClosed):
		respondError(c, http.StatusGone, "session closed", err)
	case errors.Is(err, canvas.ErrSleeveProtected),
		errors.Is(err, canvas.ErrStructuralItem),
		errors.Is(err, canvas.ErrNotSelected),
		errors.Is(err, canvas.ErrDuplicateSleeve),
		errors.Is(err, canvas.ErrImmutableSource):
		respondError(c, http.StatusConflict, "operation not allowed", err)
	case errors.Is(err, canvas.ErrBadScale),
		errors.Is(err, canvas.ErrLayerOrderChange),
		errors.Is(err, canvas.ErrInvalidKind),
		errors.Is(err, editor.ErrUnknownAsset):
		respondError(c, http.StatusBadRequest, "invalid request", err)
	default:
		respondError(c, http.StatusInternalServerError, "canvas update failed", err)
	}
}

// serviceError maps persistence and service errors onto HTTP responses.
func serviceError(c *gin.Context, code string, err error) {
	switch {
	case errors.Is(err, services.ErrNotAuthenticated):
		respondError(c, http.StatusUnauthorized, middleware.ErrorAuthRequired, err)
	case errors.Is(err, supabase.ErrNotFound):
		respondError(c, http.StatusNotFound, "not found", err)
	case errors.Is(err, services.ErrInvalidTitle):
		bindError(c, err)
	default:
		respondError(c, http.StatusInternalServerError, code, err)
	}
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid "+name, err)
		return uuid.Nil, false
	}
	return id, true
}

func unavailable(c *gin.Context, what string) {
	respondError(c, http.StatusServiceUnavailable, what+" not available", nil)
}

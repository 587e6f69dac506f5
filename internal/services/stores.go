package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"bouquet-studio-backend/internal/canvas"
	"bouquet-studio-backend/internal/models"
)

var (
	ErrNotAuthenticated = errors.New("user is not signed in")
	ErrDraftRequired    = errors.New("the design must be saved as a draft first")
	ErrInvalidTitle     = errors.New("title must not be empty")
)

// DraftStore persists drafts. All calls are scoped to the owner.
type DraftStore interface {
	CreateDraft(ctx context.Context, draft *models.Draft) (*models.Draft, error)
	UpdateDraft(ctx context.Context, draft *models.Draft, title *string) error
	GetDraft(ctx context.Context, draftID, userID uuid.UUID) (*models.Draft, error)
	ListDrafts(ctx context.Context, userID uuid.UUID) ([]models.Draft, error)
	RenameDraft(ctx context.Context, draftID, userID uuid.UUID, title string) error
	DeleteDraft(ctx context.Context, draftID, userID uuid.UUID) error
}

// DesignStore persists generated designs.
type DesignStore interface {
	CreateDesign(ctx context.Context, design *models.Design) error
	ListDesigns(ctx context.Context, userID uuid.UUID) ([]models.Design, error)
	DeleteDesign(ctx context.Context, designID, userID uuid.UUID) (*models.Design, error)
}

// ObjectStore holds design images. Supabase Storage and S3 both satisfy it.
type ObjectStore interface {
	Upload(ctx context.Context, userID uuid.UUID, data []byte, contentType string) (string, error)
	PublicURL(key string) string
	Delete(ctx context.Context, key string) error
}

// Rasterizer turns canvas items into a PNG.
type Rasterizer interface {
	Rasterize(ctx context.Context, items []canvas.Item) ([]byte, error)
}

// ImageGenerator runs one image-to-image generation and fetches its output.
type ImageGenerator interface {
	Generate(ctx context.Context, png []byte, prompt string) (string, error)
	Download(ctx context.Context, ref string) ([]byte, error)
}

// EventPublisher delivers realtime events to one user.
type EventPublisher interface {
	PublishUserEvent(ctx context.Context, userID uuid.UUID, event string, payload map[string]interface{}) error
}

func parseUser(userID string) (uuid.UUID, error) {
	if userID == "" {
		return uuid.Nil, ErrNotAuthenticated
	}
	id, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, ErrNotAuthenticated
	}
	return id, nil
}

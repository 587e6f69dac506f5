package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"bouquet-studio-backend/internal/canvas"
)

const UntitledDraft = "Untitled"

// Draft is a saved, editable composition. Elements never contain the
// background; it is kept in Background.
type Draft struct {
	ID         uuid.UUID     `json:"id"`
	UserID     uuid.UUID     `json:"user_id"`
	Title      string        `json:"title"`
	Elements   []canvas.Item `json:"elements"`
	Sleeve     string        `json:"sleeve"`
	Background string        `json:"background,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// Design is the stored output of one generation run.
type Design struct {
	ID           uuid.UUID     `json:"id"`
	UserID       uuid.UUID     `json:"user_id"`
	DraftID      uuid.NullUUID `json:"draft_id" swaggertype:"string"`
	Title        string        `json:"title"`
	ImageURL     string        `json:"image_url"`
	StoragePath  string        `json:"-"`
	Prompt       string        `json:"prompt"`
	MaterialsCSV string        `json:"materials_csv"`
	CreatedAt    time.Time     `json:"created_at"`
}

// DesignObjectKey returns a fresh object storage key for a design image.
func DesignObjectKey(userID uuid.UUID, ext string) string {
	return fmt.Sprintf("designs/%s/%s%s", userID, uuid.NewString(), ext)
}

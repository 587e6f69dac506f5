package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"bouquet-studio-backend/internal/canvas"
	"bouquet-studio-backend/internal/models"
)

type SaveDraftInput struct {
	UserID     string
	DraftID    uuid.UUID // uuid.Nil saves a new draft
	Title      string
	Elements   []canvas.Item
	Sleeve     string
	Background string
}

type SaveDraftResult struct {
	Success    bool       `json:"success"`
	NewDraftID *uuid.UUID `json:"new_draft_id,omitempty"`
	DraftID    uuid.UUID  `json:"draft_id"`
	Title      string     `json:"title"`
}

type DraftService struct {
	drafts DraftStore
}

func NewDraftService(drafts DraftStore) *DraftService {
	return &DraftService{drafts: drafts}
}

// Save inserts a new draft or overwrites the draft in.DraftID. A blank
// title becomes "Untitled" on insert and leaves the stored title alone on
// update.
func (s *DraftService) Save(ctx context.Context, in SaveDraftInput) (*SaveDraftResult, error) {
	userID, err := parseUser(in.UserID)
	if err != nil {
		return nil, err
	}

	elements := make([]canvas.Item, 0, len(in.Elements))
	for _, it := range in.Elements {
		if it.Kind != canvas.KindBackground {
			elements = append(elements, it)
		}
	}
	draft := &models.Draft{
		ID:         in.DraftID,
		UserID:     userID,
		Elements:   elements,
		Sleeve:     in.Sleeve,
		Background: in.Background,
	}
	title := strings.TrimSpace(in.Title)

	if in.DraftID != uuid.Nil {
		var titleArg *string
		if title != "" {
			titleArg = &title
		}
		if err := s.drafts.UpdateDraft(ctx, draft, titleArg); err != nil {
			return nil, fmt.Errorf("failed to update draft %s: %w", in.DraftID, err)
		}
		log.Printf("Draft %s updated for user %s", in.DraftID, userID)
		return &SaveDraftResult{Success: true, DraftID: in.DraftID, Title: title}, nil
	}

	if title == "" {
		title = models.UntitledDraft
	}
	draft.Title = title
	created, err := s.drafts.CreateDraft(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}
	log.Printf("Draft %s created for user %s", created.ID, userID)

	id := created.ID
	return &SaveDraftResult{Success: true, NewDraftID: &id, DraftID: id, Title: created.Title}, nil
}

func (s *DraftService) List(ctx context.Context, userID string) ([]models.Draft, error) {
	uid, err := parseUser(userID)
	if err != nil {
		return nil, err
	}
	return s.drafts.ListDrafts(ctx, uid)
}

func (s *DraftService) Get(ctx context.Context, userID string, draftID uuid.UUID) (*models.Draft, error) {
	uid, err := parseUser(userID)
	if err != nil {
		return nil, err
	}
	return s.drafts.GetDraft(ctx, draftID, uid)
}

func (s *DraftService) Rename(ctx context.Context, userID string, draftID uuid.UUID, title string) error {
	uid, err := parseUser(userID)
	if err != nil {
		return err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrInvalidTitle
	}
	return s.drafts.RenameDraft(ctx, draftID, uid, title)
}

func (s *DraftService) Delete(ctx context.Context, userID string, draftID uuid.UUID) error {
	uid, err := parseUser(userID)
	if err != nil {
		return err
	}
	if err := s.drafts.DeleteDraft(ctx, draftID, uid); err != nil {
		return err
	}
	log.Printf("Draft %s deleted for user %s", draftID, uid)
	return nil
}

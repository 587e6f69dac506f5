package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bouquet-studio-backend/internal/canvas"
	"bouquet-studio-backend/internal/models"
	"bouquet-studio-backend/internal/services"
	"bouquet-studio-backend/internal/supabase"
)

func TestDraftService_SaveNewUntitled(t *testing.T) {
	drafts := new(mockDrafts)
	userID := uuid.New()
	newID := uuid.New()

	drafts.On("CreateDraft", mock.Anything, mock.MatchedBy(func(d *models.Draft) bool {
		return d.Title == models.UntitledDraft && d.UserID == userID && len(d.Elements) == 2
	})).Return(&models.Draft{ID: newID, Title: models.UntitledDraft}, nil)

	svc := services.NewDraftService(drafts)
	res, err := svc.Save(context.Background(), services.SaveDraftInput{
		UserID: userID.String(),
		Title:  "  ",
		Elements: []canvas.Item{
			{ID: "sleeve", Kind: canvas.KindSleeve},
			{ID: "bg", Kind: canvas.KindBackground},
			{ID: "a", Kind: canvas.KindFlower},
		},
		Sleeve: "/img/sleeves/sleeve1_v2.webp",
	})
	require.NoError(t, err)

	assert.True(t, res.Success)
	require.NotNil(t, res.NewDraftID)
	assert.Equal(t, newID, *res.NewDraftID)
	assert.Equal(t, models.UntitledDraft, res.Title)
	drafts.AssertExpectations(t)
}

func TestDraftService_UpdateKeepsTitleWhenBlank(t *testing.T) {
	drafts := new(mockDrafts)
	draftID := uuid.New()

	drafts.On("UpdateDraft", mock.Anything, mock.MatchedBy(func(d *models.Draft) bool {
		return d.ID == draftID
	}), (*string)(nil)).Return(nil).Once()

	svc := services.NewDraftService(drafts)
	res, err := svc.Save(context.Background(), services.SaveDraftInput{
		UserID:  uuid.NewString(),
		DraftID: draftID,
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Nil(t, res.NewDraftID)
	drafts.AssertExpectations(t)
}

func TestDraftService_UpdateOverwritesTitle(t *testing.T) {
	drafts := new(mockDrafts)
	draftID := uuid.New()

	drafts.On("UpdateDraft", mock.Anything, mock.Anything, mock.MatchedBy(func(title *string) bool {
		return title != nil && *title == "Hochzeit"
	})).Return(nil)

	svc := services.NewDraftService(drafts)
	_, err := svc.Save(context.Background(), services.SaveDraftInput{
		UserID:  uuid.NewString(),
		DraftID: draftID,
		Title:   "Hochzeit",
	})
	require.NoError(t, err)
	drafts.AssertExpectations(t)
}

func TestDraftService_UpdateMissingDraft(t *testing.T) {
	drafts := new(mockDrafts)
	drafts.On("UpdateDraft", mock.Anything, mock.Anything, mock.Anything).Return(supabase.ErrNotFound)

	svc := services.NewDraftService(drafts)
	_, err := svc.Save(context.Background(), services.SaveDraftInput{
		UserID:  uuid.NewString(),
		DraftID: uuid.New(),
	})
	assert.ErrorIs(t, err, supabase.ErrNotFound)
	drafts.AssertNotCalled(t, "CreateDraft", mock.Anything, mock.Anything)
}

func TestDraftService_RequiresUser(t *testing.T) {
	drafts := new(mockDrafts)
	svc := services.NewDraftService(drafts)

	_, err := svc.Save(context.Background(), services.SaveDraftInput{Title: "x"})
	assert.ErrorIs(t, err, services.ErrNotAuthenticated)

	_, err = svc.List(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, services.ErrNotAuthenticated)

	drafts.AssertExpectations(t)
}

func TestDraftService_Rename(t *testing.T) {
	drafts := new(mockDrafts)
	userID, draftID := uuid.New(), uuid.New()
	drafts.On("RenameDraft", mock.Anything, draftID, userID, "Neu").Return(nil)

	svc := services.NewDraftService(drafts)
	assert.ErrorIs(t, svc.Rename(context.Background(), userID.String(), draftID, " "), services.ErrInvalidTitle)
	require.NoError(t, svc.Rename(context.Background(), userID.String(), draftID, " Neu "))
	drafts.AssertExpectations(t)
}

func TestDraftService_Delete(t *testing.T) {
	drafts := new(mockDrafts)
	userID, draftID := uuid.New(), uuid.New()
	drafts.On("DeleteDraft", mock.Anything, draftID, userID).Return(nil)

	svc := services.NewDraftService(drafts)
	require.NoError(t, svc.Delete(context.Background(), userID.String(), draftID))
	drafts.AssertExpectations(t)
}

func TestDesignService_DeleteRemovesImage(t *testing.T) {
	designs := new(mockDesigns)
	objects := new(mockObjects)
	userID, designID := uuid.New(), uuid.New()

	designs.On("DeleteDesign", mock.Anything, designID, userID).
		Return(&models.Design{ID: designID, StoragePath: "designs/u/a.png"}, nil)
	objects.On("Delete", mock.Anything, "designs/u/a.png").Return(assert.AnError)

	svc := services.NewDesignService(designs, objects)
	require.NoError(t, svc.Delete(context.Background(), userID.String(), designID))

	designs.AssertExpectations(t)
	objects.AssertExpectations(t)
}

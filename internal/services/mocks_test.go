package services_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"bouquet-studio-backend/internal/canvas"
	"bouquet-studio-backend/internal/models"
)

type mockDrafts struct {
	mock.Mock
}

func (m *mockDrafts) CreateDraft(ctx context.Context, draft *models.Draft) (*models.Draft, error) {
	args := m.Called(ctx, draft)
	if d, ok := args.Get(0).(*models.Draft); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDrafts) UpdateDraft(ctx context.Context, draft *models.Draft, title *string) error {
	return m.Called(ctx, draft, title).Error(0)
}

func (m *mockDrafts) GetDraft(ctx context.Context, draftID, userID uuid.UUID) (*models.Draft, error) {
	args := m.Called(ctx, draftID, userID)
	if d, ok := args.Get(0).(*models.Draft); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDrafts) ListDrafts(ctx context.Context, userID uuid.UUID) ([]models.Draft, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.Draft), args.Error(1)
}

func (m *mockDrafts) RenameDraft(ctx context.Context, draftID, userID uuid.UUID, title string) error {
	return m.Called(ctx, draftID, userID, title).Error(0)
}

func (m *mockDrafts) DeleteDraft(ctx context.Context, draftID, userID uuid.UUID) error {
	return m.Called(ctx, draftID, userID).Error(0)
}

type mockDesigns struct {
	mock.Mock
}

func (m *mockDesigns) CreateDesign(ctx context.Context, design *models.Design) error {
	return m.Called(ctx, design).Error(0)
}

func (m *mockDesigns) ListDesigns(ctx context.Context, userID uuid.UUID) ([]models.Design, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.Design), args.Error(1)
}

func (m *mockDesigns) DeleteDesign(ctx context.Context, designID, userID uuid.UUID) (*models.Design, error) {
	args := m.Called(ctx, designID, userID)
	if d, ok := args.Get(0).(*models.Design); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockObjects struct {
	mock.Mock
}

func (m *mockObjects) Upload(ctx context.Context, userID uuid.UUID, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, userID, data, contentType)
	return args.String(0), args.Error(1)
}

func (m *mockObjects) PublicURL(key string) string {
	return "https://cdn.test/" + key
}

func (m *mockObjects) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type mockRasterizer struct {
	mock.Mock
}

func (m *mockRasterizer) Rasterize(ctx context.Context, items []canvas.Item) ([]byte, error) {
	args := m.Called(ctx, items)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, png []byte, prompt string) (string, error) {
	args := m.Called(ctx, png, prompt)
	return args.String(0), args.Error(1)
}

func (m *mockGenerator) Download(ctx context.Context, ref string) ([]byte, error) {
	args := m.Called(ctx, ref)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

type mockEvents struct {
	mock.Mock
}

func (m *mockEvents) PublishUserEvent(ctx context.Context, userID uuid.UUID, event string, payload map[string]interface{}) error {
	return m.Called(ctx, userID, event, payload).Error(0)
}

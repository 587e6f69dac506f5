package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bouquet-studio-backend/internal/canvas"
	"bouquet-studio-backend/internal/catalog"
	"bouquet-studio-backend/internal/editor"
	"bouquet-studio-backend/internal/handlers"
	"bouquet-studio-backend/internal/middleware"
	"bouquet-studio-backend/internal/models"
	"bouquet-studio-backend/internal/services"
	"bouquet-studio-backend/internal/supabase"
)

type fakeSizer struct {
	err error
}

func (f fakeSizer) Size(_ context.Context, src string) (int, int, error) {
	if f.err != nil {
		return 0, 0, f.err
	}
	return 300, 300, nil
}

type fakeRasterizer struct{}

func (fakeRasterizer) Rasterize(_ context.Context, items []canvas.Item) ([]byte, error) {
	return []byte("\x89PNG"), nil
}

// memDrafts is an in-memory draft store.
type memDrafts struct {
	mu     sync.Mutex
	drafts map[uuid.UUID]models.Draft
}

func newMemDrafts() *memDrafts {
	return &memDrafts{drafts: make(map[uuid.UUID]models.Draft)}
}

func (m *memDrafts) CreateDraft(_ context.Context, d *models.Draft) (*models.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.ID = uuid.New()
	m.drafts[d.ID] = *d
	out := *d
	return &out, nil
}

func (m *memDrafts) UpdateDraft(_ context.Context, d *models.Draft, title *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.drafts[d.ID]
	if !ok || cur.UserID != d.UserID {
		return supabase.ErrNotFound
	}
	cur.Elements, cur.Sleeve, cur.Background = d.Elements, d.Sleeve, d.Background
	if title != nil {
		cur.Title = *title
	}
	m.drafts[d.ID] = cur
	return nil
}

func (m *memDrafts) GetDraft(_ context.Context, id, userID uuid.UUID) (*models.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[id]
	if !ok || d.UserID != userID {
		return nil, supabase.ErrNotFound
	}
	return &d, nil
}

func (m *memDrafts) ListDrafts(_ context.Context, userID uuid.UUID) ([]models.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Draft{}
	for _, d := range m.drafts {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memDrafts) RenameDraft(_ context.Context, id, userID uuid.UUID, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[id]
	if !ok || d.UserID != userID {
		return supabase.ErrNotFound
	}
	d.Title = title
	m.drafts[id] = d
	return nil
}

func (m *memDrafts) DeleteDraft(_ context.Context, id, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[id]
	if !ok || d.UserID != userID {
		return supabase.ErrNotFound
	}
	delete(m.drafts, id)
	return nil
}

type testServer struct {
	router *gin.Engine
	store  *editor.Store
	drafts *memDrafts
}

func newTestServer(t *testing.T, sizer editor.Sizer, userID string) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cat, err := catalog.Default()
	require.NoError(t, err)
	store := editor.NewStore(cat, time.Hour)
	drafts := newMemDrafts()

	sessions := handlers.NewSessionsHandler(store, cat, sizer, fakeRasterizer{})
	draftsHandler := handlers.NewDraftsHandler(services.NewDraftService(drafts), store, cat, sizer)
	designs := handlers.NewDesignsHandler(nil, services.NewGenerationService(nil, nil, nil, nil, nil), store)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set(middleware.UserIDKey, userID)
		}
		c.Next()
	})
	router.POST("/sessions", sessions.CreateSession)
	router.GET("/sessions/:id", sessions.GetSession)
	router.POST("/sessions/:id/items", sessions.DropAsset)
	router.DELETE("/sessions/:id/items/:item_id", sessions.RemoveItem)
	router.POST("/sessions/:id/select", sessions.Select)
	router.POST("/sessions/:id/keys", sessions.KeyDown)
	router.POST("/sessions/:id/layers/move", sessions.MoveLayer)
	router.PUT("/sessions/:id/background", sessions.SetBackground)
	router.GET("/sessions/:id/snapshot.png", sessions.Snapshot)
	router.POST("/drafts", draftsHandler.SaveDraft)
	router.DELETE("/drafts/:draft_id", draftsHandler.DeleteDraft)
	router.POST("/drafts/:draft_id/load", draftsHandler.LoadDraft)
	router.POST("/designs/generate", designs.Generate)

	return &testServer{router: router, store: store, drafts: drafts}
}

func (s *testServer) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeState(t *testing.T, w *httptest.ResponseRecorder) editor.State {
	t.Helper()
	var st editor.State
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	return st
}

func (s *testServer) createSession(t *testing.T) editor.State {
	t.Helper()
	w := s.do("POST", "/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	return decodeState(t, w)
}

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		db   handlers.Pinger
		want int
	}{
		{"no database", nil, http.StatusOK},
		{"database up", pinger{}, http.StatusOK},
		{"database down", pinger{err: errors.New("down")}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/health", handlers.NewHealthHandler(tt.db).Health)

			req, _ := http.NewRequest("GET", "/health", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}

type pinger struct {
	err error
}

func (p pinger) Ping(context.Context) error { return p.err }

func TestSessions_DropSelectDelete(t *testing.T) {
	srv := newTestServer(t, fakeSizer{}, "")
	st := srv.createSession(t)
	require.Len(t, st.Items, 1)

	w := srv.do("POST", "/sessions/"+st.ID+"/items", models.DropRequest{
		Src: "/img/rose-rot.png", Type: "flower", X: 400, Y: 400,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	st = decodeState(t, w)
	require.Len(t, st.Items, 2)
	rose := st.Items[1]
	assert.Equal(t, 0.5, rose.Scale)
	assert.Equal(t, 325.0, rose.X)
	assert.Equal(t, "Rose rot", rose.Label)
	require.Len(t, st.Layers, 1)

	w = srv.do("POST", "/sessions/"+st.ID+"/select", models.SelectRequest{ID: rose.ID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, rose.ID, decodeState(t, w).Selected)

	w = srv.do("POST", "/sessions/"+st.ID+"/keys", models.KeyRequest{Key: "Delete"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"removed":"`+rose.ID+`"}`, w.Body.String())

	st = decodeState(t, srv.do("GET", "/sessions/"+st.ID, nil))
	assert.Len(t, st.Items, 1)
}

func TestSessions_SleeveCannotBeDeleted(t *testing.T) {
	srv := newTestServer(t, fakeSizer{}, "")
	st := srv.createSession(t)

	w := srv.do("POST", "/sessions/"+st.ID+"/select", models.SelectRequest{ID: editor.DefaultSleeveID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeState(t, w).Selected)

	w = srv.do("DELETE", "/sessions/"+st.ID+"/items/"+editor.DefaultSleeveID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSessions_AssetLoadFailureRegistersNothing(t *testing.T) {
	srv := newTestServer(t, fakeSizer{err: errors.New("404")}, "")
	st := srv.createSession(t)

	w := srv.do("POST", "/sessions/"+st.ID+"/items", models.DropRequest{
		Src: "/img/rose-rot.png", Type: "flower",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "asset_load_failed")

	st = decodeState(t, srv.do("GET", "/sessions/"+st.ID, nil))
	assert.Len(t, st.Items, 1)
}

func TestSessions_DropValidation(t *testing.T) {
	srv := newTestServer(t, fakeSizer{}, "")
	st := srv.createSession(t)

	assert.Equal(t, http.StatusBadRequest, srv.do("POST", "/sessions/"+st.ID+"/items", models.DropRequest{
		Src: "/img/unknown.png", Type: "flower",
	}).Code)
	assert.Equal(t, http.StatusBadRequest, srv.do("POST", "/sessions/"+st.ID+"/items", models.DropRequest{
		Src: "/img/sleeves/sleeve1_v2.webp", Type: "sleeve",
	}).Code)
	assert.Equal(t, http.StatusNotFound, srv.do("POST", "/sessions/missing/items", models.DropRequest{
		Src: "/img/rose-rot.png", Type: "flower",
	}).Code)
}

func TestSessions_Snapshot(t *testing.T) {
	srv := newTestServer(t, fakeSizer{}, "")
	st := srv.createSession(t)

	w := srv.do("GET", "/sessions/"+st.ID+"/snapshot.png", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
}

func TestDrafts_DeletingLoadedDraftResetsCanvas(t *testing.T) {
	userID := uuid.NewString()
	srv := newTestServer(t, fakeSizer{}, userID)
	st := srv.createSession(t)

	srv.do("POST", "/sessions/"+st.ID+"/items", models.DropRequest{Src: "/img/rose-rot.png", Type: "flower"})
	srv.do("PUT", "/sessions/"+st.ID+"/background", models.BackgroundRequest{Src: "/img/backgrounds/wood.jpg"})

	w := srv.do("POST", "/drafts", models.SaveDraftRequest{SessionID: st.ID})
	require.Equal(t, http.StatusOK, w.Code)
	var saved services.SaveDraftResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	require.NotNil(t, saved.NewDraftID)
	assert.Equal(t, models.UntitledDraft, saved.Title)

	stored, err := srv.drafts.GetDraft(context.Background(), *saved.NewDraftID, uuid.MustParse(userID))
	require.NoError(t, err)
	assert.Equal(t, "/img/backgrounds/wood.jpg", stored.Background)
	assert.Equal(t, editor.DefaultSleeveSrc, stored.Sleeve)

	// a second save updates the same draft
	w = srv.do("POST", "/drafts", models.SaveDraftRequest{SessionID: st.ID, Title: "Hochzeit"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated services.SaveDraftResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Nil(t, updated.NewDraftID)
	assert.Equal(t, *saved.NewDraftID, updated.DraftID)

	w = srv.do("DELETE", "/drafts/"+saved.NewDraftID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	st = decodeState(t, srv.do("GET", "/sessions/"+st.ID, nil))
	require.Len(t, st.Items, 1)
	assert.Equal(t, editor.DefaultSleeve(), st.Items[0])
	assert.Nil(t, st.DraftID)
}

func TestDrafts_LoadDraft(t *testing.T) {
	userID := uuid.New()
	srv := newTestServer(t, fakeSizer{}, userID.String())
	st := srv.createSession(t)

	draft, err := srv.drafts.CreateDraft(context.Background(), &models.Draft{
		UserID: userID,
		Title:  "Alt",
		Sleeve: "/img/sleeves/sleeve2_v2.webp",
		Elements: []canvas.Item{
			{ID: "bg", Src: "/img/backgrounds/marble.jpg", Kind: canvas.KindBackground, Scale: 1},
			{ID: "r1", Src: "/img/rose-rot.png", Kind: canvas.KindFlower, Scale: 1, MaxWidth: 150},
		},
	})
	require.NoError(t, err)

	w := srv.do("POST", "/drafts/"+draft.ID.String()+"/load", models.LoadDraftRequest{SessionID: st.ID})
	require.Equal(t, http.StatusOK, w.Code)

	var resp handlers.LoadDraftResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "/img/backgrounds/marble.jpg", resp.State.Background)
	assert.Equal(t, "Alt", resp.State.DraftTitle)
	require.Len(t, resp.State.Items, 2)
	assert.Equal(t, "Weiss", resp.State.Items[0].Label)
	assert.Equal(t, 0.5, resp.State.Items[1].Scale)
}

func TestDrafts_LoadDraftReportsDroppedElements(t *testing.T) {
	userID := uuid.New()
	srv := newTestServer(t, fakeSizer{}, userID.String())
	st := srv.createSession(t)

	draft, err := srv.drafts.CreateDraft(context.Background(), &models.Draft{
		UserID: userID,
		Title:  "Gemischt",
		Elements: []canvas.Item{
			{ID: "r1", Src: "/img/rose-rot.png", Kind: canvas.KindFlower, Scale: 0.4},
			{ID: "x1", Src: "/img/schleife.png", Kind: canvas.Kind("accessory"), Scale: 1},
			{ID: "x2", Src: "http://169.254.169.254/latest/meta-data", Kind: canvas.KindFlower, Scale: 1},
		},
	})
	require.NoError(t, err)

	w := srv.do("POST", "/drafts/"+draft.ID.String()+"/load", models.LoadDraftRequest{SessionID: st.ID})
	require.Equal(t, http.StatusOK, w.Code)

	var resp handlers.LoadDraftResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Dropped, 2)
	assert.Equal(t, editor.DropUnknownType, resp.Dropped[0].Reason)
	assert.Equal(t, editor.DropUnknownAsset, resp.Dropped[1].Reason)

	require.NotEmpty(t, resp.State.Items)
	assert.Equal(t, canvas.KindSleeve, resp.State.Items[0].Kind)
	assert.Equal(t, editor.DefaultSleeveSrc, resp.State.Items[0].Src)

	var flowers int
	for _, it := range resp.State.Items {
		if it.Kind == canvas.KindFlower {
			flowers++
			assert.Equal(t, "/img/rose-rot.png", it.Src)
		}
	}
	assert.Equal(t, 1, flowers)
}

func TestSessions_ClaimedSessionRejectsAnonymous(t *testing.T) {
	srv := newTestServer(t, fakeSizer{}, "")
	st := srv.createSession(t)

	_, err := srv.store.Get(st.ID, "user-a")
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, srv.do("GET", "/sessions/"+st.ID, nil).Code)
	assert.Equal(t, http.StatusForbidden, srv.do("POST", "/sessions/"+st.ID+"/select", models.SelectRequest{}).Code)
}

func TestDesigns_GenerateRequiresSignIn(t *testing.T) {
	srv := newTestServer(t, fakeSizer{}, "")
	st := srv.createSession(t)

	w := srv.do("POST", "/designs/generate", models.GenerateRequest{SessionID: st.ID})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, middleware.ErrorAuthRequired, resp.Error)
}

func TestDesigns_GenerateRequiresDraft(t *testing.T) {
	srv := newTestServer(t, fakeSizer{}, uuid.NewString())
	st := srv.createSession(t)

	w := srv.do("POST", "/designs/generate", models.GenerateRequest{SessionID: st.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "draft_required")
}

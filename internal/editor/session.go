// Package editor keeps the server-side editing sessions. A session wraps a
// canvas controller together with the session-level state the canvas does
// not know about: the background reference, the current draft and the
// owner.
package editor

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"bouquet-studio-backend/internal/canvas"
	"bouquet-studio-backend/internal/catalog"
	"bouquet-studio-backend/internal/models"
	"bouquet-studio-backend/internal/prompt"
)

// Default sleeve placed on a fresh canvas.
const (
	DefaultSleeveID    = "sleeve"
	DefaultSleeveSrc   = "/img/sleeves/sleeve1_v2.webp"
	DefaultSleeveLabel = "Braun"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionForbidden = errors.New("session belongs to another user")
	ErrSessionClosed    = errors.New("session is closed")
	ErrUnknownAsset     = errors.New("asset is not in the catalog")
)

// DefaultSleeve returns the sleeve item of a fresh canvas.
func DefaultSleeve() canvas.Item {
	return canvas.Item{
		ID:        DefaultSleeveID,
		Src:       DefaultSleeveSrc,
		Label:     DefaultSleeveLabel,
		Kind:      canvas.KindSleeve,
		Scale:     1,
		MaxWidth:  canvas.SleeveMaxFootprint,
		MaxHeight: canvas.SleeveMaxFootprint,
	}
}

// Snapshot is an immutable copy of a session's contents.
type Snapshot struct {
	SessionID         string        `json:"session_id"`
	UserID            string        `json:"-"`
	DraftID           uuid.UUID     `json:"draft_id"`
	DraftTitle        string        `json:"draft_title"`
	Items             []canvas.Item `json:"items"`
	BackgroundRef     string        `json:"background"`
	BackgroundSnippet string        `json:"-"`
	Version           uint64        `json:"version"`
}

// SleeveSrc returns the src of the sleeve, or "".
func (s Snapshot) SleeveSrc() string {
	for _, it := range s.Items {
		if it.Kind == canvas.KindSleeve {
			return it.Src
		}
	}
	return ""
}

// Elements returns the items without any background item.
func (s Snapshot) Elements() []canvas.Item {
	out := make([]canvas.Item, 0, len(s.Items))
	for _, it := range s.Items {
		if it.Kind != canvas.KindBackground {
			out = append(out, it)
		}
	}
	return out
}

// State is what clients render.
type State struct {
	ID         string          `json:"id"`
	Version    uint64          `json:"version"`
	Items      []canvas.Item   `json:"items"`
	Layers     []canvas.Layer  `json:"layers"`
	Selected   string          `json:"selected,omitempty"`
	Hovered    string          `json:"hovered,omitempty"`
	Viewport   canvas.Viewport `json:"viewport"`
	Background string          `json:"background,omitempty"`
	DraftID    *uuid.UUID      `json:"draft_id,omitempty"`
	DraftTitle string          `json:"draft_title,omitempty"`
	Prompt     string          `json:"prompt"`
}

// Session serializes every interaction on one canvas.
type Session struct {
	mu sync.Mutex

	id      string
	ownerID string
	ctrl    *canvas.Controller
	catalog *catalog.Catalog

	backgroundRef     string
	backgroundSnippet string
	draftID           uuid.UUID
	draftTitle        string

	lastSeen time.Time
	closed   bool
}

// NewSession creates a session holding the default sleeve.
func NewSession(cat *catalog.Catalog) *Session {
	s := &Session{
		id:       uuid.NewString(),
		ctrl:     canvas.NewController(canvas.NewRegistry()),
		catalog:  cat,
		lastSeen: time.Now(),
	}
	if err := s.ctrl.Replace([]canvas.Item{DefaultSleeve()}); err != nil {
		panic(fmt.Sprintf("default sleeve rejected: %v", err))
	}
	return s
}

func (s *Session) ID() string {
	return s.id
}

// Claim binds the session to userID on first authenticated use. Once
// owned, the session refuses anonymous callers and other users.
func (s *Session) Claim(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.ownerID == "":
		s.ownerID = userID
		return nil
	case s.ownerID != userID:
		return ErrSessionForbidden
	}
	return nil
}

// OnChange forwards committed canvas mutations to fn.
func (s *Session) OnChange(fn canvas.ChangeFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl.Registry().OnChange(fn)
}

// Update runs fn with exclusive access to the controller.
func (s *Session) Update(fn func(c *canvas.Controller) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.lastSeen = time.Now()
	return fn(s.ctrl)
}

// State returns the current render state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	items := s.ctrl.Registry().Items()
	st := State{
		ID:         s.id,
		Version:    s.ctrl.Registry().Version(),
		Items:      items,
		Layers:     s.ctrl.Layers(),
		Selected:   s.ctrl.Selected(),
		Hovered:    s.ctrl.Hovered(),
		Viewport:   s.ctrl.Viewport(),
		Background: s.backgroundRef,
		DraftTitle: s.draftTitle,
		Prompt:     prompt.Build(items, s.backgroundSnippet),
	}
	if s.draftID != uuid.Nil {
		id := s.draftID
		st.DraftID = &id
	}
	return st
}

// SetSleeve swaps the sleeve image in place, or places a sleeve when the
// canvas has none.
func (s *Session) SetSleeve(src string) (canvas.Item, error) {
	label := canvas.LabelFromSrc(src)
	if e, err := s.catalog.Lookup(src, canvas.KindSleeve); err == nil {
		label = e.Label
	} else if !errors.Is(err, catalog.ErrAmbiguous) {
		return canvas.Item{}, fmt.Errorf("%w: %s", ErrUnknownAsset, src)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return canvas.Item{}, ErrSessionClosed
	}
	s.lastSeen = time.Now()

	reg := s.ctrl.Registry()
	if sleeve, ok := reg.Sleeve(); ok {
		return reg.Update(sleeve.ID, canvas.Patch{Src: &src, Label: &label})
	}
	it := DefaultSleeve()
	it.ID = ""
	it.Src, it.Label = src, label
	return reg.Add(it)
}

// SetBackground selects a catalog background. An empty src clears it.
func (s *Session) SetBackground(src string) error {
	var snippet string
	if src != "" {
		e, err := s.catalog.Lookup(src, canvas.KindBackground)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrUnknownAsset, src)
		}
		snippet = e.PromptAddition
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.lastSeen = time.Now()
	s.backgroundRef = src
	s.backgroundSnippet = snippet
	return nil
}

// Snapshot deselects everything and copies the contents, as done right
// before an export.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl.ClearSelection()
	return s.snapshotLocked()
}

// Current copies the contents without touching the selection.
func (s *Session) Current() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		SessionID:         s.id,
		DraftID:           s.draftID,
		DraftTitle:        s.draftTitle,
		Items:             s.ctrl.Registry().Items(),
		BackgroundRef:     s.backgroundRef,
		BackgroundSnippet: s.backgroundSnippet,
		Version:           s.ctrl.Registry().Version(),
	}
}

// Load replaces the canvas with a restored draft.
func (s *Session) Load(r Restored, draftID uuid.UUID, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if err := s.ctrl.Replace(r.Items); err != nil {
		return err
	}
	s.lastSeen = time.Now()
	s.backgroundRef = r.BackgroundRef
	s.backgroundSnippet = r.BackgroundSnippet
	s.draftID = draftID
	s.draftTitle = title
	return nil
}

// resetLocked empties the canvas down to the default sleeve and forgets
// the current draft. s.mu must be held.
func (s *Session) resetLocked() error {
	if err := s.ctrl.Replace([]canvas.Item{DefaultSleeve()}); err != nil {
		return fmt.Errorf("failed to reset canvas: %w", err)
	}
	s.backgroundRef = ""
	s.backgroundSnippet = ""
	s.draftID = uuid.Nil
	s.draftTitle = ""
	return nil
}

// SetDraft records the draft the canvas was saved as.
func (s *Session) SetDraft(id uuid.UUID, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draftID = id
	if strings.TrimSpace(title) != "" {
		s.draftTitle = title
	} else if s.draftTitle == "" {
		s.draftTitle = models.UntitledDraft
	}
}

// ForgetDraft resets the canvas when id is the current draft. It reports
// whether it did.
func (s *Session) ForgetDraft(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draftID == uuid.Nil || s.draftID != id {
		return false
	}
	if err := s.resetLocked(); err != nil {
		log.Printf("Failed to reset session %s after draft %s was deleted: %v", s.id, id, err)
		s.draftID = uuid.Nil
	}
	return true
}

func (s *Session) DraftID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draftID
}

// Close unbinds the keyboard shortcut and refuses further mutations.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.ctrl.Close()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

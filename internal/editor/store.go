package editor

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"bouquet-studio-backend/internal/canvas"
	"bouquet-studio-backend/internal/catalog"
)

// Publisher receives canvas change notifications.
type Publisher interface {
	PublishSessionEvent(ctx context.Context, sessionID string, event string, payload map[string]interface{}) error
}

// PayloadFunc builds the notification payload for one change.
type PayloadFunc func(sessionID string, version uint64, itemCount int) map[string]interface{}

const publishTimeout = 5 * time.Second

// Store holds the live sessions.
type Store struct {
	catalog *catalog.Catalog
	ttl     time.Duration

	publisher Publisher
	event     string
	payload   PayloadFunc

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewStore(cat *catalog.Catalog, ttl time.Duration) *Store {
	return &Store{
		catalog:  cat,
		ttl:      ttl,
		sessions: make(map[string]*Session),
	}
}

// SetPublisher makes every committed canvas change of every new session
// publish event through p.
func (st *Store) SetPublisher(p Publisher, event string, payload PayloadFunc) {
	st.publisher = p
	st.event = event
	st.payload = payload
}

// Create opens a new session.
func (st *Store) Create() *Session {
	s := NewSession(st.catalog)
	if st.publisher != nil {
		s.OnChange(st.notify(s.ID()))
	}

	st.mu.Lock()
	st.sessions[s.ID()] = s
	st.mu.Unlock()

	log.Printf("Editor session %s created", s.ID())
	return s
}

func (st *Store) notify(sessionID string) canvas.ChangeFunc {
	return func(version uint64, items []canvas.Item) {
		payload := st.payload(sessionID, version, len(items))
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
			defer cancel()
			if err := st.publisher.PublishSessionEvent(ctx, sessionID, st.event, payload); err != nil {
				log.Printf("Failed to publish %s for session %s: %v", st.event, sessionID, err)
			}
		}()
	}
}

// Get returns the session and checks that userID may use it.
func (st *Store) Get(id, userID string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if err := s.Claim(userID); err != nil {
		return nil, err
	}
	return s, nil
}

// Close ends a session and removes it.
func (st *Store) Close(id string) bool {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()
	if ok {
		s.Close()
	}
	return ok
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// DraftDeleted resets every session whose current draft is id.
func (st *Store) DraftDeleted(id uuid.UUID) int {
	st.mu.RLock()
	sessions := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		sessions = append(sessions, s)
	}
	st.mu.RUnlock()

	n := 0
	for _, s := range sessions {
		if s.ForgetDraft(id) {
			n++
		}
	}
	return n
}

// Sweep evicts idle sessions once per interval until ctx is done.
func (st *Store) Sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := st.evict(now); n > 0 {
				log.Printf("Evicted %d idle editor sessions", n)
			}
		}
	}
}

func (st *Store) evict(now time.Time) int {
	st.mu.Lock()
	var expired []*Session
	for id, s := range st.sessions {
		if s.idleSince(now) > st.ttl {
			expired = append(expired, s)
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	return len(expired)
}

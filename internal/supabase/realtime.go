package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Realtime events published to the browser.
const (
	EventCanvasUpdated       = "canvas_updated"
	EventGenerationStarted   = "generation_started"
	EventGenerationCompleted = "generation_completed"
	EventGenerationFailed    = "generation_failed"
)

// RealtimeClient publishes broadcast messages through the Realtime REST
// endpoint.
type RealtimeClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type broadcastMessage struct {
	Topic   string                 `json:"topic"`
	Event   string                 `json:"event"`
	Payload map[string]interface{} `json:"payload"`
}

func NewRealtimeClient(supabaseURL, apiKey string) *RealtimeClient {
	return &RealtimeClient{
		baseURL: strings.TrimSuffix(supabaseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (r *RealtimeClient) PublishEvent(ctx context.Context, channel string, event string, payload map[string]interface{}) error {
	jsonData, err := json.Marshal(map[string]interface{}{
		"messages": []broadcastMessage{{Topic: channel, Event: event, Payload: payload}},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", r.baseURL+"/realtime/v1/api/broadcast", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("apikey", r.apiKey)
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to publish event: status %d, body: %s", resp.StatusCode, string(body))
	}

	return nil
}

func (r *RealtimeClient) PublishUserEvent(ctx context.Context, userID uuid.UUID, event string, payload map[string]interface{}) error {
	return r.PublishEvent(ctx, UserChannel(userID), event, payload)
}

func (r *RealtimeClient) PublishSessionEvent(ctx context.Context, sessionID string, event string, payload map[string]interface{}) error {
	return r.PublishEvent(ctx, SessionChannel(sessionID), event, payload)
}

func UserChannel(userID uuid.UUID) string {
	return fmt.Sprintf("user:%s", userID.String())
}

func SessionChannel(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

// Event payloads
func CanvasUpdatedPayload(sessionID string, version uint64, itemCount int) map[string]interface{} {
	return map[string]interface{}{
		"session_id": sessionID,
		"version":    version,
		"item_count": itemCount,
	}
}

func GenerationStartedPayload(draftID uuid.UUID) map[string]interface{} {
	return map[string]interface{}{
		"draft_id": draftID.String(),
		"status":   "generating",
	}
}

func GenerationCompletedPayload(draftID, designID uuid.UUID, imageURL string) map[string]interface{} {
	return map[string]interface{}{
		"draft_id":  draftID.String(),
		"design_id": designID.String(),
		"status":    "completed",
		"image_url": imageURL,
	}
}

func GenerationFailedPayload(draftID uuid.UUID, stage, errorMsg string) map[string]interface{} {
	return map[string]interface{}{
		"draft_id": draftID.String(),
		"status":   "failed",
		"stage":    stage,
		"error":    errorMsg,
	}
}

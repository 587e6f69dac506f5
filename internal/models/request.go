package models

// ViewportRequest reports the measured size of the canvas container in
// pixels.
type ViewportRequest struct {
	Width  float64 `json:"width" binding:"gte=0" example:"1600"`
	Height float64 `json:"height" binding:"gte=0" example:"800"`
}

// DropRequest places a catalog asset under the pointer. X and Y are
// relative to the viewport's top-left corner.
type DropRequest struct {
	Src  string  `json:"src" binding:"required" example:"/img/rose-rot.png"`
	Type string  `json:"type" binding:"required" example:"flower"`
	X    float64 `json:"x" example:"420"`
	Y    float64 `json:"y" example:"380"`
}

// SelectRequest selects an item. An empty id clears the selection.
type SelectRequest struct {
	ID string `json:"id"`
}

// HoverRequest marks an item as hovered. An empty id clears the hover.
type HoverRequest struct {
	ID string `json:"id"`
}

type KeyRequest struct {
	Key string `json:"key" binding:"required" example:"Delete"`
}

// Gesture phases
const (
	PhaseStart = "start"
	PhaseEnd   = "end"
)

type DragRequest struct {
	Phase string  `json:"phase" binding:"required,oneof=start end"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

type TransformRequest struct {
	Phase    string  `json:"phase" binding:"required,oneof=start end"`
	Rotation float64 `json:"rotation"`
	Scale    float64 `json:"scale"`
}

type MoveLayerRequest struct {
	ActiveID string `json:"active_id" binding:"required"`
	OverID   string `json:"over_id" binding:"required"`
}

// LayerOrderRequest carries the full layer list, top-most first.
type LayerOrderRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

type SleeveRequest struct {
	Src string `json:"src" binding:"required" example:"/img/sleeves/sleeve2_v2.webp"`
}

// BackgroundRequest selects a background. An empty src removes it.
type BackgroundRequest struct {
	Src string `json:"src" example:"/img/backgrounds/wood.jpg"`
}

type SaveDraftRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Title     string `json:"title" example:"Hochzeit"`
}

type RenameDraftRequest struct {
	Title string `json:"title" binding:"required"`
}

type LoadDraftRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

type GenerateRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

type CredentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
